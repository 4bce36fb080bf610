package directory_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillsfinder/skillsfinder/internal/models"
	directoryservice "github.com/skillsfinder/skillsfinder/internal/services/directory"
	"github.com/skillsfinder/skillsfinder/internal/storage/memory"
)

// Фейковый кеш: хранит значения в map без TTL, считает обращения
type cacheFake struct {
	values map[string]any
	hits   int
	misses int
}

func newCacheFake() *cacheFake {
	return &cacheFake{values: map[string]any{}}
}

func (c *cacheFake) Get(key string, result any) (bool, error) {
	v, ok := c.values[key]
	if !ok {
		c.misses++
		return false, nil
	}
	c.hits++
	switch out := result.(type) {
	case *[]string:
		*out = v.([]string)
	case *int:
		*out = v.(int)
	}
	return true, nil
}

func (c *cacheFake) Set(key string, value any, _ time.Duration) error {
	c.values[key] = value
	return nil
}

func (c *cacheFake) Invalidate(key string) error {
	delete(c.values, key)
	return nil
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func newService(t *testing.T) (*directoryservice.DirectoryService, *memory.Directory, *cacheFake) {
	t.Helper()

	store := memory.New()
	cache := newCacheFake()
	return directoryservice.NewDirectoryService(store, cache, newNoopLogger()), store, cache
}

func seed(store *memory.Directory, name string, skills, tools []string) models.Member {
	return store.Add(models.Member{
		Name:     name,
		Email:    name + "@example.com",
		Skills:   skills,
		Tools:    tools,
		IsActive: true,
		Role:     models.RoleUser,
	})
}

func TestDirectoryService_ByID(t *testing.T) {
	svc, store, _ := newService(t)
	m := seed(store, "alice", []string{"go"}, nil)

	got, err := svc.ByID(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Name)

	_, err = svc.ByID(context.Background(), "missing")
	assert.ErrorIs(t, err, directoryservice.ErrNotFound)
}

func TestDirectoryService_Remove(t *testing.T) {
	svc, store, _ := newService(t)
	m := seed(store, "alice", nil, nil)

	require.NoError(t, svc.Remove(context.Background(), m.ID))
	assert.Empty(t, svc.All(context.Background()))

	assert.ErrorIs(t, svc.Remove(context.Background(), m.ID), directoryservice.ErrNotFound)
}

func TestDirectoryService_ToggleActiveAndSetRole(t *testing.T) {
	svc, store, _ := newService(t)
	m := seed(store, "alice", nil, nil)

	require.NoError(t, svc.ToggleActive(context.Background(), m.ID))
	got, _ := store.ByID(m.ID)
	assert.False(t, got.IsActive)

	require.NoError(t, svc.SetRole(context.Background(), m.ID, models.RoleManager))
	got, _ = store.ByID(m.ID)
	assert.Equal(t, models.RoleManager, got.Role)

	assert.ErrorIs(t, svc.ToggleActive(context.Background(), "missing"), directoryservice.ErrNotFound)
	assert.ErrorIs(t, svc.SetRole(context.Background(), "missing", models.RoleUser), directoryservice.ErrNotFound)
}

func TestDirectoryService_BorrowAndReturn(t *testing.T) {
	svc, store, _ := newService(t)
	borrower := seed(store, "alice", nil, nil)
	lender := seed(store, "bob", nil, []string{"drill"})

	require.NoError(t, svc.Borrow(context.Background(), borrower.ID, lender.ID, "drill"))
	assert.Equal(t, 1, svc.TotalActiveLoans(context.Background()))

	require.NoError(t, svc.Return(context.Background(), borrower.ID, lender.ID, "drill"))

	err := svc.Return(context.Background(), borrower.ID, lender.ID, "drill")
	assert.ErrorIs(t, err, directoryservice.ErrNoActiveLoan)

	err = svc.Return(context.Background(), "missing", lender.ID, "drill")
	assert.ErrorIs(t, err, directoryservice.ErrNotFound)

	err = svc.Borrow(context.Background(), "missing", lender.ID, "drill")
	assert.ErrorIs(t, err, directoryservice.ErrNotFound)
}

func TestDirectoryService_AggregatesCached(t *testing.T) {
	svc, store, cache := newService(t)
	seed(store, "alice", []string{"go", "sql"}, []string{"drill"})
	seed(store, "bob", []string{"go"}, []string{"saw"})

	first := svc.UniqueSkills(context.Background())
	assert.Equal(t, []string{"go", "sql"}, first)
	assert.Equal(t, 0, cache.hits)

	second := svc.UniqueSkills(context.Background())
	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.hits)
}

func TestDirectoryService_MutationInvalidatesLoanCache(t *testing.T) {
	svc, store, _ := newService(t)
	borrower := seed(store, "alice", nil, nil)
	lender := seed(store, "bob", nil, nil)

	assert.Equal(t, 0, svc.TotalActiveLoans(context.Background()))

	require.NoError(t, svc.Borrow(context.Background(), borrower.ID, lender.ID, "drill"))
	assert.Equal(t, 1, svc.TotalActiveLoans(context.Background()))

	svc.ResetAllLoans(context.Background())
	assert.Equal(t, 0, svc.TotalActiveLoans(context.Background()))
}

func TestDirectoryService_Search(t *testing.T) {
	svc, store, _ := newService(t)
	seed(store, "alice", []string{"go"}, nil)
	seed(store, "bob", []string{"python"}, nil)

	got := svc.Search(context.Background(), "go")
	require.Len(t, got, 1)
	assert.Equal(t, "alice", got[0].Name)

	assert.Len(t, svc.Search(context.Background(), ""), 2)
}
