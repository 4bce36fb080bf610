package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillsfinder/skillsfinder/internal/models"
)

func newMember(name, email string, skills, tools []string) models.Member {
	return models.Member{
		Name:     name,
		Email:    email,
		Skills:   skills,
		Tools:    tools,
		IsActive: true,
		Role:     models.RoleUser,
	}
}

func TestDirectory_AddAssignsID(t *testing.T) {
	d := New()

	first := d.Add(newMember("Alice", "alice@example.com", nil, nil))
	second := d.Add(newMember("Bob", "bob@example.com", nil, nil))

	assert.NotEmpty(t, first.ID)
	assert.NotEmpty(t, second.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.NotNil(t, first.BorrowedItems)
	assert.Empty(t, first.BorrowedItems)
}

func TestDirectory_AddKeepsCallerID(t *testing.T) {
	d := New()

	m := newMember("External", "ext@example.com", nil, nil)
	m.ID = "provider-uid-42"
	stored := d.Add(m)

	assert.Equal(t, "provider-uid-42", stored.ID)
	got, ok := d.ByID("provider-uid-42")
	assert.True(t, ok)
	assert.Equal(t, "External", got.Name)
}

func TestDirectory_IDUniqueAfterRemoveAndReAdd(t *testing.T) {
	d := New()

	first := d.Add(newMember("Alice", "alice@example.com", nil, nil))
	require.True(t, d.Remove(first.ID))

	second := d.Add(newMember("Charlie", "charlie@example.com", nil, nil))
	assert.NotEqual(t, first.ID, second.ID)
}

func TestDirectory_ByEmailCaseInsensitive(t *testing.T) {
	d := New()
	d.Add(newMember("Alice", "Alice@Example.com", nil, nil))

	got, ok := d.ByEmail("alice@example.COM")
	assert.True(t, ok)
	assert.Equal(t, "Alice", got.Name)

	_, ok = d.ByEmail("missing@example.com")
	assert.False(t, ok)
}

func TestDirectory_UpdateReplacesRecord(t *testing.T) {
	d := New()
	m := d.Add(newMember("Alice", "alice@example.com", []string{"go"}, nil))

	m.Name = "Alice Updated"
	m.Skills = []string{"go", "sql"}
	updated, ok := d.Update(m)
	require.True(t, ok)
	assert.Equal(t, "Alice Updated", updated.Name)

	got, ok := d.ByID(m.ID)
	require.True(t, ok)
	assert.Equal(t, []string{"go", "sql"}, got.Skills)
}

func TestDirectory_UpdateUnknownID(t *testing.T) {
	d := New()

	_, ok := d.Update(models.Member{ID: "missing"})
	assert.False(t, ok)
}

func TestDirectory_ReadsReturnCopies(t *testing.T) {
	d := New()
	m := d.Add(newMember("Alice", "alice@example.com", []string{"go"}, nil))

	got, ok := d.ByID(m.ID)
	require.True(t, ok)
	got.Skills[0] = "mutated"

	again, ok := d.ByID(m.ID)
	require.True(t, ok)
	assert.Equal(t, []string{"go"}, again.Skills)
}

func TestDirectory_ToggleActive(t *testing.T) {
	d := New()
	m := d.Add(newMember("Alice", "alice@example.com", nil, nil))

	require.True(t, d.ToggleActive(m.ID))
	got, _ := d.ByID(m.ID)
	assert.False(t, got.IsActive)

	require.True(t, d.ToggleActive(m.ID))
	got, _ = d.ByID(m.ID)
	assert.True(t, got.IsActive)

	assert.False(t, d.ToggleActive("missing"))
}

func TestDirectory_SetRole(t *testing.T) {
	d := New()
	m := d.Add(newMember("Alice", "alice@example.com", nil, nil))

	require.True(t, d.SetRole(m.ID, models.RoleAdmin))
	got, _ := d.ByID(m.ID)
	assert.Equal(t, models.RoleAdmin, got.Role)

	assert.False(t, d.SetRole("missing", models.RoleAdmin))
}

func TestDirectory_BorrowAndReturn(t *testing.T) {
	d := New()
	borrower := d.Add(newMember("Alice", "alice@example.com", nil, nil))
	lender := d.Add(newMember("Bob", "bob@example.com", nil, []string{"drill"}))

	require.True(t, d.Borrow(borrower.ID, lender.ID, "drill"))
	assert.Equal(t, 1, d.TotalActiveLoans())

	got, _ := d.ByID(borrower.ID)
	require.Len(t, got.BorrowedItems, 1)
	assert.Equal(t, "drill", got.BorrowedItems[0].Item)
	assert.Nil(t, got.BorrowedItems[0].ReturnedAt)

	require.True(t, d.ReturnLoan(borrower.ID, lender.ID, "drill"))
	assert.Equal(t, 0, d.TotalActiveLoans())

	got, _ = d.ByID(borrower.ID)
	require.Len(t, got.BorrowedItems, 1)
	assert.NotNil(t, got.BorrowedItems[0].ReturnedAt)
}

func TestDirectory_DoubleReturnFails(t *testing.T) {
	d := New()
	borrower := d.Add(newMember("Alice", "alice@example.com", nil, nil))

	require.True(t, d.Borrow(borrower.ID, "lender-1", "hammer"))
	require.True(t, d.ReturnLoan(borrower.ID, "lender-1", "hammer"))
	assert.False(t, d.ReturnLoan(borrower.ID, "lender-1", "hammer"))
}

func TestDirectory_ReturnUnknownLoan(t *testing.T) {
	d := New()
	borrower := d.Add(newMember("Alice", "alice@example.com", nil, nil))

	assert.False(t, d.ReturnLoan(borrower.ID, "lender-1", "hammer"))
	assert.False(t, d.ReturnLoan("missing", "lender-1", "hammer"))
}

func TestDirectory_BorrowUnknownBorrower(t *testing.T) {
	d := New()

	assert.False(t, d.Borrow("missing", "lender-1", "hammer"))
}

func TestDirectory_ResetAllLoans(t *testing.T) {
	d := New()
	first := d.Add(newMember("Alice", "alice@example.com", nil, nil))
	second := d.Add(newMember("Bob", "bob@example.com", nil, nil))

	require.True(t, d.Borrow(first.ID, second.ID, "drill"))
	require.True(t, d.Borrow(second.ID, first.ID, "saw"))
	require.Equal(t, 2, d.TotalActiveLoans())

	assert.True(t, d.ResetAllLoans())
	assert.Equal(t, 0, d.TotalActiveLoans())

	got, _ := d.ByID(first.ID)
	assert.Empty(t, got.BorrowedItems)
}

func TestDirectory_Search(t *testing.T) {
	d := New()
	d.Add(newMember("Alice", "alice@example.com", []string{"Go", "SQL"}, []string{"drill"}))
	d.Add(newMember("Bob", "bob@example.com", []string{"Python"}, []string{"ladder"}))

	tests := []struct {
		name      string
		query     string
		wantNames []string
	}{
		{name: "by name substring", query: "ali", wantNames: []string{"Alice"}},
		{name: "by skill case insensitive", query: "go", wantNames: []string{"Alice"}},
		{name: "by tool", query: "ladder", wantNames: []string{"Bob"}},
		{name: "empty query returns all", query: "", wantNames: []string{"Alice", "Bob"}},
		{name: "no match", query: "rust", wantNames: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.Search(tt.query)
			var names []string
			for _, m := range got {
				names = append(names, m.Name)
			}
			assert.Equal(t, tt.wantNames, names)
		})
	}
}

func TestDirectory_UniqueSkillsAndTools(t *testing.T) {
	d := New()
	d.Add(newMember("Alice", "alice@example.com", []string{"go", "sql"}, []string{"drill"}))
	d.Add(newMember("Bob", "bob@example.com", []string{"go", "python"}, []string{"saw", "drill"}))

	assert.Equal(t, []string{"go", "python", "sql"}, d.UniqueSkills())
	assert.Equal(t, []string{"drill", "saw"}, d.UniqueTools())
}
