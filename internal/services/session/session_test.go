package session_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/skillsfinder/skillsfinder/internal/identity"
	"github.com/skillsfinder/skillsfinder/internal/lib/jwt"
	"github.com/skillsfinder/skillsfinder/internal/lib/password"
	"github.com/skillsfinder/skillsfinder/internal/models"
	"github.com/skillsfinder/skillsfinder/internal/outbox"
	directoryservice "github.com/skillsfinder/skillsfinder/internal/services/directory"
	sessionservice "github.com/skillsfinder/skillsfinder/internal/services/session"
	"github.com/skillsfinder/skillsfinder/internal/storage/memory"
)

// Мок для внешнего бэкенда идентичности
type IdentityClientMock struct {
	mock.Mock
}

func (m *IdentityClientMock) Configured() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *IdentityClientMock) SignInWithPassword(ctx context.Context, email, pass string) (*identity.Profile, error) {
	args := m.Called(ctx, email, pass)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Profile), args.Error(1)
}

func (m *IdentityClientMock) SignInWithProvider(ctx context.Context, provider string) (*identity.Profile, error) {
	args := m.Called(ctx, provider)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Profile), args.Error(1)
}

func (m *IdentityClientMock) SendPasswordReset(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

// Мок для почтового транспорта
type MailerMock struct {
	mock.Mock
}

func (m *MailerMock) SendPasswordReset(email, name, resetLink string) error {
	args := m.Called(email, name, resetLink)
	return args.Error(0)
}

// Мок для издателя заданий провижининга
type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) EnqueueProvision(job outbox.ProvisionJob) error {
	args := m.Called(job)
	return args.Error(0)
}

// Фейковый кеш: хранит значения в map без TTL
type cacheFake struct {
	values map[string]any
}

func newCacheFake() *cacheFake {
	return &cacheFake{values: map[string]any{}}
}

func (c *cacheFake) Get(key string, result any) (bool, error) {
	v, ok := c.values[key]
	if !ok {
		return false, nil
	}
	switch out := result.(type) {
	case *string:
		*out = v.(string)
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

func (c *cacheFake) tokenKey() string {
	for k := range c.values {
		if strings.HasPrefix(k, "reset_token:") {
			return strings.TrimPrefix(k, "reset_token:")
		}
	}
	return ""
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

type fixture struct {
	store    *memory.Directory
	idClient *IdentityClientMock
	cache    *cacheFake
	mailer   *MailerMock
	service  *sessionservice.SessionService
}

func newFixture(t *testing.T, admin sessionservice.AdminCredentials, provision outbox.Publisher) *fixture {
	t.Helper()

	store := memory.New()
	idClient := new(IdentityClientMock)
	cache := newCacheFake()
	mailer := new(MailerMock)

	svc := sessionservice.NewSessionService(
		store,
		idClient,
		cache,
		mailer,
		provision,
		nil,
		jwt.NewJWTMaker("test-secret", time.Hour),
		admin,
		"https://skillsfinder.local",
		15*time.Minute,
		newNoopLogger(),
	)
	return &fixture{store: store, idClient: idClient, cache: cache, mailer: mailer, service: svc}
}

func addMember(t *testing.T, store *memory.Directory, name, email, pass, role string, skills []string) models.Member {
	t.Helper()

	hash, err := password.GetHash(pass)
	require.NoError(t, err)
	return store.Add(models.Member{
		Name:          name,
		Email:         email,
		PasswordHash:  hash,
		Skills:        skills,
		Role:          role,
		IsActive:      true,
		WillingToHelp: true,
	})
}

func TestLogin_AdminCredentials(t *testing.T) {
	f := newFixture(t, sessionservice.AdminCredentials{Username: "boss", Password: "topsecret"}, nil)
	admin := addMember(t, f.store, "Boss", "boss@example.com", "unused-pass", models.RoleAdmin, nil)

	result := f.service.Login(context.Background(), "boss", "topsecret")

	require.True(t, result.Success)
	assert.Equal(t, "Login successful!", result.Message)
	assert.NotEmpty(t, result.Token)
	require.NotNil(t, result.Session)
	assert.Equal(t, admin.ID, result.Session.ID)
	assert.True(t, result.Session.IsAdmin)

	got, _ := f.store.ByID(admin.ID)
	assert.NotNil(t, got.LastActive)
}

func TestLogin_AdminCredentialsWithoutAdminMember(t *testing.T) {
	f := newFixture(t, sessionservice.AdminCredentials{Username: "boss", Password: "topsecret"}, nil)
	addMember(t, f.store, "Alice", "alice@example.com", "password123", models.RoleUser, nil)
	f.idClient.On("Configured").Return(false)

	result := f.service.Login(context.Background(), "boss", "topsecret")

	assert.False(t, result.Success)
	assert.Equal(t, "Invalid username or password", result.Message)
	assert.False(t, f.service.IsAuthenticated())
}

func TestLogin_LocalMember(t *testing.T) {
	f := newFixture(t, sessionservice.AdminCredentials{}, nil)
	m := addMember(t, f.store, "Alice", "alice@example.com", "password123", models.RoleUser, []string{"go"})

	tests := []struct {
		name       string
		identifier string
	}{
		{name: "by email", identifier: "alice@example.com"},
		{name: "by name case insensitive", identifier: "aLiCe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := f.service.Login(context.Background(), tt.identifier, "password123")
			require.True(t, result.Success)
			assert.Equal(t, m.ID, result.Session.ID)
			assert.False(t, result.Session.IsAdmin)
		})
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newFixture(t, sessionservice.AdminCredentials{}, nil)
	m := addMember(t, f.store, "Alice", "alice@example.com", "password123", models.RoleUser, nil)
	f.idClient.On("Configured").Return(false)

	result := f.service.Login(context.Background(), "alice@example.com", "wrong-password")

	assert.False(t, result.Success)
	assert.Equal(t, "Invalid username or password", result.Message)
	assert.Empty(t, result.Token)

	// Неудачный вход не трогает lastActive
	got, _ := f.store.ByID(m.ID)
	assert.Nil(t, got.LastActive)
}

func TestLogin_UnknownIdentifier(t *testing.T) {
	f := newFixture(t, sessionservice.AdminCredentials{}, nil)
	f.idClient.On("Configured").Return(false)

	result := f.service.Login(context.Background(), "ghost@example.com", "password123")

	assert.False(t, result.Success)
	assert.Equal(t, "Invalid username or password", result.Message)
}

func TestLogin_IdentityBackendFallback(t *testing.T) {
	f := newFixture(t, sessionservice.AdminCredentials{}, nil)
	f.idClient.On("Configured").Return(true)
	f.idClient.On("SignInWithPassword", mock.Anything, "ext@example.com", "password123").
		Return(&identity.Profile{
			ID:          "ext-uid-1",
			DisplayName: "External User",
			Email:       "ext@example.com",
			Provider:    "password",
		}, nil).Once()

	result := f.service.Login(context.Background(), "ext@example.com", "password123")

	require.True(t, result.Success)
	assert.Equal(t, "ext-uid-1", result.Session.ID)

	got, ok := f.store.ByID("ext-uid-1")
	require.True(t, ok)
	assert.Equal(t, "External User", got.Name)
	f.idClient.AssertExpectations(t)
}

func TestLoginWithProvider_DemoMode(t *testing.T) {
	f := newFixture(t, sessionservice.AdminCredentials{}, nil)
	f.idClient.On("Configured").Return(false)

	result := f.service.LoginWithProvider(context.Background(), "github")

	require.True(t, result.Success)
	assert.Equal(t, sessionservice.DemoIDPrefix+"github", result.Session.ID)
	assert.Contains(t, result.Message, "demo mode")
	assert.NotEmpty(t, result.Token)

	// Демо-сессия не создаёт записи в каталоге
	assert.Empty(t, f.store.All())
	assert.True(t, f.service.IsAuthenticated())
}

func TestLoginWithProvider_Backend(t *testing.T) {
	f := newFixture(t, sessionservice.AdminCredentials{}, nil)
	f.idClient.On("Configured").Return(true)
	f.idClient.On("SignInWithProvider", mock.Anything, "google").
		Return(&identity.Profile{
			ID:          "google-uid-1",
			DisplayName: "Google User",
			Email:       "guser@example.com",
			Provider:    "google",
			AvatarURL:   "https://example.com/a.png",
		}, nil).Once()

	result := f.service.LoginWithProvider(context.Background(), "google")

	require.True(t, result.Success)
	assert.Equal(t, "google-uid-1", result.Session.ID)

	got, ok := f.store.ByID("google-uid-1")
	require.True(t, ok)
	assert.Equal(t, "google", got.Provider)
	f.idClient.AssertExpectations(t)
}

func TestRegister(t *testing.T) {
	f := newFixture(t, sessionservice.AdminCredentials{}, nil)
	f.idClient.On("Configured").Return(false)

	result := f.service.Register(context.Background(), models.Registration{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "password123",
		Skills:   []string{"go"},
	})

	require.True(t, result.Success)
	assert.Equal(t, "Registration successful!", result.Message)
	assert.NotEmpty(t, result.Token)

	members := f.store.All()
	require.Len(t, members, 1)
	assert.Equal(t, models.RoleUser, members[0].Role)
	assert.True(t, members[0].IsActive)
	assert.True(t, members[0].WillingToHelp)
	assert.NotEmpty(t, members[0].PasswordHash)
	assert.NotEqual(t, "password123", members[0].PasswordHash)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newFixture(t, sessionservice.AdminCredentials{}, nil)
	addMember(t, f.store, "Alice", "alice@example.com", "password123", models.RoleUser, nil)

	result := f.service.Register(context.Background(), models.Registration{
		Name:     "Imposter",
		Email:    "ALICE@example.com",
		Password: "password456",
	})

	assert.False(t, result.Success)
	assert.Equal(t, "User with this email already exists", result.Message)
	assert.Len(t, f.store.All(), 1)
}

func TestRegister_ShortPassword(t *testing.T) {
	f := newFixture(t, sessionservice.AdminCredentials{}, nil)

	result := f.service.Register(context.Background(), models.Registration{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "short",
	})

	assert.False(t, result.Success)
	assert.Empty(t, f.store.All())
}

func TestRegister_EnqueuesProvisioning(t *testing.T) {
	publisher := new(PublisherMock)
	f := newFixture(t, sessionservice.AdminCredentials{}, publisher)
	f.idClient.On("Configured").Return(true)
	publisher.On("EnqueueProvision", mock.MatchedBy(func(job outbox.ProvisionJob) bool {
		return job.Email == "alice@example.com" && job.Name == "Alice" && job.MemberID != ""
	})).Return(nil).Once()

	result := f.service.Register(context.Background(), models.Registration{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "password123",
	})

	require.True(t, result.Success)
	publisher.AssertExpectations(t)
}

// newFixtureWithDirectory связывает сервис сессий с реальным сервисом каталога
// поверх общего хранилища и кеша: регистрация и обновление профиля обязаны
// сбрасывать кеш агрегатов каталога.
func newFixtureWithDirectory(t *testing.T) (*fixture, *directoryservice.DirectoryService) {
	t.Helper()

	store := memory.New()
	idClient := new(IdentityClientMock)
	cache := newCacheFake()
	mailer := new(MailerMock)
	dir := directoryservice.NewDirectoryService(store, cache, newNoopLogger())

	svc := sessionservice.NewSessionService(
		store,
		idClient,
		cache,
		mailer,
		nil,
		dir,
		jwt.NewJWTMaker("test-secret", time.Hour),
		sessionservice.AdminCredentials{},
		"https://skillsfinder.local",
		15*time.Minute,
		newNoopLogger(),
	)
	return &fixture{store: store, idClient: idClient, cache: cache, mailer: mailer, service: svc}, dir
}

func TestRegister_RefreshesSkillAggregates(t *testing.T) {
	f, dir := newFixtureWithDirectory(t)
	f.idClient.On("Configured").Return(false)

	// Прогреваем кеш агрегатов на пустом каталоге
	require.Empty(t, dir.UniqueSkills(context.Background()))

	result := f.service.Register(context.Background(), models.Registration{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "password123",
		Skills:   []string{"Go"},
		Tools:    []string{"drill"},
	})
	require.True(t, result.Success)

	assert.Equal(t, []string{"Go"}, dir.UniqueSkills(context.Background()))
	assert.Equal(t, []string{"drill"}, dir.UniqueTools(context.Background()))
}

func TestUpdateProfile_RefreshesSkillAggregates(t *testing.T) {
	f, dir := newFixtureWithDirectory(t)
	m := addMember(t, f.store, "Alice", "alice@example.com", "password123", models.RoleUser, []string{"go"})

	require.Equal(t, []string{"go"}, dir.UniqueSkills(context.Background()))

	newSkills := []string{"go", "sql"}
	require.True(t, f.service.UpdateProfile(m.ID, models.ProfileUpdate{Skills: &newSkills}))

	assert.Equal(t, []string{"go", "sql"}, dir.UniqueSkills(context.Background()))
}

func TestEnsureAdmin(t *testing.T) {
	f := newFixture(t, sessionservice.AdminCredentials{Username: "boss", Password: "topsecret"}, nil)

	require.NoError(t, f.service.EnsureAdmin())

	members := f.store.All()
	require.Len(t, members, 1)
	assert.Equal(t, models.RoleAdmin, members[0].Role)
	assert.Equal(t, "boss", members[0].Name)
	assert.True(t, members[0].IsActive)

	// Повторный вызов не плодит дубликатов
	require.NoError(t, f.service.EnsureAdmin())
	assert.Len(t, f.store.All(), 1)

	// Административная пара теперь работает
	result := f.service.Login(context.Background(), "boss", "topsecret")
	require.True(t, result.Success)
	assert.True(t, result.Session.IsAdmin)
}

func TestEnsureAdmin_Unconfigured(t *testing.T) {
	f := newFixture(t, sessionservice.AdminCredentials{}, nil)

	require.NoError(t, f.service.EnsureAdmin())
	assert.Empty(t, f.store.All())
}

func TestEnsureAdmin_ExistingAdminKept(t *testing.T) {
	f := newFixture(t, sessionservice.AdminCredentials{Username: "boss", Password: "topsecret"}, nil)
	existing := addMember(t, f.store, "Root", "root@example.com", "password123", models.RoleAdmin, nil)

	require.NoError(t, f.service.EnsureAdmin())

	members := f.store.All()
	require.Len(t, members, 1)
	assert.Equal(t, existing.ID, members[0].ID)
}

func TestForgotPassword_LocalToken(t *testing.T) {
	f := newFixture(t, sessionservice.AdminCredentials{}, nil)
	addMember(t, f.store, "Alice", "alice@example.com", "password123", models.RoleUser, nil)
	f.idClient.On("Configured").Return(false)
	f.mailer.On("SendPasswordReset", "alice@example.com", "Alice", mock.MatchedBy(func(link string) bool {
		return strings.HasPrefix(link, "https://skillsfinder.local/reset-password?token=")
	})).Return(nil).Once()

	result := f.service.ForgotPassword(context.Background(), "alice@example.com")

	require.True(t, result.Success)
	assert.NotEmpty(t, f.cache.tokenKey())
	f.mailer.AssertExpectations(t)
}

func TestForgotPassword_UnknownEmail(t *testing.T) {
	f := newFixture(t, sessionservice.AdminCredentials{}, nil)
	f.idClient.On("Configured").Return(false)

	result := f.service.ForgotPassword(context.Background(), "ghost@example.com")

	assert.False(t, result.Success)
	assert.Empty(t, f.cache.tokenKey())
}

func TestForgotPassword_DelegatesToBackend(t *testing.T) {
	f := newFixture(t, sessionservice.AdminCredentials{}, nil)
	f.idClient.On("Configured").Return(true)
	f.idClient.On("SendPasswordReset", mock.Anything, "alice@example.com").Return(nil).Once()

	result := f.service.ForgotPassword(context.Background(), "alice@example.com")

	require.True(t, result.Success)
	f.idClient.AssertExpectations(t)
}

func TestResetPassword_RoundTrip(t *testing.T) {
	f := newFixture(t, sessionservice.AdminCredentials{}, nil)
	addMember(t, f.store, "Alice", "alice@example.com", "oldpassword1", models.RoleUser, nil)
	f.idClient.On("Configured").Return(false)
	f.mailer.On("SendPasswordReset", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	require.True(t, f.service.ForgotPassword(context.Background(), "alice@example.com").Success)
	token := f.cache.tokenKey()
	require.NotEmpty(t, token)

	verify := f.service.VerifyResetToken(context.Background(), token)
	assert.True(t, verify.Success)

	reset := f.service.ResetPassword(context.Background(), token, "newpassword1")
	require.True(t, reset.Success)

	// Токен одноразовый
	again := f.service.ResetPassword(context.Background(), token, "anotherpass1")
	assert.False(t, again.Success)

	// Старый пароль больше не работает, новый работает
	assert.False(t, f.service.Login(context.Background(), "alice@example.com", "oldpassword1").Success)
	assert.True(t, f.service.Login(context.Background(), "alice@example.com", "newpassword1").Success)
}

func TestVerifyResetToken_Invalid(t *testing.T) {
	f := newFixture(t, sessionservice.AdminCredentials{}, nil)

	result := f.service.VerifyResetToken(context.Background(), "bogus")

	assert.False(t, result.Success)
}

func TestLogoutAndCurrent(t *testing.T) {
	f := newFixture(t, sessionservice.AdminCredentials{}, nil)
	addMember(t, f.store, "Alice", "alice@example.com", "password123", models.RoleUser, nil)

	require.True(t, f.service.Login(context.Background(), "alice@example.com", "password123").Success)
	require.True(t, f.service.IsAuthenticated())
	assert.False(t, f.service.IsAdmin())

	f.service.Logout()
	assert.Nil(t, f.service.Current())
	assert.False(t, f.service.IsAuthenticated())

	// Повторный выход безопасен
	f.service.Logout()
}

func TestCurrent_ReturnsCopy(t *testing.T) {
	f := newFixture(t, sessionservice.AdminCredentials{}, nil)
	addMember(t, f.store, "Alice", "alice@example.com", "password123", models.RoleUser, nil)
	require.True(t, f.service.Login(context.Background(), "alice@example.com", "password123").Success)

	c := f.service.Current()
	require.NotNil(t, c)
	c.Name = "mutated"

	assert.Equal(t, "Alice", f.service.Current().Name)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t, sessionservice.AdminCredentials{}, nil)
	m := addMember(t, f.store, "Alice", "alice@example.com", "password123", models.RoleUser, nil)

	newName := "Alice Updated"
	willing := false
	ok := f.service.UpdateProfile(m.ID, models.ProfileUpdate{
		Name:          &newName,
		WillingToHelp: &willing,
	})
	require.True(t, ok)

	got, _ := f.store.ByID(m.ID)
	assert.Equal(t, "Alice Updated", got.Name)
	assert.False(t, got.WillingToHelp)
	assert.Equal(t, models.RoleUser, got.Role)
}

func TestUpdateProfile_PasswordChange(t *testing.T) {
	f := newFixture(t, sessionservice.AdminCredentials{}, nil)
	m := addMember(t, f.store, "Alice", "alice@example.com", "password123", models.RoleUser, nil)

	newPass := "freshpassword1"
	require.True(t, f.service.UpdateProfile(m.ID, models.ProfileUpdate{Password: &newPass}))

	assert.True(t, f.service.Login(context.Background(), "alice@example.com", "freshpassword1").Success)
}

func TestUpdateProfile_Rejections(t *testing.T) {
	f := newFixture(t, sessionservice.AdminCredentials{}, nil)
	m := addMember(t, f.store, "Alice", "alice@example.com", "password123", models.RoleUser, nil)

	short := "short"
	assert.False(t, f.service.UpdateProfile(m.ID, models.ProfileUpdate{Password: &short}))

	name := "Ghost"
	assert.False(t, f.service.UpdateProfile("missing-id", models.ProfileUpdate{Name: &name}))
}

func TestFindBySkills(t *testing.T) {
	f := newFixture(t, sessionservice.AdminCredentials{}, nil)
	addMember(t, f.store, "Alice", "alice@example.com", "password123", models.RoleUser, []string{"go", "sql"})
	addMember(t, f.store, "Bob", "bob@example.com", "password123", models.RoleUser, []string{"python"})

	got := f.service.FindBySkills([]string{"GO"})
	require.Len(t, got, 1)
	assert.Equal(t, "Alice", got[0].Name)

	// Пустой запрос возвращает пустой список, не всех участников
	assert.Empty(t, f.service.FindBySkills(nil))
	assert.Empty(t, f.service.FindBySkills([]string{}))
}

func TestMatchTeammates_Ranking(t *testing.T) {
	f := newFixture(t, sessionservice.AdminCredentials{}, nil)
	addMember(t, f.store, "Partial", "p@example.com", "password123", models.RoleUser, []string{"go", "docker", "sql"})
	addMember(t, f.store, "Exact", "e@example.com", "password123", models.RoleUser, []string{"go", "sql"})
	addMember(t, f.store, "None", "n@example.com", "password123", models.RoleUser, []string{"cooking"})

	got := f.service.MatchTeammates([]string{"go", "sql"})

	require.Len(t, got, 2)
	assert.Equal(t, "Exact", got[0].Name)
	assert.InDelta(t, 1.0, got[0].MatchScore, 1e-9)
	assert.Equal(t, "Partial", got[1].Name)
	assert.Greater(t, got[0].MatchScore, got[1].MatchScore)

	assert.Empty(t, f.service.MatchTeammates(nil))
}

func TestValidateToken(t *testing.T) {
	f := newFixture(t, sessionservice.AdminCredentials{}, nil)
	m := addMember(t, f.store, "Alice", "alice@example.com", "password123", models.RoleUser, nil)

	result := f.service.Login(context.Background(), "alice@example.com", "password123")
	require.True(t, result.Success)

	claims, err := f.service.ValidateToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, m.ID, claims.MemberID)
	assert.Equal(t, models.RoleUser, claims.Role)

	_, err = f.service.ValidateToken("garbage")
	assert.Error(t, err)
}
