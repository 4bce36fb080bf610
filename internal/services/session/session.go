// Package session содержит логику бизнес-уровня для аутентификации участников
// и управления единственной текущей сессией процесса.
//
// Сервис переводит учётные данные (или профиль внешнего провайдера) в снимок
// сессии и JWT. Стратегии входа перебираются в фиксированном порядке:
// административная пара из конфигурации, проверка bcrypt-хэша участника
// каталога, затем парольный вход через внешний бэкенд идентичности.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/skillsfinder/skillsfinder/internal/identity"
	"github.com/skillsfinder/skillsfinder/internal/lib/jwt"
	"github.com/skillsfinder/skillsfinder/internal/lib/match"
	"github.com/skillsfinder/skillsfinder/internal/lib/password"
	"github.com/skillsfinder/skillsfinder/internal/lib/resettoken"
	"github.com/skillsfinder/skillsfinder/internal/lib/sl"
	"github.com/skillsfinder/skillsfinder/internal/models"
	"github.com/skillsfinder/skillsfinder/internal/outbox"
)

// DemoIDPrefix — сентинельный префикс идентификатора демо-сессии.
// Демо-сессии не имеют записи в каталоге.
const DemoIDPrefix = "demo-"

const resetTokenKeyPrefix = "reset_token:"

// Сообщения, возвращаемые пользователю. Сообщение об ошибке входа намеренно
// не различает неверный идентификатор и неверный пароль.
const (
	msgLoginOK            = "Login successful!"
	msgInvalidCredentials = "Invalid username or password"
	msgRegisterOK         = "Registration successful!"
	msgDuplicateEmail     = "User with this email already exists"
)

// Store описывает контракт хранилища каталога для нужд аутентификации.
type Store interface {
	All() []models.Member
	ByID(id string) (models.Member, bool)
	ByEmail(email string) (models.Member, bool)
	Add(m models.Member) models.Member
	Update(m models.Member) (models.Member, bool)
}

// IdentityClient описывает контракт внешнего бэкенда идентичности.
type IdentityClient interface {
	Configured() bool
	SignInWithPassword(ctx context.Context, email, password string) (*identity.Profile, error)
	SignInWithProvider(ctx context.Context, provider string) (*identity.Profile, error)
	SendPasswordReset(ctx context.Context, email string) error
}

// Cache хранит одноразовые токены сброса пароля с TTL.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// ResetMailer отправляет письмо со ссылкой сброса пароля.
type ResetMailer interface {
	SendPasswordReset(email, name, resetLink string) error
}

// AggregateCache сбрасывает кеш агрегатных запросов каталога. Регистрация и
// обновление профиля меняют навыки и инструменты в обход сервиса каталога,
// поэтому обязаны сбрасывать его кеш сами.
type AggregateCache interface {
	InvalidateAggregates()
}

// AdminCredentials — фиксированная административная пара из конфигурации.
type AdminCredentials struct {
	Username string
	Password string
}

// SessionService отвечает за вход, регистрацию, сброс пароля и жизненный цикл
// текущей сессии.
type SessionService struct {
	store      Store
	idClient   IdentityClient
	cache      Cache
	mailer     ResetMailer
	provision  outbox.Publisher
	aggregates AggregateCache
	jwtMaker   jwt.Maker
	admin      AdminCredentials
	appURL     string
	resetTTL   time.Duration
	log        *slog.Logger

	mu      sync.Mutex
	current *models.Session
}

// NewSessionService создает новый экземпляр SessionService.
// mailer, provision и aggregates могут быть nil — соответствующие шаги пропускаются.
func NewSessionService(
	store Store,
	idClient IdentityClient,
	cache Cache,
	mailer ResetMailer,
	provision outbox.Publisher,
	aggregates AggregateCache,
	jwtMaker jwt.Maker,
	admin AdminCredentials,
	appURL string,
	resetTTL time.Duration,
	log *slog.Logger,
) *SessionService {
	return &SessionService{
		store:      store,
		idClient:   idClient,
		cache:      cache,
		mailer:     mailer,
		provision:  provision,
		aggregates: aggregates,
		jwtMaker:   jwtMaker,
		admin:      admin,
		appURL:     appURL,
		resetTTL:   resetTTL,
		log:        log,
	}
}

// Login выполняет вход по идентификатору (почта или имя) и паролю.
// Стратегии перебираются в фиксированном порядке, выигрывает первая
// совпавшая. При неудаче всех стратегий возвращается общий текст ошибки
// без уточнения причины.
func (s *SessionService) Login(ctx context.Context, identifier, secret string) models.AuthResult {
	const op = "session.Login"
	log := s.log.With(sl.Op(op))

	if s.admin.Username != "" && identifier == s.admin.Username && secret == s.admin.Password {
		for _, m := range s.store.All() {
			if m.Role == models.RoleAdmin {
				return s.establish(m, log)
			}
		}
		// Пара совпала, но администратора в каталоге нет.
		log.Warn("admin credentials matched but no admin member exists")
		return failure(msgInvalidCredentials)
	}

	if m, ok := s.resolveLocal(identifier); ok && m.PasswordHash != "" {
		if err := password.CompareHash(m.PasswordHash, secret); err == nil {
			return s.establish(m, log)
		}
	}

	if s.idClient != nil && s.idClient.Configured() {
		profile, err := s.idClient.SignInWithPassword(ctx, identifier, secret)
		if err != nil {
			log.Error("identity backend sign-in failed", sl.Err(err))
			return failure(msgInvalidCredentials)
		}
		m := s.mergeProfile(*profile)
		return s.establish(m, log)
	}

	return failure(msgInvalidCredentials)
}

// LoginWithProvider выполняет вход через стороннего провайдера (github, google).
// Если бэкенд идентичности не сконфигурирован, возвращается детерминированная
// демо-сессия с сентинельным идентификатором demo-<provider>.
func (s *SessionService) LoginWithProvider(ctx context.Context, provider string) models.AuthResult {
	const op = "session.LoginWithProvider"
	log := s.log.With(sl.Op(op), slog.String("provider", provider))

	if s.idClient == nil || !s.idClient.Configured() {
		sess := &models.Session{
			ID:   DemoIDPrefix + provider,
			Name: "Demo " + titleCase(provider) + " User",
			Role: models.RoleUser,
		}
		token, err := s.jwtMaker.GenerateToken(sess.ID, sess.Name, sess.Role)
		if err != nil {
			log.Error("failed to generate token", sl.Err(err))
			return failure("Unable to sign in right now")
		}
		s.setCurrent(sess)
		log.Info("demo provider session created")
		return models.AuthResult{
			Success: true,
			Message: fmt.Sprintf("Logged in with %s (demo mode)", titleCase(provider)),
			Token:   token,
			Session: sess,
		}
	}

	profile, err := s.idClient.SignInWithProvider(ctx, provider)
	if err != nil {
		log.Error("provider sign-in failed", sl.Err(err))
		return failure(fmt.Sprintf("Unable to sign in with %s", titleCase(provider)))
	}
	m := s.mergeProfile(*profile)
	return s.establish(m, log)
}

// Register создаёт нового участника каталога и сразу выполняет вход.
// Повторная регистрация почты отклоняется, каталог при этом не меняется.
// При сконфигурированном бэкенде идентичности в очередь кладётся задание
// провижининга внешней учётной записи.
func (s *SessionService) Register(_ context.Context, reg models.Registration) models.AuthResult {
	const op = "session.Register"
	log := s.log.With(sl.Op(op))

	if err := password.Validate(reg.Password); err != nil {
		return failure(err.Error())
	}
	if _, exists := s.store.ByEmail(reg.Email); exists {
		log.Info("duplicate registration rejected")
		return failure(msgDuplicateEmail)
	}

	hash, err := password.GetHash(reg.Password)
	if err != nil {
		log.Error("failed to hash password", sl.Err(err))
		return failure("Unable to register right now")
	}

	m := s.store.Add(models.Member{
		Name:          reg.Name,
		Email:         reg.Email,
		Phone:         reg.Phone,
		PasswordHash:  hash,
		Skills:        reg.Skills,
		Tools:         reg.Tools,
		WillingToHelp: true,
		IsActive:      true,
		Role:          models.RoleUser,
	})
	s.invalidateAggregates()
	log.Info("member registered", slog.String("id", m.ID))

	if s.provision != nil && s.idClient != nil && s.idClient.Configured() {
		job := outbox.ProvisionJob{MemberID: m.ID, Email: m.Email, Name: m.Name}
		if err := s.provision.EnqueueProvision(job); err != nil {
			// Локальная запись уже создана, расхождение закроет воркер
			// после восстановления очереди.
			log.Error("failed to enqueue identity provisioning", sl.Err(err))
		}
	}

	result := s.establish(m, log)
	if result.Success {
		result.Message = msgRegisterOK
	}
	return result
}

// EnsureAdmin создаёт администратора из сконфигурированной пары, если в
// каталоге ещё нет участника с ролью admin. Без этой записи административная
// пара не работает и вся административная группа маршрутов недостижима на
// свежем развёртывании. Повторный вызов ничего не меняет.
func (s *SessionService) EnsureAdmin() error {
	const op = "session.EnsureAdmin"
	log := s.log.With(sl.Op(op))

	if s.admin.Username == "" || s.admin.Password == "" {
		return nil
	}
	for _, m := range s.store.All() {
		if m.Role == models.RoleAdmin {
			return nil
		}
	}

	hash, err := password.GetHash(s.admin.Password)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	m := s.store.Add(models.Member{
		Name:          s.admin.Username,
		PasswordHash:  hash,
		Role:          models.RoleAdmin,
		IsActive:      true,
		WillingToHelp: true,
	})
	s.invalidateAggregates()
	log.Info("admin member bootstrapped", slog.String("id", m.ID))
	return nil
}

// ForgotPassword запускает процедуру сброса пароля.
// При сконфигурированном бэкенде идентичности доставка делегируется ему,
// иначе выпускается одноразовый токен с TTL и письмо отправляется по SMTP,
// если транспорт настроен.
func (s *SessionService) ForgotPassword(ctx context.Context, email string) models.AuthResult {
	const op = "session.ForgotPassword"
	log := s.log.With(sl.Op(op))

	if s.idClient != nil && s.idClient.Configured() {
		if err := s.idClient.SendPasswordReset(ctx, email); err != nil {
			log.Error("identity backend reset dispatch failed", sl.Err(err))
			return failure("Unable to send reset email, please try again later")
		}
		return success("Password reset email sent")
	}

	m, ok := s.store.ByEmail(email)
	if !ok {
		return failure("No account found with this email")
	}

	token, err := resettoken.Generate()
	if err != nil {
		log.Error("failed to generate reset token", sl.Err(err))
		return failure("Unable to issue reset token, please try again later")
	}
	if err := s.cache.Set(resetTokenKeyPrefix+token, m.ID, s.resetTTL); err != nil {
		log.Error("failed to store reset token", sl.Err(err))
		return failure("Unable to issue reset token, please try again later")
	}

	if s.mailer != nil {
		link := s.appURL + "/reset-password?token=" + token
		if err := s.mailer.SendPasswordReset(m.Email, m.Name, link); err != nil {
			// Токен выпущен, письмо не ушло: пользователь может повторить запрос.
			log.Warn("failed to send reset email", sl.Err(err))
		}
	}

	log.Info("reset token issued", slog.String("member_id", m.ID))
	return success("Password reset link issued")
}

// VerifyResetToken проверяет, что токен сброса существует и не истёк.
func (s *SessionService) VerifyResetToken(_ context.Context, token string) models.AuthResult {
	const op = "session.VerifyResetToken"

	var memberID string
	found, err := s.cache.Get(resetTokenKeyPrefix+token, &memberID)
	if err != nil {
		s.log.Error("failed to read reset token", sl.Op(op), sl.Err(err))
		return failure("Unable to verify token, please try again later")
	}
	if !found {
		return failure("Invalid or expired reset token")
	}
	return success("Token is valid")
}

// ResetPassword устанавливает новый пароль по одноразовому токену.
// Токен сжигается независимо от исхода последующих шагов.
func (s *SessionService) ResetPassword(_ context.Context, token, newPassword string) models.AuthResult {
	const op = "session.ResetPassword"
	log := s.log.With(sl.Op(op))

	if err := password.Validate(newPassword); err != nil {
		return failure(err.Error())
	}

	key := resetTokenKeyPrefix + token
	var memberID string
	found, err := s.cache.Get(key, &memberID)
	if err != nil {
		log.Error("failed to read reset token", sl.Err(err))
		return failure("Unable to reset password, please try again later")
	}
	if !found {
		return failure("Invalid or expired reset token")
	}
	if err := s.cache.Invalidate(key); err != nil {
		log.Warn("failed to burn reset token", sl.Err(err))
	}

	m, ok := s.store.ByID(memberID)
	if !ok {
		return failure("Invalid or expired reset token")
	}
	hash, err := password.GetHash(newPassword)
	if err != nil {
		log.Error("failed to hash password", sl.Err(err))
		return failure("Unable to reset password, please try again later")
	}
	m.PasswordHash = hash
	if _, ok := s.store.Update(m); !ok {
		return failure("Unable to reset password, please try again later")
	}

	log.Info("password reset", slog.String("member_id", m.ID))
	return success("Password has been reset")
}

// Logout безусловно завершает текущую сессию. Идемпотентен.
func (s *SessionService) Logout() {
	s.setCurrent(nil)
}

// Current возвращает снимок текущей сессии или nil.
func (s *SessionService) Current() *models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	c := *s.current
	return &c
}

// IsAuthenticated сообщает, есть ли активная сессия.
func (s *SessionService) IsAuthenticated() bool {
	return s.Current() != nil
}

// IsAdmin сообщает, принадлежит ли текущая сессия администратору.
func (s *SessionService) IsAdmin() bool {
	c := s.Current()
	return c != nil && c.IsAdmin
}

// UpdateProfile сливает разрешённые поля в запись участника.
// Идентификатор, роль и признак администратора этим путём не меняются.
// Возвращает false, если записи с таким id нет.
func (s *SessionService) UpdateProfile(id string, upd models.ProfileUpdate) bool {
	const op = "session.UpdateProfile"

	m, ok := s.store.ByID(id)
	if !ok {
		return false
	}
	if upd.Name != nil {
		m.Name = *upd.Name
	}
	if upd.Phone != nil {
		m.Phone = *upd.Phone
	}
	if upd.Skills != nil {
		m.Skills = append([]string(nil), (*upd.Skills)...)
	}
	if upd.Tools != nil {
		m.Tools = append([]string(nil), (*upd.Tools)...)
	}
	if upd.WillingToHelp != nil {
		m.WillingToHelp = *upd.WillingToHelp
	}
	if upd.Password != nil {
		if err := password.Validate(*upd.Password); err != nil {
			return false
		}
		hash, err := password.GetHash(*upd.Password)
		if err != nil {
			s.log.Error("failed to hash password", sl.Op(op), sl.Err(err))
			return false
		}
		m.PasswordHash = hash
	}
	if _, ok = s.store.Update(m); !ok {
		return false
	}
	s.invalidateAggregates()
	return true
}

// FindBySkills возвращает участников, навыки которых пересекаются с запросом.
// Пустой запрос возвращает пустой список.
func (s *SessionService) FindBySkills(skills []string) []models.ProfileSummary {
	if len(skills) == 0 {
		return []models.ProfileSummary{}
	}
	var result []models.ProfileSummary
	for _, m := range s.store.All() {
		if match.Intersects(skills, m.Skills) {
			result = append(result, summary(m, 0))
		}
	}
	if result == nil {
		result = []models.ProfileSummary{}
	}
	return result
}

// MatchTeammates возвращает участников, ранжированных по коэффициенту Жаккара
// между запрошенными навыками и навыками участника. Участники без пересечения
// не включаются.
func (s *SessionService) MatchTeammates(skills []string) []models.ProfileSummary {
	if len(skills) == 0 {
		return []models.ProfileSummary{}
	}
	var result []models.ProfileSummary
	for _, m := range s.store.All() {
		score := match.Jaccard(skills, m.Skills)
		if score > 0 {
			result = append(result, summary(m, score))
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].MatchScore != result[j].MatchScore {
			return result[i].MatchScore > result[j].MatchScore
		}
		return result[i].Name < result[j].Name
	})
	if result == nil {
		result = []models.ProfileSummary{}
	}
	return result
}

// ValidateToken проверяет JWT и возвращает claims участника.
func (s *SessionService) ValidateToken(tokenStr string) (*jwt.CustomClaims, error) {
	return s.jwtMaker.ParseToken(tokenStr)
}

// establish фиксирует успешный вход: обновляет lastActive участника,
// делает снимок сессии и выпускает JWT.
func (s *SessionService) establish(m models.Member, log *slog.Logger) models.AuthResult {
	now := time.Now()
	m.LastActive = &now
	if _, ok := s.store.Update(m); !ok {
		log.Warn("failed to touch last active", slog.String("id", m.ID))
	}

	role := m.Role
	if role == "" {
		role = models.RoleUser
	}
	sess := &models.Session{
		ID:      m.ID,
		Name:    m.Name,
		Email:   m.Email,
		Role:    role,
		IsAdmin: role == models.RoleAdmin,
		Skills:  append([]string(nil), m.Skills...),
		Tools:   append([]string(nil), m.Tools...),
	}
	token, err := s.jwtMaker.GenerateToken(sess.ID, sess.Name, sess.Role)
	if err != nil {
		log.Error("failed to generate token", sl.Err(err))
		return failure("Unable to sign in right now")
	}

	s.setCurrent(sess)
	log.Info("session established", slog.String("id", sess.ID), slog.String("role", sess.Role))
	return models.AuthResult{
		Success: true,
		Message: msgLoginOK,
		Token:   token,
		Session: sess,
	}
}

// resolveLocal находит участника по почте или, если не нашлось, по имени.
func (s *SessionService) resolveLocal(identifier string) (models.Member, bool) {
	if m, ok := s.store.ByEmail(identifier); ok {
		return m, true
	}
	for _, m := range s.store.All() {
		if strings.EqualFold(m.Name, identifier) {
			return m, true
		}
	}
	return models.Member{}, false
}

// mergeProfile находит или создаёт участника, ключом которого служит
// стабильный идентификатор провайдера, и сливает поля профиля.
// Локально заданные навыки и инструменты никогда не перезаписываются.
func (s *SessionService) mergeProfile(p identity.Profile) models.Member {
	m, ok := s.store.ByID(p.ID)
	if !ok {
		created := s.store.Add(models.Member{
			ID:            p.ID,
			Name:          p.DisplayName,
			Email:         p.Email,
			Role:          models.RoleUser,
			IsActive:      true,
			WillingToHelp: true,
			Provider:      p.Provider,
			AvatarURL:     p.AvatarURL,
			ExternalLogin: p.ExternalLogin,
		})
		s.invalidateAggregates()
		return created
	}

	if p.DisplayName != "" {
		m.Name = p.DisplayName
	}
	if p.Email != "" {
		m.Email = p.Email
	}
	if p.AvatarURL != "" {
		m.AvatarURL = p.AvatarURL
	}
	if p.ExternalLogin != "" {
		m.ExternalLogin = p.ExternalLogin
	}
	m.Provider = p.Provider
	if updated, ok := s.store.Update(m); ok {
		return updated
	}
	return m
}

func (s *SessionService) setCurrent(sess *models.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = sess
}

func (s *SessionService) invalidateAggregates() {
	if s.aggregates != nil {
		s.aggregates.InvalidateAggregates()
	}
}

func summary(m models.Member, score float64) models.ProfileSummary {
	return models.ProfileSummary{
		ID:            m.ID,
		Name:          m.Name,
		Skills:        append([]string(nil), m.Skills...),
		Tools:         append([]string(nil), m.Tools...),
		WillingToHelp: m.WillingToHelp,
		MatchScore:    score,
	}
}

func success(msg string) models.AuthResult {
	return models.AuthResult{Success: true, Message: msg}
}

func failure(msg string) models.AuthResult {
	return models.AuthResult{Success: false, Message: msg}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
