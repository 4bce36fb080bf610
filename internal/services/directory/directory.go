// Package directory содержит бизнес-логику каталога участников: поиск,
// учёт одолженных предметов, агрегатные запросы и административные операции.
package directory

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/skillsfinder/skillsfinder/internal/lib/sl"
	"github.com/skillsfinder/skillsfinder/internal/models"
)

// Ошибки уровня каталога. Операции над отсутствующими записями не паникуют
// и не возвращают низкоуровневых ошибок — только эти значения.
var (
	// ErrNotFound возвращается, когда запись с данным id отсутствует.
	ErrNotFound = errors.New("member not found")
	// ErrNoActiveLoan возвращается, когда активного займа с такими параметрами нет.
	ErrNoActiveLoan = errors.New("no active loan matches item and lender")
)

// Ключи кеша агрегатных запросов.
const (
	cacheKeySkills      = "directory:skills"
	cacheKeyTools       = "directory:tools"
	cacheKeyActiveLoans = "directory:active_loans"

	aggregateTTL = time.Hour
)

// Store описывает контракт хранилища каталога.
type Store interface {
	All() []models.Member
	ByID(id string) (models.Member, bool)
	Search(query string) []models.Member
	Remove(id string) bool
	ToggleActive(id string) bool
	SetRole(id, role string) bool
	Borrow(borrowerID, lenderID, itemName string) bool
	ReturnLoan(borrowerID, lenderID, itemName string) bool
	UniqueSkills() []string
	UniqueTools() []string
	TotalActiveLoans() int
	ResetAllLoans() bool
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// DirectoryService реализует бизнес-логику каталога, включая кеширование
// агрегатных запросов.
type DirectoryService struct {
	store Store
	cache Cache
	log   *slog.Logger
}

// NewDirectoryService создает новый экземпляр DirectoryService.
func NewDirectoryService(store Store, cache Cache, log *slog.Logger) *DirectoryService {
	return &DirectoryService{
		store: store,
		cache: cache,
		log:   log,
	}
}

// All возвращает всех участников каталога.
func (s *DirectoryService) All(_ context.Context) []models.Member {
	return s.store.All()
}

// ByID возвращает участника по идентификатору.
func (s *DirectoryService) ByID(_ context.Context, id string) (models.Member, error) {
	m, ok := s.store.ByID(id)
	if !ok {
		return models.Member{}, ErrNotFound
	}
	return m, nil
}

// Search ищет участников по подстроке имени, навыка или инструмента.
func (s *DirectoryService) Search(_ context.Context, query string) []models.Member {
	return s.store.Search(query)
}

// Remove удаляет участника каталога.
func (s *DirectoryService) Remove(_ context.Context, id string) error {
	if !s.store.Remove(id) {
		return ErrNotFound
	}
	s.invalidateAggregates()
	s.log.Info("member removed", slog.String("id", id))
	return nil
}

// ToggleActive переключает статус активности участника.
func (s *DirectoryService) ToggleActive(_ context.Context, id string) error {
	if !s.store.ToggleActive(id) {
		return ErrNotFound
	}
	return nil
}

// SetRole устанавливает роль участника.
func (s *DirectoryService) SetRole(_ context.Context, id, role string) error {
	if !s.store.SetRole(id, role) {
		return ErrNotFound
	}
	s.log.Info("member role updated", slog.String("id", id), slog.String("role", role))
	return nil
}

// Borrow записывает выдачу предмета. Владелец и сам предмет не проверяются.
func (s *DirectoryService) Borrow(_ context.Context, borrowerID, lenderID, itemName string) error {
	if !s.store.Borrow(borrowerID, lenderID, itemName) {
		return ErrNotFound
	}
	s.invalidateLoans()
	s.log.Info("item borrowed",
		slog.String("borrower", borrowerID),
		slog.String("lender", lenderID),
		slog.String("item", itemName))
	return nil
}

// Return помечает заём возвращённым.
func (s *DirectoryService) Return(_ context.Context, borrowerID, lenderID, itemName string) error {
	if _, ok := s.store.ByID(borrowerID); !ok {
		return ErrNotFound
	}
	if !s.store.ReturnLoan(borrowerID, lenderID, itemName) {
		return ErrNoActiveLoan
	}
	s.invalidateLoans()
	s.log.Info("item returned",
		slog.String("borrower", borrowerID),
		slog.String("lender", lenderID),
		slog.String("item", itemName))
	return nil
}

// UniqueSkills возвращает уникальные навыки всех участников, используя кеш.
func (s *DirectoryService) UniqueSkills(_ context.Context) []string {
	return s.cachedAggregate(cacheKeySkills, s.store.UniqueSkills)
}

// UniqueTools возвращает уникальные инструменты всех участников, используя кеш.
func (s *DirectoryService) UniqueTools(_ context.Context) []string {
	return s.cachedAggregate(cacheKeyTools, s.store.UniqueTools)
}

// TotalActiveLoans возвращает число невозвращённых займов, используя кеш.
func (s *DirectoryService) TotalActiveLoans(_ context.Context) int {
	if s.cache != nil {
		var cached int
		found, err := s.cache.Get(cacheKeyActiveLoans, &cached)
		if err != nil {
			s.log.Warn("failed to read cache", slog.String("key", cacheKeyActiveLoans), sl.Err(err))
		}
		if found {
			return cached
		}
	}
	count := s.store.TotalActiveLoans()
	s.cacheSet(cacheKeyActiveLoans, count)
	return count
}

// ResetAllLoans безусловно очищает списки займов всех участников.
func (s *DirectoryService) ResetAllLoans(_ context.Context) {
	s.store.ResetAllLoans()
	s.invalidateLoans()
	s.log.Info("all loans reset")
}

// InvalidateAggregates сбрасывает кеш агрегатов после мутаций,
// выполненных в обход каталога (регистрация, обновление профиля).
func (s *DirectoryService) InvalidateAggregates() {
	s.invalidateAggregates()
}

func (s *DirectoryService) cachedAggregate(key string, compute func() []string) []string {
	if s.cache != nil {
		var cached []string
		found, err := s.cache.Get(key, &cached)
		if err != nil {
			s.log.Warn("failed to read cache", slog.String("key", key), sl.Err(err))
		}
		if found {
			return cached
		}
	}
	result := compute()
	s.cacheSet(key, result)
	return result
}

func (s *DirectoryService) cacheSet(key string, value any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(key, value, aggregateTTL); err != nil {
		s.log.Warn("failed to cache aggregate", slog.String("key", key), sl.Err(err))
	}
}

func (s *DirectoryService) invalidateLoans() {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(cacheKeyActiveLoans); err != nil {
		s.log.Warn("failed to invalidate cache", slog.String("key", cacheKeyActiveLoans), sl.Err(err))
	}
}

func (s *DirectoryService) invalidateAggregates() {
	if s.cache == nil {
		return
	}
	for _, key := range []string{cacheKeySkills, cacheKeyTools, cacheKeyActiveLoans} {
		if err := s.cache.Invalidate(key); err != nil {
			s.log.Warn("failed to invalidate cache", slog.String("key", key), sl.Err(err))
		}
	}
}
