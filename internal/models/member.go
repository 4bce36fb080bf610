// Package models содержит доменную модель участника каталога,
// включающую навыки, инструменты и историю одолженных предметов.
// Структуры используются в бизнес‑логике и в хранилище.
package models

import "time"

// Роли участников каталога.
const (
	RoleAdmin   = "admin"
	RoleUser    = "user"
	RoleManager = "manager"
)

// Member представляет одного участника каталога.
type Member struct {
	ID            string     `json:"id"`                    // Уникальный идентификатор участника
	Name          string     `json:"name"`                  // Имя участника
	Email         string     `json:"email,omitempty"`       // Электронная почта (опционально)
	Phone         string     `json:"phone,omitempty"`       // Телефон (опционально)
	PasswordHash  string     `json:"-"`                     // Хэш пароля участника
	Skills        []string   `json:"skills"`                // Навыки участника
	Tools         []string   `json:"tools"`                 // Инструменты, доступные для одалживания
	WillingToHelp bool       `json:"willing_to_help"`       // Готов ли участник помогать другим
	IsActive      bool       `json:"is_active"`             // Статус активности учётной записи
	Role          string     `json:"role"`                  // Роль участника: admin, user или manager
	LastActive    *time.Time `json:"last_active,omitempty"` // Время последнего входа
	Provider      string     `json:"provider,omitempty"`    // Внешний провайдер идентичности (github, google)
	AvatarURL     string     `json:"avatar_url,omitempty"`
	ExternalLogin string     `json:"external_login,omitempty"` // Имя пользователя у внешнего провайдера
	BorrowedItems []Loan     `json:"borrowed_items"`           // История одолженных предметов
}

// Loan представляет одну запись об одолженном предмете.
// Запись без ReturnedAt считается активной.
type Loan struct {
	Item       string     `json:"item"`                  // Название предмета
	LenderID   string     `json:"lender_id"`             // Идентификатор владельца предмета
	BorrowedAt time.Time  `json:"borrowed_at"`           // Время выдачи
	ReturnedAt *time.Time `json:"returned_at,omitempty"` // Время возврата, nil если предмет не возвращён
}

// Returned сообщает, возвращён ли предмет.
func (l Loan) Returned() bool {
	return l.ReturnedAt != nil
}

// Registration — входные данные регистрации нового участника.
type Registration struct {
	Name     string   // Имя участника
	Email    string   // Электронная почта (уникальная)
	Password string   // Пароль в открытом виде, хэшируется при создании
	Phone    string   // Телефон (опционально)
	Skills   []string // Начальные навыки
	Tools    []string // Начальные инструменты
}

// ProfileUpdate — частичное обновление профиля участника.
// Нулевые указатели означают "поле не менять".
type ProfileUpdate struct {
	Name          *string
	Phone         *string
	Skills        *[]string
	Tools         *[]string
	WillingToHelp *bool
	Password      *string
}

// ProfileSummary — краткая карточка участника для подбора команды.
type ProfileSummary struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Skills        []string `json:"skills"`
	Tools         []string `json:"tools"`
	WillingToHelp bool     `json:"willing_to_help"`
	MatchScore    float64  `json:"match_score,omitempty"` // Коэффициент Жаккара по навыкам, 0..1
}
