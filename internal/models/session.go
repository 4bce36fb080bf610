// Package models содержит модель сессии аутентифицированного участника.
package models

// Session — снимок данных участника на момент входа.
// Обновления участника после входа в сессии не отражаются.
type Session struct {
	ID      string   `json:"id"` // Идентификатор участника (или demo-<provider> для демо-сессии)
	Name    string   `json:"name"`
	Email   string   `json:"email,omitempty"`
	Role    string   `json:"role"`     // Роль на момент входа
	IsAdmin bool     `json:"is_admin"` // Признак администратора
	Skills  []string `json:"skills,omitempty"`
	Tools   []string `json:"tools,omitempty"`
}

// AuthResult — результат операции аутентификации.
// Message пригоден для показа пользователю без дополнительной обработки.
type AuthResult struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Token   string   `json:"token,omitempty"`   // JWT для HTTP-уровня, только при успехе
	Session *Session `json:"session,omitempty"` // Снимок сессии, только при успехе
}
