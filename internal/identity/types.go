package identity

// Profile — разрешённый профиль пользователя, возвращаемый внешним бэкендом идентичности.
type Profile struct {
	ID            string `json:"id"` // Стабильный идентификатор, назначенный провайдером
	DisplayName   string `json:"display_name"`
	Email         string `json:"email"`
	AvatarURL     string `json:"avatar_url"`
	Provider      string `json:"provider"`       // email, github или google
	ExternalLogin string `json:"external_login"` // Имя пользователя у провайдера
}

// Запрос входа по паролю
type passwordGrantRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Запрос интерактивного входа через стороннего провайдера
type providerSignInRequest struct {
	Provider string `json:"provider"`
}

// Запрос создания учётной записи во внешнем бэкенде
type createUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Запрос отправки письма для сброса пароля
type passwordResetRequest struct {
	Email string `json:"email"`
}
