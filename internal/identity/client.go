// Package identity реализует клиента внешнего бэкенда идентичности.
//
// Бэкенд выполняет настоящую проверку учётных данных, OAuth-вход через
// сторонних провайдеров, рассылку писем для сброса пароля и долговременное
// хранение профилей. Клиент передаёт учётные данные или токены и получает
// разрешённый профиль либо ошибку. Несконфигурированный клиент переводит
// сервис сессий в демо-режим.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// ErrUnavailable возвращается, когда бэкенд идентичности не сконфигурирован.
var ErrUnavailable = errors.New("identity backend is not configured")

// Client — HTTP-клиент внешнего бэкенда идентичности.
type Client struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
}

// NewClient создаёт клиента бэкенда идентичности.
// Пустой apiURL означает, что бэкенд не сконфигурирован.
func NewClient(apiURL, apiKey string) *Client {
	return &Client{
		apiURL:     apiURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Configured сообщает, задан ли адрес бэкенда.
func (c *Client) Configured() bool {
	return c != nil && c.apiURL != ""
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	url := c.apiURL + path
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (c *Client) doProfile(req *http.Request) (*Profile, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, errors.New("unexpected status: " + resp.Status)
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// SignInWithPassword выполняет вход по почте и паролю через бэкенд идентичности.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Profile, error) {
	if !c.Configured() {
		return nil, ErrUnavailable
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/auth/password", passwordGrantRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, err
	}
	return c.doProfile(req)
}

// SignInWithProvider выполняет OAuth-вход через стороннего провайдера (github, google).
func (c *Client) SignInWithProvider(ctx context.Context, provider string) (*Profile, error) {
	if !c.Configured() {
		return nil, ErrUnavailable
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/auth/provider", providerSignInRequest{
		Provider: provider,
	})
	if err != nil {
		return nil, err
	}
	return c.doProfile(req)
}

// CreateUser создаёт учётную запись во внешнем бэкенде и возвращает её профиль.
func (c *Client) CreateUser(ctx context.Context, email, password, name string) (*Profile, error) {
	if !c.Configured() {
		return nil, ErrUnavailable
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/users", createUserRequest{
		Email:    email,
		Password: password,
		Name:     name,
	})
	if err != nil {
		return nil, err
	}
	return c.doProfile(req)
}

// SendPasswordReset просит бэкенд отправить письмо для сброса пароля.
func (c *Client) SendPasswordReset(ctx context.Context, email string) error {
	if !c.Configured() {
		return ErrUnavailable
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/auth/password-reset", passwordResetRequest{
		Email: email,
	})
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return errors.New("unexpected status: " + resp.Status)
	}
	return nil
}
