// Package resettoken генерирует одноразовые токены сброса пароля.
//
// Токен — 32 случайных байта в URL-безопасной base64-кодировке.
// Срок жизни и одноразовость обеспечиваются хранилищем (redis с TTL),
// сам токен не несёт никакой информации о пользователе.
package resettoken

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// Generate возвращает новый криптографически случайный токен сброса.
func Generate() (string, error) {
	const op = "resettoken.Generate"
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
