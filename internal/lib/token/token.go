// Package token генерирует непрозрачные токены с высокой энтропией
// для рекламных сессий и коротких кодов подтверждения.
package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// Hex возвращает токен из n случайных байт в шестнадцатеричной записи,
// длина результата — 2*n символов.
func Hex(n int) (string, error) {
	const op = "token.Hex"
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return hex.EncodeToString(buf), nil
}

// SessionID возвращает токен рекламной сессии: 32 шестнадцатеричных символа.
func SessionID() (string, error) {
	return Hex(16)
}

// Code возвращает короткий код подтверждения, пригодный для ручного ввода:
// 8 шестнадцатеричных символов в верхнем регистре.
func Code() (string, error) {
	s, err := Hex(4)
	if err != nil {
		return "", err
	}
	return strings.ToUpper(s), nil
}

// Normalize приводит введённый пользователем код к каноническому виду:
// обрезает пробелы и поднимает регистр.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
