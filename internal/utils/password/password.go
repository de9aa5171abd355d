package password

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Security answers are matched case- and whitespace-insensitively.
func normalizeAnswer(answer string) string {
	return strings.ToLower(strings.TrimSpace(answer))
}

func HashAnswer(answer string) (string, error) {
	return HashPassword(normalizeAnswer(answer))
}

func CheckAnswerHash(answer, hash string) bool {
	return CheckPasswordHash(normalizeAnswer(answer), hash)
}
