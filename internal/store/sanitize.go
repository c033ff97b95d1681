package store

import (
	"strings"
	"unicode/utf8"

	apperrors "github.com/pushp314/agencydesk-backend/pkg/errors"
)

const MaxBodyLength = 8000

// sanitizeBody trims the body and rejects it when empty or too long. Bodies
// are stored verbatim otherwise; clients render them as text.
func sanitizeBody(body string) (string, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return "", apperrors.Validation("message body is required")
	}
	if utf8.RuneCountInString(body) > MaxBodyLength {
		return "", apperrors.Validation("message body exceeds maximum length")
	}
	return body, nil
}
