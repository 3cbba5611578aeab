package domain

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

func requireText(fe FieldErrors, field, value string, maxLen int) {
	if strings.TrimSpace(value) == "" {
		fe.Add(field, "this field is required")
		return
	}
	checkLength(fe, field, value, maxLen)
}

func checkLength(fe FieldErrors, field, value string, maxLen int) {
	if maxLen > 0 && utf8.RuneCountInString(value) > maxLen {
		fe.Add(field, fmt.Sprintf("ensure this field has no more than %d characters", maxLen))
	}
}

func nonNegative(fe FieldErrors, field string, value float64) {
	if value < 0 {
		fe.Add(field, "must be greater than or equal to 0")
	}
}

func optionalNonNegative(fe FieldErrors, field string, value *float64) {
	if value != nil {
		nonNegative(fe, field, *value)
	}
}

func validEmail(fe FieldErrors, field, value string) {
	if value == "" {
		return
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		fe.Add(field, "enter a valid email address")
	}
}
