package logger

import (
	"strings"

	"go.uber.org/zap"
)

// MaskEmail creates a zap field with the local part of the address masked.
// Example: someone@example.com -> s•••••e@example.com
func MaskEmail(key, email string) zap.Field {
	return zap.String(key, maskEmail(email))
}

// MaskPhone creates a zap field with all but the last 4 digits masked.
func MaskPhone(key, phone string) zap.Field {
	return zap.String(key, maskPhone(phone))
}

func maskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return strings.Repeat("•", len(email))
	}
	local, domain := email[:at], email[at:]
	if len(local) <= 2 {
		return strings.Repeat("•", len(local)) + domain
	}
	return local[:1] + strings.Repeat("•", len(local)-2) + local[len(local)-1:] + domain
}

func maskPhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if len(phone) <= 4 {
		return strings.Repeat("•", len(phone))
	}
	return strings.Repeat("•", len(phone)-4) + phone[len(phone)-4:]
}
