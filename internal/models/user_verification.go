package models

import "time"

type VerificationMethod string

const (
	MethodOTP  VerificationMethod = "otp"
	MethodLink VerificationMethod = "link"
)

func (m VerificationMethod) Valid() bool {
	return m == MethodOTP || m == MethodLink
}

// VerificationChallenge — отдельная запись на каждую отправку (OTP-код или ссылка).
// Записи не удаляются.
type VerificationChallenge struct {
	ID        int64              `json:"id"`
	Email     string             `json:"email"`
	Method    VerificationMethod `json:"method"`
	Token     string             `json:"-"`
	CreatedAt time.Time          `json:"created_at"`
	Consumed  bool               `json:"consumed"`
}
