package email

import (
	"fmt"
	"net/url"

	"shop-kita.backend/internal/domain/entities"
)

// Frontend paths per flow, fixed by contract with the web client
const (
	PathVerifyEmail       = "/auth/verify-email"
	PathVerifyEmailChange = "/auth/verify-email-change"
	PathResetPassword     = "/auth/reset-password"
)

// BuildLink constructs the frontend link embedding the plaintext token and
// the url-encoded target email.
func BuildLink(baseURL, flowPath, token, email string) string {
	return fmt.Sprintf("%s%s?token=%s&email=%s", baseURL, flowPath, token, url.QueryEscape(email))
}

// FlowPath returns the frontend path for a token type
func FlowPath(tokenType entities.VerificationTokenType) string {
	switch tokenType {
	case entities.TokenTypeEmailChange:
		return PathVerifyEmailChange
	case entities.TokenTypePasswordReset:
		return PathResetPassword
	default:
		return PathVerifyEmail
	}
}

type template struct {
	subject string
	body    string
}

// Message templates keyed by flow type and language. Unknown languages fall
// back to English.
var templates = map[entities.VerificationTokenType]map[string]template{
	entities.TokenTypeEmailVerification: {
		"en": {
			subject: "Verify your email address",
			body:    "Welcome! Confirm your email address to finish creating your account:\n\n%s\n\nThe link expires in 24 hours. If you did not sign up, you can ignore this email.",
		},
		"id": {
			subject: "Verifikasi alamat email Anda",
			body:    "Selamat datang! Konfirmasi alamat email Anda untuk menyelesaikan pendaftaran:\n\n%s\n\nTautan berlaku selama 24 jam. Abaikan email ini jika Anda tidak mendaftar.",
		},
	},
	entities.TokenTypePasswordReset: {
		"en": {
			subject: "Reset your password",
			body:    "We received a request to reset your password. Use the link below:\n\n%s\n\nThe link expires in 30 minutes. If you did not request a reset, you can ignore this email.",
		},
		"id": {
			subject: "Atur ulang kata sandi Anda",
			body:    "Kami menerima permintaan untuk mengatur ulang kata sandi Anda. Gunakan tautan berikut:\n\n%s\n\nTautan berlaku selama 30 menit. Abaikan email ini jika Anda tidak memintanya.",
		},
	},
	entities.TokenTypeEmailChange: {
		"en": {
			subject: "Confirm your new email address",
			body:    "Confirm that you want to use this address for your account:\n\n%s\n\nThe link expires in 24 hours. If you did not request this change, you can ignore this email.",
		},
		"id": {
			subject: "Konfirmasi alamat email baru Anda",
			body:    "Konfirmasi bahwa Anda ingin menggunakan alamat ini untuk akun Anda:\n\n%s\n\nTautan berlaku selama 24 jam. Abaikan email ini jika Anda tidak meminta perubahan.",
		},
	},
}

// Render returns the subject and both body variants for a flow in the given
// language.
func Render(tokenType entities.VerificationTokenType, language, link string) (subject, html, text string) {
	byLang, ok := templates[tokenType]
	if !ok {
		byLang = templates[entities.TokenTypeEmailVerification]
	}
	tpl, ok := byLang[language]
	if !ok {
		tpl = byLang["en"]
	}

	text = fmt.Sprintf(tpl.body, link)
	html = fmt.Sprintf("<p>%s</p>", fmt.Sprintf(tpl.body, fmt.Sprintf(`<a href="%s">%s</a>`, link, link)))
	return tpl.subject, html, text
}
