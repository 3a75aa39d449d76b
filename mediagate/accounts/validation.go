package accounts

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

const (
	minPasswordLength = 6
	maxPasswordLength = 72 // bcrypt ignores anything longer
	maxUsernameLength = 50
)

// normalizes and checks sign-up input
func ValidateSignUp(req *SignUpRequest) error {
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Username = strings.TrimSpace(req.Username)

	if _, err := mail.ParseAddress(req.Email); err != nil || req.Email == "" {
		return &ValidationError{Field: "email", Message: "please enter a valid email address"}
	}

	if req.Username == "" {
		return &ValidationError{Field: "username", Message: "username is required"}
	}

	if utf8.RuneCountInString(req.Username) > maxUsernameLength {
		return &ValidationError{Field: "username", Message: "username must be at most 50 characters"}
	}

	if req.ConfirmPassword != "" && req.Password != req.ConfirmPassword {
		return &ValidationError{Field: "confirm_password", Message: "passwords do not match"}
	}

	if len(req.Password) < minPasswordLength {
		return &ValidationError{Field: "password", Message: "password must be at least 6 characters"}
	}

	if len(req.Password) > maxPasswordLength {
		return &ValidationError{Field: "password", Message: "password must be at most 72 bytes"}
	}

	return nil
}
