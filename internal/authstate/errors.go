package authstate

import "errors"

const (
	msgSignIn  = "sign in failed, please check your email and password"
	msgSignUp  = "sign up failed, please try again"
	msgSignOut = "sign out failed, please try again"
	msgOAuth   = "could not sign in with the selected provider, please try again"
)

// failure of a sign-in style operation with a message fit for end users
type UserError struct {
	Op      string
	Message string
	Err     error
}

func (e *UserError) Error() string {
	return e.Message
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// errors whose text is already meant for end users
type userMessager interface {
	UserMessage() string
}

func userError(op, fallback string, err error) error {
	if err == nil {
		return nil
	}

	message := fallback

	var um userMessager
	if errors.As(err, &um) && um.UserMessage() != "" {
		message = um.UserMessage()
	}

	return &UserError{Op: op, Message: message, Err: err}
}
