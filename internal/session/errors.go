package session

import "fmt"

// AuthError is a rejected login or registration. Message is what the
// server said, suitable for showing to the user.
type AuthError struct {
	Op      Op
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// SessionFetchError is a /api/user failure other than "not logged in".
type SessionFetchError struct {
	Err error
}

func (e *SessionFetchError) Error() string {
	return fmt.Sprintf("fetching session: %v", e.Err)
}

func (e *SessionFetchError) Unwrap() error { return e.Err }
