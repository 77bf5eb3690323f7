package auth

import "errors"

var (
	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password, so login failures don't reveal which one it was.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrPasswordMismatch means the two password fields of a reset
	// submission differ.
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrInvalidToken means the reset token is unknown, already
	// consumed, or expired.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrNotificationFailed means the reset token was persisted but the
	// email carrying it could not be sent. The token stays valid; a
	// retried request overwrites it.
	ErrNotificationFailed = errors.New("sending reset email failed")
)
