package service

import "errors"

var (
	// ErrDuplicateAccount is returned by Signup for an already registered email.
	ErrDuplicateAccount = errors.New("account already exists")
	// ErrAccessDenied is returned by Login for an unknown email or a wrong
	// password alike.
	ErrAccessDenied = errors.New("access denied")
	// ErrUserNotFound is returned when an authenticated identity no longer
	// resolves to a stored user.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when a profile update takes another account's email.
	ErrDuplicateEmail = errors.New("email already associated with an account")
	// ErrDeleteFailed is returned unless exactly one record was deleted.
	ErrDeleteFailed = errors.New("cannot delete user")
	// ErrAccountNotFound is returned by ForgotPassword for an unknown email.
	ErrAccountNotFound = errors.New("account not found")
	// ErrTokenInvalidOrExpired is returned by ResetPassword for an unknown or
	// expired reset token.
	ErrTokenInvalidOrExpired = errors.New("token invalid or has expired")
	// ErrMailDeliveryFailed is returned when the mailer did not accept a message.
	ErrMailDeliveryFailed = errors.New("mail delivery failed")
)
