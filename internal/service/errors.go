package service

import "errors"

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("not authenticated")
	ErrForbidden          = errors.New("not allowed")
	ErrNotVerified        = errors.New("account not verified")
	ErrInvalidOTP         = errors.New("invalid or expired otp")
	ErrProvider           = errors.New("upstream provider failure")
)
