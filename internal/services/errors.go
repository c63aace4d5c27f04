package services

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidInput     = errors.New("invalid input")
	ErrHandleTaken      = errors.New("handle already taken")
	ErrOfferingInactive = errors.New("offering is not active")
	ErrPaymentRejected  = errors.New("payment rejected")
	ErrPaymentReused    = errors.New("payment already used")
	ErrAlreadyReplied   = errors.New("question already replied")
)
