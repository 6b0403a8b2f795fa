package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("already exists")
	ErrInvalidTransition   = errors.New("invalid transition")
	ErrInvalidRefundAmount = errors.New("invalid refund amount")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrValidation          = errors.New("validation failed")
)
