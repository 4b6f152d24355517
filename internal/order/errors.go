package order

import "errors"

var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrIllegalState = errors.New("illegal state")
	ErrConflict     = errors.New("conflict")
)
