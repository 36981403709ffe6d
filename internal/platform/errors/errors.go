package apperrors

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("not found")
	ErrNoActiveSession     = errors.New("no active session")
	ErrActiveSessionExists = errors.New("active session already exists")
	ErrNoSchedule          = errors.New("no schedule deployed")
	ErrInvalidName         = errors.New("invalid name")
	ErrCommandPending      = errors.New("command already pending")
)
