package events

import "errors"

var (
	ErrEventNotFound   = errors.New("event not found")
	ErrNameRequired    = errors.New("event name is required")
	ErrDateRequired    = errors.New("event date is required")
	ErrNoTicketTypes   = errors.New("event needs at least one ticket type")
	ErrInvalidPrice    = errors.New("ticket type price must be positive")
	ErrTypeNameMissing = errors.New("ticket type name is required")
)
