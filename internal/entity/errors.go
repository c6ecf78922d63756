package entity

import "errors"

var (
	// Queue errors
	ErrQueueNotFound = errors.New("queue not found")
	ErrQueueInactive = errors.New("queue is not active")
	ErrQueueEmpty    = errors.New("no customers in queue")

	// Ticket errors
	ErrTicketNotFound       = errors.New("ticket not found")
	ErrAlreadyQueued        = errors.New("user already has an active ticket")
	ErrCannotCancelWhenNext = errors.New("cannot cancel when you are next in line")

	// General errors
	ErrUnauthorized = errors.New("unauthorized access")
	ErrInvalidInput = errors.New("invalid input")
	ErrStorage      = errors.New("storage error")
)
