package tracker

import "errors"

var (
	ErrTaskNotFound      = errors.New("tracker: task not found")
	ErrInvalidState      = errors.New("tracker: operation not permitted in current state")
	ErrUnauthorized      = errors.New("tracker: caller is not the recorded counterparty")
	ErrInvalidParameters = errors.New("tracker: invalid parameters")
)
