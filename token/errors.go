package token

import "errors"

var (
	ErrUnauthorized          = errors.New("token: caller is not a mint authority")
	ErrInsufficientBalance   = errors.New("token: insufficient balance")
	ErrInsufficientAllowance = errors.New("token: insufficient allowance")
	ErrInvalidParameters     = errors.New("token: invalid parameters")
)
