package domain

import "errors"

var (
	ErrDuplicatePending  = errors.New("pending withdraw request already exists")
	ErrRequestNotFound   = errors.New("withdraw request not found")
	ErrRequestNotPending = errors.New("withdraw request is not pending")
	ErrUserNotFound      = errors.New("user not found")
	ErrUnknownAction     = errors.New("unknown review action")
)
