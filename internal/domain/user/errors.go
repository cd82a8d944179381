package user

import "errors"

var (
	ErrUserNotFound            = errors.New("user not found")
	ErrMissingIdentity         = errors.New("user_id or role claim is missing or invalid")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
)
