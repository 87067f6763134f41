package identity

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailExists        = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidRole        = errors.New("invalid role")
	ErrRoleNotPermitted   = errors.New("only admins may grant the admin role")
	ErrForbidden          = errors.New("not allowed to modify this user")
)
