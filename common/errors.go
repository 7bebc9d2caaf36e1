package common

import "errors"

// Every operation that can fail returns one of these and leaves the
// registries untouched. Handlers surface them as transient notices or
// JSON error payloads; none are fatal.
var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrNotVerified         = errors.New("email not verified")
	ErrDuplicateEmail      = errors.New("email already exists")
	ErrDuplicateUsername   = errors.New("username already taken")
	ErrMissingFields       = errors.New("required fields are missing")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrProtectedAccount    = errors.New("cannot modify the default admin account")
	ErrDuplicateAdminEmail = errors.New("admin email already exists")
	ErrPasswordMismatch    = errors.New("passwords do not match")
	ErrLastAdmin           = errors.New("cannot delete the last admin account")
	ErrProtectedBadge      = errors.New("cannot delete the default admin badge")
	ErrUseAdminManagement  = errors.New("remove admin status via admin management instead")
	ErrUnknownAccount      = errors.New("no account with that email")
	ErrNotFound            = errors.New("record not found")
)
