package tree

import "errors"

var (
	// ErrNotFound is returned when a long id or short id resolves to no node.
	ErrNotFound = errors.New("node not found")

	// ErrAuthority wraps every failure reported by the Authority, whether
	// transport or a non-success response. Callers only tell success from
	// failure; the wrapped cause is for logs.
	ErrAuthority = errors.New("authority failure")
)

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAuthorityFailure reports whether err is or wraps ErrAuthority.
func IsAuthorityFailure(err error) bool {
	return errors.Is(err, ErrAuthority)
}
