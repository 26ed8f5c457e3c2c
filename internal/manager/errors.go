package manager

import "errors"

// ErrNotRunning is returned when the inbox loop is not (or no longer) running.
var ErrNotRunning = errors.New("manager is not running")

// notFoundError signals an unknown setting or affordance so the HTTP layer can return 404.
type notFoundError struct{ what string }

func (e notFoundError) Error() string { return "not found: " + e.what }

// ErrNotFound constructs a notFoundError.
func ErrNotFound(what string) error { return notFoundError{what: what} }

// IsNotFound reports whether err indicates an unknown setting or affordance.
func IsNotFound(err error) bool {
	var nf notFoundError
	return errors.As(err, &nf)
}

// invalidSettingError signals a setting value the backend would refuse (400).
type invalidSettingError struct {
	name string
	msg  string
}

func (e invalidSettingError) Error() string { return "invalid " + e.name + ": " + e.msg }

// ErrInvalidSetting constructs an invalidSettingError.
func ErrInvalidSetting(name, msg string) error { return invalidSettingError{name: name, msg: msg} }

// IsInvalidSetting reports whether err indicates a rejected setting value.
func IsInvalidSetting(err error) bool {
	var is invalidSettingError
	return errors.As(err, &is)
}
