package directive

import (
	"errors"
	"fmt"
)

var (
	ErrArgument             = errors.New("invalid directive argument")
	ErrResolverNotFound     = errors.New("resolver not found")
	ErrConfigurationMissing = errors.New("configuration missing")
)

// ArgumentError reports a missing or conflicting directive argument.
type ArgumentError struct {
	Directive Kind
	Reason    string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s: @%s %s", ErrArgument, e.Directive, e.Reason)
}

func (e *ArgumentError) Unwrap() error { return ErrArgument }

// ResolverNotFoundError reports an argument key that names no operator.
type ResolverNotFoundError struct {
	Directive Kind
	Key       string
}

func (e *ResolverNotFoundError) Error() string {
	return fmt.Sprintf("%s: @%s cannot resolve %q", ErrResolverNotFound, e.Directive, e.Key)
}

func (e *ResolverNotFoundError) Unwrap() error { return ErrResolverNotFound }

// ConfigurationMissingError reports a reference to something that was never
// configured: an unnamed field or a query absent from the origin.
type ConfigurationMissingError struct {
	Directive Kind
	Subject   string
}

func (e *ConfigurationMissingError) Error() string {
	return fmt.Sprintf("%s: @%s needs %s", ErrConfigurationMissing, e.Directive, e.Subject)
}

func (e *ConfigurationMissingError) Unwrap() error { return ErrConfigurationMissing }

func argumentError(kind Kind, format string, args ...any) error {
	return &ArgumentError{Directive: kind, Reason: fmt.Sprintf(format, args...)}
}
