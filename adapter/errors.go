package adapter

import "errors"

var (
	// ErrConfigRequired indicates an adapter was constructed without a config.
	ErrConfigRequired = errors.New("domain config is required")

	// ErrNotRegistered indicates no constructor is registered for a domain.
	ErrNotRegistered = errors.New("no adapter registered for domain")
)
