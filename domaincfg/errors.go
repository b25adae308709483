package domaincfg

import "errors"

var (
	// ErrConfigNotFound indicates no config file exists for the domain.
	ErrConfigNotFound = errors.New("domain config not found")

	// ErrConfigInvalid indicates the config failed validation.
	ErrConfigInvalid = errors.New("domain config invalid")

	// ErrLoaderClosed indicates the loader has been closed.
	ErrLoaderClosed = errors.New("loader is closed")

	// ErrWatcherRunning indicates Watch was called twice.
	ErrWatcherRunning = errors.New("config watcher already running")
)
