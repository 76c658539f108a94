package settings

import "errors"

// Package-specific errors.
var (
	// ErrParsingEnv is returned when environment variables cannot be parsed into Settings.
	ErrParsingEnv = errors.New("settings: failed to parse environment variables")

	// ErrReadingFile is returned when the settings file cannot be read.
	ErrReadingFile = errors.New("settings: failed to read settings file")

	// ErrParsingFile is returned when the settings file is not valid YAML.
	ErrParsingFile = errors.New("settings: failed to parse settings file")

	// ErrInvalidMiddleware is returned for a malformed middleware entry.
	ErrInvalidMiddleware = errors.New("settings: invalid middleware entry")
)
