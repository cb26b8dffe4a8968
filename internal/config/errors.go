package config

import "errors"

var (
	ErrConfigFileRead    = errors.New("cannot read config file")
	ErrConfigInvalid     = errors.New("invalid config file")
	ErrTracePathRequired = errors.New("trace path is required")
	ErrInvalidMode       = errors.New("mode must be 1 or 2")
	ErrInvalidRange      = errors.New("invalid address range")
)
