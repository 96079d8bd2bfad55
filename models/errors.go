package models

import "errors"

var (
	ErrInvalidParameter  = errors.New("invalid parameter")
	ErrInvalidOptionType = errors.New("invalid option type")
	ErrInvalidConfig     = errors.New("invalid configuration")
)
