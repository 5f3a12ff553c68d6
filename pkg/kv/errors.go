package kv

import "errors"

var (
	ErrEmptyKey   = errors.New("kv: key cannot be empty")
	ErrInvalidKey = errors.New("kv: invalid key")
	ErrInvalidDir = errors.New("kv: invalid storage directory")
)
