package dashboard

import "errors"

var (
	ErrInvalidConfig = errors.New("dashboard: invalid configuration")
	ErrInvalidBody   = errors.New("dashboard: invalid request body")
)
