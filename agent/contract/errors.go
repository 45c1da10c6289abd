package contract

import "errors"

var (
	ErrModelInvoke  = errors.New("model invoke failed")
	ErrMissingField = errors.New("missing required field")
	ErrValidation   = errors.New("validation failed")
)
