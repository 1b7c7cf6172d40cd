package esfilter

import (
	"errors"
	"fmt"
)

// ErrInvalidFilter is matched by every compilation error. Callers should
// treat it as rejected input, never as something to retry.
var ErrInvalidFilter = errors.New("invalid filter")

// UnknownOperatorError is returned when a filter key names an operator
// outside the supported set.
type UnknownOperatorError struct {
	Key      string
	Operator string
}

func (e *UnknownOperatorError) Error() string {
	return fmt.Sprintf("invalid filter key '%s': unknown operator '%s'", e.Key, e.Operator)
}

// Is makes errors.Is(err, ErrInvalidFilter) hold
func (e *UnknownOperatorError) Is(target error) bool {
	return target == ErrInvalidFilter
}

// MalformedSortTokenError is returned for a sort token with an empty field
// or a direction other than asc/desc.
type MalformedSortTokenError struct {
	Token  string
	Reason string
}

func (e *MalformedSortTokenError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("malformed sort token '%s'", e.Token)
	}
	return fmt.Sprintf("malformed sort token '%s': %s", e.Token, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidFilter) hold
func (e *MalformedSortTokenError) Is(target error) bool {
	return target == ErrInvalidFilter
}

// DecodeError is returned when raw filter input cannot be turned into a
// Filter, for example because a value is a nested object.
type DecodeError struct {
	Key string
	Err error
}

func (e *DecodeError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("decoding filter: %v", e.Err)
	}
	return fmt.Sprintf("decoding filter key '%s': %v", e.Key, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrInvalidFilter) hold
func (e *DecodeError) Is(target error) bool {
	return target == ErrInvalidFilter
}
