package model

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound    = errors.New("task not found")
	ErrInvalidTask = errors.New("invalid task")
)

// ServiceError is returned when a collaborator answered with a failure or
// could not be reached. StatusCode is 0 for transport failures.
type ServiceError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *ServiceError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("%s: service returned %d: %s", e.Op, e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: service returned %d", e.Op, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: service unreachable: %v", e.Op, e.Err)
	}
	return e.Op + ": service error"
}

func (e *ServiceError) Unwrap() error { return e.Err }

// ParseError is returned when a collaborator response has an unexpected shape.
type ParseError struct {
	Op  string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: unexpected response: %v", e.Op, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
