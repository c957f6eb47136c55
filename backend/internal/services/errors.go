package services

import "errors"

// ErrNotFound covers both genuinely missing records and records hidden
// from non-members, so callers cannot probe for a project's existence.
var ErrNotFound = errors.New("not found")

var ErrUnauthenticated = errors.New("unauthenticated")

type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string { return e.Reason }

type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }

type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func forbidden(reason string) error  { return &ForbiddenError{Reason: reason} }
func conflict(reason string) error   { return &ConflictError{Reason: reason} }
func validation(reason string) error { return &ValidationError{Reason: reason} }
