package org

import "errors"

var (
	// ErrOrgNotFound is returned when an organization does not exist.
	ErrOrgNotFound = errors.New("org: organization not found")

	// ErrOrgAlreadyExists is returned when the requested organization id is taken.
	ErrOrgAlreadyExists = errors.New("org: organization already exists")

	// ErrInvalidParams is returned when bootstrap parameters are incomplete.
	ErrInvalidParams = errors.New("org: invalid bootstrap parameters")

	// ErrBootstrapFailed wraps store failures during organization bootstrap.
	ErrBootstrapFailed = errors.New("org: bootstrap failed")

	// ErrDeleteFailed wraps store failures during cascading delete.
	ErrDeleteFailed = errors.New("org: delete failed")
)
