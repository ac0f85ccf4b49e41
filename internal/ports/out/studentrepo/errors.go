package studentrepo

import "errors"

var (
	// ErrNotFound indicates the requested student does not exist.
	ErrNotFound = errors.New("student not found")

	// ErrRAAlreadyExists indicates another student already holds the registration number.
	ErrRAAlreadyExists = errors.New("student ra already exists")

	// ErrCPFAlreadyExists indicates another student already holds the national identifier.
	ErrCPFAlreadyExists = errors.New("student cpf already exists")

	// ErrEmailAlreadyExists indicates another student already uses the email address.
	ErrEmailAlreadyExists = errors.New("student email already exists")
)
