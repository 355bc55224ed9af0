package errors

import (
	"fmt"
)

// MissingFieldError represents a missing required field.
type MissingFieldError struct {
	Field string
}

func (err MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", err.Field)
}

// FileNotFound represents when we were unable to access a file
// because the path didn't exist.
type FileNotFound struct {
	Path string
}

func (err FileNotFound) Error() string {
	return fmt.Sprintf("%q does not exist", err.Path)
}

// NodeNotFound represents a node reference that doesn't resolve within
// a namespace (either the tag tree or the model).
type NodeNotFound struct {
	Namespace string
	Path      string
}

func (err NodeNotFound) Error() string {
	return fmt.Sprintf("%s node %q does not exist", err.Namespace, err.Path)
}
