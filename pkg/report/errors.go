// SPDX-License-Identifier: Apache-2.0

package report

import "fmt"

// NotFoundError is returned when a report holds no statistics payload.
type NotFoundError struct {
	Path string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("no statistics found at %q", e.Path)
}

// PartialDataWarning describes a field of a statistics entry that could not
// be read. The row is kept with the field left blank.
type PartialDataWarning struct {
	Label string
	Field string
	Err   error
}

func (e PartialDataWarning) Error() string {
	return fmt.Sprintf("field %q of %q: %s", e.Field, e.Label, e.Err)
}

func (e PartialDataWarning) Unwrap() error {
	return e.Err
}

// SchemaViolationError is returned when a statistics payload does not match
// the statistics schema.
type SchemaViolationError struct {
	Err error
}

func (e SchemaViolationError) Error() string {
	return fmt.Sprintf("statistics do not match schema: %s", e.Err)
}

func (e SchemaViolationError) Unwrap() error {
	return e.Err
}
