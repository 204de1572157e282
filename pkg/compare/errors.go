// SPDX-License-Identifier: Apache-2.0

package compare

import "fmt"

// InputMismatchError is returned when a comparison gets no reports or a
// different number of reports and names.
type InputMismatchError struct {
	Tables int
	Names  int
}

func (e InputMismatchError) Error() string {
	if e.Tables == 0 {
		return "no reports to compare"
	}
	return fmt.Sprintf("got %d reports but %d names", e.Tables, e.Names)
}

// MissingTableError is returned when one of the compared reports lacks the
// table being compared.
type MissingTableError struct {
	Index int
}

func (e MissingTableError) Error() string {
	return fmt.Sprintf("report %d has no data for this comparison", e.Index+1)
}
