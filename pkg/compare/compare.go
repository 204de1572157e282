// SPDX-License-Identifier: Apache-2.0

package compare

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xataio/jmeter-analyzer/pkg/report"
	"github.com/xataio/jmeter-analyzer/pkg/table"
)

// Kind selects one of the tables a comparison can produce.
type Kind string

const (
	KindEndpoints Kind = "endpoints"
	KindAggregate Kind = "aggregate"
	KindErrors    Kind = "errors"
)

var ErrInvalidKind = errors.New("invalid comparison table")

// AllKinds returns every comparison table kind in output order.
func AllKinds() []Kind {
	return []Kind{KindEndpoints, KindAggregate, KindErrors}
}

// ParseKinds parses table kind names, dropping duplicates. An empty list
// selects every kind.
func ParseKinds(names []string) ([]Kind, error) {
	if len(names) == 0 {
		return AllKinds(), nil
	}

	var kinds []Kind
	seen := make(map[Kind]bool)
	for _, n := range names {
		k := Kind(strings.ToLower(strings.TrimSpace(n)))
		switch k {
		case KindEndpoints, KindAggregate, KindErrors:
		default:
			return nil, fmt.Errorf("%w: %q", ErrInvalidKind, n)
		}
		if !seen[k] {
			seen[k] = true
			kinds = append(kinds, k)
		}
	}
	return kinds, nil
}

// Tables builds the selected comparison tables for the given reports. The
// error comparison needs exactly two reports and is left out otherwise.
// Comparisons that fail still contribute their empty table; their errors
// are joined into the returned error.
func Tables(sets []*report.TableSet, names []string, kinds ...Kind) ([]*table.Table, error) {
	if len(kinds) == 0 {
		kinds = AllKinds()
	}

	var (
		out  []*table.Table
		errs []error
	)
	add := func(t *table.Table, err error) {
		out = append(out, t)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", t.Title, err))
		}
	}

	for _, k := range kinds {
		switch k {
		case KindEndpoints:
			endpoints := make([]report.EndpointTable, len(sets))
			for i, s := range sets {
				if s != nil {
					endpoints[i] = s.Endpoints
				}
			}
			add(Endpoints(endpoints, names))

		case KindAggregate:
			aggs := make([]*report.Aggregate, len(sets))
			for i, s := range sets {
				if s != nil {
					aggs[i] = s.Aggregate
				}
			}
			add(Aggregates(aggs, names))

		case KindErrors:
			if len(sets) != 2 || len(names) != 2 {
				continue
			}
			var a, b report.ErrorTable
			if sets[0] != nil {
				a = sets[0].Errors
			}
			if sets[1] != nil {
				b = sets[1].Errors
			}
			add(Errors(a, b, names...))
		}
	}
	return out, errors.Join(errs...)
}
