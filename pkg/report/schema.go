// SPDX-License-Identifier: Apache-2.0

package report

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const schemaURL = "https://github.com/xataio/jmeter-analyzer/statistics.schema.json"

//go:embed statistics.schema.json
var statisticsSchema []byte

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(statisticsSchema))
	if err != nil {
		return nil, err
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, doc); err != nil {
		return nil, err
	}
	return c.Compile(schemaURL)
})

// Validate checks a statistics payload against the statistics schema. A
// payload that decodes but does not match returns a SchemaViolationError.
func Validate(r io.Reader) error {
	sch, err := compileSchema()
	if err != nil {
		return fmt.Errorf("compiling statistics schema: %w", err)
	}

	v, err := jsonschema.UnmarshalJSON(r)
	if err != nil {
		return fmt.Errorf("decoding statistics: %w", err)
	}

	if err := sch.Validate(v); err != nil {
		return SchemaViolationError{Err: err}
	}
	return nil
}
