// SPDX-License-Identifier: Apache-2.0

package report_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/xataio/jmeter-analyzer/pkg/report"
)

const schemaTestDataDir = "./testdata/schema"

func TestValidate(t *testing.T) {
	t.Parallel()

	files, err := os.ReadDir(schemaTestDataDir)
	require.NoError(t, err)

	for _, file := range files {
		t.Run(file.Name(), func(t *testing.T) {
			ac, err := txtar.ParseFile(filepath.Join(schemaTestDataDir, file.Name()))
			require.NoError(t, err)

			require.Len(t, ac.Files, 2)

			shouldValidate, err := strconv.ParseBool(strings.TrimSpace(string(ac.Files[1].Data)))
			require.NoError(t, err)

			err = report.Validate(bytes.NewReader(ac.Files[0].Data))
			if shouldValidate {
				assert.NoError(t, err)
				return
			}

			var violation report.SchemaViolationError
			assert.True(t, errors.As(err, &violation), "expected %q to be invalid, got %v", ac.Files[0].Name, err)
		})
	}
}

func TestValidateRejectsInvalidJSON(t *testing.T) {
	t.Parallel()

	err := report.Validate(strings.NewReader(`{"GET /a": `))
	require.Error(t, err)

	var violation report.SchemaViolationError
	assert.False(t, errors.As(err, &violation))
}
