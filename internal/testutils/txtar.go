// SPDX-License-Identifier: Apache-2.0

package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/tools/txtar"
)

// UnpackTxtar writes the files of the txtar archive at path into a new
// temporary directory and returns the directory.
func UnpackTxtar(t *testing.T, path string) string {
	t.Helper()

	ac, err := txtar.ParseFile(path)
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	for _, f := range ac.Files {
		p := filepath.Join(dir, filepath.FromSlash(f.Name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, f.Data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}
