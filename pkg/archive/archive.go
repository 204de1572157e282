// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/xataio/jmeter-analyzer/pkg/report"
)

type Kind int

const (
	KindDirectory Kind = iota
	KindZip
	KindFile
)

func (k Kind) String() string {
	switch k {
	case KindZip:
		return "zip"
	case KindFile:
		return "file"
	default:
		return "directory"
	}
}

// UnsafePathError is returned for archive entries that would be written
// outside the extraction directory.
type UnsafePathError struct {
	Name string
}

func (e UnsafePathError) Error() string {
	return fmt.Sprintf("archive entry %q escapes the extraction directory", e.Name)
}

// Report is an opened report input.
type Report struct {
	// Root is the directory holding the report's index.html or
	// statistics.json.
	Root string
	// Name identifies the report, derived from the input file name.
	Name string
	Kind Kind

	extracted string
}

// Close removes any data extracted for the report.
func (r *Report) Close() error {
	if r.extracted == "" {
		return nil
	}
	return os.RemoveAll(r.extracted)
}

// Open prepares the report at path for parsing. Zip archives are extracted
// into a new directory under workDir (the system temporary directory when
// empty), directories are used in place and any other file resolves to its
// containing directory.
func Open(path, workDir string) (*Report, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("opening report: %w", err)
	}

	if info.IsDir() {
		return &Report{
			Root: findRoot(path),
			Name: filepath.Base(filepath.Clean(path)),
			Kind: KindDirectory,
		}, nil
	}

	mime, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("detecting report type: %w", err)
	}

	if !isZip(mime) {
		dir := filepath.Dir(path)
		name := stem(path)
		if filepath.Base(path) == report.StatisticsFile || filepath.Base(path) == report.IndexFile {
			name = filepath.Base(dir)
		}
		return &Report{Root: dir, Name: name, Kind: KindFile}, nil
	}

	if workDir == "" {
		workDir = os.TempDir()
	}
	dest := filepath.Join(workDir, uuid.NewString())
	if err := extract(path, dest); err != nil {
		os.RemoveAll(dest)
		return nil, err
	}

	return &Report{
		Root:      findRoot(dest),
		Name:      stem(path),
		Kind:      KindZip,
		extracted: dest,
	}, nil
}

func isZip(mime *mimetype.MIME) bool {
	for m := mime; m != nil; m = m.Parent() {
		if m.Is("application/zip") {
			return true
		}
	}
	return false
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func extract(src, dest string) error {
	// entry names are checked one by one in extractFile
	r, err := zip.OpenReader(src)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer r.Close()

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return err
	}

	for _, f := range r.File {
		if err := extractFile(f, dest); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(f *zip.File, dest string) error {
	target := filepath.Join(dest, filepath.FromSlash(f.Name))
	if !strings.HasPrefix(target, dest+string(os.PathSeparator)) {
		return UnsafePathError{Name: f.Name}
	}

	mode := f.Mode()
	switch {
	case mode.IsDir():
		return os.MkdirAll(target, 0o755)
	case !mode.IsRegular():
		// links and devices have no place in a report
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	in, err := f.Open()
	if err != nil {
		return fmt.Errorf("reading %s: %w", f.Name, err)
	}
	defer in.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("extracting %s: %w", f.Name, err)
	}
	return out.Close()
}

// findRoot returns the shallowest directory under dir holding an index.html,
// else the shallowest holding a statistics.json, else dir itself.
func findRoot(dir string) string {
	var index, stats string
	indexDepth, statsDepth := -1, -1

	errStop := errors.New("stop")
	_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if d.Name() == "__MACOSX" {
				return filepath.SkipDir
			}
			return nil
		}

		parent := filepath.Dir(p)
		depth := strings.Count(strings.TrimPrefix(parent, dir), string(os.PathSeparator))
		switch d.Name() {
		case report.IndexFile:
			if indexDepth == -1 || depth < indexDepth {
				index, indexDepth = parent, depth
			}
		case report.StatisticsFile:
			if statsDepth == -1 || depth < statsDepth {
				stats, statsDepth = parent, depth
			}
		}
		if indexDepth == 0 {
			return errStop
		}
		return nil
	})

	switch {
	case index != "":
		return index
	case stats != "":
		return stats
	}
	return dir
}
