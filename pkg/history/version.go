// SPDX-License-Identifier: Apache-2.0

package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/mod/semver"

	"github.com/xataio/jmeter-analyzer/pkg/db"
)

const developmentVersion = "development"

var ErrNewerStoreSchema = errors.New("analyzer version is older than the history store version")

// VersionCompatibility represents the result of comparing the analyzer
// version with the version that last wrote to the store.
type VersionCompatibility int

const (
	VersionCompatCheckSkipped VersionCompatibility = iota
	VersionCompatStoreOlder
	VersionCompatStoreEqual
	VersionCompatStoreNewer
)

// VersionCompatibility compares the analyzer version the Store was opened
// with to the newest version recorded in the store.
func (s *Store) VersionCompatibility(ctx context.Context) (VersionCompatibility, error) {
	// Development builds are not checked for compatibility
	if s.version == developmentVersion {
		return VersionCompatCheckSkipped, nil
	}

	storeVersion, err := s.StoreVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get stored version: %w", err)
	}
	if storeVersion == "" || storeVersion == developmentVersion {
		return VersionCompatCheckSkipped, nil
	}

	storeVersion = ensureVPrefix(storeVersion)
	version := ensureVPrefix(s.version)

	// If either version is invalid, do not make any assumptions about
	// compatibility
	if !semver.IsValid(storeVersion) || !semver.IsValid(version) {
		return VersionCompatCheckSkipped, nil
	}

	switch semver.Compare(semver.Canonical(storeVersion), semver.Canonical(version)) {
	case -1:
		return VersionCompatStoreOlder, nil
	case 1:
		return VersionCompatStoreNewer, nil
	}
	return VersionCompatStoreEqual, nil
}

// StoreVersion returns the newest analyzer version recorded in the store, or
// "" if none is.
func (s *Store) StoreVersion(ctx context.Context) (string, error) {
	rows, err := s.conn.QueryContext(ctx,
		"SELECT version FROM analyzer_version ORDER BY initialized_at DESC LIMIT 1")
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var version string
	if err := db.ScanFirstValue(rows, &version); err != nil {
		return "", err
	}
	return version, nil
}

// recordVersion stores the analyzer version unless the store already
// records the same or a newer one.
func (s *Store) recordVersion(ctx context.Context) error {
	if s.version == developmentVersion {
		return nil
	}

	compat, err := s.VersionCompatibility(ctx)
	if err != nil {
		return err
	}
	if compat == VersionCompatStoreEqual || compat == VersionCompatStoreNewer {
		return nil
	}

	current, err := s.StoreVersion(ctx)
	if err != nil {
		return err
	}
	if current == s.version {
		return nil
	}

	_, err = s.conn.ExecContext(ctx,
		"INSERT INTO analyzer_version (version, initialized_at) VALUES (?, ?)",
		s.version, time.Now().UTC())
	return err
}

func (s *Store) checkWritable(ctx context.Context) error {
	compat, err := s.VersionCompatibility(ctx)
	if err != nil {
		return err
	}
	if compat == VersionCompatStoreNewer {
		return ErrNewerStoreSchema
	}
	return nil
}

// Ensure that the given version string starts with 'v' to ensure compatibility
// with the`golang.org/x/mod/semver` package
func ensureVPrefix(version string) string {
	if len(version) > 0 && version[0] != 'v' {
		return "v" + version
	}
	return version
}
