// SPDX-License-Identifier: Apache-2.0

package benchmarks

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"
)

type ReportRecorder struct {
	mu        sync.Mutex
	GitSHA    string
	GoVersion string
	Timestamp int64
	Reports   []Report
}

func (r *ReportRecorder) AddReport(report Report) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Reports = append(r.Reports, report)
}

// Append writes the recorded reports as one JSON line at the end of the
// file at path.
func (r *ReportRecorder) Append(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	line, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshalling reports: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening results file: %w", err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		f.Close()
		return fmt.Errorf("writing results: %w", err)
	}
	return f.Close()
}

func newReportRecorder() *ReportRecorder {
	return &ReportRecorder{
		GitSHA:    os.Getenv("GITHUB_SHA"),
		GoVersion: runtime.Version(),
		Timestamp: time.Now().Unix(),
		Reports:   []Report{},
	}
}

type Report struct {
	Name               string
	EndpointCount      int
	EndpointsPerSecond float64
}
