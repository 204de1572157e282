// SPDX-License-Identifier: Apache-2.0

package report

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	StatisticsFile = "statistics.json"
	IndexFile      = "index.html"
)

// defaultDashboardScript is where JMeter puts the dashboard script relative to
// the report root.
var defaultDashboardScript = filepath.Join("content", "js", "dashboard.js")

// LocateStatistics returns the path of the statistics payload for p. A path
// naming the statistics file is used as is, a directory is searched directly
// and any other file has its containing directory searched.
func LocateStatistics(p string) (string, error) {
	candidate := p
	if filepath.Base(p) != StatisticsFile {
		dir := p
		if info, err := os.Stat(p); err != nil || !info.IsDir() {
			dir = filepath.Dir(p)
		}
		candidate = filepath.Join(dir, StatisticsFile)
	}

	info, err := os.Stat(candidate)
	if err != nil || info.IsDir() {
		return "", NotFoundError{Path: candidate}
	}
	return candidate, nil
}

// LocateDashboard returns the path of the dashboard script of the report
// rooted at root, or "" if there is none. The script referenced by the
// report's index.html is preferred over the conventional location.
func LocateDashboard(root string) string {
	if p := dashboardFromIndex(root); p != "" {
		return p
	}

	p := filepath.Join(root, defaultDashboardScript)
	if info, err := os.Stat(p); err == nil && !info.IsDir() {
		return p
	}
	return ""
}

func dashboardFromIndex(root string) string {
	f, err := os.Open(filepath.Join(root, IndexFile))
	if err != nil {
		return ""
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return ""
	}

	var found string
	doc.Find("script[src]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src, _ := s.Attr("src")
		src = strings.SplitN(src, "?", 2)[0]
		if path.Base(src) != "dashboard.js" || strings.Contains(src, "://") {
			return true
		}

		p := filepath.Join(root, filepath.FromSlash(path.Clean("/" + src)))
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			found = p
			return false
		}
		return true
	})
	return found
}
