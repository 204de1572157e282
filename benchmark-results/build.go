// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"cmp"
	"encoding/json"
	"fmt"
	"log"
	"maps"
	"os"
	"slices"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/xataio/jmeter-analyzer/internal/benchmarks"
)

// This will generate line charts displaying benchmark results over time. Each set of charts will
// apply to a single Go version.

func main() {
	input := mustEnv("FILENAME_BENCHMARK_RESULTS")
	output := mustEnv("FILENAME_BENCHMARK_OUTPUT")

	log.Println("Loading data")
	reports, err := loadData(input)
	if err != nil {
		log.Fatalf("Loading data: %v", err)
	}
	log.Printf("Loaded %d reports", len(reports))

	log.Println("Generating charts")
	allCharts := generateCharts(reports)

	page := components.NewPage()
	page.SetPageTitle("jmeter-analyzer benchmark results")
	page.SetLayout("flex")

	for _, c := range allCharts {
		page.AddCharts(c)
	}

	f, err := os.Create(output)
	if err != nil {
		log.Fatalf("Creating output file: %v", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Fatalf("Closing output file: %v", err)
		}
	}()

	if err := page.Render(f); err != nil {
		log.Fatalf("Rendering: %s", err)
	}
}

type dataKey struct {
	goVersion     string
	benchmarkName string
	endpointCount int
	sha           string
}

type chartKey struct {
	goVersion     string
	benchmarkName string
}

// generateCharts will generate charts grouped by Go version and benchmark with series for each
// endpoint count
func generateCharts(reports []benchmarks.ReportRecorder) []*charts.Line {
	// Time data for each sha so we can order them later
	timeOrder := make(map[string]int64) // shortSHA -> timestamp

	// endpoints/s grouped by dataKey
	groupedData := make(map[dataKey]float64)

	// set of possible endpoint counts
	endpointCounts := make(map[int]struct{})

	for _, group := range reports {
		short := shortSHA(group.GitSHA)
		timeOrder[short] = group.Timestamp
		for _, report := range group.Reports {
			key := dataKey{
				goVersion:     group.GoVersion,
				benchmarkName: report.Name,
				sha:           short,
				endpointCount: report.EndpointCount,
			}
			groupedData[key] = report.EndpointsPerSecond
			endpointCounts[report.EndpointCount] = struct{}{}
		}
	}

	// Create x-axis for each chart
	xs := make(map[chartKey][]string)
	for d := range groupedData {
		ck := chartKey{goVersion: d.goVersion, benchmarkName: d.benchmarkName}
		xs[ck] = append(xs[ck], d.sha)
	}
	// Sort and deduplicate xs in time order
	for key, x := range xs {
		slices.Sort(x)
		x = slices.Compact(x)
		slices.SortFunc(x, func(a, b string) int {
			return cmp.Compare(timeOrder[a], timeOrder[b])
		})
		xs[key] = x
	}

	sortedCounts := slices.Sorted(maps.Keys(endpointCounts))

	allCharts := make([]*charts.Line, 0, len(xs))
	for ck, xValues := range xs {
		chart := charts.NewLine()
		chart.SetGlobalOptions(
			charts.WithTitleOpts(opts.Title{
				Title: fmt.Sprintf("%s (%s)", ck.benchmarkName, ck.goVersion),
			}),
			charts.WithAnimation(false))
		chart.SetXAxis(xValues)

		// Add series per endpoint count, leaving gaps where a commit has no result
		for _, count := range sortedCounts {
			data := make([]opts.LineData, 0, len(xValues))
			found := false
			for _, x := range xValues {
				value, ok := groupedData[dataKey{
					goVersion:     ck.goVersion,
					benchmarkName: ck.benchmarkName,
					endpointCount: count,
					sha:           x,
				}]
				if !ok {
					data = append(data, opts.LineData{Value: "-"})
					continue
				}
				found = true
				data = append(data, opts.LineData{Value: value})
			}
			if found {
				chart.AddSeries(fmt.Sprintf("%d", count), data)
			}
		}

		allCharts = append(allCharts, chart)
	}

	sort.Slice(allCharts, func(i, j int) bool {
		return allCharts[i].Title.Title < allCharts[j].Title.Title
	})

	return allCharts
}

func loadData(filename string) (allReports []benchmarks.ReportRecorder, err error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	// Each line represents a collection of results from a single commit
	for scanner.Scan() {
		var reports benchmarks.ReportRecorder
		if err := json.Unmarshal(scanner.Bytes(), &reports); err != nil {
			return nil, fmt.Errorf("unmarshalling reports: %w", err)
		}
		allReports = append(allReports, reports)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning input: %w", err)
	}

	return allReports, nil
}

// First 7 characters
func shortSHA(sha string) string {
	if len(sha) < 7 {
		return sha
	}
	return sha[:7]
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("Missing required environment variable: %q", key)
	}
	return v
}
