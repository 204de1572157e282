// SPDX-License-Identifier: Apache-2.0

package report

import (
	"fmt"

	"github.com/xataio/jmeter-analyzer/pkg/jsextract"
)

const topErrorsTableID = "top5ErrorsBySamplerTable"

// BuildErrorTable lists the HTTP endpoints of stats that recorded errors, in
// source order, each with the first error description the dashboard's top
// errors table holds for it. It returns nil when no endpoint has errors.
func BuildErrorTable(stats *Statistics, dashboardJS string, log Logger) ErrorTable {
	if stats == nil {
		return nil
	}
	descriptions := topErrors(dashboardJS, log)

	var rows ErrorTable
	for _, e := range stats.Entries {
		if IsAggregate(e.Label) || !IsHTTPEndpoint(e.Label) {
			continue
		}
		failures, ok := Value(countNullable(e.ErrorCount))
		if !ok || failures <= 0 {
			continue
		}

		description := descriptions[e.Label]
		if description == "" {
			description = UnknownError
		}

		samples, _ := Value(countNullable(e.SampleCount))
		pct, ok := Value(e.ErrorPct)
		if !ok && samples > 0 {
			pct = float64(failures) / float64(samples) * 100
		}

		rows = append(rows, ErrorRow{
			Endpoint: e.Label,
			Error:    description,
			Errors:   failures,
			Requests: samples,
			ErrorPct: round2(pct),
		})
	}

	if len(rows) == 0 && len(descriptions) > 0 {
		log.Debug("top errors table has entries but no endpoint reports errors")
	}
	return rows
}

// topErrors maps sampler labels to the first error description of the top
// errors table. Items are positional:
// [label, samples, errors, error1, count1, error2, count2, ...].
func topErrors(src string, log Logger) map[string]string {
	if src == "" {
		return nil
	}

	data, err := jsextract.ExtractTable(src, topErrorsTableID)
	if err != nil {
		log.LogTableExtractionFailed(err)
		return nil
	}
	if data == nil {
		log.Debug("no top errors table in dashboard script")
		return nil
	}

	out := make(map[string]string)
	items, _ := data["items"].([]any)
	for _, item := range items {
		obj, _ := item.(map[string]any)
		values, _ := obj["data"].([]any)
		if len(values) < 5 {
			log.Debug("skipping top errors item with unexpected shape", "data", fmt.Sprint(values))
			continue
		}

		count, err := toFloat(values[2])
		if err != nil || count <= 0 {
			continue
		}
		label := fmt.Sprint(values[0])
		if _, seen := out[label]; seen {
			continue
		}
		description, _ := values[3].(string)
		out[label] = description
	}
	return out
}
