// SPDX-License-Identifier: Apache-2.0

package cmd

import "errors"

var (
	errNotEnoughReports  = errors.New("at least two reports are needed for a comparison")
	errBinaryToTerminal  = errors.New("excel output must be written to a file, use --output")
	errChartsNeedReports = errors.New("html output is only available for comparisons")
)
