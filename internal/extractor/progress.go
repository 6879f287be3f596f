// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package extractor

import (
	"regexp"
	"strconv"
	"strings"
)

var percentRe = regexp.MustCompile(`(\d+(?:\.\d+)?)%`)

// Phase is a coarse download stage recognised in extractor output.
type Phase int

const (
	PhaseNone Phase = iota
	PhaseDownloading
	PhaseFinalizing
)

// Progress is what one output line says about the run.
type Progress struct {
	Percent    float64
	HasPercent bool
	Phase      Phase
}

// ParseProgress scans one output line. It reports false when the line
// carries no progress information.
func ParseProgress(line string) (Progress, bool) {
	var p Progress
	if m := percentRe.FindStringSubmatch(line); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil && v <= 100 {
			p.Percent = v
			p.HasPercent = true
			if v == 100 {
				p.Phase = PhaseFinalizing
			}
		}
	}
	if p.Phase == PhaseNone && isDestination(line) {
		p.Phase = PhaseDownloading
	}
	return p, p.HasPercent || p.Phase != PhaseNone
}

func isDestination(line string) bool {
	return strings.Contains(line, "Destination:") || strings.Contains(line, "Merging formats into")
}
