// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package formats

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatDuration renders seconds as M:SS, or H:MM:SS from one hour up.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// FormatViews renders a view count with a K/M/B suffix.
func FormatViews(n int64) string {
	switch {
	case n >= 1_000_000_000:
		return compact(float64(n)/1e9) + "B views"
	case n >= 1_000_000:
		return compact(float64(n)/1e6) + "M views"
	case n >= 1_000:
		return compact(float64(n)/1e3) + "K views"
	case n < 0:
		n = 0
	}
	return strconv.FormatInt(n, 10) + " views"
}

func compact(v float64) string {
	s := strconv.FormatFloat(v, 'f', 1, 64)
	return strings.TrimSuffix(s, ".0")
}
