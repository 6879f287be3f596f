// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package process

import "sync"

// LineRing keeps the last N lines of tool output for diagnostics.
type LineRing struct {
	mu    sync.Mutex
	lines []string
	pos   int
	full  bool
}

func NewLineRing(size int) *LineRing {
	if size <= 0 {
		size = 1
	}
	return &LineRing{lines: make([]string, size)}
}

func (r *LineRing) Add(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines[r.pos] = line
	r.pos = (r.pos + 1) % len(r.lines)
	if r.pos == 0 {
		r.full = true
	}
}

// Lines returns the retained lines, oldest first.
func (r *LineRing) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.full {
		return append([]string(nil), r.lines[:r.pos]...)
	}
	res := make([]string, len(r.lines))
	n := copy(res, r.lines[r.pos:])
	copy(res[n:], r.lines[:r.pos])
	return res
}
