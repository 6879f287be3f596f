// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package download

import (
	"os"
	"sort"
	"strings"
)

// IsWorkFile reports whether name is an unfinished side file: extractor
// partials, embed temporaries or downloaded covers.
func IsWorkFile(name string) bool {
	return strings.Contains(name, ".tmp.") ||
		strings.HasSuffix(name, ".part") ||
		strings.Contains(name, ".part-Frag") ||
		strings.HasSuffix(name, ".ytdl") ||
		strings.Contains(name, ".thumb.")
}

// resolveOutput finds the finished file for id. The merge container only
// applies when the extractor merged streams; a single format keeps its own
// extension, so any "<id>.<ext>" counts. The merge container wins when
// several candidates exist.
func resolveOutput(dir, id, merge string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	prefix := id + "."
	var candidates []string
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || !strings.HasPrefix(name, prefix) || IsWorkFile(name) {
			continue
		}
		ext := strings.TrimPrefix(name, prefix)
		// "<id>.f248.webm" is a pre-merge stream, not an output.
		if ext == "" || strings.Contains(ext, ".") {
			continue
		}
		if ext == merge {
			return name, true
		}
		candidates = append(candidates, name)
	}
	if len(candidates) == 0 {
		return "", false
	}
	sort.Strings(candidates)
	return candidates[0], true
}
