// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package procgroup spawns external tools in their own process group so the
// whole tree (yt-dlp and the ffmpeg children it forks) can be reaped together.
package procgroup

import "errors"

var ErrKillFailed = errors.New("kill operation failed")
