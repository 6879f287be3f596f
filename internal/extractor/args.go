// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package extractor

import (
	"path/filepath"
	"strings"
)

// BestSelector picks the best streams when the caller named none.
const BestSelector = "bestvideo+bestaudio/best"

// DownloadOptions are the per-run parameters of a download invocation.
type DownloadOptions struct {
	ID             string // output filename stem
	URL            string
	VideoFormatID  string
	AudioFormatID  string
	OutputDir      string
	TranscoderPath string
	MergeFormat    string // final container, e.g. "mp4"
	AudioBitrate   string // e.g. "192k"
	UserAgent      string
}

// FormatSelector builds the -f expression.
func FormatSelector(videoID, audioID string) string {
	switch {
	case videoID != "" && audioID != "":
		return videoID + "+" + audioID
	case videoID != "":
		return videoID
	default:
		return BestSelector
	}
}

// OutputTemplate is the -o template; yt-dlp fills in the extension.
func OutputTemplate(dir, id string) string {
	return filepath.Join(dir, id) + ".%(ext)s"
}

// DownloadArgs is the full argument vector for one download attempt. The
// video stream is copied and audio re-encoded during the merge.
func DownloadArgs(o DownloadOptions) []string {
	merge := o.MergeFormat
	if merge == "" {
		merge = "mp4"
	}
	bitrate := o.AudioBitrate
	if bitrate == "" {
		bitrate = "192k"
	}
	args := []string{
		"--no-warnings",
		"--ignore-errors",
		"--no-check-certificate",
		"--no-playlist",
		"--newline",
	}
	if o.UserAgent != "" {
		args = append(args, "--user-agent", o.UserAgent)
	}
	args = append(args,
		"-o", OutputTemplate(o.OutputDir, o.ID),
	)
	if o.TranscoderPath != "" {
		args = append(args, "--ffmpeg-location", o.TranscoderPath)
	}
	args = append(args,
		"--merge-output-format", merge,
		"--postprocessor-args", "ffmpeg:-c:v copy -c:a "+audioCodecFor(merge)+" -b:a "+bitrate,
		"-f", FormatSelector(o.VideoFormatID, o.AudioFormatID),
		"--", o.URL,
	)
	return args
}

// audioCodecFor returns an audio encoder the container can hold.
func audioCodecFor(container string) string {
	switch strings.ToLower(container) {
	case "webm", "ogg":
		return "libopus"
	default:
		return "aac"
	}
}
