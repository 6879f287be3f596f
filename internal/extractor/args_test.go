// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatSelector(t *testing.T) {
	assert.Equal(t, "137+140", FormatSelector("137", "140"))
	assert.Equal(t, "22", FormatSelector("22", ""))
	assert.Equal(t, BestSelector, FormatSelector("", ""))
	assert.Equal(t, BestSelector, FormatSelector("", "140"))
}

func TestDownloadArgs(t *testing.T) {
	args := DownloadArgs(DownloadOptions{
		ID:             "abc",
		URL:            "https://example.com/v",
		VideoFormatID:  "137",
		AudioFormatID:  "140",
		OutputDir:      "/data",
		TranscoderPath: "/usr/bin/ffmpeg",
		UserAgent:      "UA",
	})
	assert.Equal(t, []string{
		"--no-warnings", "--ignore-errors", "--no-check-certificate", "--no-playlist", "--newline",
		"--user-agent", "UA",
		"-o", "/data/abc.%(ext)s",
		"--ffmpeg-location", "/usr/bin/ffmpeg",
		"--merge-output-format", "mp4",
		"--postprocessor-args", "ffmpeg:-c:v copy -c:a aac -b:a 192k",
		"-f", "137+140",
		"--", "https://example.com/v",
	}, args)
}

func TestDownloadArgsWebmUsesOpus(t *testing.T) {
	args := DownloadArgs(DownloadOptions{ID: "a", URL: "u", OutputDir: "/d", MergeFormat: "webm", AudioBitrate: "128k"})
	assert.Contains(t, args, "ffmpeg:-c:v copy -c:a libopus -b:a 128k")
	assert.NotContains(t, args, "--ffmpeg-location")
}
