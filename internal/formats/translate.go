// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package formats

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

const none = "none"

// Translate splits raw formats into video and audio lists, each sorted for
// display. Any entry whose vcodec is not "none" counts as video, including
// entries that omit the field. Entries with no codec at all are dropped.
func Translate(raw []RawFormat) ([]VideoFormat, []AudioFormat) {
	videos := make([]VideoFormat, 0, len(raw))
	audios := make([]AudioFormat, 0)

	for _, f := range raw {
		switch {
		case f.VCodec != none:
			videos = append(videos, VideoFormat{
				Resolution: resolutionLabel(f),
				Codec:      codecLabel(f),
				Container:  f.Ext,
				SizeMB:     sizeMB(f),
				Bitrate:    kbps(f.TBR),
				ID:         f.FormatID,
				HasAudio:   hasCodec(f.ACodec),
			})
		case hasCodec(f.ACodec):
			br := kbps(f.TBR)
			if br == 0 {
				br = kbps(f.ABR)
			}
			audios = append(audios, AudioFormat{
				ID:        f.FormatID,
				Bitrate:   br,
				Container: f.Ext,
			})
		}
	}

	sort.SliceStable(videos, func(i, j int) bool {
		return ResolutionValue(videos[i].Resolution) > ResolutionValue(videos[j].Resolution)
	})
	sort.SliceStable(audios, func(i, j int) bool {
		return audios[i].Bitrate > audios[j].Bitrate
	})
	return videos, audios
}

// BuildInfo converts a raw info document into a VideoInfo.
func BuildInfo(raw RawInfo) VideoInfo {
	videos, audios := Translate(raw.Formats)
	info := VideoInfo{
		Title:        raw.Title,
		Thumbnail:    raw.Thumbnail,
		Uploader:     raw.Uploader,
		UploadDate:   uploadDate(raw),
		VideoFormats: videos,
		AudioFormats: audios,
	}
	if raw.Duration != nil && *raw.Duration > 0 {
		info.Duration = int(*raw.Duration)
	}
	if raw.ViewCount != nil && *raw.ViewCount > 0 {
		info.Views = *raw.ViewCount
	}
	return info
}

// hasCodec reports whether c names a real codec. Only used for labels.
func hasCodec(c string) bool {
	return c != "" && c != none
}

func resolutionLabel(f RawFormat) string {
	if f.FormatNote != "" {
		return f.FormatNote
	}
	if f.Height != nil && *f.Height > 0 {
		return strconv.Itoa(*f.Height) + "p"
	}
	return "Unknown"
}

func codecLabel(f RawFormat) string {
	parts := make([]string, 0, 2)
	for _, c := range []string{f.VCodec, f.ACodec} {
		if hasCodec(c) {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, "+")
}

func sizeMB(f RawFormat) float64 {
	var bytes float64
	switch {
	case f.Filesize != nil && *f.Filesize > 0:
		bytes = *f.Filesize
	case f.FilesizeApprox != nil && *f.FilesizeApprox > 0:
		bytes = *f.FilesizeApprox
	default:
		return 0
	}
	return math.Round(bytes/(1024*1024)*10) / 10
}

func kbps(v *float64) int {
	if v == nil || *v <= 0 {
		return 0
	}
	return int(math.Round(*v))
}

// ResolutionValue extracts the leading integer of a label such as "1080p60"
// or "720p". Labels without one ("Unknown", "medium") yield 0.
func ResolutionValue(label string) int {
	end := 0
	for end < len(label) && label[end] >= '0' && label[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.Atoi(label[:end])
	if err != nil {
		return 0
	}
	return n
}

func uploadDate(raw RawInfo) string {
	if raw.UploadDate != "" {
		if t, err := time.Parse("20060102", raw.UploadDate); err == nil {
			return t.Format("Jan 2, 2006")
		}
	}
	if raw.ReleaseTimestamp != nil && *raw.ReleaseTimestamp > 0 {
		return time.Unix(*raw.ReleaseTimestamp, 0).UTC().Format("Jan 2, 2006")
	}
	return "unknown"
}
