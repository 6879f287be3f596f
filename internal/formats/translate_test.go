// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package formats

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptrF(v float64) *float64 { return &v }
func ptrI(v int) *int         { return &v }

func TestTranslateSplitsVideoAndAudio(t *testing.T) {
	doc := `{"formats":[
		{"vcodec":"vp9","acodec":"opus","height":1080,"filesize":52428800,"format_id":"248","ext":"webm"},
		{"vcodec":"none","acodec":"opus","tbr":160,"format_id":"251","ext":"webm"}
	]}`
	var raw RawInfo
	require.NoError(t, json.Unmarshal([]byte(doc), &raw))

	videos, audios := Translate(raw.Formats)

	wantVideo := []VideoFormat{{
		Resolution: "1080p",
		Codec:      "vp9+opus",
		Container:  "webm",
		SizeMB:     50,
		ID:         "248",
		HasAudio:   true,
	}}
	wantAudio := []AudioFormat{{ID: "251", Bitrate: 160, Container: "webm"}}

	if diff := cmp.Diff(wantVideo, videos); diff != "" {
		t.Errorf("video formats mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantAudio, audios); diff != "" {
		t.Errorf("audio formats mismatch (-want +got):\n%s", diff)
	}
}

func TestTranslateDropsCodeclessEntries(t *testing.T) {
	videos, audios := Translate([]RawFormat{
		{FormatID: "sb0", VCodec: "none", ACodec: "none", Ext: "mhtml"},
		{FormatID: "x"},
	})
	want := []VideoFormat{{Resolution: "Unknown", ID: "x"}}
	if diff := cmp.Diff(want, videos); diff != "" {
		t.Errorf("video formats mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, audios)
}

func TestTranslateKeepsFormatsWithoutVideoCodec(t *testing.T) {
	doc := `{"formats":[
		{"format_id":"http-720","height":720,"ext":"mp4"},
		{"format_id":"hls-1","vcodec":null,"acodec":null,"height":480,"ext":"mp4"}
	]}`
	var raw RawInfo
	require.NoError(t, json.Unmarshal([]byte(doc), &raw))

	videos, audios := Translate(raw.Formats)

	require.Len(t, videos, 2)
	assert.Equal(t, "http-720", videos[0].ID)
	assert.Equal(t, "720p", videos[0].Resolution)
	assert.Equal(t, "", videos[0].Codec)
	assert.False(t, videos[0].HasAudio)
	assert.Equal(t, "hls-1", videos[1].ID)
	assert.Empty(t, audios)
}

func TestTranslateNilInput(t *testing.T) {
	videos, audios := Translate(nil)
	assert.NotNil(t, videos)
	assert.NotNil(t, audios)
	assert.Len(t, videos, 0)
	assert.Len(t, audios, 0)
}

func TestTranslateSizeFallbacks(t *testing.T) {
	videos, _ := Translate([]RawFormat{
		{FormatID: "exact", VCodec: "avc1", Filesize: ptrF(1048576), FilesizeApprox: ptrF(99 * 1048576), Height: ptrI(720)},
		{FormatID: "approx", VCodec: "avc1", FilesizeApprox: ptrF(3 * 1048576 / 2), Height: ptrI(480)},
		{FormatID: "unknown", VCodec: "avc1", Height: ptrI(360)},
	})
	require.Len(t, videos, 3)
	assert.Equal(t, 1.0, videos[0].SizeMB)
	assert.Equal(t, 1.5, videos[1].SizeMB)
	assert.Equal(t, 0.0, videos[2].SizeMB)
}

func TestTranslateLabels(t *testing.T) {
	videos, _ := Translate([]RawFormat{
		{FormatID: "a", VCodec: "avc1", FormatNote: "720p60", Height: ptrI(720)},
		{FormatID: "b", VCodec: "avc1", ACodec: "none"},
	})
	require.Len(t, videos, 2)
	assert.Equal(t, "720p60", videos[0].Resolution)
	assert.Equal(t, "avc1", videos[0].Codec)
	assert.False(t, videos[0].HasAudio)
	assert.Equal(t, "Unknown", videos[1].Resolution)
}

func TestTranslateOrdering(t *testing.T) {
	videos, audios := Translate([]RawFormat{
		{FormatID: "u1", VCodec: "avc1", FormatNote: "medium"},
		{FormatID: "360", VCodec: "avc1", Height: ptrI(360)},
		{FormatID: "u2", VCodec: "avc1"},
		{FormatID: "1080", VCodec: "avc1", Height: ptrI(1080)},
		{FormatID: "720", VCodec: "avc1", FormatNote: "720p"},
		{FormatID: "a64", VCodec: "none", ACodec: "mp4a", TBR: ptrF(64)},
		{FormatID: "a160", VCodec: "none", ACodec: "opus", TBR: ptrF(160)},
		{FormatID: "a128", VCodec: "none", ACodec: "opus", ABR: ptrF(128)},
	})

	var vids []string
	for _, v := range videos {
		vids = append(vids, v.ID)
	}
	// Unparseable labels sort last and keep their input order.
	assert.Equal(t, []string{"1080", "720", "360", "u1", "u2"}, vids)

	var aids []string
	for _, a := range audios {
		aids = append(aids, a.ID)
	}
	assert.Equal(t, []string{"a160", "a128", "a64"}, aids)
}

func TestResolutionValue(t *testing.T) {
	cases := map[string]int{
		"1080p":   1080,
		"1440p60": 1440,
		"Unknown": 0,
		"":        0,
		"hd":      0,
	}
	for in, want := range cases {
		assert.Equal(t, want, ResolutionValue(in), in)
	}
}

func TestBuildInfo(t *testing.T) {
	doc := `{"title":"Clip","thumbnail":"https://i.example/t.jpg","duration":125.4,
		"view_count":1500000,"upload_date":"20240131","uploader":"Someone","formats":[]}`
	var raw RawInfo
	require.NoError(t, json.Unmarshal([]byte(doc), &raw))

	info := BuildInfo(raw)
	assert.Equal(t, "Clip", info.Title)
	assert.Equal(t, 125, info.Duration)
	assert.Equal(t, int64(1500000), info.Views)
	assert.Equal(t, "Jan 31, 2024", info.UploadDate)
	assert.Equal(t, "Someone", info.Uploader)
}

func TestBuildInfoDateFallbacks(t *testing.T) {
	ts := int64(1704067200) // 2024-01-01T00:00:00Z
	assert.Equal(t, "Jan 1, 2024", BuildInfo(RawInfo{ReleaseTimestamp: &ts}).UploadDate)
	assert.Equal(t, "unknown", BuildInfo(RawInfo{}).UploadDate)
	assert.Equal(t, "unknown", BuildInfo(RawInfo{UploadDate: "garbage"}).UploadDate)
}
