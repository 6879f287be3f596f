// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package formats turns extractor metadata into the simplified, display
// ordered format lists served to the browser.
package formats

// RawFormat is one element of the extractor's formats array.
type RawFormat struct {
	FormatID       string   `json:"format_id"`
	Ext            string   `json:"ext"`
	VCodec         string   `json:"vcodec"`
	ACodec         string   `json:"acodec"`
	Filesize       *float64 `json:"filesize"`
	FilesizeApprox *float64 `json:"filesize_approx"`
	TBR            *float64 `json:"tbr"`
	ABR            *float64 `json:"abr"`
	Height         *int     `json:"height"`
	FormatNote     string   `json:"format_note"`
}

// RawInfo is the subset of the extractor's info document we consume.
type RawInfo struct {
	ID               string      `json:"id"`
	Title            string      `json:"title"`
	Thumbnail        string      `json:"thumbnail"`
	Duration         *float64    `json:"duration"`
	ViewCount        *int64      `json:"view_count"`
	UploadDate       string      `json:"upload_date"`
	ReleaseTimestamp *int64      `json:"release_timestamp"`
	Uploader         string      `json:"uploader"`
	Formats          []RawFormat `json:"formats"`
}

// VideoFormat is a selectable video stream.
type VideoFormat struct {
	Resolution string  `json:"resolution"`
	Codec      string  `json:"codec"`
	Container  string  `json:"container"`
	SizeMB     float64 `json:"sizeMB"`
	Bitrate    int     `json:"bitrate"`
	ID         string  `json:"itag"`
	HasAudio   bool    `json:"hasAudio"`
}

// AudioFormat is a selectable audio-only stream.
type AudioFormat struct {
	ID        string `json:"itag"`
	Bitrate   int    `json:"bitrate"`
	Container string `json:"container"`
}

// VideoInfo is the translated result of one info extraction.
type VideoInfo struct {
	Title        string
	Thumbnail    string
	Duration     int   // seconds
	Views        int64 // raw view count
	UploadDate   string
	Uploader     string
	VideoFormats []VideoFormat
	AudioFormats []AudioFormat
}
