// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package progress defines download progress events and broadcasts them
// over the bus on a shared topic and a per-download topic.
package progress

// Status texts shown to the user.
const (
	StatusDownloading = "Downloading…"
	StatusFinalizing  = "Finalizing…"
	StatusEmbedding   = "Embedding metadata…"
)

// Event is one progress notification. Percent and Status may appear
// together; Error and Complete are terminal.
type Event struct {
	DownloadID string    `json:"downloadId,omitempty"`
	Percent    *float64  `json:"percent,omitempty"`
	Status     string    `json:"status,omitempty"`
	Error      string    `json:"error,omitempty"`
	Complete   *Complete `json:"complete,omitempty"`
}

// Complete names the finished output file.
type Complete struct {
	Filename string `json:"filename"`
}

// Terminal reports whether consumers should stop listening after e.
func (e Event) Terminal() bool {
	return e.Error != "" || e.Complete != nil
}

func Percent(id string, p float64) Event {
	return Event{DownloadID: id, Percent: &p}
}

func Status(id, status string) Event {
	return Event{DownloadID: id, Status: status}
}

func Finalizing(id string) Event {
	p := 100.0
	return Event{DownloadID: id, Percent: &p, Status: StatusFinalizing}
}

func Failed(id, msg string) Event {
	return Event{DownloadID: id, Error: msg}
}

func Completed(id, filename string) Event {
	return Event{DownloadID: id, Complete: &Complete{Filename: filename}}
}
