// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ManuGH/vidmux/internal/download"
	"github.com/ManuGH/vidmux/internal/formats"
	"github.com/ManuGH/vidmux/internal/log"
	netx "github.com/ManuGH/vidmux/internal/platform/net"
	"github.com/ManuGH/vidmux/internal/store"
	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 64 << 10

type infoRequest struct {
	URL string `json:"url"`
}

type infoResponse struct {
	Title        string                `json:"title"`
	Thumbnail    string                `json:"thumbnail"`
	Duration     string                `json:"duration"`
	Views        string                `json:"views"`
	Date         string                `json:"date"`
	Formats      []formats.VideoFormat `json:"formats"`
	AudioFormats []formats.AudioFormat `json:"audioFormats"`
	Uploader     string                `json:"uploader"`
}

type downloadRequest struct {
	URL           string `json:"url"`
	VideoFormatID string `json:"videoFormatId"`
	AudioFormatID string `json:"audioFormatId"`
}

type downloadResponse struct {
	Success bool   `json:"success"`
	File    string `json:"file"`
	ID      string `json:"id"`
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	logger := log.WithComponentFromContext(r.Context(), "api")

	var req infoRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	sourceURL, err := netx.NormalizeSourceURL(req.URL)
	if err != nil {
		writeBadRequest(w, "A valid http(s) url is required")
		return
	}

	info, err := s.deps.Info.Info(r.Context(), sourceURL)
	if err != nil {
		logger.Error().Err(err).Str(log.FieldURL, sourceURL).Msg("info lookup failed")
		writeServerError(w, "Failed to fetch video info", download.Details(err))
		return
	}

	resp := infoResponse{
		Title:        info.Title,
		Thumbnail:    info.Thumbnail,
		Duration:     formats.FormatDuration(info.Duration),
		Views:        formats.FormatViews(info.Views),
		Date:         info.UploadDate,
		Formats:      info.VideoFormats,
		AudioFormats: info.AudioFormats,
		Uploader:     info.Uploader,
	}
	if resp.Formats == nil {
		resp.Formats = []formats.VideoFormat{}
	}
	if resp.AudioFormats == nil {
		resp.AudioFormats = []formats.AudioFormat{}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	logger := log.WithComponentFromContext(r.Context(), "api")

	var req downloadRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	res, err := s.deps.Downloads.Run(r.Context(), download.Request{
		URL:           req.URL,
		VideoFormatID: req.VideoFormatID,
		AudioFormatID: req.AudioFormatID,
	})
	switch {
	case errors.Is(err, netx.ErrInvalidURL):
		writeBadRequest(w, "A valid http(s) url is required")
		return
	case errors.Is(err, download.ErrBusy):
		writeServiceUnavailable(w, err)
		return
	case err != nil:
		logger.Error().Err(err).Str(log.FieldDownloadID, res.ID).Msg("download failed")
		writeServerError(w, "Download failed", download.Details(err))
		return
	}
	writeJSON(w, http.StatusOK, downloadResponse{Success: true, File: res.Filename, ID: res.ID})
}

func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := s.deps.Downloads.Record(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeNotFound(w)
		return
	}
	if err != nil {
		writeServerError(w, "Failed to load download", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
