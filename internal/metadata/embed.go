// SPDX-License-Identifier: MIT

// Package metadata tags finished downloads with title, artist and cover art
// by remuxing them through ffmpeg.
package metadata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	xglog "github.com/ManuGH/vidmux/internal/log"
	"github.com/ManuGH/vidmux/internal/metrics"
	"github.com/ManuGH/vidmux/internal/platform/httpx"
	"github.com/ManuGH/vidmux/internal/process"
	"github.com/ManuGH/vidmux/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// Tool is the label used for transcoder runs in logs and metrics.
const Tool = "transcoder"

// Tags are written into the container. Thumbnail is an http(s) URL or a
// local image path.
type Tags struct {
	Title     string
	Artist    string
	Thumbnail string
}

// Config controls the embed step.
type Config struct {
	Bin              string
	Comment          string
	UserAgent        string
	ThumbnailTimeout time.Duration
	EmbedTimeout     time.Duration
}

// Embedder rewrites media files in place with new tags.
type Embedder struct {
	cfg    Config
	runner *process.Runner
	client *http.Client
}

// NewEmbedder creates an Embedder. Thumbnails are fetched with a client
// bounded by cfg.ThumbnailTimeout.
func NewEmbedder(cfg Config, runner *process.Runner) *Embedder {
	if runner == nil {
		runner = process.NewRunner()
	}
	if cfg.ThumbnailTimeout <= 0 {
		cfg.ThumbnailTimeout = 15 * time.Second
	}
	return &Embedder{
		cfg:    cfg,
		runner: runner,
		client: httpx.NewClient(cfg.ThumbnailTimeout, cfg.UserAgent),
	}
}

// Embed writes tags into path. A thumbnail that cannot be obtained only
// drops the cover art. On any error the original file is left untouched.
func (e *Embedder) Embed(ctx context.Context, path string, tags Tags) (err error) {
	ctx, span := telemetry.Tracer("vidmux/metadata").Start(ctx, "metadata.embed")
	defer span.End()
	logger := xglog.WithComponentFromContext(ctx, "metadata").With().Str(xglog.FieldPath, path).Logger()

	thumb, downloaded := e.resolveThumbnail(ctx, path, tags.Thumbnail)
	if downloaded {
		defer func() {
			// A downloaded cover is ours to remove, a local one never is.
			if rmErr := os.Remove(thumb); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				logger.Debug().Err(rmErr).Msg("remove downloaded thumbnail")
			}
		}()
	}
	cover := thumb != ""
	span.SetAttributes(attribute.Bool(telemetry.EmbedCoverKey, cover))
	defer func() {
		result := "success"
		if err != nil {
			result = "failure"
			telemetry.RecordError(span, err, "embed")
		}
		metrics.EmbedTotal.WithLabelValues(result, fmt.Sprintf("%t", cover)).Inc()
	}()

	tmp := TempPath(path)
	_, diag, runErr := e.runner.Run(ctx, process.Spec{
		Tool:    Tool,
		Bin:     e.cfg.Bin,
		Args:    Args(path, thumb, tmp, tags, e.cfg.Comment),
		Timeout: e.cfg.EmbedTimeout,
	})
	if runErr != nil {
		_ = os.Remove(tmp)
		logger.Warn().Err(runErr).Strs("diagnostics", diag).Msg("metadata embed failed")
		return fmt.Errorf("embed metadata: %w", runErr)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	logger.Debug().Bool("cover", cover).Msg("metadata embedded")
	return nil
}

// resolveThumbnail returns a usable local image path, and whether it was
// downloaded for this run.
func (e *Embedder) resolveThumbnail(ctx context.Context, mediaPath, thumb string) (string, bool) {
	thumb = strings.TrimSpace(thumb)
	switch {
	case thumb == "":
		return "", false
	case strings.HasPrefix(thumb, "http://") || strings.HasPrefix(thumb, "https://"):
		dst := thumbnailPath(mediaPath, thumb)
		if err := e.fetchThumbnail(ctx, thumb, dst); err != nil {
			metrics.ThumbnailFetchTotal.WithLabelValues("failure").Inc()
			logger := xglog.WithComponentFromContext(ctx, "metadata")
			logger.Warn().Err(err).Str(xglog.FieldURL, thumb).Msg("thumbnail fetch failed, embedding without cover art")
			return "", false
		}
		metrics.ThumbnailFetchTotal.WithLabelValues("success").Inc()
		return dst, true
	default:
		if st, err := os.Stat(thumb); err == nil && st.Mode().IsRegular() {
			return thumb, false
		}
		return "", false
	}
}

// Args is the ffmpeg argument vector. Streams are copied; the optional
// second input becomes the attached picture.
func Args(input, thumb, output string, tags Tags, comment string) []string {
	args := []string{"-y", "-i", input}
	if thumb != "" {
		args = append(args, "-i", thumb, "-map", "0", "-map", "1")
	}
	args = append(args,
		"-c", "copy",
		"-metadata", "title="+tags.Title,
		"-metadata", "artist="+tags.Artist,
		"-metadata", "comment="+comment,
	)
	if thumb != "" {
		args = append(args, "-disposition:v:1", "attached_pic")
	}
	return append(args, output)
}

// TempPath is the side file ffmpeg writes to. It keeps the extension so
// the muxer is picked correctly.
func TempPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".tmp" + ext
}

func thumbnailPath(mediaPath, thumbURL string) string {
	ext := strings.ToLower(filepath.Ext(strings.SplitN(thumbURL, "?", 2)[0]))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		ext = ".jpg"
	}
	return strings.TrimSuffix(mediaPath, filepath.Ext(mediaPath)) + ".thumb" + ext
}
