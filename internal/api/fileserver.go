// SPDX-License-Identifier: MIT

package api

import (
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/ManuGH/vidmux/internal/download"
	"github.com/ManuGH/vidmux/internal/log"
	"github.com/ManuGH/vidmux/internal/metrics"
	"github.com/go-chi/chi/v5"
	"golang.org/x/text/unicode/norm"
)

// handleFile serves one finished download from the output directory as an
// attachment. Only plain names directly inside the directory are served.
func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	logger := log.WithComponentFromContext(r.Context(), "api")
	name := chi.URLParam(r, "name")

	deny := func(status int, reason string) {
		logger.Warn().Str("event", "file_req.denied").Str("path", r.URL.Path).Str("reason", reason).Msg("file request denied")
		metrics.FileRequestDeniedTotal.WithLabelValues(reason).Inc()
		http.Error(w, http.StatusText(status), status)
	}

	if isPathTraversal(name) || strings.ContainsAny(name, `/\`) {
		deny(http.StatusForbidden, "path_escape")
		return
	}
	if name == "" || strings.HasPrefix(name, ".") {
		deny(http.StatusForbidden, "hidden")
		return
	}
	if download.IsWorkFile(name) {
		deny(http.StatusNotFound, "in_progress")
		return
	}

	absDir, err := filepath.Abs(s.cfg.Output.Dir)
	if err != nil {
		deny(http.StatusInternalServerError, "internal_error")
		return
	}
	realDir, err := filepath.EvalSymlinks(absDir)
	if err != nil {
		deny(http.StatusInternalServerError, "internal_error")
		return
	}
	realPath, err := filepath.EvalSymlinks(filepath.Join(absDir, name))
	if err != nil {
		if os.IsNotExist(err) {
			deny(http.StatusNotFound, "not_found")
			return
		}
		deny(http.StatusInternalServerError, "internal_error")
		return
	}
	// Symlinks must not lead out of the output directory.
	rel, err := filepath.Rel(realDir, realPath)
	if err != nil || strings.HasPrefix(rel, "..") || filepath.IsAbs(rel) {
		deny(http.StatusForbidden, "path_escape")
		return
	}

	// #nosec G304 -- realPath is validated to reside inside the output directory
	f, err := os.Open(realPath)
	if err != nil {
		deny(http.StatusInternalServerError, "internal_error")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		deny(http.StatusInternalServerError, "internal_error")
		return
	}
	if info.IsDir() {
		deny(http.StatusForbidden, "directory_listing")
		return
	}

	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		w.Header().Set("Content-Type", ct)
	} else {
		w.Header().Set("Content-Type", "application/octet-stream")
	}
	w.Header().Set("ETag", fmt.Sprintf(`W/"%x-%x"`, info.ModTime().UnixNano(), info.Size()))
	http.ServeContent(w, r, name, info.ModTime(), f)
}

// isPathTraversal decodes the input several times to catch double encoding,
// applies Unicode normalization and looks for parent references and NULs.
func isPathTraversal(p string) bool {
	decoded := p
	for i := 0; i < 3; i++ {
		prev := decoded
		if d, err := url.PathUnescape(decoded); err == nil {
			decoded = d
		} else if d2, err2 := url.QueryUnescape(decoded); err2 == nil {
			decoded = d2
		}
		if decoded == prev {
			break
		}
	}

	lower := strings.ToLower(decoded)
	for _, pat := range []string{"..", "%00", "%c0%ae", "%e0%80%ae"} {
		if strings.Contains(lower, pat) {
			return true
		}
	}
	if strings.IndexByte(decoded, 0x00) >= 0 {
		return true
	}

	normalized := norm.NFKC.String(decoded)
	return strings.Contains(normalized, "..") || strings.ContainsAny(normalized, `/\`)
}
