// SPDX-License-Identifier: MIT

package metadata

import (
	"context"
	"fmt"
	"io"
	"net/http"

	xglog "github.com/ManuGH/vidmux/internal/log"
	"github.com/google/renameio/v2"
)

const maxThumbnailBytes = 10 << 20

// fetchThumbnail downloads src to dst. dst only appears once the body has
// been fully written.
func (e *Embedder) fetchThumbnail(ctx context.Context, src, dst string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return fmt.Errorf("build thumbnail request: %w", err)
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch thumbnail: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch thumbnail: unexpected status %d", resp.StatusCode)
	}

	pendingFile, err := renameio.NewPendingFile(dst)
	if err != nil {
		return fmt.Errorf("create pending thumbnail: %w", err)
	}
	defer func() {
		if err := pendingFile.Cleanup(); err != nil {
			logger := xglog.WithComponentFromContext(ctx, "metadata")
			logger.Debug().Err(err).Msg("cleanup pending thumbnail")
		}
	}()

	n, err := io.Copy(pendingFile, io.LimitReader(resp.Body, maxThumbnailBytes+1))
	if err != nil {
		return fmt.Errorf("write thumbnail: %w", err)
	}
	if n > maxThumbnailBytes {
		return fmt.Errorf("thumbnail exceeds %d bytes", maxThumbnailBytes)
	}
	if n == 0 {
		return fmt.Errorf("thumbnail is empty")
	}
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("commit thumbnail: %w", err)
	}
	return nil
}
