// Package transcode wraps the external transcoder for container remuxing
// and HLS segmenting.
package transcode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"grabarr/internal/domain/command"
	"grabarr/internal/logging"
)

// FFmpeg invokes the transcode tool. No interpreter-hosted fallback exists
// for it; a missing binary is a hard failure.
type FFmpeg struct {
	bin     string
	timeout time.Duration
}

// New returns a transcode adapter. toolTimeout bounds one invocation,
// zero disables the bound.
func New(toolTimeout time.Duration) *FFmpeg {
	return &FFmpeg{bin: command.FFmpeg, timeout: toolTimeout}
}

// RemuxToMP4 copy-remuxes src into an mp4 container with web-optimized
// metadata placement, writing to a temporary path and atomically replacing
// the output before removing the old file. Returns the new path.
func (f *FFmpeg) RemuxToMP4(ctx context.Context, src string) (string, error) {
	if src == "" {
		return "", errors.New("must provide a source file to remux")
	}

	ext := filepath.Ext(src)
	base := strings.TrimSuffix(src, ext)
	tmp := base + command.RemuxTmpExt
	out := base + command.MP4Ext

	args := []string{
		command.Overwrite,
		command.HideBanner,
		command.LogLevel, command.LogError,
		command.Input, src,
		command.CodecCopy, command.CopyVal,
		command.MovFlags, command.FastStart,
		tmp,
	}

	if err := f.run(ctx, args); err != nil {
		if rmErr := os.Remove(tmp); rmErr != nil && !os.IsNotExist(rmErr) {
			logging.E("Failed to remove temporary remux file %q: %v", tmp, rmErr)
		}
		return "", fmt.Errorf("remux of %q failed: %w", src, err)
	}

	if err := os.Rename(tmp, out); err != nil {
		return "", fmt.Errorf("failed to move remuxed file into place: %w", err)
	}

	if out != src {
		if err := os.Remove(src); err != nil {
			logging.E("Failed to remove pre-remux file %q: %v", src, err)
		}
	}
	return out, nil
}

// Segment fully regenerates the HLS segment set for src inside segmentDir:
// the directory is removed, recreated, then the file is copy-segmented into
// fixed-duration independent segments plus a VOD playlist.
func (f *FFmpeg) Segment(ctx context.Context, segmentDir, src string) error {
	if src == "" {
		return errors.New("must provide a source file to segment")
	}
	if segmentDir == "" {
		return errors.New("must provide a segment directory")
	}

	// Never partially update a segment set.
	if err := os.RemoveAll(segmentDir); err != nil {
		return fmt.Errorf("failed to clear segment directory %q: %w", segmentDir, err)
	}
	if err := os.MkdirAll(segmentDir, 0o755); err != nil {
		return fmt.Errorf("failed to create segment directory %q: %w", segmentDir, err)
	}

	args := []string{
		command.Overwrite,
		command.HideBanner,
		command.LogLevel, command.LogError,
		command.Input, src,
		command.CodecCopy, command.CopyVal,
		command.HLSTime, command.HLSTimeVal,
		command.HLSPlaylistType, command.HLSPlaylistVOD,
		command.HLSFlags, command.HLSIndependent,
		command.HLSSegmentFilename, filepath.Join(segmentDir, command.HLSSegmentPattern),
		filepath.Join(segmentDir, command.HLSPlaylistName),
	}

	if err := f.run(ctx, args); err != nil {
		return fmt.Errorf("segmenting of %q failed: %w", src, err)
	}
	return nil
}

// run executes the transcoder and returns captured stderr on failure.
func (f *FFmpeg) run(ctx context.Context, args []string) error {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, f.bin, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	logging.D(1, "Built transcode command: %s", cmd.String())

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}
