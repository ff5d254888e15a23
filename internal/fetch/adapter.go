// Package fetch wraps the external media-fetch tool: target resolution,
// quality format chains, launch strategies, progress parsing and output
// resolution.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"grabarr/internal/domain/command"
	"grabarr/internal/logging"
	"grabarr/internal/models"
)

// Request describes one fetch: what to acquire and where to put it. Query
// may be free text, a direct source id, an absolute URL, or a pre-formed
// search directive.
type Request struct {
	Query     string
	Quality   string
	OutputDir string
}

// Result is the outcome of a successful fetch.
type Result struct {
	FilePath string
}

// Options configures the adapter.
type Options struct {
	// CookieFile, when set, is passed to the tool with --cookies.
	CookieFile string

	// ToolTimeout bounds a single tool invocation. Zero disables the bound
	// and a hung tool holds its worker slot until cancellation.
	ToolTimeout time.Duration
}

// Adapter invokes the external fetch tool.
type Adapter struct {
	cookieFile string
	timeout    time.Duration
}

// New returns a fetch adapter.
func New(opts Options) *Adapter {
	return &Adapter{
		cookieFile: opts.CookieFile,
		timeout:    opts.ToolTimeout,
	}
}

// Download resolves the request to a locally stored file, emitting classified
// progress events on events as the tool runs. The events channel is closed
// before Download returns. Progress percentages are monotonically filtered
// per stage before they are emitted.
func (a *Adapter) Download(ctx context.Context, req Request, events chan<- models.ProgressEvent) (Result, error) {
	defer close(events)

	if req.OutputDir == "" {
		return Result{}, errors.New("must provide an output directory for the download")
	}
	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("failed to create output directory %q: %w", req.OutputDir, err)
	}

	primary, fallback := ResolveTargets(req.Query)

	startTime := time.Now()

	path, err := a.downloadTarget(ctx, req, primary, events)
	if err != nil {
		return Result{}, err
	}

	if path == "" && fallback != "" {
		logging.I("Biased search %q yielded nothing, rerunning with unmodified query", primary)
		if path, err = a.downloadTarget(ctx, req, fallback, events); err != nil {
			return Result{}, err
		}
	}

	// The tool prints the final path on success; fall back to scanning the
	// output directory for the newest file created after the run began.
	if path == "" {
		path = newestMediaFile(req.OutputDir, startTime)
	}
	if path == "" {
		return Result{}, fmt.Errorf("fetch produced no output file for %q", req.Query)
	}
	if _, err := os.Stat(path); err != nil {
		return Result{}, fmt.Errorf("fetch reported output file %q but it is not readable: %w", path, err)
	}

	return Result{FilePath: path}, nil
}

// downloadTarget runs the tool once for one target and returns the printed
// final file path, or "" when the run produced none.
func (a *Adapter) downloadTarget(ctx context.Context, req Request, target string, events chan<- models.ProgressEvent) (string, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	args := make([]string, 0, 16)
	args = append(args,
		command.Format, FormatChain(req.Quality),
		command.NewlineProgress,
		command.NoPlaylist,
		command.RestrictFilenames,
		command.Output, filepath.Join(req.OutputDir, command.FilenameSyntax),
		command.Print, command.AfterMove,
	)
	if a.cookieFile != "" {
		args = append(args, command.CookiePath, a.cookieFile)
	}
	// Target goes last.
	args = append(args, target)

	var (
		filter    = NewProgressFilter()
		finalPath string
	)

	err := runTool(ctx, args, func(line string) {
		logging.D(4, "Fetch tool output: %q", line)

		if p, ok := finalPathFromLine(line); ok {
			finalPath = p
			return
		}

		ev, ok := ClassifyLine(line)
		if !ok {
			return
		}
		if !filter.Forward(ev) {
			return
		}
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	})
	if err != nil {
		return "", err
	}
	return finalPath, nil
}
