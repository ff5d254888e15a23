// Package queue contains the worker pool draining the download job queue
// with bounded concurrency.
package queue

import (
	"context"
	"errors"
	"sync"

	"grabarr/internal/artwork"
	"grabarr/internal/cfg"
	"grabarr/internal/contracts"
	"grabarr/internal/domain/consts"
	"grabarr/internal/fetch"
	"grabarr/internal/logging"
	"grabarr/internal/models"
)

// Fetcher resolves a query to a locally stored file and reports progress.
type Fetcher interface {
	Download(ctx context.Context, req fetch.Request, events chan<- models.ProgressEvent) (fetch.Result, error)
	ResolveMetadata(ctx context.Context, query string) (models.FetchMetadata, error)
}

// Transcoder remuxes and segments finished files.
type Transcoder interface {
	RemuxToMP4(ctx context.Context, src string) (string, error)
	Segment(ctx context.Context, segmentDir, src string) error
}

// Pool drains the job queue with bounded concurrency, dispatching by job
// kind and writing state transitions back to the job store.
type Pool struct {
	store      contracts.Store
	fetcher    Fetcher
	transcoder Transcoder
	media      *cfg.MediaRoot
	conc       *ConcurrencySetting
	art        *artwork.Saver

	officialFilter bool

	queue   chan models.JobPayload
	stopped chan struct{}
	wg      sync.WaitGroup

	mu     sync.Mutex
	cond   *sync.Cond
	active int
}

// NewPool returns a worker pool over the given collaborators. art may be
// nil, disabling cover artwork fetches.
func NewPool(
	store contracts.Store,
	fetcher Fetcher,
	transcoder Transcoder,
	media *cfg.MediaRoot,
	conc *ConcurrencySetting,
	art *artwork.Saver,
	officialFilter bool,
) *Pool {
	p := &Pool{
		store:          store,
		fetcher:        fetcher,
		transcoder:     transcoder,
		media:          media,
		conc:           conc,
		art:            art,
		officialFilter: officialFilter,
		queue:          make(chan models.JobPayload, 256),
		stopped:        make(chan struct{}),
	}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// Start launches the dispatcher.
func (p *Pool) Start(ctx context.Context) {
	go p.dispatch(ctx)
}

// Stop stops accepting work and waits for in-flight jobs to finish.
func (p *Pool) Stop() {
	close(p.stopped)
	p.cond.Broadcast()
	p.wg.Wait()
}

// Enqueue persists a job (when it does not exist yet) and queues its
// payload. Download jobs from monitoring/import sources are converted to a
// metadata preflight when the official-source filter is active.
func (p *Pool) Enqueue(ctx context.Context, pl models.JobPayload) (string, error) {
	if pl.Kind == consts.KindDownload && p.requiresPrecheck(pl) {
		pl.Kind = consts.KindDownloadCheck
	}

	if pl.JobID == "" {
		id, err := p.store.JobStore().CreateJob(ctx, &models.DownloadJob{
			Kind:       pl.Kind,
			Query:      pl.Query,
			Source:     pl.Source,
			Quality:    pl.Quality,
			ArtistName: pl.ArtistName,
			AlbumTitle: pl.AlbumTitle,
			TrackID:    pl.TrackID,
			AssetID:    pl.AssetID,
			Prechecked: pl.Prechecked,
		})
		if err != nil {
			return "", err
		}
		pl.JobID = id
	}

	select {
	case p.queue <- pl:
		return pl.JobID, nil
	case <-p.stopped:
		return "", errors.New("worker pool is stopped")
	default:
		return "", errors.New("job queue is full")
	}
}

// requiresPrecheck reports whether this payload must run the official-source
// preflight before a real download may start.
func (p *Pool) requiresPrecheck(pl models.JobPayload) bool {
	if !p.officialFilter || pl.Prechecked {
		return false
	}
	return pl.Source == consts.SourceMonitor || pl.Source == consts.SourceImport
}

// dispatch hands queued payloads to worker goroutines, blocking while the
// bounded worker count is saturated.
func (p *Pool) dispatch(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopped:
			return
		case pl := <-p.queue:
			if !p.acquire(ctx) {
				return
			}
			p.wg.Add(1)
			go func(pl models.JobPayload) {
				defer p.wg.Done()
				defer p.release()
				p.run(ctx, pl)
			}(pl)
		}
	}
}

// run dispatches one payload by kind.
func (p *Pool) run(ctx context.Context, pl models.JobPayload) {
	logging.D(1, "Worker picked up %s job %q", pl.Kind, pl.JobID)

	switch pl.Kind {
	case consts.KindDownloadCheck:
		p.runCheck(ctx, pl)
	case consts.KindDownload:
		p.runDownload(ctx, pl)
	case consts.KindRemux:
		p.runRemux(ctx, pl)
	case consts.KindHLSSegment:
		p.runSegment(ctx, pl)
	default:
		logging.E("Unknown job kind %q for job %q", pl.Kind, pl.JobID)
	}
}

// acquire blocks until a worker slot is free under the current concurrency
// limit. The limit is re-read on every wakeup so settings changes apply
// without a restart.
func (p *Pool) acquire(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	for p.active >= p.conc.Limit(ctx) {
		select {
		case <-ctx.Done():
			return false
		case <-p.stopped:
			return false
		default:
		}
		p.cond.Wait()
	}
	p.active++
	return true
}

func (p *Pool) release() {
	p.mu.Lock()
	p.active--
	p.mu.Unlock()
	p.cond.Broadcast()
}

func (p *Pool) jobs() contracts.JobStore          { return p.store.JobStore() }
func (p *Pool) assets() contracts.AssetStore      { return p.store.AssetStore() }
func (p *Pool) activity() contracts.ActivityStore { return p.store.ActivityStore() }
