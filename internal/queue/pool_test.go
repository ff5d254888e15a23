package queue

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"grabarr/internal/cfg"
	"grabarr/internal/contracts"
	"grabarr/internal/database"
	"grabarr/internal/domain/consts"
	"grabarr/internal/domain/keys"
	"grabarr/internal/fetch"
	"grabarr/internal/models"
	"grabarr/internal/repo"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

// fakeFetcher emits a canned progress sequence and writes a fake media file.
type fakeFetcher struct {
	meta    models.FetchMetadata
	metaErr error
	dlErr   error
}

func (f *fakeFetcher) Download(ctx context.Context, req fetch.Request, events chan<- models.ProgressEvent) (fetch.Result, error) {
	defer close(events)

	if f.dlErr != nil {
		return fetch.Result{}, f.dlErr
	}

	for _, ev := range []models.ProgressEvent{
		{Stage: consts.StageDownload, Percent: 10, HasPercent: true},
		{Stage: consts.StageDownload, Percent: 55, HasPercent: true},
		{Stage: consts.StageProcessing, Percent: 20, HasPercent: true},
		{Stage: consts.StageProcessing, Percent: 100, HasPercent: true},
	} {
		select {
		case events <- ev:
		case <-ctx.Done():
			return fetch.Result{}, ctx.Err()
		}
	}

	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return fetch.Result{}, err
	}
	path := filepath.Join(req.OutputDir, "song.webm")
	if err := os.WriteFile(path, []byte("media"), 0o644); err != nil {
		return fetch.Result{}, err
	}
	return fetch.Result{FilePath: path}, nil
}

func (f *fakeFetcher) ResolveMetadata(ctx context.Context, query string) (models.FetchMetadata, error) {
	return f.meta, f.metaErr
}

// fakeTranscoder records calls without spawning anything.
type fakeTranscoder struct {
	remuxed   []string
	segmented []string
	remuxErr  error
}

func (f *fakeTranscoder) RemuxToMP4(ctx context.Context, src string) (string, error) {
	if f.remuxErr != nil {
		return "", f.remuxErr
	}
	f.remuxed = append(f.remuxed, src)
	return src, nil
}

func (f *fakeTranscoder) Segment(ctx context.Context, segmentDir, src string) error {
	f.segmented = append(f.segmented, segmentDir)
	return nil
}

func newTestPool(t *testing.T, fetcher Fetcher, transcoder Transcoder, officialFilter bool) (*Pool, contracts.Store) {
	t.Helper()

	viper.Set(keys.MediaDir, t.TempDir())
	t.Cleanup(func() { viper.Set(keys.MediaDir, "") })

	db, err := database.InitDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.DB.Close() })

	store := repo.InitStores(db.DB)
	media := cfg.NewMediaRoot(time.Minute, time.Now)
	conc := NewConcurrencySetting(store.SettingsStore(), time.Minute, time.Now)

	return NewPool(store, fetcher, transcoder, media, conc, nil, officialFilter), store
}

func waitForStatus(t *testing.T, js contracts.JobStore, id string, want models.JobStatus) *models.DownloadJob {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		j, found, err := js.GetJob(context.Background(), id)
		require.NoError(t, err)
		if found && j.Status == want {
			return j
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %q never reached status %q", id, want)
	return nil
}

// TestPoolDownloadJobCompletes runs a download job end to end over fakes
// and checks the terminal state, recorded asset and activity trail.
func TestPoolDownloadJobCompletes(t *testing.T) {
	pool, store := newTestPool(t, &fakeFetcher{}, &fakeTranscoder{}, false)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)
	defer pool.Stop()

	id, err := pool.Enqueue(ctx, models.JobPayload{
		Kind:    consts.KindDownload,
		Query:   "artist - song",
		Source:  consts.SourceManual,
		TrackID: 7,
	})
	require.NoError(t, err)

	j := waitForStatus(t, store.JobStore(), id, models.JobCompleted)
	require.Nil(t, j.Stage)
	require.NotNil(t, j.ProgressPct)
	require.InDelta(t, 100, *j.ProgressPct, 0.001)
	require.NotNil(t, j.FinishedAt)

	asset, found, err := store.AssetStore().LatestCompletedAsset(ctx, 7)
	require.NoError(t, err)
	require.True(t, found)
	require.FileExists(t, asset.FilePath)

	events, err := store.ActivityStore().Recent(ctx, 10)
	require.NoError(t, err)
	require.NotEmpty(t, events)
	require.Equal(t, consts.EventDownloadCompleted, events[0].Type)
}

// TestPoolDownloadJobFails checks failure wiring when the fetch errors.
func TestPoolDownloadJobFails(t *testing.T) {
	pool, store := newTestPool(t, &fakeFetcher{dlErr: errors.New("no formats found")}, &fakeTranscoder{}, false)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)
	defer pool.Stop()

	id, err := pool.Enqueue(ctx, models.JobPayload{
		Kind:   consts.KindDownload,
		Query:  "artist - song",
		Source: consts.SourceManual,
	})
	require.NoError(t, err)

	j := waitForStatus(t, store.JobStore(), id, models.JobFailed)
	require.Contains(t, j.Error, "no formats found")

	events, err := store.ActivityStore().Recent(ctx, 10)
	require.NoError(t, err)
	require.NotEmpty(t, events)
	require.Equal(t, consts.EventDownloadFailed, events[0].Type)
}

// TestPoolPrecheckRejectsUnofficial checks the monitored-source preflight
// path: a fan upload fails the job with a rejection event, never downloading.
func TestPoolPrecheckRejectsUnofficial(t *testing.T) {
	fetcher := &fakeFetcher{meta: models.FetchMetadata{Title: "artist - song lyrics", Uploader: "randomfan"}}
	pool, store := newTestPool(t, fetcher, &fakeTranscoder{}, true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)
	defer pool.Stop()

	id, err := pool.Enqueue(ctx, models.JobPayload{
		Kind:   consts.KindDownload,
		Query:  "artist - song",
		Source: consts.SourceMonitor,
	})
	require.NoError(t, err)

	j := waitForStatus(t, store.JobStore(), id, models.JobFailed)
	require.Contains(t, j.Error, "official")

	events, err := store.ActivityStore().Recent(ctx, 10)
	require.NoError(t, err)
	require.NotEmpty(t, events)
	require.Equal(t, consts.EventDownloadRejected, events[0].Type)
}

// TestPoolPrecheckPassesOfficial checks that a passing preflight chains into
// the real download and completes.
func TestPoolPrecheckPassesOfficial(t *testing.T) {
	fetcher := &fakeFetcher{meta: models.FetchMetadata{Title: "Artist - Song (Official Video)", Uploader: "ArtistVEVO"}}
	pool, store := newTestPool(t, fetcher, &fakeTranscoder{}, true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)
	defer pool.Stop()

	id, err := pool.Enqueue(ctx, models.JobPayload{
		Kind:    consts.KindDownload,
		Query:   "artist - song",
		Source:  consts.SourceMonitor,
		TrackID: 3,
	})
	require.NoError(t, err)

	j := waitForStatus(t, store.JobStore(), id, models.JobCompleted)
	require.True(t, j.Prechecked)

	asset, found, err := store.AssetStore().LatestCompletedAsset(ctx, 3)
	require.NoError(t, err)
	require.True(t, found)
	require.NotEmpty(t, asset.FilePath)
}

// TestPoolCancelledJobStaysCancelled cancels a queued job before starting
// the pool and checks the worker leaves it untouched.
func TestPoolCancelledJobStaysCancelled(t *testing.T) {
	pool, store := newTestPool(t, &fakeFetcher{}, &fakeTranscoder{}, false)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	id, err := pool.Enqueue(ctx, models.JobPayload{
		Kind:   consts.KindDownload,
		Query:  "artist - song",
		Source: consts.SourceManual,
	})
	require.NoError(t, err)

	applied, err := store.JobStore().UpdateJobIfNotCancelled(ctx, id, models.JobUpdate{
		Status: models.StatusPtr(models.JobCancelled),
	})
	require.NoError(t, err)
	require.True(t, applied)

	pool.Start(ctx)
	defer pool.Stop()

	// Give the worker a chance to pick the payload up and drop it.
	time.Sleep(200 * time.Millisecond)

	j, found, err := store.JobStore().GetJob(ctx, id)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, models.JobCancelled, j.Status)
}
