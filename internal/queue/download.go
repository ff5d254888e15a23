package queue

import (
	"context"
	"time"

	"grabarr/internal/domain/consts"
	"grabarr/internal/fetch"
	"grabarr/internal/logging"
	"grabarr/internal/models"
)

// runDownload executes a download job: re-checks cancellation, streams the
// fetch with live progress writes, normalizes the container, records the
// asset and regenerates the segment set.
func (p *Pool) runDownload(ctx context.Context, pl models.JobPayload) {
	j, found, err := p.jobs().GetJob(ctx, pl.JobID)
	if err != nil {
		logging.E("Failed to read job %q before download: %v", pl.JobID, err)
		return
	}
	if !found {
		logging.E("Download job %q no longer exists", pl.JobID)
		return
	}
	// Abort with no side effects when cancelled before the heavy phase.
	if j.Status == models.JobCancelled {
		logging.D(1, "Job %q was cancelled before download began", pl.JobID)
		return
	}

	applied, err := p.jobs().UpdateJobIfNotCancelled(ctx, pl.JobID, models.JobUpdate{
		Status:      models.StatusPtr(models.JobDownloading),
		Stage:       models.StrPtr(consts.StageDownload),
		ProgressPct: models.FloatPtr(0),
		StartedAt:   models.TimePtr(time.Now()),
	})
	if err != nil {
		logging.E("Failed to transition job %q to downloading: %v", pl.JobID, err)
		return
	}
	if !applied {
		logging.D(1, "Job %q could not enter downloading, skipping", pl.JobID)
		return
	}

	events := make(chan models.ProgressEvent, 32)
	done := p.consumeProgress(ctx, pl.JobID, events)

	res, err := p.fetcher.Download(ctx, fetch.Request{
		Query:     j.Query,
		Quality:   j.Quality,
		OutputDir: p.media.DownloadDir(),
	}, events)
	<-done

	if err != nil {
		p.failDownload(ctx, pl, err.Error())
		return
	}

	// Normalize the container for streaming before the asset is recorded.
	finalPath, err := p.transcoder.RemuxToMP4(ctx, res.FilePath)
	if err != nil {
		p.failDownload(ctx, pl, err.Error())
		return
	}

	var assetID int64
	if pl.TrackID != 0 {
		assetID, err = p.assets().RecordMediaAsset(ctx, pl.TrackID, finalPath)
		if err != nil {
			p.failDownload(ctx, pl, err.Error())
			return
		}
		p.segmentBestEffort(ctx, pl.TrackID, finalPath)
		p.saveArtwork(ctx, pl, finalPath)
	}

	applied, err = p.jobs().UpdateJobIfNotCancelled(ctx, pl.JobID, models.JobUpdate{
		Status:      models.StatusPtr(models.JobCompleted),
		ClearStage:  true,
		ProgressPct: models.FloatPtr(100),
		FinishedAt:  models.TimePtr(time.Now()),
	})
	if err != nil {
		logging.E("Failed to complete job %q: %v", pl.JobID, err)
		return
	}
	if !applied {
		// Cancelled while the tool ran; the file stays but the job does not
		// chain further work.
		logging.D(1, "Job %q was cancelled during download, completion write dropped", pl.JobID)
		return
	}

	p.appendEvent(ctx, consts.EventDownloadCompleted, "Download completed: "+j.Query, map[string]any{
		"job_id":    pl.JobID,
		"query":     j.Query,
		"source":    j.Source,
		"file_path": finalPath,
		"track_id":  pl.TrackID,
		"asset_id":  assetID,
	})
	logging.S("Download job %q completed: %s", pl.JobID, finalPath)
}

// consumeProgress drains progress events in a single receive loop,
// persisting stage and percent only while the job is still downloading.
// Late events after cancellation or completion become store-level no-ops.
func (p *Pool) consumeProgress(ctx context.Context, jobID string, events <-chan models.ProgressEvent) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range events {
			u := models.JobUpdate{
				Stage:       models.StrPtr(ev.Stage),
				WhileStatus: models.StatusPtr(models.JobDownloading),
			}
			if ev.HasPercent {
				u.ProgressPct = models.FloatPtr(ev.Percent)
			}
			if _, err := p.jobs().UpdateJobIfNotCancelled(ctx, jobID, u); err != nil {
				logging.E("Failed to persist progress for job %q: %v", jobID, err)
			}
		}
	}()
	return done
}

// failDownload marks a download job failed with the given reason.
func (p *Pool) failDownload(ctx context.Context, pl models.JobPayload, reason string) {
	applied, err := p.jobs().UpdateJobIfNotCancelled(ctx, pl.JobID, models.JobUpdate{
		Status:     models.StatusPtr(models.JobFailed),
		ClearStage: true,
		Error:      models.StrPtr(reason),
		FinishedAt: models.TimePtr(time.Now()),
	})
	if err != nil {
		logging.E("Failed to mark job %q failed: %v", pl.JobID, err)
		return
	}
	if !applied {
		return
	}

	p.appendEvent(ctx, consts.EventDownloadFailed, "Download failed: "+reason, map[string]any{
		"job_id": pl.JobID,
		"query":  pl.Query,
		"source": pl.Source,
	})
	logging.E("Download job %q failed: %s", pl.JobID, reason)
}

// saveArtwork fetches the track's cover image when the preflight resolved
// one. Artwork is cosmetic, failures only log.
func (p *Pool) saveArtwork(ctx context.Context, pl models.JobPayload, mediaPath string) {
	if p.art == nil || pl.Thumbnail == "" {
		return
	}
	if dest, err := p.art.Save(ctx, pl.Thumbnail, mediaPath); err != nil {
		logging.W("Artwork fetch for track %d failed: %v", pl.TrackID, err)
	} else {
		logging.D(1, "Saved artwork for track %d: %s", pl.TrackID, dest)
	}
}

// segmentBestEffort rebuilds the HLS segment set; failures are logged and
// recorded but never fail the owning job.
func (p *Pool) segmentBestEffort(ctx context.Context, trackID int64, filePath string) {
	if err := p.transcoder.Segment(ctx, p.media.HLSDir(trackID), filePath); err != nil {
		logging.E("Segmenting failed for track %d: %v", trackID, err)
		p.appendEvent(ctx, consts.EventSegmentFailed, "HLS segmenting failed", map[string]any{
			"track_id":  trackID,
			"file_path": filePath,
			"error":     err.Error(),
		})
	}
}

// appendEvent records an activity event, logging append failures.
func (p *Pool) appendEvent(ctx context.Context, eventType, message string, metadata map[string]any) {
	if err := p.activity().Append(ctx, eventType, message, metadata); err != nil {
		logging.E("Failed to append %q activity event: %v", eventType, err)
	}
}
