package queue

import (
	"context"
	"time"

	"grabarr/internal/domain/consts"
	"grabarr/internal/logging"
	"grabarr/internal/models"
)

// runCheck resolves metadata for an auto-sourced query and gates it on the
// official filter before the real download is enqueued.
func (p *Pool) runCheck(ctx context.Context, pl models.JobPayload) {
	j, found, err := p.jobs().GetJob(ctx, pl.JobID)
	if err != nil {
		logging.E("Failed to read job %q before check: %v", pl.JobID, err)
		return
	}
	if !found {
		logging.E("Check job %q no longer exists", pl.JobID)
		return
	}
	if j.Status == models.JobCancelled {
		logging.D(1, "Job %q was cancelled before check began", pl.JobID)
		return
	}

	applied, err := p.jobs().UpdateJobIfNotCancelled(ctx, pl.JobID, models.JobUpdate{
		Status:    models.StatusPtr(models.JobChecking),
		StartedAt: models.TimePtr(time.Now()),
	})
	if err != nil {
		logging.E("Failed to transition job %q to checking: %v", pl.JobID, err)
		return
	}
	if !applied {
		return
	}

	meta, err := p.fetcher.ResolveMetadata(ctx, j.Query)
	if err != nil {
		p.failDownload(ctx, pl, "metadata check failed: "+err.Error())
		return
	}

	if !IsOfficial(meta) {
		applied, err := p.jobs().UpdateJobIfNotCancelled(ctx, pl.JobID, models.JobUpdate{
			Status:     models.StatusPtr(models.JobFailed),
			Error:      models.StrPtr(RejectionReason(meta)),
			FinishedAt: models.TimePtr(time.Now()),
		})
		if err != nil {
			logging.E("Failed to mark job %q rejected: %v", pl.JobID, err)
			return
		}
		if !applied {
			return
		}
		p.appendEvent(ctx, consts.EventDownloadRejected, "Download rejected: "+RejectionReason(meta), map[string]any{
			"job_id":   pl.JobID,
			"query":    j.Query,
			"source":   j.Source,
			"title":    meta.Title,
			"uploader": meta.Uploader,
		})
		logging.W("Check job %q rejected %q (title=%q uploader=%q)", pl.JobID, j.Query, meta.Title, meta.Uploader)
		return
	}

	// The check passed, hand the same job back to the queue as a real
	// download that skips its precheck.
	applied, err = p.jobs().UpdateJobIfNotCancelled(ctx, pl.JobID, models.JobUpdate{
		Status:     models.StatusPtr(models.JobQueued),
		Prechecked: models.BoolPtr(true),
	})
	if err != nil {
		logging.E("Failed to requeue job %q after check: %v", pl.JobID, err)
		return
	}
	if !applied {
		return
	}

	pl.Kind = consts.KindDownload
	pl.Prechecked = true
	pl.Thumbnail = meta.ThumbnailURL
	if _, err := p.Enqueue(ctx, pl); err != nil {
		p.failDownload(ctx, pl, "requeue after check failed: "+err.Error())
	}
}
