package queue

import (
	"context"
	"time"

	"grabarr/internal/domain/consts"
	"grabarr/internal/logging"
	"grabarr/internal/models"
)

// runRemux re-normalizes an existing asset's container and rebuilds its
// segment set. Remux jobs are internal maintenance, so status writes are
// unconditional.
func (p *Pool) runRemux(ctx context.Context, pl models.JobPayload) {
	src := pl.FilePath
	var assetID = pl.AssetID
	if src == "" && assetID != 0 {
		asset, found, err := p.assets().GetAsset(ctx, assetID)
		if err != nil {
			p.failRemux(ctx, pl.JobID, "asset lookup failed: "+err.Error())
			return
		}
		if !found {
			p.failRemux(ctx, pl.JobID, "asset does not exist")
			return
		}
		src = asset.FilePath
	}
	if src == "" && pl.TrackID != 0 {
		asset, found, err := p.assets().LatestCompletedAsset(ctx, pl.TrackID)
		if err != nil {
			p.failRemux(ctx, pl.JobID, "asset lookup failed: "+err.Error())
			return
		}
		if !found {
			p.failRemux(ctx, pl.JobID, "no completed asset for track")
			return
		}
		src = asset.FilePath
		assetID = asset.ID
	}
	if src == "" {
		p.failRemux(ctx, pl.JobID, "remux job has no source file")
		return
	}

	if err := p.jobs().UpdateJob(ctx, pl.JobID, models.JobUpdate{
		Status:    models.StatusPtr(models.JobDownloading),
		Stage:     models.StrPtr(consts.StageProcessing),
		StartedAt: models.TimePtr(time.Now()),
	}); err != nil {
		logging.E("Failed to start remux job %q: %v", pl.JobID, err)
		return
	}
	p.appendEvent(ctx, consts.EventRemuxStarted, "Remux started", map[string]any{
		"job_id":    pl.JobID,
		"track_id":  pl.TrackID,
		"file_path": src,
	})

	out, err := p.transcoder.RemuxToMP4(ctx, src)
	if err != nil {
		p.failRemux(ctx, pl.JobID, err.Error())
		return
	}

	if assetID != 0 && out != src {
		if err := p.assets().UpdateAssetPath(ctx, assetID, out); err != nil {
			p.failRemux(ctx, pl.JobID, "asset path update failed: "+err.Error())
			return
		}
	}
	if pl.TrackID != 0 {
		p.segmentBestEffort(ctx, pl.TrackID, out)
	}

	if err := p.jobs().UpdateJob(ctx, pl.JobID, models.JobUpdate{
		Status:      models.StatusPtr(models.JobCompleted),
		ClearStage:  true,
		ProgressPct: models.FloatPtr(100),
		FinishedAt:  models.TimePtr(time.Now()),
	}); err != nil {
		logging.E("Failed to complete remux job %q: %v", pl.JobID, err)
		return
	}
	p.appendEvent(ctx, consts.EventRemuxCompleted, "Remux completed", map[string]any{
		"job_id":    pl.JobID,
		"track_id":  pl.TrackID,
		"file_path": out,
	})
	logging.S("Remux job %q completed: %s", pl.JobID, out)
}

// runSegment rebuilds the HLS segment set for the track's current asset.
func (p *Pool) runSegment(ctx context.Context, pl models.JobPayload) {
	if pl.TrackID == 0 {
		p.failRemux(ctx, pl.JobID, "segment job has no track")
		return
	}
	src := pl.FilePath
	if src == "" {
		asset, found, err := p.assets().LatestCompletedAsset(ctx, pl.TrackID)
		if err != nil {
			p.failRemux(ctx, pl.JobID, "asset lookup failed: "+err.Error())
			return
		}
		if !found {
			p.failRemux(ctx, pl.JobID, "no completed asset for track")
			return
		}
		src = asset.FilePath
	}

	if err := p.jobs().UpdateJob(ctx, pl.JobID, models.JobUpdate{
		Status:    models.StatusPtr(models.JobDownloading),
		Stage:     models.StrPtr(consts.StageFinalizing),
		StartedAt: models.TimePtr(time.Now()),
	}); err != nil {
		logging.E("Failed to start segment job %q: %v", pl.JobID, err)
		return
	}

	if err := p.transcoder.Segment(ctx, p.media.HLSDir(pl.TrackID), src); err != nil {
		p.appendEvent(ctx, consts.EventSegmentFailed, "HLS segmenting failed", map[string]any{
			"track_id":  pl.TrackID,
			"file_path": src,
			"error":     err.Error(),
		})
		p.failRemux(ctx, pl.JobID, err.Error())
		return
	}

	if err := p.jobs().UpdateJob(ctx, pl.JobID, models.JobUpdate{
		Status:      models.StatusPtr(models.JobCompleted),
		ClearStage:  true,
		ProgressPct: models.FloatPtr(100),
		FinishedAt:  models.TimePtr(time.Now()),
	}); err != nil {
		logging.E("Failed to complete segment job %q: %v", pl.JobID, err)
	}
}

func (p *Pool) failRemux(ctx context.Context, jobID, reason string) {
	if err := p.jobs().UpdateJob(ctx, jobID, models.JobUpdate{
		Status:     models.StatusPtr(models.JobFailed),
		ClearStage: true,
		Error:      models.StrPtr(reason),
		FinishedAt: models.TimePtr(time.Now()),
	}); err != nil {
		logging.E("Failed to mark job %q failed: %v", jobID, err)
		return
	}
	logging.E("Maintenance job %q failed: %s", jobID, reason)
}
