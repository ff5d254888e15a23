package fetch

import (
	"testing"

	"grabarr/internal/domain/consts"
	"grabarr/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestClassifyLine checks tool output line classification.
func TestClassifyLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		line       string
		wantOK     bool
		wantStage  string
		wantPct    float64
		wantHasPct bool
	}{
		{
			name:       "download with percent",
			line:       "[download]  45.3% of 102.40MiB at 5.2MiB/s ETA 00:12",
			wantOK:     true,
			wantStage:  consts.StageDownload,
			wantPct:    45.3,
			wantHasPct: true,
		},
		{
			name:      "download without percent",
			line:      "[download] Destination: media/downloads/song.webm",
			wantOK:    true,
			wantStage: consts.StageDownload,
		},
		{
			name:      "merger line",
			line:      `[Merger] Merging formats into "media/downloads/song.mp4"`,
			wantOK:    true,
			wantStage: consts.StageProcessing,
		},
		{
			name:      "finalizing line",
			line:      "Deleting original file media/downloads/song.f248.webm (pass -k to keep)",
			wantOK:    true,
			wantStage: consts.StageFinalizing,
		},
		{
			name:   "noise line",
			line:   "[youtube] dQw4w9WgXcQ: Downloading webpage",
			wantOK: false,
		},
		{
			name:   "blank line",
			line:   "   ",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ev, ok := ClassifyLine(tt.line)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantStage, ev.Stage)
			assert.Equal(t, tt.wantHasPct, ev.HasPercent)
			if tt.wantHasPct {
				assert.InDelta(t, tt.wantPct, ev.Percent, 0.001)
			}
		})
	}
}

// TestProgressFilterMonotonicity feeds an out-of-order fragment sequence
// and checks only strictly increasing percentages pass per stage.
func TestProgressFilterMonotonicity(t *testing.T) {
	t.Parallel()

	f := NewProgressFilter()

	seq := []struct {
		ev   models.ProgressEvent
		want bool
	}{
		{models.ProgressEvent{Stage: consts.StageDownload, Percent: 10, HasPercent: true}, true},
		{models.ProgressEvent{Stage: consts.StageDownload, Percent: 55, HasPercent: true}, true},
		{models.ProgressEvent{Stage: consts.StageDownload, Percent: 40, HasPercent: true}, false}, // fragment restart
		{models.ProgressEvent{Stage: consts.StageDownload, Percent: 55, HasPercent: true}, false}, // equal is not progress
		{models.ProgressEvent{Stage: consts.StageDownload, Percent: 90, HasPercent: true}, true},
	}
	for i, s := range seq {
		assert.Equal(t, s.want, f.Forward(s.ev), "event %d", i)
	}
}

// TestProgressFilterStageBaselines checks that each stage keeps its own
// baseline: processing starts fresh even after download hit 90%.
func TestProgressFilterStageBaselines(t *testing.T) {
	t.Parallel()

	f := NewProgressFilter()

	require.True(t, f.Forward(models.ProgressEvent{Stage: consts.StageDownload, Percent: 90, HasPercent: true}))

	// Stage change with a low percent still passes.
	require.True(t, f.Forward(models.ProgressEvent{Stage: consts.StageProcessing, Percent: 5, HasPercent: true}))
	require.True(t, f.Forward(models.ProgressEvent{Stage: consts.StageProcessing, Percent: 50, HasPercent: true}))
	require.False(t, f.Forward(models.ProgressEvent{Stage: consts.StageProcessing, Percent: 20, HasPercent: true}))

	// Percent-free events only pass when they announce a stage change.
	require.True(t, f.Forward(models.ProgressEvent{Stage: consts.StageFinalizing}))
	require.False(t, f.Forward(models.ProgressEvent{Stage: consts.StageFinalizing}))
}
