package fetch

import (
	"regexp"
	"strconv"
	"strings"

	"grabarr/internal/domain/consts"
	"grabarr/internal/models"
)

var (
	percentRegex = regexp.MustCompile(`([0-9]+(?:\.[0-9]+)?)%`)

	// Post-processing phases emitted by the tool between download and
	// finalization (merge/remux/encode/extract).
	processingMarkers = []string{
		"[Merger]",
		"[VideoRemuxer]",
		"[VideoConvertor]",
		"[ExtractAudio]",
		"[EmbedThumbnail]",
		"postprocess",
	}

	finalizingMarkers = []string{
		"Deleting original file",
		"[Fixup",
		"fixup",
		"finalize",
	}
)

// ClassifyLine classifies one line of tool output into a progress event.
// Unparseable lines return ok=false and are skipped, never fatal.
func ClassifyLine(line string) (ev models.ProgressEvent, ok bool) {
	l := strings.TrimSpace(line)
	if l == "" {
		return models.ProgressEvent{}, false
	}

	for _, marker := range finalizingMarkers {
		if strings.Contains(l, marker) {
			// Finalization carries no percentage.
			return models.ProgressEvent{Stage: consts.StageFinalizing}, true
		}
	}

	for _, marker := range processingMarkers {
		if strings.Contains(l, marker) {
			ev := models.ProgressEvent{Stage: consts.StageProcessing}
			if pct, found := extractPercent(l); found {
				ev.Percent = pct
				ev.HasPercent = true
			}
			return ev, true
		}
	}

	if strings.HasPrefix(l, "[download]") || strings.HasPrefix(l, "download") {
		ev := models.ProgressEvent{Stage: consts.StageDownload}
		if pct, found := extractPercent(l); found {
			ev.Percent = pct
			ev.HasPercent = true
		}
		return ev, true
	}

	return models.ProgressEvent{}, false
}

// extractPercent pulls the first percentage out of a line.
func extractPercent(line string) (float64, bool) {
	m := percentRegex.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	pct, err := strconv.ParseFloat(m[1], 64)
	if err != nil || pct < 0 || pct > 100 {
		return 0, false
	}
	return pct, true
}

// ProgressFilter enforces per-stage monotonicity: a percentage passes only
// when it exceeds the last forwarded percentage for its stage. Baselines are
// tracked independently per stage, so entering a new stage starts from a
// fresh baseline regardless of where the previous stage left off.
type ProgressFilter struct {
	stage    string
	lastPcts map[string]float64
}

// NewProgressFilter returns a filter with no baselines.
func NewProgressFilter() *ProgressFilter {
	return &ProgressFilter{lastPcts: make(map[string]float64)}
}

// Forward reports whether the event should be forwarded to the caller, and
// records it as the new baseline when it should.
func (f *ProgressFilter) Forward(ev models.ProgressEvent) bool {
	stageChanged := ev.Stage != f.stage
	f.stage = ev.Stage

	if !ev.HasPercent {
		// Percent-free lines only matter when they announce a stage change.
		return stageChanged
	}

	if last, seen := f.lastPcts[ev.Stage]; seen && ev.Percent <= last {
		return stageChanged
	}
	f.lastPcts[ev.Stage] = ev.Percent
	return true
}
