package stage

import (
	"time"

	"sprout/entities"
)

// Timeline is a variety's ordered stage thresholds (cumulative days from
// planting). All functions here are pure; callers may cache but never need to.
type Timeline []entities.StageThreshold

// Index returns the position of stage in the timeline, or -1.
func (tl Timeline) Index(stage string) int {
	for i, th := range tl {
		if th.Stage == stage {
			return i
		}
	}
	return -1
}

// elapsedDays truncates toward zero, matching calendar-day counting.
func elapsedDays(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24.0)
}

// Current computes the plant's growth stage at now.
//
// Without a confirmation, it selects the last stage whose threshold is
// <= elapsed days from planting; a boundary day belongs to the later stage,
// and anything before the first threshold (including future plantings)
// returns the earliest stage.
//
// With a confirmation, the walk starts at the confirmed stage's index and
// advances by threshold deltas measured from the confirmed stage's own
// threshold, with ConfirmedAt as the time origin, so a manual correction is
// never silently overridden by day-counting from the planting date.
//
// Non-increasing thresholds (user-authored varieties) clamp: the walk stops
// at the last valid increase instead of misordering stages.
func Current(planted time.Time, tl Timeline, now time.Time, confirmed *entities.StageConfirmation) string {
	if len(tl) == 0 {
		return ""
	}
	if confirmed != nil {
		if idx := tl.Index(confirmed.Stage); idx >= 0 {
			return walkFrom(tl, idx, elapsedDays(confirmed.ConfirmedAt, now))
		}
		// confirmed stage not in this timeline: fall back to planted-date math
	}
	return walkFrom(tl, 0, elapsedDays(planted, now)-tl[0].StartDays)
}

// walkFrom advances from tl[start] while elapsed covers the offset to the
// next threshold, measured from tl[start]'s threshold.
func walkFrom(tl Timeline, start, elapsed int) string {
	i := start
	for i+1 < len(tl) {
		next := tl[i+1]
		if next.StartDays <= tl[i].StartDays {
			break // malformed timeline, stop advancing
		}
		if elapsed < next.StartDays-tl[start].StartDays {
			break
		}
		i++
	}
	return tl[i].Stage
}

// StartDate estimates when the plant entered the given stage. With a
// confirmation at or before the stage, the estimate is anchored at
// ConfirmedAt plus the threshold delta from the confirmed stage; otherwise
// it is planting date plus the stage's threshold. This is the live stage
// boundary that dynamic protocol entries track.
func StartDate(planted time.Time, tl Timeline, target string, confirmed *entities.StageConfirmation) (time.Time, bool) {
	ti := tl.Index(target)
	if ti < 0 {
		return time.Time{}, false
	}
	if confirmed != nil {
		if ci := tl.Index(confirmed.Stage); ci >= 0 && ci <= ti {
			delta := tl[ti].StartDays - tl[ci].StartDays
			return confirmed.ConfirmedAt.AddDate(0, 0, delta), true
		}
	}
	return planted.AddDate(0, 0, tl[ti].StartDays), true
}
