package stage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sprout/entities"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

var tomatoTimeline = Timeline{
	{Stage: "germination", StartDays: 0},
	{Stage: "seedling", StartDays: 14},
	{Stage: "vegetative", StartDays: 30},
	{Stage: "flowering", StartDays: 60},
	{Stage: "ongoing-production", StartDays: 91},
}

func TestCurrentStageFromPlantedDate(t *testing.T) {
	planted := day("2026-01-01")
	cases := []struct {
		name string
		now  time.Time
		want string
	}{
		{"day zero", day("2026-01-01"), "germination"},
		{"before first boundary", day("2026-01-14"), "germination"},
		{"seedling boundary belongs to seedling", day("2026-01-15"), "seedling"},
		{"mid vegetative", day("2026-02-15"), "vegetative"},
		{"production boundary at day 91", planted.AddDate(0, 0, 91), "ongoing-production"},
		{"well past the end", day("2027-06-01"), "ongoing-production"},
		{"future planting", day("2025-12-01"), "germination"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Current(planted, tomatoTimeline, tc.now, nil)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCurrentStageMonotonic(t *testing.T) {
	planted := day("2026-01-01")
	prev := -1
	for d := -5; d <= 120; d++ {
		got := Current(planted, tomatoTimeline, planted.AddDate(0, 0, d), nil)
		idx := tomatoTimeline.Index(got)
		require.GreaterOrEqual(t, idx, 0)
		require.GreaterOrEqual(t, idx, prev, "stage regressed at day %d", d)
		prev = idx
	}
}

func TestConfirmedStagePrecedence(t *testing.T) {
	planted := day("2026-01-01")
	// Plain day-counting at day 20 says seedling, but the user confirmed
	// flowering on day 18.
	conf := &entities.StageConfirmation{Stage: "flowering", ConfirmedAt: planted.AddDate(0, 0, 18)}

	got := Current(planted, tomatoTimeline, planted.AddDate(0, 0, 20), conf)
	assert.Equal(t, "flowering", got)

	// The override anchors further progression at ConfirmedAt: flowering →
	// ongoing-production is a 31-day delta in this timeline.
	got = Current(planted, tomatoTimeline, planted.AddDate(0, 0, 18+30), conf)
	assert.Equal(t, "flowering", got)
	got = Current(planted, tomatoTimeline, planted.AddDate(0, 0, 18+31), conf)
	assert.Equal(t, "ongoing-production", got)
}

func TestConfirmedStageNeverReportsEarlier(t *testing.T) {
	planted := day("2026-01-01")
	conf := &entities.StageConfirmation{Stage: "vegetative", ConfirmedAt: planted.AddDate(0, 0, 10)}
	ci := tomatoTimeline.Index("vegetative")
	for d := 10; d <= 120; d++ {
		got := Current(planted, tomatoTimeline, planted.AddDate(0, 0, d), conf)
		assert.GreaterOrEqual(t, tomatoTimeline.Index(got), ci, "day %d", d)
	}
}

func TestConfirmedStageUnknownFallsBack(t *testing.T) {
	planted := day("2026-01-01")
	conf := &entities.StageConfirmation{Stage: "bolting", ConfirmedAt: planted.AddDate(0, 0, 10)}
	got := Current(planted, tomatoTimeline, planted.AddDate(0, 0, 20), conf)
	assert.Equal(t, "seedling", got)
}

func TestMalformedTimelineClamps(t *testing.T) {
	bad := Timeline{
		{Stage: "germination", StartDays: 0},
		{Stage: "seedling", StartDays: 14},
		{Stage: "vegetative", StartDays: 14}, // not increasing
		{Stage: "flowering", StartDays: 60},
	}
	// The walk stops at the last valid increase and never reaches the
	// stages behind the bad threshold.
	got := Current(day("2026-01-01"), bad, day("2026-12-01"), nil)
	assert.Equal(t, "seedling", got)
}

func TestEmptyTimeline(t *testing.T) {
	assert.Equal(t, "", Current(day("2026-01-01"), nil, day("2026-02-01"), nil))
}

func TestStartDate(t *testing.T) {
	planted := day("2026-01-01")

	got, ok := StartDate(planted, tomatoTimeline, "flowering", nil)
	require.True(t, ok)
	assert.Equal(t, planted.AddDate(0, 0, 60), got)

	// Confirmation re-anchors stages at or after the confirmed one.
	conf := &entities.StageConfirmation{Stage: "vegetative", ConfirmedAt: day("2026-02-20")}
	got, ok = StartDate(planted, tomatoTimeline, "flowering", conf)
	require.True(t, ok)
	assert.Equal(t, day("2026-02-20").AddDate(0, 0, 30), got)

	got, ok = StartDate(planted, tomatoTimeline, "vegetative", conf)
	require.True(t, ok)
	assert.Equal(t, day("2026-02-20"), got)

	// Stages before the confirmed one keep the planted-date estimate.
	got, ok = StartDate(planted, tomatoTimeline, "seedling", conf)
	require.True(t, ok)
	assert.Equal(t, planted.AddDate(0, 0, 14), got)

	_, ok = StartDate(planted, tomatoTimeline, "bolting", nil)
	assert.False(t, ok)
}
