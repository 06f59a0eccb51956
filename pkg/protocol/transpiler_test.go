package protocol

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

func testPlant(planted time.Time) *entities.Plant {
	return &entities.Plant{
		PlantID: 7, UserID: "u1", VarietyID: 1, Name: "Window Basil",
		Count: 3, PlantedDate: planted, Active: true,
	}
}

func byType(ts []entities.ScheduledTask, typ string) *entities.ScheduledTask {
	for i := range ts {
		if ts[i].Type == typ {
			return &ts[i]
		}
	}
	return nil
}

func TestSynthesizeCreatesStageTasks(t *testing.T) {
	v := basilVariety()
	planted := day("2026-03-01")
	p := testPlant(planted)
	now := planted.AddDate(0, 0, 25) // vegetative (starts day 21)

	d := Synthesize(p, v, "vegetative", now, nil)
	assert.Empty(t, d.ToSupersede)
	require.Len(t, d.ToCreate, 3) // water, fertilize, observe

	vegStart := planted.AddDate(0, 0, 21)

	w := byType(d.ToCreate, entities.TaskWater)
	require.NotNil(t, w)
	assert.Equal(t, vegStart.AddDate(0, 0, 1), w.DueDate)
	assert.Equal(t, entities.TaskWater, w.Detail.Kind)
	assert.Equal(t, 0.5, *w.Detail.Water.Amount)
	assert.Equal(t, "vegetative", w.Source.Stage)
	assert.Equal(t, 3, w.Source.PlantCount)
	assert.Equal(t, entities.StatusPending, w.Status)
	assert.NotEmpty(t, w.TaskID)

	f := byType(d.ToCreate, entities.TaskFertilize)
	require.NotNil(t, f)
	assert.Equal(t, vegStart.AddDate(0, 0, 3), f.DueDate)
	require.Len(t, f.Detail.Fertilize.Products, 1)
	assert.Equal(t, "Neptune's Harvest Fish + Seaweed", f.Detail.Fertilize.Products[0].Product)

	o := byType(d.ToCreate, entities.TaskObserve)
	require.NotNil(t, o)
	assert.Equal(t, vegStart.AddDate(0, 0, ObserveAfterDays), o.DueDate)
}

func TestSynthesizeIdempotent(t *testing.T) {
	v := basilVariety()
	p := testPlant(day("2026-03-01"))
	now := day("2026-03-26")

	first := Synthesize(p, v, "vegetative", now, nil)
	require.NotEmpty(t, first.ToCreate)

	second := Synthesize(p, v, "vegetative", now, first.ToCreate)
	assert.Empty(t, second.ToCreate)
	assert.Empty(t, second.ToSupersede)
}

func TestSynthesizeDedupKeyUnique(t *testing.T) {
	v := basilVariety()
	p := testPlant(day("2026-03-01"))

	d := Synthesize(p, v, "vegetative", day("2026-03-26"), nil)
	seen := map[entities.TaskKey]bool{}
	for _, task := range d.ToCreate {
		key := task.Key()
		assert.False(t, seen[key], "duplicate key %+v", key)
		seen[key] = true
	}
}

func TestSynthesizeSupersedesEarlierStage(t *testing.T) {
	v := basilVariety()
	planted := day("2026-03-01")
	p := testPlant(planted)

	// tasks generated while the plant was vegetative
	old := Synthesize(p, v, "vegetative", planted.AddDate(0, 0, 25), nil)
	require.NotEmpty(t, old.ToCreate)

	// the plant has since advanced to flowering
	d := Synthesize(p, v, "flowering", planted.AddDate(0, 0, 62), old.ToCreate)

	assert.Len(t, d.ToSupersede, len(old.ToCreate), "all stale vegetative tasks superseded")
	// flowering has no usable watering/fertilizing protocol in this
	// variety, so only the observation check is created
	require.Len(t, d.ToCreate, 1)
	assert.Equal(t, entities.TaskObserve, d.ToCreate[0].Type)
	assert.Equal(t, "flowering", d.ToCreate[0].Source.Stage)
}

func TestSynthesizeNeverResurrectsCompleted(t *testing.T) {
	v := basilVariety()
	planted := day("2026-03-01")
	p := testPlant(planted)
	now := planted.AddDate(0, 0, 25)

	first := Synthesize(p, v, "vegetative", now, nil)
	done := make([]entities.ScheduledTask, len(first.ToCreate))
	copy(done, first.ToCreate)
	for i := range done {
		done[i].Status = entities.StatusCompleted
	}

	d := Synthesize(p, v, "vegetative", now, done)
	assert.Empty(t, d.ToCreate, "completed keys must not regenerate")
	assert.Empty(t, d.ToSupersede)
}

func TestSynthesizeDynamicDueDateTracksStageBoundary(t *testing.T) {
	v := basilVariety()
	v.Protocols.Watering["vegetative"] = entities.WateringEntry{
		Amount: fl(0.5), Unit: "gal", StartDays: 1, Dynamic: true,
	}
	planted := day("2026-03-01")
	p := testPlant(planted)
	now := planted.AddDate(0, 0, 25)

	first := Synthesize(p, v, "vegetative", now, nil)
	w := byType(first.ToCreate, entities.TaskWater)
	require.NotNil(t, w)
	assert.Equal(t, planted.AddDate(0, 0, 22), w.DueDate)

	// A later confirmation moves the vegetative boundary; the dynamic
	// entry's pending task is replaced at the new due date.
	p.Confirmed = &entities.StageConfirmation{Stage: "vegetative", ConfirmedAt: planted.AddDate(0, 0, 24)}
	second := Synthesize(p, v, "vegetative", now, first.ToCreate)

	assert.Contains(t, second.ToSupersede, w.TaskID)
	nw := byType(second.ToCreate, entities.TaskWater)
	require.NotNil(t, nw)
	assert.Equal(t, planted.AddDate(0, 0, 25), nw.DueDate)
}

func TestSynthesizeFixedDueDateStaysFrozen(t *testing.T) {
	v := basilVariety()
	planted := day("2026-03-01")
	p := testPlant(planted)
	now := planted.AddDate(0, 0, 25)

	first := Synthesize(p, v, "vegetative", now, nil)
	w := byType(first.ToCreate, entities.TaskWater)
	require.NotNil(t, w)
	require.False(t, w.Source.Dynamic)

	// Even if the boundary estimate moves, a fixed entry keeps the task
	// generated first.
	p.Confirmed = &entities.StageConfirmation{Stage: "vegetative", ConfirmedAt: planted.AddDate(0, 0, 24)}
	second := Synthesize(p, v, "vegetative", now, first.ToCreate)
	assert.NotContains(t, second.ToSupersede, w.TaskID)
	assert.Nil(t, byType(second.ToCreate, entities.TaskWater))
}

func TestSynthesizeUnknownStageOrNilInputs(t *testing.T) {
	v := basilVariety()
	p := testPlant(day("2026-03-01"))

	assert.True(t, Synthesize(p, v, "bolting", day("2026-04-01"), nil).Empty())
	assert.True(t, Synthesize(nil, v, "vegetative", day("2026-04-01"), nil).Empty())
	assert.True(t, Synthesize(p, nil, "vegetative", day("2026-04-01"), nil).Empty())
	assert.True(t, Synthesize(p, v, "", day("2026-04-01"), nil).Empty())
}
