package protocol

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"sprout/entities"
	"sprout/pkg/stage"
)

// ObserveAfterDays is the default stage-start offset for the per-stage
// observation check when the category book supplies none.
const ObserveAfterDays = 2

// Diff is a pure reconciliation result: tasks to create and pending task
// ids now stale. The coordinator applies it; Synthesize never writes.
type Diff struct {
	ToCreate    []entities.ScheduledTask
	ToSupersede []string
}

func (d Diff) Empty() bool { return len(d.ToCreate) == 0 && len(d.ToSupersede) == 0 }

// Synthesize converts the variety's protocol entries at the plant's current
// stage into concrete due-dated tasks, reconciled against the tasks already
// persisted for the plant (pending and completed).
//
// Rules, per care kind:
//   - no same-key task exists → create one (due = stage start + entry lead);
//   - a pending same-key task exists → skip, unless the entry is dynamic and
//     the recomputed due date moved, in which case supersede and recreate;
//   - a completed same-key task exists → never recreate;
//   - pending tasks of the same type at an earlier timeline stage are
//     superseded — the plant has progressed past them.
//
// Repeated invocation with its own output folded into existing is a no-op,
// which is what lets the coordinator run on every feed delivery without
// duplicate writes.
func Synthesize(p *entities.Plant, v *entities.Variety, cur string, now time.Time, existing []entities.ScheduledTask) Diff {
	var d Diff
	if p == nil || v == nil || cur == "" {
		return d
	}
	tl := stage.Timeline(v.Timeline)
	curIdx := tl.Index(cur)
	if curIdx < 0 {
		return d
	}
	start, ok := stage.StartDate(p.PlantedDate, tl, cur, p.Confirmed)
	if !ok {
		return d
	}

	pendingByKey := map[entities.TaskKey]*entities.ScheduledTask{}
	completedKeys := map[entities.TaskKey]bool{}
	for i := range existing {
		t := &existing[i]
		switch t.Status {
		case entities.StatusPending:
			pendingByKey[t.Key()] = t
		case entities.StatusCompleted:
			completedKeys[t.Key()] = true
		}
	}

	// Stale pending tasks: same plant, any type, sourced from an earlier
	// stage (or one missing from the current timeline).
	for _, t := range existing {
		if t.Status != entities.StatusPending {
			continue
		}
		si := tl.Index(t.Source.Stage)
		if si < 0 || si < curIdx {
			d.ToSupersede = append(d.ToSupersede, t.TaskID)
		}
	}

	for _, cand := range candidates(p, v, cur, start) {
		key := cand.Key()
		if completedKeys[key] {
			continue
		}
		if prev, ok := pendingByKey[key]; ok {
			if cand.Source.Dynamic && !sameDay(prev.DueDate, cand.DueDate) {
				// stage boundary moved under a dynamic entry: replace
				d.ToSupersede = append(d.ToSupersede, prev.TaskID)
			} else {
				continue
			}
		}
		d.ToCreate = append(d.ToCreate, cand)
	}
	return d
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// candidates builds the tasks the current stage implies, before any dedup.
func candidates(p *entities.Plant, v *entities.Variety, cur string, start time.Time) []entities.ScheduledTask {
	var out []entities.ScheduledTask

	if e, ok := Resolve(v, cur, Watering); ok {
		out = append(out, newTask(p, cur, entities.TaskWater,
			fmt.Sprintf("Water %s", plantLabel(p, v)),
			entities.TaskDetail{Kind: entities.TaskWater, Water: &entities.WaterDetail{
				Amount: e.Watering.Amount, Unit: e.Watering.Unit,
			}},
			start.AddDate(0, 0, e.StartDays()), e.StartDays(), e.Dynamic()))
	}
	if e, ok := Resolve(v, cur, Fertilizing); ok {
		out = append(out, newTask(p, cur, entities.TaskFertilize,
			fmt.Sprintf("Fertilize %s", plantLabel(p, v)),
			entities.TaskDetail{Kind: entities.TaskFertilize, Fertilize: &entities.FertilizeDetail{
				Products: e.Fertilizing.Products,
			}},
			start.AddDate(0, 0, e.StartDays()), e.StartDays(), e.Dynamic()))
	}

	// One observation check per stage window.
	out = append(out, newTask(p, cur, entities.TaskObserve,
		fmt.Sprintf("Check on %s", plantLabel(p, v)),
		entities.TaskDetail{Kind: entities.TaskObserve, Observe: &entities.ObserveDetail{
			Checklist: []string{"new growth", "pests", "soil moisture"},
		}},
		start.AddDate(0, 0, ObserveAfterDays), ObserveAfterDays, true))

	return out
}

func newTask(p *entities.Plant, cur, typ, title string, detail entities.TaskDetail, due time.Time, startDays int, dynamic bool) entities.ScheduledTask {
	return entities.ScheduledTask{
		TaskID:  uuid.NewString(),
		PlantID: p.PlantID,
		UserID:  p.UserID,
		Type:    typ,
		Title:   title,
		Detail:  detail,
		DueDate: due,
		Status:  entities.StatusPending,
		Source: entities.ProtocolSource{
			Stage:             cur,
			OriginalStartDays: startDays,
			Dynamic:           dynamic,
			PlantCount:        p.Count,
		},
	}
}

func plantLabel(p *entities.Plant, v *entities.Variety) string {
	if p.Name != "" {
		return p.Name
	}
	return v.Name
}
