package tasksync

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"sprout/entities"
	plantrepo "sprout/pkg/plant/repository"
	"sprout/pkg/protocol"
	"sprout/pkg/stage"
	taskrepo "sprout/pkg/task/repository"
	varietyrepo "sprout/pkg/variety/repository"
)

// ErrSuperseded marks a sync pass abandoned before its writes because a
// newer trigger for the same plant arrived (last-trigger-wins).
var ErrSuperseded = errors.New("sync pass superseded by a newer trigger")

// Coordinator keeps each plant's persisted task set in line with what its
// current growth stage implies. All stage/protocol computation is pure; the
// coordinator only sequences reads, the transpiler, and batched writes.
// Different plants sync independently.
type Coordinator struct {
	plants    plantrepo.PlantRepository
	varieties varietyrepo.VarietyRepository
	tasks     taskrepo.TaskRepository
	now       func() time.Time

	mu      sync.Mutex
	loops   map[uint]*plantLoop
	watched map[string]struct{}
	closed  bool
	done    chan struct{}
}

type plantLoop struct {
	requests chan struct{} // cap 1: queued triggers coalesce
	gen      atomic.Uint64
}

type Option func(*Coordinator)

// WithClock overrides wall-clock time, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

func New(p plantrepo.PlantRepository, v varietyrepo.VarietyRepository, t taskrepo.TaskRepository, opts ...Option) *Coordinator {
	c := &Coordinator{
		plants:    p,
		varieties: v,
		tasks:     t,
		now:       time.Now,
		loops:     map[uint]*plantLoop{},
		watched:   map[string]struct{}{},
		done:      make(chan struct{}),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Coordinator) loopFor(plantID uint) *plantLoop {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.loops[plantID]
	if !ok {
		l = &plantLoop{requests: make(chan struct{}, 1)}
		c.loops[plantID] = l
		if !c.closed {
			go c.run(plantID, l)
		}
	}
	return l
}

// Request asks for a resync of one plant. Non-blocking; triggers arriving
// while a pass is queued collapse into one.
func (c *Coordinator) Request(plantID uint) {
	l := c.loopFor(plantID)
	l.gen.Add(1)
	select {
	case l.requests <- struct{}{}:
	default:
	}
}

func (c *Coordinator) run(plantID uint, l *plantLoop) {
	for {
		select {
		case <-c.done:
			return
		case <-l.requests:
			g := l.gen.Load()
			if _, err := c.syncWithGen(context.Background(), plantID, l, g); err != nil && !errors.Is(err, ErrSuperseded) {
				log.Printf("[tasksync] plant %d: %v", plantID, err)
			}
		}
	}
}

// SyncPlant runs one coordinator pass synchronously and returns the diff
// actually applied. A pass started here counts as the newest trigger.
func (c *Coordinator) SyncPlant(ctx context.Context, plantID uint) (protocol.Diff, error) {
	l := c.loopFor(plantID)
	g := l.gen.Add(1)
	return c.syncWithGen(ctx, plantID, l, g)
}

func (c *Coordinator) syncWithGen(ctx context.Context, plantID uint, l *plantLoop, g uint64) (protocol.Diff, error) {
	var applied protocol.Diff

	p, err := c.plants.Get(plantID)
	if err != nil {
		return applied, err
	}
	if !p.Active {
		// removed from active tracking: clear outstanding work, keep history
		return applied, c.tasks.DeletePendingForPlant(plantID)
	}
	v, err := c.varieties.FindByID(p.VarietyID)
	if err != nil {
		return applied, err
	}
	if v == nil || len(v.Timeline) == 0 {
		return applied, nil // nothing to schedule against
	}
	existing, err := c.tasks.AllForPlant(plantID)
	if err != nil {
		return applied, err
	}

	now := c.now()
	cur := stage.Current(p.PlantedDate, stage.Timeline(v.Timeline), now, p.Confirmed)
	diff := protocol.Synthesize(p, v, cur, now, existing)
	if diff.Empty() {
		return applied, nil
	}

	// Reads are done; abandon before writing if a newer trigger started.
	if l.gen.Load() != g {
		return applied, ErrSuperseded
	}
	if err := ctx.Err(); err != nil {
		return applied, err
	}

	if err := c.tasks.DeleteByIDs(diff.ToSupersede); err != nil {
		return applied, err
	}
	applied.ToSupersede = diff.ToSupersede
	if _, err := c.tasks.BulkInsert(diff.ToCreate); err != nil {
		return applied, err
	}
	applied.ToCreate = diff.ToCreate
	return applied, nil
}

// HandleThinning adjusts task provenance after a thinning activity.
// Thinning does not reset growth stage, so tasks keep their ids, dates and
// status; only source.plant_count changes.
func (c *Coordinator) HandleThinning(plantID uint, newCount int) error {
	if err := c.plants.UpdateCount(plantID, newCount); err != nil {
		return err
	}
	return c.tasks.UpdateSourcePlantCount(plantID, newCount)
}

// ResyncUser runs a pass for each of the user's active plants concurrently
// and returns the applied diffs by plant id.
func (c *Coordinator) ResyncUser(ctx context.Context, uid string) (map[uint]protocol.Diff, error) {
	plants, err := c.plants.ListActiveByUser(uid)
	if err != nil {
		return nil, err
	}
	var mu sync.Mutex
	out := map[uint]protocol.Diff{}
	g, ctx := errgroup.WithContext(ctx)
	for _, p := range plants {
		g.Go(func() error {
			d, err := c.SyncPlant(ctx, p.PlantID)
			if err != nil {
				if errors.Is(err, ErrSuperseded) {
					return nil
				}
				return err
			}
			mu.Lock()
			out[p.PlantID] = d
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// WatchUser subscribes to the user's plant and task feeds and requests a
// resync on every delivery. The feed refiring after the coordinator's own
// writes is harmless: the next pass is a no-op by the dedup key, not by any
// coordinator-side locking. Returns an unsubscribe func.
func (c *Coordinator) WatchUser(uid string) func() {
	c.mu.Lock()
	c.watched[uid] = struct{}{}
	c.mu.Unlock()
	return c.subscribe(uid)
}

// EnsureWatch arms WatchUser once per user; later calls are no-ops. Watches
// started this way live until Close.
func (c *Coordinator) EnsureWatch(uid string) {
	c.mu.Lock()
	if _, ok := c.watched[uid]; ok {
		c.mu.Unlock()
		return
	}
	c.watched[uid] = struct{}{}
	c.mu.Unlock()
	c.subscribe(uid)
}

func (c *Coordinator) subscribe(uid string) func() {
	// The plant feed only carries the active set, so a deactivated plant
	// vanishes from it; its cleanup pass is driven off the delivery diff.
	var seenMu sync.Mutex
	seen := map[uint]struct{}{}
	unsubPlants := c.plants.SubscribePlantsForUser(uid, func(ps []entities.Plant) {
		cur := map[uint]struct{}{}
		for _, p := range ps {
			cur[p.PlantID] = struct{}{}
			c.Request(p.PlantID)
		}
		seenMu.Lock()
		for id := range seen {
			if _, ok := cur[id]; !ok {
				c.Request(id)
			}
		}
		seen = cur
		seenMu.Unlock()
	})
	unsubTasks := c.tasks.SubscribeUserTasks(uid, func(ts []entities.ScheduledTask) {
		seen := map[uint]struct{}{}
		for _, t := range ts {
			if _, ok := seen[t.PlantID]; ok {
				continue
			}
			seen[t.PlantID] = struct{}{}
			c.Request(t.PlantID)
		}
	}, func(err error) {
		log.Printf("[tasksync] task feed for %s: %v", uid, err)
	})

	return func() {
		c.mu.Lock()
		delete(c.watched, uid)
		c.mu.Unlock()
		unsubPlants()
		unsubTasks()
	}
}

// StartTicker re-evaluates watched users' plants on an interval: stage
// boundaries move with wall-clock time even when no data changes.
func (c *Coordinator) StartTicker(interval time.Duration) func() {
	t := time.NewTicker(interval)
	stop := make(chan struct{})
	go func() {
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-c.done:
				return
			case <-t.C:
				c.tick()
			}
		}
	}()
	return func() { close(stop) }
}

func (c *Coordinator) tick() {
	c.mu.Lock()
	uids := make([]string, 0, len(c.watched))
	for uid := range c.watched {
		uids = append(uids, uid)
	}
	c.mu.Unlock()
	for _, uid := range uids {
		ps, err := c.plants.ListActiveByUser(uid)
		if err != nil {
			log.Printf("[tasksync] tick list plants for %s: %v", uid, err)
			continue
		}
		for _, p := range ps {
			c.Request(p.PlantID)
		}
	}
}

// Close stops all per-plant loops. In-flight passes finish; queued
// requests are dropped.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
}
