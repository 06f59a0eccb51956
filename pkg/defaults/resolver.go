package defaults

import (
	"fmt"
	"log"
	"sync"

	"github.com/fsnotify/fsnotify"

	"sprout/entities"
	"sprout/pkg/protocol"
)

// Confidence labels and source tags, first-match-wins order.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"

	SourceProtocol  = "protocol"
	SourceCategory  = "category"
	SourceUniversal = "universal"
)

// Recommendation answers "what should I log right now". Found=false is a
// controlled absence (variety unknown), not an error.
type Recommendation struct {
	Found       bool                         `json:"found"`
	Kind        string                       `json:"kind"`
	Confidence  string                       `json:"confidence,omitempty"`
	Source      string                       `json:"source,omitempty"`
	Reasoning   string                       `json:"reasoning"`
	Water       *WaterRec                    `json:"water,omitempty"`
	Fertilizers []entities.FertilizerProduct `json:"fertilizers,omitempty"`
}

type Resolver struct {
	mu   sync.RWMutex
	book *Book
}

func NewResolver(b *Book) *Resolver { return &Resolver{book: b} }

// Recommend resolves watering/fertilizer guidance through the tiers:
// variety protocol (high) → category general (medium) → universal (low).
// A complete protocol entry always wins even when category guidance exists.
func (r *Resolver) Recommend(v *entities.Variety, stage string, kind protocol.Kind) Recommendation {
	if v == nil {
		return Recommendation{
			Found:     false,
			Kind:      string(kind),
			Reasoning: "variety not found; no defaults available",
		}
	}

	if e, ok := protocol.Resolve(v, stage, kind); ok {
		rec := Recommendation{
			Found:      true,
			Kind:       string(kind),
			Confidence: ConfidenceHigh,
			Source:     SourceProtocol,
			Reasoning:  fmt.Sprintf("%s has a %s protocol for the %s stage", v.Name, kind, stage),
		}
		switch e.Kind {
		case protocol.Watering:
			rec.Water = &WaterRec{Amount: *e.Watering.Amount, Unit: e.Watering.Unit}
		case protocol.Fertilizing:
			rec.Fertilizers = e.Fertilizing.Products
		}
		return rec
	}

	r.mu.RLock()
	book := r.book
	r.mu.RUnlock()

	if cat, ok := book.categoryRec(v.Category, stage); ok {
		if rec, ok := fromStageRec(cat, kind); ok {
			rec.Confidence = ConfidenceMedium
			rec.Source = SourceCategory
			rec.Reasoning = fmt.Sprintf("general %s guidance for %s at the %s stage", kind, v.Category, stage)
			return rec
		}
	}

	rec, _ := fromStageRec(book.Universal, kind)
	rec.Confidence = ConfidenceLow
	rec.Source = SourceUniversal
	rec.Reasoning = fmt.Sprintf("universal fallback; %s has no %s data for the %s stage", v.Name, kind, stage)
	return rec
}

func fromStageRec(sr StageRec, kind protocol.Kind) (Recommendation, bool) {
	rec := Recommendation{Found: true, Kind: string(kind)}
	switch kind {
	case protocol.Watering:
		if sr.Watering == nil {
			return rec, false
		}
		w := *sr.Watering
		rec.Water = &w
	case protocol.Fertilizing:
		if sr.Fertilizing == nil || len(sr.Fertilizing.Products) == 0 {
			return rec, false
		}
		rec.Fertilizers = sr.Fertilizing.Products
	default:
		return rec, false
	}
	return rec, true
}

// Reload swaps in a freshly loaded book.
func (r *Resolver) Reload(path string) error {
	b, err := LoadBook(path)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.book = b
	r.mu.Unlock()
	return nil
}

// Watch reloads the category book whenever the file changes on disk.
// Returns a stop func; a watcher failure disables live reload but never
// the resolver itself.
func (r *Resolver) Watch(path string) (func(), error) {
	if path == "" {
		return func() {}, nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(path); err != nil {
		w.Close()
		return nil, err
	}
	done := make(chan struct{})
	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					if err := r.Reload(path); err != nil {
						log.Printf("[defaults] reload %s: %v", path, err)
					} else {
						log.Printf("[defaults] reloaded %s", path)
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Printf("[defaults] watch: %v", err)
			case <-done:
				return
			}
		}
	}()
	return func() { close(done); w.Close() }, nil
}
