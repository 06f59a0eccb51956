package protocol

import "sprout/entities"

// Kind selects which protocol table an entry comes from.
type Kind string

const (
	Watering    Kind = "watering"
	Fertilizing Kind = "fertilizing"
)

// Entry is a tagged "present" lookup result: exactly one of Watering /
// Fertilizing is set, matching Kind.
type Entry struct {
	Kind        Kind
	Watering    *entities.WateringEntry
	Fertilizing *entities.FertilizingEntry
}

// StartDays is the entry's lead time from stage start.
func (e Entry) StartDays() int {
	switch e.Kind {
	case Watering:
		return e.Watering.StartDays
	case Fertilizing:
		return e.Fertilizing.StartDays
	}
	return 0
}

// Dynamic reports whether the entry's due date tracks the live stage boundary.
func (e Entry) Dynamic() bool {
	switch e.Kind {
	case Watering:
		return e.Watering.Dynamic
	case Fertilizing:
		return e.Fertilizing.Dynamic
	}
	return false
}

// Resolve looks up the variety's protocol entry for (stage, kind). An entry
// missing its kind-required fields (watering needs an amount, fertilizing
// needs at least one named product) counts as absent so downstream fallback
// engages instead of surfacing a recommendation with no substance.
func Resolve(v *entities.Variety, stage string, kind Kind) (Entry, bool) {
	if v == nil || v.Protocols == nil {
		return Entry{}, false
	}
	switch kind {
	case Watering:
		w, ok := v.Protocols.Watering[stage]
		if !ok || w.Amount == nil {
			return Entry{}, false
		}
		return Entry{Kind: Watering, Watering: &w}, true
	case Fertilizing:
		f, ok := v.Protocols.Fertilizing[stage]
		if !ok {
			return Entry{}, false
		}
		named := f.Products[:0:0]
		for _, p := range f.Products {
			if p.Product != "" {
				named = append(named, p)
			}
		}
		if len(named) == 0 {
			return Entry{}, false
		}
		f.Products = named
		return Entry{Kind: Fertilizing, Fertilizing: &f}, true
	}
	return Entry{}, false
}
