package serviceImp

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"sprout/entities"
	"sprout/pkg/variety/repository"
)

// Importer seeds variety data from user-authored files: a CSV of growth
// timelines and an XLSX workbook of care protocols.
type Importer struct{ r repository.VarietyRepository }

func NewImporter(r repository.VarietyRepository) *Importer { return &Importer{r} }

// header normalization shared by both loaders: lowercase, strip BOM,
// spaces, dashes and underscores so authored files can vary.
func norm(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "\ufeff")
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, "_", "")
	return s
}

func headerMap(head []string) map[string]int {
	m := map[string]int{}
	for i, h := range head {
		m[norm(h)] = i
	}
	return m
}

func findAny(hmap map[string]int, keys ...string) int {
	for _, k := range keys {
		if idx, ok := hmap[norm(k)]; ok {
			return idx
		}
	}
	return -1
}

// ImportTimelinesCSV loads variety rows (variety, category, stage,
// start_days); consecutive rows for the same variety form its ordered
// timeline. Returns the number of varieties upserted.
func (im *Importer) ImportTimelinesCSV(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	cr := csv.NewReader(f)
	head, err := cr.Read()
	if err != nil {
		return 0, err
	}
	hmap := headerMap(head)
	cVar := findAny(hmap, "variety", "name")
	cCat := findAny(hmap, "category", "group")
	cStage := findAny(hmap, "stage", "phase")
	cDays := findAny(hmap, "start_days", "days", "day_threshold", "startday")
	if cVar == -1 || cStage == -1 || cDays == -1 {
		return 0, fmt.Errorf("timeline CSV missing required columns, found headers: %v", head)
	}

	get := func(rec []string, idx int) string {
		if idx < 0 || idx >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[idx])
	}

	type draft struct {
		category string
		timeline []entities.StageThreshold
	}
	order := []string{}
	drafts := map[string]*draft{}

	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return 0, err
		}
		name := get(rec, cVar)
		stage := get(rec, cStage)
		if name == "" || stage == "" {
			continue
		}
		days, err := strconv.Atoi(get(rec, cDays))
		if err != nil || days < 0 {
			continue // skip invalid rows
		}
		d, ok := drafts[name]
		if !ok {
			d = &draft{category: get(rec, cCat)}
			drafts[name] = d
			order = append(order, name)
		}
		d.timeline = append(d.timeline, entities.StageThreshold{Stage: stage, StartDays: days})
	}

	n := 0
	for _, name := range order {
		d := drafts[name]
		if len(d.timeline) == 0 {
			continue
		}
		v := &entities.Variety{Name: name, Category: d.category, Timeline: d.timeline}
		if prev, err := im.r.FindByName(name); err == nil && prev != nil {
			v.Protocols = prev.Protocols // keep protocols across timeline reloads
		}
		if err := im.r.UpsertByName(v); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// ImportProtocolsXLSX loads care-protocol rows from the first sheet:
// variety, stage, kind (watering|fertilizing), amount, unit, product,
// dilution, method, start_days, dynamic. Returns the number of entries applied.
func (im *Importer) ImportProtocolsXLSX(path string) (int, error) {
	x, err := excelize.OpenFile(path)
	if err != nil {
		return 0, err
	}
	defer x.Close()

	sheets := x.GetSheetList()
	if len(sheets) == 0 {
		return 0, errors.New("protocol workbook has no sheets")
	}
	rows, err := x.GetRows(sheets[0])
	if err != nil {
		return 0, err
	}
	if len(rows) < 2 {
		return 0, nil
	}
	hmap := headerMap(rows[0])
	cVar := findAny(hmap, "variety", "name")
	cStage := findAny(hmap, "stage", "phase")
	cKind := findAny(hmap, "kind", "type")
	cAmt := findAny(hmap, "amount", "qty", "volume")
	cUnit := findAny(hmap, "unit")
	cProd := findAny(hmap, "product", "fertilizer")
	cDil := findAny(hmap, "dilution")
	cMeth := findAny(hmap, "method")
	cStart := findAny(hmap, "start_days", "lead_days", "offset")
	cDyn := findAny(hmap, "dynamic", "track_stage")
	if cVar == -1 || cStage == -1 || cKind == -1 {
		return 0, fmt.Errorf("protocol sheet missing required columns, found headers: %v", rows[0])
	}

	get := func(rec []string, idx int) string {
		if idx < 0 || idx >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[idx])
	}

	n := 0
	touched := map[string]*entities.Variety{}
	for _, rec := range rows[1:] {
		name := get(rec, cVar)
		stage := get(rec, cStage)
		kind := strings.ToLower(get(rec, cKind))
		if name == "" || stage == "" {
			continue
		}
		v := touched[name]
		if v == nil {
			v, err = im.r.FindByName(name)
			if err != nil {
				return n, err
			}
			if v == nil {
				continue // protocol for an unknown variety; timeline file owns creation
			}
			touched[name] = v
		}
		if v.Protocols == nil {
			v.Protocols = &entities.CareProtocols{}
		}

		startDays, _ := strconv.Atoi(get(rec, cStart))
		dynamic := false
		switch strings.ToLower(get(rec, cDyn)) {
		case "true", "yes", "1":
			dynamic = true
		}

		switch kind {
		case "watering", "water":
			var amt *float64
			if f, err := strconv.ParseFloat(get(rec, cAmt), 64); err == nil {
				amt = &f
			}
			if v.Protocols.Watering == nil {
				v.Protocols.Watering = map[string]entities.WateringEntry{}
			}
			v.Protocols.Watering[stage] = entities.WateringEntry{
				Amount: amt, Unit: get(rec, cUnit), StartDays: startDays, Dynamic: dynamic,
			}
			n++
		case "fertilizing", "fertilize", "fertilizer":
			var amt *float64
			if f, err := strconv.ParseFloat(get(rec, cAmt), 64); err == nil {
				amt = &f
			}
			if v.Protocols.Fertilizing == nil {
				v.Protocols.Fertilizing = map[string]entities.FertilizingEntry{}
			}
			prev := v.Protocols.Fertilizing[stage]
			prev.StartDays = startDays
			prev.Dynamic = dynamic
			prev.Products = append(prev.Products, entities.FertilizerProduct{
				Product:  get(rec, cProd),
				Dilution: get(rec, cDil),
				Amount:   amt,
				Unit:     get(rec, cUnit),
				Method:   get(rec, cMeth),
			})
			v.Protocols.Fertilizing[stage] = prev
			n++
		}
	}

	for _, v := range touched {
		if err := im.r.UpsertByName(v); err != nil {
			return n, err
		}
	}
	return n, nil
}
