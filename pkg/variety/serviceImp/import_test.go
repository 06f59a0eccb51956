package serviceImp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"sprout/database"
	"sprout/entities"
	"sprout/pkg/variety/repository"
	"sprout/pkg/variety/repositoryImp"
)

func newRepo(t *testing.T) repository.VarietyRepository {
	t.Helper()
	db := database.OpenSQLite(filepath.Join(t.TempDir(), "sprout.db"))
	return repositoryImp.New(db)
}

func writeCSV(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "varieties.csv")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const timelinesCSV = `variety,category,stage,start_days
Genovese Basil,leafy-herbs,germination,0
Genovese Basil,leafy-herbs,vegetative,21
Genovese Basil,leafy-herbs,flowering,60
Cherry Tomato,fruiting-vines,germination,0
Cherry Tomato,fruiting-vines,seedling,14
Cherry Tomato,fruiting-vines,vegetative,30
`

func TestImportTimelinesCSV(t *testing.T) {
	r := newRepo(t)
	im := NewImporter(r)

	n, err := im.ImportTimelinesCSV(writeCSV(t, timelinesCSV))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	v, err := r.FindByName("Genovese Basil")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, "leafy-herbs", v.Category)
	require.Len(t, v.Timeline, 3)
	assert.Equal(t, entities.StageThreshold{Stage: "vegetative", StartDays: 21}, v.Timeline[1])

	v, err = r.FindByName("Cherry Tomato")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Len(t, v.Timeline, 3)
}

func TestImportTimelinesCSVHeaderAliases(t *testing.T) {
	r := newRepo(t)
	im := NewImporter(r)

	// authored files vary: aliased names, dashes, mixed case
	n, err := im.ImportTimelinesCSV(writeCSV(t, "Name,Group,Phase,Day-Threshold\nMint,leafy-herbs,germination,0\nMint,leafy-herbs,vegetative,14\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	v, err := r.FindByName("Mint")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Len(t, v.Timeline, 2)
}

func TestImportTimelinesCSVSkipsInvalidRows(t *testing.T) {
	r := newRepo(t)
	im := NewImporter(r)

	n, err := im.ImportTimelinesCSV(writeCSV(t, `variety,category,stage,start_days
Mint,leafy-herbs,germination,0
Mint,leafy-herbs,vegetative,not-a-number
Mint,leafy-herbs,,30
,leafy-herbs,flowering,60
`))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	v, err := r.FindByName("Mint")
	require.NoError(t, err)
	require.NotNil(t, v)
	require.Len(t, v.Timeline, 1)
	assert.Equal(t, "germination", v.Timeline[0].Stage)
}

func TestImportTimelinesCSVMissingColumns(t *testing.T) {
	im := NewImporter(newRepo(t))
	_, err := im.ImportTimelinesCSV(writeCSV(t, "variety,category\nMint,leafy-herbs\n"))
	assert.Error(t, err)
}

func TestImportTimelinesCSVKeepsProtocolsOnReload(t *testing.T) {
	r := newRepo(t)
	im := NewImporter(r)

	amt := 0.5
	require.NoError(t, r.Create(&entities.Variety{
		Name:     "Genovese Basil",
		Category: "leafy-herbs",
		Timeline: []entities.StageThreshold{{Stage: "germination", StartDays: 0}},
		Protocols: &entities.CareProtocols{
			Watering: map[string]entities.WateringEntry{
				"vegetative": {Amount: &amt, Unit: "gal", StartDays: 1},
			},
		},
	}))

	_, err := im.ImportTimelinesCSV(writeCSV(t, timelinesCSV))
	require.NoError(t, err)

	v, err := r.FindByName("Genovese Basil")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Len(t, v.Timeline, 3, "timeline replaced by reload")
	require.NotNil(t, v.Protocols, "protocols survive a timeline reload")
	assert.Contains(t, v.Protocols.Watering, "vegetative")
}

func writeProtocolXLSX(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	x := excelize.NewFile()
	defer x.Close()
	sheet := x.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, x.SetSheetRow(sheet, cell, &row))
	}
	path := filepath.Join(t.TempDir(), "protocols.xlsx")
	require.NoError(t, x.SaveAs(path))
	return path
}

func TestImportProtocolsXLSX(t *testing.T) {
	r := newRepo(t)
	im := NewImporter(r)

	_, err := im.ImportTimelinesCSV(writeCSV(t, timelinesCSV))
	require.NoError(t, err)

	path := writeProtocolXLSX(t, [][]interface{}{
		{"variety", "stage", "kind", "amount", "unit", "product", "dilution", "method", "start_days", "dynamic"},
		{"Genovese Basil", "vegetative", "watering", 0.5, "gal", "", "", "", 1, "false"},
		{"Genovese Basil", "vegetative", "fertilizing", "", "", "Neptune's Harvest Fish + Seaweed", "1 tbsp/gal", "soil-drench", 3, "true"},
		{"Genovese Basil", "vegetative", "fertilizing", "", "", "Worm casting tea", "", "soil-drench", 3, "true"},
		{"Unknown Plant", "vegetative", "watering", 1.0, "gal", "", "", "", 0, ""},
	})

	n, err := im.ImportProtocolsXLSX(path)
	require.NoError(t, err)
	assert.Equal(t, 3, n, "unknown-variety row ignored")

	v, err := r.FindByName("Genovese Basil")
	require.NoError(t, err)
	require.NotNil(t, v)
	require.NotNil(t, v.Protocols)

	w := v.Protocols.Watering["vegetative"]
	require.NotNil(t, w.Amount)
	assert.Equal(t, 0.5, *w.Amount)
	assert.Equal(t, "gal", w.Unit)
	assert.Equal(t, 1, w.StartDays)
	assert.False(t, w.Dynamic)

	f := v.Protocols.Fertilizing["vegetative"]
	require.Len(t, f.Products, 2, "rows for the same cell accumulate products")
	assert.Equal(t, "Neptune's Harvest Fish + Seaweed", f.Products[0].Product)
	assert.Equal(t, "Worm casting tea", f.Products[1].Product)
	assert.Equal(t, 3, f.StartDays)
	assert.True(t, f.Dynamic)

	u, err := r.FindByName("Unknown Plant")
	require.NoError(t, err)
	assert.Nil(t, u, "protocol rows never create varieties")
}

func TestImportProtocolsXLSXMissingColumns(t *testing.T) {
	im := NewImporter(newRepo(t))
	path := writeProtocolXLSX(t, [][]interface{}{
		{"variety", "amount"},
		{"Genovese Basil", 0.5},
	})
	_, err := im.ImportProtocolsXLSX(path)
	assert.Error(t, err)
}
