// internal/exchange/exchange_test.go
package exchange

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/dropshoplabs/dropshop-backend/internal/models"
)

func workbookBytes(t *testing.T, f *excelize.File) *bytes.Reader {
	t.Helper()
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return bytes.NewReader(buf.Bytes())
}

func TestExportImportRoundTrip(t *testing.T) {
	products := []models.Product{
		{
			Name:             "Sac en cuir",
			Reference:        "REF1",
			Price:            49.90,
			PurchasePrice:    20.50,
			Category:         "Mode",
			Status:           models.ProductStatusActive,
			EtsyLink:         "https://etsy.com/listing/1",
			DropshippingLink: "https://supplier.com/1",
			Image:            "https://example.com/sac.jpg",
		},
		{
			Name:      "Bague argent",
			Reference: "REF2",
			Price:     15,
			Status:    models.ProductStatusInactive,
		},
	}

	f, filename, err := Export(products, "ma-boutique")
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("produits-ma-boutique-%s.xlsx", time.Now().Format("2006-01-02")), filename)

	imported, err := Import(workbookBytes(t, f))
	require.NoError(t, err)
	require.Len(t, imported, 2)

	first := imported[0]
	assert.Equal(t, "Sac en cuir", first.Name)
	assert.Equal(t, "REF1", first.Reference)
	assert.InDelta(t, 49.90, first.Price, 0.001)
	assert.InDelta(t, 20.50, first.PurchasePrice, 0.001)
	assert.Equal(t, "Mode", first.Category)
	assert.Equal(t, models.ProductStatusActive, first.Status)
	assert.Equal(t, "https://etsy.com/listing/1", first.EtsyLink)
	assert.Equal(t, "https://supplier.com/1", first.DropshippingLink)
	assert.Equal(t, "https://example.com/sac.jpg", first.Image.URL)

	assert.Equal(t, models.ProductStatusInactive, imported[1].Status)
}

func TestImportAcceptsEnglishHeaders(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	header := []interface{}{"Name", "Reference", "Sale Price", "Purchase Price", "Category", "Status", "Sale Link", "Purchase Link", "Image URL"}
	require.NoError(t, f.SetSheetRow(sheet, "A1", &header))
	row := []interface{}{"Leather bag", "REF1", "49,90", "20", "Fashion", "Online", "", "", ""}
	require.NoError(t, f.SetSheetRow(sheet, "A2", &row))

	imported, err := Import(workbookBytes(t, f))
	require.NoError(t, err)
	require.Len(t, imported, 1)

	got := imported[0]
	assert.Equal(t, "Leather bag", got.Name)
	// Comma decimals are accepted.
	assert.InDelta(t, 49.90, got.Price, 0.001)
	assert.Equal(t, models.ProductStatusActive, got.Status)
}

func TestImportSkipsBlankRowsAndDefaultsStatus(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	header := []interface{}{"Nom", "Référence", "Statut"}
	require.NoError(t, f.SetSheetRow(sheet, "A1", &header))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"Sac", "REF1", "En ligne"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"", "", ""}))
	require.NoError(t, f.SetSheetRow(sheet, "A4", &[]interface{}{"Bague", "REF2", "n'importe quoi"}))
	require.NoError(t, f.SetSheetRow(sheet, "A5", &[]interface{}{"Montre", "REF3", "Inactif"}))

	imported, err := Import(workbookBytes(t, f))
	require.NoError(t, err)
	require.Len(t, imported, 3)

	assert.Equal(t, models.ProductStatusActive, imported[0].Status)
	// Unknown statuses fall back to draft.
	assert.Equal(t, models.ProductStatusDraft, imported[1].Status)
	assert.Equal(t, models.ProductStatusInactive, imported[2].Status)
}

func TestImportKeepsRowsMissingRequiredFields(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	header := []interface{}{"Nom", "Référence"}
	require.NoError(t, f.SetSheetRow(sheet, "A1", &header))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"Sans référence", ""}))

	// Validity is decided at insert time, not at parse time, so the
	// skipped-row count can be reported against the full batch.
	imported, err := Import(workbookBytes(t, f))
	require.NoError(t, err)
	require.Len(t, imported, 1)
	assert.Equal(t, "Sans référence", imported[0].Name)
	assert.Empty(t, imported[0].Reference)
}

func TestImportEmptySheet(t *testing.T) {
	f := excelize.NewFile()
	imported, err := Import(workbookBytes(t, f))
	require.NoError(t, err)
	assert.Empty(t, imported)
}

func TestImportRejectsGarbage(t *testing.T) {
	_, err := Import(bytes.NewReader([]byte("not a spreadsheet")))
	assert.Error(t, err)
}

func TestTemplateLayout(t *testing.T) {
	f, filename, err := Template()
	require.NoError(t, err)
	assert.Equal(t, "template-import-produits.xlsx", filename)

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, columns, rows[0])
	assert.Equal(t, "Exemple Produit", rows[1][0])
	require.NoError(t, f.Close())
}
