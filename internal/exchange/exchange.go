// internal/exchange/exchange.go

// Package exchange maps product records to and from xlsx workbooks for
// bulk import and export. Column headers exist in French and English;
// either set is accepted on import, the French set is written on export.
package exchange

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/dropshoplabs/dropshop-backend/internal/cache"
	"github.com/dropshoplabs/dropshop-backend/internal/models"
)

const SheetName = "Produits"

var columns = []string{
	"Nom",
	"Référence",
	"Prix de vente",
	"Prix d'achat",
	"Catégorie",
	"Statut",
	"Lien de vente",
	"Lien d'achat",
	"Image URL",
}

// English synonyms accepted on import, keyed by the French header.
var englishHeaders = map[string]string{
	"Nom":           "Name",
	"Référence":     "Reference",
	"Prix de vente": "Sale Price",
	"Prix d'achat":  "Purchase Price",
	"Catégorie":     "Category",
	"Statut":        "Status",
	"Lien de vente": "Sale Link",
	"Lien d'achat":  "Purchase Link",
	"Image URL":     "Image URL",
}

// French/English synonym pairs map onto the three statuses.
// Anything else defaults to draft.
var statusImport = map[string]models.ProductStatus{
	"En ligne":  models.ProductStatusActive,
	"Online":    models.ProductStatusActive,
	"Brouillon": models.ProductStatusDraft,
	"Draft":     models.ProductStatusDraft,
	"Inactif":   models.ProductStatusInactive,
	"Inactive":  models.ProductStatusInactive,
}

var statusExport = map[models.ProductStatus]string{
	models.ProductStatusActive:   "En ligne",
	models.ProductStatusDraft:    "Brouillon",
	models.ProductStatusInactive: "Inactif",
}

// Export writes one row per product and returns the workbook together
// with its download filename (shop name plus current date).
func Export(products []models.Product, shopName string) (*excelize.File, string, error) {
	f, err := newWorkbook()
	if err != nil {
		return nil, "", err
	}

	for i, p := range products {
		row := []interface{}{
			p.Name,
			p.Reference,
			p.Price,
			p.PurchasePrice,
			p.Category,
			statusExport[p.Status],
			p.EtsyLink,
			p.DropshippingLink,
			p.Image,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, "", fmt.Errorf("failed to build cell name: %w", err)
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, "", fmt.Errorf("failed to write row: %w", err)
		}
	}

	if shopName == "" {
		shopName = "boutique"
	}
	filename := fmt.Sprintf("produits-%s-%s.xlsx", shopName, time.Now().Format("2006-01-02"))
	return f, filename, nil
}

// Template produces a workbook with the headers and a single example row
// to guide manual editing.
func Template() (*excelize.File, string, error) {
	f, err := newWorkbook()
	if err != nil {
		return nil, "", err
	}

	example := []interface{}{
		"Exemple Produit",
		"REF001",
		29.99,
		15.00,
		"Mode",
		"Brouillon",
		"https://etsy.com/listing/...",
		"https://supplier.com/product/...",
		"https://example.com/image.jpg",
	}
	if err := f.SetSheetRow(SheetName, "A2", &example); err != nil {
		return nil, "", fmt.Errorf("failed to write example row: %w", err)
	}

	return f, "template-import-produits.xlsx", nil
}

// Import reads the first sheet of an xlsx file and maps every data row to
// a product input. Rows are returned unfiltered; the bulk-create path
// decides validity and reports only aggregate counts.
func Import(r io.Reader) ([]cache.ProductInput, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	index := headerIndex(rows[0])
	inputs := make([]cache.ProductInput, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		get := func(french string) string {
			return cellValue(row, index, french)
		}
		inputs = append(inputs, cache.ProductInput{
			Name:             get("Nom"),
			Reference:        get("Référence"),
			Price:            parseAmount(get("Prix de vente")),
			PurchasePrice:    parseAmount(get("Prix d'achat")),
			Category:         get("Catégorie"),
			Status:           parseStatus(get("Statut")),
			EtsyLink:         get("Lien de vente"),
			DropshippingLink: get("Lien d'achat"),
			Image:            cache.ImageInput{URL: get("Image URL")},
		})
	}
	return inputs, nil
}

func newWorkbook() (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	return f, nil
}

// headerIndex maps each recognized header (French or English) to its
// column position in the sheet.
func headerIndex(header []string) map[string]int {
	index := make(map[string]int)
	for i, cell := range header {
		index[strings.TrimSpace(cell)] = i
	}
	return index
}

func cellValue(row []string, index map[string]int, french string) string {
	if i, ok := index[french]; ok && i < len(row) {
		return strings.TrimSpace(row[i])
	}
	if english, ok := englishHeaders[french]; ok {
		if i, ok := index[english]; ok && i < len(row) {
			return strings.TrimSpace(row[i])
		}
	}
	return ""
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// parseAmount is deliberately tolerant: comma decimals are accepted and
// anything unparseable becomes zero.
func parseAmount(value string) float64 {
	value = strings.ReplaceAll(strings.TrimSpace(value), ",", ".")
	if value == "" {
		return 0
	}
	amount, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return amount
}

func parseStatus(value string) models.ProductStatus {
	if status, ok := statusImport[strings.TrimSpace(value)]; ok {
		return status
	}
	return models.ProductStatusDraft
}
