package excel

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/backend-laundry/internal/pricing"
)

var headerAliases = map[string]string{
	"item":         "item",
	"item type":    "item",
	"itemtype":     "item",
	"garment":      "item",
	"wash":         "wash",
	"washing":      "wash",
	"dry clean":    "dry_clean",
	"dryclean":     "dry_clean",
	"dry cleaning": "dry_clean",
	"iron":         "iron",
	"ironing":      "iron",
	"press":        "iron",
}

var requiredColumns = []string{"item", "wash", "dry_clean", "iron"}

// ParsePriceTable reads a price sheet and validates it into a complete Table.
func ParsePriceTable(fileName string, reader io.Reader) (*pricing.Table, error) {
	rows, err := ParsePriceRows(fileName, reader)
	if err != nil {
		return nil, err
	}
	return pricing.NewTable(pricing.EntriesFromRows(rows))
}

// ParsePriceRows reads one price row per item from an XLSX or CSV sheet with the
// columns item, wash, dry_clean and iron. Unknown extensions try XLSX, then CSV.
func ParsePriceRows(fileName string, reader io.Reader) ([]pricing.Row, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("input file is empty")
	}

	switch strings.ToLower(strings.TrimSpace(filepath.Ext(fileName))) {
	case ".csv":
		cells, err := parseCSVRows(data)
		if err != nil {
			return nil, err
		}
		return parsePriceSheet(cells)
	case ".xlsx", ".xlsm":
		cells, err := parseExcelRows(data)
		if err != nil {
			return nil, err
		}
		return parsePriceSheet(cells)
	default:
		if cells, err := parseExcelRows(data); err == nil {
			if rows, err := parsePriceSheet(cells); err == nil {
				return rows, nil
			}
		}
		cells, err := parseCSVRows(data)
		if err != nil {
			return nil, fmt.Errorf("unsupported or invalid price file format")
		}
		return parsePriceSheet(cells)
	}
}

func parseCSVRows(data []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("csv file is empty")
	}
	return rows, nil
}

func parseExcelRows(data []byte) ([][]string, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open excel file: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("excel file has no sheets")
	}
	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("excel file is empty")
	}
	return rows, nil
}

func parsePriceSheet(rows [][]string) ([]pricing.Row, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("input file is empty")
	}
	cols := mapColumns(rows[0])
	var missing []string
	for _, key := range requiredColumns {
		if _, ok := cols[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	out := make([]pricing.Row, 0, len(rows)-1)
	for index := 1; index < len(rows); index++ {
		cells := rows[index]
		name := cleanText(readCell(cells, cols["item"]))
		if name == "" {
			continue
		}
		item := pricing.ParseItemType(name)
		if !item.Valid() {
			return nil, fmt.Errorf("row %d: unknown item type %q", index+1, name)
		}
		row := pricing.Row{Item: item}
		var err error
		if row.Wash, err = readPrice(cells, cols, "wash", index); err != nil {
			return nil, err
		}
		if row.DryClean, err = readPrice(cells, cols, "dry_clean", index); err != nil {
			return nil, err
		}
		if row.Iron, err = readPrice(cells, cols, "iron", index); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("file has no price rows")
	}
	return out, nil
}

func readPrice(cells []string, cols map[string]int, key string, index int) (decimal.Decimal, error) {
	price, err := pricing.ParseAmount(normalizeAmount(readCell(cells, cols[key])))
	if err != nil {
		return decimal.Zero, fmt.Errorf("row %d %s: %w", index+1, key, err)
	}
	return price, nil
}

func mapColumns(header []string) map[string]int {
	mapped := make(map[string]int)
	for idx, col := range header {
		canonical, ok := headerAliases[normalizeHeader(col)]
		if !ok {
			continue
		}
		if _, exists := mapped[canonical]; !exists {
			mapped[canonical] = idx
		}
	}
	return mapped
}

func normalizeHeader(value string) string {
	value = strings.TrimPrefix(strings.TrimSpace(value), "\ufeff")
	value = strings.NewReplacer("_", " ", "-", " ").Replace(strings.ToLower(value))
	return strings.Join(strings.Fields(value), " ")
}

func normalizeAmount(raw string) string {
	value := strings.TrimSpace(raw)
	value = strings.TrimPrefix(value, "$")
	return strings.ReplaceAll(value, ",", "")
}

func readCell(cells []string, idx int) string {
	if idx < 0 || idx >= len(cells) {
		return ""
	}
	return cells[idx]
}

func cleanText(value string) string {
	return strings.Join(strings.Fields(value), " ")
}
