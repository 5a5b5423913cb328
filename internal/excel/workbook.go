package excel

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/backend-laundry/internal/laundry"
	"github.com/noah-isme/backend-laundry/internal/pricing"
)

const dateLayout = "2006-01-02"

type sheet struct {
	name   string
	header []string
	widths []float64
	rows   [][]any
}

// WriteWorkbook renders the dataset as one sheet per collection plus the price list.
func WriteWorkbook(w io.Writer, ds *laundry.Dataset, prices []pricing.Row) error {
	if ds == nil {
		ds = &laundry.Dataset{}
	}
	sheets := []sheet{
		orderSheet(ds.Orders),
		customerSheet(ds.Customers),
		invoiceSheet(ds.Invoices),
		inventorySheet(ds.Inventory),
		priceSheet(prices),
	}
	return writeSheets(w, sheets)
}

// WritePriceTable renders the price list in the layout ParsePriceRows reads back.
func WritePriceTable(w io.Writer, rows []pricing.Row) error {
	return writeSheets(w, []sheet{priceSheet(rows)})
}

func writeSheets(w io.Writer, sheets []sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.name); err != nil {
				return fmt.Errorf("set sheet name: %w", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return fmt.Errorf("new sheet %s: %w", s.name, err)
		}
		if err := writeSheet(f, s, headerStyle); err != nil {
			return err
		}
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, s sheet, headerStyle int) error {
	header := make([]any, len(s.header))
	for i, h := range s.header {
		header[i] = h
	}
	if err := f.SetSheetRow(s.name, "A1", &header); err != nil {
		return fmt.Errorf("%s header: %w", s.name, err)
	}
	last, err := excelize.CoordinatesToCellName(len(s.header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(s.name, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("%s header style: %w", s.name, err)
	}
	for i, width := range s.widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(s.name, col, col, width); err != nil {
			return fmt.Errorf("%s col width: %w", s.name, err)
		}
	}
	for i, row := range s.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(s.name, cell, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", s.name, i+2, err)
		}
	}
	return nil
}

func orderSheet(orders []laundry.Order) sheet {
	s := sheet{
		name:   "Orders",
		header: []string{"ID", "Customer ID", "Customer", "Status", "Drop-off", "Pickup", "Items", "Subtotal", "Tax", "Total", "Notes"},
		widths: []float64{14, 14, 24, 12, 12, 12, 8, 12, 10, 12, 30},
	}
	for _, o := range orders {
		s.rows = append(s.rows, []any{
			o.ID, o.CustomerID, o.CustomerName, string(o.Status),
			formatDate(o.DropOffDate), formatDatePtr(o.PickupDate), o.ItemCount(),
			money(o.Subtotal), money(o.Tax), money(o.Total), o.Notes,
		})
	}
	return s
}

func customerSheet(customers []laundry.Customer) sheet {
	s := sheet{
		name:   "Customers",
		header: []string{"ID", "Name", "Phone", "Email", "Address", "Status", "Total Orders", "Total Spent", "Joined"},
		widths: []float64{14, 24, 16, 26, 30, 10, 12, 12, 12},
	}
	for _, c := range customers {
		s.rows = append(s.rows, []any{
			c.ID, c.Name, c.Phone, c.Email, c.Address, string(c.Status),
			c.TotalOrders, money(c.TotalSpent), formatDate(c.CreatedAt),
		})
	}
	return s
}

func invoiceSheet(invoices []laundry.Invoice) sheet {
	s := sheet{
		name:   "Invoices",
		header: []string{"ID", "Customer ID", "Customer", "Date", "Due Date", "Status", "Subtotal", "Tax", "Total"},
		widths: []float64{14, 14, 24, 12, 12, 10, 12, 10, 12},
	}
	for _, inv := range invoices {
		s.rows = append(s.rows, []any{
			inv.ID, inv.CustomerID, inv.CustomerName, formatDate(inv.Date), formatDate(inv.DueDate),
			string(inv.Status), money(inv.Subtotal), money(inv.Tax), money(inv.Total),
		})
	}
	return s
}

func inventorySheet(items []laundry.InventoryItem) sheet {
	s := sheet{
		name:   "Inventory",
		header: []string{"ID", "Name", "Category", "Quantity", "Unit", "Cost", "Threshold", "Stock Status", "Stock Value", "Last Updated"},
		widths: []float64{14, 28, 12, 10, 10, 10, 10, 14, 12, 14},
	}
	for _, it := range items {
		s.rows = append(s.rows, []any{
			it.ID, it.Name, string(it.Category), it.Quantity, it.Unit, money(it.Cost), it.Threshold,
			it.StockStatus().Label(), money(it.StockValue()), formatDate(it.LastUpdated),
		})
	}
	return s
}

func priceSheet(rows []pricing.Row) sheet {
	s := sheet{
		name:   "Prices",
		header: []string{"Item", "Wash", "Dry Clean", "Iron"},
		widths: []float64{14, 10, 10, 10},
	}
	for _, r := range rows {
		s.rows = append(s.rows, []any{string(r.Item), money(r.Wash), money(r.DryClean), money(r.Iron)})
	}
	return s
}

func money(d decimal.Decimal) float64 {
	return pricing.RoundCurrency(d).InexactFloat64()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatDate(*t)
}
