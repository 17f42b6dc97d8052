// Package export writes confirmed orders to spreadsheet files.
package export

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/po-matcher/internal/model"
)

// OrdersSheet is the sheet name used for order exports.
const OrdersSheet = "Orders"

// OrderHeader is the first row of an order export.
var OrderHeader = []string{"ID", "PO Item", "Catalog Item ID", "Catalog Item Description", "Created At"}

// OrdersWorkbook builds a single-sheet workbook with one row per order after
// the header row. Order is preserved.
func OrdersWorkbook(orders []model.Order) (*xlsx.File, error) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(OrdersSheet)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range OrderHeader {
		header.AddCell().SetString(h)
	}

	for _, o := range orders {
		row := sheet.AddRow()
		row.AddCell().SetInt64(o.ID)
		row.AddCell().SetString(o.POItem)
		row.AddCell().SetString(o.CatalogItemID)
		row.AddCell().SetString(o.CatalogItemDescription)
		row.AddCell().SetDateTime(o.CreatedAt)
	}
	return f, nil
}

// WriteOrders writes orders as an XLSX workbook to w.
func WriteOrders(w io.Writer, orders []model.Order) error {
	f, err := OrdersWorkbook(orders)
	if err != nil {
		return err
	}
	return eris.Wrap(f.Write(w), "xlsx: write workbook")
}

// SaveOrders writes orders as an XLSX workbook at path.
func SaveOrders(path string, orders []model.Order) error {
	f, err := OrdersWorkbook(orders)
	if err != nil {
		return err
	}
	return eris.Wrapf(f.Save(path), "xlsx: save %s", path)
}
