package reports

import (
	"io"

	"github.com/xuri/excelize/v2"
)

const ExcelContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ExcelExporter interface {
	GetCellValues() []interface{}
}

func (r *RevenueByCustomerResponse) GetCellValues() []interface{} {
	return []interface{}{
		r.CustomerCode,
		r.CustomerName,
		r.InvoiceCount,
		r.TotalRevenue.InexactFloat64(),
		r.TotalTax.InexactFloat64(),
		r.TotalDiscount.InexactFloat64(),
		r.TotalPayment.InexactFloat64(),
	}
}

var RevenueByCustomerHeadings = []string{
	"CustomerCode", "CustomerName", "InvoiceCount", "Revenue", "Tax", "Discount", "Payment",
}

func (r *RevenueByProductResponse) GetCellValues() []interface{} {
	return []interface{}{
		r.ProductCode,
		r.ProductName,
		r.TotalQuantity.InexactFloat64(),
		r.TotalRevenue.InexactFloat64(),
	}
}

var RevenueByProductHeadings = []string{
	"ProductCode", "ProductName", "Quantity", "Revenue",
}

// ToExporters adapts a typed report slice for WriteExcel.
func ToExporters[T ExcelExporter](rows []T) []ExcelExporter {
	exporters := make([]ExcelExporter, 0, len(rows))
	for _, row := range rows {
		exporters = append(exporters, row)
	}
	return exporters
}

// WriteExcel writes one sheet with a heading row followed by one row per record.
func WriteExcel(w io.Writer, data []ExcelExporter, headings ...string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Sheet1"
	if _, err := f.NewSheet(sheetName); err != nil {
		return err
	}

	for i, h := range headings {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return err
		}
	}

	for rowNo, d := range data {
		cell, err := excelize.CoordinatesToCellName(1, rowNo+2)
		if err != nil {
			return err
		}
		values := d.GetCellValues()
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return err
		}
	}

	return f.Write(w)
}
