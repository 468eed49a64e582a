// Package export writes normalized statement sets to an xlsx workbook, one
// sheet per statement kind, periods across the columns in ascending order.
package export

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/richslow/vnmarket/internal/mapper"
	"github.com/richslow/vnmarket/internal/model"
)

var sheetNames = map[model.StatementKind]string{
	model.KindIncome:   "Income Statement",
	model.KindBalance:  "Balance Sheet",
	model.KindCashFlow: "Cash Flow",
	model.KindRatio:    "Ratios",
}

// Workbook renders set into an xlsx workbook. Row order follows the field
// tables, so the sheet reads like the published statements; nil values leave
// the cell blank rather than writing zero.
func Workbook(set *model.StatementSet, tables *mapper.Tables) (*xlsx.File, error) {
	f := xlsx.NewFile()

	for _, kind := range model.Kinds {
		sheet, err := f.AddSheet(sheetNames[kind])
		if err != nil {
			return nil, eris.Wrapf(err, "export: add sheet for %s", kind)
		}
		series := seriesFor(set, kind)

		header := sheet.AddRow()
		header.AddCell().SetString("field")
		for _, st := range series {
			header.AddCell().SetString(st.Period.Label())
		}

		for _, spec := range tables.Fields(kind) {
			row := sheet.AddRow()
			row.AddCell().SetString(spec.Name)
			for _, st := range series {
				cell := row.AddCell()
				if v := st.Field(spec.Name); v != nil {
					cell.SetFloat(*v)
				}
			}
		}
	}

	return f, nil
}

// Write renders set and writes the workbook to w.
func Write(w io.Writer, set *model.StatementSet, tables *mapper.Tables) error {
	f, err := Workbook(set, tables)
	if err != nil {
		return err
	}
	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "export: write workbook")
	}
	return nil
}

// Save renders set and writes the workbook to path.
func Save(path string, set *model.StatementSet, tables *mapper.Tables) error {
	f, err := Workbook(set, tables)
	if err != nil {
		return err
	}
	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}

func seriesFor(set *model.StatementSet, kind model.StatementKind) []model.Statement {
	switch kind {
	case model.KindIncome:
		return set.Income
	case model.KindBalance:
		return set.Balance
	case model.KindCashFlow:
		return set.CashFlow
	default:
		return set.Ratios
	}
}
