// Package report builds scheduled XLSX summaries of the active dataset and
// optionally mails them out.
package report

import (
	"errors"

	"DataScope/src/descriptive"
	"DataScope/src/table"

	"github.com/xuri/excelize/v2"
)

// BuildWorkbook renders the dataset into a workbook: an Overview sheet with
// shape and per-column metadata, plus Numerical and Categorical summary
// sheets when the dataset has matching columns.
func BuildWorkbook(t table.Table, name string) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := writeOverview(f, t, name); err != nil {
		return nil, err
	}
	if err := writeNumerical(f, t); err != nil {
		return nil, err
	}
	if err := writeCategorical(f, t); err != nil {
		return nil, err
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}
	return f, nil
}

func writeOverview(f *excelize.File, t table.Table, name string) error {
	const sheet = "Overview"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)

	rows := [][]any{
		{"dataset", name},
		{"rows", t.NumRow()},
		{"columns", t.NumCol()},
		{},
		{"column", "type", "non-null", "unique"},
	}
	df := t.DataFrame()
	types := df.Types()
	for i, col := range t.Columns() {
		vals, _ := t.Column(col)
		nonNull := 0
		for _, v := range vals {
			if v != nil {
				nonNull++
			}
		}
		rows = append(rows, []any{col, string(types[i]), nonNull, descriptive.DistinctCount(t, col)})
	}
	return setRows(f, sheet, rows)
}

func writeNumerical(f *excelize.File, t table.Table) error {
	res, err := descriptive.NumericalSummary(t, -1)
	if errors.Is(err, descriptive.ErrNoNumericColumns) {
		return nil
	}
	if err != nil {
		return err
	}
	return writeSplitSheet(f, "Numerical", table.Encode(res))
}

func writeCategorical(f *excelize.File, t table.Table) error {
	st, err := descriptive.CategoricalSummary(t)
	if errors.Is(err, descriptive.ErrNoCategoricalColumns) {
		return nil
	}
	if err != nil {
		return err
	}
	return writeSplitSheet(f, "Categorical", st)
}

func writeSplitSheet(f *excelize.File, sheet string, st table.SplitTable) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	header := make([]any, 0, len(st.Columns)+1)
	header = append(header, "stat")
	for _, c := range st.Columns {
		header = append(header, c)
	}
	rows := [][]any{header}
	for i, dataRow := range st.Data {
		row := make([]any, 0, len(dataRow)+1)
		row = append(row, st.Index[i])
		row = append(row, dataRow...)
		rows = append(rows, row)
	}
	return setRows(f, sheet, rows)
}

func setRows(f *excelize.File, sheet string, rows [][]any) error {
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}
