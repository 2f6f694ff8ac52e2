package report

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	reportSheet = "Report"
	errorsSheet = "Errors"
)

// XLSX writes the report as a spreadsheet. Failed pairs go to a separate
// Errors sheet, which is only present when there are failures.
type XLSX struct {
	path string
}

func NewXLSX(path string) *XLSX {
	return &XLSX{path: path}
}

func (x *XLSX) Path() string {
	return x.path
}

func (x *XLSX) Write(ctx context.Context, r *Report) error {
	if err := ctx.Err(); err != nil {
		return &SinkError{Target: x.path, Err: err}
	}

	err := writeAtomic(x.path, func(tmp string) error {
		f := excelize.NewFile()
		defer f.Close()

		if err := f.SetSheetName(f.GetSheetName(0), reportSheet); err != nil {
			return err
		}
		if err := setRow(f, reportSheet, 1, toAny(Columns)); err != nil {
			return err
		}
		for i, res := range r.Results {
			row := []interface{}{res.LeftName, res.RightName, res.Similarity}
			if err := setRow(f, reportSheet, i+2, row); err != nil {
				return err
			}
		}

		if len(r.Failures) > 0 {
			if _, err := f.NewSheet(errorsSheet); err != nil {
				return err
			}
			if err := setRow(f, errorsSheet, 1, toAny(ErrorColumns)); err != nil {
				return err
			}
			for i, row := range r.failureRows() {
				if err := setRow(f, errorsSheet, i+2, toAny(row)); err != nil {
					return err
				}
			}
		}

		return f.SaveAs(tmp)
	})
	if err != nil {
		return &SinkError{Target: x.path, Err: err}
	}
	return nil
}

// Discard removes the spreadsheet.
func (x *XLSX) Discard(ctx context.Context) error {
	return removeIfExists(x.path)
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("sheet %s row %d: %w", sheet, row, err)
	}
	return nil
}

func toAny(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
