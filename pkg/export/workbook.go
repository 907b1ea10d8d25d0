package export

import (
	"bytes"
	"fmt"

	"github.com/classon/classon/pkg/timetable"
	"github.com/classon/classon/pkg/weekday"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Timetable"

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

// buildWorkbook lays out one row per period and one column per weekday. A cell lists the classes
// of that day starting with the period.
func buildWorkbook(periods []timetable.Period, days []weekday.Weekday) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	_ = f.SetCellValue(sheetName, cell(1, 1), "Period")
	_ = f.SetCellValue(sheetName, cell(2, 1), "Time")
	for i, d := range days {
		_ = f.SetCellValue(sheetName, cell(3+i, 1), d.Label.String())
	}
	lastCol := 2 + len(days)
	_ = f.SetCellStyle(sheetName, cell(1, 1), cell(lastCol, 1), headerStyle)
	_ = f.SetColWidth(sheetName, "A", "A", 8)
	_ = f.SetColWidth(sheetName, "B", "B", 14)
	if len(days) > 0 {
		first, _ := excelize.ColumnNumberToName(3)
		last, _ := excelize.ColumnNumberToName(lastCol)
		_ = f.SetColWidth(sheetName, first, last, 18)
	}

	for r, p := range periods {
		row := r + 2
		_ = f.SetCellValue(sheetName, cell(1, row), p.Index+1)
		_ = f.SetCellValue(sheetName, cell(2, row), fmt.Sprintf("%s-%s", timetable.ClockString(p.StartMinute), timetable.ClockString(p.EndMinute())))
		for i, d := range days {
			text := ""
			for _, c := range d.Classes {
				if c.StartMinute != p.StartMinute {
					continue
				}
				if text != "" {
					text += "\n"
				}
				text += c.Name
			}
			if text != "" {
				_ = f.SetCellValue(sheetName, cell(3+i, row), text)
			}
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf, nil
}
