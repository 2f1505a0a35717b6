package services

import (
	"bytes"
	"fmt"

	"github.com/jacksonlee411/people-console/modules/personnel/domain/fieldmeta"
	"github.com/xuri/excelize/v2"
)

const rosterSheet = "花名册"

var rosterBaseHeader = []string{"姓名", "邮箱", "部门", "状态"}

type Roster struct {
	Header []string
	Rows   [][]string
}

// BuildRoster lays out one row per person and one column per definition, in
// key order. Values the viewer may not see for that person are masked.
func BuildRoster(people []Person, defs []fieldmeta.FieldDefinition, viewerRoles []string, visibleKeys map[string][]string) Roster {
	sorted := fieldmeta.SortByKey(defs)
	header := make([]string, 0, len(rosterBaseHeader)+len(sorted))
	header = append(header, rosterBaseHeader...)
	for _, d := range sorted {
		header = append(header, d.DisplayLabel())
	}

	rows := make([][]string, 0, len(people))
	for _, p := range people {
		vis := fieldmeta.NewVisibilitySet(viewerRoles, visibleKeys[p.ID])
		values := fieldmeta.IndexValues(p.Values)
		status := "离职"
		if p.IsActive {
			status = "在职"
		}
		row := make([]string, 0, len(header))
		row = append(row, p.Name, p.Email, p.Department, status)
		for _, d := range sorted {
			v, ok := values[d.Key]
			if !ok {
				row = append(row, "")
				continue
			}
			row = append(row, fieldmeta.Render(v, vis.Visible(d.Key)))
		}
		rows = append(rows, row)
	}
	return Roster{Header: header, Rows: rows}
}

// WriteXLSX renders the roster as a single-sheet workbook with a frozen header.
func WriteXLSX(r Roster) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	index, err := f.NewSheet(rosterSheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	if err := writeRow(f, 1, r.Header); err != nil {
		return nil, err
	}
	if len(r.Header) > 0 {
		last, err := excelize.CoordinatesToCellName(len(r.Header), 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(rosterSheet, "A1", last, headerStyle); err != nil {
			return nil, fmt.Errorf("set header style: %w", err)
		}
	}
	for i, row := range r.Rows {
		if err := writeRow(f, i+2, row); err != nil {
			return nil, err
		}
	}

	if err := f.SetPanes(rosterSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("freeze header: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(rosterSheet, cell, &cells); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}
