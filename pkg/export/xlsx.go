// Package export writes a displayed schedule to spreadsheet and calendar
// formats.
package export

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/xuri/excelize/v2"

	"tableflip.dev/termwise/pkg/course"
	"tableflip.dev/termwise/pkg/layout"
	"tableflip.dev/termwise/pkg/timeutil"
)

// SlotMinutes is the height of one spreadsheet row.
const SlotMinutes = 30

const sheetName = "Schedule"

// ErrEmptySchedule is returned when there is nothing to export.
var ErrEmptySchedule = errors.New("export: schedule is empty")

// Sheet is a laid-out schedule ready to be written.
type Sheet struct {
	Title   string
	Columns []string
	Window  timeutil.Window
	Cells   []layout.Cell
}

// NewSheet lays out courses with engine.
func NewSheet(engine *layout.Engine, title string, courses []course.ScheduledCourse) Sheet {
	return Sheet{
		Title:   title,
		Columns: engine.Columns(),
		Window:  engine.Config().Window,
		Cells:   engine.Layout(courses),
	}
}

var white = colorful.Color{R: 1, G: 1, B: 1}

// XLSX writes s as a weekday by time-slot grid. Each session is a merged,
// colour-filled block. Sessions that collide with an earlier block are
// listed inside that block instead.
func XLSX(w io.Writer, s Sheet) error {
	if len(s.Cells) == 0 {
		return ErrEmptySchedule
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("export: new sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("export: delete default sheet: %w", err)
	}

	slots := s.Window.Span() / SlotMinutes
	if s.Window.Span()%SlotMinutes != 0 {
		slots++
	}
	lastCol := colName(len(s.Columns))

	_ = f.SetColWidth(sheetName, "A", "A", 10)
	_ = f.SetColWidth(sheetName, "B", lastCol, 22)

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 13},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#2D3748"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	timeStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 9, Color: "#718096"},
		Alignment: &excelize.Alignment{Horizontal: "right", Vertical: "top"},
	})
	if err != nil {
		return err
	}

	_ = f.SetCellValue(sheetName, "A1", s.Title)
	_ = f.MergeCell(sheetName, "A1", lastCol+"1")
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	_ = f.SetCellValue(sheetName, "A2", "Time")
	for i, day := range s.Columns {
		_ = f.SetCellValue(sheetName, cell(colName(i+1), 2), day)
	}
	_ = f.SetCellStyle(sheetName, "A2", lastCol+"2", headerStyle)

	const firstRow = 3
	for i := 0; i < slots; i++ {
		at := timeutil.FromMinutes(s.Window.Start + i*SlotMinutes)
		_ = f.SetCellValue(sheetName, cell("A", firstRow+i), at.Format12())
	}
	_ = f.SetCellStyle(sheetName, cell("A", firstRow), cell("A", firstRow+slots-1), timeStyle)

	// anchor[col][row] is the top-left cell of the block occupying a slot.
	anchor := make(map[int]map[int]string)
	styles := make(map[string]int)

	for _, c := range s.Cells {
		start := s.Window.Clamp(c.Start.Minutes()) - s.Window.Start
		end := s.Window.Clamp(c.End.Minutes()) - s.Window.Start
		if end <= start {
			continue
		}
		top := firstRow + start/SlotMinutes
		bottom := firstRow + (end+SlotMinutes-1)/SlotMinutes - 1
		col := colName(c.Column + 1)
		text := blockText(c)

		if anchor[c.Column] == nil {
			anchor[c.Column] = make(map[int]string)
		}
		if existing := firstOccupied(anchor[c.Column], top, bottom); existing != "" {
			prev, _ := f.GetCellValue(sheetName, existing)
			_ = f.SetCellValue(sheetName, existing, prev+"\n+ "+c.CourseCode)
			continue
		}

		topCell := cell(col, top)
		bottomCell := cell(col, bottom)
		for r := top; r <= bottom; r++ {
			anchor[c.Column][r] = topCell
		}

		hex := strings.ToUpper(c.Color.Flatten(white).Hex())
		style, ok := styles[hex]
		if !ok {
			style, err = f.NewStyle(&excelize.Style{
				Font:      &excelize.Font{Bold: !c.Required, Size: 9, Color: "#FFFFFF"},
				Fill:      excelize.Fill{Type: "pattern", Color: []string{hex}, Pattern: 1},
				Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "top", WrapText: true},
			})
			if err != nil {
				return err
			}
			styles[hex] = style
		}

		_ = f.SetCellValue(sheetName, topCell, text)
		if bottom > top {
			if err := f.MergeCell(sheetName, topCell, bottomCell); err != nil {
				return fmt.Errorf("export: merge %s:%s: %w", topCell, bottomCell, err)
			}
		}
		_ = f.SetCellStyle(sheetName, topCell, bottomCell, style)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("export: write xlsx: %w", err)
	}
	return nil
}

func blockText(c layout.Cell) string {
	lines := []string{c.CourseCode}
	if c.Label != "" {
		lines = append(lines, c.Label)
	}
	lines = append(lines, timeutil.FormatRange(c.Start, c.End))
	if c.Instructor != "" {
		lines = append(lines, c.Instructor)
	}
	return strings.Join(lines, "\n")
}

func firstOccupied(rows map[int]string, top, bottom int) string {
	for r := top; r <= bottom; r++ {
		if a, ok := rows[r]; ok {
			return a
		}
	}
	return ""
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
