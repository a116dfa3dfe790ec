package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tableflip.dev/termwise/pkg/course"
	"tableflip.dev/termwise/pkg/layout"
)

// Format is an output file type.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatICS  Format = "ics"
)

// ParseFormat accepts a format name or a file name ending in one.
func ParseFormat(s string) (Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(s), "."))
	if ext == "" {
		ext = strings.ToLower(strings.TrimSpace(s))
	}
	switch Format(ext) {
	case FormatXLSX:
		return FormatXLSX, nil
	case FormatICS:
		return FormatICS, nil
	}
	return "", fmt.Errorf("export: unknown format %q (expected .xlsx or .ics)", s)
}

// Write renders courses in format f.
func Write(w io.Writer, f Format, engine *layout.Engine, term Term, courses []course.ScheduledCourse, now time.Time) error {
	switch f {
	case FormatXLSX:
		return XLSX(w, NewSheet(engine, term.Label, courses))
	case FormatICS:
		return ICS(w, courses, term, now)
	}
	return fmt.Errorf("export: unknown format %q", f)
}

// WriteFile picks the format from path's extension and writes the file.
// Nothing is left behind on failure.
func WriteFile(path string, engine *layout.Engine, term Term, courses []course.ScheduledCourse, now time.Time) error {
	f, err := ParseFormat(path)
	if err != nil {
		return err
	}
	if len(courses) == 0 {
		return ErrEmptySchedule
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := Write(out, f, engine, term, courses, now); err != nil {
		_ = out.Close()
		_ = os.Remove(path)
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}
