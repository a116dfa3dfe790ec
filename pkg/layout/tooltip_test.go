package layout

import (
	"strings"
	"testing"

	"tableflip.dev/termwise/pkg/timeutil"
)

func testCell(required bool) Cell {
	c := Cell{
		CourseCode:   "COMP1405",
		Title:        "Intro to CS",
		DisplayTitle: "Intro to CS",
		Instructor:   "Ada",
		SectionType:  "In-Person",
		Start:        timeutil.ParseClock("8:30 AM"),
		End:          timeutil.ParseClock("9:20 AM"),
	}
	if required {
		c.CourseCode = "COMP1405T1"
		c.Title = "Tutorial"
		c.Required = true
		c.RequiredFor = "COMP1405"
	}
	return c
}

func TestTooltipTentativePosition(t *testing.T) {
	tip := BeginTooltip(testCell(false), Point{X: 40, Y: 20})
	if tip.Pos != (Point{X: 50, Y: 30}) {
		t.Fatalf("unexpected tentative position %+v", tip.Pos)
	}
	if tip.Measured {
		t.Fatalf("tentative tooltip should not be measured")
	}
}

func TestTooltipCorrect(t *testing.T) {
	bounds := Bounds{
		Viewport:  Box{W: 100, H: 60},
		Container: Rect{X: 0, Y: 0, W: 100, H: 60},
	}
	tests := []struct {
		name    string
		pointer Point
		box     Box
		want    Point
	}{
		{"fits", Point{10, 10}, Box{20, 10}, Point{20, 20}},
		{"flip up", Point{10, 50}, Box{20, 10}, Point{20, 30}},
		{"flip left", Point{90, 10}, Box{20, 10}, Point{60, 20}},
		{"flip both", Point{90, 50}, Box{20, 10}, Point{60, 30}},
		{"clamp top", Point{10, 45}, Box{20, 58}, Point{20, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tip := BeginTooltip(testCell(false), tt.pointer).Correct(tt.box, bounds)
			if tip.Pos != tt.want {
				t.Fatalf("got %+v want %+v", tip.Pos, tt.want)
			}
			if !tip.Measured {
				t.Fatalf("expected measured tooltip")
			}
		})
	}
}

func TestTooltipClampInsideSmallerContainer(t *testing.T) {
	bounds := Bounds{
		Viewport:  Box{W: 200, H: 200},
		Container: Rect{X: 0, Y: 5, W: 200, H: 40},
	}
	tip := BeginTooltip(testCell(false), Point{X: 10, Y: 35}).Correct(Box{W: 20, H: 10}, bounds)
	if tip.Pos.Y != 35 {
		t.Fatalf("expected bottom clamp to 35, got %d", tip.Pos.Y)
	}
	tip = tip.Move(Point{X: 10, Y: 0})
	if tip.Measured || tip.Pos.Y != 10 {
		t.Fatalf("move should reset to tentative position, got %+v", tip)
	}
	tip = tip.Correct(Box{W: 20, H: 10}, bounds)
	if tip.Pos.Y != 10 {
		t.Fatalf("unexpected corrected y %d", tip.Pos.Y)
	}
}

func TestTooltipLines(t *testing.T) {
	lecture := strings.Join(TooltipLines(testCell(false)), "\n")
	for _, want := range []string{"COMP1405", "Intro to CS", "8:30 AM - 9:20 AM", "In-Person", "Instructor: Ada"} {
		if !strings.Contains(lecture, want) {
			t.Errorf("expected %q in lecture tooltip", want)
		}
	}
	if strings.Contains(lecture, "Associated with") {
		t.Errorf("lecture should not be associated")
	}

	c := testCell(true)
	lines := TooltipLines(c)
	if lines[3] != "In-Person (Tutorial/Lab)" {
		t.Errorf("unexpected section line %q", lines[3])
	}
	if lines[len(lines)-1] != "Associated with: COMP1405" {
		t.Errorf("unexpected association line %q", lines[len(lines)-1])
	}
	if lines[1] != "Intro to CS" {
		t.Errorf("required session should show parent title, got %q", lines[1])
	}
}

func TestTooltipWithOffset(t *testing.T) {
	tip := BeginTooltip(testCell(false), Point{X: 4, Y: 2}).WithOffset(1)
	if tip.Pos != (Point{X: 5, Y: 3}) {
		t.Fatalf("unexpected position %+v", tip.Pos)
	}
	bounds := Bounds{Viewport: Box{W: 20, H: 10}, Container: Rect{W: 20, H: 10}}
	tip = tip.Correct(Box{W: 18, H: 3}, bounds)
	if tip.Pos != (Point{X: -15, Y: 3}) {
		t.Fatalf("expected horizontal flip with the smaller offset, got %+v", tip.Pos)
	}
}
