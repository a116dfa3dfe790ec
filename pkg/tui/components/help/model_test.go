package help

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss/v2"
)

func TestViewFitsSize(t *testing.T) {
	m := New(40, 12)
	view := m.View()
	if w := lipgloss.Width(view); w < 40 || w > 42 {
		t.Fatalf("width = %d, want about 40", w)
	}
	if h := lipgloss.Height(view); h < 12 || h > 14 {
		t.Fatalf("height = %d, want about 12", h)
	}
	if !strings.Contains(view, "Keys") {
		t.Fatalf("expected first section heading; view=%q", view)
	}
}

func TestSetSizeClamps(t *testing.T) {
	m := New(0, 0)
	if m.width != 32 || m.height != 8 {
		t.Fatalf("size = %dx%d, want 32x8", m.width, m.height)
	}
}

func TestRenderWrapsDescriptions(t *testing.T) {
	m := New(80, 20, Section{Title: "Demo", Entries: []Entry{
		{"x", "one two three four five six seven eight nine ten"},
		{"long-name", "short"},
	}})
	out := m.render(24)
	lines := strings.Split(out, "\n")
	if len(lines) < 4 {
		t.Fatalf("expected the long description to wrap; got %q", out)
	}
	// Continuation lines line up under the description column.
	if !strings.HasPrefix(lines[2], strings.Repeat(" ", len("long-name")+2)) {
		t.Fatalf("continuation not indented: %q", lines[2])
	}
}
