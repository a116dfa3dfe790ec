package overlay

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss/v2"
)

func TestAt(t *testing.T) {
	bg := "abcdefgh\nijklmnop\nqrstuvwx"
	tests := map[string]struct {
		x, y int
		want string
	}{
		"inside": {
			x: 2, y: 1,
			want: "abcdefgh\nijXYmnop\nqrZZuvwx",
		},
		"clipped right": {
			x: 7, y: 0,
			want: "abcdefgX\nijklmnoZ\nqrstuvwx",
		},
		"clipped left": {
			x: -1, y: 0,
			want: "Ybcdefgh\nZjklmnop\nqrstuvwx",
		},
		"clipped bottom": {
			x: 0, y: 2,
			want: "abcdefgh\nijklmnop\nXYstuvwx",
		},
		"off screen": {
			x: 9, y: 0,
			want: bg,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := At(bg, 8, 3, "XY\nZZ", tc.x, tc.y); got != tc.want {
				t.Fatalf("expected\n%s\ngot\n%s", tc.want, got)
			}
		})
	}
}

func TestAtKeepsStyledBackground(t *testing.T) {
	bold := lipgloss.NewStyle().Bold(true)
	bg := bold.Render("abcdefgh")
	got := At(bg, 8, 1, "XY", 3, 0)
	if lipgloss.Width(got) != 8 {
		t.Fatalf("expected width 8, got %d (%q)", lipgloss.Width(got), got)
	}
	if !strings.Contains(got, "XY") {
		t.Fatalf("expected overlay text, got %q", got)
	}
}

func TestCompose(t *testing.T) {
	blank := strings.Repeat(" ", 8) + "\n" + strings.Repeat(" ", 8) + "\n" + strings.Repeat(" ", 8)
	tests := map[string]struct {
		placement Placement
		row, col  int
	}{
		"center": {
			placement: Placement{},
			row:       1, col: 3,
		},
		"bottom right": {
			placement: Placement{Horizontal: lipgloss.Right, Vertical: lipgloss.Bottom, MarginX: 1},
			row:       2, col: 5,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			lines := strings.Split(Compose(blank, 8, 3, "XY", tc.placement), "\n")
			if len(lines) != 3 {
				t.Fatalf("expected 3 lines, got %d", len(lines))
			}
			if got := strings.Index(lines[tc.row], "XY"); got != tc.col {
				t.Fatalf("expected XY at %d:%d, got %q", tc.row, tc.col, lines)
			}
		})
	}
}

func TestComposePadsBackground(t *testing.T) {
	got := Compose("ab", 4, 2, "", Placement{})
	if got != "ab  \n    " {
		t.Fatalf("unexpected background %q", got)
	}
}
