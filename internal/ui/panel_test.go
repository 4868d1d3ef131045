package ui

import (
	"strings"
	"testing"

	"github.com/idilsaglam/todos/internal/model"
)

func TestProgressBar(t *testing.T) {
	tests := []struct {
		done, total, width int
		want               string
	}{
		{0, 0, 10, "░░░░░░░░░░   0%"},
		{1, 2, 10, "█████░░░░░  50%"},
		{2, 2, 5, "█████ 100%"},
		{1, 1, 1, "█████ 100%"},
	}
	for _, tt := range tests {
		if got := ProgressBar(tt.done, tt.total, tt.width); got != tt.want {
			t.Errorf("ProgressBar(%d,%d,%d): got %q, want %q", tt.done, tt.total, tt.width, got, tt.want)
		}
	}
}

func TestItemLinesNumbersAndTruncates(t *testing.T) {
	th := ThemeByName("mono")
	long := strings.Repeat("x", 100)
	lines := th.ItemLines([]model.Item{{Body: "first"}, {Body: long, Completed: true}})
	if len(lines) != 2 {
		t.Fatalf("got %d lines", len(lines))
	}
	if lines[0] != " 1. [ ] first" {
		t.Errorf("line 0: got %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], " 2. [x] ") || !strings.HasSuffix(lines[1], "...") {
		t.Errorf("line 1: got %q", lines[1])
	}
}

func TestGroupLines(t *testing.T) {
	th := ThemeByName("mono")
	items := []model.Item{{Body: "p1"}, {Body: "d1", Completed: true}, {Body: "p2"}}
	out := strings.Join(th.GroupLines(items), "\n")
	pend, done := strings.Index(out, "Pending"), strings.Index(out, "Done")
	if pend < 0 || done < 0 || pend > done {
		t.Fatalf("sections out of order:\n%s", out)
	}
	if p1, p2 := strings.Index(out, "p1"), strings.Index(out, "p2"); !(pend < p1 && p1 < p2 && p2 < done) {
		t.Errorf("pending items misplaced:\n%s", out)
	}
	if d1 := strings.Index(out, "d1"); d1 < done {
		t.Errorf("done item misplaced:\n%s", out)
	}

	empty := strings.Join(th.GroupLines(nil), "\n")
	if strings.Count(empty, "(none)") != 2 {
		t.Errorf("expected two empty sections:\n%s", empty)
	}
}

func TestHeaderCounts(t *testing.T) {
	th := ThemeByName("mono")
	h := th.Header([]model.Item{{Completed: true}, {}, {}})
	if !strings.Contains(h, "x 1") || !strings.Contains(h, "- 2") || !strings.Contains(h, "Total 3") {
		t.Errorf("header: %q", h)
	}
}

func TestThemeByNameFallsBack(t *testing.T) {
	if got := ThemeByName("nope").Name; got != "classic" {
		t.Errorf("got %q, want classic", got)
	}
	if got := ThemeByName("NEON").Name; got != "neon" {
		t.Errorf("got %q, want neon", got)
	}
}
