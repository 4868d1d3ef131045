package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/idilsaglam/todos/internal/model"
)

// maxBodyWidth truncates long bodies in list rows.
const maxBodyWidth = 80

// ProgressBar renders a Unicode progress bar with percentage.
func ProgressBar(done, total, width int) string {
	if total <= 0 {
		total = 1
	}
	if width < 5 {
		width = 5
	}
	filled := int(float64(done) / float64(total) * float64(width))
	if filled > width {
		filled = width
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	pct := int(float64(done) / float64(total) * 100)
	return fmt.Sprintf("%s %3d%%", bar, pct)
}

// Panel frames lines with the theme's border.
func (t Theme) Panel(lines []string) string {
	return t.box().Render(strings.Join(lines, "\n"))
}

// Header is the title line with live counts.
func (t Theme) Header(items []model.Item) string {
	d, p := stats(items)
	return fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		t.Title.Render("Todos"),
		t.Success.Render(t.SymDone), d,
		t.Pending.Render(t.SymPending), p,
		t.Accent.Render("Total"), len(items),
	)
}

// ItemLines renders one numbered row per item, in order.
func (t Theme) ItemLines(items []model.Item) []string {
	if len(items) == 0 {
		return []string{t.Muted.Render("no items")}
	}
	out := make([]string, 0, len(items))
	for i, it := range items {
		out = append(out, t.itemLine(i+1, it, maxBodyWidth))
	}
	return out
}

func (t Theme) itemLine(n int, it model.Item, width int) string {
	idx := t.Muted.Render(fmt.Sprintf("%2d.", n))
	box := t.Muted.Render(t.BoxUnchecked)
	body := truncate(it.Body, width)
	if it.Completed {
		box = t.Success.Render(t.BoxChecked)
		body = t.Done.Render(body)
	}
	return fmt.Sprintf("%s %s %s", idx, box, body)
}

// GroupLines splits items into pending and done sections, keeping order
// within each.
func (t Theme) GroupLines(items []model.Item) []string {
	var pend, done []model.Item
	for _, it := range items {
		if it.Completed {
			done = append(done, it)
		} else {
			pend = append(pend, it)
		}
	}
	var lines []string
	lines = append(lines, t.Accent.Render("Pending"))
	if len(pend) == 0 {
		lines = append(lines, t.Muted.Render("(none)"))
	} else {
		lines = append(lines, t.ItemLines(pend)...)
	}
	lines = append(lines, "")
	lines = append(lines, t.Accent.Render("Done"))
	if len(done) == 0 {
		lines = append(lines, t.Muted.Render("(none)"))
	} else {
		lines = append(lines, t.ItemLines(done)...)
	}
	return lines
}

// OK prints a success line.
func (t Theme) OK(w io.Writer, msg string) {
	fmt.Fprintln(w, t.Success.Render(t.SymOK+" "+msg))
}

// Fail prints an error line.
func (t Theme) Fail(w io.Writer, msg string) {
	fmt.Fprintln(w, t.Error.Render(t.SymFail+" "+msg))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// small list stats used for the header
func stats(items []model.Item) (done, pending int) {
	for _, it := range items {
		if it.Completed {
			done++
		} else {
			pending++
		}
	}
	return
}
