package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/todos/internal/model"
)

// todoItem adapts model.Item to bubbles/list.Item.
type todoItem struct{ item model.Item }

func (i todoItem) FilterValue() string { return i.item.Body }

func listItems(todos []model.Item) []list.Item {
	out := make([]list.Item, len(todos))
	for i, it := range todos {
		out[i] = todoItem{item: it}
	}
	return out
}

// itemDelegate draws one numbered row per item and marks the cursor row.
type itemDelegate struct{ theme Theme }

func (d itemDelegate) Height() int                             { return 1 }
func (d itemDelegate) Spacing() int                            { return 0 }
func (d itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d itemDelegate) Render(w io.Writer, m list.Model, index int, li list.Item) {
	it, ok := li.(todoItem)
	if !ok {
		return
	}
	prefix := "  "
	if index == m.Index() {
		prefix = d.theme.Selected.Render(">") + " "
	}
	fmt.Fprint(w, prefix+d.theme.itemLine(index+1, it.item, bodyWidth(m.Width())))
}

// bodyWidth leaves room for the cursor, index and checkbox columns.
func bodyWidth(listWidth int) int {
	if listWidth <= 0 {
		return maxBodyWidth
	}
	return min(max(listWidth-12, 10), maxBodyWidth)
}

func newTodoList(t Theme) list.Model {
	l := list.New(nil, itemDelegate{theme: t}, 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.SetShowPagination(true)
	l.DisableQuitKeybindings()
	l.SetStatusBarItemName("item", "items")
	l.Styles.PaginationStyle = t.Help
	l.Styles.NoItems = t.Muted
	return l
}
