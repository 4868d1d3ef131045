// Package ui renders to-do lists: the interactive Bubble Tea view and the
// plain panels used by one-shot commands.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/idilsaglam/todos/internal/model"
	"github.com/idilsaglam/todos/internal/store"
	"github.com/idilsaglam/todos/internal/store/remote"
)

// Phase is the list's fetch state.
type Phase int

const (
	Loading Phase = iota
	Loaded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Messages produced by store commands.
type todosLoadedMsg struct{ items []model.Item }

type todosLoadFailedMsg struct{ err error }

type todoCreatedMsg struct{ item model.Item }

type todoCreateFailedMsg struct {
	draft draft
	err   error
}

// draft is a create request kept around so a failed one can be resent.
type draft struct {
	body      string
	completed bool
}

// Options configure a list view.
type Options struct {
	Store store.Store

	// RefreshOnCreate refetches the whole list after a successful create
	// in addition to appending the created item.
	RefreshOnCreate bool
	Theme           Theme
	Logger          *log.Logger
}

// Model is the interactive list view. The store is only called from
// commands returned by Init and Update; View never does I/O.
type Model struct {
	ctx             context.Context
	store           store.Store
	refreshOnCreate bool
	theme           Theme
	logger          *log.Logger
	keys            keyMap

	phase   Phase
	todos   []model.Item
	list    list.Model
	loadErr error

	// Inline create form
	adding    bool
	completed bool // flag for the item being drafted
	form      textinput.Model

	creating  int    // creates in flight
	failed    *draft // last create that failed
	createErr error

	spinner spinner.Model
	help    help.Model
	width   int
	height  int
}

// Rows and columns taken by the outer box border and padding.
const (
	frameRows = 2
	frameCols = 4
)

// New builds a view in the Loading phase. ctx bounds every store call.
func New(ctx context.Context, opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.Theme.Name == "" {
		opts.Theme = ThemeByName("")
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "What needs doing?"
	ti.CharLimit = 500

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(opts.Theme.Accent),
	)

	h := help.New()
	h.Styles.ShortKey = opts.Theme.Help
	h.Styles.ShortDesc = opts.Theme.Help

	return Model{
		ctx:             ctx,
		store:           opts.Store,
		refreshOnCreate: opts.RefreshOnCreate,
		theme:           opts.Theme,
		logger:          opts.Logger,
		keys:            defaultKeyMap(),
		phase:           Loading,
		todos:           []model.Item{},
		list:            newTodoList(opts.Theme),
		form:            ti,
		spinner:         sp,
		help:            h,
	}
}

// Phase reports the fetch state.
func (m Model) Phase() Phase { return m.phase }

// Todos returns the displayed items in order.
func (m Model) Todos() []model.Item { return m.todos }

// Run starts the program on the alternate screen and blocks until quit.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(New(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Init fetches the list on mount.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, fetchTodos(m.ctx, m.store))
}

// fetchTodos and createTodo capture what they need; they never touch the model.
func fetchTodos(ctx context.Context, s store.Store) tea.Cmd {
	return func() tea.Msg {
		items, err := s.ListAll(ctx)
		if err != nil {
			return todosLoadFailedMsg{err: err}
		}
		return todosLoadedMsg{items: items}
	}
}

func createTodo(ctx context.Context, s store.Store, d draft) tea.Cmd {
	return func() tea.Msg {
		it, err := s.Create(ctx, d.body, d.completed)
		if err != nil {
			return todoCreateFailedMsg{draft: d, err: err}
		}
		return todoCreatedMsg{item: it}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	return next.layout(), cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case todosLoadedMsg:
		m.logger.Debug("todos loaded", "count", len(msg.items))
		m.phase = Loaded
		m.loadErr = nil
		if msg.items == nil {
			msg.items = []model.Item{}
		}
		m.setTodos(msg.items)
		return m, nil

	case todosLoadFailedMsg:
		m.logger.Error("list todos failed", "err", msg.err)
		m.phase = Failed
		m.loadErr = msg.err
		return m, nil

	case todoCreatedMsg:
		m.logger.Debug("todo created", "id", msg.item.ID)
		m.creating--
		m.setTodos(appendItem(m.todos, msg.item))
		if m.refreshOnCreate {
			return m.reload()
		}
		return m, nil

	case todoCreateFailedMsg:
		m.logger.Error("create todo failed", "err", msg.err)
		m.creating--
		d := msg.draft
		m.failed = &d
		m.createErr = msg.err
		return m, nil

	case spinner.TickMsg:
		if m.phase != Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.adding {
			return m.updateForm(msg)
		}
		return m.updateList(msg)
	}

	if m.adding {
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Add):
		m.adding = true
		m.completed = false
		m.form.SetValue("")
		return m, m.form.Focus()
	case key.Matches(msg, m.keys.Reload):
		return m.reload()
	case key.Matches(msg, m.keys.Resend):
		if m.failed == nil {
			return m, nil
		}
		d := *m.failed
		return m.submit(d)
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateForm(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	case key.Matches(msg, m.keys.Submit):
		d := draft{body: m.form.Value(), completed: m.completed}
		m = m.closeForm()
		return m.submit(d)
	case key.Matches(msg, m.keys.Toggle):
		m.completed = !m.completed
		return m, nil
	case key.Matches(msg, m.keys.Cancel):
		return m.closeForm(), nil
	}
	var cmd tea.Cmd
	m.form, cmd = m.form.Update(msg)
	return m, cmd
}

func (m Model) closeForm() Model {
	m.adding = false
	m.completed = false
	m.form.SetValue("")
	m.form.Blur()
	return m
}

func (m Model) submit(d draft) (Model, tea.Cmd) {
	m.creating++
	m.failed = nil
	m.createErr = nil
	return m, createTodo(m.ctx, m.store, d)
}

func (m Model) reload() (Model, tea.Cmd) {
	m.phase = Loading
	m.loadErr = nil
	return m, tea.Batch(m.spinner.Tick, fetchTodos(m.ctx, m.store))
}

func (m *Model) setTodos(items []model.Item) {
	m.todos = items
	m.list.SetItems(listItems(items))
}

// layout gives the list whatever height the header and footer leave. Before
// the first WindowSizeMsg the list is tall enough for every item.
func (m Model) layout() Model {
	h := len(m.todos) + 1
	if m.height > 0 {
		h = m.height - frameRows -
			lipgloss.Height(strings.Join(m.headerLines(), "\n")) -
			lipgloss.Height(strings.Join(m.footerLines(), "\n"))
	}
	m.list.SetSize(max(m.width-frameCols, 0), max(h, 2))
	// SetItems refreshes the paging key bindings for the new page count.
	m.list.SetItems(m.list.Items())
	return m
}

// appendItem returns a new slice; todos is never written to. An item whose
// id is already listed (a refetch got there first) is not added twice.
func appendItem(todos []model.Item, it model.Item) []model.Item {
	if !it.ID.IsZero() {
		for _, t := range todos {
			if t.ID == it.ID {
				return todos
			}
		}
	}
	out := make([]model.Item, len(todos), len(todos)+1)
	copy(out, todos)
	return append(out, it)
}

func (m Model) View() string {
	parts := m.headerLines()
	if len(m.todos) > 0 {
		parts = append(parts, m.list.View())
	} else if m.phase == Loaded {
		parts = append(parts, m.theme.Muted.Render("no items"))
	}
	parts = append(parts, m.footerLines()...)
	return m.theme.box().Render(strings.Join(parts, "\n"))
}

func (m Model) headerLines() []string {
	t := m.theme
	d, _ := stats(m.todos)
	lines := []string{
		t.Header(m.todos),
		t.Muted.Render(ProgressBar(d, len(m.todos), 28)),
		"",
	}
	switch m.phase {
	case Loading:
		lines = append(lines, m.spinner.View()+" "+t.Muted.Render("Loading todos..."))
	case Failed:
		lines = append(lines,
			t.Error.Render(t.SymFail+" could not load todos: "+describeErr(m.loadErr)),
			t.Muted.Render("press r to retry"),
		)
	}
	if m.phase != Loaded && len(m.todos) > 0 {
		lines = append(lines, "")
	}
	return lines
}

func (m Model) footerLines() []string {
	t := m.theme
	var lines []string
	if m.creating > 0 {
		lines = append(lines, "", t.Muted.Render(fmt.Sprintf("saving %d item(s)...", m.creating)))
	}
	if m.createErr != nil {
		lines = append(lines, "",
			t.Error.Render(t.SymFail+" could not create todo: "+describeErr(m.createErr)),
			t.Muted.Render("press R to retry"),
		)
	}
	if m.adding {
		return append(lines, m.formView(), m.help.View(formKeys{m.keys}))
	}
	return append(lines, "", m.help.View(m.keys))
}

func (m Model) formView() string {
	t := m.theme
	box := t.Muted.Render(t.BoxUnchecked)
	if m.completed {
		box = t.Success.Render(t.BoxChecked)
	}
	title := "Add new item  " + box + " done"
	return t.box().Render(title + "\n" + m.form.View())
}

// describeErr names the failure kind for the error banner.
func describeErr(err error) string {
	var te *remote.TransportError
	var se *remote.ServerError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &se):
		return fmt.Sprintf("server error (%d)", se.StatusCode)
	case errors.As(err, &te):
		return "network error: " + te.Err.Error()
	default:
		return err.Error()
	}
}
