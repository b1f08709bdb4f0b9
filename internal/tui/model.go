package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/projectdeck/internal/catalog"
	"github.com/fyrsmithlabs/projectdeck/internal/discovery"
	"github.com/fyrsmithlabs/projectdeck/internal/logging"
	"github.com/fyrsmithlabs/projectdeck/internal/project"
)

const (
	pageTitle    = "Projects"
	pageSubtitle = "Discover and join open-source projects using Bitcoin-based reputation"

	searchPlaceholder = "Search projects..."

	// chromeHeight is the number of lines used by everything except cards.
	chromeHeight = 9
)

// projectsFetchedMsg carries the outcome of the single catalog fetch.
type projectsFetchedMsg struct {
	projects []project.Project
	err      error
}

// Config wires a Model.
type Config struct {
	Fetcher   catalog.Fetcher
	Navigator Navigator
	Logger    *logging.Logger
	User      project.User

	// Engine sets the collation locale; nil uses English.
	Engine *discovery.Engine

	Query   string
	SortKey discovery.SortKey
}

// Model is the project discovery view.
type Model struct {
	state   *discovery.ViewState
	fetcher catalog.Fetcher
	nav     Navigator
	logger  *logging.Logger
	user    project.User

	ctx    context.Context
	cancel context.CancelFunc

	search  textinput.Model
	spinner spinner.Model
	help    help.Model
	keys    keyMap

	cursor int
	width  int
	height int

	navErr   error
	quitting bool
}

// New creates a Model. The fetch starts when the program calls Init.
func New(cfg Config) Model {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	opts := []discovery.Option{
		discovery.WithQuery(cfg.Query),
		discovery.WithSortKey(cfg.SortKey),
	}
	if cfg.Engine != nil {
		opts = append(opts, discovery.WithEngine(cfg.Engine))
	}

	ti := textinput.New()
	ti.Placeholder = searchPlaceholder
	ti.Prompt = "/ "
	ti.CharLimit = 128
	ti.SetValue(cfg.Query)
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	ctx, cancel := context.WithCancel(logging.WithViewerID(context.Background(), cfg.User.ID))

	return Model{
		state:   discovery.NewViewState(opts...),
		fetcher: cfg.Fetcher,
		nav:     cfg.Navigator,
		logger:  logger.Named("tui"),
		user:    cfg.User,
		ctx:     ctx,
		cancel:  cancel,
		search:  ti,
		spinner: sp,
		help:    help.New(),
		keys:    defaultKeyMap(),
	}
}

// State exposes the underlying view state.
func (m Model) State() *discovery.ViewState {
	return m.state
}

// Cursor returns the index of the selected card.
func (m Model) Cursor() int {
	return m.cursor
}

// Err returns the navigation error that ended the program, if any.
func (m Model) Err() error {
	return m.navErr
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(fetchProjects(m.ctx, m.fetcher), m.spinner.Tick, textinput.Blink)
}

func fetchProjects(ctx context.Context, f catalog.Fetcher) tea.Cmd {
	return func() tea.Msg {
		if f == nil {
			return projectsFetchedMsg{err: errors.New("no catalog fetcher configured")}
		}
		projects, err := f.FetchProjects(ctx)
		return projectsFetchedMsg{projects: projects, err: err}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.search.Width = max(msg.Width/2, 20)
		return m, nil

	case projectsFetchedMsg:
		m.settle(msg)
		return m, nil

	case spinner.TickMsg:
		if !m.state.Loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.search.Focused() {
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) settle(msg projectsFetchedMsg) {
	if err := m.state.Settle(msg.projects, msg.err); err != nil {
		m.logger.Debug(m.ctx, "dropping catalog result", zap.Error(err))
		return
	}

	if msg.err != nil {
		fields := []zap.Field{zap.Error(msg.err)}
		var fe *catalog.FetchError
		if errors.As(msg.err, &fe) {
			fields = append(fields,
				zap.Stringer("kind", fe.Kind),
				zap.Int("status", fe.Status))
		}
		m.logger.Warn(m.ctx, "catalog fetch failed", fields...)
	} else {
		m.logger.Debug(m.ctx, "catalog settled", zap.Int("count", len(msg.projects)))
	}
	m.clampCursor()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	focused := m.search.Focused()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Create):
		if m.nav != nil {
			if err := m.nav.Create(); err != nil {
				m.navErr = err
				m.logger.Warn(m.ctx, "create navigation failed", zap.Error(err))
			}
		}
		return m.quit()

	case key.Matches(msg, m.keys.Focus):
		if focused {
			m.search.Blur()
			return m, nil
		}
		return m, m.search.Focus()

	case key.Matches(msg, m.keys.NextSort):
		m.setSort(m.state.SortKey().Next())
		return m, nil

	case key.Matches(msg, m.keys.PrevSort):
		m.setSort(m.state.SortKey().Prev())
		return m, nil

	case key.Matches(msg, m.keys.Up) && (!focused || msg.Type == tea.KeyUp):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down) && (!focused || msg.Type == tea.KeyDown):
		if m.cursor < m.state.Len()-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Open):
		p, ok := m.state.At(m.cursor)
		if !ok || m.state.Loading() {
			return m, nil
		}
		if m.nav != nil {
			if err := m.nav.Open(p.Route()); err != nil {
				m.navErr = err
				m.logger.Warn(m.ctx, "project navigation failed",
					zap.String("route", p.Route()), zap.Error(err))
			}
		}
		return m.quit()
	}

	if focused {
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		m.state.SetQuery(m.search.Value())
		m.logger.Trace(m.ctx, "search query updated",
			zap.String("query", m.state.Query()),
			zap.Int("matches", m.state.Len()))
		m.clampCursor()
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.PickSort):
		n, _ := strconv.Atoi(msg.String())
		keys := discovery.SortKeys()
		if n >= 1 && n <= len(keys) {
			m.setSort(keys[n-1])
		}
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m *Model) setSort(k discovery.SortKey) {
	m.state.SetSortKey(k)
	m.clampCursor()
}

func (m *Model) clampCursor() {
	n := m.state.Len()
	switch {
	case n == 0:
		m.cursor = 0
	case m.cursor >= n:
		m.cursor = n - 1
	case m.cursor < 0:
		m.cursor = 0
	}
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.state.Dispose()
	m.cancel()
	return m, tea.Quit
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(m.renderFilterBar())
	b.WriteString("\n\n")

	pres := m.state.Present()
	switch pres.Mode {
	case discovery.ModeLoading:
		b.WriteString(m.renderSkeletons(pres.Placeholders))
	case discovery.ModeEmpty:
		b.WriteString(m.renderEmpty(pres.Empty))
	case discovery.ModePopulated:
		b.WriteString(m.renderCards(pres.Cards))
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) renderHeader() string {
	left := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(pageTitle),
		subtitleStyle.Render(pageSubtitle),
	)

	var right []string
	if label := m.user.Label(); label != "" {
		right = append(right, userStyle.Render(fmt.Sprintf("%s · %d rep", label, m.user.TotalReputation)))
	}
	right = append(right, createStyle.Render("+ Create Project")+dimStyle.Render(" ctrl+n"))
	rightBlock := lipgloss.JoinVertical(lipgloss.Right, right...)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(rightBlock)
	if gap < 2 {
		return lipgloss.JoinVertical(lipgloss.Left, left, rightBlock)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, left, strings.Repeat(" ", gap), rightBlock)
}

func (m Model) renderFilterBar() string {
	tabs := make([]string, 0, len(discovery.SortKeys()))
	current := m.state.SortKey()
	for i, k := range discovery.SortKeys() {
		label := fmt.Sprintf("%d %s", i+1, k.Label())
		if k == current {
			tabs = append(tabs, activeSortStyle.Render(label))
		} else {
			tabs = append(tabs, sortStyle.Render(label))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.search.View(),
		lipgloss.JoinHorizontal(lipgloss.Top, tabs...),
	)
}

func (m Model) columns() int {
	if m.width <= 0 {
		return 1
	}
	return max(1, m.width/(cardWidth+5))
}

func (m Model) renderSkeletons(n int) string {
	inner := cardWidth - 4
	bar := func(n int) string { return strings.Repeat("░", n) }
	card := skeletonStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		m.spinner.View()+" "+bar(inner/2),
		bar(inner),
		bar(inner),
		"",
		bar(inner/3),
	))
	cells := make([]string, n)
	for i := range cells {
		cells[i] = card
	}
	return grid(cells, m.columns())
}

func (m Model) renderEmpty(e *discovery.EmptyState) string {
	lines := []string{
		emptyTitleStyle.Render(e.Title),
		dimStyle.Render(e.Message),
	}
	if e.CanCreate {
		lines = append(lines, "", createStyle.Render("+ Create Project")+dimStyle.Render(" ctrl+n"))
	}
	box := emptyBoxStyle.Render(lipgloss.JoinVertical(lipgloss.Center, lines...))
	if m.width > 0 {
		return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, box)
	}
	return box
}

func (m Model) renderCards(cards []discovery.Card) string {
	cols := m.columns()
	first, last := m.visibleRows(len(cards), cols)

	cells := make([]string, 0, (last-first)*cols)
	for i := first * cols; i < min(len(cards), last*cols); i++ {
		cells = append(cells, renderCard(cards[i], i == m.cursor))
	}
	out := grid(cells, cols)
	if len(cells) < len(cards) {
		out += "\n" + dimStyle.Render(fmt.Sprintf("%d of %d projects", len(cells), len(cards)))
	}
	return out
}

// visibleRows returns the half-open row range that keeps the cursor on screen.
func (m Model) visibleRows(n, cols int) (int, int) {
	rows := (n + cols - 1) / cols
	if m.height <= 0 {
		return 0, rows
	}
	fit := max(1, (m.height-chromeHeight)/cardHeight)
	if rows <= fit {
		return 0, rows
	}
	cursorRow := m.cursor / cols
	first := max(0, cursorRow-fit+1)
	return first, min(rows, first+fit)
}

func renderCard(c discovery.Card, selected bool) string {
	inner := cardWidth - 4

	avatar := avatarStyle.Render(c.Initial)
	if c.LogoURL != "" {
		avatar = avatarLogoStyle.Render(c.Initial)
	}
	title := avatar + " " + nameStyle.Render(ansi.Truncate(c.Name, inner-10, "…"))
	if c.Badge != "" {
		title += " " + badgeStyle.Render(c.Badge)
	}

	summary := summaryStyle.Render(ansi.Truncate(c.Summary, inner*2-2, "…"))
	if !c.HasDescription {
		summary = placeholderStyle.Render(c.Summary)
	}

	counters := make([]string, len(c.Counters))
	for i, ctr := range c.Counters {
		counters[i] = counterValueStyle.Render(strconv.Itoa(ctr.Value)) + " " + dimStyle.Render(ctr.Label)
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		title,
		lipgloss.NewStyle().Width(inner).Height(2).Render(summary),
		"",
		strings.Join(counters, "  "),
	)
	if selected {
		return selectedCardStyle.Render(body)
	}
	return cardStyle.Render(body)
}

func grid(cells []string, cols int) string {
	if len(cells) == 0 {
		return ""
	}
	rows := make([]string, 0, (len(cells)+cols-1)/cols)
	for i := 0; i < len(cells); i += cols {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells[i:min(i+cols, len(cells))]...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
