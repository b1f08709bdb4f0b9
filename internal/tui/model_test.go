package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/fyrsmithlabs/projectdeck/internal/catalog"
	"github.com/fyrsmithlabs/projectdeck/internal/discovery"
	"github.com/fyrsmithlabs/projectdeck/internal/logging"
	"github.com/fyrsmithlabs/projectdeck/internal/project"
)

type stubFetcher struct {
	projects []project.Project
	err      error
	ctx      context.Context
}

func (f *stubFetcher) FetchProjects(ctx context.Context) ([]project.Project, error) {
	f.ctx = ctx
	return f.projects, f.err
}

type recordingNavigator struct {
	opened  []string
	created int
	err     error
}

func (n *recordingNavigator) Open(route string) error {
	n.opened = append(n.opened, route)
	return n.err
}

func (n *recordingNavigator) Create() error {
	n.created++
	return n.err
}

func catalogFixture() []project.Project {
	return []project.Project{
		{ID: "1", Name: "Alpha", Slug: "alpha", Description: "Lightning wallet", TokenSymbol: "ALP", MemberCount: 5, TotalReputation: 10, RecentActivity: 1},
		{ID: "2", Name: "Beta", Slug: "beta", MemberCount: 20, TotalReputation: 3, RecentActivity: 9},
		{ID: "3", Name: "Gamma", Slug: "gamma", Description: "Alpha tooling", MemberCount: 1, TotalReputation: 30, RecentActivity: 4},
	}
}

func newTestModel(t *testing.T, cfg Config) (Model, *recordingNavigator, *logging.TestLogger) {
	t.Helper()
	nav := &recordingNavigator{}
	tl := logging.NewTestLogger()
	if cfg.Navigator == nil {
		cfg.Navigator = nav
	}
	cfg.Logger = tl.Logger
	return New(cfg), nav, tl
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m, _ = update(t, m, runes(string(r)))
	}
	return m
}

func settled(t *testing.T, m Model) Model {
	t.Helper()
	m, _ = update(t, m, projectsFetchedMsg{projects: catalogFixture()})
	return m
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestNew_Defaults(t *testing.T) {
	m, _, _ := newTestModel(t, Config{})

	assert.True(t, m.State().Loading())
	assert.Equal(t, discovery.PhasePending, m.State().Phase())
	assert.Equal(t, discovery.SortRecent, m.State().SortKey())
	assert.True(t, m.search.Focused())
	assert.NotNil(t, m.Init())
}

func TestNew_InitialQueryAndSort(t *testing.T) {
	m, _, _ := newTestModel(t, Config{Query: "alp", SortKey: discovery.SortName})

	assert.Equal(t, "alp", m.State().Query())
	assert.Equal(t, "alp", m.search.Value())
	assert.Equal(t, discovery.SortName, m.State().SortKey())
}

func TestFetchProjects_Cmd(t *testing.T) {
	f := &stubFetcher{projects: catalogFixture()}
	m, _, _ := newTestModel(t, Config{Fetcher: f})

	msg := fetchProjects(m.ctx, f)()
	fetched, ok := msg.(projectsFetchedMsg)
	require.True(t, ok)
	assert.NoError(t, fetched.err)
	assert.Len(t, fetched.projects, 3)
	assert.Equal(t, m.ctx, f.ctx)

	msg = fetchProjects(m.ctx, nil)()
	assert.Error(t, msg.(projectsFetchedMsg).err)
}

func TestModel_SettleSuccess(t *testing.T) {
	m, _, tl := newTestModel(t, Config{})
	m = settled(t, m)

	assert.False(t, m.State().Loading())
	assert.Equal(t, discovery.PhaseSettled, m.State().Phase())
	assert.Equal(t, []string{"Beta", "Gamma", "Alpha"}, names(m.State().Filtered()))
	tl.AssertNotLogged(t, zapcore.WarnLevel, "catalog fetch failed")

	view := m.View()
	assert.Contains(t, view, "Alpha")
	assert.Contains(t, view, "ALP")
	assert.Contains(t, view, discovery.NoDescription)
	assert.Contains(t, view, "members")
}

func TestModel_SettleFailureLooksEmpty(t *testing.T) {
	m, _, tl := newTestModel(t, Config{})
	err := &catalog.FetchError{Kind: catalog.KindStatus, Op: "fetch projects", Status: 503}
	m, _ = update(t, m, projectsFetchedMsg{err: err})

	assert.False(t, m.State().Loading())
	assert.Empty(t, m.State().Raw())
	assert.ErrorIs(t, m.State().FetchErr(), err)

	tl.AssertLogged(t, zapcore.WarnLevel, "catalog fetch failed")
	entries := tl.FilterMessage("catalog fetch failed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "status", fields["kind"])
	assert.EqualValues(t, 503, fields["status"])

	view := m.View()
	assert.Contains(t, view, discovery.EmptyTitle)
	assert.Contains(t, view, discovery.EmptyCatalogMessage)
	assert.Contains(t, view, "Create Project")
}

func TestModel_SecondSettleDropped(t *testing.T) {
	m, _, tl := newTestModel(t, Config{})
	m = settled(t, m)
	m, _ = update(t, m, projectsFetchedMsg{err: errors.New("late")})

	assert.Len(t, m.State().Raw(), 3)
	assert.Nil(t, m.State().FetchErr())
	tl.AssertLogged(t, zapcore.DebugLevel, "dropping catalog result")
}

func TestModel_LogsCarryViewer(t *testing.T) {
	m, _, tl := newTestModel(t, Config{User: project.User{ID: "u_42"}})
	settled(t, m)

	tl.AssertField(t, "catalog settled", "viewer.id", "u_42")
}

func TestModel_TraceLogsSearchKeystrokes(t *testing.T) {
	m, _, tl := newTestModel(t, Config{})
	m = settled(t, m)

	typeText(t, m, "a")
	tl.AssertLogged(t, logging.TraceLevel, "search query updated")
	tl.AssertField(t, "search query updated", "query", "a")
}

func TestModel_LoadingView(t *testing.T) {
	m, _, _ := newTestModel(t, Config{})
	view := m.View()

	assert.Contains(t, view, pageTitle)
	assert.Contains(t, view, pageSubtitle)
	assert.Contains(t, view, "░")
	assert.NotContains(t, view, discovery.EmptyTitle)
}

func TestModel_HeaderShowsUser(t *testing.T) {
	m, _, _ := newTestModel(t, Config{User: project.User{ID: "u1", DisplayName: "satoshi", TotalReputation: 42}})
	view := m.View()

	assert.Contains(t, view, "satoshi")
	assert.Contains(t, view, "42 rep")
}

func TestModel_TypingFiltersEachKeystroke(t *testing.T) {
	m, _, _ := newTestModel(t, Config{})
	m = settled(t, m)

	m = typeText(t, m, "a")
	assert.Equal(t, "a", m.State().Query())
	assert.Len(t, m.State().Filtered(), 3)

	m = typeText(t, m, "lp")
	assert.Equal(t, "alp", m.State().Query())
	assert.Equal(t, []string{"Gamma", "Alpha"}, names(m.State().Filtered()))

	m = typeText(t, m, "zz")
	assert.Empty(t, m.State().Filtered())
	assert.Contains(t, m.View(), discovery.EmptySearchMessage)
}

func TestModel_TypingWhileLoading(t *testing.T) {
	m, _, _ := newTestModel(t, Config{})
	m = typeText(t, m, "gam")
	assert.Equal(t, "gam", m.State().Query())
	assert.True(t, m.State().Loading())

	m = settled(t, m)
	assert.Equal(t, []string{"Gamma"}, names(m.State().Filtered()))
}

func TestModel_SortCycling(t *testing.T) {
	m, _, _ := newTestModel(t, Config{})
	m = settled(t, m)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, discovery.SortName, m.State().SortKey())
	assert.Equal(t, []string{"Alpha", "Beta", "Gamma"}, names(m.State().Filtered()))

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, discovery.SortMembers, m.State().SortKey())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, discovery.SortRecent, m.State().SortKey())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, discovery.SortReputation, m.State().SortKey())
}

func TestModel_NumberKeysPickSortWhenBlurred(t *testing.T) {
	m, _, _ := newTestModel(t, Config{})
	m = settled(t, m)

	// Focused: digits go to the search box.
	m = typeText(t, m, "4")
	assert.Equal(t, "4", m.State().Query())
	assert.Equal(t, discovery.SortRecent, m.State().SortKey())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, "", m.State().Query())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.False(t, m.search.Focused())

	m, _ = update(t, m, runes("4"))
	assert.Equal(t, discovery.SortReputation, m.State().SortKey())
	assert.Equal(t, []string{"Gamma", "Alpha", "Beta"}, names(m.State().Filtered()))

	m, _ = update(t, m, runes("2"))
	assert.Equal(t, discovery.SortName, m.State().SortKey())
	assert.Equal(t, "", m.State().Query())
}

func TestModel_CursorMovement(t *testing.T) {
	m, _, _ := newTestModel(t, Config{})
	m = settled(t, m)

	// j types while the search box has focus.
	m = typeText(t, m, "j")
	assert.Equal(t, "j", m.State().Query())
	assert.Equal(t, 0, m.Cursor())
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	require.Equal(t, "", m.State().Query())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 2, m.Cursor())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 1, m.Cursor())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	m, _ = update(t, m, runes("j"))
	assert.Equal(t, 2, m.Cursor())
	m, _ = update(t, m, runes("k"))
	m, _ = update(t, m, runes("k"))
	m, _ = update(t, m, runes("k"))
	assert.Equal(t, 0, m.Cursor())
}

func TestModel_CursorClampedAfterRecompute(t *testing.T) {
	m, _, _ := newTestModel(t, Config{})
	m = settled(t, m)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	require.Equal(t, 2, m.Cursor())

	m = typeText(t, m, "gam")
	assert.Equal(t, 0, m.Cursor())

	m = typeText(t, m, "zz")
	assert.Equal(t, 0, m.Cursor())
}

func TestModel_EnterOpensSelectedProject(t *testing.T) {
	m, nav, _ := newTestModel(t, Config{})
	m = settled(t, m)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, []string{"/projects/gamma"}, nav.opened)
	assert.True(t, isQuit(cmd))
	assert.True(t, m.State().Disposed())
	assert.Empty(t, m.View())
}

func TestModel_EnterIgnoredWithoutCards(t *testing.T) {
	m, nav, _ := newTestModel(t, Config{})

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Empty(t, nav.opened)

	m, _ = update(t, m, projectsFetchedMsg{})
	_, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Empty(t, nav.opened)
}

func TestModel_NavigationError(t *testing.T) {
	nav := &recordingNavigator{err: errors.New("no browser")}
	m, _, tl := newTestModel(t, Config{Navigator: nav})
	m = settled(t, m)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, isQuit(cmd))
	assert.EqualError(t, m.Err(), "no browser")
	tl.AssertLogged(t, zapcore.WarnLevel, "project navigation failed")
}

func TestModel_CreateProject(t *testing.T) {
	m, nav, _ := newTestModel(t, Config{})

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlN})
	assert.Equal(t, 1, nav.created)
	assert.True(t, isQuit(cmd))
	assert.True(t, m.State().Disposed())
}

func TestModel_QuitDisposesAndCancels(t *testing.T) {
	m, _, tl := newTestModel(t, Config{})
	ctx := m.ctx

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.True(t, isQuit(cmd))
	assert.True(t, m.State().Disposed())
	assert.ErrorIs(t, ctx.Err(), context.Canceled)

	// A fetch completing after quit is dropped.
	m, _ = update(t, m, projectsFetchedMsg{projects: catalogFixture()})
	assert.True(t, m.State().Loading())
	assert.Empty(t, m.State().Raw())
	tl.AssertLogged(t, zapcore.DebugLevel, "dropping catalog result")
}

func TestModel_HelpToggle(t *testing.T) {
	m, _, _ := newTestModel(t, Config{})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	m, _ = update(t, m, runes("?"))
	assert.True(t, m.help.ShowAll)
	m, _ = update(t, m, runes("?"))
	assert.False(t, m.help.ShowAll)
}

func TestModel_WindowSizeAndScrolling(t *testing.T) {
	many := make([]project.Project, 30)
	for i := range many {
		many[i] = project.Project{
			ID:             string(rune('a' + i%26)) + string(rune('0'+i/26)),
			Name:           "Project " + string(rune('A'+i%26)) + string(rune('0'+i/26)),
			Slug:           "p-" + string(rune('a'+i%26)) + string(rune('0'+i/26)),
			RecentActivity: 100 - i,
		}
	}

	m, _, _ := newTestModel(t, Config{})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 90, Height: 40})
	m, _ = update(t, m, projectsFetchedMsg{projects: many})

	assert.Equal(t, 2, m.columns())
	first, last := m.visibleRows(30, 2)
	assert.Equal(t, 0, first)
	assert.Equal(t, 3, last)

	for range 20 {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	}
	first, last = m.visibleRows(30, 2)
	assert.LessOrEqual(t, first, m.Cursor()/2)
	assert.Greater(t, last, m.Cursor()/2)
	assert.Contains(t, m.View(), "of 30 projects")
}

func TestModel_SpinnerStopsAfterSettle(t *testing.T) {
	m, _, _ := newTestModel(t, Config{})
	tick := m.spinner.Tick()

	_, cmd := update(t, m, tick)
	assert.NotNil(t, cmd)

	m = settled(t, m)
	_, cmd = update(t, m, tick)
	assert.Nil(t, cmd)
}

func names(ps []project.Project) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Name
	}
	return out
}
