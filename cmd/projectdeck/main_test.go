package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	nethttp "net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/projectdeck/internal/discovery"
	"github.com/fyrsmithlabs/projectdeck/internal/http"
	"github.com/fyrsmithlabs/projectdeck/internal/logging"
	"github.com/fyrsmithlabs/projectdeck/internal/project"
	"github.com/fyrsmithlabs/projectdeck/internal/store"
)

func fixture() []project.Project {
	return []project.Project{
		{ID: "1", Name: "Alpha", Slug: "alpha", Description: "Lightning wallet", TokenSymbol: "ALP", MemberCount: 5, TotalReputation: 10, RecentActivity: 1},
		{ID: "2", Name: "Beta", Slug: "beta", MemberCount: 20, TotalReputation: 3, RecentActivity: 9},
	}
}

// resetFlags restores package-level flag state and isolates HOME.
func resetFlags(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	cfgFile, serverURL = "", ""
	queryFlag, sortFlag = "", ""
	noBrowser = false
	createReq = project.CreateRequest{}
	catalogFile, watchFlag = "", false
}

// catalogServer serves a real catalog over httptest.
func catalogServer(t *testing.T, projects []project.Project) (*httptest.Server, *store.Store) {
	t.Helper()
	st, err := store.NewWithProjects(projects)
	require.NoError(t, err)
	srv, err := http.NewServer(st, logging.NewNop(), nil, http.WithGatherer(prometheus.NewRegistry()))
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, st
}

func newTestCmd() (*cobra.Command, *bytes.Buffer) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetContext(context.Background())
	return cmd, &out
}

func TestRootCmd_Subcommands(t *testing.T) {
	want := []string{"browse", "list", "create", "serve", "health"}
	got := map[string]bool{}
	for _, cmd := range rootCmd.Commands() {
		got[cmd.Name()] = true
		assert.NotEmpty(t, cmd.Short, cmd.Name())
		assert.NotEmpty(t, cmd.Long, cmd.Name())
	}
	for _, name := range want {
		assert.True(t, got[name], "missing subcommand %s", name)
	}
}

func TestRootCmd_Flags(t *testing.T) {
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("server"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("no-browser"))
	assert.NotNil(t, rootCmd.Flags().Lookup("query"))
	assert.NotNil(t, rootCmd.Flags().Lookup("sort"))
	assert.Equal(t, version, rootCmd.Version)

	for _, name := range []string{"name", "slug", "description", "token-symbol", "tag"} {
		assert.NotNil(t, createCmd.Flags().Lookup(name), name)
	}
	assert.NotNil(t, serveCmd.Flags().Lookup("catalog"))
	assert.NotNil(t, serveCmd.Flags().Lookup("watch"))
}

func TestLoadConfig_ServerOverride(t *testing.T) {
	resetFlags(t)
	serverURL = "https://catalog.example.com"

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "https://catalog.example.com", cfg.Catalog.BaseURL)
	assert.Equal(t, "https://catalog.example.com", cfg.View.WebURL)

	serverURL = "not a url"
	_, err = loadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_ExplicitWebURLKept(t *testing.T) {
	resetFlags(t)
	t.Setenv("PROJECTDECK_VIEW_WEB_URL", "https://deck.example.com")
	serverURL = "https://api.example.com"

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", cfg.Catalog.BaseURL)
	assert.Equal(t, "https://deck.example.com", cfg.View.WebURL)
}

func TestSortKey(t *testing.T) {
	resetFlags(t)
	assert.Equal(t, discovery.SortMembers, sortKey("members"))
	assert.Equal(t, discovery.SortRecent, sortKey("bogus"))

	sortFlag = "name"
	assert.Equal(t, discovery.SortName, sortKey("members"))
}

func TestRunList(t *testing.T) {
	resetFlags(t)
	ts, _ := catalogServer(t, fixture())
	serverURL = ts.URL
	sortFlag = "members"

	cmd, out := newTestCmd()
	require.NoError(t, runList(cmd, nil))

	text := out.String()
	assert.Contains(t, text, "Alpha [ALP]  /projects/alpha")
	assert.Contains(t, text, "Lightning wallet")
	assert.Contains(t, text, discovery.NoDescription)
	assert.Contains(t, text, "20 members · 3 reputation · 9 recent")
	assert.Less(t, bytes.Index(out.Bytes(), []byte("Beta")), bytes.Index(out.Bytes(), []byte("Alpha")))
}

func TestRunList_QueryWithoutMatches(t *testing.T) {
	resetFlags(t)
	ts, _ := catalogServer(t, fixture())
	serverURL = ts.URL
	queryFlag = "zzz"

	cmd, out := newTestCmd()
	require.NoError(t, runList(cmd, nil))
	assert.Contains(t, out.String(), discovery.EmptyTitle)
	assert.Contains(t, out.String(), discovery.EmptySearchMessage)
}

func TestRunList_FetchFailureLooksEmpty(t *testing.T) {
	resetFlags(t)
	ts := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.WriteHeader(nethttp.StatusInternalServerError)
	}))
	defer ts.Close()
	serverURL = ts.URL

	cmd, out := newTestCmd()
	require.NoError(t, runList(cmd, nil))
	assert.Contains(t, out.String(), discovery.EmptyTitle)
	assert.Contains(t, out.String(), discovery.EmptyCatalogMessage)
}

func TestWritePresentation_Loading(t *testing.T) {
	var buf bytes.Buffer
	writePresentation(&buf, discovery.Present(true, nil, ""))
	assert.Equal(t, discovery.PlaceholderCount, bytes.Count(buf.Bytes(), []byte("\n")))
}

func TestRunCreate(t *testing.T) {
	resetFlags(t)
	ts, st := catalogServer(t, fixture())
	serverURL = ts.URL
	createReq = project.CreateRequest{Name: "Lightning Tools", TokenSymbol: "lnt"}

	cmd, out := newTestCmd()
	require.NoError(t, runCreate(cmd, nil))

	assert.Contains(t, out.String(), "Created Lightning Tools (lightning-tools)")
	assert.Contains(t, out.String(), ts.URL+"/projects/lightning-tools")
	assert.Equal(t, 3, st.Len())
}

func TestRunCreate_Conflict(t *testing.T) {
	resetFlags(t)
	ts, _ := catalogServer(t, fixture())
	serverURL = ts.URL
	createReq = project.CreateRequest{Name: "Another Alpha", Slug: "alpha"}

	cmd, _ := newTestCmd()
	err := runCreate(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "409")
}

func TestRunCreate_EmptyName(t *testing.T) {
	resetFlags(t)
	createReq = project.CreateRequest{Name: "  "}

	cmd, _ := newTestCmd()
	assert.ErrorIs(t, runCreate(cmd, nil), project.ErrEmptyProjectName)
}

func TestRunHealth(t *testing.T) {
	resetFlags(t)
	ts, _ := catalogServer(t, fixture())
	serverURL = ts.URL

	cmd, out := newTestCmd()
	require.NoError(t, runHealth(cmd, nil))
	assert.Contains(t, out.String(), "Server Status: ok")
	assert.Contains(t, out.String(), "Server URL: "+ts.URL)
}

func TestRunHealth_Unreachable(t *testing.T) {
	resetFlags(t)
	ts := httptest.NewServer(nethttp.NotFoundHandler())
	serverURL = ts.URL
	ts.Close()

	cmd, _ := newTestCmd()
	assert.Error(t, runHealth(cmd, nil))
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func TestServe(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	resetFlags(t)

	seed := filepath.Join(t.TempDir(), "projects.json")
	data, err := json.Marshal(fixture())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(seed, data, 0600))

	port := freePort(t)
	t.Setenv("PROJECTDECK_SERVER_HTTP_PORT", strconv.Itoa(port))
	t.Setenv("PROJECTDECK_SERVER_CATALOG_FILE", seed)
	t.Setenv("PROJECTDECK_SERVER_WATCH", "true")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	a, err := setup(ctx, logToStderr)
	require.NoError(t, err)
	defer a.Close(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- serve(ctx, a) }()

	base := "http://127.0.0.1:" + strconv.Itoa(port)
	require.Eventually(t, func() bool {
		resp, err := nethttp.Get(base + http.HealthPath)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == nethttp.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	resp, err := nethttp.Get(base + http.ProjectsPath)
	require.NoError(t, err)
	var got []project.Project
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	resp.Body.Close()
	assert.Len(t, got, 2)

	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down in time")
	}
}

func TestServe_MissingSeed(t *testing.T) {
	resetFlags(t)
	t.Setenv("PROJECTDECK_SERVER_CATALOG_FILE", filepath.Join(t.TempDir(), "missing.json"))

	a, err := setup(context.Background(), logToStderr)
	require.NoError(t, err)
	defer a.Close(context.Background())

	err = serve(context.Background(), a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load catalog")
}
