package tui

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewURLNavigator_Invalid(t *testing.T) {
	for _, base := range []string{"", "/relative", "localhost:8787", "http://[::1"} {
		_, err := NewURLNavigator(base, nil)
		assert.Error(t, err, base)
	}
}

func TestURLNavigator_Resolve(t *testing.T) {
	tests := []struct {
		base  string
		route string
		want  string
	}{
		{"https://deck.example.com", "/projects/alpha", "https://deck.example.com/projects/alpha"},
		{"https://deck.example.com/", "/projects/alpha", "https://deck.example.com/projects/alpha"},
		{"https://example.com/app", "/projects/alpha", "https://example.com/app/projects/alpha"},
		{"http://localhost:8787", CreateRoute, "http://localhost:8787/projects/new"},
	}
	for _, tt := range tests {
		n, err := NewURLNavigator(tt.base, nil)
		require.NoError(t, err)
		assert.Equal(t, tt.want, n.Resolve(tt.route))
	}
}

func TestURLNavigator_OpenAndCreate(t *testing.T) {
	var launched []string
	n, err := NewURLNavigator("https://deck.example.com", func(u string) error {
		launched = append(launched, u)
		return nil
	})
	require.NoError(t, err)
	assert.Empty(t, n.Last())

	require.NoError(t, n.Open("/projects/beta"))
	assert.Equal(t, "https://deck.example.com/projects/beta", n.Last())

	require.NoError(t, n.Create())
	assert.Equal(t, "https://deck.example.com/projects/new", n.Last())
	assert.Equal(t, []string{
		"https://deck.example.com/projects/beta",
		"https://deck.example.com/projects/new",
	}, launched)
}

func TestURLNavigator_LaunchError(t *testing.T) {
	boom := errors.New("exec: xdg-open not found")
	n, err := NewURLNavigator("https://deck.example.com", func(string) error { return boom })
	require.NoError(t, err)

	err = n.Open("/projects/beta")
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "https://deck.example.com/projects/beta")
	assert.Equal(t, "https://deck.example.com/projects/beta", n.Last())
}

func TestURLNavigator_RecordOnly(t *testing.T) {
	n, err := NewURLNavigator("https://deck.example.com", nil)
	require.NoError(t, err)
	require.NoError(t, n.Create())
	assert.Equal(t, "https://deck.example.com/projects/new", n.Last())
}
