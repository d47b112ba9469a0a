package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shellmux/shellmux/internal/shared/types"
)

type fakeProvider struct {
	def    types.Service
	lastID string
}

func (f *fakeProvider) Definition() types.Service { return f.def }

func (f *fakeProvider) Execute(_ context.Context, toolID string, _ map[string]interface{}, _ *types.Context) (*types.Result, error) {
	f.lastID = toolID
	return &types.Result{Success: true, Data: map[string]interface{}{"tool": toolID}}, nil
}

func shellFake() *fakeProvider {
	return &fakeProvider{def: types.Service{
		ID:           "shell",
		Name:         "Shell Service",
		Description:  "run commands in supervised shell sessions",
		Category:     types.CategoryShell,
		Capabilities: []string{"sessions", "confirmation-gate"},
		Tools:        []types.Tool{{ID: "shell.run"}, {ID: "shell.list"}},
	}}
}

// TestRegisterAndGet tests registration and lookup
func TestRegisterAndGet(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(shellFake()))

	p, ok := r.Get("shell")
	assert.True(t, ok)
	assert.Equal(t, "shell", p.Definition().ID)

	_, ok = r.Get("missing")
	assert.False(t, ok)

	err := r.Register(&fakeProvider{def: types.Service{ID: ""}})
	assert.Error(t, err)
}

// TestListFiltersByCategory tests category filtering
func TestListFiltersByCategory(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(shellFake()))
	require.NoError(t, r.Register(&fakeProvider{def: types.Service{
		ID:       "sysinfo",
		Name:     "System Info",
		Category: types.CategorySystem,
	}}))

	assert.Len(t, r.List(nil), 2)

	shellCat := types.CategoryShell
	filtered := r.List(&shellCat)
	require.Len(t, filtered, 1)
	assert.Equal(t, "shell", filtered[0].ID)
}

// TestExecuteRouting tests tool ID prefix routing
func TestExecuteRouting(t *testing.T) {
	r := NewRegistry()
	fake := shellFake()
	require.NoError(t, r.Register(fake))

	res, err := r.Execute(context.Background(), "shell.run", nil, nil)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "shell.run", fake.lastID)

	_, err = r.Execute(context.Background(), "noservice.op", nil, nil)
	assert.Error(t, err)

	_, err = r.Execute(context.Background(), "malformed", nil, nil)
	assert.Error(t, err)
}

// TestDiscoverRanksByRelevance tests intent scoring
func TestDiscoverRanksByRelevance(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(shellFake()))
	require.NoError(t, r.Register(&fakeProvider{def: types.Service{
		ID:          "sysinfo",
		Name:        "System Info",
		Description: "host metrics",
		Category:    types.CategorySystem,
	}}))

	found := r.Discover("run a command in a shell", 5)
	require.NotEmpty(t, found)
	assert.Equal(t, "shell", found[0].ID)

	assert.Empty(t, r.Discover("zzzz", 5))
}

// TestStats tests registry statistics
func TestStats(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(shellFake()))

	stats := r.Stats()
	assert.Equal(t, 1, stats["total_services"])
	assert.Equal(t, 2, stats["total_tools"])
}

// TestUnregister tests provider removal
func TestUnregister(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(shellFake()))
	r.Unregister("shell")

	_, ok := r.Get("shell")
	assert.False(t, ok)
}
