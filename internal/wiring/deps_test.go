package wiring_test

import (
	"testing"

	"github.com/grindlemire/graft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/patchwork/internal/adapters/fs"
	"go.trai.ch/patchwork/internal/core/ports"
	_ "go.trai.ch/patchwork/internal/wiring"
)

func TestGraftDependencies(t *testing.T) {
	graft.AssertDepsValid(t, "../../internal")
}

func TestWiring_ResolvesEveryPort(t *testing.T) {
	t.Chdir(t.TempDir())
	ctx := t.Context()

	loader, _, err := graft.ExecuteFor[ports.ConfigLoader](ctx)
	require.NoError(t, err)
	assert.NotNil(t, loader)

	executor, _, err := graft.ExecuteFor[ports.Executor](ctx)
	require.NoError(t, err)
	assert.NotNil(t, executor)

	vcs, _, err := graft.ExecuteFor[ports.VCS](ctx)
	require.NoError(t, err)
	assert.NotNil(t, vcs)

	store, _, err := graft.ExecuteFor[ports.ReportStore](ctx)
	require.NoError(t, err)
	assert.NotNil(t, store)

	walker, _, err := graft.ExecuteFor[*fs.Walker](ctx)
	require.NoError(t, err)
	assert.NotNil(t, walker)

	log, _, err := graft.ExecuteFor[ports.Logger](ctx)
	require.NoError(t, err)
	assert.NotNil(t, log)
}
