package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeMigrator struct {
	calls   []string
	steps   int
	version uint
	forced  int
	err     error
}

func (f *fakeMigrator) Up() error   { f.calls = append(f.calls, "up"); return f.err }
func (f *fakeMigrator) Down() error { f.calls = append(f.calls, "down"); return f.err }
func (f *fakeMigrator) Drop() error { f.calls = append(f.calls, "drop"); return f.err }

func (f *fakeMigrator) Steps(n int) error {
	f.calls = append(f.calls, "steps")
	f.steps = n
	return f.err
}

func (f *fakeMigrator) GoTo(version uint) error {
	f.calls = append(f.calls, "goto")
	f.version = version
	return f.err
}

func (f *fakeMigrator) Version() (uint, bool, error) {
	f.calls = append(f.calls, "version")
	return f.version, false, f.err
}

func (f *fakeMigrator) Force(version int) error {
	f.calls = append(f.calls, "force")
	f.forced = version
	return f.err
}

func TestRunCommand(t *testing.T) {
	log := zap.NewNop()

	t.Run("up and down", func(t *testing.T) {
		m := &fakeMigrator{}
		require.NoError(t, runCommand(m, "up", nil, log))
		require.NoError(t, runCommand(m, "down", nil, log))
		assert.Equal(t, []string{"up", "down"}, m.calls)
	})

	t.Run("step parses a signed count", func(t *testing.T) {
		m := &fakeMigrator{}
		require.NoError(t, runCommand(m, "step", []string{"-1"}, log))
		assert.Equal(t, -1, m.steps)

		assert.ErrorIs(t, runCommand(m, "step", []string{"0"}, log), errUsage)
		assert.ErrorIs(t, runCommand(m, "step", nil, log), errUsage)
	})

	t.Run("goto rejects negative versions", func(t *testing.T) {
		m := &fakeMigrator{}
		require.NoError(t, runCommand(m, "goto", []string{"3"}, log))
		assert.Equal(t, uint(3), m.version)
		assert.ErrorIs(t, runCommand(m, "goto", []string{"-3"}, log), errUsage)
	})

	t.Run("version logs the current state", func(t *testing.T) {
		core, logs := observer.New(zap.InfoLevel)
		m := &fakeMigrator{version: 1}
		require.NoError(t, runCommand(m, "version", nil, zap.New(core)))
		require.Equal(t, 1, logs.FilterMessage("Current migration version").Len())

		m.version = 0
		require.NoError(t, runCommand(m, "version", nil, zap.New(core)))
		assert.Equal(t, 1, logs.FilterMessage("No migrations applied").Len())
	})

	t.Run("force", func(t *testing.T) {
		m := &fakeMigrator{}
		require.NoError(t, runCommand(m, "force", []string{"1"}, log))
		assert.Equal(t, 1, m.forced)
	})

	t.Run("drop needs confirmation", func(t *testing.T) {
		m := &fakeMigrator{}
		assert.ErrorIs(t, runCommand(m, "drop", nil, log), errUsage)
		assert.Empty(t, m.calls)

		require.NoError(t, runCommand(m, "drop", []string{"--confirm"}, log))
		assert.Equal(t, []string{"drop"}, m.calls)
	})

	t.Run("migrator errors pass through", func(t *testing.T) {
		boom := errors.New("dirty database")
		err := runCommand(&fakeMigrator{err: boom}, "up", nil, log)
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, errUsage)
	})

	t.Run("unknown command", func(t *testing.T) {
		assert.ErrorIs(t, runCommand(&fakeMigrator{}, "sideways", nil, log), errUsage)
	})
}

func TestResolvePath(t *testing.T) {
	dir := t.TempDir()
	got, err := resolvePath(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, got)
}
