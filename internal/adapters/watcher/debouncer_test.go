package watcher_test

import (
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/patchwork/internal/adapters/watcher"
)

type batches struct {
	calls [][]string
}

func (b *batches) record(paths []string) {
	b.calls = append(b.calls, paths)
}

func TestDebouncer_CoalescesSorted(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var got batches
		d := watcher.NewDebouncer(100*time.Millisecond, got.record)

		d.Add("/plans/b.yaml")
		d.Add("/plans/a.yaml")
		d.Add("/plans/b.yaml")

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		require.Len(t, got.calls, 1)
		assert.Equal(t, []string{"/plans/a.yaml", "/plans/b.yaml"}, got.calls[0])
	})
}

func TestDebouncer_AddRestartsWindow(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var got batches
		d := watcher.NewDebouncer(100*time.Millisecond, got.record)

		d.Add("/plans/a.yaml")
		time.Sleep(50 * time.Millisecond)
		d.Add("/plans/b.yaml")
		time.Sleep(50 * time.Millisecond)
		synctest.Wait()
		assert.Empty(t, got.calls)

		time.Sleep(60 * time.Millisecond)
		synctest.Wait()
		require.Len(t, got.calls, 1)
		assert.Len(t, got.calls[0], 2)
	})
}

func TestDebouncer_Flush(t *testing.T) {
	t.Run("delivers pending paths synchronously", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			var got batches
			d := watcher.NewDebouncer(100*time.Millisecond, got.record)

			d.Add("/plans/a.yaml")
			d.Flush()
			require.Len(t, got.calls, 1)

			// The stopped timer must not deliver again.
			time.Sleep(150 * time.Millisecond)
			synctest.Wait()
			assert.Len(t, got.calls, 1)
		})
	})

	t.Run("nothing pending", func(t *testing.T) {
		var got batches
		watcher.NewDebouncer(100*time.Millisecond, got.record).Flush()
		assert.Empty(t, got.calls)
	})

	t.Run("after the window fired", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			var got batches
			d := watcher.NewDebouncer(50*time.Millisecond, got.record)

			d.Add("/plans/a.yaml")
			time.Sleep(100 * time.Millisecond)
			synctest.Wait()
			d.Flush()

			assert.Len(t, got.calls, 1)
		})
	})
}

func TestDebouncer_Stop(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var got batches
		d := watcher.NewDebouncer(50*time.Millisecond, got.record)

		d.Add("/plans/a.yaml")
		d.Stop()
		time.Sleep(100 * time.Millisecond)
		synctest.Wait()
		d.Flush()

		assert.Empty(t, got.calls)
	})
}

func TestDebouncer_NilCallback(t *testing.T) {
	synctest.Test(t, func(_ *testing.T) {
		d := watcher.NewDebouncer(50*time.Millisecond, nil)
		d.Add("/plans/a.yaml")
		time.Sleep(100 * time.Millisecond)
		synctest.Wait()
		d.Flush()
	})
}
