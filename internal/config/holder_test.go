// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHolderReloadSwapsAtomically(t *testing.T) {
	path := writeConfigFile(t, `max_upload_bytes: 1024`)
	loader := NewLoader(path)

	initial, err := loader.Load()
	require.NoError(t, err)
	h := NewHolder(initial, loader, path)
	assert.Equal(t, int64(1024), h.Get().MaxUploadBytes)

	require.NoError(t, os.WriteFile(path, []byte(`max_upload_bytes: 2048`), 0o600))
	require.NoError(t, h.Reload(context.Background()))
	assert.Equal(t, int64(2048), h.Get().MaxUploadBytes)
}

func TestHolderReloadKeepsOldConfigOnFailure(t *testing.T) {
	path := writeConfigFile(t, `max_upload_bytes: 1024`)
	loader := NewLoader(path)

	initial, err := loader.Load()
	require.NoError(t, err)
	h := NewHolder(initial, loader, path)

	// Invalid value must fail validation and leave the holder untouched.
	require.NoError(t, os.WriteFile(path, []byte(`max_upload_bytes: -1`), 0o600))
	require.Error(t, h.Reload(context.Background()))
	assert.Equal(t, int64(1024), h.Get().MaxUploadBytes)
}

func TestHolderNotifiesListeners(t *testing.T) {
	path := writeConfigFile(t, `log_level: info`)
	loader := NewLoader(path)

	initial, err := loader.Load()
	require.NoError(t, err)
	h := NewHolder(initial, loader, path)

	ch := make(chan Settings, 1)
	h.RegisterListener(ch)

	require.NoError(t, os.WriteFile(path, []byte(`log_level: debug`), 0o600))
	require.NoError(t, h.Reload(context.Background()))

	select {
	case got := <-ch:
		assert.Equal(t, "debug", got.LogLevel)
	case <-time.After(time.Second):
		t.Fatal("listener was not notified")
	}
}

func TestHolderFullListenerDoesNotBlockReload(t *testing.T) {
	path := writeConfigFile(t, `log_level: info`)
	loader := NewLoader(path)

	initial, err := loader.Load()
	require.NoError(t, err)
	h := NewHolder(initial, loader, path)

	ch := make(chan Settings) // unbuffered, never drained
	h.RegisterListener(ch)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = h.Reload(context.Background())
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("reload blocked on a full listener channel")
	}
}

func TestHolderWatcherReloadsOnWrite(t *testing.T) {
	path := writeConfigFile(t, `max_upload_bytes: 1024`)
	loader := NewLoader(path)

	initial, err := loader.Load()
	require.NoError(t, err)
	h := NewHolder(initial, loader, path)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, h.StartWatcher(ctx))
	defer h.Stop()

	require.NoError(t, os.WriteFile(path, []byte(`max_upload_bytes: 4096`), 0o600))

	// Watcher debounce is 500ms; poll well past it.
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if h.Get().MaxUploadBytes == 4096 {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("watcher did not apply file change, still %d", h.Get().MaxUploadBytes)
}

func TestHolderWatcherDisabledWithoutPath(t *testing.T) {
	h := NewHolder(Defaults(), NewLoader(""), "")
	require.NoError(t, h.StartWatcher(context.Background()))
}
