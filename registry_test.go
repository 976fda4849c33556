// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

//go:build !integration

package configdoctor

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/configdoctor/codec"
)

func newTestRegistry(t *testing.T, size int, opts ...RegistryOption) *Registry {
	t.Helper()
	r, err := NewRegistry(size, opts...)
	require.NoError(t, err)
	t.Cleanup(r.Purge)
	return r
}

func TestRegistry_GetCaches(t *testing.T) {
	t.Parallel()

	r := newTestRegistry(t, 4)
	path := TestJSONFile(t, []byte(`{"a": 1}`))

	first, err := r.Get(context.Background(), Key{Path: path})
	require.NoError(t, err)
	second, err := r.Get(context.Background(), Key{Path: path})
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_KeyParts(t *testing.T) {
	t.Parallel()

	r := newTestRegistry(t, 8)
	watcher := NewFakeWatcher()
	path := TestFile(t, "app.yaml", []byte("a: 1\n"))
	ctx := context.Background()

	plain, err := r.Get(ctx, Key{Path: path})
	require.NoError(t, err)
	asYAML, err := r.Get(ctx, Key{Path: path, Format: codec.TypeYAML})
	require.NoError(t, err)
	watched, err := r.Get(ctx, Key{Path: path, Watch: true}, WithWatcher(watcher))
	require.NoError(t, err)
	variant, err := r.Get(ctx, Key{Path: path, Variant: "audit"})
	require.NoError(t, err)

	assert.NotSame(t, plain, asYAML)
	assert.NotSame(t, plain, watched)
	assert.NotSame(t, plain, variant)
	assert.Equal(t, StateWatching, watched.State())
	assert.Equal(t, 4, r.Len())
}

func TestRegistry_OptionsNotPartOfKey(t *testing.T) {
	t.Parallel()

	r := newTestRegistry(t, 4)
	path := TestJSONFile(t, []byte(`{}`))

	first, err := r.Get(context.Background(), Key{Path: path}, WithOnChange(func(*Provider) {}))
	require.NoError(t, err)
	second, err := r.Get(context.Background(), Key{Path: path}, WithOnChange(func(*Provider) {}))
	require.NoError(t, err)

	assert.Same(t, first, second)
}

func TestRegistry_RelativeAndAbsoluteShareEntry(t *testing.T) {
	t.Parallel()

	r := newTestRegistry(t, 4)
	path := TestJSONFile(t, []byte(`{}`))
	rel, err := filepath.Rel(mustGetwd(t), path)
	require.NoError(t, err)

	first, err := r.Get(context.Background(), Key{Path: path})
	require.NoError(t, err)
	second, err := r.Get(context.Background(), Key{Path: rel})
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestRegistry_EvictionStopsWatching(t *testing.T) {
	t.Parallel()

	r := newTestRegistry(t, 1)
	watcher := NewFakeWatcher()
	ctx := context.Background()

	first, err := r.Get(ctx, Key{Path: TestJSONFile(t, []byte(`{}`)), Watch: true}, WithWatcher(watcher))
	require.NoError(t, err)
	_, err = r.Get(ctx, Key{Path: TestJSONFile(t, []byte(`{}`)), Watch: true}, WithWatcher(watcher))
	require.NoError(t, err)

	assert.Equal(t, 1, r.Len())
	assert.Equal(t, StateStopped, first.State())
	assert.Equal(t, 1, watcher.Open())
}

func TestRegistry_StoppedProviderReopened(t *testing.T) {
	t.Parallel()

	r := newTestRegistry(t, 4)
	watcher := NewFakeWatcher()
	ctx := context.Background()
	path := TestJSONFile(t, []byte(`{"v": 1}`))
	key := Key{Path: path, Watch: true}

	first, err := r.Get(ctx, key, WithWatcher(watcher))
	require.NoError(t, err)
	require.NoError(t, first.StopWatching())

	second, err := r.Get(ctx, key, WithWatcher(watcher))
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, StateWatching, second.State())
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, 1, watcher.Open())

	TestRewrite(t, path, []byte(`{"v": 2}`))
	watcher.Emit(second.Path())
	assert.Equal(t, 2, second.Int("v"))

	third, err := r.Get(ctx, key, WithWatcher(watcher))
	require.NoError(t, err)
	assert.Same(t, second, third)
}

func TestRegistry_RemoveAndPurge(t *testing.T) {
	t.Parallel()

	r := newTestRegistry(t, 4)
	watcher := NewFakeWatcher()
	ctx := context.Background()
	keyA := Key{Path: TestJSONFile(t, []byte(`{}`)), Watch: true}
	keyB := Key{Path: TestJSONFile(t, []byte(`{}`)), Watch: true}

	a, err := r.Get(ctx, keyA, WithWatcher(watcher))
	require.NoError(t, err)
	b, err := r.Get(ctx, keyB, WithWatcher(watcher))
	require.NoError(t, err)

	assert.True(t, r.Remove(keyA))
	assert.False(t, r.Remove(keyA))
	assert.Equal(t, StateStopped, a.State())
	assert.Equal(t, StateWatching, b.State())

	r.Purge()
	assert.Zero(t, r.Len())
	assert.Equal(t, StateStopped, b.State())
	assert.Zero(t, watcher.Open())
}

func TestRegistry_FailedOpenNotCached(t *testing.T) {
	t.Parallel()

	r := newTestRegistry(t, 4)
	path := filepath.Join(t.TempDir(), "late.json")

	_, err := r.Get(context.Background(), Key{Path: path})
	require.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, r.Len())

	TestRewrite(t, path, []byte(`{"ok": true}`))
	p, err := r.Get(context.Background(), Key{Path: path})
	require.NoError(t, err)
	assert.True(t, p.Bool("ok"))
}

func TestRegistry_ConcurrentGetOpensOnce(t *testing.T) {
	t.Parallel()

	r := newTestRegistry(t, 4)
	path := TestJSONFile(t, []byte(`{}`))

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		found = map[*Provider]struct{}{}
	)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := r.Get(context.Background(), Key{Path: path})
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			found[p] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, found, 1)
}

func TestRegistry_DefaultOptions(t *testing.T) {
	t.Parallel()

	r := newTestRegistry(t, 0, WithDefaultOptions(WithFormat(codec.TypeTOML)))
	p, err := r.Get(context.Background(), Key{Path: TestFile(t, "app.conf", []byte("a = 1\n"))})
	require.NoError(t, err)
	assert.Equal(t, codec.TypeTOML, p.Format())
}

func TestOpenCached(t *testing.T) {
	t.Parallel()

	key := Key{Path: TestJSONFile(t, []byte(`{"n": 1}`)), Variant: t.Name()}
	t.Cleanup(func() { defaultRegistry().Remove(key) })

	first, err := OpenCached(context.Background(), key)
	require.NoError(t, err)
	second, err := OpenCached(context.Background(), key)
	require.NoError(t, err)
	assert.Same(t, first, second)
}
