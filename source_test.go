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
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/configdoctor/codec"
)

func TestNewSource_PathChecks(t *testing.T) {
	t.Parallel()

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := NewJSONSource(filepath.Join(t.TempDir(), "missing.json"))
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("directory", func(t *testing.T) {
		t.Parallel()

		_, err := NewYAMLSource(t.TempDir())
		require.ErrorIs(t, err, ErrNotAFile)
		assert.Equal(t, "not_a_file", ErrorCode(err))
	})

	t.Run("relative path is made absolute", func(t *testing.T) {
		t.Parallel()

		path := TestJSONFile(t, []byte("{}"))
		rel, err := filepath.Rel(mustGetwd(t), path)
		require.NoError(t, err)

		src, err := NewJSONSource(rel)
		require.NoError(t, err)
		assert.Equal(t, path, src.Path())
		assert.Equal(t, codec.TypeJSON, src.Format())
	})

	t.Run("does not parse", func(t *testing.T) {
		t.Parallel()

		_, err := NewJSONSource(TestJSONFile(t, []byte("{broken")))
		require.NoError(t, err)
	})
}

func TestSource_LoadPerFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		file    string
		content string
		newSrc  func(string, ...SourceOption) (*Source, error)
	}{
		{
			name:    "json",
			file:    "config.json",
			content: `{"key": "value", "nested": {"inner": 42}}`,
			newSrc:  NewJSONSource,
		},
		{
			name:    "yaml",
			file:    "config.yaml",
			content: "key: value\nnested:\n  inner: 42\n",
			newSrc:  NewYAMLSource,
		},
		{
			name:    "toml",
			file:    "config.toml",
			content: "key = 'value'\n[nested]\ninner = 42\n",
			newSrc:  NewTOMLSource,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src, err := tt.newSrc(TestFile(t, tt.file, []byte(tt.content)))
			require.NoError(t, err)

			doc, err := src.Load(context.Background())
			require.NoError(t, err)
			assert.Equal(t, "value", doc["key"])

			nested, ok := doc["nested"].(map[string]any)
			require.True(t, ok, "nested should be a mapping, got %T", doc["nested"])
			assert.EqualValues(t, 42, nested["inner"])
		})
	}
}

func TestSource_EmptyContent(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"empty.json", "empty.yaml", "empty.toml"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			src, err := NewFactory(nil).Create(TestFile(t, name, []byte("  \n\n")))
			require.NoError(t, err)

			doc, err := src.Load(context.Background())
			require.NoError(t, err)
			assert.Equal(t, map[string]any{}, doc)
		})
	}
}

func TestSource_CommentOnlyYAML(t *testing.T) {
	t.Parallel()

	src, err := NewYAMLSource(TestYAMLFile(t, []byte("# nothing here yet\n")))
	require.NoError(t, err)

	doc, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, doc)
}

func TestSource_ParseErrors(t *testing.T) {
	t.Parallel()

	t.Run("invalid json", func(t *testing.T) {
		t.Parallel()

		src, err := NewJSONSource(TestJSONFile(t, []byte("{invalid}")))
		require.NoError(t, err)

		_, err = src.Load(context.Background())
		require.ErrorIs(t, err, ErrParse)
		assert.Contains(t, err.Error(), "invalid JSON")

		var cfgErr *Error
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, src.Path(), cfgErr.Path)
		assert.Equal(t, 1, cfgErr.Line)
	})

	t.Run("line number", func(t *testing.T) {
		t.Parallel()

		src, err := NewJSONSource(TestJSONFile(t, []byte("{\n  \"a\": 1,\n  \"b\": ,\n}\n")))
		require.NoError(t, err)

		_, err = src.Load(context.Background())
		var cfgErr *Error
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, 3, cfgErr.Line)
	})

	t.Run("invalid utf8", func(t *testing.T) {
		t.Parallel()

		src, err := NewYAMLSource(TestYAMLFile(t, []byte{'a', ':', ' ', 0xff, '\n'}))
		require.NoError(t, err)

		_, err = src.Load(context.Background())
		require.ErrorIs(t, err, ErrParse)
	})

	t.Run("non mapping root", func(t *testing.T) {
		t.Parallel()

		src, err := NewJSONSource(TestJSONFile(t, []byte("[1, 2]")))
		require.NoError(t, err)

		_, err = src.Load(context.Background())
		require.ErrorIs(t, err, ErrParse)
	})
}

func TestSource_Idempotent(t *testing.T) {
	t.Parallel()

	var decodes atomic.Int32
	registry := codec.NewRegistry()
	registry.RegisterDecoder(codec.TypeJSON, &MockDecoder{DecodeFunc: func(data []byte, v any) error {
		decodes.Add(1)
		return codec.JSONCodec{}.Decode(data, v)
	}})

	path := TestJSONFile(t, []byte(`{"a": 1}`))
	src, err := NewJSONSource(path, WithSourceRegistry(registry))
	require.NoError(t, err)

	first, err := src.Load(context.Background())
	require.NoError(t, err)

	TestRewrite(t, path, []byte(`{"a": 2}`))
	second, err := src.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, decodes.Load())
}

func TestSource_ConcurrentFirstLoad(t *testing.T) {
	t.Parallel()

	var decodes atomic.Int32
	registry := codec.NewRegistry()
	registry.RegisterDecoder(codec.TypeJSON, &MockDecoder{DecodeFunc: func(data []byte, v any) error {
		decodes.Add(1)
		time.Sleep(10 * time.Millisecond)
		return codec.JSONCodec{}.Decode(data, v)
	}})

	src, err := NewJSONSource(TestJSONFile(t, []byte(`{"a": 1}`)), WithSourceRegistry(registry))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, loadErr := src.Load(context.Background())
			assert.NoError(t, loadErr)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, decodes.Load())
}

func TestSource_Reload(t *testing.T) {
	t.Parallel()

	path := TestJSONFile(t, []byte(`{"value": 1}`))
	src, err := NewJSONSource(path)
	require.NoError(t, err)

	doc, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, doc["value"])

	TestRewrite(t, path, []byte(`{"value": 2}`))
	doc, err = src.Reload(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, doc["value"])

	doc, err = src.Load(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, doc["value"])
}

func TestSource_ReloadFailureKeepsCache(t *testing.T) {
	t.Parallel()

	path := TestJSONFile(t, []byte(`{"value": 1}`))
	src, err := NewJSONSource(path)
	require.NoError(t, err)
	_, err = src.Load(context.Background())
	require.NoError(t, err)

	TestRewrite(t, path, []byte(`{"value": `))
	_, err = src.Reload(context.Background())
	require.ErrorIs(t, err, ErrParse)

	doc, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, doc["value"])
}

func TestSource_FileVanished(t *testing.T) {
	t.Parallel()

	path := TestJSONFile(t, []byte(`{}`))
	src, err := NewJSONSource(path)
	require.NoError(t, err)
	require.NoError(t, os.Remove(path))

	_, err = src.Load(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSource_MissingDecoderIsLazy(t *testing.T) {
	t.Parallel()

	registry := codec.NewBuiltinRegistry()
	registry.Unregister(codec.TypeTOML)

	src, err := NewTOMLSource(TestTOMLFile(t, []byte("a = 1\n")), WithSourceRegistry(registry))
	require.NoError(t, err, "construction must not need the decoder")

	_, err = src.Load(context.Background())
	require.ErrorIs(t, err, ErrMissingCapability)
}

func TestSource_CanceledContext(t *testing.T) {
	t.Parallel()

	src, err := NewJSONSource(TestJSONFile(t, []byte(`{}`)))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.Load(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSource_Get(t *testing.T) {
	t.Parallel()

	src, err := NewJSONSource(TestJSONFile(t, []byte(`{"a": {"b": 1}, "zero": 0}`)))
	require.NoError(t, err)

	v, err := src.Get(context.Background(), "zero", 7)
	require.NoError(t, err)
	assert.EqualValues(t, 0, v)

	v, err = src.Get(context.Background(), "missing", "default")
	require.NoError(t, err)
	assert.Equal(t, "default", v)

	v, err = src.Get(context.Background(), "a.b", "top-level only")
	require.NoError(t, err)
	assert.Equal(t, "top-level only", v)
}

func TestSource_GetPropagatesLoadError(t *testing.T) {
	t.Parallel()

	src, err := NewJSONSource(TestJSONFile(t, []byte("{")))
	require.NoError(t, err)

	_, err = src.Get(context.Background(), "a", nil)
	require.True(t, errors.Is(err, ErrParse))
}

func mustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	return wd
}
