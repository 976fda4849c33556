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

package configdoctor

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestFile writes content to a file called name inside a fresh temporary
// directory and returns its path.
// The file is automatically cleaned up when the test completes.
func TestFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	filePath := filepath.Join(t.TempDir(), name)
	err := os.WriteFile(filePath, content, 0o600)
	require.NoError(t, err, "failed to create test file %s", name)
	return filePath
}

// TestYAMLFile creates a temporary YAML file with the given content.
func TestYAMLFile(t *testing.T, content []byte) string {
	t.Helper()
	return TestFile(t, "config.yaml", content)
}

// TestJSONFile creates a temporary JSON file with the given content.
func TestJSONFile(t *testing.T, content []byte) string {
	t.Helper()
	return TestFile(t, "config.json", content)
}

// TestTOMLFile creates a temporary TOML file with the given content.
func TestTOMLFile(t *testing.T, content []byte) string {
	t.Helper()
	return TestFile(t, "config.toml", content)
}

// TestRewrite replaces the content of an existing test file.
func TestRewrite(t *testing.T, path string, content []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, content, 0o600), "failed to rewrite %s", path)
}

// TestProvider opens a provider for path and stops it when the test completes.
// It fails the test if opening fails.
func TestProvider(t *testing.T, path string, opts ...Option) *Provider {
	t.Helper()
	p, err := Open(context.Background(), path, opts...)
	require.NoError(t, err, "failed to open test provider")
	t.Cleanup(func() { _ = p.StopWatching() })
	return p
}

// AssertConfigValue asserts that a configuration value matches the expected value.
func AssertConfigValue(t *testing.T, p *Provider, key string, expected any) {
	t.Helper()
	actual := p.Get(key, nil)
	require.Equal(t, expected, actual, "config value mismatch for key %q", key)
}

// AssertConfigString asserts that a string configuration value matches the expected value.
func AssertConfigString(t *testing.T, p *Provider, key, expected string) {
	t.Helper()
	require.Equal(t, expected, p.String(key), "config string mismatch for key %q", key)
}

// AssertConfigInt asserts that an integer configuration value matches the expected value.
func AssertConfigInt(t *testing.T, p *Provider, key string, expected int) {
	t.Helper()
	require.Equal(t, expected, p.Int(key), "config int mismatch for key %q", key)
}

// FakeWatcher is a [Watcher] driven by the test through [FakeWatcher.Emit].
type FakeWatcher struct {
	// SubscribeErr, when set, is returned by Subscribe.
	SubscribeErr error

	mu     sync.Mutex
	subs   []*fakeSubscription
	closes int
}

// NewFakeWatcher creates a watcher that delivers only what the test emits.
func NewFakeWatcher() *FakeWatcher {
	return &FakeWatcher{}
}

// Subscribe implements [Watcher].
func (w *FakeWatcher) Subscribe(dir string, onEvent func(path string)) (io.Closer, error) {
	if w.SubscribeErr != nil {
		return nil, w.SubscribeErr
	}
	sub := &fakeSubscription{watcher: w, dir: dir, onEvent: onEvent}
	w.mu.Lock()
	w.subs = append(w.subs, sub)
	w.mu.Unlock()
	return sub, nil
}

// Emit synchronously delivers an event for path to every open subscription
// on the directory containing path.
func (w *FakeWatcher) Emit(path string) {
	w.mu.Lock()
	subs := append([]*fakeSubscription(nil), w.subs...)
	w.mu.Unlock()

	for _, sub := range subs {
		if sub.dir == filepath.Dir(path) {
			sub.deliver(path)
		}
	}
}

// Dirs returns the directories of all subscriptions ever made.
func (w *FakeWatcher) Dirs() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	dirs := make([]string, 0, len(w.subs))
	for _, sub := range w.subs {
		dirs = append(dirs, sub.dir)
	}
	return dirs
}

// Open returns the number of subscriptions not yet closed.
func (w *FakeWatcher) Open() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, sub := range w.subs {
		if !sub.closed {
			n++
		}
	}
	return n
}

// Closes returns how many times a subscription was actually released.
func (w *FakeWatcher) Closes() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closes
}

type fakeSubscription struct {
	watcher *FakeWatcher
	dir     string
	onEvent func(string)

	deliverMu sync.Mutex
	closed    bool // guarded by watcher.mu
}

func (s *fakeSubscription) deliver(path string) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	s.watcher.mu.Lock()
	closed := s.closed
	s.watcher.mu.Unlock()
	if !closed {
		s.onEvent(path)
	}
}

// Close waits for a running delivery, like the real watcher.
func (s *fakeSubscription) Close() error {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	s.watcher.mu.Lock()
	defer s.watcher.mu.Unlock()
	if !s.closed {
		s.closed = true
		s.watcher.closes++
	}
	return nil
}

// MockDecoder is a test decoder that can be configured to return specific values or errors.
type MockDecoder struct {
	DecodeFunc func(data []byte, v any) error
}

// Decode implements the codec.Decoder interface.
func (m *MockDecoder) Decode(data []byte, v any) error {
	if m.DecodeFunc != nil {
		return m.DecodeFunc(data, v)
	}
	return nil
}

// MockEncoder is a test encoder that can be configured to return specific values or errors.
type MockEncoder struct {
	EncodeFunc func(v any) ([]byte, error)
}

// Encode implements the codec.Encoder interface.
func (m *MockEncoder) Encode(v any) ([]byte, error) {
	if m.EncodeFunc != nil {
		return m.EncodeFunc(v)
	}
	return []byte{}, nil
}

// MockCodec is a test codec that implements both Encoder and Decoder.
type MockCodec struct {
	MockDecoder
	MockEncoder
}

// NewMockCodec creates a new mock codec for testing.
func NewMockCodec(decodeFunc func([]byte, any) error, encodeFunc func(any) ([]byte, error)) *MockCodec {
	return &MockCodec{
		MockDecoder: MockDecoder{DecodeFunc: decodeFunc},
		MockEncoder: MockEncoder{EncodeFunc: encodeFunc},
	}
}
