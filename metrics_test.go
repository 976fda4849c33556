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
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Reloads(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	path := TestJSONFile(t, []byte(`{"value": 1}`))
	p := TestProvider(t, path, WithMetrics(reg))

	require.NoError(t, p.Reload(context.Background()))
	TestRewrite(t, path, []byte("{"))
	require.Error(t, p.Reload(context.Background()))

	assert.InDelta(t, 2, testutil.ToFloat64(p.metrics.reloads.WithLabelValues(reloadSuccess)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(p.metrics.reloads.WithLabelValues(reloadParseError)), 0)
	assert.Positive(t, testutil.ToFloat64(p.metrics.lastSuccess.WithLabelValues(p.Path())))
}

func TestMetrics_WatchEvents(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	watcher := NewFakeWatcher()
	path := TestJSONFile(t, []byte(`{"value": 1}`))
	p := TestProvider(t, path, WithMetrics(reg), WithWatcher(watcher), WithOnError(func(*Provider, error) {}))

	watcher.Emit(p.Path())
	watcher.Emit(filepath.Join(filepath.Dir(p.Path()), "sibling.json"))
	TestRewrite(t, path, []byte("{"))
	watcher.Emit(p.Path())

	events := p.metrics.watchEvents
	assert.InDelta(t, 1, testutil.ToFloat64(events.WithLabelValues(watchReloaded)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(events.WithLabelValues(watchIgnored)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(events.WithLabelValues(watchFailed)), 0)
}

func TestMetrics_SharedRegisterer(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	first := TestProvider(t, TestJSONFile(t, []byte(`{}`)), WithMetrics(reg))
	second := TestProvider(t, TestJSONFile(t, []byte(`{}`)), WithMetrics(reg))

	assert.Same(t, first.metrics.reloads, second.metrics.reloads)
	assert.InDelta(t, 2, testutil.ToFloat64(first.metrics.reloads.WithLabelValues(reloadSuccess)), 0)
}

func TestMetrics_ConflictingCollector(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "provider",
		Name:      "reloads_total",
		Help:      "Configuration reloads by result.",
	}))

	_, err := Open(context.Background(), TestJSONFile(t, []byte(`{}`)), WithMetrics(reg))
	require.ErrorIs(t, err, ErrInvalidOption)
}

func TestReloadResult(t *testing.T) {
	t.Parallel()

	assert.Equal(t, reloadSuccess, reloadResult(nil))
	assert.Equal(t, reloadParseError, reloadResult(NewError(ErrParse, "", "", nil)))
	assert.Equal(t, reloadValidationError, reloadResult(NewError(ErrValidationFailed, "", "", nil)))
	assert.Equal(t, reloadError, reloadResult(errors.New("disk")))
}

func TestMetrics_NilSafe(t *testing.T) {
	t.Parallel()

	var m *metrics
	assert.NotPanics(t, func() {
		m.reloaded("x", nil)
		m.watchEvent(watchStale)
	})
}
