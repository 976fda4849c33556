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
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "configdoctor"

// Reload results reported by configdoctor_provider_reloads_total.
const (
	reloadSuccess         = "success"
	reloadParseError      = "parse_error"
	reloadValidationError = "validation_error"
	reloadError           = "error"
)

// Watch outcomes reported by configdoctor_provider_watch_events_total.
const (
	watchReloaded = "reloaded"
	watchFailed   = "failed"
	watchIgnored  = "ignored"
	watchStale    = "stale"
)

// metrics holds the provider collectors. A nil *metrics records nothing.
type metrics struct {
	reloads     *prometheus.CounterVec
	lastSuccess *prometheus.GaugeVec
	watchEvents *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	reloads, err := registerCollector(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "provider",
		Name:      "reloads_total",
		Help:      "Configuration reloads by result.",
	}, []string{"result"}))
	if err != nil {
		return nil, err
	}

	lastSuccess, err := registerCollector(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Subsystem: "provider",
		Name:      "last_reload_success_timestamp_seconds",
		Help:      "Unix time of the last successful load or reload per file.",
	}, []string{"path"}))
	if err != nil {
		return nil, err
	}

	watchEvents, err := registerCollector(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "provider",
		Name:      "watch_events_total",
		Help:      "File watch events handled by outcome.",
	}, []string{"outcome"}))
	if err != nil {
		return nil, err
	}

	return &metrics{reloads: reloads, lastSuccess: lastSuccess, watchEvents: watchEvents}, nil
}

// registerCollector registers c, returning the already registered collector
// when an identical one exists.
func registerCollector[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var alreadyRegErr prometheus.AlreadyRegisteredError
		if errors.As(err, &alreadyRegErr) {
			if existing, ok := alreadyRegErr.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *metrics) reloaded(path string, err error) {
	if m == nil {
		return
	}
	m.reloads.WithLabelValues(reloadResult(err)).Inc()
	if err == nil {
		m.lastSuccess.WithLabelValues(path).Set(float64(time.Now().UnixNano()) / float64(time.Second))
	}
}

func (m *metrics) watchEvent(outcome string) {
	if m == nil {
		return
	}
	m.watchEvents.WithLabelValues(outcome).Inc()
}

func reloadResult(err error) string {
	switch {
	case err == nil:
		return reloadSuccess
	case errors.Is(err, ErrParse):
		return reloadParseError
	case errors.Is(err, ErrValidationFailed):
		return reloadValidationError
	default:
		return reloadError
	}
}
