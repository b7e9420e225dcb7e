// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package metrics defines the Prometheus collectors served at /metrics.
//
// Every recording method is safe on a nil *Metrics, so components can run
// without instrumentation in tests.
package metrics
