// Copyright 2026 The rollup-core Authors
// This file is part of the rollup-core library.
//
// The rollup-core library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The rollup-core library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the rollup-core library. If not, see <http://www.gnu.org/licenses/>.

// Package metrics registers the in-process counters and gauges emitted by
// each actor (mempool admission, gas-counter seals, eth-sender confirmations,
// data-restore progress) and exposes them over HTTP for scraping.
package metrics

import (
	"fmt"
	"net/http"

	gometrics "github.com/rcrowley/go-metrics"
)

// Enabled gates metric registration the same way upstream go-ethereum/klaytn
// style codebases do: disabled by default so unit tests don't leak global
// registry state between packages.
var Enabled = false

var registry = gometrics.NewRegistry()

// NewRegisteredCounter mirrors metrics.NewRegisteredCounter from the
// rcrowley/go-metrics API used throughout the mempool and eth-sender actors.
func NewRegisteredCounter(name string) gometrics.Counter {
	if !Enabled {
		return gometrics.NilCounter{}
	}
	return gometrics.GetOrRegisterCounter(name, registry)
}

// NewRegisteredGauge mirrors metrics.NewRegisteredGauge.
func NewRegisteredGauge(name string) gometrics.Gauge {
	if !Enabled {
		return gometrics.NilGauge{}
	}
	return gometrics.GetOrRegisterGauge(name, registry)
}

// NewRegisteredTimer mirrors metrics.NewRegisteredTimer, used for the
// eth-sender's L1 RPC latency and the state keeper's block-seal latency.
func NewRegisteredTimer(name string) gometrics.Timer {
	if !Enabled {
		return gometrics.NilTimer{}
	}
	return gometrics.GetOrRegisterTimer(name, registry)
}

// Handler exposes the registry in a simple text format on an HTTP mux, for
// the same kind of operator scrape endpoint a debug API serves pprof on.
func Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		registry.Each(func(name string, i interface{}) {
			switch m := i.(type) {
			case gometrics.Counter:
				fmt.Fprintf(w, "%s %d\n", name, m.Count())
			case gometrics.Gauge:
				fmt.Fprintf(w, "%s %d\n", name, m.Value())
			case gometrics.Timer:
				fmt.Fprintf(w, "%s_count %d\n", name, m.Count())
				fmt.Fprintf(w, "%s_mean %f\n", name, m.Mean())
			}
		})
	})
}
