// Copyright (C) 2019-2025 Algorand, Inc.
// This file is part of go-algorand
//
// go-algorand is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// go-algorand is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with go-algorand.  If not, see <https://www.gnu.org/licenses/>.

package metrics

import (
	"io"

	"github.com/algorand/go-deadlock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Registry represents a single set of metrics registry
type Registry struct {
	reg *prometheus.Registry

	mu         deadlock.Mutex
	collectors map[string]prometheus.Collector
}

var defaultRegistry = MakeRegistry()

// DefaultRegistry returns the default registry
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// MakeRegistry creates a new metrics registry
func MakeRegistry() *Registry {
	return &Registry{
		reg:        prometheus.NewRegistry(),
		collectors: make(map[string]prometheus.Collector),
	}
}

// register adds the collector under name. A second registration of the same
// name returns the collector registered first.
func (r *Registry) register(name string, c prometheus.Collector) prometheus.Collector {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.collectors[name]; ok {
		return existing
	}
	r.reg.MustRegister(c)
	r.collectors[name] = c
	return c
}

func (r *Registry) deregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.collectors[name]; ok {
		r.reg.Unregister(c)
		delete(r.collectors, name)
	}
}

// Gatherer exposes the underlying Prometheus gatherer.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// WriteMetrics writes every registered metric in the Prometheus text
// exposition format.
func (r *Registry) WriteMetrics(w io.Writer) error {
	families, err := r.reg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
