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
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Gauge represent a single gauge variable.
type Gauge struct {
	name string
	g    prometheus.Gauge
}

// MakeGauge create a new gauge with the provided name and description,
// registered with the default registry.
func MakeGauge(metric MetricName) *Gauge {
	return MakeGaugeWithRegistry(DefaultRegistry(), metric)
}

// MakeGaugeWithRegistry creates a gauge registered with reg.
func MakeGaugeWithRegistry(reg *Registry, metric MetricName) *Gauge {
	g := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: metric.Name,
		Help: metric.Description,
	})
	g = reg.register(metric.Name, g).(prometheus.Gauge)
	return &Gauge{name: metric.Name, g: g}
}

// Set sets the gauge value
func (gauge *Gauge) Set(val uint64) {
	gauge.g.Set(float64(val))
}

// GetUint64Value returns the current gauge value
func (gauge *Gauge) GetUint64Value() uint64 {
	var m dto.Metric
	if err := gauge.g.Write(&m); err != nil {
		return 0
	}
	return uint64(m.GetGauge().GetValue())
}

// Deregister deregisters the gauge with the default/specific registry
func (gauge *Gauge) Deregister(reg *Registry) {
	if reg == nil {
		reg = DefaultRegistry()
	}
	reg.deregister(gauge.name)
}
