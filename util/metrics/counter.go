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

// Counter represent a single counter variable.
type Counter struct {
	name string
	vec  *prometheus.CounterVec
}

// MakeCounter create a new counter with the provided name and description,
// registered with the default registry. labelNames lists the label keys the
// counter accepts.
func MakeCounter(metric MetricName, labelNames ...string) *Counter {
	return MakeCounterWithRegistry(DefaultRegistry(), metric, labelNames...)
}

// MakeCounterWithRegistry creates a counter registered with reg.
func MakeCounterWithRegistry(reg *Registry, metric MetricName, labelNames ...string) *Counter {
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: metric.Name,
		Help: metric.Description,
	}, labelNames)
	vec = reg.register(metric.Name, vec).(*prometheus.CounterVec)
	return &Counter{name: metric.Name, vec: vec}
}

// Deregister deregisters the counter with the default/specific registry
func (counter *Counter) Deregister(reg *Registry) {
	if reg == nil {
		reg = DefaultRegistry()
	}
	reg.deregister(counter.name)
}

// Inc increases counter by 1
func (counter *Counter) Inc(labels map[string]string) {
	counter.AddUint64(1, labels)
}

// AddUint64 increases counter by x
func (counter *Counter) AddUint64(x uint64, labels map[string]string) {
	counter.vec.With(prometheus.Labels(labels)).Add(float64(x))
}

// GetUint64ValueForLabels returns the value of the counter for the given labels.
func (counter *Counter) GetUint64ValueForLabels(labels map[string]string) uint64 {
	var m dto.Metric
	if err := counter.vec.With(prometheus.Labels(labels)).Write(&m); err != nil {
		return 0
	}
	return uint64(m.GetCounter().GetValue())
}

// GetUint64Value returns the value of an unlabelled counter.
func (counter *Counter) GetUint64Value() uint64 {
	return counter.GetUint64ValueForLabels(nil)
}
