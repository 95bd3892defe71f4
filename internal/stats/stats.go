// Copyright 2025 The sharedptr Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package stats provides instrumentation counter primitives.
package stats

import (
	"github.com/theodor96/shared-ptr/internal/sync2"
)

// Mean tracks an average statistic.
//
// The zero value is ready to use. Concurrent writes are safe, but calling
// [Mean.Get] concurrently with other operations may result in torn reads (and
// thus inaccuracy).
type Mean struct {
	total, samples sync2.AtomicFloat64
}

// Record records a sample.
func (m *Mean) Record(sample float64) {
	m.total.Add(sample)
	m.samples.Add(1)
}

// Get returns the mean value of this statistic.
func (m *Mean) Get() float64 {
	total, samples := m.total.Load(), m.samples.Load()
	if samples == 0 {
		return 0
	}
	return total / samples
}

// Peak tracks a running maximum statistic.
//
// The zero value is ready to use and reads as 0 until a sample is recorded.
type Peak struct {
	max sync2.AtomicFloat64
}

// Record records a sample.
func (p *Peak) Record(sample float64) {
	p.max.Max(sample)
}

// Get returns the largest sample recorded so far.
func (p *Peak) Get() float64 {
	return p.max.Load()
}
