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

package ledger

// Metrics is a point-in-time diagnostic view of a ledger.
type Metrics struct {
	// Registered is the total number of registrations ever recorded.
	Registered int64

	// Live is the number of identities currently tracked.
	Live int64

	// PeakCount is the highest co-ownership count observed on any single
	// identity.
	PeakCount float64

	// MeanCountAtDrop is the mean co-ownership count observed at the moment
	// a reference was given up.
	MeanCountAtDrop float64
}

// Metrics returns diagnostic counters for this ledger.
//
// The individual fields are read without mutual exclusion, so values taken
// while the ledger is under mutation may be mutually inconsistent.
func (l *Ledger) Metrics() Metrics {
	return Metrics{
		Registered:      l.registered.Load(),
		Live:            l.live.Load(),
		PeakCount:       l.peak.Get(),
		MeanCountAtDrop: l.atDrop.Get(),
	}
}

// Snapshot returns a copy of the table: every tracked identity and its
// current count.
//
// Entries inserted or erased while the snapshot is being taken may or may
// not appear. Intended for leak detection in tests and for debugging.
func (l *Ledger) Snapshot() map[uintptr]int64 {
	out := make(map[uintptr]int64)
	for p, count := range l.table.All() {
		out[uintptr(p)] = count.Load()
	}
	return out
}
