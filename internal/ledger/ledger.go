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

// Package ledger implements the process-wide ownership table behind shared
// handles.
//
// The table maps a managed object's raw identity to the number of live
// handles that currently reference it. Structural mutation of the table is
// serialized by the underlying map; the counter for each identity is a
// plain atomic, so unrelated identities never contend.
//
// The ledger is keyed by identity, not by element type. A handle declared
// over a wide interface and a handle declared over the concrete type it
// wraps co-own the same entry, which is what makes converting construction
// and assignment count correctly.
package ledger

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/theodor96/shared-ptr/internal/debug"
	"github.com/theodor96/shared-ptr/internal/stats"
	"github.com/theodor96/shared-ptr/internal/xsync"
)

// Ledger tracks live-reference counts keyed by raw object identity.
//
// The zero value is ready to use. All methods are safe for concurrent use.
type Ledger struct {
	table xsync.Map[unsafe.Pointer, *atomic.Int64]

	registered atomic.Int64 // total registrations, ever
	live       atomic.Int64 // entries currently in the table

	peak   stats.Peak // highest co-ownership seen on any register
	atDrop stats.Mean // co-ownership observed at deregistration
}

var global = sync.OnceValue(New)

// Global returns the process-wide ledger shared by every handle.
//
// It is created lazily on first use and lives for the remainder of the
// process; nothing is flushed at exit, because no live handles should remain
// outstanding by then.
func Global() *Ledger {
	return global()
}

// New returns a fresh, empty ledger.
//
// Production handles always go through [Global]; isolated instances exist so
// tests can exercise the table without cross-talk.
func New() *Ledger {
	return new(Ledger)
}

func newCounter() *atomic.Int64 {
	return new(atomic.Int64)
}

// Register records one more live reference to p.
//
// An unknown identity is inserted with count 1; a known one is atomically
// incremented. Panics with a [*Violation] wrapping [ErrNilTarget] if p is
// nil: handles never register null targets, so a nil here is a caller bug.
func (l *Ledger) Register(p unsafe.Pointer) {
	if p == nil {
		panic(&Violation{Op: "register", Err: ErrNilTarget})
	}

	count, loaded := l.table.LoadOrStore(p, newCounter)
	n := count.Add(1)
	l.log(p, "register", "count=%d", n)

	l.registered.Add(1)
	l.peak.Record(float64(n))
	if !loaded {
		l.live.Add(1)
	}
}

// Deregister records that one live reference to p has been given up, and
// reports whether it was the last one.
//
// If the count drops to zero the entry is erased and Deregister returns
// true; the caller is then responsible for disposing of the object. Exactly
// one of any number of racing deregistrations for the same identity observes
// true.
//
// Panics with a [*Violation] wrapping [ErrNilTarget] if p is nil, or
// [ErrNotManaged] if p is not currently registered. The latter signals a
// double release or corrupted bookkeeping in the caller and is never
// recoverable.
func (l *Ledger) Deregister(p unsafe.Pointer) bool {
	if p == nil {
		panic(&Violation{Op: "deregister", Err: ErrNilTarget})
	}

	count, ok := l.table.Load(p)
	if !ok {
		panic(&Violation{Op: "deregister", Err: ErrNotManaged})
	}

	n := count.Add(-1)
	switch {
	case n > 0:
		l.log(p, "deregister", "count=%d", n)
		l.atDrop.Record(float64(n + 1))
		return false

	case n == 0:
		l.table.Delete(p)
		l.live.Add(-1)
		l.log(p, "deregister", "count=0, erased")
		l.atDrop.Record(1)
		return true

	default:
		// The counter went negative: two releases raced past the erase.
		panic(&Violation{Op: "deregister", Err: ErrNotManaged})
	}
}

// Count returns the current count for p, or zero if p is nil or not
// registered.
//
// Unlike [Ledger.Register] and [Ledger.Deregister] this never panics; it is
// a diagnostic query, not a control-flow primitive.
func (l *Ledger) Count(p unsafe.Pointer) int {
	if p == nil {
		return 0
	}

	count, ok := l.table.Load(p)
	if !ok {
		return 0
	}

	return int(count.Load())
}

func (l *Ledger) log(p unsafe.Pointer, op, format string, args ...any) {
	debug.Log([]any{"%p", p}, op, format, args...)
}
