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

package ledger_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theodor96/shared-ptr/internal/ledger"
)

func addrOf(p *int) unsafe.Pointer {
	return unsafe.Pointer(p)
}

func TestRegister(t *testing.T) {
	t.Parallel()

	l := ledger.New()
	x := addrOf(new(int))

	assert.Equal(t, 0, l.Count(x))

	l.Register(x)
	assert.Equal(t, 1, l.Count(x))

	l.Register(x)
	l.Register(x)
	assert.Equal(t, 3, l.Count(x))

	// A second identity gets its own entry.
	y := addrOf(new(int))
	l.Register(y)
	assert.Equal(t, 1, l.Count(y))
	assert.Equal(t, 3, l.Count(x))
}

func TestDeregister(t *testing.T) {
	t.Parallel()

	l := ledger.New()
	x := addrOf(new(int))

	l.Register(x)
	l.Register(x)

	assert.False(t, l.Deregister(x))
	assert.Equal(t, 1, l.Count(x))

	assert.True(t, l.Deregister(x))
	assert.Equal(t, 0, l.Count(x))
}

func TestViolations(t *testing.T) {
	t.Parallel()

	l := ledger.New()

	assert.PanicsWithError(t, "sharedptr: register: nil managed target", func() {
		l.Register(nil)
	})
	assert.PanicsWithError(t, "sharedptr: deregister: nil managed target", func() {
		l.Deregister(nil)
	})

	// Deregistering an identity we never registered is a double-free bug.
	assert.PanicsWithError(t, "sharedptr: deregister: target is not managed", func() {
		l.Deregister(addrOf(new(int)))
	})

	// Count never panics, even on nil.
	assert.Equal(t, 0, l.Count(nil))
}

func TestCountIsTypeBlind(t *testing.T) {
	t.Parallel()

	// The same address reached through differently-typed pointers lands on
	// the same entry; the ledger knows nothing about element types.
	l := ledger.New()
	s := new(struct{ n int })

	l.Register(unsafe.Pointer(s))
	l.Register(unsafe.Pointer(&s.n))
	assert.Equal(t, 2, l.Count(unsafe.Pointer(s)))
}

func TestMetrics(t *testing.T) {
	t.Parallel()

	l := ledger.New()
	x, y := addrOf(new(int)), addrOf(new(int))

	l.Register(x)
	l.Register(x)
	l.Register(y)

	m := l.Metrics()
	assert.Equal(t, int64(3), m.Registered)
	assert.Equal(t, int64(2), m.Live)
	assert.Equal(t, float64(2), m.PeakCount) //nolint:testifylint

	l.Deregister(x)
	l.Deregister(x)

	m = l.Metrics()
	assert.Equal(t, int64(1), m.Live)

	snap := l.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, int64(1), snap[uintptr(y)])
}

func TestConcurrentDistinctIdentities(t *testing.T) {
	t.Parallel()

	const (
		goroutines = 16
		rounds     = 1000
	)

	l := ledger.New()

	var wg sync.WaitGroup
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()

			x := addrOf(new(int))
			for range rounds {
				l.Register(x)
			}
			for i := range rounds {
				last := l.Deregister(x)
				assert.Equal(t, i == rounds-1, last)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(0), l.Metrics().Live)
}

func TestConcurrentLastOwnerRace(t *testing.T) {
	t.Parallel()

	const (
		goroutines = 8
		rounds     = 500
	)

	l := ledger.New()

	for range rounds {
		x := addrOf(new(int))
		for range goroutines {
			l.Register(x)
		}

		// All owners race to give up their reference. Exactly one of them,
		// including the last and second-to-last racing each other, must
		// observe "last".
		var (
			lasts atomic.Int64
			wg    sync.WaitGroup
		)
		for range goroutines {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if l.Deregister(x) {
					lasts.Add(1)
				}
			}()
		}
		wg.Wait()

		require.Equal(t, int64(1), lasts.Load())
		require.Equal(t, 0, l.Count(x))
	}
}
