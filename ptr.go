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

package sharedptr

import (
	"fmt"
	"unsafe"

	"github.com/theodor96/shared-ptr/internal/debug"
	"github.com/theodor96/shared-ptr/internal/ledger"
	"github.com/theodor96/shared-ptr/internal/xunsafe"
)

// Disposer is the explicit disposal hook for managed objects.
//
// When the last owning handle drops its reference to an object implementing
// Disposer, Dispose is called exactly once, at that moment. Objects that do
// not implement it are simply unreferenced and left to the garbage
// collector.
type Disposer interface {
	Dispose()
}

// Ptr is a shared-ownership handle over an element type T.
//
// T must be pointer-shaped: a pointer type, or an interface type whose
// dynamic values are pointers. The zero value is a null handle.
//
// A Ptr value is cheap to pass around, but the lifecycle operations come in
// pairs that must balance: every [New], [Ptr.Clone], successful [As], and
// adopting [Ptr.Set] is one reference, and every [Ptr.Drop], [Ptr.Release],
// or releasing assignment gives one back. Distinct handles to the same
// target may be used from different goroutines; a single *Ptr must not be
// mutated concurrently.
type Ptr[T any] struct {
	data T
	addr unsafe.Pointer
}

// New constructs a handle owning data, registering it with the process-wide
// ownership ledger.
//
// A nil data yields a null handle. Construction is also the statically
// checked upcast: New[Wide](narrow) compiles only if narrow's type satisfies
// Wide.
func New[T any](data T) Ptr[T] {
	addr := xunsafe.AnyData(data)
	if addr == nil {
		return Ptr[T]{}
	}
	debug.Assert(xunsafe.PointerShaped(data), "element value %T is not pointer-shaped", data)

	ledger.Global().Register(addr)
	return Ptr[T]{data: data, addr: addr}
}

// Null returns a null handle of element type T.
func Null[T any]() Ptr[T] {
	return Ptr[T]{}
}

// Clone returns a new co-owning handle to the same target, incrementing its
// reference count. Cloning a null handle yields a null handle.
func (p Ptr[T]) Clone() Ptr[T] {
	if p.addr == nil {
		return Ptr[T]{}
	}

	ledger.Global().Register(p.addr)
	return p
}

// Move transfers ownership out of p into the returned handle without
// touching the reference count. Afterward p is null.
func (p *Ptr[T]) Move() Ptr[T] {
	out := *p
	*p = Ptr[T]{}
	return out
}

// Set replaces p's target with src's, copy-assignment style: the current
// target is released first (and disposed of if p was its last owner), then
// src's target is adopted as a new co-owner.
//
// Assigning a handle to itself, or to any co-owner of its own target, leaves
// the count unchanged.
func (p *Ptr[T]) Set(src Ptr[T]) {
	if p.addr == src.addr {
		return
	}

	p.drop(true)
	*p = src.Clone()
}

// SetMove replaces p's target with src's, move-assignment style: the current
// target is released first, then src's target is adopted without a count
// change and src becomes null.
func (p *Ptr[T]) SetMove(src *Ptr[T]) {
	if p == src {
		return
	}

	// When p and src co-own the same target, src's reference keeps the
	// count above zero across this drop, so the target cannot be disposed
	// of out from under us.
	p.drop(true)
	*p = *src
	*src = Ptr[T]{}
}

// Drop gives up p's reference. If it was the last one, the target is
// disposed of via [Disposer]. Afterward p is null; dropping a null handle is
// a no-op.
func (p *Ptr[T]) Drop() {
	p.drop(true)
}

// Release gives up p's reference WITHOUT disposing of the target, even if it
// was the last reference.
//
// This is the advanced escape hatch for callers that have arranged disposal
// elsewhere. Its safety is entirely caller-dependent: releasing the last
// reference and then forgetting the object leaks it, and disposing of it
// twice through some other path is a double free the ledger can no longer
// catch. Afterward p is null.
func (p *Ptr[T]) Release() {
	p.drop(false)
}

func (p *Ptr[T]) drop(dispose bool) {
	if p.addr == nil {
		return
	}

	if ledger.Global().Deregister(p.addr) && dispose {
		if d, ok := any(p.data).(Disposer); ok {
			d.Dispose()
		}
	}
	*p = Ptr[T]{}
}

// Deref returns the managed value. It panics with an error matching
// [ErrNullDeref] if p is null.
func (p Ptr[T]) Deref() T {
	if p.addr == nil {
		panic(&opError{op: "deref", err: ErrNullDeref})
	}

	return p.data
}

// Valid reports whether p currently references a target.
func (p Ptr[T]) Valid() bool {
	return p.addr != nil
}

// UseCount returns the number of live handles co-owning p's target, or 0 if
// p is null. Diagnostic only: by the time the caller looks at the result,
// other goroutines may already have changed it.
func (p Ptr[T]) UseCount() int {
	return ledger.Global().Count(p.addr)
}

// String implements [fmt.Stringer]. Only relevant for debugging.
func (p Ptr[T]) String() string {
	if p.addr == nil {
		return fmt.Sprintf("Ptr[%T](null)", p.data)
	}
	return fmt.Sprintf("Ptr[%T](%p, refs=%d)", p.data, p.addr, p.UseCount())
}
