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
	"unsafe"

	"github.com/theodor96/shared-ptr/internal/ledger"
)

// Converting construction and assignment between related element types.
//
// Go resolves the upcast direction at compile time, but only at a
// construction site: New[Wide](&Narrow{}) will not compile unless *Narrow
// satisfies Wide. Converting an already-constructed handle has to ask at run
// time whether the stored value can be viewed as the requested type, which
// is what [As] and [AsMove] do. The result co-owns the same ledger entry as
// the source, never a second one, because the ledger is keyed by identity
// rather than by element type.

// As attempts to view p's target as element type U, copy-construction style.
//
// On success the returned handle is a new co-owner of the same target
// (count +1). If p is null, or its value does not satisfy U, the result is a
// null handle, ok is false, and the ledger is untouched.
//
// Viewing a value as an interface it implements always succeeds; viewing it
// as a narrower concrete type is the runtime-checked downcast.
func As[U, T any](p Ptr[T]) (_ Ptr[U], ok bool) {
	u, ok := any(p.data).(U)
	if p.addr == nil || !ok {
		return Ptr[U]{}, false
	}

	ledger.Global().Register(p.addr)
	return Ptr[U]{data: u, addr: p.addr}, true
}

// AsMove attempts to view p's target as element type U, move-construction
// style: on success ownership transfers to the returned handle with no count
// change and p becomes null. On failure p and the ledger are untouched.
func AsMove[U, T any](p *Ptr[T]) (_ Ptr[U], ok bool) {
	u, ok := any(p.data).(U)
	if p.addr == nil || !ok {
		return Ptr[U]{}, false
	}

	out := Ptr[U]{data: u, addr: p.addr}
	*p = Ptr[T]{}
	return out, true
}

// Store assigns src's target to dst across element types, copy-assignment
// style: dst's current target is released first (and disposed of if dst was
// its last owner), then src's target is adopted as a new co-owner.
//
// Only the widening direction is allowed: src's value must satisfy U, or
// Store panics with an error matching [ErrNotAssignable]. Assigning a null
// src nulls dst. Assigning a co-owner of dst's own target leaves the count
// unchanged.
func Store[U, T any](dst *Ptr[U], src Ptr[T]) {
	if src.addr == nil {
		dst.Drop()
		return
	}

	u, ok := any(src.data).(U)
	if !ok {
		panic(&opError{op: "store", err: ErrNotAssignable})
	}
	if dst.addr == src.addr {
		return
	}

	dst.drop(true)
	ledger.Global().Register(src.addr)
	*dst = Ptr[U]{data: u, addr: src.addr}
}

// StoreMove assigns src's target to dst across element types, move-assignment
// style: dst's current target is released first, then src's target is
// adopted without a count change and src becomes null.
//
// The same widening restriction as [Store] applies.
func StoreMove[U, T any](dst *Ptr[U], src *Ptr[T]) {
	if samePtr(dst, src) {
		return
	}
	if src.addr == nil {
		dst.Drop()
		*src = Ptr[T]{}
		return
	}

	u, ok := any(src.data).(U)
	if !ok {
		panic(&opError{op: "store", err: ErrNotAssignable})
	}

	addr := src.addr
	// If dst and src co-own the same target, src's reference keeps the count
	// alive across this drop.
	dst.drop(true)
	*dst = Ptr[U]{data: u, addr: addr}
	*src = Ptr[T]{}
}

// samePtr reports whether a and b are the same handle, regardless of their
// element types.
func samePtr[U, T any](a *Ptr[U], b *Ptr[T]) bool {
	return unsafe.Pointer(a) == unsafe.Pointer(b)
}
