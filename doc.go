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

// Package sharedptr implements a hand-built, reference-counted
// shared-ownership handle.
//
// A [Ptr] is a pointer-like value over a declared element type. Every
// lifecycle operation (construction from a raw value, [Ptr.Clone],
// [Ptr.Move], [Ptr.Set], [Ptr.Drop]) routes through a single process-wide
// ownership ledger keyed by the raw identity of the managed object, so
// handles declared over different element types still count as co-owners as
// long as they reference the same object. When the last owning handle drops
// its reference, the managed object is disposed of exactly once, at that
// moment, via its [Disposer] hook; the garbage collector is never trusted
// with the timing.
//
// # Element types
//
// The element type must be pointer-shaped: a pointer, or an interface whose
// dynamic values are pointers. Declaring a handle over an interface is how
// polymorphism works here:
//
//	p := sharedptr.New[Animal](&Dog{})   // upcast, checked at compile time
//	d, ok := sharedptr.As[*Dog](p)       // downcast, checked at run time
//
// A failed downcast yields a null handle and leaves the ownership count
// untouched.
//
// # Contract violations
//
// Double releases, null dereferences, and assignments that would narrow an
// element type are bookkeeping bugs, not runtime conditions. They panic with
// an error matching one of the Err sentinels in this package rather than
// returning it.
package sharedptr
