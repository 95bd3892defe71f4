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
	"errors"
	"fmt"

	"github.com/theodor96/shared-ptr/internal/ledger"
)

// Sentinel errors carried by the panics this package raises on contract
// violations. Match them on a recovered value with [errors.Is].
var (
	// ErrNilTarget is raised when the ownership ledger is handed a nil
	// identity.
	ErrNilTarget = ledger.ErrNilTarget

	// ErrNotManaged is raised when a handle releases a target the ledger
	// does not track, i.e. on a double release.
	ErrNotManaged = ledger.ErrNotManaged

	// ErrNullDeref is raised when a null handle is dereferenced.
	ErrNullDeref = errors.New("dereference of null handle")

	// ErrNotAssignable is raised by [Store] and [StoreMove] when the source
	// element value does not satisfy the destination element type. A handle
	// may only be assigned a value of its own type or a narrower one, never
	// the reverse.
	ErrNotAssignable = errors.New("source does not satisfy destination element type")
)

// opError is the panic payload for handle-level contract violations; ledger
// violations carry a [*ledger.Violation] instead, with the same shape.
type opError struct {
	op  string
	err error
}

// Unwrap implements error unwrapping viz [errors.Unwrap].
func (e *opError) Unwrap() error {
	return e.err
}

// Error implements [error].
func (e *opError) Error() string {
	return fmt.Sprintf("sharedptr: %s: %v", e.op, e.err)
}
