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

import (
	"errors"
	"fmt"
)

// Contract violations. Every one of them indicates a bug in the caller's
// ownership bookkeeping, so they are raised as panics carrying a
// [*Violation], never returned.
var (
	// ErrNilTarget indicates a ledger method was handed a nil identity.
	ErrNilTarget = errors.New("nil managed target")

	// ErrNotManaged indicates deregistration of an identity the ledger does
	// not currently track, i.e. a double release.
	ErrNotManaged = errors.New("target is not managed")
)

// Violation is the panic payload raised on a ledger contract violation.
type Violation struct {
	Op  string
	Err error
}

// Unwrap implements error unwrapping viz [errors.Unwrap].
func (v *Violation) Unwrap() error {
	return v.Err
}

// Error implements [error].
func (v *Violation) Error() string {
	return fmt.Sprintf("sharedptr: %s: %v", v.Op, v.Err)
}
