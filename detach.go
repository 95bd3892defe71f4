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
	"reflect"

	"github.com/tiendc/go-deepcopy"
)

// NewDetached deep-copies src's target into a freshly allocated object and
// returns a handle owning the copy, with a reference count of 1.
//
// The copy shares no state with the original, so mutating it never races
// with the original's co-owners. Detaching a null handle yields a null
// handle. Unlike the lifecycle operations, a failure here is a data-shape
// problem rather than a bookkeeping bug, so it is returned as an error.
func NewDetached[T any](src Ptr[T]) (Ptr[T], error) {
	if src.addr == nil {
		return Ptr[T]{}, nil
	}

	rv := reflect.ValueOf(src.data)
	if rv.Kind() != reflect.Pointer {
		return Ptr[T]{}, fmt.Errorf("sharedptr: detach: element value %T is not a pointer", src.data)
	}

	clone := reflect.New(rv.Type().Elem())
	if err := deepcopy.Copy(clone.Interface(), rv.Elem().Interface()); err != nil {
		return Ptr[T]{}, fmt.Errorf("sharedptr: detach: %w", err)
	}

	data, ok := clone.Interface().(T)
	if !ok {
		// Unreachable: the clone has the same dynamic type as src.data.
		return Ptr[T]{}, fmt.Errorf("sharedptr: detach: clone %T does not satisfy element type", clone.Interface())
	}

	return New(data), nil
}
