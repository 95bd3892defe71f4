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

// Package xunsafe provides the small amount of interface introspection the
// ownership ledger needs to key managed objects by raw identity.
package xunsafe

import (
	"reflect"
	"unsafe"
)

// iface is the internal representation of a Go interface value.
type iface struct {
	itab uintptr
	data unsafe.Pointer
}

// AnyData extracts the data word from an any.
//
// For pointer-shaped values (pointers, maps, channels, funcs) the data word
// is the value itself, which makes it usable as an identity: every any
// wrapping the same pointer yields the same word. Both a nil any and an any
// wrapping a typed nil pointer yield nil.
func AnyData(v any) unsafe.Pointer {
	return (*iface)(unsafe.Pointer(&v)).data
}

// AnyType extracts the opaque type word from an any.
func AnyType(v any) uintptr {
	return (*iface)(unsafe.Pointer(&v)).itab
}

// PointerShaped reports whether v is stored directly in an interface's data
// word, i.e. whether [AnyData] returns the value itself rather than a pointer
// to a heap-allocated box.
func PointerShaped(v any) bool {
	if v == nil {
		return true
	}

	t := reflect.TypeOf(v)
again:
	switch t.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.Func,
		reflect.Map, reflect.Chan:
		return true

	case reflect.Array:
		if t.Len() != 1 {
			return false
		}
		t = t.Elem()
		goto again

	case reflect.Struct:
		if t.NumField() != 1 {
			return false
		}
		t = t.Field(0).Type
		goto again

	default:
		return false
	}
}
