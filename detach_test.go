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

package sharedptr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sharedptr "github.com/theodor96/shared-ptr"
	"github.com/theodor96/shared-ptr/internal/leaktest"
)

// document has exported fields so the deep copy picks them all up.
type document struct {
	Title string
	Tags  []string
}

func (d *document) Dispose() {}

func TestNewDetached(t *testing.T) {
	t.Parallel()

	doc := &document{Title: "draft", Tags: []string{"a", "b"}}
	leaktest.Check(t, doc)

	p := sharedptr.New(doc)
	q, err := sharedptr.NewDetached(p)
	require.NoError(t, err)

	// The clone is an independent object with its own ledger entry.
	assert.NotSame(t, p.Deref(), q.Deref())
	assert.Equal(t, *doc, *q.Deref())
	assert.Equal(t, 1, p.UseCount())
	assert.Equal(t, 1, q.UseCount())

	// Mutation of the clone, including through reference fields, leaves the
	// original alone.
	q.Deref().Title = "copy"
	q.Deref().Tags[0] = "z"
	assert.Equal(t, "draft", p.Deref().Title)
	assert.Equal(t, "a", p.Deref().Tags[0])

	p.Drop()
	q.Drop()
}

func TestNewDetachedWide(t *testing.T) {
	t.Parallel()

	doc := &document{Title: "draft"}
	leaktest.Check(t, doc)

	wide := sharedptr.New[sharedptr.Disposer](doc)
	clone, err := sharedptr.NewDetached(wide)
	require.NoError(t, err)

	narrowed, ok := sharedptr.As[*document](clone)
	require.True(t, ok)
	assert.Equal(t, "draft", narrowed.Deref().Title)
	assert.NotSame(t, doc, narrowed.Deref())

	wide.Drop()
	narrowed.Drop()
	clone.Drop()
}

func TestNewDetachedNull(t *testing.T) {
	t.Parallel()

	p, err := sharedptr.NewDetached(sharedptr.Null[*document]())
	require.NoError(t, err)
	assert.False(t, p.Valid())
}
