// Copyright 2021 FerretDB Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FerretDB/bsondoc/internal/util/must"
	"github.com/FerretDB/bsondoc/iterator"
	"github.com/FerretDB/bsondoc/iterator/testiterator"
)

func TestNewMutableDocument(t *testing.T) {
	t.Parallel()

	t.Run("Empty", func(t *testing.T) {
		t.Parallel()

		doc, err := NewMutableDocument()
		require.NoError(t, err)
		assert.Equal(t, 0, doc.Len())
	})

	t.Run("DuplicateKey", func(t *testing.T) {
		t.Parallel()

		doc, err := NewMutableDocument("a", int32(1), "b", int32(2), "a", int32(3))
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, doc.Keys())
		assert.Equal(t, int32(3), must.NotFail(doc.Get("a")))
	})

	t.Run("OddArguments", func(t *testing.T) {
		t.Parallel()

		_, err := NewMutableDocument("foo")
		assert.EqualError(t, err, "types.NewMutableDocument: invalid number of arguments: 1")
	})
}

func TestMutableDocumentSet(t *testing.T) {
	t.Parallel()

	var doc MutableDocument

	require.NoError(t, doc.Set("a", int32(1)))
	require.NoError(t, doc.Set("b", 42)) // resolved to int32
	require.NoError(t, doc.Set("a", "replaced"))

	assert.Equal(t, []string{"a", "b"}, doc.Keys())
	assert.Equal(t, "replaced", must.NotFail(doc.Get("a")))
	assert.Equal(t, int32(42), must.NotFail(doc.Get("b")))

	err := doc.Set("", int32(1))
	assert.EqualError(t, err, `types.MutableDocument.Set: invalid key: ""`)
}

func TestMutableDocumentRemove(t *testing.T) {
	t.Parallel()

	doc := must.NotFail(NewMutableDocument("a", int32(1), "b", int32(2)))

	doc.Remove("a")
	assert.Equal(t, []string{"b"}, doc.Keys())

	doc.Remove("missing")
	assert.Equal(t, []string{"b"}, doc.Keys())
}

func TestMutableDocumentMerge(t *testing.T) {
	t.Parallel()

	doc := must.NotFail(NewMutableDocument("a", int32(1), "b", int32(2)))
	other := must.NotFail(NewDocument("b", "other", "c", int32(3)))

	require.NoError(t, doc.Merge(other))

	assert.Equal(t, []string{"a", "b", "c"}, doc.Keys())
	assert.Equal(t, "other", must.NotFail(doc.Get("b")))
}

func TestMutableDocumentFreeze(t *testing.T) {
	t.Parallel()

	doc := must.NotFail(NewMutableDocument("a", int32(1), "b", int32(2)))
	frozen := doc.Freeze()

	require.NoError(t, doc.Set("c", int32(3)))
	doc.Remove("a")

	// later changes of the mutable document are not seen by the frozen one
	assert.Equal(t, []string{"a", "b"}, frozen.Keys())
	assert.Equal(t, int32(1), must.NotFail(frozen.Get("a")))
}

func TestMutableDocumentIterator(t *testing.T) {
	t.Parallel()

	doc := must.NotFail(NewMutableDocument("a", int32(1), "b", int32(2)))

	iter := doc.Iterator()
	defer iter.Close()

	// the iterator is over a snapshot
	require.NoError(t, doc.Set("c", int32(3)))

	keys := make([]string, 0, 2)
	for {
		k, _, err := iter.Next()
		if err != nil {
			assert.ErrorIs(t, err, iterator.ErrIteratorDone)
			break
		}
		keys = append(keys, k)
	}

	assert.Equal(t, []string{"a", "b"}, keys)
}

func TestMutableDocumentIteratorContract(t *testing.T) {
	t.Parallel()

	testiterator.TestIterator(t, func() iterator.Interface[string, any] {
		return must.NotFail(NewMutableDocument("a", int32(1), "b", int32(2))).Iterator()
	})
}
