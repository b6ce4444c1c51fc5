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

func TestArray(t *testing.T) {
	t.Parallel()

	t.Run("New", func(t *testing.T) {
		t.Parallel()

		a, err := NewArray("foo", 42, nil)
		require.NoError(t, err)
		assert.Equal(t, 3, a.Len())

		assert.Equal(t, "foo", must.NotFail(a.Get(0)))
		assert.Equal(t, int32(42), must.NotFail(a.Get(1)))
		assert.Equal(t, Null, must.NotFail(a.Get(2)))
	})

	t.Run("GetOutOfBounds", func(t *testing.T) {
		t.Parallel()

		a := must.NotFail(NewArray("foo"))

		_, err := a.Get(1)
		assert.EqualError(t, err, "types.Array.Get: index 1 is out of bounds [0-1)")

		_, err = a.Get(-1)
		assert.EqualError(t, err, "types.Array.Get: index -1 is out of bounds [0-1)")
	})

	t.Run("Set", func(t *testing.T) {
		t.Parallel()

		a := must.NotFail(NewArray("foo"))
		require.NoError(t, a.Set(0, 42))
		assert.Equal(t, int32(42), must.NotFail(a.Get(0)))

		err := a.Set(1, "bar")
		assert.EqualError(t, err, "types.Array.Set: index 1 is out of bounds [0-1)")
	})

	t.Run("Append", func(t *testing.T) {
		t.Parallel()

		a := MakeArray(2)
		require.NoError(t, a.Append("foo", 42))
		assert.Equal(t, 2, a.Len())
		assert.Equal(t, int32(42), must.NotFail(a.Get(1)))

		var zero Array
		require.NoError(t, zero.Append(nil))
		assert.Equal(t, Null, must.NotFail(zero.Get(0)))
	})

	t.Run("UnsupportedValue", func(t *testing.T) {
		t.Parallel()

		_, err := NewArray(struct{}{})
		require.Error(t, err)
	})
}

func TestArrayIterator(t *testing.T) {
	t.Parallel()

	a := must.NotFail(NewArray("foo", "bar"))

	iter := a.Iterator()
	defer iter.Close()

	i, v, err := iter.Next()
	require.NoError(t, err)
	assert.Equal(t, 0, i)
	assert.Equal(t, "foo", v)

	i, v, err = iter.Next()
	require.NoError(t, err)
	assert.Equal(t, 1, i)
	assert.Equal(t, "bar", v)

	_, _, err = iter.Next()
	assert.ErrorIs(t, err, iterator.ErrIteratorDone)
}

func TestArrayIteratorContract(t *testing.T) {
	t.Parallel()

	testiterator.TestIterator(t, func() iterator.Interface[int, any] {
		return must.NotFail(NewArray("foo", "bar")).Iterator()
	})
}
