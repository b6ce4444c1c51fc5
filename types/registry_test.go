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
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/AlekSi/pointer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FerretDB/bsondoc/internal/util/must"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	doc := must.NotFail(NewDocument("foo", "bar"))

	for name, tc := range map[string]struct {
		v        any
		expected any
	}{
		"Nil":      {v: nil, expected: Null},
		"Null":     {v: Null, expected: Null},
		"Float64":  {v: 42.13, expected: 42.13},
		"String":   {v: "foo", expected: "foo"},
		"Bool":     {v: true, expected: true},
		"Int32":    {v: int32(42), expected: int32(42)},
		"Int64":    {v: int64(42), expected: int64(42)},
		"Document": {v: doc, expected: doc},

		"Bytes": {
			v:        []byte{0x42, 0x13},
			expected: Binary{Subtype: BinaryGeneric, B: []byte{0x42, 0x13}},
		},

		"Float32": {v: float32(2), expected: float64(2)},

		"Int":      {v: 42, expected: int32(42)},
		"IntBig":   {v: math.MaxInt32 + 1, expected: int64(math.MaxInt32 + 1)},
		"Int8":     {v: int8(42), expected: int32(42)},
		"Int16":    {v: int16(42), expected: int32(42)},
		"IntNeg":   {v: math.MinInt32 - 1, expected: int64(math.MinInt32 - 1)},
		"Uint8":    {v: uint8(42), expected: int32(42)},
		"Uint16":   {v: uint16(42), expected: int32(42)},
		"Uint32":   {v: uint32(math.MaxUint32), expected: int64(math.MaxUint32)},
		"Uint64":   {v: uint64(42), expected: int32(42)},
		"Uint":     {v: uint(math.MaxInt32 + 1), expected: int64(math.MaxInt32 + 1)},

		"Ptr":      {v: pointer.To("foo"), expected: "foo"},
		"PtrInt":   {v: pointer.To(42), expected: int32(42)},
		"PtrPtr":   {v: pointer.To(pointer.To(int64(42))), expected: int64(42)},
		"NilPtr":   {v: (*string)(nil), expected: Null},
		"NilSlice": {v: []string(nil), expected: must.NotFail(NewArray())},

		"Slice": {
			v:        []string{"foo", "bar"},
			expected: must.NotFail(NewArray("foo", "bar")),
		},
		"SliceMixed": {
			v:        []any{int32(1), "foo", nil},
			expected: must.NotFail(NewArray(int32(1), "foo", Null)),
		},
		"SliceBytes": {
			v: [][]byte{{0x42}},
			expected: must.NotFail(NewArray(
				Binary{Subtype: BinaryGeneric, B: []byte{0x42}},
			)),
		},
		"GoArray": {
			v:        [2]int{1, 2},
			expected: must.NotFail(NewArray(int32(1), int32(2))),
		},

		"Pairs": {
			v: []Pair{
				{Key: "a", Value: int32(1)},
				{Key: "b", Value: int32(2)},
				{Key: "a", Value: int32(3)},
			},
			expected: must.NotFail(NewDocument("a", int32(3), "b", int32(2))),
		},
	} {
		name, tc := name, tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			actual, err := Resolve(tc.v)
			require.NoError(t, err)
			assert.True(t, Equal(tc.expected, actual), "expected %v, got %v", tc.expected, actual)
		})
	}
}

func TestResolveTime(t *testing.T) {
	t.Parallel()

	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	v, err := Resolve(time.Date(2021, 7, 27, 9, 35, 42, 123456789, loc))
	require.NoError(t, err)

	// normalized to UTC with a millisecond precision
	expected := time.Date(2021, 7, 27, 7, 35, 42, 123000000, time.UTC)
	assert.Equal(t, expected, v)
}

func TestResolveUnsupported(t *testing.T) {
	t.Parallel()

	t.Run("Struct", func(t *testing.T) {
		t.Parallel()

		_, err := Resolve(struct{ X int }{X: 1})
		require.Error(t, err)

		var unsupported *UnsupportedTypeError
		require.True(t, errors.As(err, &unsupported))
		assert.Equal(t, reflect.TypeOf(struct{ X int }{}), unsupported.Type)
	})

	t.Run("Uint64Overflow", func(t *testing.T) {
		t.Parallel()

		_, err := Resolve(uint64(math.MaxInt64) + 1)
		require.Error(t, err)

		var unsupported *UnsupportedTypeError
		require.True(t, errors.As(err, &unsupported))
		assert.Equal(t, "value overflows int64", unsupported.Reason)
	})

	t.Run("SliceElement", func(t *testing.T) {
		t.Parallel()

		_, err := Resolve([]any{int32(1), struct{}{}})
		require.Error(t, err)

		var unsupported *UnsupportedTypeError
		assert.True(t, errors.As(err, &unsupported))
	})
}

func TestRegistryRegister(t *testing.T) {
	t.Parallel()

	type point struct {
		X int32
		Y int32
	}

	r := NewRegistry()
	r.Register(reflect.TypeOf(point{}), func(r *Registry, v any) (any, error) {
		p := v.(point)
		return newDocument(r, []any{"x", p.X, "y", p.Y})
	})

	t.Run("Exact", func(t *testing.T) {
		t.Parallel()

		v, err := r.Resolve(point{X: 1, Y: 2})
		require.NoError(t, err)
		assert.True(t, Equal(must.NotFail(NewDocument("x", int32(1), "y", int32(2))), v))
	})

	t.Run("Recursive", func(t *testing.T) {
		t.Parallel()

		// the slice rule resolves elements through the same registry
		v, err := r.Resolve([]point{{X: 1, Y: 2}})
		require.NoError(t, err)

		a := v.(*Array)
		require.Equal(t, 1, a.Len())
		assert.True(t, Equal(must.NotFail(NewDocument("x", int32(1), "y", int32(2))), must.NotFail(a.Get(0))))
	})

	t.Run("DefaultUnchanged", func(t *testing.T) {
		t.Parallel()

		_, err := Resolve(point{X: 1, Y: 2})
		require.Error(t, err)
	})
}
