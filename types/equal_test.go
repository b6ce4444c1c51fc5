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
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/FerretDB/bsondoc/internal/util/must"
)

func TestEqualScalars(t *testing.T) {
	t.Parallel()

	assert.True(t, Equal("foo", "foo"))
	assert.False(t, Equal("foo", "bar"))

	assert.True(t, Equal(42.13, 42.13))
	assert.True(t, Equal(math.NaN(), math.NaN()))
	assert.True(t, Equal(math.Copysign(0, -1), 0.0))
	assert.True(t, Equal(math.Inf(1), math.Inf(1)))
	assert.False(t, Equal(math.Inf(1), math.Inf(-1)))

	// BSON values of different types are not equal
	assert.False(t, Equal(int32(42), int64(42)))
	assert.False(t, Equal(int32(42), 42.0))

	assert.True(t, Equal(Null, Null))
	assert.False(t, Equal(Null, false))

	assert.True(t, Equal(
		Binary{Subtype: BinaryGeneric, B: []byte{0x42}},
		Binary{Subtype: BinaryGeneric, B: []byte{0x42}},
	))
	assert.False(t, Equal(
		Binary{Subtype: BinaryGeneric, B: []byte{0x42}},
		Binary{Subtype: BinaryUUID, B: []byte{0x42}},
	))

	assert.True(t, Equal(
		Regex{Pattern: "^foo", Options: "i"},
		Regex{Pattern: "^foo", Options: "i"},
	))
	assert.False(t, Equal(
		Regex{Pattern: "^foo", Options: "i"},
		Regex{Pattern: "^foo", Options: ""},
	))
}

func TestEqualTime(t *testing.T) {
	t.Parallel()

	loc, err := time.LoadLocation("Europe/Berlin")
	assert.NoError(t, err)

	utc := time.Date(2021, 7, 27, 7, 35, 42, 123000000, time.UTC)
	berlin := utc.In(loc)

	assert.True(t, Equal(utc, berlin))
	assert.False(t, Equal(utc, utc.Add(time.Millisecond)))
}

func TestEqualComposites(t *testing.T) {
	t.Parallel()

	d1 := must.NotFail(NewDocument("a", int32(1), "b", must.NotFail(NewArray("x"))))
	d2 := must.NotFail(NewDocument("a", int32(1), "b", must.NotFail(NewArray("x"))))
	d3 := must.NotFail(NewDocument("b", must.NotFail(NewArray("x")), "a", int32(1)))

	assert.True(t, Equal(d1, d2))

	// field order matters
	assert.False(t, Equal(d1, d3))

	assert.False(t, Equal(d1, must.NotFail(NewDocument("a", int32(1)))))
	assert.False(t, Equal(d1, must.NotFail(NewArray())))

	a1 := must.NotFail(NewArray(int32(1), "foo"))
	a2 := must.NotFail(NewArray(int32(1), "foo"))
	a3 := must.NotFail(NewArray("foo", int32(1)))

	assert.True(t, Equal(a1, a2))
	assert.False(t, Equal(a1, a3))
}

func TestEqualDocumentKinds(t *testing.T) {
	t.Parallel()

	d := must.NotFail(NewDocument("a", int32(1), "b", "foo"))
	m := must.NotFail(NewMutableDocument("a", int32(1), "b", "foo"))

	// the document kind does not matter, content does
	assert.True(t, Equal(d, m))
	assert.True(t, Equal(m, d))
	assert.True(t, Equal(d, m.Freeze()))
	assert.True(t, Equal(d.Mutable(), m))

	assert.NoError(t, m.Set("c", Null))
	assert.False(t, Equal(d, m))
}
