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
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewObjectID(t *testing.T) {
	t.Parallel()

	id1 := NewObjectID()
	id2 := NewObjectID()

	assert.NotEqual(t, id1, id2)

	// the process part is stable, the counter part is sequential
	assert.Equal(t, id1[4:9], id2[4:9])

	now := time.Now()
	assert.WithinDuration(t, now, id1.Time(), 2*time.Second)
}

func TestObjectIDHex(t *testing.T) {
	t.Parallel()

	id, err := ObjectIDFromHex("62e2bd94d68b44fdbfc178b8")
	require.NoError(t, err)
	assert.Equal(t, ObjectID{0x62, 0xe2, 0xbd, 0x94, 0xd6, 0x8b, 0x44, 0xfd, 0xbf, 0xc1, 0x78, 0xb8}, id)
	assert.Equal(t, "62e2bd94d68b44fdbfc178b8", id.Hex())

	_, err = ObjectIDFromHex("62e2bd94")
	assert.EqualError(t, err, "types.ObjectIDFromHex: invalid length: 8")

	_, err = ObjectIDFromHex("zze2bd94d68b44fdbfc178b8")
	assert.Error(t, err)
}
