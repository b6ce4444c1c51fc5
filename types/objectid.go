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
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/FerretDB/bsondoc/internal/util/must"
)

// ObjectID represents BSON type ObjectId.
type ObjectID [ObjectIDLen]byte

// ObjectIDLen is the length of ObjectID in bytes.
const ObjectIDLen = 12

// objectIDProcess is a random value unique to this process.
var objectIDProcess [5]byte

// objectIDCounter is a counter for ObjectID generation, starting from a random value.
var objectIDCounter atomic.Uint32

func init() {
	must.NotFail(rand.Read(objectIDProcess[:]))

	var b [4]byte
	must.NotFail(rand.Read(b[:]))
	objectIDCounter.Store(binary.BigEndian.Uint32(b[:]))
}

// NewObjectID returns a new ObjectID for the current time.
func NewObjectID() ObjectID {
	return newObjectIDTime(time.Now())
}

// newObjectIDTime returns a new ObjectID for the given time.
func newObjectIDTime(t time.Time) ObjectID {
	var id ObjectID

	binary.BigEndian.PutUint32(id[0:4], uint32(t.Unix()))

	copy(id[4:9], objectIDProcess[:])

	c := objectIDCounter.Add(1)
	id[9] = byte(c >> 16)
	id[10] = byte(c >> 8)
	id[11] = byte(c)

	return id
}

// ObjectIDFromHex returns an ObjectID parsed from the given 24-character hexadecimal string.
func ObjectIDFromHex(s string) (ObjectID, error) {
	var id ObjectID

	if len(s) != hex.EncodedLen(ObjectIDLen) {
		return id, fmt.Errorf("types.ObjectIDFromHex: invalid length: %d", len(s))
	}

	b, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("types.ObjectIDFromHex: %w", err)
	}

	copy(id[:], b)

	return id, nil
}

// Hex returns the hexadecimal representation of the ObjectID.
func (id ObjectID) Hex() string {
	return hex.EncodeToString(id[:])
}

// Time returns the generation time encoded in the ObjectID with a second precision.
func (id ObjectID) Time() time.Time {
	return time.Unix(int64(binary.BigEndian.Uint32(id[0:4])), 0).UTC()
}
