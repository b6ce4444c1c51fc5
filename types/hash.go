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
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/FerretDB/bsondoc/internal/util/must"
)

// Hash returns a structural hash of the given BSON value.
//
// Values that are Equal have the same hash;
// in particular, the hash does not depend on the document kind.
//
// Values of types outside the package documentation mapping cause a panic.
func Hash(v any) uint64 {
	d := xxhash.New()
	hashValue(d, v)
	return d.Sum64()
}

// hashValue writes the BSON type tag and the value payload to the digest.
func hashValue(d *xxhash.Digest, v any) {
	var b [8]byte

	switch v := v.(type) {
	case Doc:
		d.Write([]byte{0x03})

		for _, k := range v.Keys() {
			hashBytes(d, []byte(k))
			hashValue(d, must.NotFail(v.Get(k)))
		}

	case *Array:
		d.Write([]byte{0x04})

		for _, el := range v.s {
			hashValue(d, el)
		}

	case float64:
		// canonicalize NaNs and zeros so that Equal values hash the same
		switch {
		case math.IsNaN(v):
			v = math.NaN()
		case v == 0:
			v = 0
		}

		d.Write([]byte{0x01})
		binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
		d.Write(b[:])

	case string:
		d.Write([]byte{0x02})
		hashBytes(d, []byte(v))

	case Binary:
		d.Write([]byte{0x05, byte(v.Subtype)})
		hashBytes(d, v.B)

	case ObjectID:
		d.Write([]byte{0x07})
		d.Write(v[:])

	case bool:
		if v {
			d.Write([]byte{0x08, 1})
		} else {
			d.Write([]byte{0x08, 0})
		}

	case time.Time:
		d.Write([]byte{0x09})
		binary.LittleEndian.PutUint64(b[:], uint64(v.UnixMilli()))
		d.Write(b[:])

	case NullType:
		d.Write([]byte{0x0a})

	case Regex:
		d.Write([]byte{0x0b})
		hashBytes(d, []byte(v.Pattern))
		hashBytes(d, []byte(v.Options))

	case int32:
		d.Write([]byte{0x10})
		binary.LittleEndian.PutUint32(b[:4], uint32(v))
		d.Write(b[:4])

	case Timestamp:
		d.Write([]byte{0x11})
		binary.LittleEndian.PutUint64(b[:], uint64(v))
		d.Write(b[:])

	case int64:
		d.Write([]byte{0x12})
		binary.LittleEndian.PutUint64(b[:], uint64(v))
		d.Write(b[:])

	default:
		panic(fmt.Sprintf("types.Hash: unsupported type: %[1]T (%[1]v)", v))
	}
}

// hashBytes writes a length-prefixed byte slice to the digest.
func hashBytes(d *xxhash.Digest, b []byte) {
	var l [4]byte
	binary.LittleEndian.PutUint32(l[:], uint32(len(b)))
	d.Write(l[:])
	d.Write(b)
}
