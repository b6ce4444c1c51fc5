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

// Binary represents BSON type Binary.
type Binary struct {
	B       []byte
	Subtype BinarySubtype
}

// BinarySubtype represents BSON Binary type subtype.
type BinarySubtype byte

const (
	// BinaryGeneric represents a generic binary subtype.
	BinaryGeneric = BinarySubtype(0x00)

	// BinaryFunction represents a function.
	BinaryFunction = BinarySubtype(0x01)

	// BinaryGenericOld represents a generic-old binary subtype.
	BinaryGenericOld = BinarySubtype(0x02)

	// BinaryUUIDOld represents an old UUID.
	BinaryUUIDOld = BinarySubtype(0x03)

	// BinaryUUID represents a UUID.
	BinaryUUID = BinarySubtype(0x04)

	// BinaryMD5 represents an MD5 hash.
	BinaryMD5 = BinarySubtype(0x05)

	// BinaryEncrypted represents an encrypted BSON value.
	BinaryEncrypted = BinarySubtype(0x06)

	// BinaryUser represents the first user-defined subtype.
	BinaryUser = BinarySubtype(0x80)
)

// String returns a human-readable name of the subtype.
func (s BinarySubtype) String() string {
	switch s {
	case BinaryGeneric:
		return "generic"
	case BinaryFunction:
		return "function"
	case BinaryGenericOld:
		return "generic-old"
	case BinaryUUIDOld:
		return "uuid-old"
	case BinaryUUID:
		return "uuid"
	case BinaryMD5:
		return "md5"
	case BinaryEncrypted:
		return "encrypted"
	default:
		if s >= BinaryUser {
			return "user"
		}
		return "unknown"
	}
}
