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

package bson

import (
	"strconv"

	"github.com/cristalhq/bson/bsonproto"

	"github.com/FerretDB/bsondoc/types"
)

// sizeAny returns a size of the encoding of value v in bytes.
//
// It panics for invalid types.
func sizeAny(v any) int {
	switch v := v.(type) {
	case types.Doc:
		return sizeDocument(v)
	case *types.Array:
		return sizeArray(v)
	default:
		return bsonproto.SizeAny(convertFromTypes(v))
	}
}

// sizeDocument returns a size of the encoding of document doc in bytes.
func sizeDocument(doc types.Doc) int {
	size := 5

	iter := doc.Iterator()
	defer iter.Close()

	for {
		k, v, err := iter.Next()
		if err != nil {
			return size
		}

		size += 1 + len(k) + 1 + sizeAny(v)
	}
}

// sizeArray returns a size of the encoding of array arr in bytes.
func sizeArray(arr *types.Array) int {
	size := 5

	iter := arr.Iterator()
	defer iter.Close()

	for {
		i, v, err := iter.Next()
		if err != nil {
			return size
		}

		size += 1 + len(strconv.Itoa(i)) + 1 + sizeAny(v)
	}
}
