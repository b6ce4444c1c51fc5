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

// Package bson implements encoding and decoding of BSON documents
// as defined by https://bsonspec.org/spec.html.
//
// # Types
//
// The following BSON types are supported:
//
//	BSON                Go
//
//	Document            *types.Document or *types.MutableDocument
//	Array               *types.Array
//
//	Double              float64
//	String              string
//	Binary data         types.Binary
//	ObjectId            types.ObjectID
//	Boolean             bool
//	Date                time.Time
//	Null                types.NullType
//	Regular Expression  types.Regex
//	32-bit integer      int32
//	Timestamp           types.Timestamp
//	64-bit integer      int64
//
// Scalar values are encoded by the bsonproto package;
// this package adds the document framing
// (length prefix, tagged and named elements, zero byte terminator)
// and the conversion to and from the types package representations.
package bson

import (
	"fmt"
	"time"

	"github.com/cristalhq/bson/bsonproto"

	"github.com/FerretDB/bsondoc/internal/util/must"
	"github.com/FerretDB/bsondoc/types"
)

var (
	// ErrDecodeShortInput is returned wrapped by Decode functions if the input bytes slice is too short.
	ErrDecodeShortInput = bsonproto.ErrDecodeShortInput

	// ErrDecodeInvalidInput is returned wrapped by Decode functions if the input bytes slice is invalid.
	ErrDecodeInvalidInput = bsonproto.ErrDecodeInvalidInput
)

// validScalarType checks if v is a valid scalar BSON value in the types package representation.
func validScalarType(v any) bool {
	switch v.(type) {
	case float64:
	case string:
	case types.Binary:
	case types.ObjectID:
	case bool:
	case time.Time:
	case types.NullType:
	case types.Regex:
	case int32:
	case types.Timestamp:
	case int64:

	default:
		return false
	}

	return true
}

// convertFromTypes converts a scalar value from the types package representation
// to the bsonproto representation.
//
// It panics if v is not a scalar.
func convertFromTypes(v any) any {
	must.BeTrue(validScalarType(v))

	switch v := v.(type) {
	case types.Binary:
		return bsonproto.Binary{
			B:       v.B,
			Subtype: bsonproto.BinarySubtype(v.Subtype),
		}
	case types.ObjectID:
		return bsonproto.ObjectID(v)
	case types.NullType:
		return bsonproto.Null
	case types.Regex:
		return bsonproto.Regex{
			Pattern: v.Pattern,
			Options: v.Options,
		}
	case types.Timestamp:
		return bsonproto.Timestamp(v)
	default: // float64, string, bool, time.Time, int32, int64
		return v
	}
}

// convertToTypes converts a scalar value from the bsonproto representation
// to the types package representation.
//
// It panics if v is not a scalar.
func convertToTypes(v any) any {
	switch v := v.(type) {
	case bsonproto.Binary:
		return types.Binary{
			B:       v.B,
			Subtype: types.BinarySubtype(v.Subtype),
		}
	case bsonproto.ObjectID:
		return types.ObjectID(v)
	case bsonproto.NullType:
		return types.Null
	case bsonproto.Regex:
		return types.Regex{
			Pattern: v.Pattern,
			Options: v.Options,
		}
	case bsonproto.Timestamp:
		return types.Timestamp(v)
	case float64, string, bool, time.Time, int32, int64:
		return v
	default:
		panic(fmt.Sprintf("invalid BSON type %T", v))
	}
}
