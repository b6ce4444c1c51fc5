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

// Package types provides Go types matching BSON types that don't have built-in Go equivalents.
//
// All BSON values have three representations in this module:
//
//  1. As they are used in business logic - `types` package.
//  2. As they are serialized to and from Extended JSON text - `extjson` package.
//  3. As they are serialized to and from binary BSON - `bson` package.
//
// The reason for that is a separation of concerns: to avoid method name clashes,
// to simplify type asserts, to make refactorings and optimizations easier, etc.
//
// # Mapping
//
// Composite types (passed by pointers)
//
//	*types.Document         Document (immutable)
//	*types.MutableDocument  Document (mutable)
//	*types.Array            Array
//
// Scalar types (passed by values)
//
//	float64          64-bit binary floating point
//	string           UTF-8 string
//	types.Binary     Binary data
//	types.ObjectID   ObjectId
//	bool             Boolean
//	time.Time        UTC datetime
//	types.NullType   Null
//	types.Regex      Regular expression
//	int32            32-bit integer
//	types.Timestamp  Timestamp
//	int64            64-bit integer
//
// Values of other Go types are converted to the types above by the Registry;
// see [Resolve].
package types

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/FerretDB/bsondoc/internal/util/must"
)

// MaxDocumentLen is the maximum BSON object size.
const MaxDocumentLen = 16777216 // 16 MiB

// ScalarType represents a scalar BSON type.
type ScalarType interface {
	float64 | string | Binary | ObjectID | bool | time.Time | NullType | Regex | int32 | Timestamp | int64
}

// CompositeType represents a composite BSON type - *Document, *MutableDocument, or *Array.
type CompositeType interface {
	*Document | *MutableDocument | *Array
}

// Type represents any BSON type (scalar or composite).
type Type interface {
	ScalarType | CompositeType
}

// CompositeTypeInterface consists of Document, MutableDocument, and Array.
type CompositeTypeInterface interface {
	CompositeType

	LogValue() slog.Value

	compositeType() // seal for go-sumtype
}

//go-sumtype:decl CompositeTypeInterface

// NullType represents BSON type Null.
//
// Most callers should use types.Null value instead.
type NullType struct{}

// Null represents BSON value Null.
var Null = NullType{}

// validateValue returns nil if the given value is a valid BSON value as
// described by the package documentation mapping, and an error otherwise.
func validateValue(value any) error {
	switch value := value.(type) {
	case *Document:
		if value == nil {
			return fmt.Errorf("types.validateValue: nil Document")
		}
		return nil
	case *MutableDocument:
		if value == nil {
			return fmt.Errorf("types.validateValue: nil MutableDocument")
		}
		return nil
	case *Array:
		if value == nil {
			return fmt.Errorf("types.validateValue: nil Array")
		}
		return nil
	case float64:
		return nil
	case string:
		return nil
	case Binary:
		return nil
	case ObjectID:
		return nil
	case bool:
		return nil
	case time.Time:
		return nil
	case NullType:
		return nil
	case Regex:
		return nil
	case int32:
		return nil
	case Timestamp:
		return nil
	case int64:
		return nil
	default:
		return fmt.Errorf("types.validateValue: unsupported type: %[1]T (%[1]v)", value)
	}
}

// deepCopy returns a deep copy of the given value.
func deepCopy(value any) any {
	if value == nil {
		panic("types.deepCopy: nil value")
	}

	switch value := value.(type) {
	case *Document:
		fields := value.fields()
		pairs := make([]any, 0, len(fields)*2)
		for _, f := range fields {
			pairs = append(pairs, f.Key, deepCopy(f.Value))
		}

		// fields of a valid document are valid pairs
		return must.NotFail(NewDocument(pairs...))

	case *MutableDocument:
		keys := make([]string, len(value.keys))
		copy(keys, value.keys)

		m := make(map[string]any, len(value.m))
		for k, v := range value.m {
			m[k] = deepCopy(v)
		}

		return &MutableDocument{
			keys: keys,
			m:    m,
		}

	case *Array:
		s := make([]any, len(value.s))
		for i, v := range value.s {
			s[i] = deepCopy(v)
		}
		return &Array{
			s: s,
		}

	case float64:
		return value
	case string:
		return value
	case Binary:
		b := make([]byte, len(value.B))
		copy(b, value.B)
		return Binary{
			Subtype: value.Subtype,
			B:       b,
		}
	case ObjectID:
		return value
	case bool:
		return value
	case time.Time:
		return value
	case NullType:
		return value
	case Regex:
		return value
	case int32:
		return value
	case Timestamp:
		return value
	case int64:
		return value

	default:
		panic(fmt.Sprintf("types.deepCopy: unsupported type: %[1]T (%[1]v)", value))
	}
}
