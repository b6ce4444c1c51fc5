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
	"bytes"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/FerretDB/bsondoc/iterator"
)

// Equal compares any BSON values.
//
// Composite values are compared by content;
// a Document and a MutableDocument with equal fields in the same order are equal.
//
// Scalars are compared in a way that is useful for tests:
//   - float64 NaNs are equal to each other;
//   - time.Time values are compared using the Equal method.
//
// Values of types outside the package documentation mapping cause a panic.
func Equal(v1, v2 any) bool {
	switch v1 := v1.(type) {
	case Doc:
		d2, ok := v2.(Doc)
		if !ok {
			return false
		}

		return equalDocs(v1, d2)

	case *Array:
		a2, ok := v2.(*Array)
		if !ok {
			return false
		}

		return equalArrays(v1, a2)

	default:
		return equalScalars(v1, v2)
	}
}

// equalDocs compares documents of either kind field by field. Nils are not allowed.
func equalDocs(v1, v2 Doc) bool {
	if v1 == nil {
		panic("v1 is nil")
	}
	if v2 == nil {
		panic("v2 is nil")
	}

	it1 := v1.Iterator()
	it2 := v2.Iterator()
	defer iterator.NewMultiCloser(it1, it2).Close()

	for {
		k1, f1, err1 := it1.Next()
		k2, f2, err2 := it2.Next()

		done1 := errors.Is(err1, iterator.ErrIteratorDone)
		done2 := errors.Is(err2, iterator.ErrIteratorDone)

		if done1 || done2 {
			return done1 && done2
		}

		if k1 != k2 {
			return false
		}

		if !Equal(f1, f2) {
			return false
		}
	}
}

// equalArrays compares BSON arrays. Nils are not allowed.
func equalArrays(v1, v2 *Array) bool {
	if v1 == nil {
		panic("v1 is nil")
	}
	if v2 == nil {
		panic("v2 is nil")
	}

	l := v1.Len()
	if l != v2.Len() {
		return false
	}

	for i := 0; i < l; i++ {
		if !Equal(v1.s[i], v2.s[i]) {
			return false
		}
	}

	return true
}

// equalScalars compares BSON scalar values.
func equalScalars(v1, v2 any) bool {
	switch s1 := v1.(type) {
	case float64:
		s2, ok := v2.(float64)
		if !ok {
			return false
		}
		if math.IsNaN(s1) && math.IsNaN(s2) {
			return true
		}
		return s1 == s2

	case string:
		s2, ok := v2.(string)
		return ok && s1 == s2

	case Binary:
		s2, ok := v2.(Binary)
		return ok && s1.Subtype == s2.Subtype && bytes.Equal(s1.B, s2.B)

	case ObjectID:
		s2, ok := v2.(ObjectID)
		return ok && s1 == s2

	case bool:
		s2, ok := v2.(bool)
		return ok && s1 == s2

	case time.Time:
		s2, ok := v2.(time.Time)
		return ok && s1.Equal(s2)

	case NullType:
		_, ok := v2.(NullType)
		return ok

	case Regex:
		s2, ok := v2.(Regex)
		return ok && s1 == s2

	case int32:
		s2, ok := v2.(int32)
		return ok && s1 == s2

	case Timestamp:
		s2, ok := v2.(Timestamp)
		return ok && s1 == s2

	case int64:
		s2, ok := v2.(int64)
		return ok && s1 == s2

	default:
		panic(fmt.Sprintf("types.Equal: unsupported type: %[1]T (%[1]v)", v1))
	}
}
