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
	"fmt"

	"github.com/FerretDB/bsondoc/iterator"
)

// Doc is the common read interface of Document and MutableDocument.
type Doc interface {
	// Len returns the number of fields in the document.
	Len() int

	// Keys returns the document's field names in insertion order.
	Keys() []string

	// Get returns the value of the given key.
	Get(key string) (any, error)

	// Has returns true if the document has a field with the given key.
	Has(key string) bool

	// Iterator returns an iterator over the document's fields in insertion order.
	// It must be closed after use.
	Iterator() iterator.Interface[string, any]

	compositeType() // seal for go-sumtype
}

//go-sumtype:decl Doc

// GetTyped returns the value of the given key asserted to the BSON type T.
func GetTyped[T Type](doc Doc, key string) (T, error) {
	var zero T

	v, err := doc.Get(key)
	if err != nil {
		return zero, err
	}

	res, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("types.GetTyped: %q: expected %T, got %T", key, zero, v)
	}

	return res, nil
}
