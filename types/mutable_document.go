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
	"errors"
	"fmt"

	"github.com/FerretDB/bsondoc/internal/util/must"
	"github.com/FerretDB/bsondoc/iterator"
)

// MutableDocument represents a mutable BSON document.
//
// Fields are ordered by insertion; setting the value of an existing field
// keeps the position of its first insertion.
//
// MutableDocument is not safe for concurrent use; use Freeze to get an
// immutable Document that is.
//
// The zero value is a valid empty document.
type MutableDocument struct {
	m    map[string]any
	keys []string
}

// NewMutableDocument creates a mutable document with the given key/value pairs.
//
// Values are converted by [Resolve].
// A duplicate key replaces the value while keeping the position of the first occurrence.
func NewMutableDocument(pairs ...any) (*MutableDocument, error) {
	l := len(pairs)
	if l%2 != 0 {
		return nil, fmt.Errorf("types.NewMutableDocument: invalid number of arguments: %d", l)
	}

	if l == 0 {
		return new(MutableDocument), nil
	}

	doc := &MutableDocument{
		m:    make(map[string]any, l/2),
		keys: make([]string, 0, l/2),
	}

	for i := 0; i < l; i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("types.NewMutableDocument: invalid key type: %T", pairs[i])
		}

		if err := doc.Set(key, pairs[i+1]); err != nil {
			return nil, fmt.Errorf("types.NewMutableDocument: %w", err)
		}
	}

	return doc, nil
}

func (*MutableDocument) compositeType() {}

// Len returns the number of fields in the document.
//
// It returns 0 for nil MutableDocument.
func (d *MutableDocument) Len() int {
	if d == nil {
		return 0
	}
	return len(d.keys)
}

// Keys returns the document's field names in insertion order.
//
// It returns nil for nil and empty MutableDocument.
// Do not modify the returned slice.
func (d *MutableDocument) Keys() []string {
	if d == nil {
		return nil
	}
	return d.keys
}

// Get returns the value of the given key.
func (d *MutableDocument) Get(key string) (any, error) {
	if d != nil {
		if value, ok := d.m[key]; ok {
			return value, nil
		}
	}

	return nil, fmt.Errorf("types.MutableDocument.Get: key not found: %q", key)
}

// Has returns true if the document has a field with the given key.
func (d *MutableDocument) Has(key string) bool {
	if d == nil {
		return false
	}

	_, ok := d.m[key]
	return ok
}

// Set sets the value for the given key, replacing any existing value.
//
// The value is converted by [Resolve].
// If the key is already present, the new value keeps the field's position;
// otherwise, the field is appended.
func (d *MutableDocument) Set(key string, value any) error {
	if !isValidKey(key) {
		return fmt.Errorf("types.MutableDocument.Set: invalid key: %q", key)
	}

	value, err := Resolve(value)
	if err != nil {
		return fmt.Errorf("types.MutableDocument.Set: %q: %w", key, err)
	}

	if _, ok := d.m[key]; !ok {
		d.keys = append(d.keys, key)
	}

	if d.m == nil {
		d.m = map[string]any{
			key: value,
		}
		return nil
	}

	d.m[key] = value
	return nil
}

// Remove removes the given key, doing nothing if the key is not present.
func (d *MutableDocument) Remove(key string) {
	if d == nil {
		return
	}

	if _, ok := d.m[key]; !ok {
		return
	}

	delete(d.m, key)

	for i, k := range d.keys {
		if k == key {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)
			return
		}
	}

	// should not be reached
	panic(fmt.Sprintf("types.MutableDocument.Remove: key not found: %q", key))
}

// Merge sets all fields of the other document in order.
//
// Fields present in both documents get the other document's value
// at the receiver's position.
func (d *MutableDocument) Merge(other Doc) error {
	if other == nil || other.Len() == 0 {
		return nil
	}

	it := other.Iterator()
	defer it.Close()

	for {
		k, v, err := it.Next()
		if err != nil {
			if errors.Is(err, iterator.ErrIteratorDone) {
				return nil
			}

			return fmt.Errorf("types.MutableDocument.Merge: %w", err)
		}

		if err = d.Set(k, v); err != nil {
			return fmt.Errorf("types.MutableDocument.Merge: %w", err)
		}
	}
}

// Freeze returns an immutable Document with the same fields in the same order.
//
// Field values are shared by reference; further changes of the receiver
// do not affect the returned document.
func (d *MutableDocument) Freeze() *Document {
	if d.Len() == 0 {
		return new(Document)
	}

	pairs := make([]any, 0, len(d.keys)*2)
	for _, k := range d.keys {
		pairs = append(pairs, k, d.m[k])
	}

	// fields of a valid document are valid pairs
	return must.NotFail(NewDocument(pairs...))
}

// DeepCopy returns a deep copy of this MutableDocument.
func (d *MutableDocument) DeepCopy() *MutableDocument {
	if d == nil {
		panic("types.MutableDocument.DeepCopy: nil document")
	}
	return deepCopy(d).(*MutableDocument)
}

// Iterator returns an iterator over the document's fields in insertion order.
// It must be closed after use.
//
// The iterator is over a snapshot of the fields taken at this call;
// later changes of the document are not seen.
func (d *MutableDocument) Iterator() iterator.Interface[string, any] {
	return newMutableDocumentIterator(d)
}

// check interfaces
var (
	_ Doc = (*MutableDocument)(nil)
)
