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
	"errors"
	"fmt"
	"unicode/utf8"

	iradix "github.com/hashicorp/go-immutable-radix/v2"

	"github.com/FerretDB/bsondoc/iterator"
)

// Document represents an immutable BSON document.
//
// Fields are ordered by insertion; replacing the value of an existing field
// keeps the position of its first insertion.
//
// All methods return new documents sharing unchanged structure with the receiver;
// the receiver is never modified, so a Document is safe for concurrent use.
// Composite field values are shared by reference; use DeepCopy for a fully
// independent copy.
//
// The zero value and nil are valid empty documents.
type Document struct {
	byPos *iradix.Tree[Pair]   // insertion position -> field
	byKey *iradix.Tree[uint32] // field name -> insertion position
	next  uint32               // next insertion position
}

// NewDocument creates a document with the given key/value pairs.
//
// Values are converted by [Resolve].
// A duplicate key replaces the value while keeping the position of the first occurrence.
func NewDocument(pairs ...any) (*Document, error) {
	return newDocument(defaultRegistry, pairs)
}

// newDocument is a NewDocument that resolves values through the given registry.
func newDocument(r *Registry, pairs []any) (*Document, error) {
	l := len(pairs)
	if l%2 != 0 {
		return nil, fmt.Errorf("types.NewDocument: invalid number of arguments: %d", l)
	}

	if l == 0 {
		return new(Document), nil
	}

	txnPos := iradix.New[Pair]().Txn()
	txnKey := iradix.New[uint32]().Txn()
	var next uint32

	for i := 0; i < l; i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("types.NewDocument: invalid key type: %T", pairs[i])
		}

		if !isValidKey(key) {
			return nil, fmt.Errorf("types.NewDocument: invalid key: %q", key)
		}

		value, err := r.Resolve(pairs[i+1])
		if err != nil {
			return nil, fmt.Errorf("types.NewDocument: %q: %w", key, err)
		}

		k := []byte(key)

		pos, ok := txnKey.Get(k)
		if !ok {
			pos = next
			next++
			txnKey.Insert(k, pos)
		}

		txnPos.Insert(posKey(pos), Pair{Key: key, Value: value})
	}

	return &Document{
		byPos: txnPos.Commit(),
		byKey: txnKey.Commit(),
		next:  next,
	}, nil
}

func (*Document) compositeType() {}

// isValidKey returns false if the key can't be a document field name.
func isValidKey(key string) bool {
	if key == "" {
		return false
	}

	return utf8.ValidString(key)
}

// posKey returns the radix tree key for the given insertion position.
//
// Big-endian encoding makes the lexicographic tree order match the numeric order.
func posKey(pos uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], pos)
	return b[:]
}

// posTree returns the position tree, handling nil and zero value documents.
func (d *Document) posTree() *iradix.Tree[Pair] {
	if d == nil || d.byPos == nil {
		return iradix.New[Pair]()
	}
	return d.byPos
}

// keyTree returns the field name tree, handling nil and zero value documents.
func (d *Document) keyTree() *iradix.Tree[uint32] {
	if d == nil || d.byKey == nil {
		return iradix.New[uint32]()
	}
	return d.byKey
}

// Len returns the number of fields in the document.
//
// It returns 0 for nil Document.
func (d *Document) Len() int {
	return d.posTree().Len()
}

// Keys returns the document's field names in insertion order.
//
// It returns nil for nil and empty Document.
func (d *Document) Keys() []string {
	if d.Len() == 0 {
		return nil
	}

	keys := make([]string, 0, d.Len())

	it := d.posTree().Root().Iterator()
	for _, f, ok := it.Next(); ok; _, f, ok = it.Next() {
		keys = append(keys, f.Key)
	}

	return keys
}

// fields returns the document's fields in insertion order.
func (d *Document) fields() []Pair {
	if d.Len() == 0 {
		return nil
	}

	fields := make([]Pair, 0, d.Len())

	it := d.posTree().Root().Iterator()
	for _, f, ok := it.Next(); ok; _, f, ok = it.Next() {
		fields = append(fields, f)
	}

	return fields
}

// Get returns the value of the given key.
func (d *Document) Get(key string) (any, error) {
	pos, ok := d.keyTree().Get([]byte(key))
	if !ok {
		return nil, fmt.Errorf("types.Document.Get: key not found: %q", key)
	}

	f, ok := d.posTree().Get(posKey(pos))
	if !ok {
		panic(fmt.Sprintf("types.Document.Get: no field at position %d", pos))
	}

	return f.Value, nil
}

// Has returns true if the document has a field with the given key.
func (d *Document) Has(key string) bool {
	_, ok := d.keyTree().Get([]byte(key))
	return ok
}

// Set returns a new document with the value set for the given key.
//
// The value is converted by [Resolve].
// If the key is already present, the new value keeps the field's position;
// otherwise, the field is appended.
// The receiver is not modified.
func (d *Document) Set(key string, value any) (*Document, error) {
	if !isValidKey(key) {
		return nil, fmt.Errorf("types.Document.Set: invalid key: %q", key)
	}

	value, err := Resolve(value)
	if err != nil {
		return nil, fmt.Errorf("types.Document.Set: %q: %w", key, err)
	}

	k := []byte(key)
	byKey := d.keyTree()
	next := d.nextPos()

	pos, ok := byKey.Get(k)
	if !ok {
		pos = next
		next++
		byKey, _, _ = byKey.Insert(k, pos)
	}

	byPos, _, _ := d.posTree().Insert(posKey(pos), Pair{Key: key, Value: value})

	return &Document{
		byPos: byPos,
		byKey: byKey,
		next:  next,
	}, nil
}

// Remove returns a new document without the given key.
//
// It returns the receiver if the key is not present.
func (d *Document) Remove(key string) *Document {
	pos, ok := d.keyTree().Get([]byte(key))
	if !ok {
		return d
	}

	byKey, _, _ := d.keyTree().Delete([]byte(key))
	byPos, _, _ := d.posTree().Delete(posKey(pos))

	return &Document{
		byPos: byPos,
		byKey: byKey,
		next:  d.nextPos(),
	}
}

// Merge returns a new document with all fields of the other document set in order.
//
// Fields present in both documents get the other document's value
// at the receiver's position.
func (d *Document) Merge(other Doc) (*Document, error) {
	if other == nil || other.Len() == 0 {
		if d == nil {
			return new(Document), nil
		}
		return d, nil
	}

	res := d

	it := other.Iterator()
	defer it.Close()

	for {
		k, v, err := it.Next()
		if err != nil {
			if errors.Is(err, iterator.ErrIteratorDone) {
				return res, nil
			}

			return nil, fmt.Errorf("types.Document.Merge: %w", err)
		}

		if res, err = res.Set(k, v); err != nil {
			return nil, fmt.Errorf("types.Document.Merge: %w", err)
		}
	}
}

// Mutable returns a new MutableDocument with the same fields in the same order.
//
// Field values are shared by reference.
func (d *Document) Mutable() *MutableDocument {
	fields := d.fields()

	res := &MutableDocument{
		keys: make([]string, 0, len(fields)),
		m:    make(map[string]any, len(fields)),
	}

	for _, f := range fields {
		res.keys = append(res.keys, f.Key)
		res.m[f.Key] = f.Value
	}

	return res
}

// DeepCopy returns a deep copy of this Document.
func (d *Document) DeepCopy() *Document {
	if d == nil {
		panic("types.Document.DeepCopy: nil document")
	}
	return deepCopy(d).(*Document)
}

// Iterator returns an iterator over the document's fields in insertion order.
// It must be closed after use.
func (d *Document) Iterator() iterator.Interface[string, any] {
	return newDocumentIterator(d)
}

// nextPos returns the next insertion position.
func (d *Document) nextPos() uint32 {
	if d == nil {
		return 0
	}
	return d.next
}

// check interfaces
var (
	_ Doc = (*Document)(nil)
)
