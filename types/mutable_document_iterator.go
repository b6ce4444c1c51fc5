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
	"sync/atomic"

	"github.com/FerretDB/bsondoc/internal/util/resource"
	"github.com/FerretDB/bsondoc/iterator"
)

// mutableDocumentIterator represents an iterator over a snapshot of the document fields.
type mutableDocumentIterator struct {
	token  *resource.Token
	fields []Pair
	n      atomic.Uint32
}

// newMutableDocumentIterator creates a new mutable document iterator.
func newMutableDocumentIterator(doc *MutableDocument) *mutableDocumentIterator {
	fields := make([]Pair, 0, doc.Len())
	for _, k := range doc.Keys() {
		fields = append(fields, Pair{Key: k, Value: doc.m[k]})
	}

	iter := &mutableDocumentIterator{
		token:  resource.NewToken(),
		fields: fields,
	}
	resource.Track(iter, iter.token)

	return iter
}

// Next implements iterator.Interface.
func (iter *mutableDocumentIterator) Next() (string, any, error) {
	n := int(iter.n.Add(1)) - 1

	if n >= len(iter.fields) {
		return "", nil, iterator.ErrIteratorDone
	}

	return iter.fields[n].Key, iter.fields[n].Value, nil
}

// Close implements iterator.Interface.
func (iter *mutableDocumentIterator) Close() {
	iter.n.Store(uint32(len(iter.fields)))

	resource.Untrack(iter, iter.token)
}

// check interfaces
var (
	_ iterator.Interface[string, any] = (*mutableDocumentIterator)(nil)
)
