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

// documentIterator represents an iterator over the document fields.
type documentIterator struct {
	token  *resource.Token
	fields []Pair
	n      atomic.Uint32
}

// newDocumentIterator creates a new document iterator.
func newDocumentIterator(doc *Document) *documentIterator {
	iter := &documentIterator{
		token:  resource.NewToken(),
		fields: doc.fields(),
	}
	resource.Track(iter, iter.token)

	return iter
}

// Next implements iterator.Interface.
func (iter *documentIterator) Next() (string, any, error) {
	n := int(iter.n.Add(1)) - 1

	if n >= len(iter.fields) {
		return "", nil, iterator.ErrIteratorDone
	}

	return iter.fields[n].Key, iter.fields[n].Value, nil
}

// Close implements iterator.Interface.
func (iter *documentIterator) Close() {
	iter.n.Store(uint32(len(iter.fields)))

	resource.Untrack(iter, iter.token)
}

// check interfaces
var (
	_ iterator.Interface[string, any] = (*documentIterator)(nil)
)
