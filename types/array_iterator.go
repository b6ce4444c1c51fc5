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

// arrayIterator represents an iterator over a snapshot of the array values.
type arrayIterator struct {
	token *resource.Token
	s     []any
	n     atomic.Uint32
}

// newArrayIterator creates a new array iterator.
func newArrayIterator(a *Array) *arrayIterator {
	var s []any
	if a != nil {
		s = make([]any, len(a.s))
		copy(s, a.s)
	}

	iter := &arrayIterator{
		token: resource.NewToken(),
		s:     s,
	}
	resource.Track(iter, iter.token)

	return iter
}

// Next implements iterator.Interface.
func (iter *arrayIterator) Next() (int, any, error) {
	n := int(iter.n.Add(1)) - 1

	if n >= len(iter.s) {
		return 0, nil, iterator.ErrIteratorDone
	}

	return n, iter.s[n], nil
}

// Close implements iterator.Interface.
func (iter *arrayIterator) Close() {
	iter.n.Store(uint32(len(iter.s)))

	resource.Untrack(iter, iter.token)
}

// check interfaces
var (
	_ iterator.Interface[int, any] = (*arrayIterator)(nil)
)
