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

package iterator

import "sync"

// ForFunc returns an iterator for the given function.
//
// The function is called on each Next call until the iterator is closed.
func ForFunc[K, V any](f func() (K, V, error)) Interface[K, V] {
	return &funcIterator[K, V]{
		f: f,
	}
}

// funcIterator implements iterator.Interface.
type funcIterator[K, V any] struct {
	m sync.Mutex
	f func() (K, V, error)
}

// Next implements iterator.Interface.
func (iter *funcIterator[K, V]) Next() (K, V, error) {
	iter.m.Lock()
	defer iter.m.Unlock()

	if iter.f == nil {
		var k K
		var v V

		return k, v, ErrIteratorDone
	}

	return iter.f()
}

// Close implements iterator.Interface.
func (iter *funcIterator[K, V]) Close() {
	iter.m.Lock()
	defer iter.m.Unlock()

	iter.f = nil
}

// check interfaces
var (
	_ Interface[struct{}, any] = (*funcIterator[struct{}, any])(nil)
)
