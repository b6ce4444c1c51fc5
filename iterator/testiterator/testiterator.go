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

// Package testiterator provides a helper for checking iterator implementations.
package testiterator

import (
	"errors"
	"testing"

	"github.com/FerretDB/bsondoc/internal/util/teststress"
	"github.com/FerretDB/bsondoc/iterator"
)

// TestIterator checks that the iterator implementation is correct.
func TestIterator[K, V any](t *testing.T, newIter func() iterator.Interface[K, V]) {
	t.Helper()

	t.Run("Close", func(t *testing.T) {
		t.Parallel()

		iter := newIter()

		teststress.Stress(t, func(ready chan<- struct{}, start <-chan struct{}) {
			ready <- struct{}{}
			<-start

			iter.Close()
		})
	})

	t.Run("NextAfterClose", func(t *testing.T) {
		t.Parallel()

		iter := newIter()
		iter.Close()

		_, _, err := iter.Next()
		if !errors.Is(err, iterator.ErrIteratorDone) {
			t.Errorf("expected ErrIteratorDone, got %v", err)
		}

		_, _, err = iter.Next()
		if !errors.Is(err, iterator.ErrIteratorDone) {
			t.Errorf("expected ErrIteratorDone, got %v", err)
		}
	})
}
