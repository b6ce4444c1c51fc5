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

// Array represents BSON array.
//
// Array is not safe for concurrent use.
//
// Zero value is a valid empty array.
type Array struct {
	s []any
}

// MakeArray creates an empty array with the given capacity.
func MakeArray(capacity int) *Array {
	if capacity == 0 {
		return new(Array)
	}
	return &Array{s: make([]any, 0, capacity)}
}

// NewArray creates an array with the given values.
//
// Values are converted by [Resolve].
func NewArray(values ...any) (*Array, error) {
	s := make([]any, len(values))

	for i, value := range values {
		value, err := Resolve(value)
		if err != nil {
			return nil, fmt.Errorf("types.NewArray: index %d: %w", i, err)
		}

		s[i] = value
	}

	return &Array{s: s}, nil
}

func (*Array) compositeType() {}

// Len returns the number of elements in the array.
//
// It returns 0 for nil Array.
func (a *Array) Len() int {
	if a == nil {
		return 0
	}
	return len(a.s)
}

// Get returns the value at the given index.
func (a *Array) Get(index int) (any, error) {
	if l := a.Len(); index < 0 || index >= l {
		return nil, fmt.Errorf("types.Array.Get: index %d is out of bounds [0-%d)", index, l)
	}

	return a.s[index], nil
}

// Set sets the value at the given index.
//
// The value is converted by [Resolve].
func (a *Array) Set(index int, value any) error {
	if l := a.Len(); index < 0 || index >= l {
		return fmt.Errorf("types.Array.Set: index %d is out of bounds [0-%d)", index, l)
	}

	value, err := Resolve(value)
	if err != nil {
		return fmt.Errorf("types.Array.Set: index %d: %w", index, err)
	}

	a.s[index] = value
	return nil
}

// Append appends given values to the array.
//
// Values are converted by [Resolve].
func (a *Array) Append(values ...any) error {
	for _, value := range values {
		value, err := Resolve(value)
		if err != nil {
			return fmt.Errorf("types.Array.Append: %w", err)
		}

		a.s = append(a.s, value)
	}

	return nil
}

// DeepCopy returns a deep copy of this Array.
func (a *Array) DeepCopy() *Array {
	if a == nil {
		panic("types.Array.DeepCopy: nil array")
	}
	return deepCopy(a).(*Array)
}

// Iterator returns an iterator over the array's values.
// It must be closed after use.
//
// The iterator is over a snapshot of the values taken at this call;
// later changes of the array are not seen.
func (a *Array) Iterator() iterator.Interface[int, any] {
	return newArrayIterator(a)
}
