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

// Package iterator describes a generic Iterator interface.
package iterator

import "errors"

// ErrIteratorDone is returned when the iterator is read to the end.
var ErrIteratorDone = errors.New("iterator is read to the end")

// Interface is an iterator interface.
type Interface[K, V any] interface {
	// Next returns the next key/value pair,
	// where the key is a slice index, map key, document field name, etc,
	// and the value is the slice or map value, field value, etc.
	//
	// Returned error could be (possibly wrapped) ErrIteratorDone or some fatal error.
	// If Next returns an error, all subsequent calls return the same error.
	Next() (K, V, error)

	Closer
}
