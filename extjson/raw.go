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

package extjson

import (
	"encoding/json"
	"fmt"

	"github.com/FerretDB/bsondoc/internal/util/lazyerrors"
	"github.com/FerretDB/bsondoc/types"
)

// Raw holds Extended JSON text verbatim.
//
// It is the throughput path for pipelines that store or forward JSON
// documents without inspecting them: the text is not parsed and no
// values are materialized, so reading and writing a Raw moves exact
// bytes. That is strictly cheaper than building a document and calling
// [Marshal]. Use [Raw.Decode] where the value tree is actually needed.
type Raw []byte

// NewRaw returns data as [Raw] after a surface check that it can hold
// a document: the first and last non-whitespace bytes must be '{' and
// '}'. The text is not parsed and is not copied; malformed content
// surfaces later, from [Raw.Decode] or from whatever reads the stored
// text.
func NewRaw(data []byte) (Raw, error) {
	i := 0
	for i < len(data) && isWhitespace(data[i]) {
		i++
	}

	if i >= len(data) || data[i] != '{' {
		return nil, newParseError(i, "expected '{'")
	}

	j := len(data) - 1
	for j > i && isWhitespace(data[j]) {
		j--
	}

	if data[j] != '}' {
		return nil, newParseError(j, "expected '}' at the end of a document")
	}

	return Raw(data), nil
}

// Decode parses the text into a document.
func (r Raw) Decode() (*types.Document, error) {
	return Unmarshal(r)
}

// Bytes returns the exact stored bytes.
func (r Raw) Bytes() []byte {
	return r
}

// String implements fmt.Stringer.
func (r Raw) String() string {
	return string(r)
}

// MarshalJSON implements json.Marshaler by writing the text as is.
func (r Raw) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}

	return r, nil
}

// UnmarshalJSON implements json.Unmarshaler by storing the text as is.
func (r *Raw) UnmarshalJSON(data []byte) error {
	if r == nil {
		return lazyerrors.New("extjson.Raw.UnmarshalJSON: nil pointer")
	}

	*r = append((*r)[0:0], data...)

	return nil
}

// check interfaces
var (
	_ json.Marshaler   = Raw(nil)
	_ json.Unmarshaler = (*Raw)(nil)
	_ fmt.Stringer     = Raw(nil)
)
