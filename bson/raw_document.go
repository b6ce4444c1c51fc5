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

package bson

import (
	"log/slog"
	"strconv"

	"github.com/FerretDB/bsondoc/internal/util/lazyerrors"
	"github.com/FerretDB/bsondoc/types"
)

// RawDocument represents a single BSON document in the binary encoded form.
//
// It generally references a part of a larger slice, not a copy.
type RawDocument []byte

// Decode decodes a single BSON document that takes the whole byte slice.
//
// All nested documents and arrays are decoded recursively.
// Duplicate field names follow the last-wins rule of [types.NewDocument]:
// the last value is kept at the position of the first.
//
// All returned errors wrap [ErrDecodeShortInput] or [ErrDecodeInvalidInput].
func (raw RawDocument) Decode() (*types.Document, error) {
	if len(raw) > types.MaxDocumentLen {
		return nil, lazyerrors.Errorf(
			"raw document has %d bytes, maximum is %d: %w",
			len(raw), types.MaxDocumentLen, ErrDecodeInvalidInput,
		)
	}

	res, err := decodeDocument(raw, 0)
	if err != nil {
		return nil, lazyerrors.Error(err)
	}

	return res, nil
}

// LogValue implements slog.LogValuer interface.
func (raw RawDocument) LogValue() slog.Value {
	if raw == nil {
		return slog.StringValue("RawDocument(nil)")
	}

	return slog.StringValue("RawDocument(" + strconv.Itoa(len(raw)) + " bytes)")
}

// check interfaces
var (
	_ slog.LogValuer = (RawDocument)(nil)
)
