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
	"encoding/binary"
	"strconv"

	"github.com/cristalhq/bson/bsonproto"

	"github.com/FerretDB/bsondoc/internal/util/lazyerrors"
	"github.com/FerretDB/bsondoc/types"
)

// maxNesting limits the depth of nested documents and arrays the decoder accepts.
const maxNesting = 1000

// field represents a single decoded document field.
//
// Unlike document fields in the types package, duplicate names are possible.
type field struct {
	value any
	name  string
}

// decodeDocument decodes a single BSON document that takes the whole byte slice.
//
// Duplicate field names follow the last-wins rule of [types.NewDocument]:
// the last value is kept at the position of the first.
func decodeDocument(raw []byte, depth int) (*types.Document, error) {
	fields, err := decodeFields(raw, depth)
	if err != nil {
		return nil, lazyerrors.Error(err)
	}

	pairs := make([]any, 0, len(fields)*2)
	for _, f := range fields {
		pairs = append(pairs, f.name, f.value)
	}

	res, err := types.NewDocument(pairs...)
	if err != nil {
		return nil, lazyerrors.Errorf("%w: %w", err, ErrDecodeInvalidInput)
	}

	return res, nil
}

// decodeArray decodes a single BSON array that takes the whole byte slice.
//
// Field names must be consecutive indexes "0", "1", and so on.
func decodeArray(raw []byte, depth int) (*types.Array, error) {
	fields, err := decodeFields(raw, depth)
	if err != nil {
		return nil, lazyerrors.Error(err)
	}

	values := make([]any, len(fields))

	for i, f := range fields {
		if f.name != strconv.Itoa(i) {
			return nil, lazyerrors.Errorf("invalid array index: %q: %w", f.name, ErrDecodeInvalidInput)
		}

		values[i] = f.value
	}

	res, err := types.NewArray(values...)
	if err != nil {
		return nil, lazyerrors.Errorf("%w: %w", err, ErrDecodeInvalidInput)
	}

	return res, nil
}

// decodeFields decodes fields of a single BSON document or array that takes the whole byte slice.
//
// Scalar values are returned in the types package representation;
// nested documents and arrays are decoded recursively.
func decodeFields(raw []byte, depth int) ([]field, error) {
	if depth > maxNesting {
		return nil, lazyerrors.Errorf("nested %d levels deep: %w", depth, ErrDecodeInvalidInput)
	}

	bl := len(raw)
	if bl < 5 {
		return nil, lazyerrors.Errorf("len(b) = %d: %w", bl, ErrDecodeShortInput)
	}

	if dl := int(binary.LittleEndian.Uint32(raw)); bl != dl {
		return nil, lazyerrors.Errorf("len(b) = %d, document length = %d: %w", bl, dl, ErrDecodeInvalidInput)
	}

	if last := raw[bl-1]; last != 0 {
		return nil, lazyerrors.Errorf("last = %d: %w", last, ErrDecodeInvalidInput)
	}

	var res []field

	offset := 4
	for offset != len(raw)-1 {
		if err := decodeCheckOffset(raw, offset, 1); err != nil {
			return nil, lazyerrors.Error(err)
		}

		t := tag(raw[offset])
		offset++

		if err := decodeCheckOffset(raw, offset, 1); err != nil {
			return nil, lazyerrors.Error(err)
		}

		name, err := bsonproto.DecodeCString(raw[offset:])
		if err != nil {
			return nil, lazyerrors.Error(err)
		}

		offset += len(name) + 1

		var v any

		switch t {
		case tagFloat64:
			var f float64
			f, err = bsonproto.DecodeFloat64(raw[offset:])
			offset += bsonproto.SizeFloat64
			v = f

		case tagString:
			var s string
			s, err = bsonproto.DecodeString(raw[offset:])
			offset += bsonproto.SizeString(s)
			v = s

		case tagDocument:
			if err = decodeCheckOffset(raw, offset, 4); err != nil {
				return nil, lazyerrors.Error(err)
			}

			l := int(binary.LittleEndian.Uint32(raw[offset:]))

			if err = decodeCheckOffset(raw, offset, l); err != nil {
				return nil, lazyerrors.Error(err)
			}

			v, err = decodeDocument(raw[offset:offset+l], depth+1)
			offset += l

		case tagArray:
			if err = decodeCheckOffset(raw, offset, 4); err != nil {
				return nil, lazyerrors.Error(err)
			}

			l := int(binary.LittleEndian.Uint32(raw[offset:]))

			if err = decodeCheckOffset(raw, offset, l); err != nil {
				return nil, lazyerrors.Error(err)
			}

			v, err = decodeArray(raw[offset:offset+l], depth+1)
			offset += l

		case tagBinary:
			var s bsonproto.Binary
			s, err = bsonproto.DecodeBinary(raw[offset:])
			offset += bsonproto.SizeBinary(s)
			v = convertToTypes(s)

		case tagObjectID:
			var s bsonproto.ObjectID
			s, err = bsonproto.DecodeObjectID(raw[offset:])
			offset += bsonproto.SizeObjectID
			v = convertToTypes(s)

		case tagBool:
			v, err = bsonproto.DecodeBool(raw[offset:])
			offset += bsonproto.SizeBool

		case tagTime:
			v, err = bsonproto.DecodeTime(raw[offset:])
			offset += bsonproto.SizeTime

		case tagNull:
			v = types.Null

		case tagRegex:
			var s bsonproto.Regex
			s, err = bsonproto.DecodeRegex(raw[offset:])
			offset += bsonproto.SizeRegex(s)
			v = convertToTypes(s)

		case tagInt32:
			v, err = bsonproto.DecodeInt32(raw[offset:])
			offset += bsonproto.SizeInt32

		case tagTimestamp:
			var s bsonproto.Timestamp
			s, err = bsonproto.DecodeTimestamp(raw[offset:])
			offset += bsonproto.SizeTimestamp
			v = convertToTypes(s)

		case tagInt64:
			v, err = bsonproto.DecodeInt64(raw[offset:])
			offset += bsonproto.SizeInt64

		case tagUndefined, tagDBPointer, tagJavaScript, tagSymbol, tagJavaScriptScope, tagDecimal, tagMinKey, tagMaxKey:
			return nil, lazyerrors.Errorf("unsupported tag %s: %w", t, ErrDecodeInvalidInput)

		default:
			return nil, lazyerrors.Errorf("unexpected tag %s: %w", t, ErrDecodeInvalidInput)
		}

		if err != nil {
			return nil, lazyerrors.Error(err)
		}

		res = append(res, field{name: name, value: v})
	}

	return res, nil
}

// decodeCheckOffset checks that raw has at least size bytes of element data starting from offset.
func decodeCheckOffset(raw []byte, offset, size int) error {
	if len(raw[offset:]) < size+1 {
		return lazyerrors.Errorf("offset = %d, size = %d: %w", offset, size, ErrDecodeShortInput)
	}

	return nil
}
