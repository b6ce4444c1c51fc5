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
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cristalhq/bson/bsonproto"

	"github.com/FerretDB/bsondoc/internal/util/lazyerrors"
	"github.com/FerretDB/bsondoc/iterator"
	"github.com/FerretDB/bsondoc/types"
)

// Marshal encodes the given document into a single BSON document.
func Marshal(doc types.Doc) (RawDocument, error) {
	b, err := encodeDocument(doc)
	if err != nil {
		return nil, lazyerrors.Error(err)
	}

	if len(b) > types.MaxDocumentLen {
		return nil, lazyerrors.Errorf("document has %d bytes, maximum is %d", len(b), types.MaxDocumentLen)
	}

	return b, nil
}

// encodeDocument encodes a BSON document.
func encodeDocument(doc types.Doc) ([]byte, error) {
	size := sizeDocument(doc)
	buf := bytes.NewBuffer(make([]byte, 0, size))

	if err := binary.Write(buf, binary.LittleEndian, uint32(size)); err != nil {
		return nil, lazyerrors.Error(err)
	}

	iter := doc.Iterator()
	defer iter.Close()

	for {
		k, v, err := iter.Next()
		if err != nil {
			if errors.Is(err, iterator.ErrIteratorDone) {
				break
			}

			return nil, lazyerrors.Error(err)
		}

		if err = encodeField(buf, k, v); err != nil {
			return nil, lazyerrors.Error(err)
		}
	}

	if err := binary.Write(buf, binary.LittleEndian, byte(0)); err != nil {
		return nil, lazyerrors.Error(err)
	}

	return buf.Bytes(), nil
}

// encodeArray encodes a BSON array.
func encodeArray(arr *types.Array) ([]byte, error) {
	size := sizeArray(arr)
	buf := bytes.NewBuffer(make([]byte, 0, size))

	if err := binary.Write(buf, binary.LittleEndian, uint32(size)); err != nil {
		return nil, lazyerrors.Error(err)
	}

	iter := arr.Iterator()
	defer iter.Close()

	for {
		i, v, err := iter.Next()
		if err != nil {
			if errors.Is(err, iterator.ErrIteratorDone) {
				break
			}

			return nil, lazyerrors.Error(err)
		}

		if err = encodeField(buf, strconv.Itoa(i), v); err != nil {
			return nil, lazyerrors.Error(err)
		}
	}

	if err := binary.Write(buf, binary.LittleEndian, byte(0)); err != nil {
		return nil, lazyerrors.Error(err)
	}

	return buf.Bytes(), nil
}

// encodeField encodes a document field.
//
// It panics if v is not a valid type.
func encodeField(buf *bytes.Buffer, name string, v any) error {
	switch v := v.(type) {
	case types.Doc:
		if err := buf.WriteByte(byte(tagDocument)); err != nil {
			return lazyerrors.Error(err)
		}

		b := make([]byte, bsonproto.SizeCString(name))
		bsonproto.EncodeCString(b, name)

		if _, err := buf.Write(b); err != nil {
			return lazyerrors.Error(err)
		}

		b, err := encodeDocument(v)
		if err != nil {
			return lazyerrors.Error(err)
		}

		if _, err = buf.Write(b); err != nil {
			return lazyerrors.Error(err)
		}

	case *types.Array:
		if err := buf.WriteByte(byte(tagArray)); err != nil {
			return lazyerrors.Error(err)
		}

		b := make([]byte, bsonproto.SizeCString(name))
		bsonproto.EncodeCString(b, name)

		if _, err := buf.Write(b); err != nil {
			return lazyerrors.Error(err)
		}

		b, err := encodeArray(v)
		if err != nil {
			return lazyerrors.Error(err)
		}

		if _, err = buf.Write(b); err != nil {
			return lazyerrors.Error(err)
		}

	default:
		return encodeScalarField(buf, name, v)
	}

	return nil
}

// encodeScalarField encodes a scalar document field.
//
// It panics if v is not a scalar value.
func encodeScalarField(buf *bytes.Buffer, name string, v any) error {
	switch v.(type) {
	case float64:
		buf.WriteByte(byte(tagFloat64))
	case string:
		buf.WriteByte(byte(tagString))
	case types.Binary:
		buf.WriteByte(byte(tagBinary))
	case types.ObjectID:
		buf.WriteByte(byte(tagObjectID))
	case bool:
		buf.WriteByte(byte(tagBool))
	case time.Time:
		buf.WriteByte(byte(tagTime))
	case types.NullType:
		buf.WriteByte(byte(tagNull))
	case types.Regex:
		buf.WriteByte(byte(tagRegex))
	case int32:
		buf.WriteByte(byte(tagInt32))
	case types.Timestamp:
		buf.WriteByte(byte(tagTimestamp))
	case int64:
		buf.WriteByte(byte(tagInt64))
	default:
		panic(fmt.Sprintf("invalid type %T", v))
	}

	b := make([]byte, bsonproto.SizeCString(name))
	bsonproto.EncodeCString(b, name)

	if _, err := buf.Write(b); err != nil {
		return lazyerrors.Error(err)
	}

	s := convertFromTypes(v)

	b = make([]byte, bsonproto.SizeAny(s))
	bsonproto.EncodeAny(b, s)

	if _, err := buf.Write(b); err != nil {
		return lazyerrors.Error(err)
	}

	return nil
}
