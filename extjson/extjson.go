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

// Package extjson provides Extended JSON conversion for BSON documents.
//
// Serialization supports two dialects:
//
// Strict mode (valid generic JSON):
//
//	Document:   {"<key 1>": <value 1>, "<key 2>": <value 2>, ...}
//	Array:      JSON array
//	Double:     JSON number with a fraction or exponent,
//	            or {"$numberDouble": "NaN|Infinity|-Infinity"}
//	String:     JSON string
//	Binary:     {"$binary": "<base 64 string>", "$type": "<subtype as hex string>"}
//	ObjectID:   {"$oid": "<ObjectID as 24 character hex string>"}
//	Bool:       JSON true / false values
//	DateTime:   {"$date": <milliseconds since epoch as JSON number>}
//	Null:       JSON null
//	Regex:      {"$regex": "<pattern>", "$options": "<options>"}
//	Int32:      JSON number
//	Timestamp:  {"$timestamp": {"t": <seconds>, "i": <increment>}}
//	Int64:      {"$numberLong": "<number as string>"}
//
// Shell mode (mongo shell syntax, not parseable by generic JSON tooling):
//
//	Binary:     new BinData(<subtype>, "<base 64 string>")
//	ObjectID:   ObjectId("<ObjectID as 24 character hex string>")
//	DateTime:   ISODate("<RFC 3339 date with milliseconds>"),
//	            or new Date(<milliseconds>) outside years 1-9999
//	Regex:      /<pattern>/<options>
//	Timestamp:  Timestamp(<seconds>, <increment>)
//	Int64:      NumberLong(<number>), quoted outside the int32 range
//	Double:     NaN, Infinity, -Infinity when the value is not finite
//
// The remaining types use their strict forms in both modes.
// Parsing strict output reproduces the original value tree exactly,
// including the distinction between Int32, Int64, and Double.
//
// A single parser accepts the union of both dialects; the dialect is
// detected per value, so one document may mix strict and shell forms.
// The parser additionally accepts unquoted object keys, single-quoted
// strings, {"$date": "<RFC 3339>"} and {"$date": {"$numberLong": "<ms>"}},
// {"$numberInt": "<n>"}, {"$numberDouble": "<n>"},
// {"$binary": {"base64": "<b64>", "subType": "<hex>"}},
// {"$regularExpression": {"pattern": "<p>", "options": "<o>"}},
// {"$uuid": "<canonical UUID>"}, the UUID("<canonical UUID>") constructor,
// and an optional "new" before constructor calls.
//
// Documents decoded from text apply the same duplicate key resolution as
// programmatic construction: the value under the last occurrence of a key
// wins, the key keeps the position of its first occurrence, and earlier
// values are discarded without error.
package extjson

import (
	"fmt"

	"github.com/FerretDB/bsondoc/internal/util/lazyerrors"
	"github.com/FerretDB/bsondoc/types"
)

// Mode selects the Extended JSON output dialect.
type Mode int

const (
	// Strict produces valid generic JSON with wrapper objects for types
	// that plain JSON cannot represent.
	Strict Mode = iota

	// Shell produces mongo shell constructor syntax.
	Shell
)

// MarshalOptions configures serialization.
//
// The zero value produces compact strict output.
type MarshalOptions struct {
	Mode   Mode
	Indent bool // two-space indentation with newlines
}

// ParseError describes invalid Extended JSON input.
//
// Pos is a byte offset into the input.
type ParseError struct {
	Msg string
	Pos int
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("extjson: position %d: %s", e.Pos, e.Msg)
}

// newParseError returns a new [*ParseError] with a formatted message.
func newParseError(pos int, format string, args ...any) error {
	return &ParseError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// Marshal returns the compact strict Extended JSON encoding of doc.
func Marshal(doc types.Doc) ([]byte, error) {
	return MarshalWith(doc, nil)
}

// MarshalWith returns the Extended JSON encoding of doc per opts.
// Nil opts is equivalent to a zero [MarshalOptions].
func MarshalWith(doc types.Doc, opts *MarshalOptions) ([]byte, error) {
	if opts == nil {
		opts = new(MarshalOptions)
	}

	switch opts.Mode {
	case Strict, Shell:
		// nothing
	default:
		return nil, lazyerrors.Errorf("unknown mode %d", opts.Mode)
	}

	e := &encoder{
		mode:   opts.Mode,
		indent: opts.Indent,
	}

	if err := e.encodeDoc(doc); err != nil {
		return nil, err
	}

	return e.buf.Bytes(), nil
}

// Unmarshal parses Extended JSON text into a document.
//
// The top-level value must be a document.
// On invalid input it returns a [*ParseError]; no partially populated
// document is ever returned.
func Unmarshal(data []byte) (*types.Document, error) {
	p := &parser{s: newScanner(data)}

	tok, err := p.s.next()
	if err != nil {
		return nil, err
	}

	if tok.kind != tokenBeginObject {
		return nil, newParseError(tok.pos, "expected '{', got %s", tok)
	}

	v, err := p.parseObject(tok.pos)
	if err != nil {
		return nil, err
	}

	doc, ok := v.(*types.Document)
	if !ok {
		return nil, newParseError(tok.pos, "top-level value must be a document")
	}

	end, err := p.s.next()
	if err != nil {
		return nil, err
	}

	if end.kind != tokenEOF {
		return nil, newParseError(end.pos, "unexpected data after document")
	}

	return doc, nil
}
