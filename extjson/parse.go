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
	"encoding/base64"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/FerretDB/bsondoc/internal/util/lazyerrors"
	"github.com/FerretDB/bsondoc/types"
)

// maxNesting limits document and array nesting
// to keep recursive parsing bounded on adversarial input.
const maxNesting = 1000

// parser builds a value tree from scanner tokens.
//
// An object whose first key starts with '$' is a strict wrapper;
// an identifier at a value position is a literal or a shell constructor.
// Everything else is plain JSON.
type parser struct {
	s     *scanner
	depth int
}

// expect reads the next token and checks its kind.
func (p *parser) expect(kind tokenKind, what string) (token, error) {
	tok, err := p.s.next()
	if err != nil {
		return token{}, err
	}

	if tok.kind != kind {
		return token{}, newParseError(tok.pos, "expected %s, got %s", what, tok)
	}

	return tok, nil
}

// key reads an object key: a quoted string or an unquoted identifier.
func (p *parser) key() (token, error) {
	tok, err := p.s.next()
	if err != nil {
		return token{}, err
	}

	switch tok.kind {
	case tokenString, tokenIdent:
		return tok, nil
	default:
		return token{}, newParseError(tok.pos, "expected a key, got %s", tok)
	}
}

// parseValue parses a single value starting from the given token.
func (p *parser) parseValue(tok token) (any, error) {
	switch tok.kind {
	case tokenBeginObject:
		return p.parseObject(tok.pos)
	case tokenBeginArray:
		return p.parseArray(tok.pos)
	case tokenString:
		return tok.v.(string), nil
	case tokenInt32, tokenInt64, tokenDouble, tokenRegex:
		return tok.v, nil
	case tokenIdent:
		return p.parseIdent(tok)
	default:
		return nil, newParseError(tok.pos, "expected a value, got %s", tok)
	}
}

// parseObject parses the rest of an object after '{',
// dispatching between a strict wrapper form and a plain document.
func (p *parser) parseObject(openPos int) (any, error) {
	p.depth++
	defer func() { p.depth-- }()

	if p.depth > maxNesting {
		return nil, newParseError(openPos, "exceeded maximum nesting depth")
	}

	tok, err := p.s.next()
	if err != nil {
		return nil, err
	}

	switch tok.kind {
	case tokenEndObject:
		doc, err := types.NewDocument()
		if err != nil {
			return nil, lazyerrors.Error(err)
		}

		return doc, nil

	case tokenString, tokenIdent:
		if strings.HasPrefix(tok.v.(string), "$") {
			return p.parseWrapper(tok)
		}

		return p.parseDocumentRest(tok)

	default:
		return nil, newParseError(tok.pos, "expected a key or '}', got %s", tok)
	}
}

// parseDocumentRest parses document fields
// starting from the first, already read, key token.
// Keys after the first may start with '$' and are taken literally.
func (p *parser) parseDocumentRest(keyTok token) (*types.Document, error) {
	var pairs []any

	for {
		key := keyTok.v.(string)
		if key == "" {
			return nil, newParseError(keyTok.pos, "empty key")
		}

		if _, err := p.expect(tokenColon, "':'"); err != nil {
			return nil, err
		}

		tok, err := p.s.next()
		if err != nil {
			return nil, err
		}

		v, err := p.parseValue(tok)
		if err != nil {
			return nil, err
		}

		pairs = append(pairs, key, v)

		tok, err = p.s.next()
		if err != nil {
			return nil, err
		}

		switch tok.kind {
		case tokenEndObject:
			doc, err := types.NewDocument(pairs...)
			if err != nil {
				return nil, lazyerrors.Error(err)
			}

			return doc, nil

		case tokenComma:
			if keyTok, err = p.key(); err != nil {
				return nil, err
			}

		default:
			return nil, newParseError(tok.pos, "expected ',' or '}', got %s", tok)
		}
	}
}

// parseArray parses the rest of an array after '['.
func (p *parser) parseArray(openPos int) (*types.Array, error) {
	p.depth++
	defer func() { p.depth-- }()

	if p.depth > maxNesting {
		return nil, newParseError(openPos, "exceeded maximum nesting depth")
	}

	tok, err := p.s.next()
	if err != nil {
		return nil, err
	}

	if tok.kind == tokenEndArray {
		return types.MakeArray(0), nil
	}

	var elems []any

	for {
		v, err := p.parseValue(tok)
		if err != nil {
			return nil, err
		}

		elems = append(elems, v)

		sep, err := p.s.next()
		if err != nil {
			return nil, err
		}

		switch sep.kind {
		case tokenEndArray:
			arr, err := types.NewArray(elems...)
			if err != nil {
				return nil, lazyerrors.Error(err)
			}

			return arr, nil

		case tokenComma:
			if tok, err = p.s.next(); err != nil {
				return nil, err
			}

		default:
			return nil, newParseError(sep.pos, "expected ',' or ']', got %s", sep)
		}
	}
}

// parseIdent handles an identifier at a value position:
// a literal or a shell constructor call.
func (p *parser) parseIdent(tok token) (any, error) {
	switch tok.v.(string) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "null":
		return types.Null, nil
	case "NaN":
		return math.NaN(), nil
	case "Infinity":
		return math.Inf(1), nil
	case "new":
		ctor, err := p.s.next()
		if err != nil {
			return nil, err
		}

		if ctor.kind != tokenIdent {
			return nil, newParseError(ctor.pos, "expected a constructor after 'new', got %s", ctor)
		}

		return p.parseConstructor(ctor)
	default:
		return p.parseConstructor(tok)
	}
}

// parseConstructor parses a shell constructor call
// starting from the already read name token.
func (p *parser) parseConstructor(tok token) (any, error) {
	name := tok.v.(string)

	switch name {
	case "ObjectId", "ISODate", "Date", "NumberLong", "NumberInt", "BinData", "Timestamp", "UUID":
		// known constructor
	default:
		return nil, newParseError(tok.pos, "unexpected identifier %q", name)
	}

	if _, err := p.expect(tokenLParen, "'('"); err != nil {
		return nil, err
	}

	var v any
	var err error

	switch name {
	case "ObjectId":
		v, err = p.oidValue()

	case "ISODate":
		v, err = p.dateStringValue()

	case "Date":
		var arg token
		if arg, err = p.s.next(); err != nil {
			return nil, err
		}

		switch arg.kind {
		case tokenInt32:
			v = time.UnixMilli(int64(arg.v.(int32))).UTC()
		case tokenInt64:
			v = time.UnixMilli(arg.v.(int64)).UTC()
		case tokenString:
			var t time.Time
			if t, err = parseDateLiteral(arg.v.(string)); err != nil {
				return nil, newParseError(arg.pos, "invalid date %q", arg.v)
			}
			v = t
		default:
			return nil, newParseError(arg.pos, "expected milliseconds or a string, got %s", arg)
		}

	case "NumberLong":
		v, err = p.integerValue(64)

	case "NumberInt":
		var n int64
		if n, err = p.integerValue(32); err == nil {
			v = int32(n)
		}

	case "BinData":
		var st types.BinarySubtype
		if st, err = p.subtypeValue(); err != nil {
			return nil, err
		}

		if _, err = p.expect(tokenComma, "','"); err != nil {
			return nil, err
		}

		var arg token
		if arg, err = p.expect(tokenString, "a base 64 string"); err != nil {
			return nil, err
		}

		var b []byte
		if b, err = decodeBase64(arg); err != nil {
			return nil, err
		}

		v = types.Binary{B: b, Subtype: st}

	case "Timestamp":
		var t, i uint32
		if t, err = p.timestampPart(); err != nil {
			return nil, err
		}

		if _, err = p.expect(tokenComma, "','"); err != nil {
			return nil, err
		}

		if i, err = p.timestampPart(); err != nil {
			return nil, err
		}

		v = types.NewTimestamp(time.Unix(int64(t), 0), i)

	case "UUID":
		v, err = p.uuidValue()
	}

	if err != nil {
		return nil, err
	}

	if _, err := p.expect(tokenRParen, "')'"); err != nil {
		return nil, err
	}

	return v, nil
}

// parseWrapper parses a strict wrapper object; the opening '{' and the
// first key are already consumed. The closing '}' is consumed here.
func (p *parser) parseWrapper(keyTok token) (any, error) {
	if _, err := p.expect(tokenColon, "':'"); err != nil {
		return nil, err
	}

	var v any
	var err error

	switch key := keyTok.v.(string); key {
	case "$oid":
		v, err = p.oidValue()
	case "$binary":
		v, err = p.binaryValue()
	case "$type":
		v, err = p.binaryValueTypeFirst()
	case "$date":
		v, err = p.dateValue()
	case "$regex":
		v, err = p.regexValue()
	case "$options":
		v, err = p.regexValueOptionsFirst()
	case "$regularExpression":
		v, err = p.regularExpressionValue()
	case "$numberLong":
		v, err = p.integerValue(64)
	case "$numberInt":
		var n int64
		if n, err = p.integerValue(32); err == nil {
			v = int32(n)
		}
	case "$numberDouble":
		v, err = p.doubleValue()
	case "$timestamp":
		v, err = p.timestampValue()
	case "$uuid":
		v, err = p.uuidValue()
	default:
		return nil, newParseError(keyTok.pos, "unknown wrapper key %q", key)
	}

	if err != nil {
		return nil, err
	}

	if _, err := p.expect(tokenEndObject, "'}'"); err != nil {
		return nil, err
	}

	return v, nil
}

// oidValue reads the quoted hex payload of $oid and ObjectId.
func (p *parser) oidValue() (types.ObjectID, error) {
	arg, err := p.expect(tokenString, "a string")
	if err != nil {
		return types.ObjectID{}, err
	}

	id, err := types.ObjectIDFromHex(arg.v.(string))
	if err != nil {
		return types.ObjectID{}, newParseError(arg.pos, "invalid ObjectId %q", arg.v)
	}

	return id, nil
}

// binaryValue parses the payload of the $binary wrapper:
// either the legacy "<base 64>", "$type": "<hex>" form
// or the nested {"base64": ..., "subType": ...} form.
func (p *parser) binaryValue() (types.Binary, error) {
	tok, err := p.s.next()
	if err != nil {
		return types.Binary{}, err
	}

	switch tok.kind {
	case tokenString:
		b, err := decodeBase64(tok)
		if err != nil {
			return types.Binary{}, err
		}

		if _, err = p.expect(tokenComma, "','"); err != nil {
			return types.Binary{}, err
		}

		k, err := p.key()
		if err != nil {
			return types.Binary{}, err
		}

		if k.v.(string) != "$type" {
			return types.Binary{}, newParseError(k.pos, `expected "$type", got %s`, k)
		}

		if _, err = p.expect(tokenColon, "':'"); err != nil {
			return types.Binary{}, err
		}

		st, err := p.subtypeValue()
		if err != nil {
			return types.Binary{}, err
		}

		return types.Binary{B: b, Subtype: st}, nil

	case tokenBeginObject:
		return p.binaryObjectValue()

	default:
		return types.Binary{}, newParseError(tok.pos, "expected a string or '{', got %s", tok)
	}
}

// binaryValueTypeFirst parses the legacy binary wrapper
// with the field order reversed: {"$type": ..., "$binary": ...}.
func (p *parser) binaryValueTypeFirst() (types.Binary, error) {
	st, err := p.subtypeValue()
	if err != nil {
		return types.Binary{}, err
	}

	if _, err = p.expect(tokenComma, "','"); err != nil {
		return types.Binary{}, err
	}

	k, err := p.key()
	if err != nil {
		return types.Binary{}, err
	}

	if k.v.(string) != "$binary" {
		return types.Binary{}, newParseError(k.pos, `expected "$binary", got %s`, k)
	}

	if _, err = p.expect(tokenColon, "':'"); err != nil {
		return types.Binary{}, err
	}

	arg, err := p.expect(tokenString, "a base 64 string")
	if err != nil {
		return types.Binary{}, err
	}

	b, err := decodeBase64(arg)
	if err != nil {
		return types.Binary{}, err
	}

	return types.Binary{B: b, Subtype: st}, nil
}

// binaryObjectValue parses {"base64": "<b64>", "subType": "<hex>"}
// with the fields in either order.
func (p *parser) binaryObjectValue() (types.Binary, error) {
	var res types.Binary
	var haveB, haveST bool

	for {
		k, err := p.key()
		if err != nil {
			return types.Binary{}, err
		}

		if _, err = p.expect(tokenColon, "':'"); err != nil {
			return types.Binary{}, err
		}

		switch k.v.(string) {
		case "base64":
			arg, err := p.expect(tokenString, "a base 64 string")
			if err != nil {
				return types.Binary{}, err
			}

			if res.B, err = decodeBase64(arg); err != nil {
				return types.Binary{}, err
			}
			haveB = true

		case "subType":
			if res.Subtype, err = p.subtypeValue(); err != nil {
				return types.Binary{}, err
			}
			haveST = true

		default:
			return types.Binary{}, newParseError(k.pos, "unknown key %s in $binary", k)
		}

		sep, err := p.s.next()
		if err != nil {
			return types.Binary{}, err
		}

		switch sep.kind {
		case tokenEndObject:
			if !haveB || !haveST {
				return types.Binary{}, newParseError(sep.pos, "$binary requires base64 and subType")
			}

			return res, nil

		case tokenComma:
			// next field

		default:
			return types.Binary{}, newParseError(sep.pos, "expected ',' or '}', got %s", sep)
		}
	}
}

// subtypeValue reads a binary subtype:
// a hex string in wrappers, or a bare number in shell constructors.
func (p *parser) subtypeValue() (types.BinarySubtype, error) {
	tok, err := p.s.next()
	if err != nil {
		return 0, err
	}

	switch tok.kind {
	case tokenString:
		n, err := strconv.ParseUint(tok.v.(string), 16, 8)
		if err != nil {
			return 0, newParseError(tok.pos, "invalid binary subtype %q", tok.v)
		}

		return types.BinarySubtype(n), nil

	case tokenInt32:
		n := tok.v.(int32)
		if n < 0 || n > 255 {
			return 0, newParseError(tok.pos, "binary subtype %d is out of range", n)
		}

		return types.BinarySubtype(n), nil

	default:
		return 0, newParseError(tok.pos, "expected a binary subtype, got %s", tok)
	}
}

func decodeBase64(tok token) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(tok.v.(string))
	if err != nil {
		return nil, newParseError(tok.pos, "invalid base 64 data")
	}

	return b, nil
}

// dateValue parses the payload of the $date wrapper: bare milliseconds,
// an RFC 3339 string, or {"$numberLong": "<ms>"}.
func (p *parser) dateValue() (time.Time, error) {
	tok, err := p.s.next()
	if err != nil {
		return time.Time{}, err
	}

	switch tok.kind {
	case tokenInt32:
		return time.UnixMilli(int64(tok.v.(int32))).UTC(), nil

	case tokenInt64:
		return time.UnixMilli(tok.v.(int64)).UTC(), nil

	case tokenString:
		t, err := parseDateLiteral(tok.v.(string))
		if err != nil {
			return time.Time{}, newParseError(tok.pos, "invalid date %q", tok.v)
		}

		return t, nil

	case tokenBeginObject:
		k, err := p.key()
		if err != nil {
			return time.Time{}, err
		}

		if k.v.(string) != "$numberLong" {
			return time.Time{}, newParseError(k.pos, `expected "$numberLong", got %s`, k)
		}

		if _, err = p.expect(tokenColon, "':'"); err != nil {
			return time.Time{}, err
		}

		ms, err := p.integerValue(64)
		if err != nil {
			return time.Time{}, err
		}

		if _, err = p.expect(tokenEndObject, "'}'"); err != nil {
			return time.Time{}, err
		}

		return time.UnixMilli(ms).UTC(), nil

	default:
		return time.Time{}, newParseError(tok.pos, "expected a date, got %s", tok)
	}
}

// dateStringValue reads a quoted date argument.
func (p *parser) dateStringValue() (time.Time, error) {
	arg, err := p.expect(tokenString, "a string")
	if err != nil {
		return time.Time{}, err
	}

	t, err := parseDateLiteral(arg.v.(string))
	if err != nil {
		return time.Time{}, newParseError(arg.pos, "invalid date %q", arg.v)
	}

	return t, nil
}

// parseDateLiteral accepts an RFC 3339 timestamp
// with optional fractional seconds, or a bare date.
func parseDateLiteral(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}

	return time.Parse("2006-01-02", s)
}

// regexValue parses `"<pattern>"` optionally followed by
// `, "$options": "<options>"`.
func (p *parser) regexValue() (types.Regex, error) {
	arg, err := p.expect(tokenString, "a string")
	if err != nil {
		return types.Regex{}, err
	}

	re := types.Regex{Pattern: arg.v.(string)}

	tok, err := p.s.peek()
	if err != nil {
		return types.Regex{}, err
	}

	if tok.kind != tokenComma {
		return re, nil
	}

	if _, err = p.s.next(); err != nil {
		return types.Regex{}, err
	}

	k, err := p.key()
	if err != nil {
		return types.Regex{}, err
	}

	if k.v.(string) != "$options" {
		return types.Regex{}, newParseError(k.pos, `expected "$options", got %s`, k)
	}

	if _, err = p.expect(tokenColon, "':'"); err != nil {
		return types.Regex{}, err
	}

	opts, err := p.expect(tokenString, "a string")
	if err != nil {
		return types.Regex{}, err
	}

	re.Options = opts.v.(string)

	return re, nil
}

// regexValueOptionsFirst parses the regex wrapper
// with the field order reversed: {"$options": ..., "$regex": ...}.
func (p *parser) regexValueOptionsFirst() (types.Regex, error) {
	opts, err := p.expect(tokenString, "a string")
	if err != nil {
		return types.Regex{}, err
	}

	if _, err = p.expect(tokenComma, "','"); err != nil {
		return types.Regex{}, err
	}

	k, err := p.key()
	if err != nil {
		return types.Regex{}, err
	}

	if k.v.(string) != "$regex" {
		return types.Regex{}, newParseError(k.pos, `expected "$regex", got %s`, k)
	}

	if _, err = p.expect(tokenColon, "':'"); err != nil {
		return types.Regex{}, err
	}

	pattern, err := p.expect(tokenString, "a string")
	if err != nil {
		return types.Regex{}, err
	}

	return types.Regex{Pattern: pattern.v.(string), Options: opts.v.(string)}, nil
}

// regularExpressionValue parses {"pattern": "<p>", "options": "<o>"}
// with the fields in either order; options may be omitted.
func (p *parser) regularExpressionValue() (types.Regex, error) {
	if _, err := p.expect(tokenBeginObject, "'{'"); err != nil {
		return types.Regex{}, err
	}

	var re types.Regex
	var havePattern bool

	for {
		k, err := p.key()
		if err != nil {
			return types.Regex{}, err
		}

		if _, err = p.expect(tokenColon, "':'"); err != nil {
			return types.Regex{}, err
		}

		arg, err := p.expect(tokenString, "a string")
		if err != nil {
			return types.Regex{}, err
		}

		switch k.v.(string) {
		case "pattern":
			re.Pattern = arg.v.(string)
			havePattern = true
		case "options":
			re.Options = arg.v.(string)
		default:
			return types.Regex{}, newParseError(k.pos, "unknown key %s in $regularExpression", k)
		}

		sep, err := p.s.next()
		if err != nil {
			return types.Regex{}, err
		}

		switch sep.kind {
		case tokenEndObject:
			if !havePattern {
				return types.Regex{}, newParseError(sep.pos, "$regularExpression requires pattern")
			}

			return re, nil

		case tokenComma:
			// next field

		default:
			return types.Regex{}, newParseError(sep.pos, "expected ',' or '}', got %s", sep)
		}
	}
}

// integerValue reads a numeric payload
// that may also be given as a quoted string.
func (p *parser) integerValue(bits int) (int64, error) {
	tok, err := p.s.next()
	if err != nil {
		return 0, err
	}

	var n int64

	switch tok.kind {
	case tokenInt32:
		n = int64(tok.v.(int32))
	case tokenInt64:
		n = tok.v.(int64)
	case tokenString:
		if n, err = strconv.ParseInt(tok.v.(string), 10, bits); err != nil {
			return 0, newParseError(tok.pos, "invalid number %q", tok.v)
		}
	default:
		return 0, newParseError(tok.pos, "expected a number, got %s", tok)
	}

	if bits == 32 && (n < math.MinInt32 || n > math.MaxInt32) {
		return 0, newParseError(tok.pos, "number %d does not fit into int32", n)
	}

	return n, nil
}

// doubleValue parses the payload of the $numberDouble wrapper,
// including the "NaN", "Infinity", and "-Infinity" strings.
func (p *parser) doubleValue() (float64, error) {
	tok, err := p.s.next()
	if err != nil {
		return 0, err
	}

	switch tok.kind {
	case tokenString:
		v, err := strconv.ParseFloat(tok.v.(string), 64)
		if err != nil {
			return 0, newParseError(tok.pos, "invalid double %q", tok.v)
		}

		return v, nil

	case tokenInt32:
		return float64(tok.v.(int32)), nil

	case tokenInt64:
		return float64(tok.v.(int64)), nil

	case tokenDouble:
		return tok.v.(float64), nil

	default:
		return 0, newParseError(tok.pos, "expected a double, got %s", tok)
	}
}

// timestampValue parses {"t": <seconds>, "i": <increment>}
// with the fields in either order.
func (p *parser) timestampValue() (types.Timestamp, error) {
	if _, err := p.expect(tokenBeginObject, "'{'"); err != nil {
		return 0, err
	}

	var t, i uint32
	var haveT, haveI bool

	for {
		k, err := p.key()
		if err != nil {
			return 0, err
		}

		if _, err = p.expect(tokenColon, "':'"); err != nil {
			return 0, err
		}

		n, err := p.timestampPart()
		if err != nil {
			return 0, err
		}

		switch k.v.(string) {
		case "t":
			t, haveT = n, true
		case "i":
			i, haveI = n, true
		default:
			return 0, newParseError(k.pos, "unknown key %s in $timestamp", k)
		}

		sep, err := p.s.next()
		if err != nil {
			return 0, err
		}

		switch sep.kind {
		case tokenEndObject:
			if !haveT || !haveI {
				return 0, newParseError(sep.pos, "$timestamp requires t and i")
			}

			return types.NewTimestamp(time.Unix(int64(t), 0), i), nil

		case tokenComma:
			// next field

		default:
			return 0, newParseError(sep.pos, "expected ',' or '}', got %s", sep)
		}
	}
}

// timestampPart reads one unsigned 32-bit timestamp component.
func (p *parser) timestampPart() (uint32, error) {
	tok, err := p.s.next()
	if err != nil {
		return 0, err
	}

	var n int64

	switch tok.kind {
	case tokenInt32:
		n = int64(tok.v.(int32))
	case tokenInt64:
		n = tok.v.(int64)
	default:
		return 0, newParseError(tok.pos, "expected a number, got %s", tok)
	}

	if n < 0 || n > math.MaxUint32 {
		return 0, newParseError(tok.pos, "timestamp value %d is out of range", n)
	}

	return uint32(n), nil
}

// uuidValue reads a quoted UUID and returns it as Binary subtype 4.
func (p *parser) uuidValue() (types.Binary, error) {
	arg, err := p.expect(tokenString, "a string")
	if err != nil {
		return types.Binary{}, err
	}

	u, err := uuid.Parse(arg.v.(string))
	if err != nil {
		return types.Binary{}, newParseError(arg.pos, "invalid UUID %q", arg.v)
	}

	return types.Binary{B: u[:], Subtype: types.BinaryUUID}, nil
}
