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
	"bytes"
	"fmt"
	"math"
	"strconv"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/FerretDB/bsondoc/types"
)

// tokenKind classifies scanner tokens.
type tokenKind byte

const (
	tokenEOF tokenKind = iota
	tokenBeginObject
	tokenEndObject
	tokenBeginArray
	tokenEndArray
	tokenColon
	tokenComma
	tokenLParen
	tokenRParen
	tokenInt32
	tokenInt64
	tokenDouble
	tokenString
	tokenIdent
	tokenRegex
)

// token is a single token of the union grammar:
// JSON with strict wrapper objects, plus unquoted identifiers,
// single-quoted strings, constructor parentheses, and regex literals
// of the shell dialect.
type token struct {
	v    any // int32, int64, float64, string, or types.Regex
	pos  int // byte offset of the first character
	kind tokenKind
}

// String is used in parse error messages.
func (t token) String() string {
	switch t.kind {
	case tokenEOF:
		return "end of input"
	case tokenBeginObject:
		return "'{'"
	case tokenEndObject:
		return "'}'"
	case tokenBeginArray:
		return "'['"
	case tokenEndArray:
		return "']'"
	case tokenColon:
		return "':'"
	case tokenComma:
		return "','"
	case tokenLParen:
		return "'('"
	case tokenRParen:
		return "')'"
	case tokenInt32, tokenInt64, tokenDouble:
		return fmt.Sprintf("number %v", t.v)
	case tokenString:
		return fmt.Sprintf("string %q", t.v)
	case tokenIdent:
		return fmt.Sprintf("identifier %q", t.v)
	case tokenRegex:
		return "regular expression"
	default:
		panic(fmt.Sprintf("unhandled token kind %d", t.kind))
	}
}

// scanner splits Extended JSON text into tokens, tracking byte offsets.
type scanner struct {
	data    []byte
	pos     int
	pending *token
}

func newScanner(data []byte) *scanner {
	return &scanner{data: data}
}

// next returns the next token and advances.
// The returned error is always a [*ParseError].
func (s *scanner) next() (token, error) {
	if s.pending != nil {
		tok := *s.pending
		s.pending = nil

		return tok, nil
	}

	return s.scan()
}

// peek returns the next token without consuming it.
func (s *scanner) peek() (token, error) {
	if s.pending == nil {
		tok, err := s.scan()
		if err != nil {
			return token{}, err
		}

		s.pending = &tok
	}

	return *s.pending, nil
}

func (s *scanner) scan() (token, error) {
	for s.pos < len(s.data) && isWhitespace(s.data[s.pos]) {
		s.pos++
	}

	if s.pos >= len(s.data) {
		return token{kind: tokenEOF, pos: s.pos}, nil
	}

	start := s.pos
	c := s.data[s.pos]

	switch {
	case c == '{':
		s.pos++
		return token{kind: tokenBeginObject, pos: start}, nil
	case c == '}':
		s.pos++
		return token{kind: tokenEndObject, pos: start}, nil
	case c == '[':
		s.pos++
		return token{kind: tokenBeginArray, pos: start}, nil
	case c == ']':
		s.pos++
		return token{kind: tokenEndArray, pos: start}, nil
	case c == ':':
		s.pos++
		return token{kind: tokenColon, pos: start}, nil
	case c == ',':
		s.pos++
		return token{kind: tokenComma, pos: start}, nil
	case c == '(':
		s.pos++
		return token{kind: tokenLParen, pos: start}, nil
	case c == ')':
		s.pos++
		return token{kind: tokenRParen, pos: start}, nil
	case c == '"' || c == '\'':
		return s.scanString(c)
	case c == '/':
		return s.scanRegex()
	case c == '-' || isDigit(c):
		return s.scanNumber()
	case isIdentStart(c):
		return s.scanIdent(), nil
	default:
		return token{}, newParseError(start, "unexpected character %q", c)
	}
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' || c == '$'
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

// scanIdent reads an unquoted identifier:
// a literal, a constructor name, or an unquoted object key.
func (s *scanner) scanIdent() token {
	start := s.pos

	for s.pos < len(s.data) && isIdentChar(s.data[s.pos]) {
		s.pos++
	}

	return token{kind: tokenIdent, v: string(s.data[start:s.pos]), pos: start}
}

// scanString reads a string delimited by the given quote character
// and decodes escape sequences.
func (s *scanner) scanString(quote byte) (token, error) {
	start := s.pos
	s.pos++

	var b []byte

	for {
		if s.pos >= len(s.data) {
			return token{}, newParseError(start, "unterminated string")
		}

		c := s.data[s.pos]

		switch c {
		case quote:
			s.pos++

			if !utf8.Valid(b) {
				return token{}, newParseError(start, "invalid UTF-8 string")
			}

			return token{kind: tokenString, v: string(b), pos: start}, nil

		case '\\':
			s.pos++

			if s.pos >= len(s.data) {
				return token{}, newParseError(start, "unterminated string")
			}

			e := s.data[s.pos]
			s.pos++

			switch e {
			case '"', '\\', '/', '\'':
				b = append(b, e)
			case 'b':
				b = append(b, '\b')
			case 'f':
				b = append(b, '\f')
			case 'n':
				b = append(b, '\n')
			case 'r':
				b = append(b, '\r')
			case 't':
				b = append(b, '\t')
			case 'u':
				r, err := s.scanUnicodeEscape()
				if err != nil {
					return token{}, err
				}
				b = utf8.AppendRune(b, r)
			default:
				return token{}, newParseError(s.pos-2, "invalid escape sequence '\\%c'", e)
			}

		default:
			b = append(b, c)
			s.pos++
		}
	}
}

// scanUnicodeEscape reads the four hex digits of a \uXXXX sequence,
// combining UTF-16 surrogate pairs into a single rune.
// It is called with the position just past "\u".
func (s *scanner) scanUnicodeEscape() (rune, error) {
	u, err := s.scanHex4()
	if err != nil {
		return 0, err
	}

	r := rune(u)
	if !utf16.IsSurrogate(r) {
		return r, nil
	}

	// a lone surrogate is invalid; require the second half
	if s.pos+1 >= len(s.data) || s.data[s.pos] != '\\' || s.data[s.pos+1] != 'u' {
		return 0, newParseError(s.pos-6, "unpaired surrogate in \\u escape")
	}

	s.pos += 2

	u2, err := s.scanHex4()
	if err != nil {
		return 0, err
	}

	r = utf16.DecodeRune(r, rune(u2))
	if r == utf8.RuneError {
		return 0, newParseError(s.pos-12, "unpaired surrogate in \\u escape")
	}

	return r, nil
}

func (s *scanner) scanHex4() (uint16, error) {
	if s.pos+4 > len(s.data) {
		return 0, newParseError(s.pos, "invalid \\u escape")
	}

	u, err := strconv.ParseUint(string(s.data[s.pos:s.pos+4]), 16, 16)
	if err != nil {
		return 0, newParseError(s.pos, "invalid \\u escape")
	}

	s.pos += 4

	return uint16(u), nil
}

// scanRegex reads a /pattern/options literal.
// Escaped slashes are unescaped; all other backslash sequences are kept
// verbatim since they belong to the regular expression language.
func (s *scanner) scanRegex() (token, error) {
	start := s.pos
	s.pos++

	var pattern []byte

	for {
		if s.pos >= len(s.data) {
			return token{}, newParseError(start, "unterminated regular expression")
		}

		c := s.data[s.pos]

		switch c {
		case '/':
			s.pos++

			optStart := s.pos
			for s.pos < len(s.data) && isIdentChar(s.data[s.pos]) {
				s.pos++
			}

			re := types.Regex{
				Pattern: string(pattern),
				Options: string(s.data[optStart:s.pos]),
			}

			return token{kind: tokenRegex, v: re, pos: start}, nil

		case '\\':
			if s.pos+1 >= len(s.data) {
				return token{}, newParseError(start, "unterminated regular expression")
			}

			if next := s.data[s.pos+1]; next == '/' {
				pattern = append(pattern, '/')
			} else {
				pattern = append(pattern, '\\', next)
			}

			s.pos += 2

		default:
			pattern = append(pattern, c)
			s.pos++
		}
	}
}

// number scanner states, per RFC 8259 grammar
type numberState byte

const (
	sawLeadingMinus numberState = iota
	sawLeadingZero
	sawIntegerDigits
	sawDecimalPoint
	sawFractionDigits
	sawExponentLetter
	sawExponentSign
	sawExponentDigits
	doneNumber
	invalidNumber
)

// isNumberTerminator reports whether c may directly follow a number.
func isNumberTerminator(c byte) bool {
	return c == ',' || c == '}' || c == ']' || c == ')' || isWhitespace(c)
}

// scanNumber reads a JSON number.
// Integers in the int32 range produce [tokenInt32], larger integers
// produce [tokenInt64], and the presence of a fraction or exponent
// produces [tokenDouble].
// The shell's -Infinity literal is handled here as well.
func (s *scanner) scanNumber() (token, error) {
	start := s.pos
	kind := tokenInt64

	var state numberState
	switch s.data[s.pos] {
	case '-':
		state = sawLeadingMinus
	case '0':
		state = sawLeadingZero
	default:
		state = sawIntegerDigits
	}

	s.pos++

	for {
		var c byte
		eof := s.pos >= len(s.data)
		if !eof {
			c = s.data[s.pos]
		}

		switch state {
		case sawLeadingMinus:
			switch {
			case c == '0':
				state = sawLeadingZero
			case isDigit(c):
				state = sawIntegerDigits
			case c == 'I' && bytes.HasPrefix(s.data[s.pos:], []byte("Infinity")):
				s.pos += len("Infinity")
				return token{kind: tokenDouble, v: math.Inf(-1), pos: start}, nil
			default:
				state = invalidNumber
			}

		case sawLeadingZero:
			switch {
			case c == '.':
				state = sawDecimalPoint
			case c == 'e' || c == 'E':
				state = sawExponentLetter
			case eof || isNumberTerminator(c):
				state = doneNumber
			default:
				state = invalidNumber
			}

		case sawIntegerDigits:
			switch {
			case isDigit(c):
				// state unchanged
			case c == '.':
				state = sawDecimalPoint
			case c == 'e' || c == 'E':
				state = sawExponentLetter
			case eof || isNumberTerminator(c):
				state = doneNumber
			default:
				state = invalidNumber
			}

		case sawDecimalPoint:
			kind = tokenDouble
			if isDigit(c) {
				state = sawFractionDigits
			} else {
				state = invalidNumber
			}

		case sawFractionDigits:
			switch {
			case isDigit(c):
				// state unchanged
			case c == 'e' || c == 'E':
				state = sawExponentLetter
			case eof || isNumberTerminator(c):
				state = doneNumber
			default:
				state = invalidNumber
			}

		case sawExponentLetter:
			kind = tokenDouble
			switch {
			case c == '+' || c == '-':
				state = sawExponentSign
			case isDigit(c):
				state = sawExponentDigits
			default:
				state = invalidNumber
			}

		case sawExponentSign:
			if isDigit(c) {
				state = sawExponentDigits
			} else {
				state = invalidNumber
			}

		case sawExponentDigits:
			switch {
			case isDigit(c):
				// state unchanged
			case eof || isNumberTerminator(c):
				state = doneNumber
			default:
				state = invalidNumber
			}
		}

		switch state {
		case invalidNumber:
			return token{}, newParseError(start, "invalid number")

		case doneNumber:
			lit := string(s.data[start:s.pos])

			if kind == tokenDouble {
				v, err := strconv.ParseFloat(lit, 64)
				if err != nil {
					return token{}, newParseError(start, "invalid number %q", lit)
				}

				return token{kind: tokenDouble, v: v, pos: start}, nil
			}

			v, err := strconv.ParseInt(lit, 10, 64)
			if err != nil {
				return token{}, newParseError(start, "number %q does not fit into int64", lit)
			}

			if v >= math.MinInt32 && v <= math.MaxInt32 {
				return token{kind: tokenInt32, v: int32(v), pos: start}, nil
			}

			return token{kind: tokenInt64, v: v, pos: start}, nil

		default:
			s.pos++
		}
	}
}
