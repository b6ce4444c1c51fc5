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
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/FerretDB/bsondoc/internal/util/lazyerrors"
	"github.com/FerretDB/bsondoc/iterator"
	"github.com/FerretDB/bsondoc/types"
)

// encoder writes a value tree as Extended JSON.
//
// Documents and arrays honor the indentation setting;
// wrapper objects are always written compactly.
type encoder struct {
	buf    bytes.Buffer
	mode   Mode
	indent bool
	depth  int
}

// newline starts an indented line in indent mode and is a no-op otherwise.
func (e *encoder) newline() {
	if !e.indent {
		return
	}

	e.buf.WriteByte('\n')

	for i := 0; i < e.depth; i++ {
		e.buf.WriteString("  ")
	}
}

func (e *encoder) encodeDoc(doc types.Doc) error {
	if doc.Len() == 0 {
		e.buf.WriteString("{}")
		return nil
	}

	e.buf.WriteByte('{')
	e.depth++

	it := doc.Iterator()
	defer it.Close()

	for i := 0; ; i++ {
		k, v, err := it.Next()
		if errors.Is(err, iterator.ErrIteratorDone) {
			break
		}

		if err != nil {
			return lazyerrors.Error(err)
		}

		if i != 0 {
			e.buf.WriteByte(',')
		}

		e.newline()
		e.encodeString(k)
		e.buf.WriteByte(':')

		if e.indent {
			e.buf.WriteByte(' ')
		}

		if err = e.encodeValue(v); err != nil {
			return err
		}
	}

	e.depth--
	e.newline()
	e.buf.WriteByte('}')

	return nil
}

func (e *encoder) encodeArray(a *types.Array) error {
	if a.Len() == 0 {
		e.buf.WriteString("[]")
		return nil
	}

	e.buf.WriteByte('[')
	e.depth++

	it := a.Iterator()
	defer it.Close()

	for i := 0; ; i++ {
		_, v, err := it.Next()
		if errors.Is(err, iterator.ErrIteratorDone) {
			break
		}

		if err != nil {
			return lazyerrors.Error(err)
		}

		if i != 0 {
			e.buf.WriteByte(',')
		}

		e.newline()

		if err = e.encodeValue(v); err != nil {
			return err
		}
	}

	e.depth--
	e.newline()
	e.buf.WriteByte(']')

	return nil
}

func (e *encoder) encodeValue(v any) error {
	switch v := v.(type) {
	case types.Doc:
		return e.encodeDoc(v)

	case *types.Array:
		return e.encodeArray(v)

	case float64:
		e.encodeDouble(v)

	case string:
		e.encodeString(v)

	case types.Binary:
		b64 := base64.StdEncoding.EncodeToString(v.B)
		if e.mode == Shell {
			fmt.Fprintf(&e.buf, `new BinData(%d,"%s")`, byte(v.Subtype), b64)
		} else {
			fmt.Fprintf(&e.buf, `{"$binary":"%s","$type":"%02x"}`, b64, byte(v.Subtype))
		}

	case types.ObjectID:
		if e.mode == Shell {
			e.buf.WriteString(`ObjectId("` + v.Hex() + `")`)
		} else {
			e.buf.WriteString(`{"$oid":"` + v.Hex() + `"}`)
		}

	case bool:
		e.buf.WriteString(strconv.FormatBool(v))

	case time.Time:
		e.encodeTime(v)

	case types.NullType:
		e.buf.WriteString("null")

	case types.Regex:
		e.encodeRegex(v)

	case int32:
		e.buf.WriteString(strconv.FormatInt(int64(v), 10))

	case types.Timestamp:
		if e.mode == Shell {
			fmt.Fprintf(&e.buf, "Timestamp(%d, %d)", v.T(), v.I())
		} else {
			fmt.Fprintf(&e.buf, `{"$timestamp":{"t":%d,"i":%d}}`, v.T(), v.I())
		}

	case int64:
		e.encodeInt64(v)

	default:
		panic(fmt.Sprintf("invalid BSON type %T", v))
	}

	return nil
}

// encodeDouble writes a finite double with a forced fraction or exponent
// so that it re-parses as a double, and wraps non-finite values,
// which plain JSON cannot represent.
func (e *encoder) encodeDouble(v float64) {
	var special string

	switch {
	case math.IsNaN(v):
		special = "NaN"
	case math.IsInf(v, 1):
		special = "Infinity"
	case math.IsInf(v, -1):
		special = "-Infinity"
	default:
		format := byte('f')
		if abs := math.Abs(v); abs != 0 && (abs < 1e-6 || abs >= 1e21) {
			format = 'e'
		}

		res := strconv.FormatFloat(v, format, -1, 64)
		if format == 'f' && !strings.Contains(res, ".") {
			res += ".0"
		}

		e.buf.WriteString(res)

		return
	}

	if e.mode == Shell {
		e.buf.WriteString(special)
	} else {
		e.buf.WriteString(`{"$numberDouble":"` + special + `"}`)
	}
}

// encodeTime writes DateTime; model values are UTC with millisecond
// precision. Shell dates outside years 1-9999 cannot be rendered by
// ISODate and fall back to the constructor with milliseconds.
func (e *encoder) encodeTime(t time.Time) {
	if e.mode == Shell {
		if y := t.Year(); y >= 1 && y <= 9999 {
			e.buf.WriteString(`ISODate("` + t.Format("2006-01-02T15:04:05.000Z") + `")`)
		} else {
			e.buf.WriteString("new Date(" + strconv.FormatInt(t.UnixMilli(), 10) + ")")
		}

		return
	}

	e.buf.WriteString(`{"$date":` + strconv.FormatInt(t.UnixMilli(), 10) + `}`)
}

// regexAsLiteral reports whether the value survives the /pattern/options
// form: options must be identifier characters, and the pattern must not
// end with a backslash or contain an escaped slash, which the literal
// syntax cannot carry.
func regexAsLiteral(v types.Regex) bool {
	for i := 0; i < len(v.Options); i++ {
		if !isIdentChar(v.Options[i]) {
			return false
		}
	}

	for i := 0; i < len(v.Pattern); i++ {
		if v.Pattern[i] != '\\' {
			continue
		}

		if i+1 >= len(v.Pattern) || v.Pattern[i+1] == '/' {
			return false
		}

		i++
	}

	return true
}

// encodeRegex writes a regex literal in shell mode, falling back to the
// wrapper form for values the literal syntax cannot represent.
func (e *encoder) encodeRegex(v types.Regex) {
	if e.mode == Shell && regexAsLiteral(v) {
		e.buf.WriteString("/" + strings.ReplaceAll(v.Pattern, "/", `\/`) + "/" + v.Options)
		return
	}

	e.buf.WriteString(`{"$regex":`)
	e.encodeString(v.Pattern)
	e.buf.WriteString(`,"$options":`)
	e.encodeString(v.Options)
	e.buf.WriteByte('}')
}

func (e *encoder) encodeInt64(v int64) {
	n := strconv.FormatInt(v, 10)

	if e.mode == Shell {
		if v >= math.MinInt32 && v <= math.MaxInt32 {
			e.buf.WriteString("NumberLong(" + n + ")")
		} else {
			e.buf.WriteString(`NumberLong("` + n + `")`)
		}

		return
	}

	e.buf.WriteString(`{"$numberLong":"` + n + `"}`)
}

// encodeString writes a JSON string with minimal escaping.
func (e *encoder) encodeString(s string) {
	e.buf.WriteByte('"')

	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"':
			e.buf.WriteString(`\"`)
		case '\\':
			e.buf.WriteString(`\\`)
		case '\n':
			e.buf.WriteString(`\n`)
		case '\r':
			e.buf.WriteString(`\r`)
		case '\t':
			e.buf.WriteString(`\t`)
		case '\b':
			e.buf.WriteString(`\b`)
		case '\f':
			e.buf.WriteString(`\f`)
		default:
			if c < 0x20 {
				fmt.Fprintf(&e.buf, `\u%04x`, c)
			} else {
				e.buf.WriteByte(c)
			}
		}
	}

	e.buf.WriteByte('"')
}
