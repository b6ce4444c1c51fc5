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
	"log/slog"
	"math"
	"strconv"
	"time"
)

// LogValue implements slog.LogValuer.
func (d *Document) LogValue() slog.Value {
	return slogValue(d)
}

// LogValue implements slog.LogValuer.
func (d *MutableDocument) LogValue() slog.Value {
	return slogValue(d)
}

// LogValue implements slog.LogValuer.
func (a *Array) LogValue() slog.Value {
	return slogValue(a)
}

// slogValue returns a compact representation of any BSON value as [slog.Value].
//
// The result is optimized for small values such as function parameters.
// Some type information is lost;
// for example, both int32 and int64 values are returned with [slog.KindInt64].
func slogValue(v any) slog.Value {
	switch v := v.(type) {
	case Doc:
		var attrs []slog.Attr

		for _, k := range v.Keys() {
			f, err := v.Get(k)
			if err != nil {
				continue
			}

			attrs = append(attrs, slog.Attr{Key: k, Value: slogValue(f)})
		}

		return slog.GroupValue(attrs...)

	case *Array:
		var attrs []slog.Attr

		for i, el := range v.s {
			attrs = append(attrs, slog.Attr{Key: strconv.Itoa(i), Value: slogValue(el)})
		}

		return slog.GroupValue(attrs...)

	case float64:
		// for JSON handler to work
		switch {
		case math.IsNaN(v):
			return slog.StringValue("NaN")
		case math.IsInf(v, 1):
			return slog.StringValue("+Inf")
		case math.IsInf(v, -1):
			return slog.StringValue("-Inf")
		}

		return slog.Float64Value(v)

	case string:
		return slog.StringValue(v)

	case Binary:
		return slog.StringValue(fmt.Sprintf("Binary(%s, %d bytes)", v.Subtype, len(v.B)))

	case ObjectID:
		return slog.StringValue("ObjectID(" + v.Hex() + ")")

	case bool:
		return slog.BoolValue(v)

	case time.Time:
		return slog.TimeValue(v.Truncate(time.Millisecond).UTC())

	case NullType:
		return slog.Value{}

	case Regex:
		return slog.StringValue(fmt.Sprintf("Regex(/%s/%s)", v.Pattern, v.Options))

	case int32:
		return slog.Int64Value(int64(v))

	case Timestamp:
		return slog.StringValue(fmt.Sprintf("Timestamp(%d, %d)", v.T(), v.I()))

	case int64:
		return slog.Int64Value(v)

	default:
		panic(fmt.Sprintf("invalid BSON type %T", v))
	}
}

// check interfaces
var (
	_ slog.LogValuer = (*Document)(nil)
	_ slog.LogValuer = (*MutableDocument)(nil)
	_ slog.LogValuer = (*Array)(nil)
)
