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

import "fmt"

// tag represents a BSON element type tag.
type tag byte

const (
	tagFloat64         = tag(0x01)
	tagString          = tag(0x02)
	tagDocument        = tag(0x03)
	tagArray           = tag(0x04)
	tagBinary          = tag(0x05)
	tagUndefined       = tag(0x06)
	tagObjectID        = tag(0x07)
	tagBool            = tag(0x08)
	tagTime            = tag(0x09)
	tagNull            = tag(0x0a)
	tagRegex           = tag(0x0b)
	tagDBPointer       = tag(0x0c)
	tagJavaScript      = tag(0x0d)
	tagSymbol          = tag(0x0e)
	tagJavaScriptScope = tag(0x0f)
	tagInt32           = tag(0x10)
	tagTimestamp       = tag(0x11)
	tagInt64           = tag(0x12)
	tagDecimal         = tag(0x13)
	tagMinKey          = tag(0xff)
	tagMaxKey          = tag(0x7f)
)

// String returns a human-readable name of the tag.
func (t tag) String() string {
	switch t {
	case tagFloat64:
		return "Float64"
	case tagString:
		return "String"
	case tagDocument:
		return "Document"
	case tagArray:
		return "Array"
	case tagBinary:
		return "Binary"
	case tagUndefined:
		return "Undefined"
	case tagObjectID:
		return "ObjectID"
	case tagBool:
		return "Bool"
	case tagTime:
		return "Time"
	case tagNull:
		return "Null"
	case tagRegex:
		return "Regex"
	case tagDBPointer:
		return "DBPointer"
	case tagJavaScript:
		return "JavaScript"
	case tagSymbol:
		return "Symbol"
	case tagJavaScriptScope:
		return "JavaScriptScope"
	case tagInt32:
		return "Int32"
	case tagTimestamp:
		return "Timestamp"
	case tagInt64:
		return "Int64"
	case tagDecimal:
		return "Decimal"
	case tagMinKey:
		return "MinKey"
	case tagMaxKey:
		return "MaxKey"
	default:
		return fmt.Sprintf("tag(0x%02x)", byte(t))
	}
}
