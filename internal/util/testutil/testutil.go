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

// Package testutil provides testing helpers.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/FerretDB/bsondoc/extjson"
	"github.com/FerretDB/bsondoc/internal/util/must"
	"github.com/FerretDB/bsondoc/types"
)

// Dump returns an indented Extended JSON form of the given value for failure messages.
//
// Scalars and arrays are wrapped into a single-field document
// so that every value has a valid top-level form.
func Dump[T types.Type](tb testing.TB, v T) string {
	tb.Helper()

	var doc types.Doc

	switch v := any(v).(type) {
	case types.Doc:
		doc = v
	default:
		doc = must.NotFail(types.NewDocument("v", v))
	}

	b, err := extjson.MarshalWith(doc, &extjson.MarshalOptions{Indent: true})
	require.NoError(tb, err)

	return string(b)
}
