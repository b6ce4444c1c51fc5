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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegexCompile(t *testing.T) {
	t.Parallel()

	t.Run("Valid", func(t *testing.T) {
		t.Parallel()

		for name, tc := range map[string]struct {
			regex   Regex
			match   string
			noMatch string
		}{
			"Simple": {
				regex:   Regex{Pattern: "foo"},
				match:   "barfoobaz",
				noMatch: "bar",
			},
			"CaseInsensitive": {
				regex:   Regex{Pattern: "foo", Options: "i"},
				match:   "FOO",
				noMatch: "bar",
			},
			"MultilineAnchor": {
				regex:   Regex{Pattern: "^foo", Options: "m"},
				match:   "bar\nfoo",
				noMatch: "bar foo",
			},
			"DotMatchesNewline": {
				regex:   Regex{Pattern: "foo.bar"},
				match:   "foo\nbar",
				noMatch: "foobar",
			},
			"UnknownOptionIgnored": {
				regex:   Regex{Pattern: "foo", Options: "u"},
				match:   "foo",
				noMatch: "bar",
			},
		} {
			tc := tc

			t.Run(name, func(t *testing.T) {
				t.Parallel()

				re, err := tc.regex.Compile()
				require.NoError(t, err)
				assert.True(t, re.MatchString(tc.match))
				assert.False(t, re.MatchString(tc.noMatch))
			})
		}
	})

	t.Run("Invalid", func(t *testing.T) {
		t.Parallel()

		for name, tc := range map[string]struct {
			regex Regex
			err   error
		}{
			"MissingParen": {
				regex: Regex{Pattern: "(foo"},
				err:   ErrMissingParen,
			},
			"MissingBracket": {
				regex: Regex{Pattern: "[foo"},
				err:   ErrMissingBracket,
			},
			"UnmatchedParentheses": {
				regex: Regex{Pattern: "foo)"},
				err:   ErrUnmatchedParentheses,
			},
			"TrailingBackslash": {
				regex: Regex{Pattern: `foo\`},
				err:   ErrTrailingBackslash,
			},
			"NothingToRepeat": {
				regex: Regex{Pattern: "*foo"},
				err:   ErrNothingToRepeat,
			},
			"InvalidClassRange": {
				regex: Regex{Pattern: "[z-a]"},
				err:   ErrInvalidClassRange,
			},
		} {
			tc := tc

			t.Run(name, func(t *testing.T) {
				t.Parallel()

				_, err := tc.regex.Compile()
				assert.Equal(t, tc.err, err)
			})
		}
	})
}
