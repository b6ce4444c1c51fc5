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
	"sync/atomic"
	"time"
)

// Timestamp represents BSON type Timestamp.
//
// The high 32 bits hold seconds since the Unix epoch, the low 32 bits hold an increment.
type Timestamp uint64

// timestampCounter is an ordinal number for timestamps in the process.
var timestampCounter atomic.Uint32

// NewTimestamp returns a timestamp for the given time and increment.
func NewTimestamp(t time.Time, c uint32) Timestamp {
	return Timestamp(uint64(t.Unix())<<32 | uint64(c))
}

// NextTimestamp returns a timestamp for the given time and an internal ops counter.
func NextTimestamp(t time.Time) Timestamp {
	return NewTimestamp(t, timestampCounter.Add(1))
}

// T returns the seconds part of the timestamp.
func (ts Timestamp) T() uint32 {
	return uint32(ts >> 32)
}

// I returns the increment part of the timestamp.
func (ts Timestamp) I() uint32 {
	return uint32(ts)
}

// Time returns time.Time ignoring the increment.
func (ts Timestamp) Time() time.Time {
	return time.Unix(int64(ts>>32), 0).UTC()
}
