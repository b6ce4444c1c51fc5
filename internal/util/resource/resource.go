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

// Package resource provides utilities for tracking resource lifetimes.
package resource

import (
	"fmt"
	"reflect"
	"runtime"
	"runtime/pprof"
	"sync"

	"github.com/FerretDB/bsondoc/internal/util/debugbuild"
)

// Token is a unique token that identifies a tracked object in a pprof profile.
//
// It should be a pointer field of the tracked object.
type Token struct {
	stack []byte

	_ [0]func() // prevent comparisons
}

// NewToken returns a new token.
func NewToken() *Token {
	return &Token{
		stack: debugbuild.Stack(),
	}
}

// profiles are created on demand and never removed.
var (
	profilesM sync.Mutex
	profiles  = map[reflect.Type]*pprof.Profile{}
)

// profileName returns the pprof profile name for the given object type.
func profileName(t reflect.Type) string {
	return "github.com/FerretDB/bsondoc/" + t.Elem().String()
}

// Track tracks the lifetime of the given object until Untrack is called on it.
//
// If the object is garbage-collected while still being tracked,
// the finalizer panics to surface the leak.
func Track[T any](obj *T, token *Token) {
	if obj == nil {
		panic("obj must not be nil")
	}

	if token == nil {
		panic("token must not be nil")
	}

	t := reflect.TypeOf(obj)

	profilesM.Lock()
	p := profiles[t]
	if p == nil {
		p = pprof.NewProfile(profileName(t))
		profiles[t] = p
	}
	profilesM.Unlock()

	// use token instead of obj itself,
	// because otherwise the profile would hold a reference to obj and the finalizer would never run
	p.Add(token, 2)

	runtime.SetFinalizer(obj, func(obj *T) {
		msg := fmt.Sprintf("%T %[1]p has not been finalized", obj)
		if token.stack != nil {
			msg += "\nObject created by " + string(token.stack)
		}

		panic(msg)
	})
}

// Untrack stops tracking the lifetime of the given object.
func Untrack[T any](obj *T, token *Token) {
	if obj == nil {
		panic("obj must not be nil")
	}

	if token == nil {
		panic("token must not be nil")
	}

	t := reflect.TypeOf(obj)

	profilesM.Lock()
	p := profiles[t]
	profilesM.Unlock()

	if p == nil {
		panic("object is not tracked")
	}

	p.Remove(token)

	runtime.SetFinalizer(obj, nil)
}
