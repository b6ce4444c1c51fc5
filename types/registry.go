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
	"math"
	"reflect"
	"sync"
	"time"
)

// Pair is a field name/value pair.
//
// A []Pair value is resolved to a *Document, preserving order and
// replacing values of duplicate keys while keeping their first position.
type Pair struct {
	Key   string
	Value any
}

// TransformerFunc converts a single Go value to a BSON value.
//
// Transformers of composite values should resolve elements through the given registry.
type TransformerFunc func(r *Registry, v any) (any, error)

// UnsupportedTypeError is returned by Resolve when no conversion
// to a BSON value is known for the given Go type.
type UnsupportedTypeError struct {
	Type   reflect.Type
	Reason string
}

// Error implements the error interface.
func (e *UnsupportedTypeError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("types.Resolve: unsupported type: %s (%s)", e.Type, e.Reason)
	}

	return fmt.Sprintf("types.Resolve: unsupported type: %s", e.Type)
}

// Registry maps Go types to transformers producing BSON values.
//
// Lookup order in Resolve:
//
//  1. untyped nil resolves to Null;
//  2. a transformer registered for the exact dynamic type of the value;
//  3. a BSON value as described by the package documentation mapping resolves to itself;
//  4. a nil pointer resolves to Null, a non-nil pointer to its resolved element;
//  5. a slice or an array resolves to *Array with resolved elements.
//
// An exact transformer always wins over the structural pointer and slice rules.
//
// Registry is safe for concurrent use after all Register calls are done.
type Registry struct {
	rw    sync.RWMutex
	exact map[reflect.Type]TransformerFunc
}

// defaultRegistry is used by document and array constructors and mutators.
var defaultRegistry = NewRegistry()

// DefaultRegistry returns the registry used by document and array constructors and mutators.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Resolve converts the given value to a BSON value using the default registry.
func Resolve(v any) (any, error) {
	return defaultRegistry.Resolve(v)
}

// NewRegistry returns a new registry with built-in transformers.
func NewRegistry() *Registry {
	r := &Registry{
		exact: make(map[reflect.Type]TransformerFunc, 16),
	}

	r.Register(reflect.TypeOf([]byte(nil)), func(_ *Registry, v any) (any, error) {
		return Binary{B: v.([]byte), Subtype: BinaryGeneric}, nil
	})

	r.Register(reflect.TypeOf(time.Time{}), func(_ *Registry, v any) (any, error) {
		// normalize to UTC with a millisecond precision for exact round trips
		return time.UnixMilli(v.(time.Time).UnixMilli()).UTC(), nil
	})

	r.Register(reflect.TypeOf(float32(0)), func(_ *Registry, v any) (any, error) {
		return float64(v.(float32)), nil
	})

	// integers without an explicit BSON width resolve to
	// the narrowest BSON integer that holds the value

	r.Register(reflect.TypeOf(int(0)), func(_ *Registry, v any) (any, error) {
		return fromInt64(int64(v.(int))), nil
	})

	r.Register(reflect.TypeOf(int8(0)), func(_ *Registry, v any) (any, error) {
		return fromInt64(int64(v.(int8))), nil
	})

	r.Register(reflect.TypeOf(int16(0)), func(_ *Registry, v any) (any, error) {
		return fromInt64(int64(v.(int16))), nil
	})

	r.Register(reflect.TypeOf(uint(0)), func(_ *Registry, v any) (any, error) {
		return fromUint64(uint64(v.(uint)))
	})

	r.Register(reflect.TypeOf(uint8(0)), func(_ *Registry, v any) (any, error) {
		return fromUint64(uint64(v.(uint8)))
	})

	r.Register(reflect.TypeOf(uint16(0)), func(_ *Registry, v any) (any, error) {
		return fromUint64(uint64(v.(uint16)))
	})

	r.Register(reflect.TypeOf(uint32(0)), func(_ *Registry, v any) (any, error) {
		return fromUint64(uint64(v.(uint32)))
	})

	r.Register(reflect.TypeOf(uint64(0)), func(_ *Registry, v any) (any, error) {
		return fromUint64(v.(uint64))
	})

	r.Register(reflect.TypeOf([]Pair(nil)), func(r *Registry, v any) (any, error) {
		fields := v.([]Pair)
		pairs := make([]any, 0, len(fields)*2)
		for _, f := range fields {
			pairs = append(pairs, f.Key, f.Value)
		}

		return newDocument(r, pairs)
	})

	return r
}

// Register sets the transformer for the given exact type, replacing any existing one.
//
// It must not be called concurrently with Resolve.
func (r *Registry) Register(t reflect.Type, fn TransformerFunc) {
	if t == nil {
		panic("types.Registry.Register: nil type")
	}

	if fn == nil {
		panic("types.Registry.Register: nil transformer")
	}

	r.rw.Lock()
	defer r.rw.Unlock()

	r.exact[t] = fn
}

// Resolve converts the given value to a BSON value.
//
// It returns *UnsupportedTypeError if no conversion is known for the value's type.
func (r *Registry) Resolve(v any) (any, error) {
	if v == nil {
		return Null, nil
	}

	t := reflect.TypeOf(v)

	r.rw.RLock()
	fn := r.exact[t]
	r.rw.RUnlock()

	if fn != nil {
		return fn(r, v)
	}

	if err := validateValue(v); err == nil {
		return v, nil
	}

	switch t.Kind() {
	case reflect.Ptr:
		rv := reflect.ValueOf(v)
		if rv.IsNil() {
			return Null, nil
		}

		return r.Resolve(rv.Elem().Interface())

	case reflect.Slice, reflect.Array:
		rv := reflect.ValueOf(v)
		s := make([]any, rv.Len())

		for i := range s {
			el, err := r.Resolve(rv.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("types.Resolve: index %d: %w", i, err)
			}

			s[i] = el
		}

		return &Array{s: s}, nil

	default:
		return nil, &UnsupportedTypeError{Type: t}
	}
}

// fromInt64 returns an int32 value if it fits, an int64 value otherwise.
func fromInt64(v int64) any {
	if v >= math.MinInt32 && v <= math.MaxInt32 {
		return int32(v)
	}

	return v
}

// fromUint64 returns the narrowest signed integer value that can hold v.
func fromUint64(v uint64) (any, error) {
	if v > math.MaxInt64 {
		return nil, &UnsupportedTypeError{
			Type:   reflect.TypeOf(v),
			Reason: "value overflows int64",
		}
	}

	return fromInt64(int64(v)), nil
}
