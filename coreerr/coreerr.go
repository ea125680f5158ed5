// Copyright 2024 Dolthub, Inc.
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

// Package coreerr declares the error kinds the core surfaces, per spec
// §7. Each kind is a gopkg.in/src-d/go-errors.v1 Kind, mirroring the
// teacher's auth package (auth.ErrNotAuthorized = errors.NewKind(...)).
// The core never formats diagnostics itself; it returns a structured
// *errors.Error and lets the embedder render it (spec §6).
package coreerr

import (
	"gopkg.in/src-d/go-errors.v1"
)

var (
	// Type mismatch.
	ErrTypeMismatch = errors.NewKind("%s expected a %s but received %s")

	// Aggregation.
	ErrUnknownAggregator = errors.NewKind("unknown aggregator %q")

	// Arity violation.
	ErrArityViolation = errors.NewKind("%s expects %d argument(s), got %d")

	// Binding resolution failure.
	ErrBindingResolutionFailure = errors.NewKind("unresolved name %q")

	// Schema mismatch.
	ErrInvalidTimeTravelScanning = errors.NewKind("relation %q is not a valid time-travel scan target: last key column must be Validity")
	ErrNamedFieldNotFound        = errors.NewKind("relation %q has no field named %q")
	ErrStoredRelationConflict    = errors.NewKind("relation %q already exists")
	ErrStoredRelationNotFound    = errors.NewKind("relation %q not found")

	// Runtime value error.
	ErrBadSpreadUnification = errors.NewKind("spread unification on binding %q did not produce a list")
	ErrIndexOutOfBounds     = errors.NewKind("index %d out of bounds for tuple of arity %d")
	ErrBadUUID              = errors.NewKind("%q is not a valid UUID")
	ErrBadTimestamp         = errors.NewKind("%q is not a valid timestamp")
	ErrBadRegex             = errors.NewKind("%q is not a valid regular expression: %s")
	ErrMissingKey           = errors.NewKind("key not found: %s")
	ErrKeyConflict          = errors.NewKind("key already exists: %s")

	// Access violation.
	ErrInsufficientAccessLevel = errors.NewKind("relation %q requires access level %s, got %s")

	// Assertion failure.
	ErrAssertionFailed = errors.NewKind("assertion %s violated: result had %d row(s)")

	// Cancellation.
	ErrProcessKilled = errors.NewKind("process killed")

	// Storage error (opaque, passed through from the storage contract).
	ErrStorage = errors.NewKind("storage error: %s")
)

// Spanned is implemented by errors that carry a source span and
// optional help text, so the embedder can render diagnostics without
// the core doing any formatting (spec §6).
type Spanned interface {
	error
	Span() (start, end int, ok bool)
	Help() string
}

// WithSpan annotates err with a source span and optional help text.
type WithSpan struct {
	Err        error
	Start, End int
	HelpText   string
}

func (w *WithSpan) Error() string { return w.Err.Error() }

func (w *WithSpan) Unwrap() error { return w.Err }

func (w *WithSpan) Span() (start, end int, ok bool) { return w.Start, w.End, true }

func (w *WithSpan) Help() string { return w.HelpText }

// Annotate wraps err with a span, if err is non-nil.
func Annotate(err error, start, end int, help string) error {
	if err == nil {
		return nil
	}
	return &WithSpan{Err: err, Start: start, End: end, HelpText: help}
}
