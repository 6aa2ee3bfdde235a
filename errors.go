// The algorithms in this package were largely adapted from the go-diff
// library, which in turn was derived from the Diff-Match-Patch library. The
// original copyright is retained:
//
// Copyright (c) 2012-2016 The go-diff authors. All rights reserved.
// https://github.com/sergi/go-diff
// See the included LICENSE file for license details.
//
// go-diff is a Go implementation of Google's Diff, Match, and Patch library
// Original library is Copyright (c) 2006 Google Inc.
// http://code.google.com/p/google-diff-match-patch/
package revtext

import "errors"

// ErrInvalidArgument reports an absent input or malformed encoding passed to
// diff, match, patch construction, or a codec.
// Callers should use errors.Is(err, ErrInvalidArgument).
var ErrInvalidArgument = errors.New("revtext: invalid argument")

// ErrRevisionNotFound reports a revision id absent from a SnapshotGraph, or
// no revision satisfying a revisionBefore query.
// Callers should use errors.Is(err, ErrRevisionNotFound).
var ErrRevisionNotFound = errors.New("revtext: revision not found")

// ErrPatchUnapplicable marks a soft, informational condition: callers should
// inspect the per-patch boolean vector returned by PatchEngine.Apply rather
// than treat an unmatched patch as fatal. It is never returned directly by
// Apply, which always returns a nil error for a well-formed patch list.
var ErrPatchUnapplicable = errors.New("revtext: patch did not apply")

// ErrCodecFailure wraps a failure surfaced unchanged from an external Codec.
// Callers should use errors.Is(err, ErrCodecFailure).
var ErrCodecFailure = errors.New("revtext: codec failure")
