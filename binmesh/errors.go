package binmesh

import (
	"fmt"
)

// TruncatedError indicates that the decoder ran out of bytes while
// reading a declared-width field.
type TruncatedError struct {
	// Offset is the byte offset where the stream ended.
	Offset int64
	// Block and Attr locate the field being read.
	Block string
	Attr  string

	Cause error
}

func (err TruncatedError) Error() string {
	if err.Cause == nil {
		return fmt.Sprintf("block %q: attribute %q: truncated input at byte %d", err.Block, err.Attr, err.Offset)
	}
	return fmt.Sprintf("block %q: attribute %q: truncated input at byte %d: %s", err.Block, err.Attr, err.Offset, err.Cause.Error())
}

func (err TruncatedError) Unwrap() error {
	return err.Cause
}

// UnresolvedError indicates a dynamic attribute whose stem was never
// populated by a preceding count attribute in the same block.
type UnresolvedError struct {
	Block string
	Attr  string
	// Stem is the resolved array name the attribute depends on.
	Stem string
}

func (err UnresolvedError) Error() string {
	return fmt.Sprintf("block %q: dynamic attribute %q: no preceding count for %q", err.Block, err.Attr, err.Stem)
}

// ZeroFillWarning reports that the encoder zero-filled an attribute
// whose name matched no recognized pattern. This is documented degraded
// behavior, not a failure; the bytes are part of the declared layout.
type ZeroFillWarning struct {
	Block string
	Attr  string
}

func (err ZeroFillWarning) Error() string {
	return fmt.Sprintf("block %q: attribute %q has no inferable role; zero-filled", err.Block, err.Attr)
}

// TrailingWarning reports bytes left in the stream after the final
// block was decoded.
type TrailingWarning int

func (err TrailingWarning) Error() string {
	return fmt.Sprintf("%d trailing bytes after final block", int(err))
}
