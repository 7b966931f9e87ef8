package aggregate

import "errors"

var (
	// ErrEmptyStore is returned when the store holds no rows.
	ErrEmptyStore = errors.New("aggregate: empty store")
	// ErrDateOrder is returned when an appended row does not follow the last date.
	ErrDateOrder = errors.New("aggregate: rows must be appended in date order")
	// ErrDateMismatch is returned when a rewrite changes the open row's date.
	ErrDateMismatch = errors.New("aggregate: rewrite must keep the open row's date")
)
