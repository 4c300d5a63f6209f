package channelsvc

import (
	"errors"
	"fmt"

	"github.com/cis1951/lec8-backend/internal/channelstore"
)

var (
	ErrNotFound      = channelstore.ErrNotFound
	ErrAlreadyExists = channelstore.ErrAlreadyExists
	ErrNameRequired  = errors.New("channel name is required")
	ErrPostRequired  = errors.New("post is required")
)

// StoreError wraps an unexpected persistence failure.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *StoreError) Unwrap() error { return e.Err }

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}
