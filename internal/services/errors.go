package services

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by scoped lookups that match nothing. A row that
// exists but belongs to another user is reported the same way.
var ErrNotFound = errors.New("not found")

var (
	ErrInvoiceNotFound = fmt.Errorf("invoice %w", ErrNotFound)
	ErrClientNotFound  = fmt.Errorf("client %w", ErrNotFound)
	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)

	// ErrNoPrimaryContact means the invoice has no client contact to notify.
	ErrNoPrimaryContact = errors.New("no primary contact")
)
