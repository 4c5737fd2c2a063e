// Package store persists accepted voucher drafts locally.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/giftvault/voucher-service/internal/model"
)

// ErrDuplicate is returned by Save when a voucher with the same fingerprint
// already exists.
var ErrDuplicate = eris.New("store: duplicate voucher")

// ErrNotFound is returned when a voucher id does not exist.
var ErrNotFound = eris.New("store: voucher not found")

// SavedVoucher is a draft the user accepted, keyed by content fingerprint so
// the same voucher forwarded twice is stored once.
type SavedVoucher struct {
	ID          string      `json:"id"`
	Fingerprint string      `json:"fingerprint"`
	Draft       model.Draft `json:"draft"`
	SourceType  string      `json:"sourceType"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// Filter narrows ListVouchers results.
type Filter struct {
	Store  string
	Source string
	Limit  int
	Offset int
}

// Store persists saved vouchers.
type Store interface {
	Migrate(ctx context.Context) error
	SaveVoucher(ctx context.Context, draft model.Draft, sourceType string) (*SavedVoucher, error)
	GetVoucher(ctx context.Context, id string) (*SavedVoucher, error)
	ListVouchers(ctx context.Context, filter Filter) ([]SavedVoucher, error)
	DeleteVoucher(ctx context.Context, id string) error
	Close() error
}
