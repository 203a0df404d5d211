package service

import (
	"context"

	"github.com/skrylnikov/cutly/internal/storage"
)

// Storage is the narrow store contract the shortener core depends on.
// Implementations must enforce shortID uniqueness at insert time.
type Storage interface {
	FindByShort(context.Context, string) (*storage.ShortLink, error)
	FindByOriginal(ctx context.Context, original string, ownerID string) (*storage.ShortLink, error)
	Insert(context.Context, storage.ShortLink) (*storage.ShortLink, error)
	InsertClick(context.Context, storage.Click) error
	PingContext(context.Context) error
}

// Identity is the authenticated caller derived from a verified session.
type Identity struct {
	UserID      string
	DisplayName string
}
