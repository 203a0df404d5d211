// Package storage defines the persisted records of the shortener and the
// contract errors every storage backend must honor. A backend enforces the
// global uniqueness of a short identifier; everything else is a plain lookup.
package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when no record matches the lookup.
var ErrNotFound = errors.New("record not found")

// ErrShortIDTaken is returned by Insert when the short identifier already
// exists. Allocation treats it the same as a pre-insert collision.
var ErrShortIDTaken = errors.New("short id already taken")

// ShortLink maps a short identifier to its destination URL.
// OwnerID is empty for anonymous links; an empty owner matches only
// other anonymous records, never a real identity.
type ShortLink struct {
	ID        string    `json:"id"`
	Original  string    `json:"original_url"`
	ShortID   string    `json:"short_id"`
	Length    int       `json:"length"`
	OwnerID   string    `json:"owner_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Click is a raw visit event for a short link. Recorded best-effort;
// never read back by this service.
type Click struct {
	ID          string    `json:"id"`
	ShortLinkID string    `json:"short_link_id"`
	IP          string    `json:"ip"`
	UserAgent   string    `json:"user_agent"`
	UserID      string    `json:"user_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
