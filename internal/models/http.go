// Package models defines the request and response payloads of the JSON API.
package models

import "time"

// CreateRequest asks for a short link. Length is optional; zero means the
// configured default.
type CreateRequest struct {
	// OriginalURL is the destination to shorten. A missing http(s) scheme
	// is tolerated and defaults to https.
	OriginalURL string `json:"originalUrl"`

	// Length is the desired identifier length (4-20).
	Length int `json:"length,omitempty"`
}

// CreateResponse describes the persisted short link.
type CreateResponse struct {
	// Result is the absolute short URL.
	Result string `json:"result"`

	// ShortID is the identifier part of the short URL.
	ShortID string `json:"shortId"`

	// OriginalURL is the normalized destination.
	OriginalURL string `json:"originalUrl"`

	// Length is the identifier length the link was created with.
	Length int `json:"length"`

	// CreatedAt is when the link was first allocated.
	CreatedAt time.Time `json:"createdAt"`
}
