package database

import (
	"time"
)

type Summary struct {
	ID        int64
	URL       string  // Canonicalized absolute http/https URL
	Summary   *string // NULL until the background summarizer populates it
	CreatedAt time.Time
}
