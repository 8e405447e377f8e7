package domain

import "time"

// Document is course material uploaded by a teacher. The bytes live in
// object storage under StorageKey; only metadata is kept here.
type Document struct {
	ID          string
	OwnerID     string
	Title       string
	StorageKey  string
	ContentType string
	CreatedAt   time.Time
}
