package types

import "time"

// Document is tenant-owned metadata for a binary object held in external
// object storage. Uploading is true from creation until the client confirms
// the upload succeeded; the transition is one-way.
type Document struct {
	ID        string    `json:"docId"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"`
	OwnerID   string    `json:"ownerId"`
	Uploading bool      `json:"uploading"`
}
