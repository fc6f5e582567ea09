package storage

import (
	"context"
	"image"

	"cloth-auth-go/pkg/models"
)

// RecordStore is the persisted record store for descriptor and identity
// records. Lookups of absent identifiers return an empty (nil) result, never
// an error; every other failure is a storage error that aborts the enclosing
// operation.
type RecordStore interface {
	PutFeatures(itemID string, set *models.DescriptorSet) error
	GetFeatures(itemID string) (*models.DescriptorSet, error)
	DeleteFeatures(itemID string) (bool, error)

	PutIdentity(itemID string, identity *models.Identity) error
	GetIdentity(itemID string) (*models.Identity, error)

	// Delete removes all records for an identifier and reports whether any
	// existed.
	Delete(itemID string) (bool, error)

	// ListIDs returns the identifiers of all stored items in sorted order.
	ListIDs() ([]string, error)
}

// ImageSource retrieves a decodable image by reference (a path, URL or blob
// locator depending on the implementation).
type ImageSource interface {
	FetchImage(ctx context.Context, ref string) (image.Image, error)
}
