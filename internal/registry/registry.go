// Package registry implements the registration and verification workflows on
// top of the extractor, hashing and similarity cores and the record store.
package registry

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cloth-auth-go/internal/canonical"
	apperrors "cloth-auth-go/internal/errors"
	"cloth-auth-go/internal/extractor"
	"cloth-auth-go/internal/hashing"
	"cloth-auth-go/internal/logger"
	"cloth-auth-go/internal/observer"
	"cloth-auth-go/internal/similarity"
	"cloth-auth-go/internal/storage"
	"cloth-auth-go/pkg/models"
	"cloth-auth-go/pkg/validation"
)

// ItemRegistry defines the registration, verification and record operations
// for textile items.
type ItemRegistry interface {
	// Register extracts a digital identity from the referenced photograph
	// and persists it
	Register(ctx context.Context, imageRef string) (*models.Identity, *models.ExtractionReport, error)

	// Verify scores a new photograph of an item against its stored identity
	Verify(ctx context.Context, itemID, imageRef string) (*models.VerificationResult, error)

	// Get loads a stored identity, returning nil when absent
	Get(itemID string) (*models.Identity, error)

	// List returns the identities of all registered items
	List() ([]*models.Identity, error)

	// Delete removes all records for an item and reports whether any existed
	Delete(itemID string) (bool, error)
}

type itemRegistry struct {
	store     storage.RecordStore
	images    storage.ImageSource
	extractor extractor.FeatureExtractor
	hasher    *hashing.Generator
	validator *validation.DescriptorValidator
	events    observer.Subject
}

// NewItemRegistry wires the registration workflow together.
func NewItemRegistry(
	store storage.RecordStore,
	images storage.ImageSource,
	featureExtractor extractor.FeatureExtractor,
	hasher *hashing.Generator,
	events observer.Subject,
) ItemRegistry {
	return &itemRegistry{
		store:     store,
		images:    images,
		extractor: featureExtractor,
		hasher:    hasher,
		validator: validation.NewDescriptorValidator(featureExtractor.Params().HistogramBins),
		events:    events,
	}
}

// Register runs the registration path: extract, persist the features record,
// then persist the identity record. The two records form a single logical
// unit; if the identity write fails the features record is rolled back, so
// an identity is never visible without its features.
func (r *itemRegistry) Register(ctx context.Context, imageRef string) (*models.Identity, *models.ExtractionReport, error) {
	start := time.Now()
	itemID, err := r.allocateItemID()
	if err != nil {
		return nil, nil, err
	}

	r.notify(ctx, observer.AuthEvent{
		EventType: observer.RegistrationStarted,
		Timestamp: start,
		ItemID:    itemID,
		ImageRef:  imageRef,
	})

	img, err := r.images.FetchImage(ctx, imageRef)
	if err != nil {
		r.notifyFailure(ctx, observer.RegistrationFailed, itemID, imageRef, err)
		return nil, nil, err
	}

	report, err := r.extractor.Extract(img)
	if err != nil {
		r.notifyFailure(ctx, observer.RegistrationFailed, itemID, imageRef, err)
		return nil, nil, err
	}
	r.notifyDegraded(ctx, itemID, report)

	// Features record first; identity only becomes visible once both exist.
	if err := r.store.PutFeatures(itemID, report.Descriptors); err != nil {
		r.notifyFailure(ctx, observer.RegistrationFailed, itemID, imageRef, err)
		return nil, nil, err
	}

	identity := r.buildIdentity(itemID, report.Descriptors, imageRef)
	if err := r.store.PutIdentity(itemID, identity); err != nil {
		if _, rollbackErr := r.store.DeleteFeatures(itemID); rollbackErr != nil {
			logger.WithItem(itemID).WithError(rollbackErr).Error("failed to roll back features record")
		}
		r.notifyFailure(ctx, observer.RegistrationFailed, itemID, imageRef, err)
		return nil, nil, err
	}

	r.notify(ctx, observer.AuthEvent{
		EventType:      observer.RegistrationCompleted,
		Timestamp:      time.Now(),
		ItemID:         itemID,
		ImageRef:       imageRef,
		ProcessingTime: time.Since(start),
		Success:        true,
		Metadata: map[string]interface{}{
			"features_hash": identity.FeaturesHash,
			"degraded":      report.Degraded,
		},
	})
	return identity, report, nil
}

// Verify extracts descriptors from the candidate photograph and scores them
// against the stored reference.
func (r *itemRegistry) Verify(ctx context.Context, itemID, imageRef string) (*models.VerificationResult, error) {
	start := time.Now()

	identity, err := r.store.GetIdentity(itemID)
	if err != nil {
		return nil, err
	}
	if identity == nil {
		return nil, apperrors.NewNotFoundError("item not found: "+itemID, nil)
	}
	if identity.AlgorithmVersion != extractor.AlgorithmVersion {
		return nil, apperrors.NewValidationError(fmt.Sprintf(
			"item %s was registered under algorithm version %s, this build runs %s",
			itemID, identity.AlgorithmVersion, extractor.AlgorithmVersion), nil)
	}

	reference, err := r.store.GetFeatures(itemID)
	if err != nil {
		return nil, err
	}
	if reference == nil {
		// Identity without features means the registration never completed.
		return nil, apperrors.NewStorageError("features record missing for item "+itemID, nil)
	}
	if issues := r.validator.Validate(reference); len(issues) > 0 {
		return nil, apperrors.NewStorageError(fmt.Sprintf("stored features for item %s are invalid: %s",
			itemID, strings.Join(r.validator.ConvertIssuesToMessages(issues), "; ")), nil)
	}

	// Re-hashing the loaded record must reproduce the registered hash;
	// anything else means the record was altered after registration.
	precision := r.extractor.Params().Precision
	if rehash := r.hasher.Hash(canonical.Canonicalize(reference, precision)); rehash != identity.FeaturesHash {
		return nil, apperrors.NewStorageError("stored features for item "+itemID+" do not match their registered hash", nil)
	}

	img, err := r.images.FetchImage(ctx, imageRef)
	if err != nil {
		r.notifyFailure(ctx, observer.VerificationFailed, itemID, imageRef, err)
		return nil, err
	}
	report, err := r.extractor.Extract(img)
	if err != nil {
		r.notifyFailure(ctx, observer.VerificationFailed, itemID, imageRef, err)
		return nil, err
	}
	r.notifyDegraded(ctx, itemID, report)

	result, err := similarity.Compare(reference, report.Descriptors, r.extractor.Params())
	if err != nil {
		r.notifyFailure(ctx, observer.VerificationFailed, itemID, imageRef, err)
		return nil, err
	}
	result.ItemID = itemID

	r.notify(ctx, observer.AuthEvent{
		EventType:      observer.VerificationCompleted,
		Timestamp:      time.Now(),
		ItemID:         itemID,
		ImageRef:       imageRef,
		ProcessingTime: time.Since(start),
		Success:        true,
		Metadata: map[string]interface{}{
			"authentic":        result.Authentic,
			"total_similarity": result.TotalSimilarity,
		},
	})
	return result, nil
}

// Get loads a stored identity, returning nil when absent.
func (r *itemRegistry) Get(itemID string) (*models.Identity, error) {
	return r.store.GetIdentity(itemID)
}

// List returns the identities of all registered items.
func (r *itemRegistry) List() ([]*models.Identity, error) {
	ids, err := r.store.ListIDs()
	if err != nil {
		return nil, err
	}
	identities := make([]*models.Identity, 0, len(ids))
	for _, id := range ids {
		identity, err := r.store.GetIdentity(id)
		if err != nil {
			return nil, err
		}
		if identity != nil {
			identities = append(identities, identity)
		}
	}
	return identities, nil
}

// Delete removes all records for an item and reports whether any existed.
func (r *itemRegistry) Delete(itemID string) (bool, error) {
	return r.store.Delete(itemID)
}

// buildIdentity computes the three hashes. The timestamp is hashed
// separately and bound to the features hash via the combined hash, so the
// feature hash itself stays reproducible from image bytes alone.
func (r *itemRegistry) buildIdentity(itemID string, set *models.DescriptorSet, imageRef string) *models.Identity {
	now := time.Now().UTC()
	featuresHash := r.hasher.Hash(canonical.Canonicalize(set, r.extractor.Params().Precision))
	timestampHash := r.hasher.HashString(strconv.FormatInt(now.UnixMilli(), 10))

	return &models.Identity{
		ItemID:           itemID,
		FeaturesHash:     featuresHash,
		TimestampHash:    timestampHash,
		CombinedHash:     r.hasher.CombinedHash(featuresHash, timestampHash),
		AlgorithmVersion: set.AlgorithmVersion,
		CreationTime:     now,
		ImageRef:         imageRef,
	}
}

func (r *itemRegistry) notify(ctx context.Context, event observer.AuthEvent) {
	if r.events != nil {
		r.events.NotifyObservers(ctx, event)
	}
}

func (r *itemRegistry) notifyFailure(ctx context.Context, eventType observer.EventType, itemID, imageRef string, err error) {
	r.notify(ctx, observer.AuthEvent{
		EventType:    eventType,
		Timestamp:    time.Now(),
		ItemID:       itemID,
		ImageRef:     imageRef,
		ErrorMessage: err.Error(),
	})
}

func (r *itemRegistry) notifyDegraded(ctx context.Context, itemID string, report *models.ExtractionReport) {
	if len(report.Degraded) == 0 {
		return
	}
	r.notify(ctx, observer.AuthEvent{
		EventType: observer.ExtractionDegraded,
		Timestamp: time.Now(),
		ItemID:    itemID,
		Metadata:  map[string]interface{}{"categories": report.Degraded},
	})
}

// allocateItemID draws random IDs until one is unused. Reusing an existing
// ID would overwrite another item's records, so a collision is regenerated
// rather than written over.
func (r *itemRegistry) allocateItemID() (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		itemID := newItemID()
		existing, err := r.store.GetIdentity(itemID)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return itemID, nil
		}
		logger.WithItem(itemID).Warn("item id collision, regenerating")
	}
	return "", apperrors.NewInternalError("could not allocate an unused item id", nil)
}

// newItemID generates a short random identifier in the style of the
// registration tags printed on care labels.
func newItemID() string {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return strings.ToUpper(hex.EncodeToString(b[:]))
}
