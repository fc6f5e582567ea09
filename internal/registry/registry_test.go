package registry

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	apperrors "cloth-auth-go/internal/errors"
	"cloth-auth-go/internal/extractor"
	"cloth-auth-go/internal/hashing"
	"cloth-auth-go/internal/storage"
	"cloth-auth-go/pkg/models"
)

var hexPattern = regexp.MustCompile(`^[0-9A-F]{8}$`)

func writeTestPhoto(t *testing.T, dir, name string) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8((x*5 + y*3) % 256),
				G: uint8((x * y) % 256),
				B: uint8((x + 3*y) % 256),
				A: 255,
			})
		}
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create test photo: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode test photo: %v", err)
	}
	return path
}

func newTestRegistry(t *testing.T) (ItemRegistry, *storage.LocalStore) {
	t.Helper()

	store, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	fe, err := extractor.NewFeatureExtractor(extractor.DefaultParams())
	if err != nil {
		t.Fatalf("NewFeatureExtractor: %v", err)
	}
	t.Cleanup(func() { fe.Close() })
	hasher, err := hashing.NewGenerator("sha-256")
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}

	return NewItemRegistry(store, storage.NewLocalImageSource(), fe, hasher, nil), store
}

func TestRegisterCreatesIdentity(t *testing.T) {
	reg, store := newTestRegistry(t)
	photo := writeTestPhoto(t, t.TempDir(), "item.png")

	identity, report, err := reg.Register(context.Background(), photo)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if !hexPattern.MatchString(identity.ItemID) {
		t.Errorf("item id %q is not an 8-character uppercase hex tag", identity.ItemID)
	}
	if len(identity.FeaturesHash) != 64 || len(identity.TimestampHash) != 64 || len(identity.CombinedHash) != 64 {
		t.Error("all identity hashes must be 64 hex characters")
	}
	if identity.AlgorithmVersion != extractor.AlgorithmVersion {
		t.Errorf("algorithm version = %q, want %q", identity.AlgorithmVersion, extractor.AlgorithmVersion)
	}
	if identity.CreationTime.IsZero() {
		t.Error("creation time not recorded")
	}
	if len(report.Degraded) != 0 {
		t.Errorf("unexpected degraded categories: %v", report.Degraded)
	}

	// Both records must exist after a successful registration.
	if features, _ := store.GetFeatures(identity.ItemID); features == nil {
		t.Error("features record missing after registration")
	}
	if stored, _ := store.GetIdentity(identity.ItemID); stored == nil {
		t.Error("identity record missing after registration")
	}
}

func TestRegisterThenVerifySamePhoto(t *testing.T) {
	reg, _ := newTestRegistry(t)
	photo := writeTestPhoto(t, t.TempDir(), "item.png")

	identity, _, err := reg.Register(context.Background(), photo)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	result, err := reg.Verify(context.Background(), identity.ItemID, photo)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if result.TotalSimilarity != 1.0 {
		t.Errorf("same photo total similarity = %v, want exactly 1.0", result.TotalSimilarity)
	}
	if !result.Authentic {
		t.Error("same photo must verify as authentic")
	}
	if result.ItemID != identity.ItemID {
		t.Errorf("result item id = %q, want %q", result.ItemID, identity.ItemID)
	}
}

func TestVerifyUnknownItem(t *testing.T) {
	reg, _ := newTestRegistry(t)
	photo := writeTestPhoto(t, t.TempDir(), "item.png")

	_, err := reg.Verify(context.Background(), "DEADBEEF", photo)
	if err == nil {
		t.Fatal("expected an error for an unknown item")
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestVerifyRejectsTamperedFeatures(t *testing.T) {
	reg, store := newTestRegistry(t)
	photo := writeTestPhoto(t, t.TempDir(), "item.png")

	identity, _, err := reg.Register(context.Background(), photo)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	features, err := store.GetFeatures(identity.ItemID)
	if err != nil {
		t.Fatalf("GetFeatures: %v", err)
	}
	features.FabricTexture["contrast"] += 0.5
	if err := store.PutFeatures(identity.ItemID, features); err != nil {
		t.Fatalf("PutFeatures: %v", err)
	}

	_, err = reg.Verify(context.Background(), identity.ItemID, photo)
	if err == nil {
		t.Fatal("expected an error for a tampered features record")
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeStorage) {
		t.Errorf("expected storage error, got %v", err)
	}
}

func TestVerifyRejectsVersionMismatch(t *testing.T) {
	reg, store := newTestRegistry(t)
	photo := writeTestPhoto(t, t.TempDir(), "item.png")

	identity, _, err := reg.Register(context.Background(), photo)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	identity.AlgorithmVersion = "v0"
	if err := store.PutIdentity(identity.ItemID, identity); err != nil {
		t.Fatalf("PutIdentity: %v", err)
	}

	_, err = reg.Verify(context.Background(), identity.ItemID, photo)
	if err == nil {
		t.Fatal("expected an error for an algorithm version mismatch")
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestListAndDelete(t *testing.T) {
	reg, _ := newTestRegistry(t)
	dir := t.TempDir()

	var ids []string
	for i := 0; i < 3; i++ {
		photo := writeTestPhoto(t, dir, fmt.Sprintf("item%d.png", i))
		identity, _, err := reg.Register(context.Background(), photo)
		if err != nil {
			t.Fatalf("Register %d: %v", i, err)
		}
		ids = append(ids, identity.ItemID)
	}

	identities, err := reg.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(identities) != 3 {
		t.Fatalf("listed %d identities, want 3", len(identities))
	}

	existed, err := reg.Delete(ids[0])
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !existed {
		t.Error("Delete must report the item existed")
	}

	identity, err := reg.Get(ids[0])
	if err != nil {
		t.Errorf("Get after delete must not error, got %v", err)
	}
	if identity != nil {
		t.Error("Get after delete must return nil")
	}

	identities, err = reg.List()
	if err != nil {
		t.Fatalf("List after delete: %v", err)
	}
	if len(identities) != 2 {
		t.Errorf("listed %d identities after delete, want 2", len(identities))
	}
}

// collidingIDStore reports an existing identity for the first `collisions`
// lookups, simulating freshly drawn item ids that are already taken.
type collidingIDStore struct {
	*storage.LocalStore
	collisions int
	lookups    int
}

func (c *collidingIDStore) GetIdentity(itemID string) (*models.Identity, error) {
	c.lookups++
	if c.lookups <= c.collisions {
		return &models.Identity{ItemID: itemID}, nil
	}
	return c.LocalStore.GetIdentity(itemID)
}

func newRegistryWithStore(t *testing.T, store storage.RecordStore) ItemRegistry {
	t.Helper()
	fe, err := extractor.NewFeatureExtractor(extractor.DefaultParams())
	if err != nil {
		t.Fatalf("NewFeatureExtractor: %v", err)
	}
	t.Cleanup(func() { fe.Close() })
	hasher, err := hashing.NewGenerator("sha-256")
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	return NewItemRegistry(store, storage.NewLocalImageSource(), fe, hasher, nil)
}

func TestRegisterRegeneratesCollidingItemID(t *testing.T) {
	local, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	store := &collidingIDStore{LocalStore: local, collisions: 2}
	reg := newRegistryWithStore(t, store)
	photo := writeTestPhoto(t, t.TempDir(), "item.png")

	identity, _, err := reg.Register(context.Background(), photo)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if store.lookups < 3 {
		t.Errorf("expected at least 3 id lookups after 2 collisions, got %d", store.lookups)
	}
	if stored, _ := local.GetIdentity(identity.ItemID); stored == nil {
		t.Error("identity record missing after collision retries")
	}
}

func TestRegisterFailsWhenIDSpaceLooksExhausted(t *testing.T) {
	dataDir := t.TempDir()
	local, err := storage.NewLocalStore(dataDir)
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	store := &collidingIDStore{LocalStore: local, collisions: 100}
	reg := newRegistryWithStore(t, store)
	photo := writeTestPhoto(t, t.TempDir(), "item.png")

	_, _, err = reg.Register(context.Background(), photo)
	if err == nil {
		t.Fatal("expected registration to fail when every drawn id collides")
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeInternal) {
		t.Errorf("expected internal error, got %v", err)
	}

	// Nothing may be written over the colliding items' records.
	entries, err := os.ReadDir(filepath.Join(dataDir, "features"))
	if err != nil {
		t.Fatalf("read features dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no features records, found %d entries", len(entries))
	}
}

// failingIdentityStore simulates an identity write failure to exercise the
// registration rollback.
type failingIdentityStore struct {
	*storage.LocalStore
}

func (f *failingIdentityStore) PutIdentity(itemID string, identity *models.Identity) error {
	return apperrors.NewStorageError("simulated identity write failure", nil)
}

func TestRegisterRollsBackOnIdentityFailure(t *testing.T) {
	dataDir := t.TempDir()
	store, err := storage.NewLocalStore(dataDir)
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	fe, err := extractor.NewFeatureExtractor(extractor.DefaultParams())
	if err != nil {
		t.Fatalf("NewFeatureExtractor: %v", err)
	}
	defer fe.Close()
	hasher, err := hashing.NewGenerator("sha-256")
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}

	reg := NewItemRegistry(&failingIdentityStore{store}, storage.NewLocalImageSource(), fe, hasher, nil)
	photo := writeTestPhoto(t, t.TempDir(), "item.png")

	_, _, err = reg.Register(context.Background(), photo)
	if err == nil {
		t.Fatal("expected the simulated identity write failure")
	}

	// No identity record was written and the orphaned features record must
	// have been rolled back.
	ids, err := store.ListIDs()
	if err != nil {
		t.Fatalf("ListIDs: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("expected no registered items, got %v", ids)
	}
	entries, err := os.ReadDir(filepath.Join(dataDir, "features"))
	if err != nil {
		t.Fatalf("read features dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected an empty features directory after rollback, found %d entries", len(entries))
	}
}
