package storage

import (
	"reflect"
	"testing"
	"time"

	"cloth-auth-go/pkg/models"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	return store
}

func testDescriptors() *models.DescriptorSet {
	return &models.DescriptorSet{
		FabricTexture: map[string]float64{
			"mean_intensity": 128.1234,
			"std_deviation":  10.5,
			"contrast":       0.45,
			"homogeneity":    0.82,
		},
		ColorHistogram: []float64{0, 0.5, 1},
		Dimensions: map[string]float64{
			"width":        100,
			"height":       200,
			"aspect_ratio": 0.5,
			"area":         20000,
		},
		EdgeFeatures: []float64{0.25, 0.5},
		PatternFeatures: map[string]float64{
			"complexity_score": 5.3117,
			"symmetry_score":   97.2,
		},
		CapturedAt:       time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		AlgorithmVersion: "v1",
	}
}

func testIdentity(itemID string) *models.Identity {
	return &models.Identity{
		ItemID:           itemID,
		FeaturesHash:     "aaaa",
		TimestampHash:    "bbbb",
		CombinedHash:     "cccc",
		AlgorithmVersion: "v1",
		CreationTime:     time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestFeaturesRoundTrip(t *testing.T) {
	store := newTestStore(t)
	want := testDescriptors()

	if err := store.PutFeatures("ITEM1", want); err != nil {
		t.Fatalf("PutFeatures: %v", err)
	}
	got, err := store.GetFeatures("ITEM1")
	if err != nil {
		t.Fatalf("GetFeatures: %v", err)
	}
	if got == nil {
		t.Fatal("stored features not found")
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round-tripped descriptors differ:\n got: %+v\nwant: %+v", got, want)
	}
}

func TestIdentityRoundTrip(t *testing.T) {
	store := newTestStore(t)
	want := testIdentity("ITEM1")

	if err := store.PutIdentity("ITEM1", want); err != nil {
		t.Fatalf("PutIdentity: %v", err)
	}
	got, err := store.GetIdentity("ITEM1")
	if err != nil {
		t.Fatalf("GetIdentity: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round-tripped identity differs:\n got: %+v\nwant: %+v", got, want)
	}
}

func TestGetAbsentRecordsReturnNil(t *testing.T) {
	store := newTestStore(t)

	features, err := store.GetFeatures("NOPE")
	if err != nil {
		t.Errorf("absent features must not error, got %v", err)
	}
	if features != nil {
		t.Error("absent features must be nil")
	}

	identity, err := store.GetIdentity("NOPE")
	if err != nil {
		t.Errorf("absent identity must not error, got %v", err)
	}
	if identity != nil {
		t.Error("absent identity must be nil")
	}
}

func TestDeleteThenLoad(t *testing.T) {
	store := newTestStore(t)
	if err := store.PutFeatures("ITEM1", testDescriptors()); err != nil {
		t.Fatalf("PutFeatures: %v", err)
	}
	if err := store.PutIdentity("ITEM1", testIdentity("ITEM1")); err != nil {
		t.Fatalf("PutIdentity: %v", err)
	}

	existed, err := store.Delete("ITEM1")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !existed {
		t.Error("Delete must report the records existed")
	}

	// Loading after deletion is an empty result, not an error.
	features, err := store.GetFeatures("ITEM1")
	if err != nil || features != nil {
		t.Errorf("GetFeatures after delete = (%v, %v), want (nil, nil)", features, err)
	}
	identity, err := store.GetIdentity("ITEM1")
	if err != nil || identity != nil {
		t.Errorf("GetIdentity after delete = (%v, %v), want (nil, nil)", identity, err)
	}

	existed, err = store.Delete("ITEM1")
	if err != nil {
		t.Fatalf("second Delete: %v", err)
	}
	if existed {
		t.Error("second Delete must report nothing existed")
	}
}

func TestDeleteFeaturesOnly(t *testing.T) {
	store := newTestStore(t)
	if err := store.PutFeatures("ITEM1", testDescriptors()); err != nil {
		t.Fatalf("PutFeatures: %v", err)
	}

	existed, err := store.DeleteFeatures("ITEM1")
	if err != nil {
		t.Fatalf("DeleteFeatures: %v", err)
	}
	if !existed {
		t.Error("DeleteFeatures must report the record existed")
	}
	features, err := store.GetFeatures("ITEM1")
	if err != nil || features != nil {
		t.Errorf("GetFeatures after rollback = (%v, %v), want (nil, nil)", features, err)
	}
}

func TestListIDs(t *testing.T) {
	store := newTestStore(t)

	ids, err := store.ListIDs()
	if err != nil {
		t.Fatalf("ListIDs on empty store: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("empty store listed %v", ids)
	}

	for _, id := range []string{"B2", "A1", "C3"} {
		if err := store.PutIdentity(id, testIdentity(id)); err != nil {
			t.Fatalf("PutIdentity(%s): %v", id, err)
		}
	}
	// A features record without an identity is an incomplete registration
	// and must not be listed.
	if err := store.PutFeatures("ORPHAN", testDescriptors()); err != nil {
		t.Fatalf("PutFeatures: %v", err)
	}

	ids, err = store.ListIDs()
	if err != nil {
		t.Fatalf("ListIDs: %v", err)
	}
	want := []string{"A1", "B2", "C3"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("ListIDs = %v, want %v", ids, want)
	}
}

func TestPutOverwritesExistingRecord(t *testing.T) {
	store := newTestStore(t)
	if err := store.PutFeatures("ITEM1", testDescriptors()); err != nil {
		t.Fatalf("PutFeatures: %v", err)
	}

	updated := testDescriptors()
	updated.FabricTexture["contrast"] = 0.99
	if err := store.PutFeatures("ITEM1", updated); err != nil {
		t.Fatalf("PutFeatures overwrite: %v", err)
	}

	got, err := store.GetFeatures("ITEM1")
	if err != nil {
		t.Fatalf("GetFeatures: %v", err)
	}
	if got.FabricTexture["contrast"] != 0.99 {
		t.Errorf("overwrite not applied, contrast = %v", got.FabricTexture["contrast"])
	}
}
