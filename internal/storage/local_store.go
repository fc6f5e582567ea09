package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	apperrors "cloth-auth-go/internal/errors"
	"cloth-auth-go/internal/logger"
	"cloth-auth-go/pkg/models"
)

const (
	featuresSuffix = "_features.json"
	identitySuffix = "_identity.json"
)

// LocalStore keeps descriptor and identity records as JSON files under a
// data directory, one file per record. Descriptor values are already
// rounded at the pinned precision when they reach the store, so a loaded
// record re-hashes to the original digest.
type LocalStore struct {
	featuresDir   string
	identitiesDir string
}

// NewLocalStore initializes the storage directories under dataDir.
func NewLocalStore(dataDir string) (*LocalStore, error) {
	s := &LocalStore{
		featuresDir:   filepath.Join(dataDir, "features"),
		identitiesDir: filepath.Join(dataDir, "identities"),
	}
	for _, dir := range []string{s.featuresDir, s.identitiesDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, apperrors.NewStorageError("failed to initialize storage directory "+dir, err)
		}
	}
	logger.WithField("data_dir", dataDir).Info("Storage directories initialized")
	return s, nil
}

// PutFeatures stores the descriptor record for an item.
func (s *LocalStore) PutFeatures(itemID string, set *models.DescriptorSet) error {
	return s.writeJSON(filepath.Join(s.featuresDir, itemID+featuresSuffix), set)
}

// GetFeatures loads the descriptor record for an item, returning nil when
// absent.
func (s *LocalStore) GetFeatures(itemID string) (*models.DescriptorSet, error) {
	var set models.DescriptorSet
	found, err := s.readJSON(filepath.Join(s.featuresDir, itemID+featuresSuffix), &set)
	if err != nil || !found {
		return nil, err
	}
	return &set, nil
}

// DeleteFeatures removes only the descriptor record, used to roll back a
// registration whose identity record could not be written.
func (s *LocalStore) DeleteFeatures(itemID string) (bool, error) {
	return removeIfExists(filepath.Join(s.featuresDir, itemID+featuresSuffix))
}

// PutIdentity stores the identity record for an item.
func (s *LocalStore) PutIdentity(itemID string, identity *models.Identity) error {
	return s.writeJSON(filepath.Join(s.identitiesDir, itemID+identitySuffix), identity)
}

// GetIdentity loads the identity record for an item, returning nil when
// absent.
func (s *LocalStore) GetIdentity(itemID string) (*models.Identity, error) {
	var identity models.Identity
	found, err := s.readJSON(filepath.Join(s.identitiesDir, itemID+identitySuffix), &identity)
	if err != nil || !found {
		return nil, err
	}
	return &identity, nil
}

// Delete removes all records for an identifier and reports whether any
// existed.
func (s *LocalStore) Delete(itemID string) (bool, error) {
	// Identity first: a crash between the two deletes must never leave an
	// identity visible without its features record.
	identityExisted, err := removeIfExists(filepath.Join(s.identitiesDir, itemID+identitySuffix))
	if err != nil {
		return false, err
	}
	featuresExisted, err := removeIfExists(filepath.Join(s.featuresDir, itemID+featuresSuffix))
	if err != nil {
		return identityExisted, err
	}
	return identityExisted || featuresExisted, nil
}

// ListIDs returns the identifiers of all stored items in sorted order. An
// item is listed only when its identity record exists, so an interrupted
// registration is reported as "did not complete" rather than as a partial
// record.
func (s *LocalStore) ListIDs() ([]string, error) {
	entries, err := os.ReadDir(s.identitiesDir)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to list identity records", err)
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, identitySuffix) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, identitySuffix))
	}
	sort.Strings(ids)
	return ids, nil
}

// writeJSON writes via a temp file and rename so a crash mid-write never
// leaves a truncated record behind.
func (s *LocalStore) writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return apperrors.NewStorageError("failed to encode record "+path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return apperrors.NewStorageError("failed to create temp file for "+path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return apperrors.NewStorageError("failed to write record "+path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return apperrors.NewStorageError("failed to close record "+path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return apperrors.NewStorageError("failed to commit record "+path, err)
	}
	return nil
}

func (s *LocalStore) readJSON(path string, v interface{}) (bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, apperrors.NewStorageError("failed to read record "+path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, apperrors.NewStorageError(fmt.Sprintf("corrupt record %s", path), err)
	}
	return true, nil
}

func removeIfExists(path string) (bool, error) {
	err := os.Remove(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, apperrors.NewStorageError("failed to delete record "+path, err)
	}
	return true, nil
}
