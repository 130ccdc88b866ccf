package stagingstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/arbportal/feedback-portal/modules/feedback/domain/staging"
)

// Staged IDs double as file names, so the shape is locked down before any
// path is built from one.
var stagedIDPattern = regexp.MustCompile(`^id_\d+_ts_\d{8}_\d{6}$`)

const stagedTimestampLayout = "20060102_150405"

var ErrStagedNotFound = errors.New("staged change set not found")

// MalformedFile is a staging-root entry that could not be decoded. Malformed
// files are reported alongside the listing instead of failing it.
type MalformedFile struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Store keeps pending change sets as one JSON file each under the staging
// root, with confirmed ones moved into a processed subdirectory.
type Store struct {
	root      string
	processed string
	logger    *logrus.Logger
}

func NewStore(root, processedDir string, logger *logrus.Logger) (*Store, error) {
	processed := filepath.Join(root, processedDir)
	if err := os.MkdirAll(processed, 0o755); err != nil {
		return nil, errors.Wrap(err, "create staging directories")
	}
	return &Store{root: root, processed: processed, logger: logger}, nil
}

// Stage writes the change set and returns its assigned staged ID. The ID is
// derived from the incidence ID and upload time; when a file for that pair
// already exists the timestamp is advanced until a free slot is found, keeping
// one unresolved file per pair.
func (s *Store) Stage(cs *staging.ChangeSet) (string, error) {
	at := cs.UploadedAt.UTC()
	for attempt := 0; attempt < 60; attempt++ {
		stagedID := fmt.Sprintf("id_%d_ts_%s", cs.IncidenceID, at.Format(stagedTimestampLayout))
		f, err := os.OpenFile(s.pendingPath(stagedID), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			at = at.Add(time.Second)
			continue
		}
		if err != nil {
			return "", errors.Wrap(err, "create staged file")
		}

		cs.StagedID = stagedID
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		if err := enc.Encode(cs); err != nil {
			_ = f.Close()
			_ = os.Remove(s.pendingPath(stagedID))
			return "", errors.Wrap(err, "encode staged change set")
		}
		if err := f.Close(); err != nil {
			return "", errors.Wrap(err, "close staged file")
		}
		return stagedID, nil
	}
	return "", errors.Errorf("no free staged slot for incidence %d", cs.IncidenceID)
}

func (s *Store) Get(stagedID string) (*staging.ChangeSet, error) {
	if err := validateStagedID(stagedID); err != nil {
		return nil, err
	}
	buf, err := os.ReadFile(s.pendingPath(stagedID))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrStagedNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "read staged file")
	}
	var cs staging.ChangeSet
	if err := json.Unmarshal(buf, &cs); err != nil {
		return nil, errors.Wrapf(err, "staged file %s is malformed", stagedID)
	}
	return &cs, nil
}

// List returns pending change sets sorted by upload time, newest first.
// Undecodable files never fail the listing; they come back separately.
func (s *Store) List() ([]*staging.ChangeSet, []MalformedFile, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, nil, errors.Wrap(err, "read staging root")
	}

	var (
		sets      []*staging.ChangeSet
		malformed []MalformedFile
	)
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		stagedID := entry.Name()[:len(entry.Name())-len(".json")]
		if !stagedIDPattern.MatchString(stagedID) {
			malformed = append(malformed, MalformedFile{Name: entry.Name(), Reason: "file name does not match staged ID format"})
			continue
		}
		cs, err := s.Get(stagedID)
		if err != nil {
			s.logger.WithField("file", entry.Name()).WithError(err).Warn("skipping malformed staged file")
			malformed = append(malformed, MalformedFile{Name: entry.Name(), Reason: err.Error()})
			continue
		}
		sets = append(sets, cs)
	}

	sort.Slice(sets, func(i, j int) bool {
		return sets[i].UploadedAt.After(sets[j].UploadedAt)
	})
	return sets, malformed, nil
}

// MarkProcessed moves a confirmed change set out of the pending listing.
func (s *Store) MarkProcessed(stagedID string) error {
	if err := validateStagedID(stagedID); err != nil {
		return err
	}
	err := os.Rename(s.pendingPath(stagedID), filepath.Join(s.processed, stagedID+".json"))
	if errors.Is(err, os.ErrNotExist) {
		return ErrStagedNotFound
	}
	return errors.Wrap(err, "move staged file to processed")
}

// Discard deletes the staged file outright.
func (s *Store) Discard(stagedID string) error {
	if err := validateStagedID(stagedID); err != nil {
		return err
	}
	err := os.Remove(s.pendingPath(stagedID))
	if errors.Is(err, os.ErrNotExist) {
		return ErrStagedNotFound
	}
	return errors.Wrap(err, "remove staged file")
}

func (s *Store) pendingPath(stagedID string) string {
	return filepath.Join(s.root, stagedID+".json")
}

func validateStagedID(stagedID string) error {
	if !stagedIDPattern.MatchString(stagedID) {
		return errors.Errorf("invalid staged ID %q", stagedID)
	}
	return nil
}
