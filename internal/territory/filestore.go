package territory

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/usf-territorio/territorio-backend/internal/legacy"
	"github.com/usf-territorio/territorio-backend/pkg/db/models"
	"github.com/usf-territorio/territorio-backend/pkg/logger"
)

// FileStore is a RecordStore persisted as the legacy dados.json document.
// Each commit rewrites the whole document through a temp file and rename
// before the in-memory state is swapped.
type FileStore struct {
	mem  *MemoryStore
	path string
}

// OpenFileStore loads path, migrating legacy fields and rederiving coverage.
// A missing file starts an empty store. Records that cannot be represented
// are dropped and reported through logg.
func OpenFileStore(ctx context.Context, path string, logg *logger.Logger) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("legacy data path is required")
	}
	if logg == nil {
		logg = logger.Nop()
	}

	conds, agents, err := readDocument(path)
	if err != nil {
		if !errors.Is(err, errSkippedRecords) {
			return nil, err
		}
		logg.Warn(logg.WithField(ctx, "path", path), err.Error())
	}
	for i := range conds {
		applyCoverage(&conds[i])
	}

	mem := NewMemoryStore()
	if err := mem.load(conds, agents); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	fs := &FileStore{mem: mem, path: path}
	mem.beforeCommit = fs.persist
	return fs, nil
}

// Transact implements RecordStore.
func (s *FileStore) Transact(ctx context.Context, fn func(tx Tx) error) error {
	return s.mem.Transact(ctx, fn)
}

// Path returns the backing document path.
func (s *FileStore) Path() string {
	return s.path
}

var errSkippedRecords = errors.New("legacy records skipped")

func readDocument(path string) ([]models.Condominium, []models.Agent, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	doc, err := legacy.Decode(f)
	if err != nil {
		return nil, nil, err
	}
	conds, agents, err := legacy.ToModels(doc)
	if err != nil {
		return conds, agents, fmt.Errorf("%w: %v", errSkippedRecords, err)
	}
	return conds, agents, nil
}

func (s *FileStore) persist(next *memState) error {
	conds, agents := next.sortedRecords()
	doc := legacy.FromModels(conds, agents)

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp document: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if err := legacy.Encode(tmp, doc); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync temp document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp document: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		cleanup()
		return fmt.Errorf("replace document: %w", err)
	}
	return nil
}
