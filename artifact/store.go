package artifact

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"studentscore/db"
)

// StoreSource reads artifacts from a SQLite artifact store.
type StoreSource struct {
	Path string
}

func (s StoreSource) Read(ctx context.Context, name Name) ([]byte, error) {
	store, err := db.Open(s.Path, true)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	payload, err := store.Get(ctx, string(name))
	if errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("%w: %v", fs.ErrNotExist, err)
	}
	return payload, err
}

func (s StoreSource) Location(name Name) string {
	return s.Path + "#" + string(name)
}

func (s StoreSource) Paths() []string {
	return []string{s.Path}
}

// Publish copies artifacts from src into the store at path after checking
// they load. Nothing is written when the check fails.
func Publish(ctx context.Context, src Source, path string) error {
	if _, err := Load(ctx, src); err != nil {
		return err
	}
	store, err := db.Open(path, false)
	if err != nil {
		return err
	}
	defer store.Close()

	for _, name := range []Name{Model, FeatureColumns} {
		payload, err := src.Read(ctx, name)
		if err != nil {
			return err
		}
		if err := store.Put(ctx, string(name), payload); err != nil {
			return fmt.Errorf("store %s: %w", name, err)
		}
	}
	return nil
}
