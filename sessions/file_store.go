package sessions

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

// FileStore persists the session as a single JSON file so it survives process
// restarts. Writes go to a temporary file that is renamed over the target,
// which makes every save all-or-nothing.
type FileStore struct {
	path string
	lock sync.RWMutex
}

var _ Store = (*FileStore)(nil)

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (fs *FileStore) Save(_ context.Context, session *Session) error {
	data, err := Marshal(session)
	if err != nil {
		return err
	}

	fs.lock.Lock()
	defer fs.lock.Unlock()

	dir := filepath.Dir(fs.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrap(err, "FileStore.Save mkdir")
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(fs.path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "FileStore.Save create temp")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "FileStore.Save write")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "FileStore.Save sync")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "FileStore.Save close")
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return errors.Wrap(err, "FileStore.Save chmod")
	}
	if err := os.Rename(tmpName, fs.path); err != nil {
		return errors.Wrap(err, "FileStore.Save rename")
	}
	return nil
}

func (fs *FileStore) Load(_ context.Context) (*Session, error) {
	fs.lock.RLock()
	defer fs.lock.RUnlock()

	data, err := os.ReadFile(fs.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "FileStore.Load read")
	}
	return Unmarshal(data)
}

func (fs *FileStore) Clear(_ context.Context) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	if err := os.Remove(fs.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrap(err, "FileStore.Clear remove")
	}
	return nil
}
