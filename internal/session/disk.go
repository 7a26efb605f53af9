package session

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
)

// DirBackend stores documents as files in a single directory. Writes go
// through a temp file and os.Rename, so a crash mid-write leaves the
// previous document intact.
type DirBackend struct {
	dir string
}

// NewDirBackend creates the directory if needed and returns a backend
// over it.
func NewDirBackend(dir string) (*DirBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "session: create directory %s", dir)
	}
	return &DirBackend{dir: dir}, nil
}

// Dir returns the backing directory path.
func (b *DirBackend) Dir() string { return b.dir }

func (b *DirBackend) Save(name string, data []byte) error {
	final := filepath.Join(b.dir, name)
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return eris.Wrapf(err, "session: write %s", name)
	}
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return eris.Wrapf(err, "session: rename %s into place", name)
	}
	return nil
}

func (b *DirBackend) Load(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(b.dir, name))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "session: read %s", name)
	}
	return data, nil
}

func (b *DirBackend) List(prefix string) ([]Info, error) {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		return nil, eris.Wrapf(err, "session: read directory %s", b.dir)
	}

	var infos []Info
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, docSuffix) {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		infos = append(infos, Info{Name: name, Modified: fi.ModTime()})
	}

	// Newest first, so listings show the most recent run on top.
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Modified.After(infos[j].Modified)
	})
	return infos, nil
}

func (b *DirBackend) Remove(name string) error {
	err := os.Remove(filepath.Join(b.dir, name))
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	if err != nil {
		return eris.Wrapf(err, "session: remove %s", name)
	}
	return nil
}
