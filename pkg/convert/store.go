package convert

import (
	"errors"
	"fmt"
	"path"

	"github.com/rs/xid"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

func newFs(dir string) (afero.Fs, error) {
	fs := afero.NewOsFs()
	if exists, err := afero.DirExists(fs, dir); err != nil {
		return nil, err
	} else if !exists {
		return nil, errors.New("dir not exists")
	}
	return afero.NewBasePathFs(fs, dir), nil
}

func NewStore(dir string, logger *zap.Logger) (*Store, error) {
	fs, err := newFs(dir)
	if err != nil {
		return nil, fmt.Errorf("create store failed: %w", err)
	}
	return NewStoreFs(fs, logger), nil
}

func NewStoreFs(fs afero.Fs, logger *zap.Logger) *Store {
	return &Store{fs: fs, log: logger}
}

// Store writes conversion output below a single directory.
type Store struct {
	fs  afero.Fs
	log *zap.Logger
}

// Save writes the CSV under its suggested filename and returns that name.
// The file appears complete or not at all.
func (s *Store) Save(r *Result) (string, error) {
	if err := s.write(r.Filename, r.CSV); err != nil {
		return "", fmt.Errorf("save csv failed: %w", err)
	}
	s.log.With(zap.String("file", r.Filename), zap.Int("rows", r.Height)).Debug("csv saved")
	return r.Filename, nil
}

// SavePreview writes the PNG preview next to the CSV.
func (s *Store) SavePreview(name string, r *Result) error {
	if len(r.Preview) == 0 {
		return errors.New("no preview rendered")
	}
	if err := s.write(name, r.Preview); err != nil {
		return fmt.Errorf("save preview failed: %w", err)
	}
	return nil
}

// RealPath resolves name against the store directory when it is on disk.
func (s *Store) RealPath(name string) string {
	if b, ok := s.fs.(*afero.BasePathFs); ok {
		if p, err := b.RealPath(name); err == nil {
			return p
		}
	}
	return name
}

func (s *Store) write(name string, bs []byte) error {
	if dir := path.Dir(name); dir != "." {
		if exists, err := afero.DirExists(s.fs, dir); err != nil {
			return err
		} else if !exists {
			if err2 := s.fs.MkdirAll(dir, 0755); err2 != nil {
				return err2
			}
		}
	}

	tmp := path.Join(path.Dir(name), "."+xid.New().String()+".tmp")
	if err := afero.WriteFile(s.fs, tmp, bs, 0644); err != nil {
		return err
	}

	if err := s.fs.Rename(tmp, name); err != nil {
		_ = s.fs.Remove(tmp)
		return err
	}

	return nil
}
