// Package persist stores the requirement graph in a single JSON document
// on disk. Writes are crash-safe and loads keep a backup of the last
// readable file.
package persist

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/satreq/pkg/types"
)

// BackupSuffix is appended to the data file path to name its backup.
const BackupSuffix = ".bak"

// File is the persistence gateway for one data file.
type File struct {
	path      string
	recentDir string
	logger    *zap.Logger
}

// Option configures a File.
type Option func(*File)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(f *File) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithRecentDir makes every successful save record the data file path in
// the companion record kept in dir.
func WithRecentDir(dir string) Option {
	return func(f *File) { f.recentDir = dir }
}

// NewFile returns a gateway for the document at path. The file need not
// exist yet.
func NewFile(path string, opts ...Option) *File {
	f := &File{path: path, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Path returns the data file path.
func (f *File) Path() string { return f.path }

// BackupPath returns the path of the backup written by Load.
func (f *File) BackupPath() string { return f.path + BackupSuffix }

// Save writes g atomically. On failure the previous file is intact and a
// *types.SaveError is returned. After a successful write the companion
// record is updated; a failure there is logged and does not fail the save.
func (f *File) Save(g *types.Graph) error {
	data, err := encodeGraph(g)
	if err != nil {
		return &types.SaveError{Path: f.path, Err: err}
	}
	if err := writeAtomic(f.path, data); err != nil {
		return &types.SaveError{Path: f.path, Err: err}
	}
	f.logger.Debug("saved data file",
		zap.String("path", f.path),
		zap.Int("projects", len(g.Projects)),
		zap.Int("bytes", len(data)))

	if f.recentDir != "" {
		if err := WriteRecent(f.recentDir, Recent{LastDBPath: f.path}); err != nil {
			f.logger.Warn("updating recent file record failed",
				zap.String("dir", f.recentDir), zap.Error(err))
		}
	}
	return nil
}

// Load reads and decodes the data file. A readable document is first
// copied to the backup path; the copy is best effort and a failure is
// only logged. A document that does not decode never overwrites the
// backup. Failures are returned as *types.LoadError; a missing file
// matches os.ErrNotExist.
func (f *File) Load() (*types.Graph, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, &types.LoadError{Path: f.path, Err: err}
	}
	g, err := decodeGraph(data)
	if err != nil {
		f.logger.Warn("data file does not decode, backup left untouched",
			zap.String("path", f.path), zap.Error(err))
		return nil, &types.LoadError{Path: f.path, Err: fmt.Errorf("decoding: %w", err)}
	}
	if err := writeAtomic(f.BackupPath(), data); err != nil {
		f.logger.Warn("backup failed",
			zap.String("path", f.BackupPath()), zap.Error(err))
	}
	f.logger.Debug("loaded data file",
		zap.String("path", f.path), zap.Int("projects", len(g.Projects)))
	return g, nil
}

// Exists reports whether the data file is present.
func (f *File) Exists() bool {
	_, err := os.Stat(f.path)
	return !errors.Is(err, os.ErrNotExist)
}
