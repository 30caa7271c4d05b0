package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// RecentFile is the name of the companion record in the config directory.
const RecentFile = "satreq_config.json"

// Recent is the companion record: the data file opened last.
type Recent struct {
	LastDBPath string `json:"last_db_path"`
}

// ReadRecent reads the companion record from dir. A missing record is not
// an error and yields the zero Recent.
func ReadRecent(dir string) (Recent, error) {
	var r Recent
	data, err := os.ReadFile(filepath.Join(dir, RecentFile))
	if errors.Is(err, os.ErrNotExist) {
		return r, nil
	}
	if err != nil {
		return r, fmt.Errorf("reading %s: %w", RecentFile, err)
	}
	if err := json.Unmarshal(data, &r); err != nil {
		return Recent{}, fmt.Errorf("parsing %s: %w", RecentFile, err)
	}
	return r, nil
}

// WriteRecent writes the companion record to dir, creating dir if needed.
func WriteRecent(dir string, r Recent) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	data, err := json.MarshalIndent(r, "", indentUnit)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", RecentFile, err)
	}
	return writeAtomic(filepath.Join(dir, RecentFile), append(data, '\n'))
}
