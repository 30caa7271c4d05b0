package types

import "regexp"

// Config holds engine parameters resolved from flags, config.yaml and the
// environment.
type Config struct {
	DataFile  string `json:"data_file" yaml:"data_file"`
	IDPrefix  string `json:"id_prefix" yaml:"id_prefix"`
	RecentDir string `json:"-" yaml:"-"` // Directory of the last-opened record.
}

// DefaultIDPrefix is the prefix used for proposed requirement ids.
const DefaultIDPrefix = "SYS"

var prefixPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*$`)

// Prefix returns IDPrefix, or DefaultIDPrefix when it is empty.
func (c Config) Prefix() string {
	if c.IDPrefix == "" {
		return DefaultIDPrefix
	}
	return c.IDPrefix
}

// Validate checks that the Config is well-formed.
func (c Config) Validate() error {
	if c.DataFile == "" {
		return &ValidationError{Field: "data_file", Reason: ErrInvalidName}
	}
	if c.IDPrefix != "" && !prefixPattern.MatchString(c.IDPrefix) {
		return &ValidationError{Field: "id_prefix", Value: c.IDPrefix, Reason: ErrInvalidPrefix}
	}
	return nil
}
