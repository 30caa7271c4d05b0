package types

import (
	"errors"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "empty data file returns ErrInvalidName",
			config:  Config{DataFile: ""},
			wantErr: ErrInvalidName,
		},
		{
			name:    "prefix with dash returns ErrInvalidPrefix",
			config:  Config{DataFile: "reqs.json", IDPrefix: "SYS-"},
			wantErr: ErrInvalidPrefix,
		},
		{
			name:    "prefix starting with digit returns ErrInvalidPrefix",
			config:  Config{DataFile: "reqs.json", IDPrefix: "1REQ"},
			wantErr: ErrInvalidPrefix,
		},
		{
			name:   "empty prefix is valid",
			config: Config{DataFile: "reqs.json"},
		},
		{
			name:   "custom prefix",
			config: Config{DataFile: "reqs.json", IDPrefix: "PL2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error %v, got nil", tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestConfigPrefix(t *testing.T) {
	if got := (Config{}).Prefix(); got != DefaultIDPrefix {
		t.Fatalf("Prefix() = %q, want %q", got, DefaultIDPrefix)
	}
	if got := (Config{IDPrefix: "PAY"}).Prefix(); got != "PAY" {
		t.Fatalf("Prefix() = %q, want PAY", got)
	}
}
