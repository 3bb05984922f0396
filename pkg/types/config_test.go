package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "empty backend returns ErrBackendEmpty",
			config:  Config{Backend: "", DataDir: "/tmp/data"},
			wantErr: ErrBackendEmpty,
		},
		{
			name:    "unknown backend returns ErrBackendUnknown",
			config:  Config{Backend: "postgres", DataDir: "/tmp/data"},
			wantErr: ErrBackendUnknown,
		},
		{
			name:   "valid sqlite config",
			config: Config{Backend: "sqlite", DataDir: "/tmp/data"},
		},
		{
			name:   "sqlite with empty DataDir is valid at config level",
			config: Config{Backend: "sqlite"},
		},
		{
			name:    "unknown sync strategy",
			config:  Config{Backend: "sqlite", SQLiteConfig: SQLiteConfig{SyncStrategy: "eventually"}},
			wantErr: ErrSyncStrategyUnknown,
		},
		{
			name:    "negative batch size",
			config:  Config{Backend: "sqlite", SQLiteConfig: SQLiteConfig{SyncStrategy: SyncBatch, BatchSize: -1}},
			wantErr: ErrBatchSizeInvalid,
		},
		{
			name:    "negative batch interval",
			config:  Config{Backend: "sqlite", SQLiteConfig: SQLiteConfig{SyncStrategy: SyncBatch, BatchInterval: -3}},
			wantErr: ErrBatchIntervalInvalid,
		},
		{
			name:   "batch with defaults",
			config: Config{Backend: "sqlite", SQLiteConfig: SQLiteConfig{SyncStrategy: SyncBatch}},
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
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSQLiteConfigDefaults(t *testing.T) {
	var zero SQLiteConfig
	assert.Equal(t, SyncImmediate, zero.GetSyncStrategy())
	assert.Equal(t, DefaultBatchSize, zero.GetBatchSize())
	assert.Equal(t, DefaultBatchInterval, zero.GetBatchInterval())

	set := SQLiteConfig{SyncStrategy: SyncOnClose, BatchSize: 3, BatchInterval: 60}
	assert.Equal(t, SyncOnClose, set.GetSyncStrategy())
	assert.Equal(t, 3, set.GetBatchSize())
	assert.Equal(t, 60, set.GetBatchInterval())
}
