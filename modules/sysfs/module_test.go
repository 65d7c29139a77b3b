package sysfs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSysfsModule_Init(t *testing.T) {
	tests := []struct {
		name        string
		triggers    string
		config      map[string]interface{}
		wantTrigger string
		wantErr     assert.ErrorAssertionFunc
	}{
		{
			name:        "switch to none",
			triggers:    `none timer oneshot [heartbeat]`,
			wantTrigger: "none",
			wantErr:     assert.NoError,
		},
		{
			name:        "already none",
			triggers:    `[none] timer heartbeat`,
			wantTrigger: `[none] timer heartbeat`,
			wantErr:     assert.NoError,
		},
		{
			name:        "custom trigger",
			triggers:    `[none] timer heartbeat`,
			config:      map[string]interface{}{"trigger": "timer"},
			wantTrigger: "timer",
			wantErr:     assert.NoError,
		},
		{
			name:        "keep trigger",
			triggers:    `none [mmc0]`,
			config:      map[string]interface{}{"trigger": ""},
			wantTrigger: `none [mmc0]`,
			wantErr:     assert.NoError,
		},
		{
			name:        "none unavailable",
			triggers:    `[mmc0] timer`,
			wantTrigger: `[mmc0] timer`,
			wantErr:     assert.NoError,
		},
		{
			name:        "unknown trigger",
			triggers:    `[mmc0] timer`,
			config:      map[string]interface{}{"trigger": "heartbeat"},
			wantTrigger: `[mmc0] timer`,
			wantErr:     assert.Error,
		},
		{
			name:    "missing trigger file",
			wantErr: assert.Error,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			if tt.triggers != "" {
				require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "trigger"), []byte(tt.triggers), 0o644))
			}
			config := map[string]interface{}{"path": tmpDir}
			for k, v := range tt.config {
				config[k] = v
			}

			tt.wantErr(t, New().Init(config))
			if tt.triggers != "" {
				got, err := os.ReadFile(filepath.Join(tmpDir, "trigger"))
				require.NoError(t, err)
				assert.Equal(t, tt.wantTrigger, string(got))
			}
		})
	}
}

func TestSysfsModule_Init_NoPath(t *testing.T) {
	assert.Error(t, New().Init(nil))
}

func TestSysfsModule_Write(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "trigger"), []byte("[none]"), 0o644))

	m := New()
	require.NoError(t, m.Init(map[string]interface{}{"path": tmpDir}))

	require.NoError(t, m.Write(true))
	got, err := os.ReadFile(filepath.Join(tmpDir, "brightness"))
	require.NoError(t, err)
	assert.Equal(t, "1", string(got))

	require.NoError(t, m.Write(false))
	got, err = os.ReadFile(filepath.Join(tmpDir, "brightness"))
	require.NoError(t, err)
	assert.Equal(t, "0", string(got))
}
