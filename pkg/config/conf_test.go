package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig(t *testing.T) {
	dir := t.TempDir()

	c1, err := ReadOrCreate(dir)
	require.NoError(t, err)
	require.NotNil(t, c1)
	assert.Equal(t, ThresholdDefault, c1.Threshold)
	assert.Empty(t, c1.Model)
	assert.FileExists(t, filepath.Join(dir, configFileName))

	c1.Threshold = 0.5
	c1.Port = 9090
	c1.PredictTimeout = 2 * time.Second

	require.NoError(t, Save(dir, c1))

	c2, err := ReadOrCreate(dir)
	require.NoError(t, err)
	assert.Equal(t, c1, c2)
}

func TestReadOrCreate_PartialFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte("threshold: 0.4\n"), fileMode))

	c, err := ReadOrCreate(dir)
	require.NoError(t, err)
	assert.Equal(t, 0.4, c.Threshold)
	assert.Equal(t, PortDefault, c.Port)
	assert.Equal(t, PredictTimeoutDefault, c.PredictTimeout)
}

func TestReadOrCreate_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"threshold above one", "threshold: 1.5\n"},
		{"negative threshold", "threshold: -0.1\n"},
		{"bad port", "port: 0\n"},
		{"bad timeout", "predict_timeout: -1s\n"},
		{"not yaml", "threshold: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte(tt.content), fileMode))
			_, err := ReadOrCreate(dir)
			assert.Error(t, err)
		})
	}
}

func TestReadOrCreate_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "conf")
	c, err := ReadOrCreate(dir)
	require.NoError(t, err)
	assert.NotNil(t, c)
	assert.DirExists(t, dir)
}

func TestRequiredArgs(t *testing.T) {
	_, err := ReadOrCreate("")
	assert.Error(t, err)
	assert.Error(t, Save("", Default("")))
	assert.Error(t, Save(t.TempDir(), nil))
	_, _, err = GetOrCreateHomeDir("")
	assert.Error(t, err)
}

func TestGetOrCreateHomeDir(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	dir, created, err := GetOrCreateHomeDir("attrition")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, ".attrition", filepath.Base(dir))

	_, created, err = GetOrCreateHomeDir(".attrition")
	require.NoError(t, err)
	assert.False(t, created)
}
