package slogutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"", 0},
		{"lots", 0},
		{"-1MB", 0},
		{"512", 512},
		{"512b", 512},
		{" 4kb ", 4 << 10},
		{"10MB", 10 << 20},
		{"2GB", 2 << 30},
		{"0.5MB", 1 << 19},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSize(tt.input))
		})
	}
}

func TestRotatingFile_KeepsBackups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "polylint.log")

	rf, err := OpenRotatingFile(path, 40, 2)
	require.NoError(t, err)

	// Records are 19 bytes; two fit before a rotation.
	for i := 0; i < 8; i++ {
		_, err := fmt.Fprintf(rf, "[info] record %04d\n", i)
		require.NoError(t, err)
	}
	require.NoError(t, rf.Close())
	require.NoError(t, rf.Close(), "second close is a no-op")

	current, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[info] record 0006\n[info] record 0007\n", string(current))

	backup, err := os.ReadFile(path + ".1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(backup), "[info] record 0004\n"))

	_, err = os.Stat(path + ".2")
	assert.NoError(t, err)
	_, err = os.Stat(path + ".3")
	assert.True(t, os.IsNotExist(err), "only two backups are kept")
}

func TestRotatingFile_NoBackups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "polylint.log")

	rf, err := OpenRotatingFile(path, 10, 0)
	require.NoError(t, err)
	_, _ = rf.Write([]byte("first run\n"))
	_, _ = rf.Write([]byte("second\n"))
	require.NoError(t, rf.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second\n", string(data))
	_, err = os.Stat(path + ".1")
	assert.True(t, os.IsNotExist(err))
}

func TestOpenLogFile(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		maxSize  string
		rotating bool
	}{
		{"with rotation", "1MB", true},
		{"without rotation", "", false},
		{"invalid size", "lots", false},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, ".polylint", fmt.Sprintf("run%d.log", i))
			w, err := OpenLogFile(path, tt.maxSize, 3)
			require.NoError(t, err)
			defer w.Close()

			_, isRotating := w.(*RotatingFile)
			assert.Equal(t, tt.rotating, isRotating)

			_, err = w.Write([]byte("line\n"))
			require.NoError(t, err)
			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, "line\n", string(data))
		})
	}
}
