package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenOutput_Stdout(t *testing.T) {
	out, err := openOutput("")
	require.NoError(t, err)
	assert.NoError(t, out.Close())
}

func TestOpenOutput_MissingPort(t *testing.T) {
	_, err := openOutput(filepath.Join(t.TempDir(), "no-such-port"))
	assert.Error(t, err)
}

func TestNopCloser(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()

	w := nopCloser{f}
	_, err = w.Write([]byte("Hello World\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	// The underlying file stays open.
	_, err = f.Write([]byte("x"))
	assert.NoError(t, err)
}
