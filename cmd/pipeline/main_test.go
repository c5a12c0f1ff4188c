package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestRunUsageErrors(t *testing.T) {
	assert.Equal(t, 2, run(nil))
	assert.Equal(t, 2, run([]string{"-nope"}))
}

func TestRunMissingImage(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	assert.Equal(t, 1, run([]string{"-output", out, filepath.Join(t.TempDir(), "missing.jpg")}))

	_, err := os.Stat(out)
	assert.True(t, os.IsNotExist(err))
}

func TestRunBadConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[crop]\nwidth = 0\n"), 0o644))

	assert.Equal(t, 2, run([]string{"-config", cfgPath, "image.jpg"}))
}

func TestRunWritesResults(t *testing.T) {
	dir := t.TempDir()
	src := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(30, 90, 200, 0), 50, 70, gocv.MatTypeCV8UC3)
	defer src.Close()
	imagePath := filepath.Join(dir, "input.jpg")
	require.True(t, gocv.IMWrite(imagePath, src))

	out := filepath.Join(dir, "resultados")
	require.Equal(t, 0, run([]string{"-image", imagePath, "-output", out}))

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Len(t, entries, 10)
}

func TestInitLogger(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, initLogger(true).GetLevel())
	assert.Equal(t, logrus.InfoLevel, initLogger(false).GetLevel())
}
