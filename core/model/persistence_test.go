package model

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dummyModel struct {
	Name    string
	Weights []float64
}

func TestSaveAndLoadModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.gob")
	original := dummyModel{Name: "dummy", Weights: []float64{0.1, 0.2}}

	require.NoError(t, SaveModel(original, path))

	var restored dummyModel
	require.NoError(t, LoadModel(&restored, path))
	assert.Equal(t, original, restored)
}

func TestLoadModelMissingFile(t *testing.T) {
	var restored dummyModel
	assert.Error(t, LoadModel(&restored, filepath.Join(t.TempDir(), "nope.gob")))
}

func TestSaveAndLoadModelStream(t *testing.T) {
	original := dummyModel{Name: "stream", Weights: []float64{1, 2, 3}}

	var buf bytes.Buffer
	require.NoError(t, SaveModelToWriter(original, &buf))

	var restored dummyModel
	require.NoError(t, LoadModelFromReader(&restored, &buf))
	assert.Equal(t, original, restored)
}
