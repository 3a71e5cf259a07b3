// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package yamlx

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type object struct {
	Model string    `yaml:"model"`
	Scale []float32 `yaml:"scale"`
}

func TestRead(t *testing.T) {
	var o object
	require.NoError(t, Read(&o, strings.NewReader("model: ship.obj\nscale: [1, 2, 3]\n")))
	assert.Equal(t, "ship.obj", o.Model)
	assert.Equal(t, []float32{1, 2, 3}, o.Scale)

	assert.Error(t, Read(&o, strings.NewReader("modle: typo.obj\n")))
}

func TestOpen(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "o.yaml")
	require.NoError(t, os.WriteFile(fn, []byte("model: sphere.obj\nscale: [0.2, 0.2, 0.2]\n"), 0o644))
	var out object
	require.NoError(t, Open(&out, fn))
	assert.Equal(t, object{Model: "sphere.obj", Scale: []float32{0.2, 0.2, 0.2}}, out)

	assert.Error(t, Open(&out, filepath.Join(t.TempDir(), "missing.yaml")))
}
