// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtent(t *testing.T) {
	assert.True(t, Extent{}.IsZero())
	assert.True(t, Extent{Width: 1600}.IsZero())
	assert.False(t, Extent{1600, 900}.IsZero())
	assert.InDelta(t, 16.0/9.0, Extent{1600, 900}.Aspect(), 1e-6)
	assert.Equal(t, float32(1), Extent{0, 900}.Aspect())
	assert.Equal(t, "1600x900", Extent{1600, 900}.String())
}

func TestStatus(t *testing.T) {
	assert.False(t, StatusOK.NeedsRecreate())
	assert.True(t, StatusSuboptimal.NeedsRecreate())
	assert.True(t, StatusOutOfDate.NeedsRecreate())
	assert.Equal(t, "out-of-date", StatusOutOfDate.String())
	assert.Equal(t, "Status(7)", Status(7).String())
}
