// Copyright (c) 2026 Stockroom. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package uuid_test

import (
	"testing"

	googleuuid "github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/stockroom/pkg/uuid"
)

func TestNew_IsVersion7(t *testing.T) {
	parsed, err := googleuuid.Parse(uuid.New())
	require.NoError(t, err)
	assert.Equal(t, googleuuid.Version(7), parsed.Version())
}

func TestNew_Unique(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for range 1000 {
		id := uuid.New()
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

func TestValid(t *testing.T) {
	assert.True(t, uuid.Valid(uuid.New()))
	assert.True(t, uuid.Valid("0190b6d2-7c4e-7a1b-9c3d-4e5f60718293"))
	assert.False(t, uuid.Valid(""))
	assert.False(t, uuid.Valid("not-a-uuid"))
	assert.False(t, uuid.Valid("0190B6D2-7C4E-7A1B-9C3D-4E5F60718293"))
}
