package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payout/internal/access"
	"payout/pkg/domain"
)

func TestInMemoryRoleStore(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryRoleStore()
	funder := domain.BytesToAddress([]byte{0x01})

	added, err := s.Grant(ctx, access.RoleFunder, funder)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = s.Grant(ctx, access.RoleFunder, funder)
	require.NoError(t, err)
	assert.False(t, added, "second grant is a no-op")

	ok, err := s.Has(ctx, access.RoleFunder, funder)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Has(ctx, access.RoleAdmin, funder)
	require.NoError(t, err)
	assert.False(t, ok, "roles are independent")

	restore := s.Snapshot()
	removed, err := s.Revoke(ctx, access.RoleFunder, funder)
	require.NoError(t, err)
	assert.True(t, removed)

	restore()
	ok, err = s.Has(ctx, access.RoleFunder, funder)
	require.NoError(t, err)
	assert.True(t, ok, "snapshot restore brings the grant back")
}
