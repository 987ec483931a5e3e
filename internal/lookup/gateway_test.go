package lookup

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sojus/helpdesk/internal/testkit"
	"github.com/sojus/helpdesk/pkg/util/errorutil"
)

func TestGatewayResolvesLiveRecords(t *testing.T) {
	store := testkit.NewSQLiteStore(t)
	dir := testkit.SeedDirectory(t, store.DirectoryWriter())
	gateway := NewGateway(store.Repositories().Directory)
	ctx := context.Background()

	court, err := gateway.ResolveCourt(ctx, dir.Court.ID)
	require.NoError(t, err)
	assert.Equal(t, dir.Court.Name, court.Name)

	hw, err := gateway.ResolveAsset(ctx, dir.Asset.ID)
	require.NoError(t, err)
	assert.Equal(t, dir.Asset.InventoryTag, hw.InventoryTag)

	user, err := gateway.ResolveUser(ctx, dir.Technician.ID)
	require.NoError(t, err)
	assert.Equal(t, dir.Technician.FullName, user.FullName)
}

func TestGatewayFailsClosed(t *testing.T) {
	store := testkit.NewSQLiteStore(t)
	dir := testkit.SeedDirectory(t, store.DirectoryWriter())
	gateway := NewGateway(store.Repositories().Directory)
	ctx := context.Background()

	cases := []struct {
		name    string
		resolve func() error
		entity  string
	}{
		{"missing court", func() error { _, err := gateway.ResolveCourt(ctx, "404"); return err }, EntityCourt},
		{"inactive court", func() error { _, err := gateway.ResolveCourt(ctx, dir.InactiveCourt.ID); return err }, EntityCourt},
		{"missing asset", func() error { _, err := gateway.ResolveAsset(ctx, "hw-404"); return err }, EntityHardware},
		{"retired asset", func() error { _, err := gateway.ResolveAsset(ctx, dir.RetiredAsset.ID); return err }, EntityHardware},
		{"missing user", func() error { _, err := gateway.ResolveUser(ctx, "u-404"); return err }, EntityUser},
		{"disabled user", func() error { _, err := gateway.ResolveUser(ctx, dir.DisabledTech.ID); return err }, EntityUser},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.resolve()
			require.Error(t, err)
			domainErr := errorutil.ToDomainError(err)
			assert.Equal(t, errorutil.CodeNotFound, domainErr.Code)
			assert.Equal(t, tc.entity, domainErr.Details["entity"])
		})
	}
}
