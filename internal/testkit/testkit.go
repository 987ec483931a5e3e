// Package testkit builds throwaway stores and directory fixtures for tests.
package testkit

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sojus/helpdesk/internal/domain"
	"github.com/sojus/helpdesk/internal/persistence"
	"github.com/sojus/helpdesk/internal/repository"
	"github.com/sojus/helpdesk/internal/repository/sqlite"
)

// NewSQLiteStore opens a migrated SQLite store in a temp dir, closed when the test ends.
func NewSQLiteStore(t testing.TB) *sqlite.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "helpdesk.db")
	db, err := persistence.OpenSQLite(context.Background(), path, zap.NewNop())
	require.NoError(t, err)
	store := sqlite.NewStore(db)
	t.Cleanup(store.Close)
	return store
}

// Directory holds the records written by SeedDirectory.
type Directory struct {
	Court         domain.Court
	InactiveCourt domain.Court
	Asset         domain.Hardware
	SpareAsset    domain.Hardware
	RetiredAsset  domain.Hardware
	Admin         domain.User
	Operator      domain.User
	Technician    domain.User
	Technician2   domain.User
	DisabledTech  domain.User
}

// Actor returns the acting identity of a seeded user.
func Actor(u domain.User) domain.Actor {
	return domain.ActorFromUser(&u)
}

// SeedDirectory writes a small court, hardware and user directory.
func SeedDirectory(t testing.TB, writer repository.DirectoryWriter) Directory {
	t.Helper()
	ctx := context.Background()
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	courtID := "1"

	dir := Directory{
		Court:         domain.Court{ID: courtID, Name: "Juzgado Civil y Comercial Nro 1", Jurisdiction: "Civil", Active: true, CreatedAt: created},
		InactiveCourt: domain.Court{ID: "99", Name: "Juzgado Disuelto", Jurisdiction: "Civil", Active: false, CreatedAt: created},
		Asset:         domain.Hardware{ID: "hw-1", InventoryTag: "INV-001-0001", SerialNumber: "SN-DELL-001", Class: "PC", CourtID: &courtID, CreatedAt: created},
		SpareAsset:    domain.Hardware{ID: "hw-2", InventoryTag: "INV-001-0002", SerialNumber: "SN-HP-002", Class: "PC", CourtID: &courtID, CreatedAt: created},
		RetiredAsset:  domain.Hardware{ID: "hw-9", InventoryTag: "INV-009-0009", Class: "PC", Deleted: true, CreatedAt: created},
		Admin:         domain.User{ID: "u-admin", Username: "admin", FullName: "María García", Role: domain.RoleAdministrator, Active: true, CreatedAt: created},
		Operator:      domain.User{ID: "u-oper", Username: "operador", FullName: "Carlos López", Role: domain.RoleOperator, CourtID: &courtID, Active: true, CreatedAt: created},
		Technician:    domain.User{ID: "u-tech", Username: "tecnico", FullName: "Ana Martínez", Role: domain.RoleTechnician, Active: true, CreatedAt: created},
		Technician2:   domain.User{ID: "u-tech2", Username: "tecnico2", FullName: "Luis Pérez", Role: domain.RoleTechnician, Active: true, CreatedAt: created},
		DisabledTech:  domain.User{ID: "u-tech-off", Username: "tecnico3", FullName: "Jorge Díaz", Role: domain.RoleTechnician, Active: false, CreatedAt: created},
	}

	for _, court := range []*domain.Court{&dir.Court, &dir.InactiveCourt} {
		require.NoError(t, writer.UpsertCourt(ctx, court))
	}
	for _, hw := range []*domain.Hardware{&dir.Asset, &dir.SpareAsset, &dir.RetiredAsset} {
		require.NoError(t, writer.UpsertHardware(ctx, hw))
	}
	for _, user := range []*domain.User{&dir.Admin, &dir.Operator, &dir.Technician, &dir.Technician2, &dir.DisabledTech} {
		require.NoError(t, writer.UpsertUser(ctx, user))
	}
	return dir
}
