package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sojus/helpdesk/internal/persistence"
	"github.com/sojus/helpdesk/internal/repository"
	"github.com/sojus/helpdesk/internal/repository/repotest"
	"github.com/sojus/helpdesk/internal/repository/sqlite"
	"github.com/sojus/helpdesk/internal/testkit"
)

func TestStoreContract(t *testing.T) {
	repotest.RunStoreContract(t, func(t *testing.T) repository.Store {
		return testkit.NewSQLiteStore(t)
	})
}

func TestAuditLogRejectsRewrites(t *testing.T) {
	ctx := context.Background()
	db, err := persistence.OpenSQLite(ctx, filepath.Join(t.TempDir(), "audit.db"), zap.NewNop())
	require.NoError(t, err)
	store := sqlite.NewStore(db)
	t.Cleanup(store.Close)

	_, err = db.ExecContext(ctx, `INSERT INTO audit_log (id, entity_name, entity_id, action, actor_username, recorded_at)
        VALUES ('a-1', 'Ticket', 't-1', 'CREATE', 'admin', 0)`)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `UPDATE audit_log SET actor_username = 'intruso' WHERE id = 'a-1'`)
	assert.ErrorContains(t, err, "append-only")
	_, err = db.ExecContext(ctx, `DELETE FROM audit_log WHERE id = 'a-1'`)
	assert.ErrorContains(t, err, "append-only")

	records, err := store.Repositories().Audit.ListByEntity(ctx, "Ticket", "t-1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "admin", records[0].ActorUsername)
}

func TestPing(t *testing.T) {
	store := testkit.NewSQLiteStore(t)
	assert.NoError(t, store.Ping(context.Background()))
}
