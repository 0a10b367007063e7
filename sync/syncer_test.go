package sync

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/leadfoundry/roical/db"
	"github.com/leadfoundry/roical/ghl"
	"github.com/leadfoundry/roical/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSyncTest(t *testing.T, crmStatus int) (*Syncer, *sql.DB) {
	t.Helper()

	database, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	database.SetMaxOpenConns(1)
	require.NoError(t, db.InitSchema(database))
	t.Cleanup(func() { _ = database.Close() })

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte(`{"contacts":[]}`))
			return
		}
		w.WriteHeader(crmStatus)
		_, _ = w.Write([]byte(`{"contact":{"id":"contact_77"}}`))
	}))
	t.Cleanup(server.Close)

	store := &db.SettingsStore{DB: database}
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, ghl.KeyAccessToken, "at"))
	require.NoError(t, store.Set(ctx, ghl.KeyRefreshToken, "rt"))
	require.NoError(t, store.Set(ctx, ghl.KeyTokenExpiresAt, strconv.FormatInt(time.Now().Add(24*time.Hour).UnixMilli(), 10)))
	require.NoError(t, store.Set(ctx, ghl.KeyLocationID, "loc_1"))

	client := ghl.NewClient(store, ghl.WithBaseURL(server.URL), ghl.WithHTTPClient(server.Client()))
	return New(database, client), database
}

func TestSyncLeadSuccessRecordsAttempt(t *testing.T) {
	syncer, database := setupSyncTest(t, http.StatusCreated)

	lead := &models.Lead{Email: "jo@example.com", Data: models.ROIData{"currentLeads": 10.0}}
	require.NoError(t, db.CreateLead(database, lead))

	require.NoError(t, syncer.SyncLead(context.Background(), lead))

	attempts, err := db.GetSyncAttempts(database, models.SyncAttemptSuccess, 10)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, "contact_77", attempts[0].ContactID)

	state, err := db.GetSyncState(database, ServiceName)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, models.SyncStatusIdle, state.Status)
	assert.NotNil(t, state.LastSyncTime)
}

func TestSyncLeadFailureRecordsError(t *testing.T) {
	syncer, database := setupSyncTest(t, http.StatusBadGateway)

	lead := &models.Lead{Email: "jo@example.com"}
	require.NoError(t, db.CreateLead(database, lead))

	err := syncer.SyncLead(context.Background(), lead)
	require.Error(t, err)

	attempts, err := db.GetSyncAttempts(database, models.SyncAttemptError, 10)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Contains(t, attempts[0].ErrorMessage, "502")

	state, err := db.GetSyncState(database, ServiceName)
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusError, state.Status)
}

func TestQueueLeadRunsInBackground(t *testing.T) {
	syncer, database := setupSyncTest(t, http.StatusCreated)

	lead := &models.Lead{Email: "jo@example.com"}
	require.NoError(t, db.CreateLead(database, lead))

	syncer.QueueLead(lead)
	syncer.Wait()

	attempts, err := db.GetSyncAttempts(database, models.SyncAttemptSuccess, 10)
	require.NoError(t, err)
	assert.Len(t, attempts, 1)
}

func TestSyncLeadWithoutLocationFails(t *testing.T) {
	syncer, database := setupSyncTest(t, http.StatusCreated)

	store := &db.SettingsStore{DB: database}
	require.NoError(t, store.Set(context.Background(), ghl.KeyLocationID, ""))

	lead := &models.Lead{Email: "jo@example.com"}
	require.NoError(t, db.CreateLead(database, lead))

	err := syncer.SyncLead(context.Background(), lead)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no location id")
}
