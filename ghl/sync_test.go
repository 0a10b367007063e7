package ghl

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/leadfoundry/roical/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncCRM is a scripted CRM for orchestrator tests. It records the create,
// update, and note payloads it receives.
type syncCRM struct {
	mu sync.Mutex

	searchResult  string // raw JSON contacts array
	noteStatus    int
	createBodies  []ContactRequest
	updateBodies  []ContactRequest
	updatedIDs    []string
	noteBodies    []string
	noteContacts  []string
	searchQueries []string

	server *httptest.Server
}

func newSyncCRM(t *testing.T) *syncCRM {
	t.Helper()

	s := &syncCRM{searchResult: `[]`, noteStatus: http.StatusCreated}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /contacts/", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.searchQueries = append(s.searchQueries, r.URL.Query().Get("query"))
		s.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"contacts":` + s.searchResult + `}`))
	})
	mux.HandleFunc("POST /contacts/", func(w http.ResponseWriter, r *http.Request) {
		var req ContactRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		s.mu.Lock()
		s.createBodies = append(s.createBodies, req)
		s.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"contact":{"id":"contact_new","email":"` + req.Email + `"}}`))
	})
	mux.HandleFunc("PUT /contacts/{id}", func(w http.ResponseWriter, r *http.Request) {
		var req ContactRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		s.mu.Lock()
		s.updateBodies = append(s.updateBodies, req)
		s.updatedIDs = append(s.updatedIDs, r.PathValue("id"))
		s.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"contact":{"id":"` + r.PathValue("id") + `","email":"` + req.Email + `"}}`))
	})
	mux.HandleFunc("POST /contacts/{id}/notes", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		s.mu.Lock()
		s.noteBodies = append(s.noteBodies, payload["body"])
		s.noteContacts = append(s.noteContacts, r.PathValue("id"))
		s.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(s.noteStatus)
		_, _ = w.Write([]byte(`{"note":{"id":"note_1","body":"` + payload["body"] + `"}}`))
	})

	s.server = httptest.NewServer(mux)
	t.Cleanup(s.server.Close)
	return s
}

func syncTestClient(crm *syncCRM, extra map[string]string) *Client {
	values := map[string]string{
		KeyAccessToken:    "stored-token",
		KeyRefreshToken:   "stored-refresh",
		KeyTokenExpiresAt: strconv.FormatInt(time.Now().Add(24*time.Hour).UnixMilli(), 10),
		KeyLocationID:     "loc_1",
		KeyClientID:       "client-id",
		KeyClientSecret:   "client-secret",
	}
	for k, v := range extra {
		values[k] = v
	}
	return NewClient(NewMemoryStore(values), WithBaseURL(crm.server.URL), WithHTTPClient(crm.server.Client()))
}

func TestSyncROIDataCreatesWhenNoMatch(t *testing.T) {
	crm := newSyncCRM(t)
	client := syncTestClient(crm, map[string]string{
		KeyFieldMappings: `{"currentLeads":"roi_leads"}`,
	})

	lead := LeadData{
		Email: "a@b.com",
		Data:  models.ROIData{"currentLeads": 100.0, "currentSales": 5.0},
	}
	result, err := client.SyncROIData(context.Background(), "loc_1", lead)
	require.NoError(t, err)

	assert.Equal(t, "contact_new", result.Contact.ID)
	require.Len(t, crm.createBodies, 1)
	assert.Empty(t, crm.updateBodies)

	// Only mapped fields survive; currentSales has no mapping and is dropped
	assert.Equal(t, map[string]any{"roi_leads": 100.0}, crm.createBodies[0].CustomFields)
	assert.Equal(t, "loc_1", crm.createBodies[0].LocationID)

	// Notes disabled: no note call
	assert.Empty(t, crm.noteBodies)
}

func TestSyncROIDataUpdatesWhenMatchFound(t *testing.T) {
	crm := newSyncCRM(t)
	crm.searchResult = `[{"id":"contact_42","email":"a@b.com"},{"id":"contact_43","email":"a@b.com"}]`
	client := syncTestClient(crm, nil)

	lead := LeadData{
		Email:     "a@b.com",
		FirstName: "Jo",
		Data:      models.ROIData{"currentLeads": 100.0},
	}
	result, err := client.SyncROIData(context.Background(), "loc_1", lead)
	require.NoError(t, err)

	// First match wins
	assert.Equal(t, "contact_42", result.Contact.ID)
	require.Len(t, crm.updatedIDs, 1)
	assert.Equal(t, "contact_42", crm.updatedIDs[0])
	assert.Empty(t, crm.createBodies)

	assert.Equal(t, "Jo", crm.updateBodies[0].FirstName)
	assert.Equal(t, map[string]any{"roi_current_leads": 100.0}, crm.updateBodies[0].CustomFields)
	assert.Empty(t, crm.updateBodies[0].LocationID, "update body must not carry locationId")
}

func TestSyncROIDataAttachesNote(t *testing.T) {
	crm := newSyncCRM(t)
	client := syncTestClient(crm, map[string]string{
		KeyNotesEnabled:  "true",
		KeyNotesTemplate: "Hi {{firstName}}, CPA: {{currentCPA}}",
	})

	lead := LeadData{
		Email:     "a@b.com",
		FirstName: "Jo",
		Data:      models.ROIData{"currentCPA": 12.5},
	}
	_, err := client.SyncROIData(context.Background(), "loc_1", lead)
	require.NoError(t, err)

	require.Len(t, crm.noteBodies, 1)
	assert.Equal(t, "Hi Jo, CPA: $12.5", crm.noteBodies[0])
	assert.Equal(t, "contact_new", crm.noteContacts[0])
}

func TestSyncROIDataNoteSkippedWithEmptyTemplate(t *testing.T) {
	crm := newSyncCRM(t)
	client := syncTestClient(crm, map[string]string{
		KeyNotesEnabled: "true",
	})

	_, err := client.SyncROIData(context.Background(), "loc_1", LeadData{Email: "a@b.com"})
	require.NoError(t, err)
	assert.Empty(t, crm.noteBodies)
}

func TestSyncROIDataNoteFailureDoesNotFailSync(t *testing.T) {
	crm := newSyncCRM(t)
	crm.noteStatus = http.StatusBadGateway
	client := syncTestClient(crm, map[string]string{
		KeyNotesEnabled:  "true",
		KeyNotesTemplate: "Hello {{email}}",
	})

	result, err := client.SyncROIData(context.Background(), "loc_1", LeadData{Email: "a@b.com"})
	require.NoError(t, err, "note attachment is best-effort")
	assert.Equal(t, "contact_new", result.Contact.ID)
}

func TestSyncROIDataRequiresEmail(t *testing.T) {
	crm := newSyncCRM(t)
	client := syncTestClient(crm, nil)

	_, err := client.SyncROIData(context.Background(), "loc_1", LeadData{})
	require.Error(t, err)
	assert.Empty(t, crm.searchQueries)
}

func TestSyncROIDataSearchesByEmail(t *testing.T) {
	crm := newSyncCRM(t)
	client := syncTestClient(crm, nil)

	_, err := client.SyncROIData(context.Background(), "loc_1", LeadData{Email: "jo@acme.com"})
	require.NoError(t, err)

	require.Len(t, crm.searchQueries, 1)
	assert.Equal(t, "jo@acme.com", crm.searchQueries[0])
}
