// ABOUTME: Background CRM sync for captured leads
// ABOUTME: Queues fire-and-forget sync attempts and records their outcomes in sync_log
package sync

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	stdsync "sync"
	"time"

	"github.com/leadfoundry/roical/db"
	"github.com/leadfoundry/roical/ghl"
	"github.com/leadfoundry/roical/models"
)

// ServiceName identifies the CRM in sync_state and sync_log rows.
const ServiceName = "gohighlevel"

// Syncer pushes captured leads into the CRM. Sync is best-effort: failures
// are logged and recorded, never surfaced to the visitor, and not retried
// automatically.
type Syncer struct {
	db      *sql.DB
	client  *ghl.Client
	timeout time.Duration
	wg      stdsync.WaitGroup
}

func New(database *sql.DB, client *ghl.Client) *Syncer {
	return &Syncer{
		db:      database,
		client:  client,
		timeout: 30 * time.Second,
	}
}

// QueueLead syncs the lead in the background. The caller's request is
// already answered by the time this runs; errors land in the log and in
// sync_log only.
func (s *Syncer) QueueLead(lead *models.Lead) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := s.SyncLead(ctx, lead); err != nil {
			log.Printf("gohighlevel sync failed for lead %s: %v", lead.ID, err)
		}
	}()
}

// Wait blocks until all queued syncs finish. Used on shutdown and in tests.
func (s *Syncer) Wait() {
	s.wg.Wait()
}

// SyncLead pushes one lead synchronously and records the attempt.
func (s *Syncer) SyncLead(ctx context.Context, lead *models.Lead) error {
	attemptID, err := db.CreateSyncAttempt(s.db, lead.ID, ServiceName)
	if err != nil {
		return err
	}

	if err := db.UpdateSyncStatus(s.db, ServiceName, models.SyncStatusSyncing, nil); err != nil {
		log.Printf("failed to mark sync in progress: %v", err)
	}

	result, syncErr := s.push(ctx, lead)
	if syncErr != nil {
		msg := syncErr.Error()
		if err := db.ResolveSyncAttempt(s.db, attemptID, models.SyncAttemptError, "", &msg); err != nil {
			log.Printf("failed to record sync failure: %v", err)
		}
		if err := db.UpdateSyncStatus(s.db, ServiceName, models.SyncStatusError, &msg); err != nil {
			log.Printf("failed to update sync state: %v", err)
		}
		return syncErr
	}

	if err := db.ResolveSyncAttempt(s.db, attemptID, models.SyncAttemptSuccess, result.Contact.ID, nil); err != nil {
		log.Printf("failed to record sync success: %v", err)
	}
	if err := db.MarkSyncCompleted(s.db, ServiceName); err != nil {
		log.Printf("failed to update sync state: %v", err)
	}

	return nil
}

func (s *Syncer) push(ctx context.Context, lead *models.Lead) (*ghl.ContactResult, error) {
	locationID, err := s.client.LocationID(ctx)
	if err != nil {
		return nil, err
	}
	if locationID == "" {
		return nil, fmt.Errorf("gohighlevel is not connected: no location id")
	}

	return s.client.SyncROIData(ctx, locationID, ghl.LeadData{
		Email:     lead.Email,
		FirstName: lead.FirstName,
		LastName:  lead.LastName,
		Phone:     lead.Phone,
		Company:   lead.Company,
		Data:      lead.Data,
	})
}
