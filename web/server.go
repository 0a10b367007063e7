// ABOUTME: JSON API server for the calculator, lead capture, and admin panels
// ABOUTME: Hosts the GoHighLevel OAuth connect flow and fire-and-forget lead sync
package web

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/leadfoundry/roical/calc"
	"github.com/leadfoundry/roical/db"
	"github.com/leadfoundry/roical/ghl"
	"github.com/leadfoundry/roical/models"
	"github.com/leadfoundry/roical/sync"
)

type Server struct {
	db         *sql.DB
	store      *db.SettingsStore
	client     *ghl.Client
	syncer     *sync.Syncer
	adminToken string
	mux        *http.ServeMux
}

func NewServer(database *sql.DB, client *ghl.Client, syncer *sync.Syncer) *Server {
	s := &Server{
		db:         database,
		store:      &db.SettingsStore{DB: database},
		client:     client,
		syncer:     syncer,
		adminToken: os.Getenv("ADMIN_TOKEN"),
		mux:        http.NewServeMux(),
	}

	s.mux.HandleFunc("POST /api/leads", s.handleCaptureLead)
	s.mux.HandleFunc("POST /api/calculate", s.handleCalculate)
	s.mux.HandleFunc("GET /api/brands/{slug}", s.handleGetBrand)

	s.mux.HandleFunc("GET /api/admin/leads", s.requireAdmin(s.handleListLeads))
	s.mux.HandleFunc("GET /api/admin/brands", s.requireAdmin(s.handleListBrands))
	s.mux.HandleFunc("POST /api/admin/brands", s.requireAdmin(s.handleCreateBrand))
	s.mux.HandleFunc("PUT /api/admin/brands/{id}", s.requireAdmin(s.handleUpdateBrand))
	s.mux.HandleFunc("DELETE /api/admin/brands/{id}", s.requireAdmin(s.handleDeleteBrand))
	s.mux.HandleFunc("GET /api/admin/settings", s.requireAdmin(s.handleGetSettings))
	s.mux.HandleFunc("PUT /api/admin/settings", s.requireAdmin(s.handlePutSettings))
	s.mux.HandleFunc("GET /api/admin/sync", s.requireAdmin(s.handleSyncStatus))

	s.mux.HandleFunc("GET /oauth/ghl/connect", s.requireAdmin(s.handleOAuthConnect))
	s.mux.HandleFunc("GET /oauth/ghl/callback", s.handleOAuthCallback)

	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	log.Printf("Starting API server at http://localhost%s", addr)
	return http.ListenAndServe(addr, s.mux)
}

// requireAdmin gates admin routes behind the ADMIN_TOKEN bearer token.
// With no token configured all admin routes are open, which is only
// acceptable for local development.
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.adminToken != "" {
			auth := r.Header.Get("Authorization")
			if auth != "Bearer "+s.adminToken {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
		}
		next(w, r)
	}
}

type captureLeadRequest struct {
	Email     string         `json:"email"`
	FirstName string         `json:"first_name"`
	LastName  string         `json:"last_name"`
	Phone     string         `json:"phone"`
	Company   string         `json:"company"`
	BrandSlug string         `json:"brand_slug"`
	Data      models.ROIData `json:"data"`
}

func (s *Server) handleCaptureLead(w http.ResponseWriter, r *http.Request) {
	var req captureLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusBadRequest, "a valid email is required")
		return
	}

	lead := &models.Lead{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Company:   req.Company,
		Data:      req.Data,
	}

	if req.BrandSlug != "" {
		brand, err := db.GetBrandBySlug(s.db, req.BrandSlug)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to lookup brand")
			return
		}
		if brand != nil {
			lead.BrandID = &brand.ID
		}
	}

	if err := db.CreateLead(s.db, lead); err != nil {
		log.Printf("failed to create lead: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to save lead")
		return
	}

	// The visitor gets their answer now; CRM sync happens in the
	// background and its failures never reach them.
	if s.syncer != nil {
		if connected, err := s.client.Connected(r.Context()); err == nil && connected {
			s.syncer.QueueLead(lead)
		}
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": lead.ID.String()})
}

type calculateRequest struct {
	Leads        float64 `json:"leads"`
	Sales        float64 `json:"sales"`
	AdSpend      float64 `json:"ad_spend"`
	Revenue      float64 `json:"revenue"`
	Timeframe    string  `json:"timeframe"`
	ScenarioName string  `json:"scenario_name"`
	TargetCR     float64 `json:"target_cr"`
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Leads <= 0 {
		writeError(w, http.StatusBadRequest, "leads must be greater than zero")
		return
	}

	inputs := calc.Inputs{Leads: req.Leads, Sales: req.Sales, AdSpend: req.AdSpend, Revenue: req.Revenue}
	if req.Timeframe == string(calc.Annual) {
		inputs = calc.Scale(inputs, calc.Annual, calc.Monthly)
	}

	var scenario *calc.Scenario
	if req.TargetCR > 0 {
		scenario = &calc.Scenario{Name: req.ScenarioName, TargetCR: req.TargetCR}
	}

	data, err := calc.Snapshot(inputs, scenario)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, data)
}

func (s *Server) handleGetBrand(w http.ResponseWriter, r *http.Request) {
	brand, err := db.GetBrandBySlug(s.db, r.PathValue("slug"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load brand")
		return
	}
	if brand == nil {
		writeError(w, http.StatusNotFound, "brand not found")
		return
	}
	writeJSON(w, http.StatusOK, brand)
}

func (s *Server) handleListLeads(w http.ResponseWriter, r *http.Request) {
	leads, err := db.FindLeads(s.db, r.URL.Query().Get("q"), nil, 100)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list leads")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"leads": leads})
}

func (s *Server) handleListBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := db.ListBrands(s.db)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list brands")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"brands": brands})
}

func (s *Server) handleCreateBrand(w http.ResponseWriter, r *http.Request) {
	var brand models.Brand
	if err := json.NewDecoder(r.Body).Decode(&brand); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if brand.Name == "" || brand.Slug == "" {
		writeError(w, http.StatusBadRequest, "name and slug are required")
		return
	}

	if err := db.CreateBrand(s.db, &brand); err != nil {
		log.Printf("failed to create brand: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create brand")
		return
	}
	writeJSON(w, http.StatusCreated, brand)
}

func (s *Server) handleUpdateBrand(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid brand id")
		return
	}

	existing, err := db.GetBrand(s.db, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load brand")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "brand not found")
		return
	}

	var updates models.Brand
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if updates.Name == "" || updates.Slug == "" {
		writeError(w, http.StatusBadRequest, "name and slug are required")
		return
	}

	if err := db.UpdateBrand(s.db, id, &updates); err != nil {
		log.Printf("failed to update brand: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to update brand")
		return
	}

	brand, err := db.GetBrand(s.db, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load brand")
		return
	}
	writeJSON(w, http.StatusOK, brand)
}

func (s *Server) handleDeleteBrand(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid brand id")
		return
	}

	existing, err := db.GetBrand(s.db, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load brand")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "brand not found")
		return
	}

	if err := db.DeleteBrand(s.db, id); err != nil {
		log.Printf("failed to delete brand: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to delete brand")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := db.GetSettingsByPrefix(s.db, "ghl_")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	writeJSON(w, http.StatusOK, db.RedactSecrets(settings))
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var updates map[string]string
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	for key, value := range updates {
		if !strings.HasPrefix(key, "ghl_") {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown setting: %s", key))
			return
		}
		if err := db.SetSetting(s.db, key, value); err != nil {
			log.Printf("failed to save setting %s: %v", key, err)
			writeError(w, http.StatusInternalServerError, "failed to save settings")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

func (s *Server) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	state, err := db.GetSyncState(s.db, sync.ServiceName)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load sync state")
		return
	}

	attempts, err := db.GetSyncAttempts(s.db, r.URL.Query().Get("status"), 50)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load sync attempts")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"state":    state,
		"attempts": attempts,
	})
}

func (s *Server) handleOAuthConnect(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.client.OAuthConfig(r.Context(), s.redirectURL(r))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	state := uuid.NewString()
	if err := s.store.Set(r.Context(), "ghl_oauth_state", state); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store oauth state")
		return
	}

	http.Redirect(w, r, cfg.AuthCodeURL(state), http.StatusFound)
}

func (s *Server) handleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	expected, err := s.store.Get(r.Context(), "ghl_oauth_state")
	if err != nil || expected == "" || r.URL.Query().Get("state") != expected {
		writeError(w, http.StatusBadRequest, "invalid oauth state")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing authorization code")
		return
	}

	cfg, err := s.client.OAuthConfig(r.Context(), s.redirectURL(r))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	token, err := cfg.Exchange(r.Context(), code)
	if err != nil {
		log.Printf("gohighlevel oauth exchange failed: %v", err)
		writeError(w, http.StatusBadGateway, "authorization exchange failed")
		return
	}

	locationID, _ := token.Extra("locationId").(string)
	creds := &ghl.Credentials{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
		LocationID:   locationID,
	}
	if err := ghl.SaveCredentials(r.Context(), s.store, creds); err != nil {
		log.Printf("failed to save gohighlevel credentials: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to save credentials")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "connected", "location_id": locationID})
}

func (s *Server) redirectURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/oauth/ghl/callback", scheme, r.Host)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
