package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/guestlane/guestlane-backend/internal/handler"
	"github.com/guestlane/guestlane-backend/internal/model"
)

type fakeScheduleRepo struct {
	campaign map[string]*model.CampaignSchedule
	global   *model.GlobalSchedule
}

func (r *fakeScheduleRepo) GetCampaignSchedule(campaignID string) (*model.CampaignSchedule, error) {
	return r.campaign[campaignID], nil
}

func (r *fakeScheduleRepo) UpsertCampaignSchedule(s *model.CampaignSchedule) error {
	if r.campaign == nil {
		r.campaign = map[string]*model.CampaignSchedule{}
	}
	r.campaign[s.CampaignID] = s
	return nil
}

func (r *fakeScheduleRepo) GetGlobalSchedule() (*model.GlobalSchedule, error) {
	return r.global, nil
}

func (r *fakeScheduleRepo) UpsertGlobalSchedule(s *model.GlobalSchedule) error {
	r.global = s
	return nil
}

func newScheduleRouter(repo *fakeScheduleRepo) *chi.Mux {
	h := &handler.ScheduleHandler{Repo: repo}
	r := chi.NewRouter()
	r.Get("/campaigns/{id}/smart-send", h.GetCampaignScheduleHandler)
	r.Patch("/campaigns/{id}/smart-send", h.UpdateCampaignScheduleHandler)
	r.Get("/admin/settings/smart-send-global-schedule", h.GetGlobalScheduleHandler)
	r.Patch("/admin/settings/smart-send-global-schedule", h.UpdateGlobalScheduleHandler)
	return r
}

func TestGetCampaignScheduleDefaultsToDisabled(t *testing.T) {
	router := newScheduleRouter(&fakeScheduleRepo{})

	req := httptest.NewRequest(http.MethodGet, "/campaigns/camp-1/smart-send", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp model.CampaignSchedule
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.CampaignID != "camp-1" || resp.Enabled {
		t.Errorf("expected disabled default for camp-1, got %+v", resp)
	}
}

func TestUpdateCampaignScheduleRoundTrip(t *testing.T) {
	repo := &fakeScheduleRepo{}
	router := newScheduleRouter(repo)

	payload := []byte(`{"enabled":true,"days":[1,2,3,4,5],"start_time":"09:00","end_time":"17:00"}`)
	req := httptest.NewRequest(http.MethodPatch, "/campaigns/camp-1/smart-send", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	saved := repo.campaign["camp-1"]
	if saved == nil || !saved.Enabled || saved.StartTime != "09:00" {
		t.Fatalf("schedule not persisted: %+v", saved)
	}

	var resp model.CampaignSchedule
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.EndTime != "17:00" || len(resp.Days) != 5 {
		t.Errorf("response does not echo the saved schedule: %+v", resp)
	}
}

func TestUpdateCampaignScheduleRejectsInvalidWindow(t *testing.T) {
	repo := &fakeScheduleRepo{}
	router := newScheduleRouter(repo)

	cases := []struct {
		name    string
		payload string
	}{
		{"midnight wrap", `{"enabled":true,"days":[1],"start_time":"22:00","end_time":"06:00"}`},
		{"empty days", `{"enabled":true,"days":[],"start_time":"09:00","end_time":"17:00"}`},
		{"day out of range", `{"enabled":true,"days":[7],"start_time":"09:00","end_time":"17:00"}`},
		{"bad time format", `{"enabled":true,"days":[1],"start_time":"9am","end_time":"17:00"}`},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPatch, "/campaigns/camp-1/smart-send", bytes.NewReader([]byte(tc.payload)))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", tc.name, rec.Code)
		}
	}
	if len(repo.campaign) != 0 {
		t.Errorf("invalid schedules must never be persisted, got %+v", repo.campaign)
	}
}

func TestUpdateCampaignScheduleDisabledSkipsValidation(t *testing.T) {
	repo := &fakeScheduleRepo{}
	router := newScheduleRouter(repo)

	// a disabled schedule may carry an incomplete window
	payload := []byte(`{"enabled":false,"days":[],"start_time":"","end_time":""}`)
	req := httptest.NewRequest(http.MethodPatch, "/campaigns/camp-1/smart-send", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for disabled schedule, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestGlobalScheduleRoundTrip(t *testing.T) {
	repo := &fakeScheduleRepo{}
	router := newScheduleRouter(repo)

	payload := []byte(`{"days":[2,4],"start_time":"10:00","end_time":"14:00"}`)
	req := httptest.NewRequest(http.MethodPatch, "/admin/settings/smart-send-global-schedule", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if repo.global == nil || repo.global.StartTime != "10:00" {
		t.Fatalf("global schedule not persisted: %+v", repo.global)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin/settings/smart-send-global-schedule", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var resp model.GlobalSchedule
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(resp.Days) != 2 || resp.EndTime != "14:00" {
		t.Errorf("unexpected global schedule: %+v", resp)
	}
}
