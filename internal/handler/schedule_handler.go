// internal/handler/schedule_handler.go
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/guestlane/guestlane-backend/internal/errors"
	"github.com/guestlane/guestlane-backend/internal/model"
	"github.com/guestlane/guestlane-backend/internal/repository"
	"github.com/guestlane/guestlane-backend/internal/service"
)

// ScheduleHandler holds the dependencies for Smart Send configuration
// endpoints. Times in payloads are already UTC wall-clock "HH:MM" strings;
// the UI converts from the user's timezone before saving, so evaluation never
// has to reason about DST.
type ScheduleHandler struct {
	Repo repository.ScheduleRepositoryInterface
}

// GetCampaignScheduleHandler returns a campaign's Smart Send config, or a
// disabled default when none was ever saved.
func (h *ScheduleHandler) GetCampaignScheduleHandler(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "id")

	schedule, err := h.Repo.GetCampaignSchedule(campaignID)
	if err != nil {
		http.Error(w, "failed to fetch schedule: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if schedule == nil {
		schedule = &model.CampaignSchedule{CampaignID: campaignID, Enabled: false, Days: []int{}}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(schedule)
}

// UpdateCampaignScheduleHandler validates and saves a campaign's Smart Send
// window. Invalid windows (empty days, midnight wrap) are rejected here and
// never persisted.
func (h *ScheduleHandler) UpdateCampaignScheduleHandler(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "id")

	var payload struct {
		Enabled   bool   `json:"enabled"`
		Days      []int  `json:"days"`
		StartTime string `json:"start_time"`
		EndTime   string `json:"end_time"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	schedule := &model.CampaignSchedule{
		CampaignID: campaignID,
		Enabled:    payload.Enabled,
		Days:       payload.Days,
		StartTime:  payload.StartTime,
		EndTime:    payload.EndTime,
	}
	if err := service.ValidateCampaignSchedule(schedule); err != nil {
		http.Error(w, err.Error(), appErrors.HTTPStatus(err))
		return
	}

	if err := h.Repo.UpsertCampaignSchedule(schedule); err != nil {
		http.Error(w, "failed to save schedule: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(schedule)
}

// GetGlobalScheduleHandler returns the process-wide premium schedule.
func (h *ScheduleHandler) GetGlobalScheduleHandler(w http.ResponseWriter, r *http.Request) {
	schedule, err := h.Repo.GetGlobalSchedule()
	if err != nil {
		http.Error(w, "failed to fetch global schedule: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if schedule == nil {
		schedule = &model.GlobalSchedule{Days: []int{}}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(schedule)
}

// UpdateGlobalScheduleHandler validates and saves the global schedule. It has
// no enabled flag: once configured it applies to every premium campaign.
func (h *ScheduleHandler) UpdateGlobalScheduleHandler(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Days      []int  `json:"days"`
		StartTime string `json:"start_time"`
		EndTime   string `json:"end_time"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := service.ValidateScheduleWindow(payload.Days, payload.StartTime, payload.EndTime); err != nil {
		http.Error(w, err.Error(), appErrors.HTTPStatus(err))
		return
	}

	schedule := &model.GlobalSchedule{
		Days:      payload.Days,
		StartTime: payload.StartTime,
		EndTime:   payload.EndTime,
	}
	if err := h.Repo.UpsertGlobalSchedule(schedule); err != nil {
		http.Error(w, "failed to save global schedule: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(schedule)
}
