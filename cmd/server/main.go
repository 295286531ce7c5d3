// cmd/server/main.go
package main

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/guestlane/guestlane-backend/internal/controller"
	"github.com/guestlane/guestlane-backend/internal/db"
	"github.com/guestlane/guestlane-backend/internal/handler"
	"github.com/guestlane/guestlane-backend/internal/queue"
	"github.com/guestlane/guestlane-backend/internal/repository"
	"github.com/guestlane/guestlane-backend/internal/service"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	// Init DB
	db.Init()
	q := queue.NewInMemoryQueue()

	pitchRepo := &repository.PitchRepository{DB: db.DB}
	matchRepo := &repository.MatchRepository{DB: db.DB}
	campaignRepo := &repository.CampaignRepository{DB: db.DB}
	scheduleRepo := &repository.ScheduleRepository{DB: db.DB}
	accountRepo := &repository.AccountRepository{DB: db.DB}
	queue.StartBatchStatsSubscriber(q, pitchRepo)

	gate := service.PlanGate{}

	pitchService := &service.PitchService{
		PitchRepo:    pitchRepo,
		MatchRepo:    matchRepo,
		CampaignRepo: campaignRepo,
		ScheduleRepo: scheduleRepo,
		Generator:    service.MockGenerator{},
		Gate:         gate,
	}

	allocator := &service.Allocator{Accounts: accountRepo}

	dispatchService := &service.DispatchService{
		Pitches:   pitchService,
		PitchRepo: pitchRepo,
		MatchRepo: matchRepo,
		Allocator: allocator,
		Sender:    service.MockEmailSender{},
	}

	bulkService := &service.BulkOrchestrator{
		Pitches:   pitchService,
		PitchRepo: pitchRepo,
		MatchRepo: matchRepo,
		Queue:     q,
	}

	pitchController := &controller.PitchController{
		Pitches:   pitchService,
		Bulk:      bulkService,
		Dispatch:  dispatchService,
		PitchRepo: pitchRepo,
		Gate:      gate,
	}

	scheduleHandler := &handler.ScheduleHandler{
		Repo: scheduleRepo,
	}

	r := chi.NewRouter()

	// Pitch routes
	r.Post("/pitches/generate", pitchController.GeneratePitch)
	r.Post("/pitches/generate-bulk", pitchController.BulkGenerate)
	r.Post("/pitches/templates/preview", pitchController.PreviewTemplate)
	r.Post("/pitches/match/{id}/generate-followup", pitchController.GenerateFollowUp)
	r.Post("/pitches/generations/bulk-approve", pitchController.BulkApprove)
	r.Post("/pitches/campaign/{id}/generate-followups-bulk", pitchController.BulkGenerateFollowUps)
	r.Get("/pitches/campaign/{id}/stats", pitchController.CampaignStats)
	r.Post("/pitches/send-nylas/{id}", pitchController.SendPitch)
	r.Post("/pitches/send-batch-nylas", pitchController.SendBatch)

	// Smart Send configuration
	r.Get("/campaigns/{id}/smart-send", scheduleHandler.GetCampaignScheduleHandler)
	r.Patch("/campaigns/{id}/smart-send", scheduleHandler.UpdateCampaignScheduleHandler)
	r.Get("/admin/settings/smart-send-global-schedule", scheduleHandler.GetGlobalScheduleHandler)
	r.Patch("/admin/settings/smart-send-global-schedule", scheduleHandler.UpdateGlobalScheduleHandler)

	log.Println("🚀 Server running on :8080")
	log.Fatal(http.ListenAndServe(":8080", r))
}
