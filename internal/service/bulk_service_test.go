package service_test

import (
	"sync"
	"testing"

	"github.com/guestlane/guestlane-backend/internal/model"
	"github.com/guestlane/guestlane-backend/internal/queue"
	"github.com/guestlane/guestlane-backend/internal/service"
)

// CaptureQueue records published events instead of delivering them.
type CaptureQueue struct {
	mu        sync.Mutex
	published []any
}

func (q *CaptureQueue) Publish(topic string, payload any) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.published = append(q.published, payload)
	return nil
}

func (q *CaptureQueue) Subscribe(topic string, handler func(payload any) error) error {
	return nil
}

func (q *CaptureQueue) events() []any {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]any{}, q.published...)
}

func newTestOrchestrator(repo *MemPitchRepo, q queue.Queue) *service.BulkOrchestrator {
	svc := newTestService(repo, &StubGenerator{})
	return &service.BulkOrchestrator{
		Pitches:   svc,
		PitchRepo: repo,
		MatchRepo: svc.MatchRepo,
		Queue:     q,
	}
}

func assertPartition(t *testing.T, result *service.BulkOperationResult) {
	t.Helper()
	got := len(result.Successful) + len(result.Failed) + len(result.Skipped)
	if got != result.Total {
		t.Errorf("partition broken: %d successful + %d failed + %d skipped != total %d",
			len(result.Successful), len(result.Failed), len(result.Skipped), result.Total)
	}
}

func TestBulkGenerateIsolatesFailures(t *testing.T) {
	repo := NewMemPitchRepo()
	bulk := newTestOrchestrator(repo, nil)

	// match-404 does not exist; its failure must not stop the others
	result := bulk.BulkGenerate([]string{"match-1", "match-404", "match-2"}, "default", "member")

	assertPartition(t, result)
	if result.Total != 3 {
		t.Fatalf("expected total 3, got %d", result.Total)
	}
	if len(result.Successful) != 2 {
		t.Errorf("expected 2 successes, got %d", len(result.Successful))
	}
	if len(result.Failed) != 1 || result.Failed[0].ID != "match-404" {
		t.Errorf("expected match-404 to fail, got %+v", result.Failed)
	}
}

func TestBulkApproveReportsAlreadyApprovedAsFailed(t *testing.T) {
	repo := NewMemPitchRepo()
	bulk := newTestOrchestrator(repo, nil)

	repo.seed(&model.Pitch{ID: "p-pending", MatchID: "match-1", CampaignID: "camp-1", SequenceType: model.SequenceInitial, Status: model.StatusPendingApproval})
	repo.seed(&model.Pitch{ID: "p-done", MatchID: "match-2", CampaignID: "camp-1", SequenceType: model.SequenceInitial, Status: model.StatusApproved})

	input := []string{"p-pending", "p-done", "p-missing"}
	result := bulk.BulkApprove(input, "")

	assertPartition(t, result)
	if result.Total != len(input) {
		t.Fatalf("expected total %d, got %d", len(input), result.Total)
	}
	if len(result.Successful) != 1 || result.Successful[0] != "p-pending" {
		t.Errorf("expected only p-pending to succeed, got %v", result.Successful)
	}
	// already-approved must be reported, not silently skipped
	if len(result.Failed) != 2 {
		t.Errorf("expected p-done and p-missing to fail, got %+v", result.Failed)
	}

	// every input id lands in exactly one bucket
	seen := map[string]int{}
	for _, id := range result.Successful {
		seen[id]++
	}
	for _, item := range result.Failed {
		seen[item.ID]++
	}
	for _, id := range input {
		if seen[id] != 1 {
			t.Errorf("id %s appeared %d times in the result", id, seen[id])
		}
	}
}

func TestBulkGenerateFollowUpsSkipsAndRetries(t *testing.T) {
	repo := NewMemPitchRepo()
	bulk := newTestOrchestrator(repo, nil)

	// match-1 sits at initial, match-2 has no pitch at all
	repo.seed(&model.Pitch{ID: "p-init-1", MatchID: "match-1", CampaignID: "camp-1", SequenceType: model.SequenceInitial, Status: model.StatusSent})

	result, err := bulk.BulkGenerateFollowUps("camp-1", model.SequenceInitial, 10, "member")
	if err != nil {
		t.Fatalf("bulk follow-ups failed: %v", err)
	}
	assertPartition(t, result)
	if len(result.Successful) != 1 {
		t.Fatalf("expected 1 follow-up created, got %+v", result)
	}
	if len(result.Skipped) != 1 || result.Skipped[0].ID != "match-2" {
		t.Errorf("expected match-2 skipped, got %+v", result.Skipped)
	}

	// re-running the same batch must not advance match-1 again
	result, err = bulk.BulkGenerateFollowUps("camp-1", model.SequenceInitial, 10, "member")
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	assertPartition(t, result)
	if len(result.Successful) != 0 {
		t.Errorf("retry must not re-process advanced matches, got %v", result.Successful)
	}
	found := false
	for _, s := range result.Skipped {
		if s.ID == "match-1" && s.Reason == "already has follow-up" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected match-1 skipped with 'already has follow-up', got %+v", result.Skipped)
	}
}

func TestBulkPublishesBatchEvent(t *testing.T) {
	repo := NewMemPitchRepo()
	q := &CaptureQueue{}
	bulk := newTestOrchestrator(repo, q)

	result := bulk.BulkGenerate([]string{"match-1"}, "default", "member")
	if len(result.Successful) != 1 {
		t.Fatalf("expected 1 success, got %+v", result)
	}

	events := q.events()
	if len(events) != 1 {
		t.Fatalf("expected 1 batch event, got %d", len(events))
	}
	event, ok := events[0].(queue.PitchBatchCompleted)
	if !ok {
		t.Fatalf("expected PitchBatchCompleted, got %T", events[0])
	}
	if event.Kind != "bulk_generate" || len(event.IDs) != 1 {
		t.Errorf("unexpected event payload: %+v", event)
	}
}
