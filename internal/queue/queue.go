package queue

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/guestlane/guestlane-backend/internal/repository"
)

// Topics
const (
	// TopicPitchBatches carries one PitchBatchCompleted event per finished
	// bulk operation.
	TopicPitchBatches = "pitch_batches"
)

// PitchBatchCompleted is published once per completed bulk operation, instead
// of invalidating caches at every call site. IDs are the batch's successful
// pitch ids.
type PitchBatchCompleted struct {
	Kind string   `json:"kind"`
	IDs  []string `json:"ids"`
}

// Queue interface
type Queue interface {
	Publish(topic string, payload any) error
	Subscribe(topic string, handler func(payload any) error) error
}

// InMemoryQueue is an in-process pub/sub queue with retry
type InMemoryQueue struct {
	mu       sync.Mutex
	handlers map[string][]func(payload any) error
}

// NewInMemoryQueue creates a new queue
func NewInMemoryQueue() *InMemoryQueue {
	return &InMemoryQueue{
		handlers: make(map[string][]func(payload any) error),
	}
}

// JobPayload wraps a message payload with retry info
type JobPayload struct {
	Payload    any
	RetryCount int
	MaxRetries int
}

// Publish sends a message to all subscribers
func (q *InMemoryQueue) Publish(topic string, payload any) error {
	q.mu.Lock()
	handlers := q.handlers[topic]
	q.mu.Unlock()

	if len(handlers) == 0 {
		return fmt.Errorf("no subscribers for topic %s", topic)
	}

	job := JobPayload{
		Payload:    payload,
		RetryCount: 0,
		MaxRetries: 3,
	}

	for _, handler := range handlers {
		go q.processJob(handler, job)
	}

	return nil
}

// processJob handles retries and errors
func (q *InMemoryQueue) processJob(handler func(payload any) error, job JobPayload) {
	for job.RetryCount <= job.MaxRetries {
		err := handler(job.Payload)
		if err == nil {
			return // ACK
		}

		job.RetryCount++
		log.Printf("Job failed (attempt %d/%d): %+v, error: %v\n", job.RetryCount, job.MaxRetries, job.Payload, err)

		if job.RetryCount > job.MaxRetries {
			log.Printf("Job permanently failed after %d attempts: %+v\n", job.MaxRetries, job.Payload)
			return // No requeue
		}

		// Exponential backoff before retry
		time.Sleep(time.Duration(job.RetryCount*500) * time.Millisecond)
	}
}

// Subscribe adds a handler for a topic
func (q *InMemoryQueue) Subscribe(topic string, handler func(payload any) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}

// StartBatchStatsSubscriber refreshes per-campaign pitch stats whenever a
// bulk operation completes. Read-models hang off this event rather than each
// bulk call site poking them individually.
func StartBatchStatsSubscriber(q Queue, pitchRepo repository.PitchRepositoryInterface) {
	go func() {
		err := q.Subscribe(TopicPitchBatches, func(payload any) error {
			event, ok := payload.(PitchBatchCompleted)
			if !ok {
				log.Println("⚠️ Invalid payload type, expected PitchBatchCompleted")
				return nil // no retry
			}

			log.Printf("📩 Batch %s completed with %d pitches\n", event.Kind, len(event.IDs))

			campaigns := map[string]bool{}
			for _, id := range event.IDs {
				p, err := pitchRepo.GetByID(id)
				if err != nil {
					log.Println("⚠️ Failed to fetch pitch:", err)
					continue
				}
				campaigns[p.CampaignID] = true
			}

			for campaignID := range campaigns {
				stats, err := pitchRepo.GetCampaignStats(campaignID)
				if err != nil {
					log.Println("⚠️ Failed to refresh stats:", err)
					return err // triggers retry in queue
				}
				log.Printf("✅ Campaign %s pitch stats: %+v\n", campaignID, stats)
			}
			return nil
		})

		if err != nil {
			log.Println("⚠️ Failed to start subscriber for", TopicPitchBatches, ":", err)
		}
	}()
}
