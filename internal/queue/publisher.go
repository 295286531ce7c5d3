package queue

import (
	"encoding/json"

	"github.com/streadway/amqp"
)

// PitchSendQueue is the durable RabbitMQ queue dispatch jobs flow through:
// the scheduler publishes ready pitch ids, cmd/worker consumes them and
// performs the provider send.
const PitchSendQueue = "pitch_sends"

// SendJob is the wire payload for one dispatch job.
type SendJob struct {
	PitchID string `json:"pitch_id"`
}

// PitchSendPublisher publishes dispatch jobs to RabbitMQ.
type PitchSendPublisher struct {
	ch *amqp.Channel
	q  amqp.Queue
}

// NewPitchSendPublisher declares the queue on the given connection.
func NewPitchSendPublisher(conn *amqp.Connection) (*PitchSendPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	q, err := ch.QueueDeclare(
		PitchSendQueue, // name
		true,           // durable
		false,          // delete when unused
		false,          // exclusive
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		ch.Close()
		return nil, err
	}
	return &PitchSendPublisher{ch: ch, q: q}, nil
}

func (p *PitchSendPublisher) PublishSend(pitchID string) error {
	body, err := json.Marshal(SendJob{PitchID: pitchID})
	if err != nil {
		return err
	}
	return p.ch.Publish(
		"",
		p.q.Name,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

func (p *PitchSendPublisher) Close() error {
	return p.ch.Close()
}
