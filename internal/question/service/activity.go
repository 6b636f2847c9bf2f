package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tigabum/christian-platform/internal/common/mq"
	"github.com/tigabum/christian-platform/internal/question/repository"
	"github.com/tigabum/christian-platform/pkg/utils/logger"

	"go.uber.org/zap"
)

// StatusEvent is the JSON payload published on every applied status
// transition.
type StatusEvent struct {
	QuestionID  int64                     `json:"question_id"`
	Type        string                    `json:"type"`
	Status      repository.QuestionStatus `json:"status"`
	ResponderID *int64                    `json:"responder_id,omitempty"`
	OccurredAt  time.Time                 `json:"occurred_at"`
}

// StatusEventPublisher publishes status-change events to the message
// queue. Publishing is best effort; the transition has already
// committed by the time an event is emitted.
type StatusEventPublisher struct {
	queue mq.Producer
	topic string
}

// NewStatusEventPublisher creates a new status event publisher.
func NewStatusEventPublisher(queue mq.Producer, topic string) *StatusEventPublisher {
	return &StatusEventPublisher{queue: queue, topic: topic}
}

// PublishStatusChange publishes one transition event.
func (p *StatusEventPublisher) PublishStatusChange(ctx context.Context, event StatusEvent) error {
	if p == nil || p.queue == nil {
		return errors.New("status event publisher is nil")
	}
	if p.topic == "" {
		return errors.New("status event topic is empty")
	}
	if event.QuestionID <= 0 {
		return errors.New("questionID is required")
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal status event failed: %w", err)
	}
	message := mq.NewMessage(payload)
	message.ID = fmt.Sprintf("question-%d-%s-%d", event.QuestionID, event.Type, event.OccurredAt.UnixNano())
	if err := p.queue.Publish(ctx, p.topic, message); err != nil {
		return fmt.Errorf("publish status event failed: %w", err)
	}
	return nil
}

// recordActivity appends the dashboard activity row and publishes the
// status event. Both are best effort; a failed write never rolls back
// an applied transition.
func (s *LifecycleService) recordActivity(ctx context.Context, activityType string, question *repository.Question, responderName *string) {
	if question == nil {
		return
	}

	askerName := "Anonymous"
	if !question.IsAnonymous {
		if asker, err := s.users.GetByID(ctx, nil, question.AskerID); err == nil {
			askerName = asker.Name
		}
	}

	if s.activities != nil {
		activity := &repository.Activity{
			Type:          activityType,
			Title:         question.Title,
			AskerName:     askerName,
			ResponderID:   question.ResponderID,
			ResponderName: responderName,
			Status:        question.Status,
		}
		if err := s.activities.Append(ctx, nil, activity); err != nil {
			logger.Warn(ctx, "append activity failed",
				zap.Int64("question_id", question.ID),
				zap.String("type", activityType),
				zap.Error(err))
		}
	}

	if s.publisher != nil {
		event := StatusEvent{
			QuestionID:  question.ID,
			Type:        activityType,
			Status:      question.Status,
			ResponderID: question.ResponderID,
			OccurredAt:  time.Now().UTC(),
		}
		if err := s.publisher.PublishStatusChange(ctx, event); err != nil {
			logger.Warn(ctx, "publish status event failed",
				zap.Int64("question_id", question.ID),
				zap.String("type", activityType),
				zap.Error(err))
		}
	}
}
