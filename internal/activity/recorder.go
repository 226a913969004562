// Package activity writes the best-effort audit trail and mirrors it to the live feed.
package activity

import (
	"context"
	"fmt"

	"vapestore-pos/internal/model"
	"vapestore-pos/internal/repository"
	"vapestore-pos/pkg/logger"

	"github.com/google/uuid"
)

// Entry is one audit line; UserID and ProductID are optional references
type Entry struct {
	Action    string
	Details   string
	UserID    *uuid.UUID
	ProductID *uuid.UUID
}

// Event is pushed to live dashboards
type Event struct {
	Type    string `json:"type"`
	Action  string `json:"action,omitempty"`
	Message string `json:"message,omitempty"`
	Payload any    `json:"payload,omitempty"`
}

// Publisher is satisfied by the websocket hub
type Publisher interface {
	Publish(event any)
}

type Recorder struct {
	repo repository.ActivityRepository
	pub  Publisher
	log  *logger.Logger
}

func NewRecorder(repo repository.ActivityRepository, pub Publisher, log *logger.Logger) *Recorder {
	return &Recorder{repo: repo, pub: pub, log: log.WithComponent("activity")}
}

// Record appends an entry. Call it after the business write has committed.
// Failures are logged and never reach the caller.
func (r *Recorder) Record(ctx context.Context, e Entry) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Warnw("activity record panicked", "action", e.Action, "panic", fmt.Sprint(p))
		}
	}()

	row := &model.Activity{
		Action:    e.Action,
		Details:   e.Details,
		UserID:    e.UserID,
		ProductID: e.ProductID,
	}
	// The request may already be finished; the audit row should still land
	if err := r.repo.Create(context.WithoutCancel(ctx), row); err != nil {
		r.log.Warnw("activity record failed", "action", e.Action, "error", err)
		return
	}

	r.Publish(Event{Type: "activity", Action: e.Action, Message: e.Details, Payload: row})
}

// Publish forwards a live event without waiting on slow clients
func (r *Recorder) Publish(event Event) {
	if r.pub == nil {
		return
	}
	r.pub.Publish(event)
}

// Ref returns a pointer to id for the optional Entry references
func Ref(id uuid.UUID) *uuid.UUID {
	return &id
}
