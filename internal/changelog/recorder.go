package changelog

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/fekuna/omnipos-inventory-service/internal/clock"
	"github.com/fekuna/omnipos-inventory-service/internal/database"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

// Auditable is an entity the recorder can describe and snapshot.
type Auditable interface {
	LogSubject() model.LogSubject
	AuditSnapshot() map[string]any
}

// Recorder writes change-log entries through the repository. Entries are
// written with the caller's context, so they join its transaction when there
// is one.
type Recorder struct {
	repo    Repository
	clock   clock.Clock
	onWrite func(action string)
}

func NewRecorder(repo Repository, clk clock.Clock) *Recorder {
	return &Recorder{repo: repo, clock: clk}
}

// OnWrite registers a callback run for each entry that was persisted. Inside a
// transaction it fires after commit; rolled-back entries are never reported.
func (r *Recorder) OnWrite(fn func(action string)) {
	r.onWrite = fn
}

func (r *Recorder) RecordCreate(ctx context.Context, entity Auditable, actor model.Actor) error {
	return r.write(ctx, entity.LogSubject(), model.ActionCreate, nil, actor)
}

// RecordUpdate diffs before and after over labels and writes an entry only
// when at least one labelled field changed. It reports whether it wrote.
func (r *Recorder) RecordUpdate(ctx context.Context, before, after Auditable, labels []FieldLabel, actor model.Actor) (bool, error) {
	changes := Diff(before.AuditSnapshot(), after.AuditSnapshot(), labels)
	if len(changes) == 0 {
		return false, nil
	}
	if err := r.write(ctx, after.LogSubject(), model.ActionUpdate, changes, actor); err != nil {
		return false, err
	}
	return true, nil
}

// RecordBulkUpdate writes an update entry without a field diff.
func (r *Recorder) RecordBulkUpdate(ctx context.Context, entity Auditable, actor model.Actor) error {
	return r.write(ctx, entity.LogSubject(), model.ActionUpdate, nil, actor)
}

// RecordDelete writes a delete entry from the pre-deletion state of entity.
func (r *Recorder) RecordDelete(ctx context.Context, entity Auditable, actor model.Actor) error {
	return r.write(ctx, entity.LogSubject(), model.ActionDelete, nil, actor)
}

func (r *Recorder) write(ctx context.Context, subject model.LogSubject, action model.ChangeAction, changes []model.FieldChange, actor model.Actor) error {
	// v7 ids are time-ordered, so entries sharing a timestamp still list in
	// write order.
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generate change log id: %w", err)
	}
	entry := &model.ChangeLogEntry{
		ID:         id.String(),
		EntityType: subject.EntityType,
		EntityID:   subject.EntityID,
		EntityName: subject.EntityName,
		EntitySKU:  subject.EntitySKU,
		Action:     action,
		Changes:    changes,
		UserID:     actor.UserID,
		UserName:   actor.UserName,
		ItemType:   subject.ItemType,
		CreatedAt:  r.clock.Now(),
	}
	if err := r.repo.Create(ctx, entry); err != nil {
		return err
	}
	if r.onWrite != nil {
		database.AfterCommit(ctx, func() { r.onWrite(string(action)) })
	}
	return nil
}
