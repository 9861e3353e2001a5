package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/bsm/redislock"
	"github.com/google/uuid"
	"github.com/saif-raza-001/pharmastream/config"
	"github.com/saif-raza-001/pharmastream/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// recordOutboxTx appends a document event inside the posting transaction.
// Publishing happens after commit, never here.
func recordOutboxTx(tx *gorm.DB, refType models.OutboxReferenceType, refID int, action models.OutboxAction, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	record := models.OutboxRecord{
		ReferenceType: refType,
		ReferenceID:   refID,
		Action:        action,
		Payload:       data,
		PublishStatus: models.OutboxStatusPending,
		CorrelationID: uuid.NewString(),
	}
	return tx.Create(&record).Error
}

// EventPublisher delivers one committed outbox record to the outside world.
type EventPublisher interface {
	Publish(ctx context.Context, record models.OutboxRecord) (serverID string, err error)
}

// PubSubPublisher publishes outbox records to a Pub/Sub topic.
type PubSubPublisher struct {
	Topic *pubsub.Topic
}

func (p *PubSubPublisher) Publish(ctx context.Context, record models.OutboxRecord) (string, error) {
	result := p.Topic.Publish(ctx, &pubsub.Message{
		Data: record.Payload,
		Attributes: map[string]string{
			"reference_type": string(record.ReferenceType),
			"reference_id":   fmt.Sprint(record.ReferenceID),
			"action":         string(record.Action),
			"correlation_id": record.CorrelationID,
		},
	})
	return result.Get(ctx)
}

// OutboxDispatcher drains committed outbox rows in the background. A
// redislock serializes dispatch across instances; when redis is absent the
// database claim (locked_at/locked_by with a stale-claim TTL) still prevents
// double publishing within the retry window.
type OutboxDispatcher struct {
	DB        *gorm.DB
	Logger    *logrus.Logger
	Publisher EventPublisher
	Locker    *redislock.Client

	WorkerID  string
	BatchSize int
	Interval  time.Duration
	LockTTL   time.Duration
}

func NewOutboxDispatcher(db *gorm.DB, logger *logrus.Logger, publisher EventPublisher, locker *redislock.Client) *OutboxDispatcher {
	return &OutboxDispatcher{
		DB:        db,
		Logger:    logger,
		Publisher: publisher,
		Locker:    locker,
		WorkerID:  "dispatch-" + uuid.NewString()[:8],
		BatchSize: 50,
		Interval:  2 * time.Second,
		LockTTL:   30 * time.Second,
	}
}

// Run loops DispatchOnce until the context is cancelled.
func (d *OutboxDispatcher) Run(ctx context.Context) {
	if d == nil || d.DB == nil || d.Publisher == nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		d.DispatchOnce(ctx)
		select {
		case <-ctx.Done():
			return
		case <-time.After(d.Interval):
		}
	}
}

// DispatchOnce claims one batch of due rows and publishes them. Exposed so
// operational tooling can drain the outbox on demand.
func (d *OutboxDispatcher) DispatchOnce(ctx context.Context) {
	if d.Locker != nil {
		lock, err := d.Locker.Obtain(ctx, "outbox-dispatch", d.LockTTL, nil)
		if err == redislock.ErrNotObtained {
			return
		}
		if err != nil {
			config.LogError(d.Logger, "outbox.go", "DispatchOnce", "ObtainLock", nil, err)
			return
		}
		defer func() { _ = lock.Release(ctx) }()
	}

	now := time.Now().UTC()
	staleBefore := now.Add(-d.LockTTL)

	var claimed []models.OutboxRecord
	err := d.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Requeue rows a crashed worker left in PROCESSING past the claim TTL;
		// without this they would never match the claim filter again.
		if err := tx.Model(&models.OutboxRecord{}).
			Where("publish_status = ? AND locked_at IS NOT NULL AND locked_at <= ?",
				models.OutboxStatusProcessing, staleBefore).
			Updates(map[string]interface{}{
				"publish_status": models.OutboxStatusPending,
				"locked_at":      nil,
				"locked_by":      nil,
			}).Error; err != nil {
			return err
		}

		if err := tx.
			Where("publish_status IN ?", []string{models.OutboxStatusPending, models.OutboxStatusFailed}).
			Where("(next_attempt_at IS NULL OR next_attempt_at <= ?)", now).
			Where("(locked_at IS NULL OR locked_at <= ?)", staleBefore).
			Order("id ASC").
			Limit(d.BatchSize).
			Find(&claimed).Error; err != nil {
			return err
		}
		if len(claimed) == 0 {
			return nil
		}
		ids := make([]int, 0, len(claimed))
		for _, r := range claimed {
			ids = append(ids, r.ID)
		}
		return tx.Model(&models.OutboxRecord{}).
			Where("id IN ?", ids).
			Updates(map[string]interface{}{
				"publish_status": models.OutboxStatusProcessing,
				"locked_at":      now,
				"locked_by":      d.WorkerID,
			}).Error
	})
	if err != nil {
		config.LogError(d.Logger, "outbox.go", "DispatchOnce", "ClaimBatch", nil, err)
		return
	}

	for _, record := range claimed {
		d.publishOne(ctx, record)
	}
}

func (d *OutboxDispatcher) publishOne(ctx context.Context, record models.OutboxRecord) {
	serverID, err := d.Publisher.Publish(ctx, record)
	now := time.Now().UTC()
	if err != nil {
		attempts := record.PublishAttempts + 1
		backoff := time.Duration(1<<min(attempts, 6)) * time.Second
		next := now.Add(backoff)
		msg := err.Error()
		updateErr := d.DB.WithContext(ctx).Model(&models.OutboxRecord{}).
			Where("id = ?", record.ID).
			Updates(map[string]interface{}{
				"publish_status":     models.OutboxStatusFailed,
				"publish_attempts":   attempts,
				"next_attempt_at":    &next,
				"last_publish_error": &msg,
				"locked_at":          nil,
				"locked_by":          nil,
			}).Error
		if updateErr != nil {
			config.LogError(d.Logger, "outbox.go", "publishOne", "MarkFailed", record.ID, updateErr)
		}
		config.LogError(d.Logger, "outbox.go", "publishOne", "Publish", record.ID, err)
		return
	}

	if err := d.DB.WithContext(ctx).Model(&models.OutboxRecord{}).
		Where("id = ?", record.ID).
		Updates(map[string]interface{}{
			"publish_status":    models.OutboxStatusSent,
			"published_at":      &now,
			"server_message_id": &serverID,
			"locked_at":         nil,
			"locked_by":         nil,
		}).Error; err != nil {
		config.LogError(d.Logger, "outbox.go", "publishOne", "MarkSent", record.ID, err)
	}
}
