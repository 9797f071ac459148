// Package audit пишет события аудита в БД. Ошибки записи логируются,
// но не возвращаются: аудит не должен ломать основную операцию.
package audit

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Leganyst/booking-core/internal/model"
)

type Recorder struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewRecorder(db *gorm.DB, log *zap.Logger) *Recorder {
	return &Recorder{db: db, log: log}
}

// Record сохраняет событие. payload сериализуется в JSONB как есть.
func (r *Recorder) Record(ctx context.Context, actorUserID *uuid.UUID, eventType model.EventType, entityType, entityID string, payload map[string]any) {
	var encoded datatypes.JSON
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			r.log.Error("audit: marshal payload",
				zap.String("event_type", string(eventType)),
				zap.Error(err))
			return
		}
		encoded = datatypes.JSON(raw)
	}

	event := model.AuditEvent{
		ID:          uuid.New(),
		ActorUserID: actorUserID,
		EventType:   eventType,
		EntityType:  entityType,
		EntityID:    entityID,
		Payload:     encoded,
	}
	if err := r.db.WithContext(ctx).Create(&event).Error; err != nil {
		r.log.Error("audit: insert event",
			zap.String("event_type", string(eventType)),
			zap.String("entity_id", entityID),
			zap.Error(err))
	}
}
