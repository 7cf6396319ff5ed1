package crm

import (
	"context"
	"encoding/json"
	"time"

	"crm-copilot/backend/internal/models"
	"crm-copilot/backend/pkg/logger"
)

// ActivityRecorder appends audit-trail entries. It is called explicitly
// by the operation that performed the primary write, after that write
// succeeded; a recording failure is logged and never aborts the caller.
type ActivityRecorder struct {
	store  ActivityStore
	logger *logger.Logger
}

func NewActivityRecorder(store ActivityStore, log *logger.Logger) *ActivityRecorder {
	return &ActivityRecorder{store: store, logger: log}
}

// Record writes one activity entry, best effort.
func (r *ActivityRecorder) Record(ctx context.Context, userID uint, action, entityType, entityName string, details map[string]any) {
	activity := &models.Activity{
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityName: entityName,
		Timestamp:  time.Now(),
	}
	if len(details) > 0 {
		if data, err := json.Marshal(details); err == nil {
			activity.Details = string(data)
		}
	}

	if err := r.store.Create(ctx, activity); err != nil {
		r.logger.LogError(err, "Activity logging failed", "action", action, "user_id", userID)
	}
}
