package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const DefaultActivityLimit = 50

// CreateActivity records an entry in the user's activity feed. Failures are
// logged and returned, but callers on a success path typically treat them as
// non-fatal: the triggering operation has already committed.
func CreateActivity(ctx context.Context, db *gorm.DB, userId uint, activityType, description string, metadata map[string]any) error {
	var metadataJSON datatypes.JSON = nil
	if metadata != nil {
		b, err := json.Marshal(metadata)
		if err != nil {
			return fmt.Errorf("could not marshal activity metadata: %w", err)
		}
		metadataJSON = datatypes.JSON(b)
	}

	activity := Activity{
		UserId:      userId,
		Type:        activityType,
		Description: description,
		Metadata:    metadataJSON,
	}
	if err := db.WithContext(ctx).Create(&activity).Error; err != nil {
		slog.Error("error creating activity", "user_id", userId, "type", activityType, "error", err)
		return err
	}
	return nil
}

func GetActivities(ctx context.Context, db *gorm.DB, userId uint, limit int) ([]Activity, error) {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}

	var activities []Activity
	err := db.WithContext(ctx).
		Where("user_id = ?", userId).
		Order("created_at DESC").
		Limit(limit).
		Find(&activities).Error
	if err != nil {
		return nil, fmt.Errorf("error fetching activities: %w", err)
	}
	return activities, nil
}
