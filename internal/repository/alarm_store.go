package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/SunilBaghel002/SankalpAlarm/internal/config"
	"github.com/SunilBaghel002/SankalpAlarm/internal/models"
)

// ErrAlarmNotFound reports a lookup for an alarm id with no stored record.
var ErrAlarmNotFound = errors.New("alarm not found")

// AlarmStore persists alarm records in Redis, one flat JSON record per alarm
// id. Read and write failures are returned to the caller, never swallowed:
// the scheduler decides how to react.
type AlarmStore struct {
	config      *config.Config
	redisClient *redis.Client
	logger      *zap.Logger
}

// NewAlarmStore creates the store.
func NewAlarmStore(cfg *config.Config, redisClient *redis.Client, logger *zap.Logger) *AlarmStore {
	return &AlarmStore{
		config:      cfg,
		redisClient: redisClient,
		logger:      logger,
	}
}

// alarmKey builds the record key for an alarm id.
func (s *AlarmStore) alarmKey(alarmID string) string {
	return s.config.Store.AlarmKeyPrefix + alarmID
}

// SaveAlarm writes one alarm record. RequiredSteps must be positive.
func (s *AlarmStore) SaveAlarm(ctx context.Context, alarm *models.AlarmConfig) error {
	if alarm == nil {
		return fmt.Errorf("alarm is required")
	}
	if alarm.ID == "" {
		return fmt.Errorf("alarm id is required")
	}
	if alarm.RequiredSteps <= 0 {
		return fmt.Errorf("required_steps must be positive, got %d", alarm.RequiredSteps)
	}
	if alarm.Hour < 0 || alarm.Hour > 23 {
		return fmt.Errorf("hour out of range: %d", alarm.Hour)
	}
	if alarm.Minute < 0 || alarm.Minute > 59 {
		return fmt.Errorf("minute out of range: %d", alarm.Minute)
	}

	jsonData, err := json.Marshal(alarm)
	if err != nil {
		return fmt.Errorf("failed to marshal alarm: %w", err)
	}

	if err := s.redisClient.Set(ctx, s.alarmKey(alarm.ID), jsonData, 0).Err(); err != nil {
		return fmt.Errorf("failed to save alarm: %w", err)
	}
	return nil
}

// LoadAlarm reads one alarm record by id.
func (s *AlarmStore) LoadAlarm(ctx context.Context, alarmID string) (*models.AlarmConfig, error) {
	if alarmID == "" {
		return nil, fmt.Errorf("alarm id is required")
	}

	val, err := s.redisClient.Get(ctx, s.alarmKey(alarmID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("%w: %s", ErrAlarmNotFound, alarmID)
		}
		return nil, fmt.Errorf("failed to load alarm: %w", err)
	}

	var alarm models.AlarmConfig
	if err := json.Unmarshal([]byte(val), &alarm); err != nil {
		return nil, fmt.Errorf("failed to unmarshal alarm: %w", err)
	}
	return &alarm, nil
}

// ListAlarms returns every stored alarm record.
func (s *AlarmStore) ListAlarms(ctx context.Context) ([]models.AlarmConfig, error) {
	keys, err := s.redisClient.Keys(ctx, s.config.Store.AlarmKeyPrefix+"*").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list alarm keys: %w", err)
	}

	alarms := make([]models.AlarmConfig, 0, len(keys))
	for _, key := range keys {
		val, err := s.redisClient.Get(ctx, key).Result()
		if err != nil {
			if err == redis.Nil {
				// Deleted between KEYS and GET.
				continue
			}
			return nil, fmt.Errorf("failed to load alarm %s: %w", key, err)
		}

		var alarm models.AlarmConfig
		if err := json.Unmarshal([]byte(val), &alarm); err != nil {
			s.logger.Warn("Skipping corrupt alarm record",
				zap.String("key", key),
				zap.Error(err),
			)
			continue
		}
		alarms = append(alarms, alarm)
	}
	return alarms, nil
}

// DeleteAlarm removes one alarm record.
func (s *AlarmStore) DeleteAlarm(ctx context.Context, alarmID string) error {
	if alarmID == "" {
		return fmt.Errorf("alarm id is required")
	}
	if err := s.redisClient.Del(ctx, s.alarmKey(alarmID)).Err(); err != nil {
		return fmt.Errorf("failed to delete alarm: %w", err)
	}
	return nil
}

// MarkTriggered durably records that the alarm fired on the given calendar
// date. The write completes before any ring is presented, so the dedup
// survives a process kill mid-ring.
func (s *AlarmStore) MarkTriggered(ctx context.Context, alarmID, date string) error {
	alarm, err := s.LoadAlarm(ctx, alarmID)
	if err != nil {
		return fmt.Errorf("failed to mark alarm triggered: %w", err)
	}

	alarm.LastTriggeredDate = &date
	if err := s.SaveAlarm(ctx, alarm); err != nil {
		return fmt.Errorf("failed to mark alarm triggered: %w", err)
	}

	s.logger.Info("Alarm marked triggered",
		zap.String("alarm_id", alarmID),
		zap.String("date", date),
	)
	return nil
}
