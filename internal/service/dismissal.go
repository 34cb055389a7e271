package service

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/SunilBaghel002/SankalpAlarm/internal/config"
	"github.com/SunilBaghel002/SankalpAlarm/internal/models"
	"github.com/SunilBaghel002/SankalpAlarm/internal/motion"
	"github.com/SunilBaghel002/SankalpAlarm/internal/repository"
	"github.com/SunilBaghel002/SankalpAlarm/internal/scheduler"
	"github.com/SunilBaghel002/SankalpAlarm/internal/sensor"
)

// DismissalService wires the layers together: the scheduler raises a ring,
// the motion session counts validated steps, and the wake history records the
// outcome. One ring is active at a time; the scheduler does not poll again
// until the active ring finishes.
type DismissalService struct {
	config      *config.Config
	db          *sql.DB
	redisClient *redis.Client
	mqttClient  mqtt.Client
	logger      *zap.Logger

	alarmStore *repository.AlarmStore
	wakeEvents *repository.WakeEventRepository
	scheduler  *scheduler.Scheduler
	source     sensor.Source
	feedback   Feedback
	notifier   *RingNotifier

	mu      sync.Mutex
	session *motion.Session
	current *models.AlarmConfig
}

// NewDismissalService connects the backing stores and builds every layer.
func NewDismissalService(cfg *config.Config, logger *zap.Logger) (*DismissalService, error) {
	db, err := sql.Open("postgres", buildDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTT.BrokerURL).
		SetClientID(cfg.MQTT.ClientID).
		SetAutoReconnect(true)
	mqttClient := mqtt.NewClient(opts)
	if token := mqttClient.Connect(); !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqtt connect timed out: %s", cfg.MQTT.BrokerURL)
	} else if err := token.Error(); err != nil {
		return nil, fmt.Errorf("failed to connect mqtt broker: %w", err)
	}

	alarmStore := repository.NewAlarmStore(cfg, redisClient, logger)
	wakeEvents := repository.NewWakeEventRepository(db, cfg.Store.WakeEventCap, logger)

	source := sensor.NewMQTTSource(mqttClient, cfg.MQTT.SampleTopic, logger)
	source.SetSampleInterval(cfg.Motion.SampleIntervalMs)

	s := &DismissalService{
		config:      cfg,
		db:          db,
		redisClient: redisClient,
		mqttClient:  mqttClient,
		logger:      logger,
		alarmStore:  alarmStore,
		wakeEvents:  wakeEvents,
		source:      source,
		feedback:    NewLogFeedback(logger),
		notifier:    NewRingNotifier(mqttClient, cfg.MQTT.AlertTopic, logger),
	}

	s.scheduler = scheduler.New(
		alarmStore,
		scheduler.SystemClock{},
		time.Duration(cfg.Scheduler.PollIntervalSec)*time.Second,
		s.handleRing,
		logger,
	)

	return s, nil
}

// SetFeedback replaces the default logging feedback with a device bridge.
// Must be called before Start.
func (s *DismissalService) SetFeedback(fb Feedback) {
	s.feedback = fb
}

// AlarmStore exposes the alarm persistence layer for management surfaces.
func (s *DismissalService) AlarmStore() *repository.AlarmStore {
	return s.alarmStore
}

// WakeEvents exposes the wake history for management surfaces.
func (s *DismissalService) WakeEvents() *repository.WakeEventRepository {
	return s.wakeEvents
}

// Start runs the scheduler poll loop until the context is cancelled.
func (s *DismissalService) Start(ctx context.Context) error {
	s.logger.Info("Starting dismissal service",
		zap.Int("poll_interval_sec", s.config.Scheduler.PollIntervalSec),
	)
	return s.scheduler.Start(ctx)
}

// Stop tears down the active session, if any, and closes every connection.
func (s *DismissalService) Stop() error {
	s.logger.Info("Stopping dismissal service")

	s.mu.Lock()
	session := s.session
	s.session = nil
	s.current = nil
	s.mu.Unlock()

	if session != nil {
		s.feedback.StopSound()
		if err := session.Stop(); err != nil {
			s.logger.Error("Failed to stop detection session",
				zap.Error(err),
			)
		}
	}

	s.mqttClient.Disconnect(250)

	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close database",
			zap.Error(err),
		)
	}
	if err := s.redisClient.Close(); err != nil {
		s.logger.Error("Failed to close redis",
			zap.Error(err),
		)
	}
	return nil
}

// handleRing is the scheduler's onRing callback. The alarm is already marked
// triggered for today; from here the ring stays active until the step target
// is reached or the sensor proves unavailable.
func (s *DismissalService) handleRing(alarm models.AlarmConfig) {
	s.logger.Info("Alarm ringing",
		zap.String("alarm_id", alarm.ID),
		zap.String("alarm", formatRingLabel(alarm)),
		zap.Int("required_steps", alarm.RequiredSteps),
	)

	s.feedback.PlayLoopingSound()
	s.notifier.NotifyRing(alarm)

	session := motion.NewSession(motion.DefaultConfig(), alarm.RequiredSteps, s.logger)
	session.OnStepResult(func(step models.StepEvent, result models.ValidationResult) {
		if !result.Valid {
			return
		}
		s.feedback.Vibrate(50)
		s.notifier.NotifyProgress(alarm, session.StepCount())
	})
	session.OnComplete(func(steps int) {
		s.finishRing(alarm, steps, true)
	})

	s.mu.Lock()
	s.session = session
	s.current = &alarm
	s.mu.Unlock()

	if err := session.Start(s.source); err != nil {
		// Without samples the target can never be reached. Record the
		// failed wake and release the ring instead of sounding forever.
		s.logger.Error("Cannot start detection session, abandoning ring",
			zap.String("alarm_id", alarm.ID),
			zap.Error(err),
		)
		s.finishRing(alarm, 0, false)
	}
}

// finishRing ends the active ring: stop the sound, release the sensor,
// record the wake event and let the scheduler poll again.
func (s *DismissalService) finishRing(alarm models.AlarmConfig, steps int, success bool) {
	s.mu.Lock()
	session := s.session
	s.session = nil
	s.current = nil
	s.mu.Unlock()

	if session == nil {
		// Already finished (shutdown raced the completion callback).
		return
	}

	s.feedback.StopSound()
	if err := session.Stop(); err != nil {
		s.logger.Error("Failed to stop detection session",
			zap.String("alarm_id", alarm.ID),
			zap.Error(err),
		)
	}

	if success {
		s.notifier.NotifyDismissed(alarm, steps)
	}

	now := time.Now()
	event := &models.WakeEvent{
		EventID:     uuid.New().String(),
		AlarmID:     alarm.ID,
		Date:        scheduler.DateString(now),
		StepsWalked: steps,
		Success:     success,
		WokeAt:      now,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.wakeEvents.CreateWakeEvent(ctx, event); err != nil {
		s.logger.Error("Failed to record wake event",
			zap.String("alarm_id", alarm.ID),
			zap.Error(err),
		)
	}

	s.scheduler.RingFinished()

	s.logger.Info("Ring finished",
		zap.String("alarm_id", alarm.ID),
		zap.Int("steps_walked", steps),
		zap.Bool("success", success),
	)
}

// buildDSN builds the PostgreSQL connection string.
func buildDSN(cfg *config.Config) string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Database,
		cfg.Database.SSLMode,
	)
}
