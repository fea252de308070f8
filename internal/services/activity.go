package services

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/avelldro/converse-backend/internal/platform/logger"
)

// ActivityRecorder captures audit events. Recording is best-effort and
// never fails the operation that produced the event.
type ActivityRecorder interface {
	Record(ctx context.Context, userID uuid.UUID, action string, fields map[string]any)
}

type activityService struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

// NewActivityService publishes events to Redis when REDIS_ADDR is set and
// reachable, and degrades to log-only otherwise.
func NewActivityService(log *logger.Logger) ActivityRecorder {
	svcLog := log.With("service", "ActivityService")

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		svcLog.Info("REDIS_ADDR not set; activity events are log-only")
		return &activityService{log: svcLog}
	}
	ch := strings.TrimSpace(os.Getenv("REDIS_ACTIVITY_CHANNEL"))
	if ch == "" {
		ch = "activity"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		svcLog.Warn("redis unreachable; activity events are log-only", "addr", addr, "error", err)
		_ = rdb.Close()
		return &activityService{log: svcLog}
	}

	return &activityService{log: svcLog, rdb: rdb, channel: ch}
}

type activityEvent struct {
	UserID string         `json:"user_id"`
	Action string         `json:"action"`
	At     time.Time      `json:"at"`
	Fields map[string]any `json:"fields,omitempty"`
}

func (s *activityService) Record(ctx context.Context, userID uuid.UUID, action string, fields map[string]any) {
	if s == nil || action == "" {
		return
	}
	s.log.Info("activity", "action", action, "user_id", userID, "fields", fields)

	if s.rdb == nil {
		return
	}
	raw, err := json.Marshal(activityEvent{
		UserID: userID.String(),
		Action: action,
		At:     time.Now().UTC(),
		Fields: fields,
	})
	if err != nil {
		s.log.Warn("activity event marshal failed", "action", action, "error", err)
		return
	}
	if err := s.rdb.Publish(ctx, s.channel, raw).Err(); err != nil {
		s.log.Warn("activity event publish failed", "action", action, "error", err)
	}
}
