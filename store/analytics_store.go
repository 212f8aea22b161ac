package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"roamly/api/database"
	"roamly/api/models"
	"roamly/api/routes"
	"roamly/api/utils"
)

type AnalyticsStore struct {
	DB     *database.ClickHouseClient
	logger *zap.Logger
}

type EventTypeCountByTime struct {
	Time      time.Time `json:"time"`
	EventType *string   `json:"eventType,omitempty"`
	Count     uint64    `json:"count"`
}

func NewAnalyticsStore(chClient *database.ClickHouseClient, logger *zap.Logger) *AnalyticsStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsStore{
		DB:     chClient,
		logger: logger,
	}
}

// RecordView stores a route change as a page_view event.
func (s *AnalyticsStore) RecordView(ctx context.Context, v routes.ViewEvent) error {
	return s.InsertAnalyticsEvents(ctx, []models.AnalyticsEvent{{
		EventID:   uuid.NewString(),
		EventType: models.EventPageView,
		SessionID: v.VisitorID,
		Timestamp: v.At,
		PagePath:  v.Path,
		Referrer:  v.Referrer,
		UserAgent: v.UserAgent,
	}})
}

func (s *AnalyticsStore) InsertAnalyticsEvents(ctx context.Context, events []models.AnalyticsEvent) error {
	if len(events) == 0 {
		return nil
	}

	// Column order must match the analytics_events schema.
	batch, err := s.DB.Conn.PrepareBatch(ctx, `
		INSERT INTO analytics_events (
			event_id, event_type, user_id, session_id, timestamp, page_path, referrer, user_agent,
			ip_address, duration_ms, products, location, event_data
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch insert: %w", err)
	}

	for _, event := range events {
		err := batch.Append(
			event.EventID,
			event.EventType,
			event.UserID,
			event.SessionID,
			event.Timestamp,
			event.PagePath,
			event.Referrer,
			event.UserAgent,
			event.IPAddress,
			event.DurationMs,
			string(event.Products),
			event.Location,
			string(event.EventData),
		)
		if err != nil {
			s.logger.Warn("append event to batch", zap.String("event_id", event.EventID), zap.Error(err))
		}
	}

	err = batch.Send()
	if err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	s.logger.Debug("inserted analytics events", zap.Int("count", len(events)))
	return nil
}

// bucketExpr returns the toStartOf<X>(timestamp) expression for interval.
func bucketExpr(interval string) (string, error) {
	bucket, ok := utils.CanonicalInterval(interval)
	if !ok {
		return "", fmt.Errorf("invalid interval: %s", interval)
	}
	return "toStartOf" + bucket + "(timestamp)", nil
}

// GetEventCountsOverTime counts events per time bucket. With an event type
// filter each row also carries the type.
func (s *AnalyticsStore) GetEventCountsOverTime(ctx context.Context, interval string, start, end time.Time, eventTypeFilter string) ([]EventTypeCountByTime, error) {
	expr, err := bucketExpr(interval)
	if err != nil {
		return nil, err
	}

	if eventTypeFilter == "" {
		query := fmt.Sprintf(`
			SELECT %s AS time_bucket, count() AS total_events
			FROM analytics_events
			WHERE timestamp >= ? AND timestamp <= ?
			GROUP BY time_bucket
			ORDER BY time_bucket ASC
		`, expr)
		return s.timeBuckets(ctx, "event counts", query, start, end)
	}

	query := fmt.Sprintf(`
		SELECT %s AS time_bucket, count() AS total_events, event_type
		FROM analytics_events
		WHERE timestamp >= ? AND timestamp <= ? AND event_type = ?
		GROUP BY time_bucket, event_type
		ORDER BY time_bucket ASC, event_type ASC
	`, expr)
	rows, err := s.DB.Conn.Query(ctx, query, start, end, eventTypeFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to query event counts over time: %w", err)
	}
	defer rows.Close()

	results := []EventTypeCountByTime{}
	for rows.Next() {
		var (
			r         EventTypeCountByTime
			eventType string
		)
		if err := rows.Scan(&r.Time, &r.Count, &eventType); err != nil {
			s.logger.Warn("scan event counts row", zap.Error(err))
			continue
		}
		r.EventType = &eventType
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during event counts over time query: %w", err)
	}
	return results, nil
}

// GetUniqueUsersOverTime counts distinct visitors per time bucket. Events
// without a user id are counted by their visitor session.
func (s *AnalyticsStore) GetUniqueUsersOverTime(ctx context.Context, interval string, start, end time.Time) ([]EventTypeCountByTime, error) {
	expr, err := bucketExpr(interval)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`
		SELECT %s AS time_bucket, uniq(if(user_id = '', session_id, user_id)) AS unique_users
		FROM analytics_events
		WHERE timestamp >= ? AND timestamp <= ?
		GROUP BY time_bucket
		ORDER BY time_bucket ASC
	`, expr)
	return s.timeBuckets(ctx, "unique users", query, start, end)
}

func (s *AnalyticsStore) timeBuckets(ctx context.Context, what, query string, args ...any) ([]EventTypeCountByTime, error) {
	rows, err := s.DB.Conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s over time: %w", what, err)
	}
	defer rows.Close()

	results := []EventTypeCountByTime{}
	for rows.Next() {
		var r EventTypeCountByTime
		if err := rows.Scan(&r.Time, &r.Count); err != nil {
			s.logger.Warn("scan time bucket row", zap.String("query", what), zap.Error(err))
			continue
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s rows: %w", what, err)
	}
	return results, nil
}

func (s *AnalyticsStore) GetAverageEventDuration(ctx context.Context, eventTypeFilter string, start, end time.Time) (float64, error) {
	query := `SELECT avg(duration_ms) FROM analytics_events WHERE timestamp >= ? AND timestamp <= ?`
	args := []any{start, end}
	if eventTypeFilter != "" {
		query += ` AND event_type = ?`
		args = append(args, eventTypeFilter)
	}
	avg, err := s.average(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to query average event duration: %w", err)
	}
	return avg, nil
}

// GetAverageCustomEventParameter averages a numeric key of event_data. The
// key is bound as a parameter, never spliced into the query.
func (s *AnalyticsStore) GetAverageCustomEventParameter(ctx context.Context, eventTypeFilter, paramName string, start, end time.Time) (float64, error) {
	if paramName == "" {
		return 0, errors.New("parameter name for average calculation cannot be empty")
	}
	avg, err := s.average(ctx, `
		SELECT avg(JSONExtractFloat(toString(event_data), ?))
		FROM analytics_events
		WHERE event_type = ? AND timestamp >= ? AND timestamp <= ?
	`, paramName, eventTypeFilter, start, end)
	if err != nil {
		return 0, fmt.Errorf("failed to query average of custom event parameter %q: %w", paramName, err)
	}
	return avg, nil
}

// average runs a single avg() query. avg over no rows is NaN, which
// encoding/json rejects, so it reads as zero.
func (s *AnalyticsStore) average(ctx context.Context, query string, args ...any) (float64, error) {
	var v float64
	if err := s.DB.Conn.QueryRow(ctx, query, args...).Scan(&v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	if math.IsNaN(v) {
		return 0, nil
	}
	return v, nil
}

// GetTopNPagePaths ranks route fragments by page views.
func (s *AnalyticsStore) GetTopNPagePaths(ctx context.Context, start, end time.Time, limit uint64) ([]models.TopPathResult, error) {
	if limit == 0 {
		limit = 10
	}
	rows, err := s.DB.Conn.Query(ctx, `
		SELECT page_path, count() AS view_count
		FROM analytics_events
		WHERE event_type = ? AND timestamp >= ? AND timestamp <= ?
		GROUP BY page_path
		ORDER BY view_count DESC
		LIMIT ?
	`, models.EventPageView, start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top page paths: %w", err)
	}
	defer rows.Close()

	results := []models.TopPathResult{}
	for rows.Next() {
		var r models.TopPathResult
		if err := rows.Scan(&r.PagePath, &r.Count); err != nil {
			s.logger.Warn("scan top paths row", zap.Error(err))
			continue
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows for top page paths: %w", err)
	}
	return results, nil
}
