package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"roamly/api/middleware"
	"roamly/api/models"
	"roamly/api/store"
	"roamly/api/utils"
)

const (
	statsWindow     = 7 * 24 * time.Hour
	maxTrackedBatch = 500
)

type AnalyticsRepository interface {
	InsertAnalyticsEvents(ctx context.Context, events []models.AnalyticsEvent) error
	GetEventCountsOverTime(ctx context.Context, interval string, start, end time.Time, eventTypeFilter string) ([]store.EventTypeCountByTime, error)
	GetAverageEventDuration(ctx context.Context, eventTypeFilter string, start, end time.Time) (float64, error)
	GetAverageCustomEventParameter(ctx context.Context, eventTypeFilter, paramName string, start, end time.Time) (float64, error)
	GetUniqueUsersOverTime(ctx context.Context, interval string, start, end time.Time) ([]store.EventTypeCountByTime, error)
	GetTopNPagePaths(ctx context.Context, start, end time.Time, limit uint64) ([]models.TopPathResult, error)
}

// AnalyticsHandlers records visitor events and serves the admin stats.
// A nil AnalyticsStore means ClickHouse is not configured.
type AnalyticsHandlers struct {
	AnalyticsStore AnalyticsRepository
	logger         *zap.Logger
	now            func() time.Time
}

func NewAnalyticsHandlers(s AnalyticsRepository, logger *zap.Logger) *AnalyticsHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsHandlers{AnalyticsStore: s, logger: logger, now: time.Now}
}

// TrackEvent accepts a batch of events from the front-end. Without ClickHouse
// the batch is dropped and the call still succeeds.
func (h *AnalyticsHandlers) TrackEvent(c *gin.Context) {
	var incoming []models.AnalyticsEvent
	if err := c.ShouldBindJSON(&incoming); err != nil {
		h.logger.Debug("bad analytics payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if len(incoming) > maxTrackedBatch {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Too many events in one batch"})
		return
	}
	if len(incoming) == 0 || h.AnalyticsStore == nil {
		c.Status(http.StatusNoContent)
		return
	}

	visitorID := middleware.VisitorID(c)
	now := h.now().UTC()
	for i := range incoming {
		incoming[i].EventID = uuid.NewString()
		incoming[i].IPAddress = c.ClientIP()
		if incoming[i].SessionID == "" {
			incoming[i].SessionID = visitorID
		}
		if incoming[i].Timestamp.IsZero() {
			incoming[i].Timestamp = now
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	if err := h.AnalyticsStore.InsertAnalyticsEvents(ctx, incoming); err != nil {
		h.logger.Error("insert analytics events", zap.Int("count", len(incoming)), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record analytics events"})
		return
	}
	c.Status(http.StatusNoContent)
}

// available writes a 503 when analytics is switched off.
func (h *AnalyticsHandlers) available(c *gin.Context) bool {
	if h.AnalyticsStore == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Analytics is not configured"})
		return false
	}
	return true
}

// parseTimeRange reads ?start= and ?end= as RFC3339. The window defaults to the last seven days.
func (h *AnalyticsHandlers) parseTimeRange(c *gin.Context) (start, end time.Time, ok bool) {
	now := h.now().UTC()
	end = now
	start = now.Add(-statsWindow)

	for _, p := range []struct {
		name string
		dst  *time.Time
	}{{"start", &start}, {"end", &end}} {
		raw := c.Query(p.name)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid '" + p.name + "' timestamp format. Use RFC3339 (e.g., 2006-01-02T15:04:05Z)"})
			return start, end, false
		}
		*p.dst = t
	}
	if !start.Before(end) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "'start' must be before 'end'"})
		return start, end, false
	}
	return start, end, true
}

func (h *AnalyticsHandlers) GetEventCountsOverTime(c *gin.Context) {
	if !h.available(c) {
		return
	}
	interval, ok := utils.CanonicalInterval(c.Query("interval"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "interval query parameter must be one of minute, hour, day, week, month, quarter, year"})
		return
	}
	start, end, ok := h.parseTimeRange(c)
	if !ok {
		return
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	results, err := h.AnalyticsStore.GetEventCountsOverTime(ctx, interval, start, end, c.Query("eventType"))
	if err != nil {
		h.logger.Error("event counts over time", zap.String("interval", interval), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve event statistics"})
		return
	}
	c.JSON(http.StatusOK, results)
}

func (h *AnalyticsHandlers) GetAverageEventDuration(c *gin.Context) {
	if !h.available(c) {
		return
	}
	eventType := c.Query("eventType")
	start, end, ok := h.parseTimeRange(c)
	if !ok {
		return
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	avg, err := h.AnalyticsStore.GetAverageEventDuration(ctx, eventType, start, end)
	if err != nil {
		h.logger.Error("average event duration", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve average event duration statistics"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"eventType":         eventType,
		"startDate":         start.Format(time.RFC3339),
		"endDate":           end.Format(time.RFC3339),
		"averageDurationMs": avg,
	})
}

func (h *AnalyticsHandlers) GetAverageCustomEventParameter(c *gin.Context) {
	if !h.available(c) {
		return
	}
	eventType := c.Query("eventType")
	paramName := c.Query("paramName")
	if eventType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "eventType query parameter is required"})
		return
	}
	if paramName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "paramName query parameter is required (e.g., 'revenue', 'score')"})
		return
	}
	start, end, ok := h.parseTimeRange(c)
	if !ok {
		return
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	avg, err := h.AnalyticsStore.GetAverageCustomEventParameter(ctx, eventType, paramName, start, end)
	if err != nil {
		h.logger.Error("average custom parameter",
			zap.String("event_type", eventType), zap.String("param", paramName), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve average custom event parameter statistics"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"eventType":    eventType,
		"paramName":    paramName,
		"startDate":    start.Format(time.RFC3339),
		"endDate":      end.Format(time.RFC3339),
		"averageValue": avg,
	})
}

func (h *AnalyticsHandlers) GetUniqueUsersOverTime(c *gin.Context) {
	if !h.available(c) {
		return
	}
	interval, ok := utils.CanonicalInterval(c.Query("interval"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "interval query parameter must be one of minute, hour, day, week, month, quarter, year"})
		return
	}
	start, end, ok := h.parseTimeRange(c)
	if !ok {
		return
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	results, err := h.AnalyticsStore.GetUniqueUsersOverTime(ctx, interval, start, end)
	if err != nil {
		h.logger.Error("unique users over time", zap.String("interval", interval), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve unique user statistics"})
		return
	}
	c.JSON(http.StatusOK, results)
}

func (h *AnalyticsHandlers) GetTopNPagePaths(c *gin.Context) {
	if !h.available(c) {
		return
	}
	start, end, ok := h.parseTimeRange(c)
	if !ok {
		return
	}

	var limit uint64 = 10
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || n == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'limit' parameter. Must be a positive integer."})
			return
		}
		limit = n
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	results, err := h.AnalyticsStore.GetTopNPagePaths(ctx, start, end, limit)
	if err != nil {
		h.logger.Error("top page paths", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve top page paths statistics"})
		return
	}
	c.JSON(http.StatusOK, results)
}
