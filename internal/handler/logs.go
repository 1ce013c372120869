package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GoNotify/notigate/internal/logclient"
	"github.com/GoNotify/notigate/internal/pkg/apperrors"
)

// LogsHandler proxies read queries to the logging microservice so operators
// can inspect audit records without talking to it directly.
type LogsHandler struct {
	client *logclient.Client
}

func NewLogsHandler(client *logclient.Client) *LogsHandler {
	return &LogsHandler{client: client}
}

func (h *LogsHandler) List(c *gin.Context) {
	filter, err := filterFromQuery(c, true)
	if err != nil {
		c.Error(apperrors.NewInvalidRequest(err.Error()))
		return
	}

	records, err := h.client.List(c.Request.Context(), filter)
	if err != nil {
		c.Error(mapLogsError(err))
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *LogsHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(apperrors.NewInvalidRequest("log id must be an integer"))
		return
	}

	record, err := h.client.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, logclient.ErrNotFound) {
			c.Error(apperrors.New(apperrors.ErrNotFound, fmt.Sprintf("Log entry with ID %d not found", id), nil))
			return
		}
		c.Error(mapLogsError(err))
		return
	}
	c.JSON(http.StatusOK, record)
}

// Subresource dispatches GET /logs/count/total and GET /logs/stats/services.
// gin 的路由树不允许静态段和 :id 通配符同级共存, 只能在这里手工分发
func (h *LogsHandler) Subresource(c *gin.Context) {
	switch c.Param("id") + "/" + c.Param("sub") {
	case "count/total":
		h.Count(c)
	case "stats/services":
		h.ServiceStats(c)
	default:
		c.Error(apperrors.New(apperrors.ErrNotFound, "unknown logs endpoint", nil))
	}
}

func (h *LogsHandler) Count(c *gin.Context) {
	filter, err := filterFromQuery(c, false)
	if err != nil {
		c.Error(apperrors.NewInvalidRequest(err.Error()))
		return
	}

	total, err := h.client.Count(c.Request.Context(), filter)
	if err != nil {
		c.Error(mapLogsError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"total_count": total})
}

func (h *LogsHandler) ServiceStats(c *gin.Context) {
	stats, err := h.client.ServiceStats(c.Request.Context())
	if err != nil {
		c.Error(mapLogsError(err))
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *LogsHandler) Cleanup(c *gin.Context) {
	daysOld := 30
	if raw := c.Query("days_old"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.Error(apperrors.NewInvalidRequest("days_old must be a positive integer"))
			return
		}
		daysOld = parsed
	}

	result, err := h.client.Cleanup(c.Request.Context(), daysOld)
	if err != nil {
		c.Error(mapLogsError(err))
		return
	}
	c.JSON(http.StatusOK, result)
}

func filterFromQuery(c *gin.Context, paged bool) (logclient.Filter, error) {
	var f logclient.Filter

	if paged {
		if raw := c.Query("skip"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 0 {
				return f, fmt.Errorf("skip must be a non-negative integer")
			}
			f.Skip = parsed
		}
		f.Limit = 100
		if raw := c.Query("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 || parsed > 1000 {
				return f, fmt.Errorf("limit must be between 1 and 1000")
			}
			f.Limit = parsed
		}
	}

	f.ServiceName = c.Query("service_name")
	f.Method = c.Query("method")
	f.ClientIP = c.Query("client_ip")

	if raw := c.Query("status_code"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return f, fmt.Errorf("status_code must be an integer")
		}
		f.StatusCode = parsed
	}
	if raw := c.Query("start_date"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return f, fmt.Errorf("start_date must be RFC3339")
		}
		f.StartDate = t
	}
	if raw := c.Query("end_date"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return f, fmt.Errorf("end_date must be RFC3339")
		}
		f.EndDate = t
	}

	return f, nil
}

func mapLogsError(err error) *apperrors.AppError {
	if errors.Is(err, logclient.ErrUnavailable) {
		return apperrors.NewLogsBackend(err)
	}
	return apperrors.New(apperrors.ErrInternal, err.Error(), err)
}
