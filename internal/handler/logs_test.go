package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GoNotify/notigate/internal/logclient"
	"github.com/GoNotify/notigate/internal/middleware"
)

type backendCapture struct {
	mu    sync.Mutex
	query url.Values
}

func (b *backendCapture) set(q url.Values) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.query = q
}

func (b *backendCapture) lastQuery() url.Values {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.query
}

// fakeLogBackend emulates the logging microservice endpoints the proxy uses.
func fakeLogBackend(t *testing.T) (*httptest.Server, *backendCapture) {
	t.Helper()
	capture := &backendCapture{}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/logs/", func(w http.ResponseWriter, r *http.Request) {
		capture.set(r.URL.Query())
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/logs/":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[{"id":1,"timestamp":"2026-01-02T03:04:05Z","service_name":"notification-service","method":"POST","path":"/api/v1/notifications/send","status_code":200,"processing_time":12}]`))
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/logs/42":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":42,"timestamp":"2026-01-02T03:04:05Z","service_name":"notification-service","method":"GET","path":"/x","status_code":200,"processing_time":3}`))
		case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/v1/logs/count"):
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"total_count":1234}`))
		case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/v1/logs/stats"):
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"services":[{"service_name":"notification-service","count":7}]}`))
		case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/api/v1/logs/cleanup"):
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"deleted_count":99}`))
		default:
			http.NotFound(w, r)
		}
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, capture
}

func logsRouter(baseURL string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewLogsHandler(logclient.New(baseURL, time.Second))

	router := gin.New()
	router.Use(middleware.ErrorHandler())
	logs := router.Group("/api/v1/logs")
	logs.GET("", h.List)
	logs.GET("/:id", h.Get)
	logs.GET("/:id/:sub", h.Subresource)
	logs.DELETE("/cleanup", h.Cleanup)
	return router
}

func TestLogsListForwardsFilters(t *testing.T) {
	server, capture := fakeLogBackend(t)
	router := logsRouter(server.URL)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/logs?limit=50&service_name=notification-service&status_code=200&start_date=2026-01-01T00:00:00Z", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	q := capture.lastQuery()
	if q.Get("limit") != "50" || q.Get("skip") != "0" {
		t.Fatalf("pagination not forwarded: %v", q)
	}
	if q.Get("service_name") != "notification-service" || q.Get("status_code") != "200" {
		t.Fatalf("filters not forwarded: %v", q)
	}
	if q.Get("start_date") != "2026-01-01T00:00:00Z" {
		t.Fatalf("start_date not forwarded: %v", q)
	}

	var records []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatalf("bad response json: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
}

func TestLogsListRejectsBadParams(t *testing.T) {
	server, _ := fakeLogBackend(t)
	router := logsRouter(server.URL)

	for _, target := range []string{
		"/api/v1/logs?limit=0",
		"/api/v1/logs?limit=5000",
		"/api/v1/logs?skip=-1",
		"/api/v1/logs?status_code=abc",
		"/api/v1/logs?start_date=yesterday",
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, rec.Code)
		}
	}
}

func TestLogsGetByID(t *testing.T) {
	server, _ := fakeLogBackend(t)
	router := logsRouter(server.URL)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/logs/42", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"id":42`) {
		t.Fatalf("record not returned: %s", rec.Body.String())
	}
}

func TestLogsGetNotFound(t *testing.T) {
	server, _ := fakeLogBackend(t)
	router := logsRouter(server.URL)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/logs/777", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "NOT_FOUND") {
		t.Fatalf("missing error code: %s", rec.Body.String())
	}
}

func TestLogsGetRejectsNonNumericID(t *testing.T) {
	server, _ := fakeLogBackend(t)
	router := logsRouter(server.URL)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/logs/abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLogsCount(t *testing.T) {
	server, _ := fakeLogBackend(t)
	router := logsRouter(server.URL)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/logs/count/total?service_name=notification-service", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"total_count":1234`) {
		t.Fatalf("count not returned: %s", rec.Body.String())
	}
}

func TestLogsUnknownSubresource(t *testing.T) {
	server, _ := fakeLogBackend(t)
	router := logsRouter(server.URL)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/logs/stats/methods", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestLogsCleanup(t *testing.T) {
	server, capture := fakeLogBackend(t)
	router := logsRouter(server.URL)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/logs/cleanup?days_old=7", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if capture.lastQuery().Get("days_old") != "7" {
		t.Fatalf("days_old not forwarded: %v", capture.lastQuery())
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/logs/cleanup?days_old=0", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("days_old=0 should be 400, got %d", rec.Code)
	}
}

func TestLogsBackendDown(t *testing.T) {
	// 没有监听者的地址, 连接立即被拒绝
	router := logsRouter("http://127.0.0.1:1")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/logs", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "LOGS_UNAVAILABLE") {
		t.Fatalf("missing error code: %s", rec.Body.String())
	}
}
