package middleware

import (
	"bytes"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/GoNotify/notigate/internal/audit"
	"github.com/GoNotify/notigate/internal/masking"
)

// AuditConfig 控制审计捕获行为, 由配置装配
type AuditConfig struct {
	ServiceName     string
	LogRequestBody  bool
	LogResponseBody bool
	MaxBodySize     int
	ExcludedPaths   map[string]struct{}
}

// DefaultExcludedPaths 健康检查/指标/文档等非业务路径不进审计
func DefaultExcludedPaths() map[string]struct{} {
	return map[string]struct{}{
		"/health":       {},
		"/metrics":      {},
		"/docs":         {},
		"/redoc":        {},
		"/openapi.json": {},
		"/favicon.ico":  {},
		"/":             {},
	}
}

// bodyWriter 包装 ResponseWriter 捕获响应体
// 写出超过 limit 后停止缓冲但继续计数; Flush 标记为流式响应
type bodyWriter struct {
	gin.ResponseWriter
	body     *bytes.Buffer
	limit    int
	size     int
	streamed bool
}

func (w *bodyWriter) Write(b []byte) (int, error) {
	w.size += len(b)
	if !w.streamed && w.body.Len() <= w.limit {
		w.body.Write(b)
	}
	return w.ResponseWriter.Write(b)
}

func (w *bodyWriter) WriteString(s string) (int, error) {
	w.size += len(s)
	if !w.streamed && w.body.Len() <= w.limit {
		w.body.WriteString(s)
	}
	return w.ResponseWriter.WriteString(s)
}

func (w *bodyWriter) Flush() {
	w.streamed = true
	w.ResponseWriter.Flush()
}

// RequestAudit intercepts every non-excluded request, captures and masks both
// bodies, and hands a snapshot to the emitter. The response returned to the
// caller is never altered or delayed by audit work.
func RequestAudit(cfg AuditConfig, policy *masking.Policy, emitter *audit.Emitter) gin.HandlerFunc {
	excluded := cfg.ExcludedPaths
	if excluded == nil {
		excluded = DefaultExcludedPaths()
	}

	return func(c *gin.Context) {
		if _, skip := excluded[c.Request.URL.Path]; skip {
			c.Next()
			return
		}

		start := time.Now()
		c.Header("X-Request-ID", uuid.New().String())

		// 1. 同步捕获请求体 (读取后写回, 后续 Bind 不受影响)
		reqBody := audit.CaptureRequest(c.Request, cfg.MaxBodySize, cfg.LogRequestBody, policy)

		// 2. 包装 ResponseWriter 捕获响应
		bw := &bodyWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}, limit: cfg.MaxBodySize}
		c.Writer = bw

		// === 执行业务逻辑 ===
		c.Next()

		// 3. 捕获响应体并计时
		respBody := audit.CaptureResponse(bw.streamed, bw.body.Bytes(), bw.size,
			c.Writer.Header().Get("Content-Type"), cfg.MaxBodySize, cfg.LogResponseBody, policy)
		elapsed := time.Since(start).Milliseconds()

		// 4. 快照请求元数据, 组装与发送都在后台完成
		emitter.Emit(audit.RecordInput{
			ServiceName:    cfg.ServiceName,
			Method:         c.Request.Method,
			Path:           c.Request.URL.Path,
			Query:          c.Request.URL.Query(),
			Headers:        c.Request.Header.Clone(),
			ClientIP:       audit.ClientIP(c.Request),
			UserAgent:      c.Request.UserAgent(),
			RequestBody:    reqBody,
			ResponseBody:   respBody,
			StatusCode:     c.Writer.Status(),
			ProcessingTime: elapsed,
		})
	}
}
