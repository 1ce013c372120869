package audit

import (
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/GoNotify/notigate/internal/masking"
	"github.com/GoNotify/notigate/internal/model"
)

// RecordInput carries everything BuildRecord needs, already snapshotted from
// the live request so assembly can run on a background goroutine.
type RecordInput struct {
	ServiceName    string
	Method         string
	Path           string
	Query          url.Values
	Headers        http.Header
	ClientIP       string
	UserAgent      string
	RequestBody    CaptureResult
	ResponseBody   CaptureResult
	StatusCode     int
	ProcessingTime int64 // 毫秒
}

// BuildRecord assembles the wire record. Header filtering runs here so its
// cost stays off the request path.
func BuildRecord(in RecordInput, policy *masking.Policy) *model.AuditRecord {
	return &model.AuditRecord{
		ServiceName:    in.ServiceName,
		Method:         in.Method,
		Path:           in.Path,
		QueryParams:    flattenQuery(in.Query),
		RequestBody:    in.RequestBody.Value(),
		ResponseBody:   in.ResponseBody.Value(),
		StatusCode:     in.StatusCode,
		ProcessingTime: in.ProcessingTime,
		ClientIP:       in.ClientIP,
		UserAgent:      in.UserAgent,
		Headers:        policy.FilterHeaders(in.Headers),
	}
}

// flattenQuery 每个 key 只保留第一个值
func flattenQuery(q url.Values) map[string]string {
	if len(q) == 0 {
		return nil
	}
	out := make(map[string]string, len(q))
	for k, vs := range q {
		if len(vs) > 0 {
			out[k] = vs[0]
		}
	}
	return out
}

// ClientIP resolves the caller address, trusting reverse-proxy headers over
// the raw socket peer: X-Forwarded-For (first entry), then X-Real-IP, then
// RemoteAddr.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
