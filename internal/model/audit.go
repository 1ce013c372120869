package model

import (
	"time"
)

// AuditRecord 代表一次请求的完整审计记录, 字段名与日志服务的写入 API 对齐
type AuditRecord struct {
	ServiceName string            `json:"service_name"`           // 上报服务名
	Method      string            `json:"method"`                 // HTTP 方法
	Path        string            `json:"path"`                   // 请求路径
	QueryParams map[string]string `json:"query_params,omitempty"` // 查询参数 (每个 key 取第一个值)
	RequestBody *string           `json:"request_body"`           // 请求体 (脱敏后), nil 表示未捕获
	// 响应详情
	ResponseBody   *string           `json:"response_body"`   // 响应体 (脱敏后), nil 表示未捕获
	StatusCode     int               `json:"status_code"`     // HTTP 状态码
	ProcessingTime int64             `json:"processing_time"` // 耗时 (毫秒)
	ClientIP       string            `json:"client_ip,omitempty"`
	UserAgent      string            `json:"user_agent,omitempty"`
	Headers        map[string]string `json:"headers,omitempty"` // 过滤后的请求头, 敏感项为 <redacted>
}

// StoredAuditRecord 是日志服务持久化后返回的记录
type StoredAuditRecord struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	AuditRecord
}
