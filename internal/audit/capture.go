// Package audit captures request/response payloads, assembles audit records,
// and ships them to the remote logging service without ever blocking or
// failing the request that produced them.
package audit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/GoNotify/notigate/internal/masking"
)

// StreamingSentinel replaces the body of responses flushed mid-handler.
const StreamingSentinel = "<streaming response>"

// CaptureKind classifies what a capture attempt produced.
type CaptureKind int

const (
	KindAbsent CaptureKind = iota // 未捕获 (为空/类型不在白名单/开关关闭)
	KindJSON                      // JSON 解码成功并结构化脱敏
	KindText                      // UTF-8 文本, 按规则脱敏
	KindTooLarge
	KindBinary
	KindStream
	KindError
)

// CaptureResult is the outcome of one body capture. Content holds either the
// masked payload or a sentinel string describing why there is no payload.
type CaptureResult struct {
	Kind    CaptureKind
	Content string
}

// Value returns the wire representation: nil when nothing was captured.
func (r CaptureResult) Value() *string {
	if r.Kind == KindAbsent {
		return nil
	}
	s := r.Content
	return &s
}

// loggableTypes 按前缀匹配 Content-Type, 不在列表内的一律不捕获
var loggableTypes = []string{
	"application/json",
	"application/x-www-form-urlencoded",
	"text/plain",
	"text/html",
	"text/xml",
	"application/xml",
}

func shouldCapture(contentType string) bool {
	if contentType == "" {
		return false
	}
	for _, t := range loggableTypes {
		if strings.HasPrefix(contentType, t) {
			return true
		}
	}
	return false
}

// CaptureBody classifies and masks a fully buffered payload.
// JSON 优先, 退回纯文本, 再退回二进制哨兵
func CaptureBody(body []byte, contentType string, maxSize int, policy *masking.Policy) CaptureResult {
	if len(body) == 0 || !shouldCapture(contentType) {
		return CaptureResult{Kind: KindAbsent}
	}
	if len(body) > maxSize {
		return CaptureResult{
			Kind:    KindTooLarge,
			Content: fmt.Sprintf("<body too large: %d bytes>", len(body)),
		}
	}
	if !utf8.Valid(body) {
		return CaptureResult{
			Kind:    KindBinary,
			Content: fmt.Sprintf("<binary data: %d bytes>", len(body)),
		}
	}
	if masked, ok := maskJSON(body, policy); ok {
		return CaptureResult{Kind: KindJSON, Content: masked}
	}
	return CaptureResult{Kind: KindText, Content: policy.MaskText(string(body))}
}

func maskJSON(body []byte, policy *masking.Policy) (string, bool) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber() // 数字保持原样, 避免 float64 往返丢精度
	var v any
	if err := dec.Decode(&v); err != nil {
		return "", false
	}
	if dec.More() {
		// 尾部还有内容, 不是单个 JSON 文档
		return "", false
	}
	out, err := json.Marshal(policy.MaskStructured(v))
	if err != nil {
		return "", false
	}
	return string(out), true
}

// CaptureRequest reads and captures an inbound request body, then restores
// r.Body so downstream binding can read it again. A body whose declared
// length already exceeds maxSize is never read at all.
func CaptureRequest(r *http.Request, maxSize int, enabled bool, policy *masking.Policy) CaptureResult {
	if !enabled || !shouldCapture(r.Header.Get("Content-Type")) {
		return CaptureResult{Kind: KindAbsent}
	}
	if r.ContentLength > int64(maxSize) {
		return CaptureResult{
			Kind:    KindTooLarge,
			Content: fmt.Sprintf("<body too large: %d bytes>", r.ContentLength),
		}
	}
	if r.Body == nil {
		return CaptureResult{Kind: KindAbsent}
	}

	body, err := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil {
		return CaptureResult{
			Kind:    KindError,
			Content: fmt.Sprintf("<error reading body: %v>", err),
		}
	}
	return CaptureBody(body, r.Header.Get("Content-Type"), maxSize, policy)
}

// CaptureResponse classifies an already teed response body. A streamed
// response is never reconstructed from the buffer; totalSize carries the real
// number of bytes written even when the buffer was capped early.
func CaptureResponse(streamed bool, body []byte, totalSize int, contentType string, maxSize int, enabled bool, policy *masking.Policy) CaptureResult {
	if !enabled {
		return CaptureResult{Kind: KindAbsent}
	}
	if streamed {
		return CaptureResult{Kind: KindStream, Content: StreamingSentinel}
	}
	if totalSize > maxSize {
		if !shouldCapture(contentType) {
			return CaptureResult{Kind: KindAbsent}
		}
		return CaptureResult{
			Kind:    KindTooLarge,
			Content: fmt.Sprintf("<body too large: %d bytes>", totalSize),
		}
	}
	return CaptureBody(body, contentType, maxSize, policy)
}
