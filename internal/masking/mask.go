package masking

import (
	"fmt"
	"net/http"
	"strings"
)

// MaskValue masks a single sensitive value, keeping a short prefix and suffix
// as a debugging hint. nil stays nil; everything else is stringified first.
// 按 rune 计长, 多字节字符不会被截断
func (p *Policy) MaskValue(v any) any {
	if v == nil {
		return nil
	}
	runes := []rune(fmt.Sprintf("%v", v))
	n := len(runes)
	switch {
	case n <= 2:
		return "***"
	case n <= 6:
		return string(runes[0]) + strings.Repeat("*", n-2) + string(runes[n-1])
	default:
		return string(runes[:2]) + strings.Repeat("*", n-4) + string(runes[n-2:])
	}
}

// MaskStructured walks a decoded JSON value and masks the values of sensitive
// fields. The input is never mutated; the output keeps the same shape.
func (p *Policy) MaskStructured(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if p.IsSensitiveField(k) {
				out[k] = p.MaskValue(val)
			} else {
				out[k] = p.MaskStructured(val)
			}
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = p.MaskStructured(item)
		}
		return out
	default:
		// 标量原样保留
		return v
	}
}

// MaskText applies the text substitution rules in declaration order over
// unstructured text (form bodies, query strings, plain logs).
func (p *Policy) MaskText(text string) string {
	masked := text
	for _, r := range p.rules {
		masked = r.re.ReplaceAllString(masked, r.repl)
	}
	return masked
}

// FilterHeaders copies request headers for audit output, redacting sensitive
// ones. Multi-valued headers are joined with ", "; name casing is preserved.
func (p *Policy) FilterHeaders(h http.Header) map[string]string {
	if len(h) == 0 {
		return nil
	}
	out := make(map[string]string, len(h))
	for name, values := range h {
		if _, ok := p.headers[strings.ToLower(name)]; ok {
			out[name] = HeaderRedacted
			continue
		}
		out[name] = strings.Join(values, ", ")
	}
	return out
}
