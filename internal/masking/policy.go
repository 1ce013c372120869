// Package masking implements the data-masking rules applied to audit output:
// structured (JSON) masking by field name, pattern masking over free text,
// and request-header redaction.
package masking

import (
	"regexp"
	"strings"
)

// HeaderRedacted replaces the value of sensitive headers in audit output.
const HeaderRedacted = "<redacted>"

// sensitiveFields 按小写子串匹配字段名, 命中即整体脱敏
var sensitiveFields = []string{
	// password related
	"password", "passwd", "pwd", "pass", "passphrase",
	"confirm_password", "new_password", "old_password", "current_password",
	"password_confirmation", "password_confirm", "repeat_password",

	// authentication tokens
	"token", "access_token", "refresh_token", "auth_token", "bearer_token",
	"jwt", "jwt_token", "session_token", "csrf_token", "xsrf_token",

	// API keys and secrets
	"secret", "api_key", "apikey", "api_secret", "client_secret",
	"private_key", "public_key", "encryption_key", "signing_key",

	// authentication context
	"auth", "authorization", "credential", "credentials",
	"session", "session_id", "cookie", "cookies",

	// personal information
	"pin", "ssn", "social_security", "social_security_number",
	"credit_card", "card_number", "card_num", "cvv", "cvc", "cvv2",
	"bank_account", "account_number", "routing_number",

	// one-time codes
	"otp", "verification_code", "reset_code", "activation_code",
	"security_question", "security_answer", "backup_codes",
}

type textRule struct {
	re   *regexp.Regexp
	repl string
}

// textRules 顺序即应用顺序, 后面的规则作用在前面替换过的文本上
var textRules = []textRule{
	{regexp.MustCompile(`(?i)(password[=:]\s*)([^&\s\n\r]+)`), "${1}***"},
	{regexp.MustCompile(`(?i)(passwd[=:]\s*)([^&\s\n\r]+)`), "${1}***"},
	{regexp.MustCompile(`(?i)(pwd[=:]\s*)([^&\s\n\r]+)`), "${1}***"},
	{regexp.MustCompile(`(?i)(token[=:]\s*)([^&\s\n\r]+)`), "${1}***"},
	{regexp.MustCompile(`(?i)(secret[=:]\s*)([^&\s\n\r]+)`), "${1}***"},
	{regexp.MustCompile(`(?i)(key[=:]\s*)([^&\s\n\r]+)`), "${1}***"},
	{regexp.MustCompile(`(?i)(api[_-]?key[=:]\s*)([^&\s\n\r]+)`), "${1}***"},
	{regexp.MustCompile(`(?i)(access[_-]?token[=:]\s*)([^&\s\n\r]+)`), "${1}***"},
	{regexp.MustCompile(`(?i)(\d{4}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4})`), "****-****-****-****"},
}

// sensitiveHeaders 的值在审计记录中一律替换为 HeaderRedacted
var sensitiveHeaders = map[string]struct{}{
	"authorization":  {},
	"cookie":         {},
	"x-api-key":      {},
	"x-auth-token":   {},
	"x-access-token": {},
}

// Policy holds the full masking rule set. Construct once via NewPolicy and
// share; all methods are safe for concurrent use.
type Policy struct {
	fields  []string
	rules   []textRule
	headers map[string]struct{}
}

func NewPolicy() *Policy {
	return &Policy{
		fields:  sensitiveFields,
		rules:   textRules,
		headers: sensitiveHeaders,
	}
}

// IsSensitiveField reports whether a field name should have its value masked.
// 子串匹配: "user_password_hash" 同样命中 "password"
func (p *Policy) IsSensitiveField(name string) bool {
	lower := strings.ToLower(name)
	for _, s := range p.fields {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}
