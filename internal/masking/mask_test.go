package masking

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskValue(t *testing.T) {
	p := NewPolicy()

	assert.Nil(t, p.MaskValue(nil))

	cases := []struct {
		in   any
		want string
	}{
		{"", "***"},
		{"a", "***"},
		{"ab", "***"},
		{"abc", "a*c"},
		{"secret", "s****t"},
		{"hunter2", "hu***r2"},
		{"supersecretvalue", "su************ue"},
		{json.Number("12345"), "1***5"},
		{true, "t**e"},
		{"пароль", "п****ь"}, // rune 计数, 不按字节
	}
	for _, c := range cases {
		assert.Equal(t, c.want, p.MaskValue(c.in), "input %v", c.in)
	}
}

func TestMaskStructured(t *testing.T) {
	p := NewPolicy()

	in := map[string]any{
		"email":    "user@example.com",
		"password": "hunter2",
		"profile": map[string]any{
			"api_key": "abcdef123",
			"name":    "bob",
		},
		"items": []any{
			map[string]any{"token": "tok_12345", "qty": json.Number("2")},
			"plain",
		},
	}

	out, ok := p.MaskStructured(in).(map[string]any)
	assert.True(t, ok)

	assert.Equal(t, "user@example.com", out["email"])
	assert.Equal(t, "hu***r2", out["password"])

	profile := out["profile"].(map[string]any)
	assert.Equal(t, "ab*****23", profile["api_key"])
	assert.Equal(t, "bob", profile["name"])

	items := out["items"].([]any)
	first := items[0].(map[string]any)
	assert.Equal(t, "to*****45", first["token"])
	assert.Equal(t, json.Number("2"), first["qty"])
	assert.Equal(t, "plain", items[1])

	// 输入不被修改
	assert.Equal(t, "hunter2", in["password"])
}

func TestMaskStructuredScalars(t *testing.T) {
	p := NewPolicy()

	assert.Equal(t, "hello", p.MaskStructured("hello"))
	assert.Equal(t, json.Number("42"), p.MaskStructured(json.Number("42")))
	assert.Nil(t, p.MaskStructured(nil))
}

func TestIsSensitiveField(t *testing.T) {
	p := NewPolicy()

	assert.True(t, p.IsSensitiveField("password"))
	assert.True(t, p.IsSensitiveField("Password"))
	assert.True(t, p.IsSensitiveField("user_password_hash"))
	assert.True(t, p.IsSensitiveField("authToken"))
	assert.True(t, p.IsSensitiveField("session_id"))
	assert.True(t, p.IsSensitiveField("passport")) // 子串命中 "pass"

	assert.False(t, p.IsSensitiveField("email"))
	assert.False(t, p.IsSensitiveField("username"))
	assert.False(t, p.IsSensitiveField("task"))
}

func TestMaskText(t *testing.T) {
	p := NewPolicy()

	assert.Equal(t, "password=***", p.MaskText("password=hunter2"))
	assert.Equal(t, "pwd: ***", p.MaskText("pwd: 12345"))
	assert.Equal(t, "Token=***", p.MaskText("Token=abc123"))
	assert.Equal(t, "api_key=***", p.MaskText("api_key=sk_live_abc"))
	assert.Equal(t, "a=1&secret=***&b=2", p.MaskText("a=1&secret=xyz&b=2"))
	assert.Equal(t, "card ****-****-****-****", p.MaskText("card 4111-1111-1111-1111"))
	assert.Equal(t, "****-****-****-****", p.MaskText("4111111111111111"))
	assert.Equal(t, "access_token=***", p.MaskText("access_token=eyJabc"))
	assert.Equal(t, "hello world", p.MaskText("hello world"))

	// 子串语义: "monkey=" 里的 key= 同样命中
	assert.Equal(t, "monkey=***", p.MaskText("monkey=banana"))
}

func TestFilterHeaders(t *testing.T) {
	p := NewPolicy()

	h := http.Header{}
	h.Set("Authorization", "Bearer tok")
	h.Set("Content-Type", "application/json")
	h.Set("Cookie", "session=abc")
	h.Set("X-Api-Key", "k123")
	h.Add("Accept", "text/html")
	h.Add("Accept", "application/json")

	got := p.FilterHeaders(h)

	assert.Equal(t, HeaderRedacted, got["Authorization"])
	assert.Equal(t, HeaderRedacted, got["Cookie"])
	assert.Equal(t, HeaderRedacted, got["X-Api-Key"])
	assert.Equal(t, "application/json", got["Content-Type"])
	assert.Equal(t, "text/html, application/json", got["Accept"])

	assert.Nil(t, p.FilterHeaders(nil))
}
