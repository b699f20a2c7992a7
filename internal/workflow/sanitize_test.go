package workflow

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeBaseName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"My Workflow #1", "My_Workflow__1"},
		{"already_safe-Name", "already_safe-Name"},
		{"a/b\\c", "a_b_c"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SafeBaseName(tt.in), "input %q", tt.in)
	}
}

func TestSafeBaseNameTruncates(t *testing.T) {
	long := strings.Repeat("x", 150)
	assert.Len(t, SafeBaseName(long), 100)
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Slack + OpenAI Sync", "slack_openai_sync"},
		{"__already__done__", "already_done"},
		{"MiXeD-Case", "mixed-case"},
		{"!!!", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slug(tt.in), "input %q", tt.in)
	}
}

var slugPattern = regexp.MustCompile(`^[a-z0-9_-]{0,80}$`)

func TestSlugIdempotentAndBounded(t *testing.T) {
	inputs := []string{
		"Slack + OpenAI Sync",
		strings.Repeat("Very Long Name ", 20),
		"héllo wörld",
		"a_b-c9",
		"___",
	}
	for _, in := range inputs {
		once := Slug(in)
		assert.Equal(t, once, Slug(once), "idempotency broke for %q", in)
		assert.Regexp(t, slugPattern, once, "pattern broke for %q", in)
	}
}

func TestLabelDir(t *testing.T) {
	assert.Equal(t, "sales_and_crm", LabelDir("sales & crm"))
	assert.Equal(t, "a_b", LabelDir("a/b"))
	assert.Equal(t, "data_ops", LabelDir("data ops"))
}
