package cleaner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	c := NewCleaner()

	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"<b>公司</b> 不存在", "公司 不存在"},
		{"<script>alert(1)</script>ok", "ok"},
		{"a &amp; b", "a & b"},
		{"  spaced \n\t out  ", "spaced out"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Text(tt.in), tt.in)
	}
}

func TestTextTruncates(t *testing.T) {
	c := NewCleaner().WithMaxRunes(3)
	assert.Equal(t, "資料驗…", c.Text("資料驗證錯誤"))
	assert.Equal(t, "abc", c.Text("abc"))

	long := strings.Repeat("x", 500)
	assert.Equal(t, long, NewCleaner().WithMaxRunes(0).Text(long))
}

func TestMap(t *testing.T) {
	c := NewCleaner()
	got := c.Map(map[string]any{
		"detail": "<i>bad</i>",
		"count":  3.0,
		"nested": map[string]any{"msg": "<p>x</p>"},
		"list":   []any{"<b>y</b>", 1.0},
	})

	assert.Equal(t, "bad", got["detail"])
	assert.Equal(t, 3.0, got["count"])
	assert.Equal(t, map[string]any{"msg": "x"}, got["nested"])
	assert.Equal(t, []any{"y", 1.0}, got["list"])
}
