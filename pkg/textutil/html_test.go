package textutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripToPlainText(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   string
	}{
		{name: "empty", markup: "", want: ""},
		{name: "plain text untouched", markup: "just words", want: "just words"},
		{name: "nested inline tags", markup: "<p>Hello <b>world</b></p>", want: "Hello world"},
		{name: "tags become spaces", markup: "one<br>two<br/>three", want: "one two three"},
		{name: "script removed with content", markup: "<p>keep</p><script>alert('x')</script><p>this</p>", want: "keep this"},
		{name: "style removed with content", markup: "<style>p { color: red; }</style>visible", want: "visible"},
		{name: "uppercase script", markup: "a<SCRIPT>var x = 1;</SCRIPT>b", want: "a b"},
		{name: "entities decoded", markup: "Tom &amp; Jerry &lt;3 &quot;cheese&quot;", want: `Tom & Jerry <3 "cheese"`},
		{name: "whitespace runs collapsed", markup: "a  \t  b\n\n\nc", want: "a b c"},
		{name: "single newline kept", markup: "a\nb", want: "a\nb"},
		{name: "leading and trailing trimmed", markup: "   <div>  padded  </div>   ", want: "padded"},
		{name: "comments dropped", markup: "before<!-- hidden -->after", want: "before after"},
		{name: "unclosed tag", markup: "<p>dangling <b>bold", want: "dangling bold"},
		{name: "only tags", markup: "<p></p><br><div></div>", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripToPlainText(tt.markup))
		})
	}
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 0, WordCount(""))
	assert.Equal(t, 0, WordCount("<p>   </p>"))
	assert.Equal(t, 2, WordCount("<p>Hello <b>world</b></p>"))
	assert.Equal(t, 4, WordCount("<p>one</p><p>two</p>\n<ul><li>three</li><li>four</li></ul>"))
	assert.Equal(t, 1, WordCount("<script>lots of words here</script>single"))
}

func TestTruncate(t *testing.T) {
	t.Run("short text kept", func(t *testing.T) {
		assert.Equal(t, "Hello world", Truncate("<p>Hello <b>world</b></p>", 300))
	})

	t.Run("exact length kept", func(t *testing.T) {
		assert.Equal(t, "abcde", Truncate("abcde", 5))
	})

	t.Run("long text cut with ellipsis", func(t *testing.T) {
		assert.Equal(t, "abc"+Ellipsis, Truncate("<b>abcdef</b>", 3))
	})

	t.Run("counts characters not bytes", func(t *testing.T) {
		assert.Equal(t, "héé"+Ellipsis, Truncate("hééllo", 3))
	})

	t.Run("negative limit", func(t *testing.T) {
		assert.Equal(t, Ellipsis, Truncate("abc", -1))
	})
}

func TestPreview(t *testing.T) {
	long := strings.Repeat("x", PreviewLength+10)
	got := Preview("<p>" + long + "</p>")
	assert.Equal(t, strings.Repeat("x", PreviewLength)+Ellipsis, got)
	assert.Equal(t, "short", Preview("short"))
}
