package host

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "hello", "hello"},
		{"keeps markup", `<p class="note">Kitchen <b>2024</b></p>`, `<p class="note">Kitchen <b>2024</b></p>`},
		{"drops script", `<p>a</p><script>alert(1)</script>`, `<p>a</p>`},
		{"drops comments", `<!-- hi -->ok`, `ok`},
		{"drops iframes", `<iframe src="https://x"></iframe>ok`, `ok`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestSanitizeDropsActiveContent(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		keep    string
		dropped []string
	}{
		{"nested script", `<div><script>x()</script>b</div>`, "b", []string{"script", "x()"}},
		{"handlers", `<img src="a.png" onerror="x()" ONLOAD="y()">`, `src="a.png"`, []string{"onerror", "onload"}},
		{"javascript urls", `<a href=" JavaScript:evil()">x</a>`, "x", []string{"javascript", "evil"}},
		{"vbscript urls", `<a href="vbscript:msgbox(1)">x</a>`, "x", []string{"vbscript"}},
		{"svg animate", `<svg><a><animate attributeName="href" values="javascript:alert(1)"/><text y="20">go</text></a></svg>`, "", []string{"javascript", "animate", "values"}},
		{"svg set", `<svg><a><set attributeName="href" to="javascript:alert(1)"/></a></svg>`, "", []string{"javascript", "set"}},
		{"style", `<style>body{background:url(javascript:x)}</style>ok`, "ok", []string{"javascript", "style"}},
		{"keeps http urls", `<a href="https://example.com">x</a>`, `href="https://example.com"`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := strings.ToLower(Sanitize(tt.in))
			assert.Contains(t, got, tt.keep)
			for _, d := range tt.dropped {
				assert.NotContains(t, got, d)
			}
		})
	}
}

func TestSandboxRegister(t *testing.T) {
	s := NewSandbox()
	ctx := context.Background()

	h1, err := s.Register(ctx, `<p onclick="x()">one</p>`)
	require.NoError(t, err)
	h2, err := s.Register(ctx, `<p>one</p>`)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2, "every registration gets its own handle")

	doc, ok := s.Content(h1)
	require.True(t, ok)
	assert.Equal(t, `<p>one</p>`, doc)

	assert.Equal(t, 2, s.Len())
	s.Release(h1)
	_, ok = s.Content(h1)
	assert.False(t, ok)
	assert.Equal(t, 1, s.Len())
}

func TestSandboxCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSandbox().Register(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}
