package helper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"  final report.zip ": "final report.zip",
		"../../etc/passwd":    "etcpasswd",
		"a<b>c|d.pdf":         "abcd.pdf",
		"作品  提交.zip":          "作品 提交.zip",
		"...":                 "",
		"":                    "",
	}
	for in, want := range cases {
		assert.Equal(t, want, SanitizeFilename(in, 0), in)
	}
	assert.Equal(t, "abc", SanitizeFilename("abcdef", 3))
}

func TestSafeExt(t *testing.T) {
	assert.Equal(t, ".zip", SafeExt("works.ZIP"))
	assert.Equal(t, ".webp", SafeExt("a.b.webp"))
	assert.Equal(t, "", SafeExt("noext"))
	assert.Equal(t, "", SafeExt("bad.ex-t"))
	assert.Equal(t, "", SafeExt("long.abcdefghij"))
}
