package attachment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shodgson/notedoc/attachment"
)

func strptr(s string) *string { return &s }

func TestDecode(t *testing.T) {
	for _, c := range []struct {
		raw      *string
		expected attachment.List
	}{
		{nil, nil},
		{strptr(""), nil},
		{strptr("  "), nil},
		{strptr("null"), nil},
		{strptr("https://files.example/a.png"), attachment.List{"https://files.example/a.png"}},
		{strptr(`"https://files.example/a.png"`), attachment.List{"https://files.example/a.png"}},
		{strptr(`[]`), nil},
		{strptr(`["https://x/1", "", 42, "https://x/2", "https://x/1"]`), attachment.List{"https://x/1", "https://x/2", "https://x/1"}},
		{strptr(`["https://x/1"`), attachment.List{`["https://x/1"`}},
	} {
		assert.Equal(t, c.expected, attachment.Decode(c.raw), "%v", c.raw)
	}
}

func TestEncode(t *testing.T) {
	for _, empty := range []attachment.List{nil, {}} {
		raw, err := attachment.Encode(empty)
		require.NoError(t, err)
		assert.Nil(t, raw)
	}

	list := attachment.List{"https://x/1", `https://x/"quoted"`, "https://x/1"}
	raw, err := attachment.Encode(list)
	require.NoError(t, err)
	require.NotNil(t, raw)
	assert.JSONEq(t, `["https://x/1", "https://x/\"quoted\"", "https://x/1"]`, *raw)
	assert.Equal(t, list, attachment.Decode(raw))
}

func TestContains(t *testing.T) {
	list := attachment.List{"a", "b"}
	assert.True(t, list.Contains("b"))
	assert.False(t, list.Contains("c"))
}

func TestEncodeSpecialURLs(t *testing.T) {
	list := attachment.List{"https://x/a b.png", "https://x/é?q=1&r=2", `C:\notes\file.txt`, "https://x/a\u2028b"}
	raw, err := attachment.Encode(list)
	require.NoError(t, err)
	require.NotNil(t, raw)
	assert.Equal(t, list, attachment.Decode(raw))
}
