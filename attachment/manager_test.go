package attachment_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap/zaptest"

	"github.com/shodgson/notedoc/attachment"
)

type fakeUploader struct {
	mu       sync.Mutex
	uploaded map[string]string
	fail     map[string]bool
}

func (u *fakeUploader) Upload(_ context.Context, name, contentType string, _ []byte) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.fail[name] {
		return "", errors.New("storage unavailable")
	}
	if u.uploaded == nil {
		u.uploaded = map[string]string{}
	}
	u.uploaded[name] = contentType
	return "https://files.example/" + name, nil
}

func TestManagerAdd(t *testing.T) {
	var changes []*string
	up := &fakeUploader{}
	m := attachment.NewManager(up, strptr(`["https://files.example/old"]`),
		attachment.WithLogger(zaptest.NewLogger(t)),
		attachment.WithOnAttachmentChange(func(raw *string) { changes = append(changes, raw) }),
	)

	err := m.Add(context.Background(), []attachment.File{
		{Name: "a.png", Data: []byte("\x89PNG\r\n\x1a\n")},
		{Name: "b.txt", Data: []byte("hello")},
	})
	require.NoError(t, err)
	assert.Equal(t, attachment.List{
		"https://files.example/old",
		"https://files.example/a.png",
		"https://files.example/b.txt",
	}, m.List())
	assert.Equal(t, "image/png", up.uploaded["a.png"])
	assert.True(t, strings.HasPrefix(up.uploaded["b.txt"], "text/plain"))

	require.Len(t, changes, 1)
	assert.Equal(t, m.List(), attachment.Decode(changes[0]))
}

func TestManagerLimits(t *testing.T) {
	var changes []*string
	up := &fakeUploader{}
	m := attachment.NewManager(up, strptr("https://files.example/old"),
		attachment.WithLimits(3, 4),
		attachment.WithOnAttachmentChange(func(raw *string) { changes = append(changes, raw) }),
	)

	err := m.Add(context.Background(), []attachment.File{
		{Name: "big", Data: []byte("12345")},
		{Name: "one", Data: []byte("1")},
		{Name: "two", Data: []byte("2")},
		{Name: "three", Data: []byte("3")},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, attachment.ErrTooLarge)
	assert.ErrorIs(t, err, attachment.ErrTooMany)
	assert.Len(t, multierr.Errors(err), 2)

	assert.Equal(t, attachment.List{
		"https://files.example/old",
		"https://files.example/one",
		"https://files.example/two",
	}, m.List())
	assert.NotContains(t, up.uploaded, "big")
	assert.NotContains(t, up.uploaded, "three")
	assert.Len(t, changes, 1)

	// full: nothing is uploaded and nothing changes
	err = m.Add(context.Background(), []attachment.File{{Name: "four", Data: []byte("4")}})
	assert.ErrorIs(t, err, attachment.ErrTooMany)
	assert.Len(t, changes, 1)
}

func TestManagerUploadFailure(t *testing.T) {
	var changes []*string
	up := &fakeUploader{fail: map[string]bool{"bad": true}}
	m := attachment.NewManager(up, nil,
		attachment.WithOnAttachmentChange(func(raw *string) { changes = append(changes, raw) }),
	)

	err := m.Add(context.Background(), []attachment.File{
		{Name: "good", Data: []byte("g")},
		{Name: "bad", Data: []byte("b")},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to upload bad")
	assert.Equal(t, attachment.List{"https://files.example/good"}, m.List())
	assert.Len(t, changes, 1)

	up.fail["good"] = true
	err = m.Add(context.Background(), []attachment.File{{Name: "good", Data: []byte("g")}})
	require.Error(t, err)
	assert.Len(t, changes, 1)
}

func TestManagerRemove(t *testing.T) {
	var changes []*string
	m := attachment.NewManager(&fakeUploader{}, strptr(`["a","b","a"]`),
		attachment.WithOnAttachmentChange(func(raw *string) { changes = append(changes, raw) }),
	)

	assert.True(t, m.Remove("a"))
	assert.Equal(t, attachment.List{"b", "a"}, m.List())
	assert.False(t, m.Remove("c"))
	assert.True(t, m.Remove("b"))
	assert.True(t, m.Remove("a"))
	assert.Empty(t, m.List())

	require.Len(t, changes, 3)
	assert.NotNil(t, changes[0])
	assert.Nil(t, changes[2])
}

func TestUploaderFunc(t *testing.T) {
	var got string
	up := attachment.UploaderFunc(func(_ context.Context, name, _ string, _ []byte) (string, error) {
		got = name
		return "u://" + name, nil
	})
	m := attachment.NewManager(up, nil)
	require.NoError(t, m.Add(context.Background(), []attachment.File{{Name: "x", Data: []byte("x")}}))
	assert.Equal(t, "x", got)
	assert.Equal(t, attachment.List{"u://x"}, m.List())
}

func TestDir(t *testing.T) {
	root := filepath.Join(t.TempDir(), "files")
	d := attachment.Dir{Root: root, BaseURL: "https://cdn.example/notes/"}

	png := []byte("\x89PNG\r\n\x1a\n")
	url, err := d.Upload(context.Background(), "../../photo", "image/png", png)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://cdn.example/notes/"), url)
	assert.True(t, strings.HasSuffix(url, "-photo.png"), url)

	again, err := d.Upload(context.Background(), "photo", "image/png", png)
	require.NoError(t, err)
	assert.Equal(t, url, again)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	data, err := os.ReadFile(filepath.Join(root, entries[0].Name()))
	require.NoError(t, err)
	assert.True(t, bytes.Equal(png, data))

	local, err := attachment.Dir{Root: root}.Upload(context.Background(), "notes.txt", "text/plain", []byte("hi"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(local, "file:///"), local)
	assert.True(t, strings.HasSuffix(local, "-notes.txt"), local)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = d.Upload(ctx, "x", "", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestManagerFailureKeepsOtherUploads(t *testing.T) {
	failed := make(chan struct{})
	up := attachment.UploaderFunc(func(ctx context.Context, name, _ string, _ []byte) (string, error) {
		if name == "bad" {
			close(failed)
			return "", errors.New("storage unavailable")
		}
		<-failed
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return "https://files.example/" + name, nil
	})
	var changes []*string
	m := attachment.NewManager(up, nil,
		attachment.WithOnAttachmentChange(func(raw *string) { changes = append(changes, raw) }),
	)

	err := m.Add(context.Background(), []attachment.File{
		{Name: "first", Data: []byte("1")},
		{Name: "bad", Data: []byte("b")},
		{Name: "last", Data: []byte("2")},
	})
	require.Error(t, err)
	require.Len(t, multierr.Errors(err), 1)
	assert.Contains(t, err.Error(), "failed to upload bad")
	assert.Equal(t, attachment.List{"https://files.example/first", "https://files.example/last"}, m.List())
	require.Len(t, changes, 1)
	assert.Equal(t, m.List(), attachment.Decode(changes[0]))
}
