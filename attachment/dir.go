package attachment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
)

// Dir is an Uploader storing files in a local directory. Files are named
// after a hash of their content, so uploading the same file twice gives the
// same URL.
type Dir struct {
	Root string
	// BaseURL prefixes the file name in returned URLs. When empty, a file://
	// URL of the stored path is returned.
	BaseURL string
}

func (d Dir) Upload(ctx context.Context, name, contentType string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(d.Root, 0o755); err != nil {
		return "", errors.Wrap(err, "failed to create attachment dir")
	}

	sum := sha256.Sum256(data)
	base := filepath.Base(filepath.Clean("/" + name))
	if base == "/" || base == "." {
		base = "file"
	}
	if filepath.Ext(base) == "" {
		if mt := mimetype.Lookup(contentType); mt != nil {
			base += mt.Extension()
		}
	}
	file := hex.EncodeToString(sum[:6]) + "-" + base

	dest := filepath.Join(d.Root, file)
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", errors.Wrapf(err, "failed to write %s", dest)
	}

	if d.BaseURL != "" {
		return strings.TrimSuffix(d.BaseURL, "/") + "/" + url.PathEscape(file), nil
	}
	abs, err := filepath.Abs(dest)
	if err != nil {
		return "", errors.WithStack(err)
	}
	return (&url.URL{Scheme: "file", Path: path.Clean(filepath.ToSlash(abs))}).String(), nil
}
