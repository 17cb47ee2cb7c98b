package attachment

import (
	"context"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultMaxCount       = 20
	DefaultMaxSize  int64 = 10 << 20

	uploadConcurrency = 4
)

var (
	ErrTooLarge = errors.New("file is too large")
	ErrTooMany  = errors.New("too many attachments")
)

// File is a file picked by the user, not uploaded yet.
type File struct {
	Name string
	Data []byte
}

// Uploader stores a file and returns its URL.
type Uploader interface {
	Upload(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// UploaderFunc adapts a function to the Uploader interface.
type UploaderFunc func(ctx context.Context, name, contentType string, data []byte) (string, error)

func (f UploaderFunc) Upload(ctx context.Context, name, contentType string, data []byte) (string, error) {
	return f(ctx, name, contentType, data)
}

// Manager owns the attachment list of one note.
type Manager struct {
	mu       sync.Mutex
	uploader Uploader
	list     List
	maxCount int
	maxSize  int64
	onChange func(*string)
	logger   *zap.Logger
}

type Option func(*Manager)

// WithLimits sets the maximum number of attachments and the maximum size of
// one file in bytes. Values <= 0 keep the defaults.
func WithLimits(maxCount int, maxSize int64) Option {
	return func(m *Manager) {
		if maxCount > 0 {
			m.maxCount = maxCount
		}
		if maxSize > 0 {
			m.maxSize = maxSize
		}
	}
}

// WithOnAttachmentChange sets the callback receiving the encoded list after
// every change.
func WithOnAttachmentChange(fn func(*string)) Option {
	return func(m *Manager) {
		m.onChange = fn
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager returns a manager starting from the encoded list raw.
func NewManager(uploader Uploader, raw *string, opts ...Option) *Manager {
	m := &Manager{
		uploader: uploader,
		list:     Decode(raw),
		maxCount: DefaultMaxCount,
		maxSize:  DefaultMaxSize,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// List returns a copy of the current list.
func (m *Manager) List() List {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append(List(nil), m.list...)
}

// Add validates files against the limits and uploads the accepted ones.
// Rejections and upload failures are combined into the returned error; the
// files that did upload are appended to the list in the order given, and the
// change callback runs once if the list grew.
func (m *Manager) Add(ctx context.Context, files []File) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result error
	room := m.maxCount - len(m.list)
	accepted := make([]File, 0, len(files))
	for _, f := range files {
		if size := int64(len(f.Data)); size > m.maxSize {
			result = multierr.Append(result, errors.Wrapf(ErrTooLarge, "%s (%d bytes, limit %d)", f.Name, size, m.maxSize))
			continue
		}
		if room <= 0 {
			result = multierr.Append(result, errors.Wrapf(ErrTooMany, "%s (limit %d)", f.Name, m.maxCount))
			continue
		}
		room--
		accepted = append(accepted, f)
	}
	if len(accepted) < len(files) {
		m.logger.Info("rejected attachments", zap.Int("rejected", len(files)-len(accepted)), zap.Error(result))
	}

	urls := make([]string, len(accepted))
	errs := make([]error, len(accepted))
	// Upload failures are kept per file instead of failing the group, so
	// that one failure neither cancels nor hides the other uploads. The group
	// only bounds the concurrency, and Wait always returns nil.
	var g errgroup.Group
	g.SetLimit(uploadConcurrency)
	for i, f := range accepted {
		i, f := i, f
		g.Go(func() error {
			mime := mimetype.Detect(f.Data).String()
			m.logger.Debug("uploading attachment", zap.String("name", f.Name), zap.String("mime", mime))
			url, err := m.uploader.Upload(ctx, f.Name, mime, f.Data)
			if err == nil && url == "" {
				err = errors.New("uploader returned an empty URL")
			}
			if err != nil {
				errs[i] = errors.Wrapf(err, "failed to upload %s", f.Name)
				m.logger.Warn("failed to upload attachment", zap.String("name", f.Name), zap.Error(err))
				return nil
			}
			urls[i] = url
			return nil
		})
	}
	_ = g.Wait()

	grew := false
	for i := range accepted {
		if errs[i] != nil {
			result = multierr.Append(result, errs[i])
			continue
		}
		m.list = append(m.list, urls[i])
		grew = true
	}
	if grew {
		result = multierr.Append(result, m.notify())
	}
	return result
}

// Remove drops the first occurrence of url and tells whether it was there.
func (m *Manager) Remove(url string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, u := range m.list {
		if u == url {
			m.list = append(m.list[:i:i], m.list[i+1:]...)
			if err := m.notify(); err != nil {
				m.logger.Warn("failed to notify attachment change", zap.Error(err))
			}
			return true
		}
	}
	return false
}

func (m *Manager) notify() error {
	if m.onChange == nil {
		return nil
	}
	raw, err := Encode(m.list)
	if err != nil {
		return err
	}
	m.onChange(raw)
	return nil
}
