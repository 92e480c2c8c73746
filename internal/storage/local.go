// Package storage keeps uploaded creatives on local disk.
package storage

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"adscreen-service/internal/domain/booking"
	xerrors "adscreen-service/internal/pkg/errors"
	"adscreen-service/internal/pkg/i18n"

	"github.com/gabriel-vasile/mimetype"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

const (
	MaxImageBytes int64 = 20 << 20
	MaxVideoBytes int64 = 100 << 20

	sniffBytes = 3072
)

type allowed struct {
	kind booking.MediaType
	max  int64
}

var allowlist = map[string]allowed{
	"image/jpeg": {booking.MediaImage, MaxImageBytes},
	"image/png":  {booking.MediaImage, MaxImageBytes},
	"video/mp4":  {booking.MediaVideo, MaxVideoBytes},
}

// LocalStore writes files under dir and serves them below baseURL.
type LocalStore struct {
	dir     string
	baseURL string
	logger  *zap.Logger
}

func NewLocalStore(dir, baseURL string, logger *zap.Logger) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/"), logger: logger}, nil
}

// SaveMedia sniffs the content type, enforces the allowlist and size limit
// for that type, and stores the file under a ULID name. field names the form
// field in validation errors. Videos are refused unless allowVideo is set.
func (s *LocalStore) SaveMedia(r io.Reader, field string, allowVideo bool) (*booking.Media, error) {
	head := make([]byte, sniffBytes)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	head = head[:n]
	if n == 0 {
		return nil, xerrors.NewValidationError(field, i18n.FieldRequired)
	}

	mt := mimetype.Detect(head)
	rule, ok := lookup(mt)
	if !ok || (rule.kind == booking.MediaVideo && !allowVideo) {
		return nil, xerrors.NewValidationError(field, i18n.FieldMediaType)
	}

	name := strings.ToLower(ulid.Make().String()) + mt.Extension()
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload file: %w", err)
	}

	written, err := io.Copy(f, io.LimitReader(io.MultiReader(bytes.NewReader(head), r), rule.max+1))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("failed to write upload: %w", err)
	}
	if written > rule.max {
		_ = os.Remove(path)
		return nil, xerrors.NewValidationError(field, i18n.FieldMediaSize)
	}

	s.logger.Info("upload stored",
		zap.String("file", name),
		zap.String("mime", mt.String()),
		zap.Int64("bytes", written))

	return &booking.Media{URL: s.baseURL + "/" + name, Type: rule.kind}, nil
}

// Remove deletes a stored file by its public URL; used when the row that
// would reference it could not be written.
func (s *LocalStore) Remove(url string) {
	name := filepath.Base(url)
	if name == "." || name == "/" {
		return
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("failed to remove upload", zap.String("file", name), zap.Error(err))
	}
}

func (s *LocalStore) Dir() string { return s.dir }

func lookup(mt *mimetype.MIME) (allowed, bool) {
	for m := mt; m != nil; m = m.Parent() {
		if rule, ok := allowlist[m.String()]; ok {
			return rule, true
		}
	}
	return allowed{}, false
}
