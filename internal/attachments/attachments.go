package attachments

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"trade-journal-go/internal/models"
)

const (
	KindEntry = "entry"
	KindExit  = "exit"
)

// ErrUnknownKind is returned for attachment kinds other than entry/exit.
var ErrUnknownKind = errors.New("attachment kind must be entry or exit")

// Store persists trade screenshots. Bytes go to disk under a ULID name
// (time-sortable, collision-free), the DB row records ownership and kind.
// Ownership checks happen in the caller: an attachment is only ever
// reached through its trade.
type Store struct {
	dir    string
	db     *gorm.DB
	logger *zap.Logger
}

// NewStore creates the attachment directory if needed.
func NewStore(dir string, db *gorm.DB, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create attachment directory %q: %w", dir, err)
	}
	return &Store{dir: dir, db: db, logger: logger}, nil
}

// Save streams the attachment bytes to disk and records the row.
func (s *Store) Save(ctx context.Context, tradeID uint, kind string, r io.Reader) (*models.Attachment, error) {
	if kind != KindEntry && kind != KindExit {
		return nil, ErrUnknownKind
	}

	name := ulid.Make().String()
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create attachment file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("failed to write attachment: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, err
	}

	att := models.Attachment{TradeID: tradeID, Kind: kind, Path: path}
	if err := s.db.WithContext(ctx).Create(&att).Error; err != nil {
		os.Remove(path)
		return nil, err
	}

	s.logger.Info("Attachment saved",
		zap.Uint("trade_id", tradeID),
		zap.String("kind", kind),
		zap.String("path", path))

	return &att, nil
}

// Open returns a reader over a stored attachment's bytes.
func (s *Store) Open(att *models.Attachment) (io.ReadCloser, error) {
	return os.Open(att.Path)
}

// ForTrade lists the attachment rows belonging to one trade.
func (s *Store) ForTrade(ctx context.Context, tradeID uint) ([]models.Attachment, error) {
	var atts []models.Attachment
	err := s.db.WithContext(ctx).
		Where("trade_id = ?", tradeID).
		Order("id ASC").
		Find(&atts).Error
	if err != nil {
		return nil, err
	}
	return atts, nil
}

// DeleteForTrade removes the files and rows for one trade's attachments.
func (s *Store) DeleteForTrade(ctx context.Context, tradeID uint) error {
	atts, err := s.ForTrade(ctx, tradeID)
	if err != nil {
		return err
	}
	for _, att := range atts {
		if err := os.Remove(att.Path); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return s.db.WithContext(ctx).Unscoped().
		Where("trade_id = ?", tradeID).
		Delete(&models.Attachment{}).Error
}
