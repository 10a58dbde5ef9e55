// Package sqlitestore implements the credential and message stores on a
// local SQLite database, the relational variant of the storage layout:
// users(id, username unique, password) and
// messages(id, user_id, username, content, timestamp). messages.user_id is
// an informational reference only; no foreign key is enforced, and the
// username is denormalized onto the row so history reads need no join.
package sqlitestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"chatterd/internal/domain"
)

type userRecord struct {
	ID       uint   `gorm:"primaryKey"`
	Username string `gorm:"size:64;uniqueIndex;not null"`
	Password string `gorm:"size:255;not null"`
}

func (userRecord) TableName() string { return "users" }

type messageRecord struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    string `gorm:"size:64;index"`
	Username  string `gorm:"size:64"`
	Content   string `gorm:"not null"`
	Timestamp time.Time
}

func (messageRecord) TableName() string { return "messages" }

// Store implements domain.UserStore and domain.MessageStore.
type Store struct {
	db *gorm.DB
}

// Open creates the SQLite database connection and migrates the two tables.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	_, _ = sqlDB.Exec("PRAGMA journal_mode = WAL;")
	_, _ = sqlDB.Exec("PRAGMA synchronous = NORMAL;")

	if err := db.AutoMigrate(&userRecord{}, &messageRecord{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Create inserts a new user. The unique index on username enforces
// conflict detection.
func (s *Store) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	rec := userRecord{Username: username, Password: passwordHash}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrUsernameTaken
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return toDomainUser(&rec), nil
}

// FindByUsername returns the user with the given username.
func (s *Store) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var rec userRecord
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return toDomainUser(&rec), nil
}

// Append stores a new chat message. The author reference is not validated.
func (s *Store) Append(ctx context.Context, authorID, authorName, content string, ts time.Time) (*domain.Message, error) {
	rec := messageRecord{UserID: authorID, Username: authorName, Content: content, Timestamp: ts}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return toDomainMessage(&rec), nil
}

// Recent returns up to limit messages, oldest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]domain.Message, error) {
	var recs []messageRecord
	err := s.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	msgs := make([]domain.Message, len(recs))
	for i := range recs {
		// Reverse into send order, newest last.
		msgs[len(recs)-1-i] = *toDomainMessage(&recs[i])
	}
	return msgs, nil
}

func toDomainUser(rec *userRecord) *domain.User {
	return &domain.User{
		ID:           strconv.FormatUint(uint64(rec.ID), 10),
		Username:     rec.Username,
		PasswordHash: rec.Password,
	}
}

func toDomainMessage(rec *messageRecord) *domain.Message {
	return &domain.Message{
		ID:         strconv.FormatUint(uint64(rec.ID), 10),
		AuthorID:   rec.UserID,
		AuthorName: rec.Username,
		Content:    rec.Content,
		Timestamp:  rec.Timestamp,
	}
}
