package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"todo-backend/internal/tasks"
)

type todoRow struct {
	ID        string `gorm:"primaryKey;size:36"`
	Text      string `gorm:"not null"`
	Category  string `gorm:"not null;index"`
	Priority  string `gorm:"not null"`
	Completed bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
}

func (todoRow) TableName() string { return "todos" }

func (r todoRow) task() tasks.Task {
	return tasks.Task{
		ID:        r.ID,
		Text:      r.Text,
		Category:  r.Category,
		Priority:  tasks.Priority(r.Priority),
		Completed: r.Completed,
	}
}

// GormStore is the embedded SQLite backend.
type GormStore struct {
	db *gorm.DB
}

// OpenGorm opens a SQLite database and runs migrations.
func OpenGorm(dsn string) (*GormStore, error) {
	if dsn == "" {
		dsn = ":memory:"
	}
	if err := ensureDirForSQLite(dsn); err != nil {
		return nil, err
	}

	dbLogger := logger.New(
		log.New(os.Stdout, "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: dbLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if dsn == ":memory:" {
		// every pooled connection would otherwise see its own empty database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(&todoRow{}); err != nil {
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return &GormStore{db: db}, nil
}

// ensureDirForSQLite creates parent dir for SQLite file if needed.
func ensureDirForSQLite(dsn string) error {
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	clean := strings.TrimPrefix(dsn, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}

func (s *GormStore) Insert(ctx context.Context, nt tasks.NewTask) (tasks.Task, error) {
	row := todoRow{
		ID:       uuid.NewString(),
		Text:     nt.Text,
		Category: nt.Category,
		Priority: string(nt.Priority),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return tasks.Task{}, fmt.Errorf("create task: %w", err)
	}
	return row.task(), nil
}

func (s *GormStore) FindAll(ctx context.Context) ([]tasks.Task, error) {
	var rows []todoRow
	if err := s.db.WithContext(ctx).Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("find tasks: %w", err)
	}
	result := make([]tasks.Task, 0, len(rows))
	for _, r := range rows {
		result = append(result, r.task())
	}
	return result, nil
}

func (s *GormStore) UpdateByID(ctx context.Context, id string, p tasks.Patch) (*tasks.Task, error) {
	if err := validUUID(id); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var row todoRow
	err := db.Where("id = ?", id).First(&row).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("find task: %w", err)
	}

	if p.Completed != nil {
		if err := db.Model(&row).Update("completed", *p.Completed).Error; err != nil {
			return nil, fmt.Errorf("update task: %w", err)
		}
		row.Completed = *p.Completed
	}

	t := row.task()
	return &t, nil
}

func (s *GormStore) DeleteByID(ctx context.Context, id string) error {
	if err := validUUID(id); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&todoRow{}).Error; err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

func (s *GormStore) DeleteByCategory(ctx context.Context, category string) (int64, error) {
	res := s.db.WithContext(ctx).Where("category = ?", category).Delete(&todoRow{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete category: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
