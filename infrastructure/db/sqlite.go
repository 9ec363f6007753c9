package db

import (
	"context"
	"time"

	"github.com/prasetyowira/qrlabel/constant"
	"github.com/prasetyowira/qrlabel/domain/label"
	appLogger "github.com/prasetyowira/qrlabel/infrastructure/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// DefaultListLimit is used when callers ask for a non-positive limit
const DefaultListLimit = 20

// SQLiteRepository implements label.RunRepository
type SQLiteRepository struct {
	db *gorm.DB
}

// RunModel is the GORM model for run metadata
type RunModel struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Source    string    `gorm:"not null"`
	Base      string    `gorm:"not null"`
	Count     int       `gorm:"not null"`
	Layout    string    `gorm:"not null"`
	Pages     int       `gorm:"not null"`
	Bytes     int       `gorm:"not null"`
	CreatedAt time.Time `gorm:"index"`
}

// GormLogger implements GORM's logger.Interface
type GormLogger struct{}

// LogMode implements the log.Interface method
func (l *GormLogger) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	return l
}

// Info logs info messages
func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	appLogger.CtxInfo(ctx, msg, appLogger.LoggerInfo{
		ContextFunction: constant.CtxDB,
		Data: map[string]interface{}{
			constant.DataData: data,
		},
	})
}

// Warn logs warn messages
func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	appLogger.CtxWarn(ctx, msg, appLogger.LoggerInfo{
		ContextFunction: constant.CtxDB,
		Data: map[string]interface{}{
			constant.DataData: data,
		},
	})
}

// Error logs error messages
func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	appLogger.CtxError(ctx, msg, appLogger.LoggerInfo{
		ContextFunction: constant.CtxDB,
		Error: &appLogger.CustomError{
			Code:    constant.ErrCodeDBGeneral,
			Message: msg,
			Type:    constant.ErrTypeDB,
		},
		Data: map[string]interface{}{
			constant.DataData: data,
		},
	})
}

// Trace logs SQL operations
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	sql, rows := fc()

	if err != nil {
		appLogger.CtxError(ctx, "SQL error", appLogger.LoggerInfo{
			ContextFunction: constant.CtxDB,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeDBGeneral,
				Message: err.Error(),
				Type:    constant.ErrTypeDB,
			},
			Data: map[string]interface{}{
				constant.DataElapsed: elapsed.String(),
				constant.DataRows:    rows,
				constant.DataSQL:     sql,
			},
		})
		return
	}

	appLogger.CtxDebug(ctx, "SQL query", appLogger.LoggerInfo{
		ContextFunction: constant.CtxDB,
		Data: map[string]interface{}{
			constant.DataElapsed: elapsed.String(),
			constant.DataRows:    rows,
			constant.DataSQL:     sql,
		},
	})
}

// NewSQLiteRepository opens (and migrates) the run history database
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	ctx := appLogger.NewRequestContext()

	appLogger.CtxDebug(ctx, "Opening SQLite database", appLogger.LoggerInfo{
		ContextFunction: constant.CtxDB,
		Data: map[string]interface{}{
			constant.DataPath: dbPath,
		},
	})

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: &GormLogger{},
	})
	if err != nil {
		appLogger.CtxError(ctx, "Failed to open database", appLogger.LoggerInfo{
			ContextFunction: constant.CtxDB,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeDBOpen,
				Message: err.Error(),
				Type:    constant.ErrTypeDB,
			},
			Data: map[string]interface{}{
				constant.DataPath: dbPath,
			},
		})
		return nil, err
	}

	if err := db.AutoMigrate(&RunModel{}); err != nil {
		appLogger.CtxError(ctx, "Failed to migrate database schema", appLogger.LoggerInfo{
			ContextFunction: constant.CtxDB,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeDBMigrate,
				Message: err.Error(),
				Type:    constant.ErrTypeDB,
			},
		})
		return nil, err
	}

	appLogger.CtxInfo(ctx, "Database initialized successfully", appLogger.LoggerInfo{
		ContextFunction: constant.CtxDB,
		Data: map[string]interface{}{
			constant.DataPath: dbPath,
		},
	})

	return &SQLiteRepository{db: db}, nil
}

// Record persists the metadata of one run
func (r *SQLiteRepository) Record(ctx context.Context, run *label.Run) error {
	model := RunModel{
		ID:        run.ID,
		Source:    run.Source,
		Base:      run.Base,
		Count:     run.Count,
		Layout:    string(run.Layout),
		Pages:     run.Pages,
		Bytes:     run.Bytes,
		CreatedAt: run.CreatedAt,
	}

	result := r.db.WithContext(ctx).Create(&model)
	if err := result.Error; err != nil {
		appLogger.CtxError(ctx, "Failed to insert run", appLogger.LoggerInfo{
			ContextFunction: constant.CtxRecord,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeDBInsert,
				Message: err.Error(),
				Type:    constant.ErrTypeDB,
			},
			Data: map[string]interface{}{
				constant.DataRunID: run.ID,
			},
		})
		return err
	}

	appLogger.CtxDebug(ctx, "Run stored successfully", appLogger.LoggerInfo{
		ContextFunction: constant.CtxRecord,
		Data: map[string]interface{}{
			constant.DataRunID:        run.ID,
			constant.DataCount:        run.Count,
			constant.DataRowsAffected: result.RowsAffected,
		},
	})

	return nil
}

// ListRecent returns up to limit runs, newest first
func (r *SQLiteRepository) ListRecent(ctx context.Context, limit int) ([]label.Run, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	var models []RunModel
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		appLogger.CtxError(ctx, "Failed to list runs", appLogger.LoggerInfo{
			ContextFunction: constant.CtxListRecent,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeDBLookup,
				Message: err.Error(),
				Type:    constant.ErrTypeDB,
			},
			Data: map[string]interface{}{
				constant.DataLimit: limit,
			},
		})
		return nil, err
	}

	runs := make([]label.Run, 0, len(models))
	for _, m := range models {
		runs = append(runs, label.Run{
			ID:        m.ID,
			Source:    m.Source,
			Base:      m.Base,
			Count:     m.Count,
			Layout:    label.Layout(m.Layout),
			Pages:     m.Pages,
			Bytes:     m.Bytes,
			CreatedAt: m.CreatedAt,
		})
	}

	return runs, nil
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	ctx := context.Background()
	sqlDB, err := r.db.DB()
	if err != nil {
		appLogger.CtxError(ctx, "Failed to get database connection", appLogger.LoggerInfo{
			ContextFunction: constant.CtxClose,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeDBClose,
				Message: err.Error(),
				Type:    constant.ErrTypeDB,
			},
		})
		return err
	}

	appLogger.CtxInfo(ctx, "Closing database connection", appLogger.LoggerInfo{
		ContextFunction: constant.CtxClose,
	})

	return sqlDB.Close()
}
