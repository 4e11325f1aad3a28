package repository

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormLogger "gorm.io/gorm/logger"

	"github.com/tonpay/solvere/internal/models"
	"github.com/tonpay/solvere/pkg/logger"
)

// Store is the gorm-backed intent repository.
type Store struct {
	logger *logger.Logger

	Conn *gorm.DB
}

// NewPostgresDB connects to PostgreSQL and migrates the intent schema.
func NewPostgresDB(user, password, dbname, host string, port int, logger *logger.Logger) (*Store, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		host, user, password, dbname, port)

	store, err := NewStore(postgres.Open(dsn), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	logger.Info("Successfully connected to PostgreSQL")
	return store, nil
}

// NewStore opens a store over any gorm dialector. Tests use this with an
// in-memory sqlite database.
func NewStore(dialector gorm.Dialector, appLogger *logger.Logger) (*Store, error) {
	// Configure GORM logger to suppress "record not found" messages
	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&models.PaymentIntent{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate models: %w", err)
	}
	return &Store{Conn: db, logger: appLogger}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.Conn.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	return sqlDB.Close()
}

// SaveIntent upserts the intent, overwriting all columns on id conflict.
func (s *Store) SaveIntent(intent *models.PaymentIntent) error {
	if err := s.Conn.Clauses(clause.OnConflict{UpdateAll: true}).Create(intent).Error; err != nil {
		return fmt.Errorf("failed to save payment intent: %w", err)
	}
	return nil
}

func (s *Store) GetIntent(id string) (*models.PaymentIntent, error) {
	var intent models.PaymentIntent
	if err := s.Conn.Where("id = ?", id).First(&intent).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrIntentNotFound
		}
		return nil, fmt.Errorf("failed to get payment intent: %w", err)
	}
	return &intent, nil
}

// UpdateIntent merges the settlement fields and applies the status
// transition. Absent ids and backward transitions are silent no-ops so
// that concurrent verifications cannot corrupt a terminal record.
func (s *Store) UpdateIntent(id string, status models.PaymentStatus, update models.IntentUpdate) error {
	intent, err := s.GetIntent(id)
	if err != nil {
		if errors.Is(err, models.ErrIntentNotFound) {
			return nil
		}
		return err
	}

	if !intent.Status.CanTransition(status) {
		s.logger.Debug("Refusing backward status transition", "intent", id, "from", intent.Status, "to", status)
		return nil
	}

	fields := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}
	if update.TxHash != "" {
		fields["tx_hash"] = update.TxHash
	}
	if update.PayerAddress != "" {
		fields["payer_address"] = update.PayerAddress
	}
	if update.PaidAt != nil {
		fields["paid_at"] = update.PaidAt
	}

	if err := s.Conn.Model(&models.PaymentIntent{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return fmt.Errorf("failed to update payment intent: %w", err)
	}
	return nil
}

func (s *Store) ListIntentsByStatus(status models.PaymentStatus) ([]*models.PaymentIntent, error) {
	var intents []*models.PaymentIntent
	if err := s.Conn.Where("status = ?", status).Order("created_at DESC").Find(&intents).Error; err != nil {
		return nil, fmt.Errorf("failed to list payment intents: %w", err)
	}
	return intents, nil
}

// SweepExpired transitions idle intents whose quote window has passed. A
// single guarded UPDATE keeps repeated and concurrent sweeps idempotent.
func (s *Store) SweepExpired(now time.Time) (int64, error) {
	res := s.Conn.Model(&models.PaymentIntent{}).
		Where("status = ? AND quote_expires_at IS NOT NULL AND quote_expires_at < ?", models.StatusIdle, now).
		Updates(map[string]interface{}{
			"status":     models.StatusExpired,
			"updated_at": now,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to sweep expired intents: %w", res.Error)
	}
	return res.RowsAffected, nil
}
