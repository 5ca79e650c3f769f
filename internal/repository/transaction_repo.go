package repository

import (
	"gorm.io/gorm"

	"transfers24/internal/models"
)

// TransactionRepository stores the gateway audit trail.
type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Migrate creates or updates the audit table.
func (r *TransactionRepository) Migrate() error {
	return r.db.AutoMigrate(&models.Transaction{})
}

// Create inserts a new audit row.
func (r *TransactionRepository) Create(tx *models.Transaction) error {
	return r.db.Create(tx).Error
}

// FindBySessionID returns every row of a session, oldest first.
func (r *TransactionRepository) FindBySessionID(sessionID string) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := r.db.Where("session_id = ?", sessionID).Order("id ASC").Find(&txs).Error
	return txs, err
}

// FindAll returns rows with pagination, newest first.
func (r *TransactionRepository) FindAll(limit, page int) ([]models.Transaction, int64, error) {
	var txs []models.Transaction
	var total int64

	db := r.db.Model(&models.Transaction{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	if err := db.Limit(limit).Offset(offset).Order("id DESC").Find(&txs).Error; err != nil {
		return nil, 0, err
	}
	return txs, total, nil
}

// IsVerified reports whether a session already has a successful verify row.
func (r *TransactionRepository) IsVerified(sessionID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Transaction{}).
		Where("session_id = ? AND kind = ? AND success = ?", sessionID, "verify", true).
		Count(&count).Error
	return count > 0, err
}
