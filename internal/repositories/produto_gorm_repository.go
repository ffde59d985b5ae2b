package repositories

import (
	"errors"
	"fmt"

	"produtoapi/internal/models"

	"gorm.io/gorm"
)

// GORMProdutoRepository is a GORM implementation of ProdutoRepository.
type GORMProdutoRepository struct {
	db *gorm.DB
}

// NewGORMProdutoRepository creates a new instance of GORMProdutoRepository.
func NewGORMProdutoRepository(db *gorm.DB) *GORMProdutoRepository {
	return &GORMProdutoRepository{
		db: db,
	}
}

// FindAll retrieves all produtos ordered by ID.
func (r *GORMProdutoRepository) FindAll() ([]models.Produto, error) {
	produtos := make([]models.Produto, 0)
	if err := r.db.Order("id").Find(&produtos).Error; err != nil {
		return nil, fmt.Errorf("failed to get all produtos: %w", err)
	}
	return produtos, nil
}

// FindByID retrieves a single produto by its ID.
func (r *GORMProdutoRepository) FindByID(id int64) (*models.Produto, error) {
	var produto models.Produto
	if err := r.db.First(&produto, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProdutoNotFound
		}
		return nil, fmt.Errorf("failed to get produto by ID %d: %w", id, err)
	}
	return &produto, nil
}

// Save inserts or fully replaces a produto. Save writes every column,
// including zero values, so a missing field in an update clears it.
func (r *GORMProdutoRepository) Save(produto *models.Produto) error {
	if err := r.db.Save(produto).Error; err != nil {
		return fmt.Errorf("failed to save produto: %w", err)
	}
	return nil
}

// DeleteByID deletes a produto by its ID. Deleting a missing ID is a no-op.
func (r *GORMProdutoRepository) DeleteByID(id int64) error {
	if err := r.db.Delete(&models.Produto{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete produto %d: %w", id, err)
	}
	return nil
}
