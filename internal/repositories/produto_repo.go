package repositories

import (
	"errors"

	"produtoapi/internal/models"
)

// ErrProdutoNotFound is returned when no Produto exists for the requested ID.
var ErrProdutoNotFound = errors.New("produto not found")

// ProdutoRepository defines the interface for produto data access.
type ProdutoRepository interface {
	FindAll() ([]models.Produto, error)
	FindByID(id int64) (*models.Produto, error)
	// Save inserts the produto when its ID is zero or unknown, otherwise replaces
	// the stored row. The assigned ID is written back into produto.
	Save(produto *models.Produto) error
	DeleteByID(id int64) error
}
