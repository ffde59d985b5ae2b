package repositories

import (
	"sort"
	"sync"

	"produtoapi/internal/models"
)

// MemoryProdutoRepository is an in-memory implementation of ProdutoRepository.
type MemoryProdutoRepository struct {
	produtos map[int64]models.Produto
	nextID   int64
	mu       sync.RWMutex
}

// NewMemoryProdutoRepository creates a new instance of MemoryProdutoRepository.
func NewMemoryProdutoRepository() *MemoryProdutoRepository {
	return &MemoryProdutoRepository{
		produtos: make(map[int64]models.Produto),
		nextID:   1,
	}
}

// FindAll returns all produtos ordered by ID.
func (r *MemoryProdutoRepository) FindAll() ([]models.Produto, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	produtoList := make([]models.Produto, 0, len(r.produtos))
	for _, p := range r.produtos {
		produtoList = append(produtoList, p)
	}
	sort.Slice(produtoList, func(i, j int) bool {
		return produtoList[i].ID < produtoList[j].ID
	})
	return produtoList, nil
}

// FindByID returns a produto by its ID.
func (r *MemoryProdutoRepository) FindByID(id int64) (*models.Produto, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	produto, ok := r.produtos[id]
	if !ok {
		return nil, ErrProdutoNotFound
	}
	return &produto, nil
}

// Save inserts or replaces a produto.
func (r *MemoryProdutoRepository) Save(produto *models.Produto) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if produto.ID == 0 {
		produto.ID = r.nextID
	}
	if produto.ID >= r.nextID {
		r.nextID = produto.ID + 1
	}
	r.produtos[produto.ID] = *produto
	return nil
}

// DeleteByID removes a produto by its ID.
func (r *MemoryProdutoRepository) DeleteByID(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.produtos, id)
	return nil
}
