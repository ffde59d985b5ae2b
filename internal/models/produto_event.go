package models

import "time"

// ProdutoEventType names a lifecycle transition of a Produto.
type ProdutoEventType string

const (
	ProdutoCreated ProdutoEventType = "produto.created"
	ProdutoUpdated ProdutoEventType = "produto.updated"
	ProdutoDeleted ProdutoEventType = "produto.deleted"
)

// ProdutoEvent is published after a Produto is created, updated or deleted.
type ProdutoEvent struct {
	Type       ProdutoEventType `json:"type"`
	ProdutoID  int64           `json:"produto_id"`
	Produto    *Produto         `json:"produto,omitempty"` // nil on delete
	OccurredAt time.Time        `json:"occurred_at"`
}
