package models

import (
	"encoding/json"
	"strconv"
)

// Produto represents a product managed by the API.
// ID is assigned by the store on first save; every other field is passed through untouched.
type Produto struct {
	ID          int64   `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

// TableName pins the table name so GORM doesn't pluralize it as "produtoes".
func (Produto) TableName() string {
	return "produtos"
}

// UnmarshalJSON decodes a Produto, tolerating any JSON value for "id".
// Create and update overwrite the ID, so an id that is not an int64
// (fractional, out of range, a string) decodes as 0 instead of failing the body.
func (p *Produto) UnmarshalJSON(data []byte) error {
	type plain Produto
	aux := struct {
		*plain
		ID json.RawMessage `json:"id"`
	}{plain: (*plain)(p)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	p.ID = 0
	if id, err := strconv.ParseInt(string(aux.ID), 10, 64); err == nil {
		p.ID = id
	}
	return nil
}
