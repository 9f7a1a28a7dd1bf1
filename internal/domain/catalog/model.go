// Package catalog holds the read-only reference data the ledger depends on:
// branches and products. Their CRUD lives outside this service.
package catalog

import (
	"github.com/PraveenHasintha/inventra-backend/internal/core/id"
	"github.com/PraveenHasintha/inventra-backend/internal/core/types"
)

// Branch is a physical store location holding stock.
type Branch struct {
	ID       id.ID  `db:"id" json:"id"`
	Code     string `db:"code" json:"code"`
	Name     string `db:"name" json:"name"`
	IsActive bool   `db:"is_active" json:"isActive"`
}

// Product is a sellable item.
type Product struct {
	ID           id.ID            `db:"id" json:"id"`
	SKU          string           `db:"sku" json:"sku"`
	Name         string           `db:"name" json:"name"`
	SellingPrice types.MinorUnits `db:"selling_price" json:"sellingPrice"`
	IsActive     bool             `db:"is_active" json:"isActive"`
}
