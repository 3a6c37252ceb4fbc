package services

import (
	"context"

	"storefront/internal/domain"
	"storefront/internal/repos"
)

const lowStockThreshold = 5

type InventoryService struct {
	Inv *repos.InventoryRepo
}

func NewInventoryService(inv *repos.InventoryRepo) *InventoryService {
	return &InventoryService{Inv: inv}
}

// CheckAvailability converts stock into IN_STOCK / LOW_STOCK / OUT_OF_STOCK.
// Unknown products and products marked unavailable are out of stock.
func (s *InventoryService) CheckAvailability(ctx context.Context, productSlug string) (domain.Availability, error) {
	row, err := s.Inv.Stock(ctx, productSlug)
	if err != nil {
		if repos.IsNotFound(err) {
			return domain.Availability{Status: "OUT_OF_STOCK", Qty: 0}, nil
		}
		return domain.Availability{}, err
	}
	qty := row.Qty
	if !row.Available {
		qty = 0
	}

	status := "OUT_OF_STOCK"
	switch {
	case qty >= lowStockThreshold:
		status = "IN_STOCK"
	case qty > 0:
		status = "LOW_STOCK"
	}
	return domain.Availability{Status: status, Qty: qty}, nil
}

// SetStock overwrites a product's units in stock.
func (s *InventoryService) SetStock(ctx context.Context, productID int64, qty int) error {
	return s.Inv.SetQty(ctx, productID, qty)
}

// Restock sets the units in stock for the product behind productSlug.
func (s *InventoryService) Restock(ctx context.Context, productSlug string, qty int) error {
	row, err := s.Inv.Stock(ctx, productSlug)
	if repos.IsNotFound(err) {
		return domain.ErrProductNotFound
	}
	if err != nil {
		return err
	}
	return s.SetStock(ctx, row.ProductID, qty)
}

// LowStock lists products that would not report IN_STOCK.
func (s *InventoryService) LowStock(ctx context.Context) ([]repos.StockRow, error) {
	return s.Inv.ListLow(ctx, lowStockThreshold-1)
}
