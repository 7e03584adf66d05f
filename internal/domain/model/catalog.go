package model

// SKU identifies a purchasable catalogue entry of a game product.
type SKU struct {
	ProductCode string
	ItemRef     string
}

// CatalogItem is a priced catalogue entry. Price is in settlement currency units.
type CatalogItem struct {
	ProductCode string
	ItemRef     string
	Name        string
	Price       int64
	Active      bool
}

// Purchasable reports whether the item may be sold right now.
func (i CatalogItem) Purchasable() bool {
	return i.Active && i.Price > 0
}
