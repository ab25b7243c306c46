package models

// Product is under manual concurrency control. Its mutable columns are
// split into two independently versioned groups: the info group
// (Name, Description) counted by VersionInfo, and the quantities group
// (UnitsInStock, UnitsOnOrder) counted by VersionQuantities. Each counter
// starts at 1 and advances by exactly 1 on every successful write that
// touches its group.
type Product struct {
	Base
	Name              string
	Description       string
	UnitsInStock      int64
	UnitsOnOrder      int64
	VersionInfo       int64
	VersionQuantities int64
}

// ProductInfo is the wire shape for editing the info group.
type ProductInfo struct {
	ID          int64
	Name        string
	Description string
	VersionInfo int64
}

// ProductInfoFrom extracts the info group from a product.
func ProductInfoFrom(p *Product) *ProductInfo {
	return &ProductInfo{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		VersionInfo: p.VersionInfo,
	}
}

// ProductQuantities is the wire shape for editing the quantities group.
type ProductQuantities struct {
	ID                int64
	UnitsInStock      int64
	UnitsOnOrder      int64
	VersionQuantities int64
}

// ProductQuantitiesFrom extracts the quantities group from a product.
func ProductQuantitiesFrom(p *Product) *ProductQuantities {
	return &ProductQuantities{
		ID:                p.ID,
		UnitsInStock:      p.UnitsInStock,
		UnitsOnOrder:      p.UnitsOnOrder,
		VersionQuantities: p.VersionQuantities,
	}
}
