package domain

import "time"

// Product is a catalog item managed by the back-office and read by the
// storefront. Media references and visibility flags are optional.
type Product struct {
	ID                  int64     `json:"id,string" form:"id"`
	Code                string    `gorm:"index" json:"code" form:"code"`
	Ean                 string    `json:"ean" form:"ean"`
	Name                string    `gorm:"index" json:"name" form:"name"`
	Description         string    `json:"description" form:"description"`
	Category            string    `gorm:"index" json:"category" form:"category"`
	Price               float64   `json:"price" form:"price"`
	OriginalPrice       float64   `json:"originalPrice,omitempty" form:"original_price"`
	Image               string    `gorm:"size:1024" json:"image" form:"image"`
	InStock             bool      `json:"inStock" form:"in_stock"`
	IsHighlighted       bool      `json:"isHighlighted,omitempty" form:"is_highlighted"`
	ExpirationDate      string    `json:"expirationDate,omitempty" form:"expiration_date"`
	LeafletURL          string    `gorm:"size:1024" json:"leafletUrl,omitempty" form:"leaflet_url"`
	NutritionalInfo     string    `json:"nutritionalInfo,omitempty" form:"nutritional_info"`
	IndicationsImageURL string    `gorm:"size:1024" json:"indicationsImageUrl,omitempty" form:"indications_image_url"`
	IndicationsText     string    `json:"indicationsText,omitempty" form:"indications_text"`
	ShowLeaflet         bool      `json:"showLeaflet,omitempty" form:"show_leaflet"`
	ShowNutritionalInfo bool      `json:"showNutritionalInfo,omitempty" form:"show_nutritional_info"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

// CartItem is a frozen product snapshot plus a quantity of at least 1.
// Lines are removed outright, never kept at zero quantity.
type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}
