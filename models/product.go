package models

import "time"

type Product struct {
	ID            string    `json:"id" bson:"_id"`
	Name          string    `json:"name" bson:"name"`
	Description   string    `json:"description" bson:"description"`
	OfferPrice    float64   `json:"offerPrice" bson:"offerPrice"`
	OriginalPrice *float64  `json:"originalPrice,omitempty" bson:"originalPrice,omitempty"`
	Category      string    `json:"category" bson:"category"`
	CategorySlug  string    `json:"categorySlug" bson:"categorySlug"`
	SubCategory   string    `json:"subCategory,omitempty" bson:"subCategory,omitempty"`
	Brand         string    `json:"brand,omitempty" bson:"brand,omitempty"`
	ImageURL      string    `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	Stock         int       `json:"stock" bson:"stock"`
	IsFeatured    bool      `json:"isFeatured" bson:"isFeatured"`
	IsWeeklyDeal  bool      `json:"isWeeklyDeal" bson:"isWeeklyDeal"`
	Availability  string    `json:"availability" bson:"availability"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
}

type ProductFilter struct {
	CategorySlug string
	SubCategory  string
	Featured     bool
	WeeklyDeal   bool
}

// StockLine is one product/quantity pair for a stock reservation.
type StockLine struct {
	ProductID string
	Quantity  int
}
