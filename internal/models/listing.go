package models

import "time"

// Listing represents a classified ad posted by a seller.
//
// IsActive is a visibility flag only: inactive listings are hidden from
// search but stay reachable by direct id lookup. Removing a listing for good
// is a hard delete.
type Listing struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"type:varchar(200);not null" validate:"required,max=200"`
	Description string    `json:"description" gorm:"type:text"`
	Price       float64   `json:"price" gorm:"not null" validate:"gte=0"`
	Category    string    `json:"category" gorm:"type:varchar(50);index;not null" validate:"required,max=50"`
	Condition   string    `json:"condition" gorm:"type:varchar(50)"`
	Images      ImageList `json:"images" gorm:"type:text"`
	Location    string    `json:"location" gorm:"type:varchar(100)"`
	IsActive    bool      `json:"is_active" gorm:"index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	SellerID    uint      `json:"seller_id" gorm:"index;not null" validate:"required"`
}
