package models

// User represents a seller account in the marketplace.
type User struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	Name     string    `json:"name" gorm:"type:varchar(100);not null" validate:"required,min=1,max=100"`
	Email    string    `json:"email" gorm:"uniqueIndex;type:varchar(100);not null" validate:"required,email"`
	Phone    string    `json:"phone" gorm:"type:varchar(50)" validate:"omitempty,max=50"`
	Listings []Listing `json:"-" gorm:"foreignKey:SellerID"`
}
