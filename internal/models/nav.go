package models

// NavItem is one entry of the storefront navigation bar, rendered in
// ascending Position order.
type NavItem struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Label    string `gorm:"type:varchar(50);not null" json:"label"`
	URL      string `gorm:"type:varchar(255);not null" json:"url"`
	Position int    `gorm:"not null;default:0;index" json:"position"`
}
