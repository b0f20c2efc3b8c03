package models

// Room is a public chat room. Rooms are provisioned at bootstrap and never deleted.
type Room struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Slug  string `gorm:"size:50;not null;uniqueIndex" json:"slug"`
	Title string `gorm:"size:100;not null" json:"title"`
}
