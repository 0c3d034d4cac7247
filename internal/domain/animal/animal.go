package animal

import "time"

// Animal is owned by the animal registry. The generation pipeline only reads it.
type Animal struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"column:name;not null" json:"name"`
	Species   string    `gorm:"column:species" json:"species"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Animal) TableName() string { return "animals" }
