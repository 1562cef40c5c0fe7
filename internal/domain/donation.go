package domain

import (
	"time" // Timestamps

	"github.com/shopspring/decimal" // Fixed-point decimal amounts
)

// Donation Model - one contribution event, append-only (no update/delete operation)
type Donation struct {
	ID        uint            `gorm:"primaryKey" json:"id"`                       // Primary key, store-assigned
	UserID    uint            `gorm:"not null;index" json:"user_id"`              // Foreign key to the owning User
	Amount    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`  // Donated amount, 2 decimal places, 10 digits max
	CreatedAt time.Time       `gorm:"autoCreateTime;<-:create" json:"created_at"` // Timestamp of creation, set once by the store
	PosX      *float64        `gorm:"column:pos_x" json:"pos_x"`                  // Planted-tree x coordinate, optional
	PosY      *float64        `gorm:"column:pos_y" json:"pos_y"`                  // Planted-tree y coordinate, optional
	PosZ      *float64        `gorm:"column:pos_z" json:"pos_z"`                  // Planted-tree z coordinate, optional
}

// Position is the 3D location of a planted tree. Each coordinate is
// independently optional.
type Position struct {
	X *float64 `json:"x"` // x coordinate or null
	Y *float64 `json:"y"` // y coordinate or null
	Z *float64 `json:"z"` // z coordinate or null
}

// Position returns the donation's coordinate triple, or nil when no
// coordinate was recorded at all.
func (d *Donation) Position() *Position {
	if d.PosX == nil && d.PosY == nil && d.PosZ == nil {
		return nil // No coordinate recorded for this donation
	}
	return &Position{X: d.PosX, Y: d.PosY, Z: d.PosZ}
}

// SetPosition copies a coordinate triple onto the donation's columns.
// A nil position leaves all three columns null.
func (d *Donation) SetPosition(p *Position) {
	if p == nil {
		return // Nothing to set
	}
	d.PosX = p.X // x coordinate
	d.PosY = p.Y // y coordinate
	d.PosZ = p.Z // z coordinate
}
