package gormstore

import "time"

// Ticket mirrors the tickets table.
type Ticket struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	Token     string    `gorm:"not null;index:idx_tickets_token"`
	CreatedAt time.Time `gorm:"not null"`
	CarType   string    `gorm:"not null"`
	Brand     string    `gorm:"not null"`
	Plate     string    `gorm:"not null"`
	Filename  string    `gorm:"not null"`
}

func (Ticket) TableName() string { return "tickets" }
