// Package models contains domain entities and business models for the subscription onboarding system
package models

import "time"

// IDSet stores one named set of identifiers for the durable ID store when the
// Postgres storage provider is selected. Values holds a JSON-encoded integer
// array; every write replaces the full set.
type IDSet struct {
	Name      string    `gorm:"primaryKey;size:64" json:"name"`
	Values    string    `gorm:"type:text;not null" json:"values"`
	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (IDSet) TableName() string { return "id_sets" }
