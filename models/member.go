// Package models contains domain entities and business models for the subscription onboarding system
package models

import (
	"time"

	"github.com/google/uuid"
)

// Collection caps per member, enforced at the mutation boundary.
const (
	MaxAccessCodesPerMember   = 3
	MaxAssignedUnitsPerMember = 1
	MaxVehiclesPerMember      = 3
)

// Access code type constants
const (
	AccessCodeTypePermit   = "PERMIT"
	AccessCodeTypeProxCard = "PROXCARD"
)

// Member ("Parker") is an individual covered by a plan, with access
// credentials, an optional parking-unit assignment, and vehicles.
//
// SubscriptionMemberID is unique within the owning account and monotonic
// across all of that account's plans. It is never renumbered, so holes are
// acceptable after member removal. SubscriptionID is a back-reference to the
// plan that currently holds the member.
type Member struct {
	SubscriptionMemberID int    `json:"subscriptionMemberId"`
	SubscriptionID       int    `json:"subscriptionId"`
	FirstName            string `json:"firstName"`
	LastName             string `json:"lastName"`
	Email                string `json:"email"`
	Phone                string `json:"phone"`

	SubscriptionMemberRateplanName string `json:"subscriptionMemberRateplanName"`

	AccessCodes   []AccessCode   `json:"accessCodes"`
	AssignedUnits []AssignedUnit `json:"assignedUnits"`
	Vehicles      []Vehicle      `json:"vehicles"`

	// CreatedAt is used only for stable display ordering.
	CreatedAt time.Time `json:"createdAt"`
}

// AccessCode is a PERMIT or PROXCARD credential attached to a member.
type AccessCode struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Type string `json:"type"`
}

// AssignedUnit is a free-text parking unit assignment (e.g. a space number).
type AssignedUnit struct {
	ID   string `json:"id"`
	Unit string `json:"unit"`
}

// Vehicle describes one vehicle registered to a member.
type Vehicle struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	PlateNumber string `json:"plateNumber"`
	Make        string `json:"make"`
	Model       string `json:"model"`
	Color       string `json:"color"`
	State       string `json:"state"`
}

// NewItemID issues a unique token for nested item identity. IDs are generated
// at creation time, never derived from current list length.
func NewItemID() string {
	return uuid.NewString()
}

// AccessCodeField names an editable access code field.
type AccessCodeField string

// AccessCode field commands
const (
	AccessCodeFieldCode AccessCodeField = "code"
	AccessCodeFieldType AccessCodeField = "type"
)

// AssignedUnitField names an editable assigned unit field.
type AssignedUnitField string

// AssignedUnit field commands
const (
	AssignedUnitFieldUnit AssignedUnitField = "unit"
)

// VehicleField names an editable vehicle field.
type VehicleField string

// Vehicle field commands
const (
	VehicleFieldName        VehicleField = "name"
	VehicleFieldPlateNumber VehicleField = "plateNumber"
	VehicleFieldMake        VehicleField = "make"
	VehicleFieldModel       VehicleField = "model"
	VehicleFieldColor       VehicleField = "color"
	VehicleFieldState       VehicleField = "state"
)
