package dto

// SetActiveAccountRequest selects which session account subsequent edits target.
type SetActiveAccountRequest struct {
	Index int `json:"index" validate:"gte=0"`
}

// UpdateAccountRequest applies a partial edit to one session account.
type UpdateAccountRequest struct {
	Index int          `json:"index" validate:"gte=0"`
	Patch AccountPatch `json:"patch"`
}

// UpdatePlanRequest applies a partial edit to one subscription plan.
type UpdatePlanRequest struct {
	SubscriptionID int       `json:"subscription_id" validate:"required,gt=0"`
	Patch          PlanPatch `json:"patch"`
}

// UpdateMemberRequest applies a partial edit to one member.
type UpdateMemberRequest struct {
	SubscriptionID       int         `json:"subscription_id" validate:"required,gt=0"`
	SubscriptionMemberID int         `json:"subscription_member_id" validate:"required,gt=0"`
	Patch                MemberPatch `json:"patch"`
}

// MoveMemberRequest moves a member between two plans of the active account.
type MoveMemberRequest struct {
	SubscriptionMemberID int `json:"subscription_member_id" validate:"required,gt=0"`
	FromSubscriptionID   int `json:"from_subscription_id" validate:"required,gt=0"`
	ToSubscriptionID     int `json:"to_subscription_id" validate:"required,gt=0"`
}

// AddAccessCodeRequest attaches an access code to a member.
type AddAccessCodeRequest struct {
	SubscriptionID       int    `json:"subscription_id" validate:"required,gt=0"`
	SubscriptionMemberID int    `json:"subscription_member_id" validate:"required,gt=0"`
	Code                 string `json:"code" validate:"required,max=50"`
	Type                 string `json:"type" validate:"required,oneof=PERMIT PROXCARD"`
}

// UpdateAccessCodeRequest edits one field of an existing access code.
type UpdateAccessCodeRequest struct {
	SubscriptionID       int    `json:"subscription_id" validate:"required,gt=0"`
	SubscriptionMemberID int    `json:"subscription_member_id" validate:"required,gt=0"`
	ItemID               string `json:"item_id" validate:"required,uuid4"`
	Field                string `json:"field" validate:"required,oneof=code type"`
	Value                string `json:"value" validate:"max=50"`
}

// AddAssignedUnitRequest attaches an assigned unit to a member.
type AddAssignedUnitRequest struct {
	SubscriptionID       int    `json:"subscription_id" validate:"required,gt=0"`
	SubscriptionMemberID int    `json:"subscription_member_id" validate:"required,gt=0"`
	Unit                 string `json:"unit" validate:"required,max=50"`
}

// UpdateAssignedUnitRequest edits one field of an existing assigned unit.
type UpdateAssignedUnitRequest struct {
	SubscriptionID       int    `json:"subscription_id" validate:"required,gt=0"`
	SubscriptionMemberID int    `json:"subscription_member_id" validate:"required,gt=0"`
	ItemID               string `json:"item_id" validate:"required,uuid4"`
	Field                string `json:"field" validate:"required,oneof=unit"`
	Value                string `json:"value" validate:"max=50"`
}

// AddVehicleRequest attaches a vehicle to a member.
type AddVehicleRequest struct {
	SubscriptionID       int          `json:"subscription_id" validate:"required,gt=0"`
	SubscriptionMemberID int          `json:"subscription_member_id" validate:"required,gt=0"`
	Vehicle              VehicleInput `json:"vehicle"`
}

// UpdateVehicleRequest edits one field of an existing vehicle.
type UpdateVehicleRequest struct {
	SubscriptionID       int    `json:"subscription_id" validate:"required,gt=0"`
	SubscriptionMemberID int    `json:"subscription_member_id" validate:"required,gt=0"`
	ItemID               string `json:"item_id" validate:"required,uuid4"`
	Field                string `json:"field" validate:"required,oneof=name plateNumber make model color state"`
	Value                string `json:"value" validate:"max=100"`
}
