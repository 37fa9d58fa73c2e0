// Package dto contains Data Transfer Objects for API request and response structures
package dto

import "github.com/lazparking/subscription-onboarding/models"

// AccountPatch carries scalar account field edits. Nil fields are untouched.
type AccountPatch struct {
	AccountType            *string `json:"account_type,omitempty" validate:"omitempty,oneof=Corporate Individual"`
	AccountDefaultLanguage *string `json:"account_default_language,omitempty" validate:"omitempty,oneof=EN_US FR_CA EN_CA"`

	AccountFirstName *string `json:"account_first_name,omitempty" validate:"omitempty,max=50"`
	AccountLastName  *string `json:"account_last_name,omitempty" validate:"omitempty,max=50"`
	AccountEmail     *string `json:"account_email,omitempty" validate:"omitempty,email,max=255"`
	AccountPhone     *string `json:"account_phone,omitempty" validate:"omitempty,max=20"`
	AccountAddress1  *string `json:"account_address1,omitempty" validate:"omitempty,max=255"`
	AccountAddress2  *string `json:"account_address2,omitempty" validate:"omitempty,max=255"`
	AccountCity      *string `json:"account_city,omitempty" validate:"omitempty,max=100"`
	AccountState     *string `json:"account_state,omitempty" validate:"omitempty,max=50"`
	AccountCountry   *string `json:"account_country,omitempty" validate:"omitempty,oneof=CA US"`
	AccountZipCode   *string `json:"account_zip_code,omitempty" validate:"omitempty,max=10"`

	AccountBillToFirstName *string `json:"account_bill_to_first_name,omitempty" validate:"omitempty,max=50"`
	AccountBillToLastName  *string `json:"account_bill_to_last_name,omitempty" validate:"omitempty,max=50"`
	AccountBillToEmail     *string `json:"account_bill_to_email,omitempty" validate:"omitempty,email,max=255"`
	AccountBillToPhone     *string `json:"account_bill_to_phone,omitempty" validate:"omitempty,max=20"`
	AccountBillToAddress1  *string `json:"account_bill_to_address1,omitempty" validate:"omitempty,max=255"`
	AccountBillToAddress2  *string `json:"account_bill_to_address2,omitempty" validate:"omitempty,max=255"`
	AccountBillToCity      *string `json:"account_bill_to_city,omitempty" validate:"omitempty,max=100"`
	AccountBillToState     *string `json:"account_bill_to_state,omitempty" validate:"omitempty,max=50"`
	AccountBillToCountry   *string `json:"account_bill_to_country,omitempty" validate:"omitempty,oneof=CA US"`
	AccountBillToZipCode   *string `json:"account_bill_to_zip_code,omitempty" validate:"omitempty,max=10"`
}

// ApplyTo overwrites the account's fields with every non-nil patch field.
func (p *AccountPatch) ApplyTo(account *models.Account) {
	setString(&account.AccountType, p.AccountType)
	setString(&account.AccountDefaultLanguage, p.AccountDefaultLanguage)
	setString(&account.AccountFirstName, p.AccountFirstName)
	setString(&account.AccountLastName, p.AccountLastName)
	setString(&account.AccountEmail, p.AccountEmail)
	setString(&account.AccountPhone, p.AccountPhone)
	setString(&account.AccountAddress1, p.AccountAddress1)
	setString(&account.AccountAddress2, p.AccountAddress2)
	setString(&account.AccountCity, p.AccountCity)
	setString(&account.AccountState, p.AccountState)
	setString(&account.AccountCountry, p.AccountCountry)
	setString(&account.AccountZipCode, p.AccountZipCode)
	setString(&account.AccountBillToFirstName, p.AccountBillToFirstName)
	setString(&account.AccountBillToLastName, p.AccountBillToLastName)
	setString(&account.AccountBillToEmail, p.AccountBillToEmail)
	setString(&account.AccountBillToPhone, p.AccountBillToPhone)
	setString(&account.AccountBillToAddress1, p.AccountBillToAddress1)
	setString(&account.AccountBillToAddress2, p.AccountBillToAddress2)
	setString(&account.AccountBillToCity, p.AccountBillToCity)
	setString(&account.AccountBillToState, p.AccountBillToState)
	setString(&account.AccountBillToCountry, p.AccountBillToCountry)
	setString(&account.AccountBillToZipCode, p.AccountBillToZipCode)
}

// PlanPatch carries scalar subscription plan edits. Nil fields are untouched.
type PlanPatch struct {
	SubscriptionName            *string `json:"subscription_name,omitempty" validate:"omitempty,max=100"`
	SubscriptionType            *string `json:"subscription_type,omitempty" validate:"omitempty,oneof=TERMED EVERGREEN"`
	SubscriptionEffectiveDate   *string `json:"subscription_effective_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	SubscriptionInvoiceTemplate *string `json:"subscription_invoice_template,omitempty" validate:"omitempty,oneof=LAZ_STANDARD LAZ_SUMMARY"`
}

// ApplyTo overwrites the plan's fields with every non-nil patch field.
func (p *PlanPatch) ApplyTo(plan *models.SubscriptionPlan) {
	setString(&plan.SubscriptionName, p.SubscriptionName)
	setString(&plan.SubscriptionType, p.SubscriptionType)
	setString(&plan.SubscriptionEffectiveDate, p.SubscriptionEffectiveDate)
	setString(&plan.SubscriptionInvoiceTemplate, p.SubscriptionInvoiceTemplate)
}

// MemberPatch carries scalar member edits. Nil fields are untouched.
type MemberPatch struct {
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,max=50"`
	LastName  *string `json:"last_name,omitempty" validate:"omitempty,max=50"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,max=20"`

	SubscriptionMemberRateplanName *string `json:"subscription_member_rateplan_name,omitempty" validate:"omitempty,max=100"`
}

// ApplyTo overwrites the member's fields with every non-nil patch field.
func (p *MemberPatch) ApplyTo(member *models.Member) {
	setString(&member.FirstName, p.FirstName)
	setString(&member.LastName, p.LastName)
	setString(&member.Email, p.Email)
	setString(&member.Phone, p.Phone)
	setString(&member.SubscriptionMemberRateplanName, p.SubscriptionMemberRateplanName)
}

// VehicleInput is the payload for adding a vehicle to a member.
type VehicleInput struct {
	Name        string `json:"name" validate:"omitempty,max=100"`
	PlateNumber string `json:"plate_number" validate:"omitempty,max=20"`
	Make        string `json:"make" validate:"omitempty,max=50"`
	Model       string `json:"model" validate:"omitempty,max=50"`
	Color       string `json:"color" validate:"omitempty,max=30"`
	State       string `json:"state" validate:"omitempty,max=50"`
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
