package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaxMemberID(t *testing.T) {
	account := &Account{
		SubscriptionPlans: []*SubscriptionPlan{
			{SubscriptionID: 1, SubscriptionMembers: []*Member{
				{SubscriptionMemberID: 1},
				{SubscriptionMemberID: 4},
			}},
			{SubscriptionID: 2, SubscriptionMembers: []*Member{
				{SubscriptionMemberID: 2},
			}},
		},
	}

	assert.Equal(t, 4, account.MaxMemberID())
	assert.Equal(t, 0, (&Account{}).MaxMemberID())
}

func TestPlanByID(t *testing.T) {
	plan := &SubscriptionPlan{SubscriptionID: 2}
	account := &Account{SubscriptionPlans: []*SubscriptionPlan{{SubscriptionID: 1}, plan}}

	assert.Same(t, plan, account.PlanByID(2))
	assert.Nil(t, account.PlanByID(3))
}

func TestMemberByID(t *testing.T) {
	member := &Member{SubscriptionMemberID: 7}
	plan := &SubscriptionPlan{SubscriptionMembers: []*Member{{SubscriptionMemberID: 1}, member}}

	assert.Same(t, member, plan.MemberByID(7))
	assert.Nil(t, plan.MemberByID(2))
}

func TestCopyBillingFromHolder(t *testing.T) {
	account := &Account{
		AccountFirstName: "Jordan",
		AccountLastName:  "Lee",
		AccountEmail:     "jordan@example.com",
		AccountPhone:     "(555)123-4567",
		AccountAddress1:  "1 Main St",
		AccountCity:      "Boston",
		AccountState:     "MA",
		AccountCountry:   CountryUS,
		AccountZipCode:   "02101",
	}

	account.CopyBillingFromHolder()

	assert.Equal(t, "Jordan", account.AccountBillToFirstName)
	assert.Equal(t, "jordan@example.com", account.AccountBillToEmail)
	assert.Equal(t, "02101", account.AccountBillToZipCode)

	// Snapshot, not a live link.
	account.AccountEmail = "new@example.com"
	assert.Equal(t, "jordan@example.com", account.AccountBillToEmail)
}

func TestNewItemID(t *testing.T) {
	first := NewItemID()
	second := NewItemID()

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}
