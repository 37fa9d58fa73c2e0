// Package testing provides test fixtures for the onboarding session and storage layers
package testing

import (
	"fmt"

	"github.com/lazparking/subscription-onboarding/models"
	"github.com/lazparking/subscription-onboarding/repository"
	"github.com/lazparking/subscription-onboarding/utils"
)

// NewIDSetStore returns an empty in-memory identifier store.
func NewIDSetStore() repository.IDSetRepository {
	return repository.NewMemoryIDSetRepository()
}

// ValidAccount builds an account that passes every validation rule, holding
// one plan with one member mirroring the holder.
func ValidAccount(accountID, subscriptionID int) *models.Account {
	account := &models.Account{
		AccountID:              accountID,
		AccountType:            models.AccountTypeIndividual,
		AccountDefaultLanguage: models.LanguageENUS,
		AccountFirstName:       "Jordan",
		AccountLastName:        fmt.Sprintf("Holder%d", accountID),
		AccountEmail:           fmt.Sprintf("holder%d@example.com", accountID),
		AccountPhone:           "(555)123-4567",
		AccountAddress1:        "1 Main St",
		AccountCity:            "Boston",
		AccountState:           "MA",
		AccountCountry:         models.CountryUS,
		AccountZipCode:         "02101",
	}
	account.CopyBillingFromHolder()
	account.SubscriptionPlans = []*models.SubscriptionPlan{
		ValidPlan(subscriptionID, account),
	}
	return account
}

// ValidPlan builds a plan with every required field set and one member
// mirroring the account holder.
func ValidPlan(subscriptionID int, account *models.Account) *models.SubscriptionPlan {
	return &models.SubscriptionPlan{
		SubscriptionID:              subscriptionID,
		SubscriptionName:            fmt.Sprintf("Monthly Parking %d", subscriptionID),
		SubscriptionType:            models.SubscriptionTypeEvergreen,
		SubscriptionEffectiveDate:   "2026-09-01",
		SubscriptionInvoiceTemplate: models.InvoiceTemplateStandard,
		SubscriptionMembers: []*models.Member{
			ValidMember(1, subscriptionID, account),
		},
	}
}

// ValidMember builds a member with every required field set.
func ValidMember(memberID, subscriptionID int, account *models.Account) *models.Member {
	return &models.Member{
		SubscriptionMemberID: memberID,
		SubscriptionID:       subscriptionID,
		FirstName:            account.AccountFirstName,
		LastName:             account.AccountLastName,
		Email:                account.AccountEmail,
		Phone:                account.AccountPhone,

		SubscriptionMemberRateplanName: "Standard Monthly",

		AccessCodes:   []models.AccessCode{},
		AssignedUnits: []models.AssignedUnit{},
		Vehicles:      []models.Vehicle{},
		CreatedAt:     utils.UTCNow(),
	}
}
