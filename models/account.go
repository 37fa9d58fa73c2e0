// Package models contains domain entities and business models for the subscription onboarding system
package models

// Account is one onboarding record for a subscriber/billing party. It owns an
// ordered sequence of subscription plans.
//
// AccountID is densely sequential over the union of submitted and active ID
// sets and is renumbered after deletions, so a given numeric ID is only
// meaningful as of one specific export. Downstream consumers must never treat
// it as a long-lived primary key.
type Account struct {
	AccountID              int    `json:"accountId"`
	AccountType            string `json:"accountType"`
	AccountDefaultLanguage string `json:"accountDefaultLanguage"`

	// Account holder identity/contact/address
	AccountFirstName string `json:"accountFirstName"`
	AccountLastName  string `json:"accountLastName"`
	AccountEmail     string `json:"accountEmail"`
	AccountPhone     string `json:"accountPhone"`
	AccountAddress1  string `json:"accountAddress1"`
	AccountAddress2  string `json:"accountAddress2"`
	AccountCity      string `json:"accountCity"`
	AccountState     string `json:"accountState"`
	AccountCountry   string `json:"accountCountry"`
	AccountZipCode   string `json:"accountZipCode"`

	// Billing contact, structurally identical to the holder fields and
	// independently editable. CopyBillingFromHolder takes a one-time
	// snapshot of the holder fields; later holder edits do not re-sync.
	AccountBillToFirstName string `json:"accountBillToFirstName"`
	AccountBillToLastName  string `json:"accountBillToLastName"`
	AccountBillToEmail     string `json:"accountBillToEmail"`
	AccountBillToPhone     string `json:"accountBillToPhone"`
	AccountBillToAddress1  string `json:"accountBillToAddress1"`
	AccountBillToAddress2  string `json:"accountBillToAddress2"`
	AccountBillToCity      string `json:"accountBillToCity"`
	AccountBillToState     string `json:"accountBillToState"`
	AccountBillToCountry   string `json:"accountBillToCountry"`
	AccountBillToZipCode   string `json:"accountBillToZipCode"`

	SubscriptionPlans []*SubscriptionPlan `json:"subscriptionPlans"`
}

// MaxMemberID returns the highest SubscriptionMemberID across all plans of the
// account, 0 when the account holds no members.
func (a *Account) MaxMemberID() int {
	maxID := 0
	for _, plan := range a.SubscriptionPlans {
		for _, m := range plan.SubscriptionMembers {
			if m.SubscriptionMemberID > maxID {
				maxID = m.SubscriptionMemberID
			}
		}
	}
	return maxID
}

// PlanByID returns the plan with the given subscription ID, nil if absent.
func (a *Account) PlanByID(subscriptionID int) *SubscriptionPlan {
	for _, plan := range a.SubscriptionPlans {
		if plan.SubscriptionID == subscriptionID {
			return plan
		}
	}
	return nil
}

// CopyBillingFromHolder snapshots the holder fields into the billing fields.
func (a *Account) CopyBillingFromHolder() {
	a.AccountBillToFirstName = a.AccountFirstName
	a.AccountBillToLastName = a.AccountLastName
	a.AccountBillToEmail = a.AccountEmail
	a.AccountBillToPhone = a.AccountPhone
	a.AccountBillToAddress1 = a.AccountAddress1
	a.AccountBillToAddress2 = a.AccountAddress2
	a.AccountBillToCity = a.AccountCity
	a.AccountBillToState = a.AccountState
	a.AccountBillToCountry = a.AccountCountry
	a.AccountBillToZipCode = a.AccountZipCode
}
