// Package models contains domain entities and business models for the subscription onboarding system
package models

// Subscription type constants
const (
	SubscriptionTypeTermed    = "TERMED"
	SubscriptionTypeEvergreen = "EVERGREEN"
)

// Invoice template constants
const (
	InvoiceTemplateStandard = "LAZ_STANDARD"
	InvoiceTemplateSummary  = "LAZ_SUMMARY"
)

// SubscriptionPlan groups one or more members under shared billing terms.
//
// SubscriptionID is globally unique across all accounts in the session (a
// single running counter, not per-account) and is renumbered to stay dense
// after plan or account deletions.
type SubscriptionPlan struct {
	SubscriptionID              int    `json:"subscriptionId"`
	SubscriptionName            string `json:"subscriptionName"`
	SubscriptionType            string `json:"subscriptionType"`
	SubscriptionEffectiveDate   string `json:"subscriptionEffectiveDate"`
	SubscriptionInvoiceTemplate string `json:"subscriptionInvoiceTemplate"`

	SubscriptionMembers []*Member `json:"subscriptionMembers"`
}

// MemberByID returns the member with the given member ID, nil if absent.
func (p *SubscriptionPlan) MemberByID(memberID int) *Member {
	for _, m := range p.SubscriptionMembers {
		if m.SubscriptionMemberID == memberID {
			return m
		}
	}
	return nil
}
