package businessflow

import (
	"strings"
	"testing"

	"github.com/lazparking/subscription-onboarding/models"
	testingutil "github.com/lazparking/subscription-onboarding/testing"
	"github.com/stretchr/testify/assert"
)

func TestFormatPhone(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{"TenDigits", "5551234567", "(555)123-4567"},
		{"AlreadyFormatted", "(555)123-4567", "(555)123-4567"},
		{"DashSeparated", "555-123-4567", "(555)123-4567"},
		{"WithSpaces", "555 123 4567", "(555)123-4567"},
		{"TooShortUnchanged", "555-123", "555-123"},
		{"ElevenDigitsUnchanged", "15551234567", "15551234567"},
		{"EmptyUnchanged", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, FormatPhone(tc.input))
		})
	}
}

func TestValidateField(t *testing.T) {
	cases := []struct {
		name    string
		field   string
		value   string
		wantErr bool
	}{
		{"FirstNameValid", "AccountFirstName", "Jordan", false},
		{"FirstNameEmpty", "AccountFirstName", "", true},
		{"FirstNameTooShort", "AccountFirstName", "J", true},
		{"FirstNameSingleRuneTooShort", "AccountFirstName", "李", true},
		{"FirstNameAccentedCountedAsRunes", "AccountFirstName", strings.Repeat("é", 50), false},
		{"FirstNameTooLong", "AccountFirstName", strings.Repeat("é", 51), true},
		{"BillToLastNameEmpty", "AccountBillToLastName", "", true},

		{"AccountEmailValid", "AccountEmail", "a@b.com", false},
		{"AccountEmailEmpty", "AccountEmail", "", true},
		{"AccountEmailMalformed", "AccountEmail", "not-an-email", true},
		{"MemberEmailEmptyAllowed", "Email", "", false},
		{"MemberEmailMalformed", "Email", "not-an-email", true},

		{"PhoneValid", "AccountPhone", "(555)123-4567", false},
		{"PhoneRawDigitsNormalized", "AccountPhone", "5551234567", false},
		{"PhoneEmptyAllowed", "AccountPhone", "", false},
		{"PhonePartial", "AccountPhone", "555-123", true},

		{"USZipValid", "AccountZipCode", "02101", false},
		{"USZipPlusFour", "AccountZipCode", "02101-1234", false},
		{"CAPostalValid", "AccountZipCode", "M5V 3L9", false},
		{"CAPostalNoSpace", "AccountZipCode", "M5V3L9", false},
		{"ZipEmptyAllowed", "AccountZipCode", "", false},
		{"ZipInvalid", "AccountZipCode", "1234", true},

		{"CountryCA", "AccountCountry", "CA", false},
		{"CountryUS", "AccountCountry", "US", false},
		{"CountryInvalid", "AccountCountry", "FR", true},
		{"CountryEmpty", "AccountCountry", "", true},

		{"AccountTypeCorporate", "AccountType", models.AccountTypeCorporate, false},
		{"AccountTypeInvalid", "AccountType", "Business", true},

		{"LanguageValid", "AccountDefaultLanguage", models.LanguageFRCA, false},
		{"LanguageEmptyAllowed", "AccountDefaultLanguage", "", false},
		{"LanguageInvalid", "AccountDefaultLanguage", "DE_DE", true},

		{"UncoveredFieldAccepted", "AccountAddress1", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg := ValidateField(tc.field, tc.value)
			if tc.wantErr {
				assert.NotEmpty(t, msg)
			} else {
				assert.Empty(t, msg)
			}
		})
	}
}

func TestValidateAccount(t *testing.T) {
	t.Run("ValidAccountHasNoErrors", func(t *testing.T) {
		account := testingutil.ValidAccount(1, 1)
		assert.Empty(t, ValidateAccount(account))
	})

	t.Run("EmptyAccountReportsRequiredFields", func(t *testing.T) {
		errs := ValidateAccount(&models.Account{})
		assert.Contains(t, errs, "AccountFirstName")
		assert.Contains(t, errs, "AccountLastName")
		assert.Contains(t, errs, "AccountEmail")
		assert.Contains(t, errs, "AccountCountry")
		assert.Contains(t, errs, "AccountType")
		assert.Contains(t, errs, "AccountBillToEmail")
		assert.NotContains(t, errs, "AccountPhone")
		assert.NotContains(t, errs, "AccountZipCode")
	})
}

func TestValidateSubscriptionPlans(t *testing.T) {
	t.Run("PathKeysAttributeErrors", func(t *testing.T) {
		plans := []*models.SubscriptionPlan{
			{
				SubscriptionID: 1,
				SubscriptionMembers: []*models.Member{
					{SubscriptionMemberID: 1, Email: "bad-email"},
				},
			},
		}

		errs := ValidateSubscriptionPlans(plans)
		assert.Contains(t, errs, "subscriptionPlans[0].SubscriptionName")
		assert.Contains(t, errs, "subscriptionPlans[0].SubscriptionType")
		assert.Contains(t, errs, "subscriptionPlans[0].SubscriptionEffectiveDate")
		assert.Contains(t, errs, "subscriptionPlans[0].SubscriptionInvoiceTemplate")
		assert.Contains(t, errs, "subscriptionPlans[0].SubscriptionMembers[0].FirstName")
		assert.Contains(t, errs, "subscriptionPlans[0].SubscriptionMembers[0].SubscriptionMemberRateplanName")
		assert.Contains(t, errs, "subscriptionPlans[0].SubscriptionMembers[0].Email")
	})

	t.Run("ValidPlansHaveNoErrors", func(t *testing.T) {
		account := testingutil.ValidAccount(1, 1)
		assert.Empty(t, ValidateSubscriptionPlans(account.SubscriptionPlans))
	})
}
