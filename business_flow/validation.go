// Package businessflow contains the core business logic and use cases for subscription onboarding workflows
package businessflow

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/lazparking/subscription-onboarding/models"
)

// Field validation policy. Rules are fixed; see the table in the project docs.
var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern    = regexp.MustCompile(`^\(\d{3}\)\d{3}-\d{4}$`)
	usZipPattern    = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	caPostalPattern = regexp.MustCompile(`^[A-Za-z]\d[A-Za-z][ -]?\d[A-Za-z]\d$`)
	nonDigitPattern = regexp.MustCompile(`\D`)
)

const (
	minNameLength = 2
	maxNameLength = 50
)

// FormatPhone normalizes a ten-digit phone number to (XXX)XXX-XXXX.
// Input that does not contain exactly ten digits is returned unchanged.
func FormatPhone(raw string) string {
	digits := nonDigitPattern.ReplaceAllString(raw, "")
	if len(digits) != 10 {
		return raw
	}
	return fmt.Sprintf("(%s)%s-%s", digits[:3], digits[3:6], digits[6:])
}

// ValidateField maps a field name and value to an error message, or "" when
// the value is valid. The rule is chosen by field-name class: identity names,
// emails, phones, postal codes, country, account type, default language.
// Fields outside those classes are accepted as-is.
func ValidateField(field, value string) string {
	v := strings.TrimSpace(value)

	switch {
	case isNameField(field):
		if v == "" {
			return fmt.Sprintf("%s is required", field)
		}
		if n := utf8.RuneCountInString(v); n < minNameLength || n > maxNameLength {
			return fmt.Sprintf("%s must be between %d and %d characters", field, minNameLength, maxNameLength)
		}

	case isEmailField(field):
		if v == "" {
			if isMemberEmailField(field) {
				return ""
			}
			return fmt.Sprintf("%s is required", field)
		}
		if !emailPattern.MatchString(v) {
			return fmt.Sprintf("%s must be a valid email address", field)
		}

	case isPhoneField(field):
		if v == "" {
			return ""
		}
		if !phonePattern.MatchString(FormatPhone(v)) {
			return fmt.Sprintf("%s must be a valid phone number in (XXX)XXX-XXXX format", field)
		}

	case isZipCodeField(field):
		if v == "" {
			return ""
		}
		if !usZipPattern.MatchString(v) && !caPostalPattern.MatchString(v) {
			return fmt.Sprintf("%s must be a valid US ZIP or Canadian postal code", field)
		}

	case isCountryField(field):
		if v != models.CountryCA && v != models.CountryUS {
			return fmt.Sprintf("%s must be CA or US", field)
		}

	case field == "AccountType":
		if v != models.AccountTypeCorporate && v != models.AccountTypeIndividual {
			return fmt.Sprintf("%s must be %s or %s", field, models.AccountTypeCorporate, models.AccountTypeIndividual)
		}

	case field == "AccountDefaultLanguage":
		if v == "" {
			return ""
		}
		for _, lang := range models.DefaultLanguages {
			if v == lang {
				return ""
			}
		}
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(models.DefaultLanguages, ", "))
	}

	return ""
}

// ValidateAccount validates every policy-covered field of an account. Keys of
// the returned map are the plain field names.
func ValidateAccount(account *models.Account) map[string]string {
	fields := map[string]string{
		"AccountFirstName":       account.AccountFirstName,
		"AccountLastName":        account.AccountLastName,
		"AccountEmail":           account.AccountEmail,
		"AccountPhone":           account.AccountPhone,
		"AccountZipCode":         account.AccountZipCode,
		"AccountCountry":         account.AccountCountry,
		"AccountType":            account.AccountType,
		"AccountDefaultLanguage": account.AccountDefaultLanguage,
		"AccountBillToFirstName": account.AccountBillToFirstName,
		"AccountBillToLastName":  account.AccountBillToLastName,
		"AccountBillToEmail":     account.AccountBillToEmail,
		"AccountBillToPhone":     account.AccountBillToPhone,
		"AccountBillToZipCode":   account.AccountBillToZipCode,
		"AccountBillToCountry":   account.AccountBillToCountry,
	}

	errs := make(map[string]string)
	for field, value := range fields {
		if msg := ValidateField(field, value); msg != "" {
			errs[field] = msg
		}
	}
	return errs
}

// ValidateSubscriptionPlans checks the per-plan and per-member required fields.
// Error keys are path-like so the presentation layer can attribute each
// message to its originating control:
// subscriptionPlans[i].field and subscriptionPlans[i].SubscriptionMembers[j].field.
func ValidateSubscriptionPlans(plans []*models.SubscriptionPlan) map[string]string {
	errs := make(map[string]string)

	for i, plan := range plans {
		planKey := fmt.Sprintf("subscriptionPlans[%d]", i)
		requirePlanField(errs, planKey, "SubscriptionName", plan.SubscriptionName)
		requirePlanField(errs, planKey, "SubscriptionType", plan.SubscriptionType)
		requirePlanField(errs, planKey, "SubscriptionEffectiveDate", plan.SubscriptionEffectiveDate)
		requirePlanField(errs, planKey, "SubscriptionInvoiceTemplate", plan.SubscriptionInvoiceTemplate)

		for j, member := range plan.SubscriptionMembers {
			memberKey := fmt.Sprintf("%s.SubscriptionMembers[%d]", planKey, j)
			requirePlanField(errs, memberKey, "FirstName", member.FirstName)
			requirePlanField(errs, memberKey, "LastName", member.LastName)
			requirePlanField(errs, memberKey, "SubscriptionMemberRateplanName", member.SubscriptionMemberRateplanName)
			if msg := ValidateField("Email", member.Email); msg != "" {
				errs[memberKey+".Email"] = msg
			}
		}
	}

	return errs
}

func requirePlanField(errs map[string]string, prefix, field, value string) {
	if strings.TrimSpace(value) == "" {
		errs[prefix+"."+field] = field + " is required"
	}
}

func isNameField(field string) bool {
	return strings.HasSuffix(field, "FirstName") || strings.HasSuffix(field, "LastName")
}

func isEmailField(field string) bool {
	return strings.HasSuffix(field, "Email")
}

// Member email fields are optional; account and billing emails are required.
func isMemberEmailField(field string) bool {
	return !strings.HasPrefix(field, "Account")
}

func isPhoneField(field string) bool {
	return strings.HasSuffix(field, "Phone")
}

func isZipCodeField(field string) bool {
	return strings.HasSuffix(field, "ZipCode")
}

func isCountryField(field string) bool {
	return strings.HasSuffix(field, "Country")
}
