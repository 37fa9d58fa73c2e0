// Package models contains domain entities and business models for the subscription onboarding system
package models

// Account type constants
const (
	AccountTypeCorporate  = "Corporate"
	AccountTypeIndividual = "Individual"
)

// Supported billing countries
const (
	CountryCA = "CA"
	CountryUS = "US"
)

// Default language constants
const (
	LanguageENUS = "EN_US"
	LanguageFRCA = "FR_CA"
	LanguageENCA = "EN_CA"
)

// AccountTypes lists every valid account type.
var AccountTypes = []string{AccountTypeCorporate, AccountTypeIndividual}

// DefaultLanguages lists every valid default language.
var DefaultLanguages = []string{LanguageENUS, LanguageFRCA, LanguageENCA}
