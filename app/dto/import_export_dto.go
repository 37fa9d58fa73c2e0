package dto

// ImportAccountsResponse reports the outcome of an account template import.
type ImportAccountsResponse struct {
	Message  string `json:"message"`
	Total    int    `json:"total"`
	Imported int    `json:"imported"`
	Skipped  int    `json:"skipped"`
}

// ImportParkersResponse reports the outcome of a parker template import.
type ImportParkersResponse struct {
	Message  string `json:"message"`
	Total    int    `json:"total"`
	Imported int    `json:"imported"`
}

// MoveMemberResponse carries an optional warning about the source plan.
type MoveMemberResponse struct {
	Warning string `json:"warning,omitempty"`
}
