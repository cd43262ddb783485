package model

// Household is keyed by its normalized join code.
type Household struct {
	Code string `json:"code"`
}

// Profile is the identity record written on every join.
type Profile struct {
	ID            string `json:"id"`
	DisplayName   string `json:"displayName"`
	HouseholdCode string `json:"householdCode"`
}
