package report

import "time"

// Account is one credit account line from a bureau document.
type Account struct {
	Type           string  `json:"type"`
	Bank           string  `json:"bank"`
	Address        string  `json:"address"`
	AccountNumber  string  `json:"accountNumber"`
	AmountOverdue  float64 `json:"amountOverdue"`
	CurrentBalance float64 `json:"currentBalance"`
	HolderPAN      string  `json:"holderPan"`
}

// Report is the normalized record extracted from one bureau document.
// Numeric fields follow the boundary format's "number" type.
type Report struct {
	Name             string    `json:"name"`
	Phone            string    `json:"phone"`
	PAN              string    `json:"pan"`
	CreditScore      float64   `json:"creditScore"`
	TotalAccounts    float64   `json:"totalAccounts"`
	ActiveAccounts   float64   `json:"activeAccounts"`
	ClosedAccounts   float64   `json:"closedAccounts"`
	CurrentBalance   float64   `json:"currentBalance"`
	SecuredBalance   float64   `json:"securedBalance"`
	UnsecuredBalance float64   `json:"unsecuredBalance"`
	RecentEnquiries  float64   `json:"recentEnquiries"`
	Accounts         []Account `json:"accounts"`
}

// Stored is a Report as persisted, with the identity and timestamps the store
// assigns.
type Stored struct {
	ID string `json:"_id"`
	Report
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
