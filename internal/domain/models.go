// Package domain contains the core types shared across the gateway client,
// the finance helpers and the BFF handlers.
package domain

// AuthTokens is the credential pair issued on login. The pair is owned by the
// credential store: written together on login, erased together on logout or
// session expiry, never partially.
type AuthTokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// LoginData is the payload of a successful login or token refresh.
type LoginData struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         User   `json:"user"`
}

// User is the authenticated account profile.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Bill is a recurring or one-off payable.
type Bill struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
	DueDate  string  `json:"dueDate"` // RFC3339 or YYYY-MM-DD, empty when unscheduled
	AutoPay  bool    `json:"autoPay"`
	Paid     bool    `json:"paid"`
	Notes    string  `json:"notes,omitempty"`
}

// Loan is an amortizing debt tracked by the user.
type Loan struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Lender            string  `json:"lender"`
	Principal         float64 `json:"principal"`
	AnnualRatePercent float64 `json:"annualRatePercent"`
	TermMonths        int     `json:"termMonths"`
	Balance           float64 `json:"balance"`
	StartDate         string  `json:"startDate"`
	NextPaymentDate   string  `json:"nextPaymentDate"`
}

// ScheduleEntry is one period of an amortization schedule.
type ScheduleEntry struct {
	Period           int     `json:"period"`
	DueDate          string  `json:"dueDate"`
	Principal        float64 `json:"principal"`
	Interest         float64 `json:"interest"`
	Total            float64 `json:"total"`
	RemainingBalance float64 `json:"remainingBalance"`
}

// Receivable is money owed to the user.
type Receivable struct {
	ID      string  `json:"id"`
	Debtor  string  `json:"debtor"`
	Amount  float64 `json:"amount"`
	DueDate string  `json:"dueDate"`
	Status  string  `json:"status"` // pending | partial | paid
	Notes   string  `json:"notes,omitempty"`
}

// SavingsGoal is a savings target with progress.
type SavingsGoal struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	TargetAmount  float64 `json:"targetAmount"`
	CurrentAmount float64 `json:"currentAmount"`
	TargetDate    string  `json:"targetDate"`
}

// Subscription is a recurring service charge.
type Subscription struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Amount          float64 `json:"amount"`
	Frequency       string  `json:"frequency"`
	NextBillingDate string  `json:"nextBillingDate"`
	Active          bool    `json:"active"`
}

// Category labels bills and transactions.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Type  string `json:"type"` // expense | income
	Color string `json:"color,omitempty"`
}

// IncomeSource is a recurring income tagged with a payment frequency.
// The gateway only passes it through; the frequency→monthly conversion
// lives in internal/finance.
type IncomeSource struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Amount    float64 `json:"amount"`
	Frequency string  `json:"frequency"`
}

// TeamMember is a seat in a white-label/team workspace.
type TeamMember struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"` // owner | admin | member
	Status string `json:"status"`
}

// Overview is the dashboard aggregate the BFF assembles from bills,
// receivables and income sources.
type Overview struct {
	TotalMonthlyIncome float64      `json:"totalMonthlyIncome"`
	UpcomingBills      []Bill       `json:"upcomingBills"` // due within the next 7 days
	OverdueBills       []Bill       `json:"overdueBills"`
	OverdueReceivables []Receivable `json:"overdueReceivables"`
	TotalReceivable    float64      `json:"totalReceivable"`
}

// Page carries pagination metadata from paginated envelopes.
type Page struct {
	Page            int  `json:"page"`
	Limit           int  `json:"limit"`
	TotalCount      int  `json:"totalCount"`
	TotalPages      int  `json:"totalPages,omitempty"`
	HasNextPage     bool `json:"hasNextPage,omitempty"`
	HasPreviousPage bool `json:"hasPreviousPage,omitempty"`
}
