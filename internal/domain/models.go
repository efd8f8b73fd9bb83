package domain

// RawProperty is a normalized listing as delivered by a listing provider.
// Optional fields are pointers; nil means the provider did not report them.
type RawProperty struct {
	ID         string   `json:"id"`
	Address    string   `json:"address"`
	City       string   `json:"city"`
	State      string   `json:"state"`
	Zip        string   `json:"zip"`
	Latitude   *float64 `json:"lat,omitempty"`
	Longitude  *float64 `json:"lon,omitempty"`
	ListPrice  float64  `json:"list_price"`
	Beds       *int     `json:"beds,omitempty"`
	Baths      *float64 `json:"baths,omitempty"`
	Sqft       *int     `json:"sqft,omitempty"`
	YearBuilt  *int     `json:"year_built,omitempty"`
	HOAMonthly *float64 `json:"hoa_monthly,omitempty"`
	PhotoURLs  []string `json:"photo_urls,omitempty"`
	ListingURL string   `json:"listing_url,omitempty"`
}

// InvestmentAssumptions are the cost and financing rates used to underwrite a property.
// All rates are fractions (0.012 = 1.2%).
type InvestmentAssumptions struct {
	TaxRate         float64 `json:"tax_rate" toml:"tax_rate" validate:"gte=0,lte=1"`
	InsuranceRate   float64 `json:"insurance_rate" toml:"insurance_rate" validate:"gte=0,lte=1"`
	MaintenanceRate float64 `json:"maintenance_rate" toml:"maintenance_rate" validate:"gte=0,lte=1"`
	ManagementRate  float64 `json:"management_rate" toml:"management_rate" validate:"gte=0,lte=1"`
	VacancyRate     float64 `json:"vacancy_rate" toml:"vacancy_rate" validate:"gte=0,lte=1"`
	LoanRate        float64 `json:"loan_rate" toml:"loan_rate" validate:"gte=0,lte=1"`
	DownPayment     float64 `json:"down_payment" toml:"down_payment" validate:"gte=0,lte=1"`
}

// ScoringContext parameterizes one scoring request.
type ScoringContext struct {
	Strategy     Strategy              `json:"strategy"`
	HorizonYears int                   `json:"horizon_years"`
	Assumptions  InvestmentAssumptions `json:"assumptions"`
}

// Validate rejects contexts the pipeline must not run with. Numeric oddities
// (negative horizon, zero rates) are not errors; they degrade inside the model.
func (c ScoringContext) Validate() error {
	if !c.Strategy.Valid() {
		return ErrUnknownStrategy
	}
	return nil
}

// ExpenseBreakdown is the annual operating expense model, term by term.
type ExpenseBreakdown struct {
	PropertyTax float64 `json:"property_tax"`
	Insurance   float64 `json:"insurance"`
	Maintenance float64 `json:"maintenance"`
	Management  float64 `json:"management"`
	Vacancy     float64 `json:"vacancy"`
	HOA         float64 `json:"hoa"`
}

func (e ExpenseBreakdown) Total() float64 {
	return e.PropertyTax + e.Insurance + e.Maintenance + e.Management + e.Vacancy + e.HOA
}

type InvestmentMetrics struct {
	EstimatedRent       float64          `json:"estimated_rent"`
	AnnualExpenses      float64          `json:"annual_expenses"`
	Expenses            ExpenseBreakdown `json:"expenses"`
	AnnualNOI           float64          `json:"annual_noi"`
	CapRate             float64          `json:"cap_rate"`
	CashOnCash          float64          `json:"cash_on_cash"`
	AppreciationRate    float64          `json:"appreciation_rate"`
	ProjectedValueYearN float64          `json:"projected_value_year_n"`
	AnnualCashFlow      float64          `json:"annual_cash_flow"`
	PrincipalPaydown    float64          `json:"principal_paydown"`
}

// ScoreBreakdown explains how a score was assembled.
type ScoreBreakdown struct {
	CapRateScore       float64 `json:"cap_rate_score"`
	CashOnCashScore    float64 `json:"cash_on_cash_score"`
	AppreciationScore  float64 `json:"appreciation_score"`
	CapRateWeight      float64 `json:"cap_rate_weight"`
	CashOnCashWeight   float64 `json:"cash_on_cash_weight"`
	AppreciationWeight float64 `json:"appreciation_weight"`
	LowRentPenalty     bool    `json:"low_rent_penalty"`
}

type ScoredProperty struct {
	Property     RawProperty       `json:"property"`
	Metrics      InvestmentMetrics `json:"metrics"`
	Score        int               `json:"score"`
	Strategy     Strategy          `json:"strategy"`
	HorizonYears int               `json:"horizon_years"`
	Breakdown    ScoreBreakdown    `json:"breakdown"`
}
