package underwriting

import "github.com/denisok6893-rgb/property-underwriting/internal/domain"

// Expenses computes the annual operating expenses term by term.
// Price-based terms use the list price; the maintenance, management and vacancy
// terms are fractions of gross annual rent.
func Expenses(p domain.RawProperty, rentMonthly float64, a domain.InvestmentAssumptions) domain.ExpenseBreakdown {
	price := positive(p.ListPrice)
	annualRent := positive(rentMonthly) * 12

	hoa := 0.0
	if p.HOAMonthly != nil {
		hoa = positive(*p.HOAMonthly) * 12
	}

	return domain.ExpenseBreakdown{
		PropertyTax: finite(price * a.TaxRate),
		Insurance:   finite(price * a.InsuranceRate),
		Maintenance: finite(annualRent * a.MaintenanceRate),
		Management:  finite(annualRent * a.ManagementRate),
		Vacancy:     finite(annualRent * a.VacancyRate),
		HOA:         hoa,
	}
}

// AnnualExpenses is the sum of Expenses.
func AnnualExpenses(p domain.RawProperty, rentMonthly float64, a domain.InvestmentAssumptions) float64 {
	return Expenses(p, rentMonthly, a).Total()
}
