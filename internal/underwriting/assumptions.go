package underwriting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	"github.com/denisok6893-rgb/property-underwriting/internal/domain"
)

// DefaultAssumptions returns the fallback cost and financing rates:
//
//	tax 1.2%, insurance 0.5%      of list price per year
//	maintenance 5%, management 8%, vacancy 5%  of gross annual rent
//	loan rate 7%, down payment 20%
//
// Each call returns a fresh value, so callers can tweak their copy freely.
func DefaultAssumptions() domain.InvestmentAssumptions {
	return domain.InvestmentAssumptions{
		TaxRate:         0.012,
		InsuranceRate:   0.005,
		MaintenanceRate: 0.05,
		ManagementRate:  0.08,
		VacancyRate:     0.05,
		LoanRate:        0.07,
		DownPayment:     0.20,
	}
}

// LoadAssumptionsFromFile loads assumptions from a TOML or JSON file (by extension),
// starting from the defaults so omitted keys keep their default rate. Every rate
// must lie in [0, 1]. On error the defaults are returned alongside it.
func LoadAssumptionsFromFile(path string) (domain.InvestmentAssumptions, error) {
	a := DefaultAssumptions()
	b, err := os.ReadFile(path)
	if err != nil {
		return a, fmt.Errorf("read assumptions file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(b, &a)
	default:
		err = toml.Unmarshal(b, &a)
	}
	if err != nil {
		return DefaultAssumptions(), fmt.Errorf("unmarshal assumptions: %w", err)
	}
	if err := validator.New().Struct(a); err != nil {
		return DefaultAssumptions(), fmt.Errorf("invalid assumptions in %s: %w", path, err)
	}
	return a, nil
}
