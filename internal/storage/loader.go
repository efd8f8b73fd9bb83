package storage

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/denisok6893-rgb/property-underwriting/internal/domain"
)

// LoadPropertiesFromFile reads a JSON array of listings.
func LoadPropertiesFromFile(path string) ([]domain.RawProperty, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read properties file: %w", err)
	}

	var props []domain.RawProperty
	if err := json.Unmarshal(b, &props); err != nil {
		return nil, fmt.Errorf("unmarshal properties: %w", err)
	}
	return props, nil
}
