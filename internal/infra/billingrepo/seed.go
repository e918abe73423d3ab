package billingrepo

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yanqian/billing-dashboard/internal/domain/billing"
)

type seedFile struct {
	Records []seedRecord `yaml:"records"`
}

type seedRecord struct {
	UserID      string   `yaml:"user_id"`
	Month       string   `yaml:"month"`
	TotalAmount *float64 `yaml:"total_amount"`
}

// LoadSeedFile reads billing rows from a YAML document of the form
// `records: [{user_id, month, total_amount}]`.
func LoadSeedFile(path string) ([]billing.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read billing seed: %w", err)
	}
	var doc seedFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse billing seed: %w", err)
	}
	records := make([]billing.Record, 0, len(doc.Records))
	for i, rec := range doc.Records {
		if strings.TrimSpace(rec.UserID) == "" || strings.TrimSpace(rec.Month) == "" || rec.TotalAmount == nil {
			return nil, fmt.Errorf("billing seed record %d needs user_id, month and total_amount", i)
		}
		records = append(records, billing.Record{UserID: rec.UserID, Month: rec.Month, TotalAmount: *rec.TotalAmount})
	}
	return records, nil
}

// NewSeededMemoryRepository builds a memory repository holding the rows in path.
func NewSeededMemoryRepository(path string) (*MemoryRepository, error) {
	records, err := LoadSeedFile(path)
	if err != nil {
		return nil, err
	}
	repo := NewMemoryRepository()
	for _, rec := range records {
		repo.Upsert(rec)
	}
	return repo, nil
}
