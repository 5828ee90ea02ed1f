package rules

import (
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"

	"the305/accountant/internal/models"
)

// ruleDoc is the on-disk YAML shape, keyed by pattern:
//
//	whole foods market:
//	  category: Groceries
//	  merchant: Whole Foods Market
type ruleDoc struct {
	Category    string `yaml:"category"`
	Subcategory string `yaml:"subcategory,omitempty"`
	Merchant    string `yaml:"merchant,omitempty"`
}

// ExportYAML writes the whole rule table as a YAML mapping, patterns
// sorted for stable diffs.
func (s *Service) ExportYAML(w io.Writer) error {
	rules, err := s.store.ListRules()
	if err != nil {
		return err
	}

	sort.Slice(rules, func(i, j int) bool { return rules[i].Pattern < rules[j].Pattern })

	doc := make(map[string]ruleDoc, len(rules))
	for _, r := range rules {
		doc[r.Pattern] = ruleDoc{
			Category:    r.Category,
			Subcategory: r.Subcategory,
			Merchant:    r.Merchant,
		}
	}

	enc := yaml.NewEncoder(w)
	defer enc.Close()
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode rules: %w", err)
	}
	return nil
}

// ImportYAML reads a YAML rule mapping and upserts every entry, tagged
// with the import author. Returns the number of rules written.
func (s *Service) ImportYAML(r io.Reader) (int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}

	var doc map[string]ruleDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return 0, fmt.Errorf("decode rules: %w", err)
	}

	patterns := make([]string, 0, len(doc))
	for p := range doc {
		patterns = append(patterns, p)
	}
	sort.Strings(patterns)

	count := 0
	for _, pattern := range patterns {
		entry := doc[pattern]
		merchant := entry.Merchant
		if merchant == "" {
			merchant = pattern
		}
		if err := s.Upsert(merchant, entry.Category, entry.Subcategory, models.UpdatedByImport); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}
