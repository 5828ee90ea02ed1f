package ledger

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"the305/accountant/internal/ledgererr"
	"the305/accountant/internal/models"
)

// MemoryStore is an in-memory Store used by tests and dry runs. It
// mirrors the SQLite implementation's semantics, including the
// duplicate-key behavior on insert.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]int64
	nextAcct int64
	byID     map[string]*models.Transaction
	byKey    map[string]string // dedup key -> transaction id
	rules    map[string]models.Rule
	limits   map[string]decimal.Decimal
	batches  map[string]models.ImportBatch
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[string]int64),
		nextAcct: 1,
		byID:     make(map[string]*models.Transaction),
		byKey:    make(map[string]string),
		rules:    make(map[string]models.Rule),
		limits:   make(map[string]decimal.Decimal),
		batches:  make(map[string]models.ImportBatch),
	}
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) GetOrCreateAccount(name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, &ledgererr.ValidationError{Field: "account", Value: name, Reason: "empty name"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.accounts[name]; ok {
		return id, nil
	}
	id := s.nextAcct
	s.nextAcct++
	s.accounts[name] = id
	return id, nil
}

func (s *MemoryStore) Insert(tx *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byKey[tx.DedupKey]; exists {
		return &ledgererr.DuplicateError{Key: tx.DedupKey}
	}
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	if _, exists := s.byID[tx.ID]; exists {
		return &ledgererr.IntegrityError{Op: "insert", Err: &ledgererr.DuplicateError{Key: tx.ID}}
	}

	cp := *tx
	s.byID[cp.ID] = &cp
	s.byKey[cp.DedupKey] = cp.ID
	return nil
}

func (s *MemoryStore) Get(id string) (*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tx, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *tx
	return &cp, nil
}

func (s *MemoryStore) FindByKey(key string) (*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byKey[key]
	if !ok {
		return nil, nil
	}
	cp := *s.byID[id]
	return &cp, nil
}

func (s *MemoryStore) Update(id string, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.byID[id]
	if !ok {
		return &ledgererr.ValidationError{Field: "id", Value: id, Reason: "no such transaction"}
	}

	// validate the whole map first so a bad field leaves the row untouched
	for col, v := range fields {
		if !mutableFields[col] {
			return &ledgererr.ValidationError{Field: col, Reason: "not an updatable column"}
		}
		switch col {
		case "pending", "locked":
			if _, ok := v.(bool); !ok {
				return &ledgererr.ValidationError{Field: col, Value: fmt.Sprint(v), Reason: "expected a bool value"}
			}
		default:
			if _, ok := v.(string); !ok {
				return &ledgererr.ValidationError{Field: col, Value: fmt.Sprint(v), Reason: "expected a string value"}
			}
		}
	}

	for col, v := range fields {
		switch col {
		case "original_description":
			tx.OriginalDescription = v.(string)
		case "cleaned_description":
			tx.CleanedDescription = v.(string)
		case "merchant":
			tx.Merchant = v.(string)
		case "currency":
			tx.Currency = v.(string)
		case "category":
			tx.Category = v.(string)
		case "subcategory":
			tx.Subcategory = v.(string)
		case "category_source":
			tx.CategorySource = v.(string)
		case "batch_id":
			tx.BatchID = v.(string)
		case "pending":
			tx.Pending = v.(bool)
		case "locked":
			tx.Locked = v.(bool)
		}
	}
	return nil
}

func (s *MemoryStore) Query(f Filter) ([]models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Transaction
	for _, tx := range s.byID {
		if f.AccountID != 0 && tx.AccountID != f.AccountID {
			continue
		}
		if f.BatchID != "" && tx.BatchID != f.BatchID {
			continue
		}
		if f.Category != "" && tx.Category != f.Category {
			continue
		}
		if f.Uncategorized && tx.Categorized() {
			continue
		}
		if !f.Start.IsZero() && tx.Date.Before(f.Start) {
			continue
		}
		if !f.End.IsZero() && !tx.Date.Before(f.End) {
			continue
		}
		out = append(out, *tx)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) GetRule(pattern string) (*models.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rules[pattern]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (s *MemoryStore) UpsertRule(r models.Rule) error {
	if strings.TrimSpace(r.Pattern) == "" {
		return &ledgererr.ValidationError{Field: "pattern", Reason: "empty rule pattern"}
	}
	if strings.TrimSpace(r.Category) == "" {
		return &ledgererr.ValidationError{Field: "category", Reason: "empty rule category"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules[r.Pattern] = r
	return nil
}

func (s *MemoryStore) ListRules() ([]models.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Rule, 0, len(s.rules))
	for _, r := range s.rules {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Pattern < out[j].Pattern })
	return out, nil
}

func (s *MemoryStore) UpsertLimit(l models.BudgetLimit) error {
	if strings.TrimSpace(l.Category) == "" {
		return &ledgererr.ValidationError{Field: "category", Reason: "empty budget category"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limits[l.Category] = l.Limit
	return nil
}

func (s *MemoryStore) ListLimits() ([]models.BudgetLimit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.BudgetLimit, 0, len(s.limits))
	for cat, lim := range s.limits {
		out = append(out, models.BudgetLimit{Category: cat, Limit: lim})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

func (s *MemoryStore) CreateBatch(b models.ImportBatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches[b.ID] = b
	return nil
}

func (s *MemoryStore) GetBatch(id string) (*models.ImportBatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.batches[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (s *MemoryStore) SetBatchStatus(id string, status models.BatchStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.batches[id]
	if !ok {
		return &ledgererr.ValidationError{Field: "batch", Value: id, Reason: "no such batch"}
	}
	b.Status = status
	s.batches[id] = b
	return nil
}
