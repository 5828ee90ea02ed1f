package ledger

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"the305/accountant/internal/dateutils"
	"the305/accountant/internal/ledgererr"
	"the305/accountant/internal/logging"
	"the305/accountant/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS transactions (
	id                   TEXT PRIMARY KEY,
	account_id           INTEGER NOT NULL REFERENCES accounts(id),
	date                 TEXT NOT NULL,
	original_description TEXT NOT NULL DEFAULT '',
	cleaned_description  TEXT NOT NULL DEFAULT '',
	merchant             TEXT NOT NULL DEFAULT '',
	amount               TEXT NOT NULL,
	currency             TEXT NOT NULL DEFAULT 'USD',
	category             TEXT NOT NULL DEFAULT '',
	subcategory          TEXT NOT NULL DEFAULT '',
	category_source      TEXT NOT NULL DEFAULT '',
	dedup_key            TEXT NOT NULL,
	batch_id             TEXT NOT NULL DEFAULT '',
	pending              INTEGER NOT NULL DEFAULT 0,
	locked               INTEGER NOT NULL DEFAULT 0
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_transactions_dedup ON transactions(dedup_key);
CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date);
CREATE INDEX IF NOT EXISTS idx_transactions_category ON transactions(category);

CREATE TABLE IF NOT EXISTS category_rules (
	merchant_pattern TEXT PRIMARY KEY,
	category         TEXT NOT NULL,
	subcategory      TEXT NOT NULL DEFAULT '',
	merchant         TEXT NOT NULL DEFAULT '',
	updated_at       TEXT NOT NULL,
	updated_by       TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS budgets (
	category      TEXT PRIMARY KEY,
	monthly_limit TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS import_batches (
	id         TEXT PRIMARY KEY,
	source     TEXT NOT NULL DEFAULT '',
	account_id INTEGER NOT NULL,
	status     TEXT NOT NULL,
	created_at TEXT NOT NULL
);
`

// SQLiteStore is the production Store backed by a single SQLite file.
// WAL mode plus a busy timeout covers concurrent access from a second
// process; within one process database/sql serializes writes.
type SQLiteStore struct {
	db  *sql.DB
	log logging.Logger
}

// OpenSQLite opens (and if necessary creates) the ledger database.
func OpenSQLite(path string, log logging.Logger) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on&_synchronous=NORMAL", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ledgererr.ErrStorageUnavailable, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ledgererr.ErrStorageUnavailable, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	log.Debug("ledger opened", logging.F("path", path))
	return &SQLiteStore{db: db, log: log}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetOrCreateAccount(name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, &ledgererr.ValidationError{Field: "account", Value: name, Reason: "empty name"}
	}

	var id int64
	err := s.db.QueryRow(`SELECT id FROM accounts WHERE name = ?`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	res, err := s.db.Exec(`INSERT INTO accounts (name) VALUES (?)`, name)
	if err != nil {
		// lost a race with another writer; read again
		if e := s.db.QueryRow(`SELECT id FROM accounts WHERE name = ?`, name).Scan(&id); e == nil {
			return id, nil
		}
		return 0, err
	}
	return res.LastInsertId()
}

func (s *SQLiteStore) Insert(tx *models.Transaction) error {
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	_, err := s.db.Exec(`
		INSERT INTO transactions
			(id, account_id, date, original_description, cleaned_description,
			 merchant, amount, currency, category, subcategory,
			 category_source, dedup_key, batch_id, pending, locked)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.AccountID, dateutils.ToISO(tx.Date), tx.OriginalDescription,
		tx.CleanedDescription, tx.Merchant, tx.Amount.String(), tx.Currency,
		tx.Category, tx.Subcategory, tx.CategorySource, tx.DedupKey,
		tx.BatchID, boolToInt(tx.Pending), boolToInt(tx.Locked),
	)
	if err != nil {
		var sqlErr sqlite3.Error
		if errors.As(err, &sqlErr) && sqlErr.Code == sqlite3.ErrConstraint {
			if sqlErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
				sqlErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
				return &ledgererr.DuplicateError{Key: tx.DedupKey}
			}
			return &ledgererr.IntegrityError{Op: "insert", Err: err}
		}
		return err
	}
	return nil
}

const txColumns = `id, account_id, date, original_description, cleaned_description,
	merchant, amount, currency, category, subcategory, category_source,
	dedup_key, batch_id, pending, locked`

func (s *SQLiteStore) Get(id string) (*models.Transaction, error) {
	row := s.db.QueryRow(`SELECT `+txColumns+` FROM transactions WHERE id = ?`, id)
	return scanTransaction(row)
}

func (s *SQLiteStore) FindByKey(key string) (*models.Transaction, error) {
	row := s.db.QueryRow(`SELECT `+txColumns+` FROM transactions WHERE dedup_key = ?`, key)
	return scanTransaction(row)
}

func (s *SQLiteStore) Update(id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}

	cols := make([]string, 0, len(fields))
	for col := range fields {
		if !mutableFields[col] {
			return &ledgererr.ValidationError{Field: col, Reason: "not an updatable column"}
		}
		cols = append(cols, col)
	}
	sort.Strings(cols)

	sets := make([]string, 0, len(cols))
	args := make([]interface{}, 0, len(cols)+1)
	for _, col := range cols {
		sets = append(sets, col+" = ?")
		args = append(args, normalizeArg(fields[col]))
	}
	args = append(args, id)

	res, err := s.db.Exec(`UPDATE transactions SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &ledgererr.ValidationError{Field: "id", Value: id, Reason: "no such transaction"}
	}
	return nil
}

func (s *SQLiteStore) Query(f Filter) ([]models.Transaction, error) {
	var (
		where []string
		args  []interface{}
	)
	if f.AccountID != 0 {
		where = append(where, "account_id = ?")
		args = append(args, f.AccountID)
	}
	if f.BatchID != "" {
		where = append(where, "batch_id = ?")
		args = append(args, f.BatchID)
	}
	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, f.Category)
	}
	if f.Uncategorized {
		where = append(where, "(TRIM(category) = '' OR category = ?)")
		args = append(args, models.CategoryUncategorized)
	}
	if !f.Start.IsZero() {
		where = append(where, "date >= ?")
		args = append(args, dateutils.ToISO(f.Start))
	}
	if !f.End.IsZero() {
		where = append(where, "date < ?")
		args = append(args, dateutils.ToISO(f.End))
	}

	q := `SELECT ` + txColumns + ` FROM transactions`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY date, id`

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		tx, err := scanTransactionRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *tx)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) GetRule(pattern string) (*models.Rule, error) {
	var (
		r         models.Rule
		updatedAt string
	)
	err := s.db.QueryRow(`
		SELECT merchant_pattern, category, subcategory, merchant, updated_at, updated_by
		FROM category_rules WHERE merchant_pattern = ?`, pattern).
		Scan(&r.Pattern, &r.Category, &r.Subcategory, &r.Merchant, &updatedAt, &r.UpdatedBy)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if t, perr := dateutils.ParseDate(updatedAt); perr == nil {
		r.UpdatedAt = t
	}
	return &r, nil
}

func (s *SQLiteStore) UpsertRule(r models.Rule) error {
	if strings.TrimSpace(r.Pattern) == "" {
		return &ledgererr.ValidationError{Field: "pattern", Reason: "empty rule pattern"}
	}
	if strings.TrimSpace(r.Category) == "" {
		return &ledgererr.ValidationError{Field: "category", Reason: "empty rule category"}
	}
	_, err := s.db.Exec(`
		INSERT INTO category_rules (merchant_pattern, category, subcategory, merchant, updated_at, updated_by)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(merchant_pattern) DO UPDATE SET
			category = excluded.category,
			subcategory = excluded.subcategory,
			merchant = excluded.merchant,
			updated_at = excluded.updated_at,
			updated_by = excluded.updated_by`,
		r.Pattern, r.Category, r.Subcategory, r.Merchant,
		r.UpdatedAt.UTC().Format(time.RFC3339), r.UpdatedBy,
	)
	return err
}

func (s *SQLiteStore) ListRules() ([]models.Rule, error) {
	rows, err := s.db.Query(`
		SELECT merchant_pattern, category, subcategory, merchant, updated_at, updated_by
		FROM category_rules ORDER BY merchant_pattern`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Rule
	for rows.Next() {
		var (
			r         models.Rule
			updatedAt string
		)
		if err := rows.Scan(&r.Pattern, &r.Category, &r.Subcategory, &r.Merchant, &updatedAt, &r.UpdatedBy); err != nil {
			return nil, err
		}
		if t, perr := dateutils.ParseDate(updatedAt); perr == nil {
			r.UpdatedAt = t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) UpsertLimit(l models.BudgetLimit) error {
	if strings.TrimSpace(l.Category) == "" {
		return &ledgererr.ValidationError{Field: "category", Reason: "empty budget category"}
	}
	_, err := s.db.Exec(`
		INSERT INTO budgets (category, monthly_limit) VALUES (?, ?)
		ON CONFLICT(category) DO UPDATE SET monthly_limit = excluded.monthly_limit`,
		l.Category, l.Limit.String(),
	)
	return err
}

func (s *SQLiteStore) ListLimits() ([]models.BudgetLimit, error) {
	rows, err := s.db.Query(`SELECT category, monthly_limit FROM budgets ORDER BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.BudgetLimit
	for rows.Next() {
		var (
			l   models.BudgetLimit
			raw string
		)
		if err := rows.Scan(&l.Category, &raw); err != nil {
			return nil, err
		}
		l.Limit, err = decimal.NewFromString(raw)
		if err != nil {
			return nil, &ledgererr.IntegrityError{Op: "read budget", Err: err}
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) CreateBatch(b models.ImportBatch) error {
	_, err := s.db.Exec(`
		INSERT INTO import_batches (id, source, account_id, status, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		b.ID, b.Source, b.AccountID, string(b.Status), b.CreatedAt.Format(time.RFC3339),
	)
	return err
}

func (s *SQLiteStore) GetBatch(id string) (*models.ImportBatch, error) {
	var (
		b         models.ImportBatch
		status    string
		createdAt string
	)
	err := s.db.QueryRow(`
		SELECT id, source, account_id, status, created_at
		FROM import_batches WHERE id = ?`, id).
		Scan(&b.ID, &b.Source, &b.AccountID, &status, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	b.Status = models.BatchStatus(status)
	if t, perr := dateutils.ParseDate(createdAt); perr == nil {
		b.CreatedAt = t
	}
	return &b, nil
}

func (s *SQLiteStore) SetBatchStatus(id string, status models.BatchStatus) error {
	res, err := s.db.Exec(`UPDATE import_batches SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &ledgererr.ValidationError{Field: "batch", Value: id, Reason: "no such batch"}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row *sql.Row) (*models.Transaction, error) {
	tx, err := scanTransactionRows(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return tx, nil
}

func scanTransactionRows(row rowScanner) (*models.Transaction, error) {
	var (
		tx              models.Transaction
		date, amount    string
		pending, locked int
	)
	err := row.Scan(&tx.ID, &tx.AccountID, &date, &tx.OriginalDescription,
		&tx.CleanedDescription, &tx.Merchant, &amount, &tx.Currency,
		&tx.Category, &tx.Subcategory, &tx.CategorySource, &tx.DedupKey,
		&tx.BatchID, &pending, &locked)
	if err != nil {
		return nil, err
	}

	if tx.Date, err = dateutils.ParseDate(date); err != nil {
		return nil, &ledgererr.IntegrityError{Op: "read transaction date", Err: err}
	}
	if tx.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, &ledgererr.IntegrityError{Op: "read transaction amount", Err: err}
	}
	tx.Pending = pending != 0
	tx.Locked = locked != 0
	return &tx, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func normalizeArg(v interface{}) interface{} {
	switch x := v.(type) {
	case bool:
		return boolToInt(x)
	case decimal.Decimal:
		return x.String()
	}
	return v
}
