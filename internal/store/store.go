package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dgallion1/creditgest/internal/report"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no report has the requested id.
var ErrNotFound = errors.New("report not found")

// Store persists extracted reports in SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// A single writer avoids SQLITE_BUSY between concurrent uploads.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Create stores r under a fresh id with creation and update timestamps.
func (s *Store) Create(ctx context.Context, r report.Report) (report.Stored, error) {
	now := s.now().UTC().Truncate(time.Millisecond)
	stored := report.Stored{
		ID:        uuid.NewString(),
		Report:    r,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if stored.Accounts == nil {
		stored.Accounts = []report.Account{}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return report.Stored{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO reports (
			id, name, phone, pan, credit_score, total_accounts, active_accounts,
			closed_accounts, current_balance, secured_balance, unsecured_balance,
			recent_enquiries, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		stored.ID, r.Name, r.Phone, r.PAN, r.CreditScore, r.TotalAccounts, r.ActiveAccounts,
		r.ClosedAccounts, r.CurrentBalance, r.SecuredBalance, r.UnsecuredBalance,
		r.RecentEnquiries, now.UnixMilli(), now.UnixMilli(),
	)
	if err != nil {
		return report.Stored{}, fmt.Errorf("inserting report: %w", err)
	}

	for i, a := range stored.Accounts {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO accounts (
				report_id, position, type, bank, address, account_number,
				amount_overdue, current_balance, holder_pan
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			stored.ID, i, a.Type, a.Bank, a.Address, a.AccountNumber,
			a.AmountOverdue, a.CurrentBalance, a.HolderPAN,
		)
		if err != nil {
			return report.Stored{}, fmt.Errorf("inserting account %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return report.Stored{}, fmt.Errorf("commit: %w", err)
	}
	return stored, nil
}

const reportColumns = `id, name, phone, pan, credit_score, total_accounts, active_accounts,
	closed_accounts, current_balance, secured_balance, unsecured_balance,
	recent_enquiries, created_at, updated_at`

// List returns every stored report, newest first.
func (s *Store) List(ctx context.Context) ([]report.Stored, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+reportColumns+` FROM reports ORDER BY created_at DESC, seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	defer rows.Close()

	out := []report.Stored{}
	index := make(map[string]int)
	for rows.Next() {
		st, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		index[st.ID] = len(out)
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	rows.Close()
	if len(out) == 0 {
		return out, nil
	}

	acctRows, err := s.db.QueryContext(ctx, `SELECT report_id, `+accountColumns+` FROM accounts ORDER BY report_id, position`)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer acctRows.Close()
	for acctRows.Next() {
		var reportID string
		var a report.Account
		if err := acctRows.Scan(&reportID, &a.Type, &a.Bank, &a.Address, &a.AccountNumber,
			&a.AmountOverdue, &a.CurrentBalance, &a.HolderPAN); err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		if i, ok := index[reportID]; ok {
			out[i].Accounts = append(out[i].Accounts, a)
		}
	}
	if err := acctRows.Err(); err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	return out, nil
}

// Get returns one report by id.
func (s *Store) Get(ctx context.Context, id string) (report.Stored, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = ?`, id)
	st, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return report.Stored{}, ErrNotFound
	}
	if err != nil {
		return report.Stored{}, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE report_id = ? ORDER BY position`, id)
	if err != nil {
		return report.Stored{}, fmt.Errorf("loading accounts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var a report.Account
		if err := rows.Scan(&a.Type, &a.Bank, &a.Address, &a.AccountNumber,
			&a.AmountOverdue, &a.CurrentBalance, &a.HolderPAN); err != nil {
			return report.Stored{}, fmt.Errorf("scanning account: %w", err)
		}
		st.Accounts = append(st.Accounts, a)
	}
	return st, rows.Err()
}

// Delete removes one report and its accounts. It reports whether the id
// existed.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reports WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting report: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting report: %w", err)
	}
	return n > 0, nil
}

// DeleteAll removes every report and returns how many there were.
func (s *Store) DeleteAll(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reports`)
	if err != nil {
		return 0, fmt.Errorf("deleting reports: %w", err)
	}
	return res.RowsAffected()
}

const accountColumns = `type, bank, address, account_number, amount_overdue, current_balance, holder_pan`

type scanner interface {
	Scan(dest ...any) error
}

func scanReport(sc scanner) (report.Stored, error) {
	var st report.Stored
	var created, updated int64
	err := sc.Scan(&st.ID, &st.Name, &st.Phone, &st.PAN, &st.CreditScore, &st.TotalAccounts,
		&st.ActiveAccounts, &st.ClosedAccounts, &st.CurrentBalance, &st.SecuredBalance,
		&st.UnsecuredBalance, &st.RecentEnquiries, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return st, err
		}
		return st, fmt.Errorf("scanning report: %w", err)
	}
	st.CreatedAt = time.UnixMilli(created).UTC()
	st.UpdatedAt = time.UnixMilli(updated).UTC()
	st.Accounts = []report.Account{}
	return st, nil
}

const schemaSQL = `
-- reports: one row per uploaded bureau document
CREATE TABLE IF NOT EXISTS reports (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL DEFAULT '',
    phone TEXT NOT NULL DEFAULT '',
    pan TEXT NOT NULL DEFAULT '',
    credit_score REAL NOT NULL DEFAULT 0,
    total_accounts REAL NOT NULL DEFAULT 0,
    active_accounts REAL NOT NULL DEFAULT 0,
    closed_accounts REAL NOT NULL DEFAULT 0,
    current_balance REAL NOT NULL DEFAULT 0,
    secured_balance REAL NOT NULL DEFAULT 0,
    unsecured_balance REAL NOT NULL DEFAULT 0,
    recent_enquiries REAL NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports(created_at);

-- accounts: deduplicated account lines, in extraction order
CREATE TABLE IF NOT EXISTS accounts (
    report_id TEXT NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    type TEXT NOT NULL DEFAULT '',
    bank TEXT NOT NULL DEFAULT '',
    address TEXT NOT NULL DEFAULT '',
    account_number TEXT NOT NULL DEFAULT '',
    amount_overdue REAL NOT NULL DEFAULT 0,
    current_balance REAL NOT NULL DEFAULT 0,
    holder_pan TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (report_id, position)
);
`
