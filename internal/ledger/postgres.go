package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
    id   UUID PRIMARY KEY,
    code TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS ledger_transactions (
    id          UUID PRIMARY KEY,
    position    BIGSERIAL NOT NULL,
    account_id  UUID NOT NULL REFERENCES accounts (id),
    txn_id      TEXT NOT NULL,
    value_date  DATE NOT NULL,
    kind        TEXT NOT NULL CHECK (kind IN ('D', 'W')),
    amount      NUMERIC NOT NULL CHECK (amount > 0),
    seq         INTEGER NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (account_id, txn_id)
);
ALTER TABLE ledger_transactions ALTER COLUMN amount TYPE NUMERIC;`

// PostgresLedger persists postings in PostgreSQL.
type PostgresLedger struct {
	db *pgxpool.Pool
}

// NewPostgresLedger constructs a Postgres-backed ledger implementation.
func NewPostgresLedger(db *pgxpool.Pool) *PostgresLedger {
	return &PostgresLedger{db: db}
}

// Migrate creates the ledger tables when they do not exist yet.
func (l *PostgresLedger) Migrate(ctx context.Context) error {
	_, err := l.db.Exec(ctx, schema)
	return err
}

// Record appends a posting. The account row is locked for the duration of the
// transaction so the funds check and the insert observe the same history.
func (l *PostgresLedger) Record(ctx context.Context, accountID string, date civil.Date, kind Kind, amount decimal.Decimal) (Transaction, error) {
	if err := validatePosting(accountID, kind, amount); err != nil {
		return Transaction{}, err
	}

	tx, err := l.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Transaction{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if _, err := tx.Exec(ctx, `INSERT INTO accounts (id, code) VALUES ($1, $2)
        ON CONFLICT (code) DO NOTHING`, uuid.New(), accountID); err != nil {
		return Transaction{}, err
	}

	var accountRowID uuid.UUID
	if err := tx.QueryRow(ctx, `SELECT id FROM accounts WHERE code = $1 FOR UPDATE`, accountID).Scan(&accountRowID); err != nil {
		return Transaction{}, err
	}

	balance, err := balanceForAccount(ctx, tx, accountRowID)
	if err != nil {
		return Transaction{}, err
	}
	if kind == KindWithdrawal && amount.GreaterThan(balance) {
		return Transaction{}, ErrInsufficientFunds
	}

	valueDate := date.In(time.UTC)
	var sameDay int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM ledger_transactions WHERE account_id = $1 AND value_date = $2`,
		accountRowID, valueDate).Scan(&sameDay); err != nil {
		return Transaction{}, err
	}

	seq := sameDay + 1
	posting := Transaction{
		ID:        TransactionID(date, seq),
		AccountID: accountID,
		Date:      date,
		Kind:      kind,
		Amount:    amount,
		Sequence:  seq,
	}
	if _, err := tx.Exec(ctx, `INSERT INTO ledger_transactions (id, account_id, txn_id, value_date, kind, amount, seq)
        VALUES ($1, $2, $3, $4, $5, $6::numeric, $7)`,
		uuid.New(), accountRowID, posting.ID, valueDate, string(kind), amount.String(), seq); err != nil {
		return Transaction{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Transaction{}, err
	}
	return posting, nil
}

// Transactions returns the account's postings in recording order.
func (l *PostgresLedger) Transactions(ctx context.Context, accountID string) ([]Transaction, error) {
	const query = `
        SELECT t.txn_id, t.value_date, t.kind, t.amount::text, t.seq
        FROM ledger_transactions t
        INNER JOIN accounts a ON a.id = t.account_id
        WHERE a.code = $1
        ORDER BY t.position`
	rows, err := l.db.Query(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []Transaction
	for rows.Next() {
		var (
			posting   Transaction
			valueDate time.Time
			kind      string
			amount    string
		)
		if err := rows.Scan(&posting.ID, &valueDate, &kind, &amount, &posting.Sequence); err != nil {
			return nil, err
		}
		posting.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("decode amount of %s: %w", posting.ID, err)
		}
		posting.AccountID = accountID
		posting.Date = civil.DateOf(valueDate)
		posting.Kind = Kind(kind)
		history = append(history, posting)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, ErrAccountNotFound
	}
	return history, nil
}

// Balance returns the folded balance for the account.
func (l *PostgresLedger) Balance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	var rowID uuid.UUID
	if err := l.db.QueryRow(ctx, `SELECT id FROM accounts WHERE code = $1`, accountID).Scan(&rowID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, ErrAccountNotFound
		}
		return decimal.Zero, err
	}
	tx, err := l.db.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return decimal.Zero, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck
	return balanceForAccount(ctx, tx, rowID)
}

func balanceForAccount(ctx context.Context, tx pgx.Tx, accountRowID uuid.UUID) (decimal.Decimal, error) {
	const query = `
        SELECT COALESCE(SUM(CASE WHEN kind = 'D' THEN amount ELSE -amount END), 0)::text
        FROM ledger_transactions WHERE account_id = $1`
	var raw string
	if err := tx.QueryRow(ctx, query, accountRowID).Scan(&raw); err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(raw)
}
