package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/reconciliation"
)

// ReconciliationRepo implements reconciliation.Source and
// reconciliation.SnapshotRepository.
type ReconciliationRepo struct {
	db *DB
}

func NewReconciliationRepo(db *DB) *ReconciliationRepo {
	return &ReconciliationRepo{db: db}
}

var (
	_ reconciliation.Source             = (*ReconciliationRepo)(nil)
	_ reconciliation.SnapshotRepository = (*ReconciliationRepo)(nil)
)

// Spin balances only grow from credits here; spending happens elsewhere, so a
// balance above the credited total is the only balance-level inconsistency.
const discrepancyQuery = `
	SELECT 'missing_credit_record', t.tx_hash, COALESCE(t.linked_account, ''), t.suggested_spins, 0
	FROM chain_transfers t
	LEFT JOIN spin_credit_records c ON c.tx_hash = t.tx_hash
	WHERE t.credit_status = 'credited' AND c.id IS NULL
	UNION ALL
	SELECT 'orphan_credit_record', c.tx_hash, c.account_id, 0, c.spins_credited
	FROM spin_credit_records c
	JOIN chain_transfers t ON t.tx_hash = c.tx_hash
	WHERE t.credit_status <> 'credited'
	UNION ALL
	SELECT 'spins_mismatch', c.tx_hash, c.account_id, t.suggested_spins, c.spins_credited
	FROM spin_credit_records c
	JOIN chain_transfers t ON t.tx_hash = c.tx_hash
	WHERE t.credit_status = 'credited' AND c.spins_credited <> t.suggested_spins
	UNION ALL
	SELECT 'account_mismatch', c.tx_hash, c.account_id, 0, 0
	FROM spin_credit_records c
	JOIN chain_transfers t ON t.tx_hash = c.tx_hash
	WHERE t.linked_account IS DISTINCT FROM c.account_id
	UNION ALL
	SELECT 'balance_exceeds_credits', '', b.account_id, COALESCE(s.total, 0), b.spins
	FROM spin_balances b
	LEFT JOIN (
		SELECT account_id, SUM(spins_credited)::BIGINT AS total
		FROM spin_credit_records
		GROUP BY account_id
	) s ON s.account_id = b.account_id
	WHERE b.spins > COALESCE(s.total, 0)
	LIMIT $1`

func (r *ReconciliationRepo) FindDiscrepancies(ctx context.Context, limit int) ([]reconciliation.Finding, error) {
	if limit <= 0 {
		limit = reconciliation.DefaultMaxFindings
	}
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, discrepancyQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("query discrepancies: %w", err)
	}
	defer rows.Close()

	var findings []reconciliation.Finding
	for rows.Next() {
		var f reconciliation.Finding
		var kind string
		if err := rows.Scan(&kind, &f.TxHash, &f.AccountID, &f.Expected, &f.Actual); err != nil {
			return nil, fmt.Errorf("scan discrepancy: %w", err)
		}
		f.Kind = reconciliation.FindingKind(kind)
		findings = append(findings, f)
	}
	return findings, rows.Err()
}

const findingColumns = 7

// SaveFindings persists one run's findings in batches.
func (r *ReconciliationRepo) SaveFindings(ctx context.Context, tx *sql.Tx, runID uuid.UUID, checkedAt time.Time, findings []reconciliation.Finding) error {
	const batchSize = 1000
	for i := 0; i < len(findings); i += batchSize {
		end := min(i+batchSize, len(findings))
		if err := r.insertBatch(ctx, tx, runID, checkedAt, findings[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (r *ReconciliationRepo) insertBatch(ctx context.Context, tx *sql.Tx, runID uuid.UUID, checkedAt time.Time, findings []reconciliation.Finding) error {
	var sb strings.Builder
	sb.WriteString(`INSERT INTO ledger_reconciliation_findings
		(run_id, kind, tx_hash, account_id, expected, actual, checked_at)
		VALUES `)

	args := make([]any, 0, len(findings)*findingColumns)
	for i, f := range findings {
		if i > 0 {
			sb.WriteString(",")
		}
		base := i * findingColumns
		sb.WriteString("(")
		for c := 1; c <= findingColumns; c++ {
			if c > 1 {
				sb.WriteString(",")
			}
			sb.WriteString("$")
			sb.WriteString(strconv.Itoa(base + c))
		}
		sb.WriteString(")")
		args = append(args, runID, string(f.Kind), f.TxHash, f.AccountID, f.Expected, f.Actual, checkedAt)
	}

	if _, err := tx.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("insert reconciliation findings: %w", err)
	}
	return nil
}
