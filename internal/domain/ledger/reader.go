package ledger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"bizledger/internal/core/id"
	"bizledger/internal/core/types"

	"bizledger/internal/domain/accounts"
)

// Reader computes running balances, per-account ledgers and the trial balance.
// All reads are snapshot-consistent: only fully-posted sets are visible.
type Reader struct {
	repo     Repository
	accounts accounts.Repository
}

// NewReader creates a new ledger reader.
func NewReader(repo Repository, accountRepo accounts.Repository) *Reader {
	return &Reader{
		repo:     repo,
		accounts: accountRepo,
	}
}

// Balance returns opening_balance plus the signed sum of all legs dated at or
// before asOf, following the account's sign convention. A nil asOf means the
// current balance.
func (r *Reader) Balance(ctx context.Context, accountID id.ID, asOf *time.Time) (types.MinorUnits, error) {
	account, err := r.accounts.GetByID(ctx, accountID)
	if err != nil {
		return 0, err
	}

	debit, credit, err := r.repo.SumByAccount(ctx, accountID, asOf)
	if err != nil {
		return 0, fmt.Errorf("sum legs: %w", err)
	}

	return account.OpeningBalance + account.SignedAmount(debit, credit), nil
}

// Ledger returns one page of the account's ledger in chronological order with
// a running balance folded from the opening balance. Date ties are broken by
// insertion order (set id, line no), so repeated queries are deterministic.
func (r *Reader) Ledger(ctx context.Context, accountID id.ID, q Query) (*Page, error) {
	account, err := r.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if q.Limit <= 0 {
		q.Limit = 50
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	if q.To.IsZero() {
		q.To = time.Now().UTC()
	}
	if !q.From.IsZero() && q.To.Before(q.From) {
		return nil, fmt.Errorf("ledger query: to %s before from %s", q.To.Format("2006-01-02"), q.From.Format("2006-01-02"))
	}

	// Balance before the window: all legs strictly before From.
	start := account.OpeningBalance
	if !q.From.IsZero() {
		before := q.From.Add(-time.Nanosecond)
		debit, credit, err := r.repo.SumByAccount(ctx, accountID, &before)
		if err != nil {
			return nil, fmt.Errorf("sum before window: %w", err)
		}
		start += account.SignedAmount(debit, credit)
	}

	// Skipped page prefix inside the window.
	if q.Offset > 0 {
		debit, credit, err := r.repo.SumWindowPrefix(ctx, accountID, q.From, q.To, q.Offset)
		if err != nil {
			return nil, fmt.Errorf("sum page prefix: %w", err)
		}
		start += account.SignedAmount(debit, credit)
	}

	legs, err := r.repo.ListByAccount(ctx, accountID, q.From, q.To, q.Limit, q.Offset)
	if err != nil {
		return nil, fmt.Errorf("list legs: %w", err)
	}

	page := &Page{
		AccountID:    accountID,
		StartBalance: start,
		Rows:         make([]Row, 0, len(legs)),
		Limit:        q.Limit,
		Offset:       q.Offset,
	}

	running := start
	for _, leg := range legs {
		running += account.SignedAmount(leg.Debit, leg.Credit)
		page.Rows = append(page.Rows, Row{Leg: leg, RunningBalance: running})
	}
	return page, nil
}

// GetSet returns all legs of a posted set in line order.
func (r *Reader) GetSet(ctx context.Context, setID id.ID) ([]Leg, error) {
	legs, err := r.repo.GetSet(ctx, setID)
	if err != nil {
		return nil, err
	}
	if len(legs) == 0 {
		return nil, fmt.Errorf("set %s: %w", setID, errSetNotFound)
	}
	return legs, nil
}

var errSetNotFound = fmt.Errorf("transaction set not found")

// trialBalanceTypeOrder fixes the section order of the report.
var trialBalanceTypeOrder = []accounts.AccountType{
	accounts.TypeAsset,
	accounts.TypeLiability,
	accounts.TypeEquity,
	accounts.TypeIncome,
	accounts.TypeExpense,
}

// TrialBalance sums every account's balance, grouped by account type. Each
// balance lands in its natural column when positive and the opposite column
// when negative, so grand totalDebit == totalCredit whenever only
// fully-posted sets exist.
func (r *Reader) TrialBalance(ctx context.Context, asOf *time.Time) (*TrialBalance, error) {
	chart, err := r.accounts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	sums, err := r.repo.SumsPerAccount(ctx, asOf)
	if err != nil {
		return nil, fmt.Errorf("sum legs: %w", err)
	}
	sumsByID := make(map[id.ID]AccountSums, len(sums))
	for _, s := range sums {
		sumsByID[s.AccountID] = s
	}

	sections := make(map[accounts.AccountType]*TrialBalanceSection)
	report := &TrialBalance{AsOf: asOf}

	for _, account := range chart {
		s := sumsByID[account.ID]
		closing := account.OpeningBalance + account.SignedAmount(s.Debit, s.Credit)

		row := TrialBalanceRow{
			AccountID: account.ID,
			Code:      account.Code,
			Name:      account.Name,
			Type:      account.Type,
		}
		debitSide := account.Type.DebitNatural()
		if closing.IsNegative() {
			debitSide = !debitSide
			closing = closing.Neg()
		}
		if debitSide {
			row.Debit = closing
		} else {
			row.Credit = closing
		}

		section, ok := sections[account.Type]
		if !ok {
			section = &TrialBalanceSection{Type: account.Type}
			sections[account.Type] = section
		}
		section.Rows = append(section.Rows, row)
		section.SubtotalDebit += row.Debit
		section.SubtotalCredit += row.Credit
		report.TotalDebit += row.Debit
		report.TotalCredit += row.Credit
	}

	for _, accType := range trialBalanceTypeOrder {
		if section, ok := sections[accType]; ok {
			sort.Slice(section.Rows, func(i, j int) bool {
				return section.Rows[i].Code < section.Rows[j].Code
			})
			report.Sections = append(report.Sections, *section)
		}
	}
	return report, nil
}
