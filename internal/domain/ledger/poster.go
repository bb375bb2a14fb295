package ledger

import (
	"context"
	"fmt"
	"time"

	"bizledger/internal/core/apperror"
	appctx "bizledger/internal/core/context"
	"bizledger/internal/core/id"
	"bizledger/internal/core/tx"
	"bizledger/internal/core/types"
	"bizledger/pkg/logger"

	"bizledger/internal/domain/accounts"
)

// Poster atomically commits balanced sets of debit/credit legs.
// A set is either fully persisted or not persisted at all; readers never
// observe a partially-posted set.
type Poster struct {
	repo      Repository
	accounts  accounts.Repository
	txManager tx.Manager
}

// NewPoster creates a new ledger poster.
func NewPoster(repo Repository, accountRepo accounts.Repository, txManager tx.Manager) *Poster {
	return &Poster{
		repo:      repo,
		accounts:  accountRepo,
		txManager: txManager,
	}
}

// Post validates and persists one transaction set dated at the given business
// date. Validation order: leg shape, account existence and activation, then
// debit/credit balance. Any failure aborts the whole set.
//
// Returns the opaque set ID correlating all legs.
func (p *Poster) Post(ctx context.Context, date time.Time, drafts []DraftLeg) (id.ID, error) {
	if err := validateShape(date, drafts); err != nil {
		return id.Nil(), err
	}

	setID := id.New()
	err := p.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := p.validateAccounts(ctx, drafts); err != nil {
			return err
		}
		if err := validateBalance(drafts); err != nil {
			return err
		}

		legs := buildLegs(ctx, setID, date, drafts)
		if err := p.repo.CreateLegs(ctx, legs); err != nil {
			return fmt.Errorf("create legs: %w", err)
		}
		return nil
	})
	if err != nil {
		return id.Nil(), err
	}

	logger.Info(ctx, "transaction set posted",
		"set_id", setID,
		"legs", len(drafts),
		"date", date.Format("2006-01-02"),
	)
	return setID, nil
}

func validateShape(date time.Time, drafts []DraftLeg) error {
	if date.IsZero() {
		return apperror.NewValidation("posting date is required")
	}
	if len(drafts) < 2 {
		return apperror.NewValidation("a transaction set needs at least two legs").
			WithDetail("legs", len(drafts))
	}

	for i, d := range drafts {
		if id.IsNil(d.AccountID) {
			return apperror.NewValidation("leg has no account").
				WithDetail("line_no", i+1)
		}
		if d.Debit.IsNegative() || d.Credit.IsNegative() {
			return apperror.NewValidation("leg amounts must not be negative").
				WithDetail("line_no", i+1)
		}
		hasDebit := d.Debit.IsPositive()
		hasCredit := d.Credit.IsPositive()
		if hasDebit == hasCredit {
			return apperror.NewValidation("leg must have exactly one of debit or credit").
				WithDetail("line_no", i+1)
		}
	}
	return nil
}

func (p *Poster) validateAccounts(ctx context.Context, drafts []DraftLeg) error {
	unique := make([]id.ID, 0, len(drafts))
	seen := make(map[id.ID]bool, len(drafts))
	for _, d := range drafts {
		if !seen[d.AccountID] {
			seen[d.AccountID] = true
			unique = append(unique, d.AccountID)
		}
	}

	found, err := p.accounts.GetByIDs(ctx, unique)
	if err != nil {
		return fmt.Errorf("load accounts: %w", err)
	}

	byID := make(map[id.ID]*accounts.Account, len(found))
	for _, a := range found {
		byID[a.ID] = a
	}

	for _, accountID := range unique {
		account, ok := byID[accountID]
		if !ok {
			return apperror.NewNotFound("account", accountID.String())
		}
		if !account.Active {
			return apperror.NewInactiveAccount(account.Code)
		}
	}
	return nil
}

func validateBalance(drafts []DraftLeg) error {
	var totalDebit, totalCredit types.MinorUnits
	for _, d := range drafts {
		totalDebit += d.Debit
		totalCredit += d.Credit
	}
	if totalDebit != totalCredit {
		return apperror.NewImbalancedPosting(totalDebit.String(), totalCredit.String())
	}
	return nil
}

func buildLegs(ctx context.Context, setID id.ID, date time.Time, drafts []DraftLeg) []Leg {
	createdBy := appctx.GetUserID(ctx)
	now := time.Now().UTC()

	legs := make([]Leg, 0, len(drafts))
	for i, d := range drafts {
		legs = append(legs, Leg{
			LineID:        id.New(),
			SetID:         setID,
			LineNo:        i + 1,
			AccountID:     d.AccountID,
			Date:          date,
			ReferenceType: d.ReferenceType,
			ReferenceID:   d.ReferenceID,
			Debit:         d.Debit,
			Credit:        d.Credit,
			Description:   d.Description,
			CreatedBy:     createdBy,
			CreatedAt:     now,
		})
	}
	return legs
}
