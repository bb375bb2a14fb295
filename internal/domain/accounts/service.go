package accounts

import (
	"context"
	"fmt"

	"bizledger/internal/core/apperror"
	"bizledger/internal/core/id"
	"bizledger/internal/core/tx"
	"bizledger/internal/core/types"
	"bizledger/pkg/logger"
)

// Registry provides business operations for the chart of accounts.
type Registry struct {
	repo      Repository
	txManager tx.Manager
}

// NewRegistry creates a new account registry.
func NewRegistry(repo Repository, txManager tx.Manager) *Registry {
	return &Registry{
		repo:      repo,
		txManager: txManager,
	}
}

// CreateInput describes a new account.
type CreateInput struct {
	Code           string
	Name           string
	Type           AccountType
	SubType        string
	ParentCode     string
	OpeningBalance types.MinorUnits
}

// Create adds an account to the chart. The code must be unique and the parent
// (when given) must exist and carry the same type.
func (r *Registry) Create(ctx context.Context, in CreateInput) (*Account, error) {
	account := NewAccount(in.Code, in.Name, in.Type)
	account.SubType = in.SubType
	account.OpeningBalance = in.OpeningBalance

	if err := account.Validate(ctx); err != nil {
		return nil, err
	}

	err := r.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if existing, err := r.repo.GetByCode(ctx, in.Code); err == nil && existing != nil {
			return apperror.NewDuplicate("account", "code", in.Code)
		} else if err != nil && !apperror.IsNotFound(err) {
			return fmt.Errorf("check code: %w", err)
		}

		if in.ParentCode != "" {
			parent, err := r.repo.GetByCode(ctx, in.ParentCode)
			if err != nil {
				return err
			}
			if parent.Type != in.Type {
				return apperror.NewValidation("parent account must have the same type").
					WithDetail("parent_type", string(parent.Type)).
					WithDetail("type", string(in.Type))
			}
			account.ParentID = &parent.ID
		}

		return r.repo.Create(ctx, account)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "account created",
		"id", account.ID,
		"code", account.Code,
		"type", account.Type,
	)
	return account, nil
}

// GetByID retrieves an account by ID.
func (r *Registry) GetByID(ctx context.Context, accountID id.ID) (*Account, error) {
	return r.repo.GetByID(ctx, accountID)
}

// GetByCode retrieves an account by code.
func (r *Registry) GetByCode(ctx context.Context, code string) (*Account, error) {
	return r.repo.GetByCode(ctx, code)
}

// ListTree returns the chart of accounts as a forest. Parent references are
// resolved at read time from the flat rows; an account whose parent is missing
// is promoted to a root rather than dropped.
func (r *Registry) ListTree(ctx context.Context) ([]*TreeNode, error) {
	flat, err := r.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	nodes := make(map[id.ID]*TreeNode, len(flat))
	for _, a := range flat {
		nodes[a.ID] = &TreeNode{Account: a}
	}

	var roots []*TreeNode
	for _, a := range flat {
		node := nodes[a.ID]
		if a.ParentID != nil {
			if parent, ok := nodes[*a.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	return roots, nil
}

// Deactivate blocks future postings to the account without deleting history.
func (r *Registry) Deactivate(ctx context.Context, accountID id.ID) (*Account, error) {
	return r.setActive(ctx, accountID, false)
}

// Activate re-enables postings to a previously deactivated account.
func (r *Registry) Activate(ctx context.Context, accountID id.ID) (*Account, error) {
	return r.setActive(ctx, accountID, true)
}

func (r *Registry) setActive(ctx context.Context, accountID id.ID, active bool) (*Account, error) {
	var account *Account
	err := r.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		account, err = r.repo.GetByID(ctx, accountID)
		if err != nil {
			return err
		}
		if account.Active == active {
			return nil
		}
		account.Active = active
		return r.repo.Update(ctx, account)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "account activation changed",
		"id", accountID,
		"active", active,
	)
	return account, nil
}

// CorrectOpeningBalance replaces the opening balance. Allowed only while the
// account has no postings; afterwards corrections go through regular ledger
// entries.
func (r *Registry) CorrectOpeningBalance(ctx context.Context, accountID id.ID, balance types.MinorUnits) (*Account, error) {
	var account *Account
	err := r.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		account, err = r.repo.GetByID(ctx, accountID)
		if err != nil {
			return err
		}

		posted, err := r.repo.HasPostings(ctx, accountID)
		if err != nil {
			return fmt.Errorf("check postings: %w", err)
		}
		if posted {
			return apperror.NewBusinessRule(
				apperror.CodeBusinessRule,
				"Opening balance cannot be corrected once the account has postings",
			).WithDetail("account_id", accountID.String())
		}

		account.OpeningBalance = balance
		return r.repo.Update(ctx, account)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "opening balance corrected",
		"id", accountID,
		"balance", balance.String(),
	)
	return account, nil
}
