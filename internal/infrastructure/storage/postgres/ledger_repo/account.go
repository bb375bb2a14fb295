// Package ledger_repo provides PostgreSQL implementations for the chart of
// accounts and ledger leg repositories.
package ledger_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"bizledger/internal/core/apperror"
	"bizledger/internal/core/id"
	"bizledger/internal/domain/accounts"
	"bizledger/internal/infrastructure/storage/postgres"
)

const accountsTable = "cat_accounts"

var accountColumns = []string{
	"id", "version", "code", "name", "type", "sub_type", "parent_id",
	"opening_balance", "active", "created_at", "updated_at",
}

// AccountRepo implements accounts.Repository.
type AccountRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewAccountRepo creates a new account repository.
func NewAccountRepo(txManager *postgres.TxManager) *AccountRepo {
	return &AccountRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new account.
func (r *AccountRepo) Create(ctx context.Context, account *accounts.Account) error {
	q := r.builder.Insert(accountsTable).
		Columns(accountColumns...).
		Values(
			account.ID, account.Version, account.Code, account.Name,
			account.Type, account.SubType, account.ParentID,
			account.OpeningBalance, account.Active,
			account.CreatedAt, account.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// Update modifies an existing account with optimistic locking.
func (r *AccountRepo) Update(ctx context.Context, account *accounts.Account) error {
	q := r.builder.Update(accountsTable).
		Set("version", account.Version+1).
		Set("name", account.Name).
		Set("sub_type", account.SubType).
		Set("opening_balance", account.OpeningBalance).
		Set("active", account.Active).
		Set("updated_at", account.UpdatedAt).
		Where(squirrel.Eq{
			"id":      account.ID,
			"version": account.Version,
		})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("account", account.ID.String())
	}

	account.SetVersion(account.Version + 1)
	return nil
}

// GetByID retrieves an account by ID.
func (r *AccountRepo) GetByID(ctx context.Context, accountID id.ID) (*accounts.Account, error) {
	return r.getOne(ctx, squirrel.Eq{"id": accountID}, accountID.String())
}

// GetByCode retrieves an account by its unique code.
func (r *AccountRepo) GetByCode(ctx context.Context, code string) (*accounts.Account, error) {
	return r.getOne(ctx, squirrel.Eq{"code": code}, code)
}

func (r *AccountRepo) getOne(ctx context.Context, where squirrel.Eq, key string) (*accounts.Account, error) {
	q := r.builder.Select(accountColumns...).
		From(accountsTable).
		Where(where).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var account accounts.Account
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &account, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("account", key)
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &account, nil
}

// GetByIDs retrieves several accounts at once.
func (r *AccountRepo) GetByIDs(ctx context.Context, ids []id.ID) ([]*accounts.Account, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	q := r.builder.Select(accountColumns...).
		From(accountsTable).
		Where(squirrel.Eq{"id": ids})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var list []*accounts.Account
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &list, sql, args...); err != nil {
		return nil, fmt.Errorf("select accounts: %w", err)
	}
	return list, nil
}

// List returns the full chart ordered by code.
func (r *AccountRepo) List(ctx context.Context) ([]*accounts.Account, error) {
	q := r.builder.Select(accountColumns...).
		From(accountsTable).
		OrderBy("code")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var list []*accounts.Account
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &list, sql, args...); err != nil {
		return nil, fmt.Errorf("select accounts: %w", err)
	}
	return list, nil
}

// HasPostings reports whether any ledger leg references the account.
func (r *AccountRepo) HasPostings(ctx context.Context, accountID id.ID) (bool, error) {
	sql := `SELECT EXISTS (SELECT 1 FROM reg_ledger_legs WHERE account_id = $1)`

	var exists bool
	err := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, accountID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check postings: %w", err)
	}
	return exists, nil
}

// Ensure interface compliance.
var _ accounts.Repository = (*AccountRepo)(nil)
