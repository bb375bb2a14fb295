package ledger_repo

import (
	"strings"
	"testing"
	"time"

	"bizledger/internal/core/id"
)

func TestWindowQuery_SQL(t *testing.T) {
	repo := NewLegRepo(nil)
	accountID := id.New()
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	selectCols := strings.Join(legColumns, ", ")

	tests := []struct {
		name     string
		limit    int
		offset   int
		wantSQL  string
		wantArgs int
	}{
		{
			name:  "first page",
			limit: 50,
			wantSQL: "SELECT " + selectCols + " FROM reg_ledger_legs" +
				" WHERE account_id = $1 AND date >= $2 AND date <= $3" +
				" ORDER BY date, set_id, line_no LIMIT 50",
			wantArgs: 3,
		},
		{
			name:   "second page",
			limit:  50,
			offset: 50,
			wantSQL: "SELECT " + selectCols + " FROM reg_ledger_legs" +
				" WHERE account_id = $1 AND date >= $2 AND date <= $3" +
				" ORDER BY date, set_id, line_no LIMIT 50 OFFSET 50",
			wantArgs: 3,
		},
		{
			name: "unbounded",
			wantSQL: "SELECT " + selectCols + " FROM reg_ledger_legs" +
				" WHERE account_id = $1 AND date >= $2 AND date <= $3" +
				" ORDER BY date, set_id, line_no",
			wantArgs: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := repo.windowQuery(accountID, from, to, tt.limit, tt.offset).ToSql()
			if err != nil {
				t.Fatalf("ToSql failed: %v", err)
			}

			if sql != tt.wantSQL {
				t.Errorf("SQL mismatch\nwant: %s\ngot:  %s", tt.wantSQL, sql)
			}
			if len(args) != tt.wantArgs {
				t.Fatalf("Args count mismatch\nwant: %d\ngot:  %d", tt.wantArgs, len(args))
			}
			if args[0] != accountID {
				t.Errorf("Args mismatch\nwant: %v\ngot:  %v", accountID, args[0])
			}
		})
	}
}
