package postgres

import (
	"math"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/iho/ledgerbook/internal/infrastructure/postgres/generated"
	"github.com/iho/ledgerbook/internal/usecase"
)

func queriesFor(uow usecase.UnitOfWork) *generated.Queries {
	return generated.New(uow.(*Tx).PgxTx())
}

// Type conversion helpers.
func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.StringFixed(2))

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}

	return decimal.NewFromBigInt(n.Int, n.Exp)
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func pageLimit(limit int) pgtype.Int4 {
	if limit <= 0 {
		return pgtype.Int4{}
	}

	return pgtype.Int4{Int32: int32(limit), Valid: true}
}

func pageOffset(offset int) int32 {
	switch {
	case offset <= 0:
		return 0
	case offset > math.MaxInt32:
		return math.MaxInt32
	default:
		return int32(offset)
	}
}
