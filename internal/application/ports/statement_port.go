package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/loyalty-console/internal/domain/entity"
)

// StatementData datos del estado de cuenta de un comercio.
type StatementData struct {
	Merchant     entity.Merchant
	Transactions []entity.Transaction
	Currency     string // código ISO, ej. IDR
	TotalAmount  decimal.Decimal
	TotalPoints  decimal.Decimal
	GeneratedAt  time.Time
	Reference    string // identificador impreso en el pie y en el QR
}

// StatementRenderer genera el PDF del estado de cuenta. Lo implementa
// *pdf.MarotoStatementGenerator.
type StatementRenderer interface {
	RenderStatement(ctx context.Context, data StatementData) ([]byte, error)
}
