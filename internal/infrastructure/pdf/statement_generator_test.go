package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/loyalty-console/internal/application/ports"
	"github.com/jhoicas/loyalty-console/internal/domain/entity"
)

func TestThousands(t *testing.T) {
	cases := map[string]string{"0": "0", "999": "999", "25000": "25.000", "1000000": "1.000.000"}
	for in, want := range cases {
		assert.Equal(t, want, thousands(in))
	}
	assert.Equal(t, "IDR -1.500", money(decimal.NewFromInt(-1500), "IDR"))
}

func TestRenderStatement_GeneraPDF(t *testing.T) {
	g := NewMarotoStatementGenerator()
	data := ports.StatementData{
		Merchant: entity.Merchant{ID: "m1", BusinessName: "Kopi Kenangan", Email: "kopi@example.com",
			WalletBalance: decimal.NewFromInt(150000), RewardsPercentage: decimal.NewFromInt(5)},
		Transactions: []entity.Transaction{
			{ID: "t1", CustomerName: "Grace", Type: "purchase", Amount: decimal.NewFromInt(25000),
				Points: decimal.NewFromInt(25), CreatedAt: time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)},
		},
		Currency:    "IDR",
		TotalAmount: decimal.NewFromInt(25000),
		TotalPoints: decimal.NewFromInt(25),
		GeneratedAt: time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC),
		Reference:   "statement:m1:2024-06",
	}

	out, err := g.RenderStatement(context.Background(), data)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRenderStatement_ContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMarotoStatementGenerator().RenderStatement(ctx, ports.StatementData{})
	assert.ErrorIs(t, err, context.Canceled)
}
