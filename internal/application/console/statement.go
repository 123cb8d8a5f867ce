package console

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/loyalty-console/internal/application/ports"
	"github.com/jhoicas/loyalty-console/internal/application/resource"
	"github.com/jhoicas/loyalty-console/internal/application/viewmodel"
	"github.com/jhoicas/loyalty-console/internal/domain/entity"
)

// statementLimit transacciones que entran en un estado de cuenta.
const statementLimit = 500

// Statement genera el PDF del estado de cuenta del comercio.
// Devuelve los bytes y el nombre de archivo sugerido.
func Statement(ctx context.Context, s *Session, merchantID, currency string, r ports.StatementRenderer) ([]byte, string, error) {
	if merchantID == "" {
		return nil, "", invalid("comercio requerido")
	}
	profile := Resource[entity.Merchant](s, MerchantProfile(merchantID))
	txs := Resource[entity.Transaction](s, StatementTransactions(merchantID))

	var (
		pst resource.State[entity.Merchant]
		tst resource.State[entity.Transaction]
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { pst, err = profile.Load(gctx, resource.Params{}); return err })
	g.Go(func() (err error) {
		tst, err = txs.Load(gctx, resource.Params{Page: 1, Limit: statementLimit})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, "", err
	}
	merchant, _ := pst.First()
	ts := tst.Items

	now := time.Now()
	data := ports.StatementData{
		Merchant:     merchant,
		Transactions: ts,
		Currency:     currency,
		TotalAmount:  viewmodel.SumDecimal(ts, txAmount),
		TotalPoints:  viewmodel.SumDecimal(ts, func(t entity.Transaction) decimal.Decimal { return t.Points }),
		GeneratedAt:  now,
		Reference:    fmt.Sprintf("statement:%s:%s", merchantID, now.Format("20060102")),
	}
	pdf, err := r.RenderStatement(ctx, data)
	if err != nil {
		return nil, "", fmt.Errorf("console: estado de cuenta: %w", err)
	}
	return pdf, fmt.Sprintf("estado-cuenta-%s-%s.pdf", merchantID, now.Format("2006-01-02")), nil
}
