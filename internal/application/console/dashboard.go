package console

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/loyalty-console/internal/application/ports"
	"github.com/jhoicas/loyalty-console/internal/application/resource"
	"github.com/jhoicas/loyalty-console/internal/application/viewmodel"
	"github.com/jhoicas/loyalty-console/internal/domain/entity"
)

// dashboardLimit tamaño de muestra que se pide para los agregados del tablero.
const dashboardLimit = 100

const topMerchants = 5

// MerchantCounts comercios por estado. Total sale de la paginación de la API;
// el desglose por estado, de la muestra.
type MerchantCounts struct {
	Total    int `json:"total"`
	Approved int `json:"approved"`
	Pending  int `json:"pending"`
	Rejected int `json:"rejected"`
}

// CustomerCounts clientes activos e inactivos.
type CustomerCounts struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
}

// Sample describe la muestra sobre la que se calcularon desgloses, ingresos y series.
// Partial indica que alguna colección tiene más registros que los consultados.
type Sample struct {
	Size    int  `json:"size"`
	Partial bool `json:"partial"`
}

// AdminDashboardView tablero del administrador.
type AdminDashboardView struct {
	Merchants    MerchantCounts              `json:"merchants"`
	Customers    CustomerCounts              `json:"customers"`
	Transactions int                         `json:"transactions"`
	Revenue      decimal.Decimal             `json:"revenue"`
	RevenueLabel string                      `json:"revenueLabel"`
	Weekly       []viewmodel.Bucket          `json:"weekly"`
	Monthly      []viewmodel.Bucket          `json:"monthly"`
	TopMerchants []entity.Merchant           `json:"topMerchants"`
	Growth       viewmodel.Optional[float64] `json:"growth"`
	Sample       Sample                      `json:"sample"`
}

// AdminDashboard consulta en paralelo comercios, clientes y transacciones y deriva el tablero.
func AdminDashboard(ctx context.Context, s *Session, money viewmodel.Money) (AdminDashboardView, error) {
	merchants := Resource[entity.Merchant](s, DashboardMerchants)
	customers := Resource[entity.Customer](s, DashboardCustomers)
	txs := Resource[entity.Transaction](s, DashboardTransactions)

	params := resource.Params{Page: 1, Limit: dashboardLimit}
	var (
		mst resource.State[entity.Merchant]
		cst resource.State[entity.Customer]
		tst resource.State[entity.Transaction]
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { mst, err = merchants.Load(gctx, params); return err })
	g.Go(func() (err error) { cst, err = customers.Load(gctx, params); return err })
	g.Go(func() (err error) { tst, err = txs.Load(gctx, params); return err })
	if err := g.Wait(); err != nil {
		return AdminDashboardView{}, err
	}
	ms, cs, ts := mst.Items, cst.Items, tst.Items

	byStatus := viewmodel.CountBy(ms, func(m entity.Merchant) string { return m.Status })
	active, inactive := viewmodel.ActiveCounts(cs, func(c entity.Customer) bool { return c.IsActive })
	revenue := viewmodel.SumDecimal(ts, txAmount)

	mTotal, cTotal, tTotal := total(mst.Pagination, len(ms)), total(cst.Pagination, len(cs)), total(tst.Pagination, len(ts))
	return AdminDashboardView{
		Merchants: MerchantCounts{
			Total:    mTotal,
			Approved: byStatus[entity.MerchantApproved],
			Pending:  byStatus[entity.MerchantPending],
			Rejected: byStatus[entity.MerchantRejected],
		},
		Customers:    CustomerCounts{Total: cTotal, Active: active, Inactive: inactive},
		Transactions: tTotal,
		Revenue:      revenue,
		RevenueLabel: money.Format(revenue),
		Weekly:       viewmodel.BucketByWeekday(ts, txTime, txAmount),
		Monthly:      viewmodel.BucketByMonth(ts, txTime, txAmount),
		TopMerchants: viewmodel.TopN(ms, topMerchants, func(a, b entity.Merchant) bool {
			return a.TransactionCount > b.TransactionCount
		}),
		Growth: viewmodel.Growth(),
		Sample: Sample{
			Size:    dashboardLimit,
			Partial: mTotal > len(ms) || cTotal > len(cs) || tTotal > len(ts),
		},
	}, nil
}

// total registros de la colección según la API; sin paginación, los recibidos.
func total(p *ports.Pagination, received int) int {
	if p != nil && p.Total > received {
		return p.Total
	}
	return received
}

// MerchantDashboardView tablero del comercio.
type MerchantDashboardView struct {
	Summary      entity.MerchantDashboard    `json:"summary"`
	BalanceLabel string                      `json:"balanceLabel"`
	RevenueLabel string                      `json:"revenueLabel"`
	Weekly       []viewmodel.Bucket          `json:"weekly"`
	Growth       viewmodel.Optional[float64] `json:"growth"`
}

// MerchantDashboardFor consulta el resumen y las transacciones del comercio en paralelo.
func MerchantDashboardFor(ctx context.Context, s *Session, merchantID string, money viewmodel.Money) (MerchantDashboardView, error) {
	if merchantID == "" {
		return MerchantDashboardView{}, invalid("comercio requerido")
	}
	summary := Resource[entity.MerchantDashboard](s, MerchantDashboard(merchantID))
	txs := Resource[entity.Transaction](s, MerchantDashboardTransactions(merchantID))

	var (
		sst resource.State[entity.MerchantDashboard]
		tst resource.State[entity.Transaction]
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { sst, err = summary.Load(gctx, resource.Params{}); return err })
	g.Go(func() (err error) {
		tst, err = txs.Load(gctx, resource.Params{Page: 1, Limit: dashboardLimit})
		return err
	})
	if err := g.Wait(); err != nil {
		return MerchantDashboardView{}, err
	}
	d, _ := sst.First()
	ts := tst.Items

	return MerchantDashboardView{
		Summary:      d,
		BalanceLabel: money.Format(d.WalletBalance),
		RevenueLabel: money.Format(d.TotalRevenue),
		Weekly:       viewmodel.BucketByWeekday(ts, txTime, txAmount),
		Growth:       viewmodel.Growth(),
	}, nil
}

func txTime(t entity.Transaction) time.Time         { return t.CreatedAt }
func txAmount(t entity.Transaction) decimal.Decimal { return t.Amount }
