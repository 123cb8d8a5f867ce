package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/loyalty-console/internal/application/console"
	"github.com/jhoicas/loyalty-console/internal/application/draft"
	"github.com/jhoicas/loyalty-console/internal/application/ports"
	"github.com/jhoicas/loyalty-console/internal/application/viewmodel"
	"github.com/jhoicas/loyalty-console/internal/domain/entity"
	"github.com/jhoicas/loyalty-console/pkg/logger"
	"github.com/jhoicas/loyalty-console/pkg/metrics"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Sessions   *console.Registry
	Statements ports.StatementRenderer
	Money      viewmodel.Money
	Logger     *logger.Logger
	Metrics    *metrics.Collector
}

// Router registra las rutas de la consola bajo /console.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	api := app.Group("/console", ObserveMiddleware(log.Named("http"), deps.Metrics))

	// Todo /console requiere sesión (Bearer Token emitido por la API)
	protected := api.Group("/", SessionMiddleware(deps.Sessions))

	sessionHandler := NewSessionHandler(deps.Sessions)
	protected.Get("/session", sessionHandler.Current)
	protected.Post("/logout", sessionHandler.Logout)
	protected.Get("/profile", NewResourceHandler[entity.Profile](console.Profile).Show)
	protected.Put("/profile", sessionHandler.UpdateProfile)
	protected.Put("/password", sessionHandler.ChangePassword)
	protected.Get("/previews/:id", PreviewHandler(deps.Sessions.Previews()))

	adminRoutes(protected.Group("/admin", RequireRole(entity.RoleAdmin)), deps)
	merchantRoutes(protected.Group("/merchant", RequireRole(entity.RoleMerchant)), deps)
}

func adminRoutes(admin fiber.Router, deps RouterDeps) {
	adminHandler := NewAdminHandler(deps.Money)
	admin.Get("/dashboard", adminHandler.Dashboard)

	// Contenido
	mountCRUD(admin, "/banners", NewResourceHandler[entity.Banner](console.Banners).
		Searchable(func(b entity.Banner) string { return b.Title }).
		Counted(entity.Banner.StatusLabel))
	mountCRUD(admin, "/cms", NewResourceHandler[entity.CMSPage](console.CMS).
		Searchable(func(p entity.CMSPage) string { return p.Title }, func(p entity.CMSPage) string { return p.Slug }).
		Counted(func(p entity.CMSPage) string { return p.Status }))
	mountCRUD(admin, "/categories", NewResourceHandler[entity.Category](console.Categories).
		Searchable(func(c entity.Category) string { return c.Name }))
	mountCRUD(admin, "/loyalty-levels", NewResourceHandler[entity.LoyaltyLevel](console.LoyaltyLevels).
		Searchable(func(l entity.LoyaltyLevel) string { return l.Name }))
	mountCRUD(admin, "/promos", NewResourceHandler[entity.Promo](console.Promos).
		Searchable(func(p entity.Promo) string { return p.Title }))

	// Comercios: los pendientes se aprueban o rechazan; los demás se activan o eliminan
	pending := NewResourceHandler[entity.Merchant](console.PendingMerchants).
		Searchable(merchantName, merchantEmail)
	admin.Get("/merchants/pending", pending.List)
	admin.Post("/merchants/pending/:id/approve", adminHandler.Approve)
	admin.Post("/merchants/pending/:id/reject", adminHandler.Reject)

	merchants := NewResourceHandler[entity.Merchant](console.Merchants).
		Searchable(merchantName, merchantEmail).
		Counted(func(m entity.Merchant) string { return m.Status })
	admin.Get("/merchants", merchants.List)
	admin.Post("/merchants", merchants.Create)
	admin.Get("/merchants/:id", NewItemResourceHandler[entity.Merchant](console.MerchantProfile).Show)
	admin.Put("/merchants/:id", merchants.Update)
	admin.Patch("/merchants/:id", merchants.Toggle)
	admin.Delete("/merchants/:id", merchants.Remove)
	admin.Post("/merchants/:id/wallet/topup", adminHandler.TopUp)

	// La API solo expone clientes en lectura
	admin.Get("/customers", NewResourceHandler[entity.Customer](console.Customers).
		Searchable(customerName, customerEmail).
		Counted(activeLabel).List)

	admin.Get("/transactions", NewResourceHandler[entity.Transaction](console.Transactions).
		Searchable(func(t entity.Transaction) string { return t.CustomerName }, func(t entity.Transaction) string { return t.MerchantName }).
		Counted(func(t entity.Transaction) string { return t.Type }).List)

	// Ajustes
	settings := NewResourceHandler[entity.GlobalSetting](console.GlobalSettings).
		Searchable(func(s entity.GlobalSetting) string { return s.Key })
	admin.Get("/globalsettings", settings.List)
	admin.Put("/globalsettings/:id", settings.Update)
	admin.Post("/globalsettings/initialize", adminHandler.InitializeSettings)
	admin.Get("/settings/currency", NewResourceHandler[entity.CurrencySetting](console.CurrencySetting).Show)
	admin.Patch("/settings/currency", adminHandler.Currency)

	mountDrafts(admin, NewDraftHandler(map[string]DraftTarget{
		"banners":        DraftTargetFor[entity.Banner](Static(console.Banners)).WithDefaults(draft.DefaultCreate()),
		"cms":            DraftTargetFor[entity.CMSPage](Static(console.CMS)).WithDefaults(draft.DefaultCreate()),
		"categories":     DraftTargetFor[entity.Category](Static(console.Categories)),
		"loyalty-levels": DraftTargetFor[entity.LoyaltyLevel](Static(console.LoyaltyLevels)),
		"promos":         DraftTargetFor[entity.Promo](Static(console.Promos)),
		"globalsettings": DraftTargetFor[entity.GlobalSetting](Static(console.GlobalSettings)),
		"merchants":      DraftTargetFor[entity.Merchant](Static(console.Merchants)),
	}))
}

func merchantRoutes(merchant fiber.Router, deps RouterDeps) {
	merchantHandler := NewMerchantHandler(deps.Money, deps.Statements)
	merchant.Get("/dashboard", merchantHandler.Dashboard)

	merchant.Get("/profile", NewMerchantResourceHandler[entity.Merchant](console.MerchantProfile).Show)
	merchant.Post("/profile/:kind", merchantHandler.UploadImage)
	merchant.Post("/wallet/topup", merchantHandler.TopUp)
	merchant.Get("/rewards", NewMerchantResourceHandler[entity.RewardsSetting](console.RewardsPercentage).Show)
	merchant.Put("/rewards", merchantHandler.Rewards)

	merchant.Get("/customers", NewMerchantResourceHandler[entity.Customer](console.MerchantCustomers).
		Searchable(customerName, customerEmail).
		Counted(activeLabel).List)
	merchant.Get("/transactions", NewMerchantResourceHandler[entity.Transaction](console.MerchantTransactions).
		Searchable(func(t entity.Transaction) string { return t.CustomerName }).
		Counted(func(t entity.Transaction) string { return t.Type }).List)
	merchant.Get("/transactions/statement.pdf", merchantHandler.Statement)

	mountCRUD(merchant, "/promos", NewResourceHandler[entity.Promo](console.Promos).
		Searchable(func(p entity.Promo) string { return p.Title }))

	merchant.Get("/qr", merchantHandler.QRState)
	merchant.Post("/qr/scan", merchantHandler.QRScan)
	merchant.Post("/qr/charge", merchantHandler.QRCharge)
	merchant.Delete("/qr", merchantHandler.QRReset)

	mountDrafts(merchant, NewDraftHandler(map[string]DraftTarget{
		"profile": DraftTargetFor[entity.Merchant](OwnMerchant(console.MerchantProfile)).Own(),
		"promos":  DraftTargetFor[entity.Promo](Static(console.Promos)),
	}))
}

func mountCRUD[T any](r fiber.Router, path string, h *ResourceHandler[T]) {
	r.Get(path, h.List)
	r.Post(path, h.Create)
	r.Put(path+"/:id", h.Update)
	r.Patch(path+"/:id", h.Toggle)
	r.Delete(path+"/:id", h.Remove)
}

func mountDrafts(r fiber.Router, h *DraftHandler) {
	r.Post("/drafts", h.Open)
	r.Get("/drafts/:handle", h.Get)
	r.Patch("/drafts/:handle", h.Field)
	r.Post("/drafts/:handle/files/:field", h.Attach)
	r.Post("/drafts/:handle/submit", h.Submit)
	r.Delete("/drafts/:handle", h.Discard)
}

func merchantName(m entity.Merchant) string  { return m.BusinessName }
func merchantEmail(m entity.Merchant) string { return m.Email }
func customerName(c entity.Customer) string  { return c.Name }
func customerEmail(c entity.Customer) string { return c.Email }

func activeLabel(c entity.Customer) string { return entity.ActiveLabel(c.IsActive) }
