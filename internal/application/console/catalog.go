package console

import (
	"net/http"
	"net/url"

	"github.com/jhoicas/loyalty-console/internal/application/resource"
)

// Catálogo de recursos de la API consumidos por la consola.
var (
	Banners = resource.Config{Name: "banners", ListPath: "/banners", ItemsKey: "banners"}

	// CMS lista por /cms/admin/all y escribe por /cms/:id.
	CMS = resource.Config{Name: "cms", ListPath: "/cms/admin/all", ItemPath: "/cms", CreatePath: "/cms"}

	Categories       = resource.Config{Name: "categories", ListPath: "/merchants/categories"}
	Customers        = resource.Config{Name: "customers", ListPath: "/customers", ItemsKey: "customers", DefaultLimit: 20}
	Merchants        = resource.Config{Name: "merchants", ListPath: "/merchants", ItemsKey: "merchants", DefaultLimit: 20, ToggleMethod: http.MethodPut}
	PendingMerchants = resource.Config{Name: "merchants.pending", ListPath: "/merchants/pending", ItemPath: "/merchants"}
	LoyaltyLevels    = resource.Config{Name: "loyalty-levels", ListPath: "/loyalty-levels"}
	Transactions     = resource.Config{Name: "transactions", ListPath: "/transactions", ItemsKey: "transactions", DefaultLimit: 20}
	Promos           = resource.Config{Name: "promos", ListPath: "/promos"}
	GlobalSettings   = resource.Config{Name: "globalsettings", ListPath: "/globalsettings"}

	CurrencySetting = resource.Config{
		Name: "settings.currency", ListPath: "/settings/currency", Single: true, UpdateMethod: http.MethodPatch,
	}

	// Profile lee /auth/me; las escrituras van a /auth/profile y /auth/change-password.
	Profile = resource.Config{Name: "auth.me", ListPath: "/auth/me", ItemPath: "/auth", Single: true}
)

// Los tableros y el estado de cuenta consultan con su propio tamaño de página. Usan
// controladores aparte para no pisar los parámetros del listado que la página
// re-consulta tras cada mutación.
var (
	DashboardMerchants    = scoped(Merchants, "dashboard.merchants")
	DashboardCustomers    = scoped(Customers, "dashboard.customers")
	DashboardTransactions = scoped(Transactions, "dashboard.transactions")
)

func scoped(cfg resource.Config, name string) resource.Config {
	cfg.Name = name
	return cfg
}

// MerchantProfile ficha de un comercio (GET/PUT /merchants/:id, logo, banner, recarga).
func MerchantProfile(id string) resource.Config {
	return resource.Config{
		Name:     "merchant.profile",
		ListPath: "/merchants/" + url.PathEscape(id),
		ItemPath: "/merchants",
		Single:   true,
	}
}

// MerchantDashboard resumen calculado por la API.
func MerchantDashboard(id string) resource.Config {
	return resource.Config{Name: "merchant.dashboard", ListPath: "/merchants/" + url.PathEscape(id) + "/dashboard", Single: true}
}

// MerchantCustomers clientes de un comercio.
func MerchantCustomers(id string) resource.Config {
	return resource.Config{
		Name: "merchant.customers", ListPath: "/merchants/" + url.PathEscape(id) + "/customers",
		ItemsKey: "customers", DefaultLimit: 20,
	}
}

// MerchantTransactions transacciones de un comercio.
func MerchantTransactions(id string) resource.Config {
	return resource.Config{
		Name: "merchant.transactions", ListPath: "/transactions/merchant/" + url.PathEscape(id),
		ItemsKey: "transactions", DefaultLimit: 20,
	}
}

// MerchantDashboardTransactions muestra de transacciones para el tablero del comercio.
func MerchantDashboardTransactions(id string) resource.Config {
	return scoped(MerchantTransactions(id), "dashboard.merchant.transactions")
}

// StatementTransactions transacciones que entran en el estado de cuenta.
func StatementTransactions(id string) resource.Config {
	return scoped(MerchantTransactions(id), "statement.transactions")
}

// RewardsPercentage porcentaje de recompensa de un comercio.
func RewardsPercentage(id string) resource.Config {
	return resource.Config{
		Name: "merchant.rewards", ListPath: "/merchants/" + url.PathEscape(id) + "/rewards/percentage",
		Single: true, UpdateMethod: http.MethodPut,
	}
}
