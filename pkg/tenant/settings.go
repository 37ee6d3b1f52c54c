package tenant

// Settings holds per-tenant feature, branding and integration toggles.
// Pointer fields distinguish "not set" from an explicit false/empty value,
// so each toggle is independently overridable; Effective fills unset fields
// from the schema defaults.
type Settings struct {
	InventoryEnabled  *bool   `json:"inventory_enabled,omitempty"`
	DeliveriesEnabled *bool   `json:"deliveries_enabled,omitempty"`
	ContractsEnabled  *bool   `json:"contracts_enabled,omitempty"`
	OrdersEnabled     *bool   `json:"orders_enabled,omitempty"`
	NotifyByEmail     *bool   `json:"notify_by_email,omitempty"`
	NotifyByWhatsApp  *bool   `json:"notify_by_whatsapp,omitempty"`
	PNAEIntegration   *bool   `json:"pnae_integration,omitempty"`
	PrimaryColor      *string `json:"primary_color,omitempty"`
	LogoURL           *string `json:"logo_url,omitempty"`
}

// DefaultSettings returns the schema defaults applied to unset fields.
func DefaultSettings() Settings {
	return Settings{
		InventoryEnabled:  boolPtr(true),
		DeliveriesEnabled: boolPtr(true),
		ContractsEnabled:  boolPtr(true),
		OrdersEnabled:     boolPtr(true),
		NotifyByEmail:     boolPtr(true),
		NotifyByWhatsApp:  boolPtr(false),
		PNAEIntegration:   boolPtr(false),
		PrimaryColor:      strPtr("#1a7f46"),
		LogoURL:           strPtr(""),
	}
}

// Effective returns a copy of s with every unset field filled from
// DefaultSettings.
func (s Settings) Effective() Settings {
	d := DefaultSettings()
	out := s
	if out.InventoryEnabled == nil {
		out.InventoryEnabled = d.InventoryEnabled
	}
	if out.DeliveriesEnabled == nil {
		out.DeliveriesEnabled = d.DeliveriesEnabled
	}
	if out.ContractsEnabled == nil {
		out.ContractsEnabled = d.ContractsEnabled
	}
	if out.OrdersEnabled == nil {
		out.OrdersEnabled = d.OrdersEnabled
	}
	if out.NotifyByEmail == nil {
		out.NotifyByEmail = d.NotifyByEmail
	}
	if out.NotifyByWhatsApp == nil {
		out.NotifyByWhatsApp = d.NotifyByWhatsApp
	}
	if out.PNAEIntegration == nil {
		out.PNAEIntegration = d.PNAEIntegration
	}
	if out.PrimaryColor == nil {
		out.PrimaryColor = d.PrimaryColor
	}
	if out.LogoURL == nil {
		out.LogoURL = d.LogoURL
	}
	return out
}

// LimitType identifies a numeric cap in Limits.
type LimitType string

const (
	LimitUsers     LimitType = "users"
	LimitSchools   LimitType = "schools"
	LimitProducts  LimitType = "products"
	LimitStorageMB LimitType = "storage_mb"
	LimitAPIRate   LimitType = "api_rate_per_minute"
	LimitContracts LimitType = "contracts"
	LimitOrders    LimitType = "orders"
)

// Unlimited marks a limit with no cap.
const Unlimited int64 = -1

// Limits holds the numeric caps for a tenant. Unset fields fall back to the
// schema defaults via Effective.
type Limits struct {
	MaxUsers         *int64 `json:"max_users,omitempty"`
	MaxSchools       *int64 `json:"max_schools,omitempty"`
	MaxProducts      *int64 `json:"max_products,omitempty"`
	MaxStorageMB     *int64 `json:"max_storage_mb,omitempty"`
	APIRatePerMinute *int64 `json:"api_rate_per_minute,omitempty"`
	MaxContracts     *int64 `json:"max_contracts,omitempty"`
	MaxOrders        *int64 `json:"max_orders,omitempty"`
}

// DefaultLimits returns the schema defaults applied to unset caps.
func DefaultLimits() Limits {
	return Limits{
		MaxUsers:         int64Ptr(50),
		MaxSchools:       int64Ptr(100),
		MaxProducts:      int64Ptr(1000),
		MaxStorageMB:     int64Ptr(5120),
		APIRatePerMinute: int64Ptr(600),
		MaxContracts:     int64Ptr(Unlimited),
		MaxOrders:        int64Ptr(Unlimited),
	}
}

// Effective returns a copy of l with every unset cap filled from
// DefaultLimits.
func (l Limits) Effective() Limits {
	d := DefaultLimits()
	out := l
	if out.MaxUsers == nil {
		out.MaxUsers = d.MaxUsers
	}
	if out.MaxSchools == nil {
		out.MaxSchools = d.MaxSchools
	}
	if out.MaxProducts == nil {
		out.MaxProducts = d.MaxProducts
	}
	if out.MaxStorageMB == nil {
		out.MaxStorageMB = d.MaxStorageMB
	}
	if out.APIRatePerMinute == nil {
		out.APIRatePerMinute = d.APIRatePerMinute
	}
	if out.MaxContracts == nil {
		out.MaxContracts = d.MaxContracts
	}
	if out.MaxOrders == nil {
		out.MaxOrders = d.MaxOrders
	}
	return out
}

// Get returns the effective cap for the given limit type. Unknown limit
// types are treated as unlimited; callers validating dynamic input should
// check the type beforehand.
func (l Limits) Get(t LimitType) int64 {
	e := l.Effective()
	switch t {
	case LimitUsers:
		return *e.MaxUsers
	case LimitSchools:
		return *e.MaxSchools
	case LimitProducts:
		return *e.MaxProducts
	case LimitStorageMB:
		return *e.MaxStorageMB
	case LimitAPIRate:
		return *e.APIRatePerMinute
	case LimitContracts:
		return *e.MaxContracts
	case LimitOrders:
		return *e.MaxOrders
	default:
		return Unlimited
	}
}

func boolPtr(v bool) *bool       { return &v }
func strPtr(v string) *string    { return &v }
func int64Ptr(v int64) *int64    { return &v }
