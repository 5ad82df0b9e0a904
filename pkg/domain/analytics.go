package domain

// DashboardStats is the top-of-dashboard summary for one tenant.
type DashboardStats struct {
	TotalCustomers int     `json:"totalCustomers"`
	TotalProducts  int     `json:"totalProducts"`
	TotalOrders    int     `json:"totalOrders"`
	TotalRevenue   float64 `json:"totalRevenue"`
}

// OrdersByDateRow is one day of order volume and revenue.
type OrdersByDateRow struct {
	Date       string  `json:"date"`
	OrderCount int     `json:"orderCount"`
	Revenue    float64 `json:"revenue"`
}

// TopCustomer is one row of the top-spenders list.
type TopCustomer struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	Name        string  `json:"name"`
	TotalSpent  float64 `json:"totalSpent"`
	OrdersCount int     `json:"ordersCount"`
}

// SalesPerformanceRow is one month of revenue breakdown.
type SalesPerformanceRow struct {
	Period       string  `json:"period"`
	GrossRevenue float64 `json:"grossRevenue"`
	Discounts    float64 `json:"discounts"`
	NetRevenue   float64 `json:"netRevenue"`
	OrderCount   int     `json:"orderCount"`
}

// CustomerBehaviorRow is one month of acquisition and value metrics.
// LifetimeValue is total spend divided by new customers for the month,
// zero when no customers were acquired.
type CustomerBehaviorRow struct {
	Period             string  `json:"period"`
	NewCustomers       int     `json:"newCustomers"`
	ReturningCustomers int     `json:"returningCustomers"`
	TotalSpent         float64 `json:"totalSpent"`
	LifetimeValue      float64 `json:"lifetimeValue"`
}

// ProductPerformanceRow is one product's sales summary.
type ProductPerformanceRow struct {
	Name      string  `json:"name"`
	UnitsSold int     `json:"unitsSold"`
	Revenue   float64 `json:"revenue"`
	Inventory int     `json:"inventory"`
}

// CartAbandonmentSummary aggregates checkout outcomes for a tenant.
type CartAbandonmentSummary struct {
	TotalAbandoned  int     `json:"total_abandoned"`
	TotalCompleted  int     `json:"total_completed"`
	TotalStarted    int     `json:"total_started"`
	AbandonmentRate float64 `json:"abandonment_rate"`
	AbandonedValue  float64 `json:"abandoned_value"`
}

// CartAbandonmentDay is the per-day breakdown behind the summary.
type CartAbandonmentDay struct {
	Date                string  `json:"date"`
	AbandonedCarts      int     `json:"abandoned_carts"`
	CheckoutsStarted    int     `json:"checkouts_started"`
	CheckoutsCompleted  int     `json:"checkouts_completed"`
	AbandonmentRate     float64 `json:"abandonment_rate"`
	TotalValueAbandoned float64 `json:"total_value_abandoned"`
}

// CartAbandonmentStats is the full cart-abandonment analytics payload.
type CartAbandonmentStats struct {
	Summary CartAbandonmentSummary `json:"summary"`
	Daily   []CartAbandonmentDay   `json:"daily"`
}

// CustomerListRow is one row of the paginated customer list.
type CustomerListRow struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	Name        string  `json:"name"`
	TotalSpent  float64 `json:"totalSpent"`
	OrdersCount int     `json:"ordersCount"`
	JoinedDate  string  `json:"joinedDate"`
}

// Pagination describes a page of a larger result set.
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}
