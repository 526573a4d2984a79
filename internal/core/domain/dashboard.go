package domain

import "time"

// ExpiryHorizonDays is the window in which a product counts as expiring soon.
const ExpiryHorizonDays = 30

// ExpiringProduct is a product inside the expiry horizon.
type ExpiringProduct struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	ExpiryDate      time.Time `json:"expiryDate"`
	DaysUntilExpiry int       `json:"daysUntilExpiry"`
}

// DashboardStats aggregates the whole inventory.
type DashboardStats struct {
	TotalProducts        int               `json:"totalProducts"`
	TotalInventoryValue  float64           `json:"totalInventoryValue"`
	AveragePrice         float64           `json:"averagePrice"`
	ExpiringProducts     int               `json:"expiringProducts"`
	ExpiringProductsList []ExpiringProduct `json:"expiringProductsList"`
}

// ExpiryStatus buckets products by expiry date relative to now.
type ExpiryStatus struct {
	Expired      int64 `json:"expired"`
	ExpiringSoon int64 `json:"expiringSoon"`
	Valid        int64 `json:"valid"`
}
