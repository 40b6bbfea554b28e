package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StatsFilter scopes every rollup. Only validated invoices are aggregated.
type StatsFilter struct {
	From   *time.Time
	To     *time.Time
	UserID *uuid.UUID
}

// RevenueSummary is the revenue and count of validated invoices.
type RevenueSummary struct {
	Revenue      decimal.Decimal
	InvoiceCount int64
}

// TopProductResult represents a product's sales performance
type TopProductResult struct {
	ProductID    uuid.UUID
	ProductName  string
	QuantitySold int64
	Revenue      decimal.Decimal
}

// TopServiceResult represents a service's sales performance
type TopServiceResult struct {
	ServiceID   uuid.UUID
	ServiceName string
	TimesSold   int64
	Revenue     decimal.Decimal
}

// TopClientResult represents a client's spending
type TopClientResult struct {
	ClientID     uuid.UUID
	FirstName    string
	LastName     string
	TotalSpent   decimal.Decimal
	InvoiceCount int64
}

// UserRevenueResult is the revenue booked by one staff member
type UserRevenueResult struct {
	UserID       uuid.UUID
	FirstName    string
	LastName     string
	Revenue      decimal.Decimal
	InvoiceCount int64
}

// StatsRepository defines aggregation queries over validated invoices
type StatsRepository interface {
	Revenue(ctx context.Context, f StatsFilter) (*RevenueSummary, error)
	ProductsSold(ctx context.Context, f StatsFilter) (int64, error)
	DistinctClients(ctx context.Context, f StatsFilter) (int64, error)
	// TopProducts orders by quantity when byQuantity is set, otherwise by revenue.
	TopProducts(ctx context.Context, f StatsFilter, limit int, byQuantity bool) ([]TopProductResult, error)
	TopServices(ctx context.Context, f StatsFilter, limit int) ([]TopServiceResult, error)
	TopClients(ctx context.Context, f StatsFilter, limit int) ([]TopClientResult, error)
	RevenueByUser(ctx context.Context, f StatsFilter) ([]UserRevenueResult, error)
}
