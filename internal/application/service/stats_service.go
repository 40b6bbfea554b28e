package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/beautypos-api/internal/domain/repository"
	"github.com/sangkips/beautypos-api/internal/infrastructure/cache"
	"github.com/sangkips/beautypos-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

const (
	statsKeyPrefix = "stats:"

	dashboardTopClients  = 5
	dashboardTopProducts = 3
	summaryTopN          = 5
)

// Period is a dashboard window that starts at the beginning of the current day,
// week, month or year.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// ParsePeriod defaults to day when s is empty.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case "":
		return PeriodDay, nil
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodYear:
		return p, nil
	}
	return "", apperror.NewFieldError("period", "period must be one of day, week, month, year")
}

// Start returns the beginning of the period containing now. Weeks start on Sunday.
func (p Period) Start(now time.Time) time.Time {
	y, m, d := now.Date()
	loc := now.Location()
	switch p {
	case PeriodWeek:
		return time.Date(y, m, d-int(now.Weekday()), 0, 0, 0, 0, loc)
	case PeriodMonth:
		return time.Date(y, m, 1, 0, 0, 0, 0, loc)
	case PeriodYear:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
	default:
		return time.Date(y, m, d, 0, 0, 0, 0, loc)
	}
}

// ClientStat is a client ranked by validated spending
type ClientStat struct {
	ClientID     uuid.UUID       `json:"clientId"`
	FirstName    string          `json:"firstName"`
	LastName     string          `json:"lastName"`
	TotalSpent   decimal.Decimal `json:"totalSpent"`
	InvoiceCount int64           `json:"invoiceCount"`
}

// ProductStat is a product ranked by sales
type ProductStat struct {
	ProductID    uuid.UUID       `json:"productId"`
	Name         string          `json:"name"`
	QuantitySold int64           `json:"quantitySold"`
	Revenue      decimal.Decimal `json:"revenue"`
}

// ServiceStat is a service ranked by revenue
type ServiceStat struct {
	ServiceID uuid.UUID       `json:"serviceId"`
	Name      string          `json:"name"`
	TimesSold int64           `json:"timesSold"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// UserStat is the revenue booked by one staff member
type UserStat struct {
	UserID       uuid.UUID       `json:"userId"`
	FirstName    string          `json:"firstName"`
	LastName     string          `json:"lastName"`
	Revenue      decimal.Decimal `json:"revenue"`
	InvoiceCount int64           `json:"invoiceCount"`
}

// DashboardStats is the rollup shown on the dashboard
type DashboardStats struct {
	Period               Period          `json:"period"`
	From                 time.Time       `json:"from"`
	ProductsSold         int64           `json:"productsSold"`
	Revenue              decimal.Decimal `json:"revenue"`
	InvoiceCount         int64           `json:"invoiceCount"`
	ClientsWithPurchases int64           `json:"clientsWithPurchases"`
	TotalClients         int64           `json:"totalClients"`
	LowStockProducts     int64           `json:"lowStockProducts"`
	TopClients           []ClientStat    `json:"topClients"`
	TopProducts          []ProductStat   `json:"topProducts"`
}

// SummaryStats is the rollup over an arbitrary date range
type SummaryStats struct {
	From          *time.Time      `json:"from,omitempty"`
	To            *time.Time      `json:"to,omitempty"`
	Revenue       decimal.Decimal `json:"revenue"`
	InvoiceCount  int64           `json:"invoiceCount"`
	TopProducts   []ProductStat   `json:"topProducts"`
	TopServices   []ServiceStat   `json:"topServices"`
	RevenueByUser []UserStat      `json:"revenueByUser"`
}

// StatsService aggregates validated invoices and caches the results
type StatsService struct {
	statsRepo         repository.StatsRepository
	clientRepo        repository.ClientRepository
	productRepo       repository.ProductRepository
	cache             cache.Cache
	ttl               time.Duration
	lowStockThreshold int
	now               func() time.Time
}

// NewStatsService creates a new stats service. A nil cache disables caching.
func NewStatsService(
	statsRepo repository.StatsRepository,
	clientRepo repository.ClientRepository,
	productRepo repository.ProductRepository,
	c cache.Cache,
	ttl time.Duration,
	lowStockThreshold int,
) *StatsService {
	if c == nil {
		c = cache.Noop{}
	}
	return &StatsService{
		statsRepo:         statsRepo,
		clientRepo:        clientRepo,
		productRepo:       productRepo,
		cache:             c,
		ttl:               ttl,
		lowStockThreshold: lowStockThreshold,
		now:               time.Now,
	}
}

func scopeKey(actor Actor) string {
	if id := actor.ScopeUserID(); id != nil {
		return id.String()
	}
	return "all"
}

// Dashboard returns the rollup for the current period. Restricted actors only see
// their own invoices; catalog counts are shop-wide.
func (s *StatsService) Dashboard(ctx context.Context, actor Actor, period Period) (*DashboardStats, error) {
	from := period.Start(s.now())
	key := fmt.Sprintf("%sdashboard:%s:%d:%s", statsKeyPrefix, period, from.Unix(), scopeKey(actor))

	var stats DashboardStats
	if s.load(ctx, key, &stats) {
		return &stats, nil
	}

	f := repository.StatsFilter{From: &from, UserID: actor.ScopeUserID()}

	revenue, err := s.statsRepo.Revenue(ctx, f)
	if err != nil {
		return nil, err
	}
	sold, err := s.statsRepo.ProductsSold(ctx, f)
	if err != nil {
		return nil, err
	}
	clients, err := s.statsRepo.DistinctClients(ctx, f)
	if err != nil {
		return nil, err
	}
	totalClients, err := s.clientRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	lowStock, err := s.productRepo.CountLowStock(ctx, s.lowStockThreshold)
	if err != nil {
		return nil, err
	}
	topClients, err := s.statsRepo.TopClients(ctx, f, dashboardTopClients)
	if err != nil {
		return nil, err
	}
	topProducts, err := s.statsRepo.TopProducts(ctx, f, dashboardTopProducts, true)
	if err != nil {
		return nil, err
	}

	stats = DashboardStats{
		Period:               period,
		From:                 from,
		ProductsSold:         sold,
		Revenue:              revenue.Revenue,
		InvoiceCount:         revenue.InvoiceCount,
		ClientsWithPurchases: clients,
		TotalClients:         totalClients,
		LowStockProducts:     lowStock,
		TopClients:           make([]ClientStat, 0, len(topClients)),
		TopProducts:          productStats(topProducts),
	}
	for _, c := range topClients {
		stats.TopClients = append(stats.TopClients, ClientStat{
			ClientID:     c.ClientID,
			FirstName:    c.FirstName,
			LastName:     c.LastName,
			TotalSpent:   c.TotalSpent,
			InvoiceCount: c.InvoiceCount,
		})
	}

	s.store(ctx, key, &stats)
	return &stats, nil
}

// Summary returns revenue, rankings and per-user revenue between from and to.
// Either bound may be nil.
func (s *StatsService) Summary(ctx context.Context, actor Actor, from, to *time.Time) (*SummaryStats, error) {
	if from != nil && to != nil && to.Before(*from) {
		return nil, apperror.NewFieldError("endDate", "end date is before start date")
	}

	key := fmt.Sprintf("%ssummary:%s:%s:%s", statsKeyPrefix, unixOrDash(from), unixOrDash(to), scopeKey(actor))
	var stats SummaryStats
	if s.load(ctx, key, &stats) {
		return &stats, nil
	}

	f := repository.StatsFilter{From: from, To: to, UserID: actor.ScopeUserID()}

	revenue, err := s.statsRepo.Revenue(ctx, f)
	if err != nil {
		return nil, err
	}
	topProducts, err := s.statsRepo.TopProducts(ctx, f, summaryTopN, false)
	if err != nil {
		return nil, err
	}
	topServices, err := s.statsRepo.TopServices(ctx, f, summaryTopN)
	if err != nil {
		return nil, err
	}
	byUser, err := s.statsRepo.RevenueByUser(ctx, f)
	if err != nil {
		return nil, err
	}

	stats = SummaryStats{
		From:          from,
		To:            to,
		Revenue:       revenue.Revenue,
		InvoiceCount:  revenue.InvoiceCount,
		TopProducts:   productStats(topProducts),
		TopServices:   make([]ServiceStat, 0, len(topServices)),
		RevenueByUser: make([]UserStat, 0, len(byUser)),
	}
	for _, sv := range topServices {
		stats.TopServices = append(stats.TopServices, ServiceStat{
			ServiceID: sv.ServiceID,
			Name:      sv.ServiceName,
			TimesSold: sv.TimesSold,
			Revenue:   sv.Revenue,
		})
	}
	for _, u := range byUser {
		stats.RevenueByUser = append(stats.RevenueByUser, UserStat{
			UserID:       u.UserID,
			FirstName:    u.FirstName,
			LastName:     u.LastName,
			Revenue:      u.Revenue,
			InvoiceCount: u.InvoiceCount,
		})
	}

	s.store(ctx, key, &stats)
	return &stats, nil
}

// Invalidate drops every cached rollup.
func (s *StatsService) Invalidate(ctx context.Context) {
	if err := s.cache.DeletePrefix(ctx, statsKeyPrefix); err != nil {
		log.Printf("Warning: failed to invalidate stats cache: %v", err)
	}
}

func (s *StatsService) load(ctx context.Context, key string, dst interface{}) bool {
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		log.Printf("Warning: stats cache read %s: %v", key, err)
		return false
	}
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

func (s *StatsService) store(ctx context.Context, key string, v interface{}) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
		log.Printf("Warning: stats cache write %s: %v", key, err)
	}
}

func productStats(rows []repository.TopProductResult) []ProductStat {
	out := make([]ProductStat, 0, len(rows))
	for _, p := range rows {
		out = append(out, ProductStat{
			ProductID:    p.ProductID,
			Name:         p.ProductName,
			QuantitySold: p.QuantitySold,
			Revenue:      p.Revenue,
		})
	}
	return out
}

func unixOrDash(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return fmt.Sprint(t.Unix())
}
