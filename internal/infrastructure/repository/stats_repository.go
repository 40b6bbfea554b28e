package repository

import (
	"context"

	"github.com/sangkips/beautypos-api/internal/domain/enum"
	domainRepo "github.com/sangkips/beautypos-api/internal/domain/repository"
	"gorm.io/gorm"
)

type statsRepository struct {
	db *gorm.DB
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(db *gorm.DB) domainRepo.StatsRepository {
	return &statsRepository{db: db}
}

// validated scopes a query aliased "i" over invoices to validated rows within f.
func validated(f domainRepo.StatsFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("i.status = ?", enum.InvoiceStatusValidated)
		if f.From != nil {
			db = db.Where("i.created_at >= ?", f.From.UTC())
		}
		if f.To != nil {
			db = db.Where("i.created_at <= ?", f.To.UTC())
		}
		if f.UserID != nil {
			db = db.Where("i.user_id = ?", *f.UserID)
		}
		return db
	}
}

func (r *statsRepository) Revenue(ctx context.Context, f domainRepo.StatsFilter) (*domainRepo.RevenueSummary, error) {
	var result domainRepo.RevenueSummary
	err := conn(ctx, r.db).Table("invoices AS i").
		Select("COALESCE(SUM(i.total), 0) AS revenue, COUNT(*) AS invoice_count").
		Scopes(validated(f)).
		Scan(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *statsRepository) ProductsSold(ctx context.Context, f domainRepo.StatsFilter) (int64, error) {
	var sold int64
	err := conn(ctx, r.db).Table("invoice_lines AS l").
		Joins("JOIN invoices AS i ON i.id = l.invoice_id").
		Select("COALESCE(SUM(l.quantity), 0)").
		Where("l.type = ?", enum.LineTypeProduct).
		Scopes(validated(f)).
		Scan(&sold).Error
	return sold, err
}

func (r *statsRepository) DistinctClients(ctx context.Context, f domainRepo.StatsFilter) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Table("invoices AS i").
		Select("COUNT(DISTINCT i.client_id)").
		Scopes(validated(f)).
		Scan(&count).Error
	return count, err
}

func (r *statsRepository) TopProducts(ctx context.Context, f domainRepo.StatsFilter, limit int, byQuantity bool) ([]domainRepo.TopProductResult, error) {
	var results []domainRepo.TopProductResult
	order := "revenue DESC, quantity_sold DESC"
	if byQuantity {
		order = "quantity_sold DESC, revenue DESC"
	}

	err := conn(ctx, r.db).Table("invoice_lines AS l").
		Joins("JOIN invoices AS i ON i.id = l.invoice_id").
		Joins("JOIN products AS p ON p.id = l.product_id").
		Select("p.id AS product_id, p.name AS product_name, COALESCE(SUM(l.quantity), 0) AS quantity_sold, COALESCE(SUM(l.total), 0) AS revenue").
		Where("l.type = ?", enum.LineTypeProduct).
		Scopes(validated(f)).
		Group("p.id, p.name").
		Order(order).
		Limit(limit).
		Scan(&results).Error
	return results, err
}

func (r *statsRepository) TopServices(ctx context.Context, f domainRepo.StatsFilter, limit int) ([]domainRepo.TopServiceResult, error) {
	var results []domainRepo.TopServiceResult
	err := conn(ctx, r.db).Table("invoice_lines AS l").
		Joins("JOIN invoices AS i ON i.id = l.invoice_id").
		Joins("JOIN services AS s ON s.id = l.service_id").
		Select("s.id AS service_id, s.name AS service_name, COUNT(*) AS times_sold, COALESCE(SUM(l.total), 0) AS revenue").
		Where("l.type = ?", enum.LineTypeService).
		Scopes(validated(f)).
		Group("s.id, s.name").
		Order("revenue DESC, times_sold DESC").
		Limit(limit).
		Scan(&results).Error
	return results, err
}

func (r *statsRepository) TopClients(ctx context.Context, f domainRepo.StatsFilter, limit int) ([]domainRepo.TopClientResult, error) {
	var results []domainRepo.TopClientResult
	err := conn(ctx, r.db).Table("invoices AS i").
		Joins("JOIN clients AS c ON c.id = i.client_id").
		Select("c.id AS client_id, c.first_name, c.last_name, COALESCE(SUM(i.total), 0) AS total_spent, COUNT(*) AS invoice_count").
		Scopes(validated(f)).
		Group("c.id, c.first_name, c.last_name").
		Order("total_spent DESC").
		Limit(limit).
		Scan(&results).Error
	return results, err
}

func (r *statsRepository) RevenueByUser(ctx context.Context, f domainRepo.StatsFilter) ([]domainRepo.UserRevenueResult, error) {
	var results []domainRepo.UserRevenueResult
	err := conn(ctx, r.db).Table("invoices AS i").
		Joins("JOIN users AS u ON u.id = i.user_id").
		Select("u.id AS user_id, u.first_name, u.last_name, COALESCE(SUM(i.total), 0) AS revenue, COUNT(*) AS invoice_count").
		Scopes(validated(f)).
		Group("u.id, u.first_name, u.last_name").
		Order("revenue DESC").
		Scan(&results).Error
	return results, err
}
