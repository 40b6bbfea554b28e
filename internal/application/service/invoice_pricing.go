package service

import (
	"fmt"

	"github.com/sangkips/beautypos-api/internal/domain/entity"
	"github.com/sangkips/beautypos-api/internal/domain/enum"
	"github.com/sangkips/beautypos-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

// amountScale is the number of decimal places kept on stored amounts.
const amountScale = 4

var minutesPerHour = decimal.NewFromInt(60)

// PricedService is the result of pricing one service line.
type PricedService struct {
	Total decimal.Decimal
	// Duration is the stored duration in minutes, nil for FLAT services.
	Duration *int
}

// PriceService computes the line total of a service for the requested duration.
//
//	FLAT:       unitPrice, any duration is ignored
//	PER_MINUTE: unitPrice * duration
//	PER_HOUR:   unitPrice * duration / 60
//
// Timed services require a duration of at least the service minimum.
func PriceService(svc *entity.Service, duration *int) (*PricedService, *apperror.AppError) {
	switch svc.BillingType {
	case enum.BillingFlat:
		return &PricedService{Total: svc.UnitPrice.Round(amountScale)}, nil

	case enum.BillingPerMinute, enum.BillingPerHour:
		if duration == nil {
			return nil, apperror.NewFieldError("duration", "duration is required for service "+svc.Name)
		}
		d := *duration
		if d < 1 {
			return nil, apperror.NewFieldError("duration", "duration must be at least 1 minute")
		}
		if svc.MinDuration != nil && d < *svc.MinDuration {
			return nil, apperror.NewFieldError("duration",
				fmt.Sprintf("duration for %s is below the minimum of %d minutes", svc.Name, *svc.MinDuration))
		}

		total := svc.UnitPrice.Mul(decimal.NewFromInt(int64(d)))
		if svc.BillingType == enum.BillingPerHour {
			total = total.Div(minutesPerHour)
		}
		return &PricedService{Total: total.Round(amountScale), Duration: &d}, nil
	}

	return nil, apperror.NewBadRequestError("service " + svc.Name + " has an unknown billing type")
}

// PriceProduct computes sellingPrice * quantity.
func PriceProduct(p *entity.Product, quantity int) decimal.Decimal {
	return p.SellingPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(amountScale)
}

// ComputeTax returns the tax amount and grand total for subtotal at taxRate percent.
func ComputeTax(subtotal, taxRate decimal.Decimal) (taxAmount, total decimal.Decimal) {
	taxAmount = subtotal.Mul(taxRate).Div(entity.Hundred).Round(amountScale)
	return taxAmount, subtotal.Add(taxAmount)
}

// ValidateTaxRate checks that rate is a percentage between 0 and 100.
func ValidateTaxRate(rate decimal.Decimal) *apperror.AppError {
	if rate.IsNegative() || rate.GreaterThan(entity.Hundred) {
		return apperror.NewFieldError("taxRate", "tax rate must be between 0 and 100")
	}
	return nil
}
