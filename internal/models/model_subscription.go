package models

import (
	"github.com/fatflowers/saasgen/pkg/types"
	"github.com/shopspring/decimal"
)

// Subscription is the single subscription owned by a customer.
// EndDate is absent while the subscription is still open at the window end.
type Subscription struct {
	ID           string          `gorm:"column:subscription_id;type:varchar(20);primaryKey" json:"subscription_id"`
	CustomerID   string          `gorm:"column:customer_id;type:varchar(20);not null;index:idx_subscriptions_customer_id" json:"customer_id"`
	PlanType     types.PlanType  `gorm:"column:plan_type;type:varchar(20);not null" json:"plan_type"`
	StartDate    types.Date      `gorm:"column:start_date;type:date;not null;index:idx_subscriptions_start_date" json:"start_date"`
	EndDate      types.NullDate  `gorm:"column:end_date;type:date;index:idx_subscriptions_end_date" json:"end_date"`
	MonthlyPrice decimal.Decimal `gorm:"column:monthly_price;type:decimal(10,2);not null" json:"monthly_price"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

// Open reports whether the subscription has no end date.
func (s *Subscription) Open() bool {
	return s != nil && !s.EndDate.Valid()
}

var subscriptionHeader = []string{"subscription_id", "customer_id", "plan_type", "start_date", "end_date", "monthly_price"}

func (Subscription) CSVHeader() []string { return subscriptionHeader }

func (s *Subscription) CSVRecord() []string {
	return []string{
		s.ID,
		s.CustomerID,
		string(s.PlanType),
		s.StartDate.String(),
		s.EndDate.String(),
		s.MonthlyPrice.StringFixed(2),
	}
}
