package models

import "github.com/shopspring/decimal"

// Cost is the operating cost of one calendar month.
type Cost struct {
	// Month is formatted as YYYY-MM.
	Month         string          `gorm:"column:month;type:varchar(7);primaryKey" json:"month"`
	InfraCost     decimal.Decimal `gorm:"column:infra_cost;type:decimal(10,2);not null" json:"infra_cost"`
	MarketingCost decimal.Decimal `gorm:"column:marketing_cost;type:decimal(10,2);not null" json:"marketing_cost"`
	SupportCost   decimal.Decimal `gorm:"column:support_cost;type:decimal(10,2);not null" json:"support_cost"`
	// MarketingBase is the marketing draw before the seasonal multiplier.
	// It is not persisted.
	MarketingBase decimal.Decimal `gorm:"-" json:"-"`
}

func (Cost) TableName() string {
	return "costs"
}

func (c *Cost) Total() decimal.Decimal {
	return c.InfraCost.Add(c.MarketingCost).Add(c.SupportCost)
}

var costHeader = []string{"month", "infra_cost", "marketing_cost", "support_cost"}

func (Cost) CSVHeader() []string { return costHeader }

func (c *Cost) CSVRecord() []string {
	return []string{
		c.Month,
		c.InfraCost.StringFixed(2),
		c.MarketingCost.StringFixed(2),
		c.SupportCost.StringFixed(2),
	}
}
