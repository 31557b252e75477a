package models

import (
	"github.com/fatflowers/saasgen/pkg/types"
	"github.com/shopspring/decimal"
)

// Payment is one billing-cycle charge. Failed payments are kept with a zero amount.
type Payment struct {
	ID          string              `gorm:"column:payment_id;type:varchar(20);primaryKey" json:"payment_id"`
	CustomerID  string              `gorm:"column:customer_id;type:varchar(20);not null;index:idx_payments_customer_id" json:"customer_id"`
	PaymentDate types.Date          `gorm:"column:payment_date;type:date;not null;index:idx_payments_payment_date" json:"payment_date"`
	Amount      decimal.Decimal     `gorm:"column:amount;type:decimal(10,2);not null" json:"amount"`
	Status      types.PaymentStatus `gorm:"column:payment_status;type:varchar(20);not null" json:"payment_status"`
}

func (Payment) TableName() string {
	return "payments"
}

var paymentHeader = []string{"payment_id", "customer_id", "payment_date", "amount", "payment_status"}

func (Payment) CSVHeader() []string { return paymentHeader }

func (p *Payment) CSVRecord() []string {
	return []string{
		p.ID,
		p.CustomerID,
		p.PaymentDate.String(),
		p.Amount.StringFixed(2),
		string(p.Status),
	}
}
