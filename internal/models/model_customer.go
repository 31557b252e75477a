package models

import (
	"strconv"

	"github.com/fatflowers/saasgen/pkg/types"
)

// Customer is a synthetic SaaS customer. IsActive is derived from the
// customer's subscriptions and is only set by the status reconciler.
type Customer struct {
	ID                 string        `gorm:"column:customer_id;type:varchar(20);primaryKey" json:"customer_id"`
	SignupDate         types.Date    `gorm:"column:signup_date;type:date;not null;index:idx_customers_signup_date" json:"signup_date"`
	Segment            types.Segment `gorm:"column:segment;type:varchar(20);not null;index:idx_customers_segment" json:"segment"`
	Country            string        `gorm:"column:country;type:varchar(5);not null" json:"country"`
	AcquisitionChannel string        `gorm:"column:acquisition_channel;type:varchar(50);not null" json:"acquisition_channel"`
	IsActive           bool          `gorm:"column:is_active;not null" json:"is_active"`
}

func (Customer) TableName() string {
	return "customers"
}

var customerHeader = []string{"customer_id", "signup_date", "segment", "country", "acquisition_channel", "is_active"}

func (Customer) CSVHeader() []string { return customerHeader }

func (c *Customer) CSVRecord() []string {
	return []string{
		c.ID,
		c.SignupDate.String(),
		string(c.Segment),
		c.Country,
		c.AcquisitionChannel,
		strconv.FormatBool(c.IsActive),
	}
}
