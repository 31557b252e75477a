package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusinessEnums_Valid(t *testing.T) {
	for _, s := range []Segment{SegmentSMB, SegmentMidMarket, SegmentEnterprise} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, Segment("Startup").Valid())
	assert.False(t, Segment("").Valid())

	for _, p := range []PlanType{PlanTypeBasic, PlanTypePro, PlanTypeEnterprise} {
		assert.True(t, p.Valid(), p)
	}
	assert.False(t, PlanType("Platinum").Valid())
	assert.False(t, PaymentStatus("Pending").Valid())
}
