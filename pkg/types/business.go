package types

type Segment string

const (
	SegmentSMB        Segment = "SMB"
	SegmentMidMarket  Segment = "Mid-Market"
	SegmentEnterprise Segment = "Enterprise"
)

func (s Segment) Valid() bool {
	switch s {
	case SegmentSMB, SegmentMidMarket, SegmentEnterprise:
		return true
	}
	return false
}

type PlanType string

const (
	PlanTypeBasic      PlanType = "Basic"
	PlanTypePro        PlanType = "Pro"
	PlanTypeEnterprise PlanType = "Enterprise"
)

func (p PlanType) Valid() bool {
	switch p {
	case PlanTypeBasic, PlanTypePro, PlanTypeEnterprise:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusSuccess PaymentStatus = "Success"
	PaymentStatusFailed  PaymentStatus = "Failed"
)

func (s PaymentStatus) Valid() bool {
	return s == PaymentStatusSuccess || s == PaymentStatusFailed
}

type LoadMode string

const (
	// LoadModeReplace drops and recreates the tables before inserting.
	LoadModeReplace LoadMode = "replace"
	// LoadModeUpsert keeps existing tables and updates rows on primary key conflict.
	LoadModeUpsert LoadMode = "upsert"
)
