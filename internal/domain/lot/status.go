package lot

// Status represents the lifecycle status of a lot
type Status string

const (
	StatusDraft    Status = "DRAFT"
	StatusPending  Status = "PENDING"
	StatusAccepted Status = "ACCEPTED"
	StatusRejected Status = "REJECTED"
	StatusFrozen   Status = "FROZEN"
	StatusDeleted  Status = "DELETED"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPending, StatusAccepted, StatusRejected, StatusFrozen, StatusDeleted:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true for statuses a lot can never leave
func (s Status) IsTerminal() bool {
	return s == StatusFrozen || s == StatusDeleted
}

// CanTransitionTo checks if the status can transition to the target status
func (s Status) CanTransitionTo(target Status) bool {
	if s.IsTerminal() {
		return false
	}
	if target == StatusDeleted {
		return true
	}
	switch s {
	case StatusDraft:
		return target == StatusPending
	case StatusPending:
		return target == StatusAccepted || target == StatusRejected || target == StatusFrozen
	case StatusAccepted:
		return target == StatusPending || target == StatusFrozen
	case StatusRejected:
		return target == StatusPending
	}
	return false
}

// CorrectionStatus represents the fix-request state of a lot, tracked
// independently of the lifecycle status
type CorrectionStatus string

const (
	CorrectionNoProblem    CorrectionStatus = "NO_PROBLEM"
	CorrectionInCorrection CorrectionStatus = "IN_CORRECTION"
	CorrectionFixed        CorrectionStatus = "FIXED"
)

// IsValid checks if the correction status is a member of the closed set
func (s CorrectionStatus) IsValid() bool {
	switch s {
	case CorrectionNoProblem, CorrectionInCorrection, CorrectionFixed:
		return true
	}
	return false
}

// String returns the string representation of CorrectionStatus
func (s CorrectionStatus) String() string {
	return string(s)
}

// DeliveryType is the acceptance mode chosen by the client. It is meaningful
// only while the lot is Accepted; any other status reads as Unknown.
type DeliveryType string

const (
	DeliveryUnknown               DeliveryType = "UNKNOWN"
	DeliveryReleaseForConsumption DeliveryType = "RFC"
	DeliveryStock                 DeliveryType = "STOCK"
	DeliveryBlending              DeliveryType = "BLENDING"
	DeliveryExport                DeliveryType = "EXPORT"
	DeliveryTrading               DeliveryType = "TRADING"
	DeliveryProcessing            DeliveryType = "PROCESSING"
	DeliveryDirect                DeliveryType = "DIRECT"
	DeliveryFlushed               DeliveryType = "FLUSHED"
	DeliveryConsumption           DeliveryType = "CONSUMPTION"
)

// IsValid checks if the delivery type is a member of the closed set
func (d DeliveryType) IsValid() bool {
	switch d {
	case DeliveryUnknown, DeliveryReleaseForConsumption, DeliveryStock, DeliveryBlending,
		DeliveryExport, DeliveryTrading, DeliveryProcessing, DeliveryDirect,
		DeliveryFlushed, DeliveryConsumption:
		return true
	}
	return false
}

// String returns the string representation of DeliveryType
func (d DeliveryType) String() string {
	return string(d)
}

// IsAcceptanceMode returns true for delivery types a client may choose when
// accepting a pending lot
func (d DeliveryType) IsAcceptanceMode() bool {
	switch d {
	case DeliveryReleaseForConsumption, DeliveryStock, DeliveryBlending,
		DeliveryExport, DeliveryTrading, DeliveryProcessing, DeliveryDirect,
		DeliveryConsumption:
		return true
	}
	return false
}

// DerivesStock returns true for acceptance modes that create a custody
// position from the accepted lot
func (d DeliveryType) DerivesStock() bool {
	return d == DeliveryStock || d == DeliveryTrading || d == DeliveryProcessing
}
