package services

import (
	"errors"
	"fmt"

	"waste-wizard-backend/internal/models"
)

const (
	// LockedBinNumber is the bin whose waste type is fixed once created
	LockedBinNumber = 1

	// ReconfigureThreshold is the fill level at or above which a bin keeps its waste type
	ReconfigureThreshold = 5.00
)

// Decision is the outcome of the admission rule for one bin
type Decision int

const (
	DecisionReject Decision = iota
	DecisionUpdateCapacityOnly
	DecisionInsertOrUpdateFull
	DecisionInsertNew
)

func (d Decision) String() string {
	switch d {
	case DecisionUpdateCapacityOnly:
		return "UPDATE_CAPACITY_ONLY"
	case DecisionInsertOrUpdateFull:
		return "INSERT_OR_UPDATE_FULL"
	case DecisionInsertNew:
		return "INSERT_NEW"
	default:
		return "REJECT"
	}
}

// Decide applies the admission rule to a requested bin given its stored row.
// current is nil when the bin has no row yet.
func Decide(binNumber int, current *models.BinConfig) Decision {
	if binNumber == LockedBinNumber {
		if current != nil {
			return DecisionUpdateCapacityOnly
		}
		return DecisionInsertNew
	}

	if current == nil || current.Capacity < ReconfigureThreshold {
		return DecisionInsertOrUpdateFull
	}
	return DecisionReject
}

var (
	errInvalidBinNumber = errors.New("bin_number must be a positive integer")
	errMissingWasteType = errors.New("waste_type is required")
	errNegativeCapacity = errors.New("capacity must not be negative")
)

// ValidateBinConfigRequest checks a batch element that may write its waste type
func ValidateBinConfigRequest(req models.BinConfigRequest) error {
	if err := ValidateCapacityUpdate(req); err != nil {
		return err
	}
	if req.WasteType == "" {
		return errMissingWasteType
	}
	if !models.IsKnownWasteType(req.WasteType) {
		return fmt.Errorf("unknown waste_type %q", req.WasteType)
	}
	return nil
}

// ValidateCapacityUpdate checks an element whose submitted waste type is
// ignored, i.e. bin 1 once it exists
func ValidateCapacityUpdate(req models.BinConfigRequest) error {
	if req.BinNumber <= 0 {
		return errInvalidBinNumber
	}
	if req.RequestedCapacity() < 0 {
		return errNegativeCapacity
	}
	return nil
}
