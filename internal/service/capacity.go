package service

import (
	"fmt"

	"github.com/noah-isme/sikampus-api/internal/models"
	appErrors "github.com/noah-isme/sikampus-api/pkg/errors"
)

// EvaluateCapacity derives the availability view of a module from its count of
// Registered registrations. Fee is left for the caller to fill.
func EvaluateCapacity(module models.Module, occupied int) models.ModuleAvailability {
	return models.ModuleAvailability{
		Module:    module,
		Occupied:  occupied,
		Available: module.MaxSlots - occupied,
	}
}

// Eligible reports whether the module accepts another registration.
func Eligible(availability models.ModuleAvailability) bool {
	return availability.Module.Status == models.ModuleStatusOpen && availability.Available > 0
}

// CheckEligibility returns MODULE_CLOSED for a module that is not Open, then
// MODULE_FULL when no slot remains.
func CheckEligibility(availability models.ModuleAvailability) error {
	if availability.Module.Status != models.ModuleStatusOpen {
		return appErrors.Clone(appErrors.ErrModuleClosed, fmt.Sprintf("module %s is closed for registration", availability.Module.Code))
	}
	if availability.Available <= 0 {
		return appErrors.Clone(appErrors.ErrModuleFull, fmt.Sprintf("module %s has no available slots", availability.Module.Code))
	}
	return nil
}
