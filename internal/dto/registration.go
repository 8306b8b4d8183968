package dto

import "github.com/noah-isme/sikampus-api/internal/models"

// RegistrationReceipt is returned to a scholar after a successful registration.
type RegistrationReceipt struct {
	Registration models.Registration `json:"registration"`
	ModuleCode   string              `json:"module_code"`
	ModuleTitle  string              `json:"module_title"`
	Occupied     int                 `json:"occupied"`
	Available    int                 `json:"available"`
}
