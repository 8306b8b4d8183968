package models

import "time"

// MetricsSummary aggregates registration and capacity figures for staff.
type MetricsSummary struct {
	ActiveRegistrationCount int       `json:"active_registration_count"`
	TotalOpenCapacity       int       `json:"total_open_capacity"`
	OccupiedOpenCapacity    int       `json:"occupied_open_capacity"`
	AvailableOpenCapacity   int       `json:"available_open_capacity"`
	PeriodFeeProjection     int64     `json:"period_fee_projection"`
	PeriodStart             time.Time `json:"period_start"`
	CapacityAnomaly         bool      `json:"capacity_anomaly"`
}
