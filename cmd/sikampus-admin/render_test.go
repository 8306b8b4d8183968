package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sikampus-api/internal/models"
)

func init() {
	color.NoColor = true
}

func TestRenderModules(t *testing.T) {
	var buf bytes.Buffer
	renderModules(&buf, []models.ModuleAvailability{{
		Module:    models.Module{Code: "PRJ101", Title: "Capstone", Credits: 4, MaxSlots: 20, Status: models.ModuleStatusOpen},
		Occupied:  1,
		Available: 19,
		Fee:       800000,
	}})

	out := buf.String()
	assert.Contains(t, out, "Module Catalogue")
	assert.Contains(t, out, "PRJ101")
	assert.Contains(t, out, "800000")
	assert.Contains(t, out, "19")
}

func TestRenderModulesEmpty(t *testing.T) {
	var buf bytes.Buffer
	renderModules(&buf, nil)
	assert.Contains(t, buf.String(), "No modules found.")
}

func TestRenderRegistrations(t *testing.T) {
	var buf bytes.Buffer
	renderRegistrations(&buf, []models.RegistrationDetail{{
		Registration: models.Registration{
			ID:       "r1",
			RegDate:  time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC),
			TotalFee: 800000,
			Status:   models.RegistrationStatusRegistered,
		},
		ScholarCode: "S-001",
		ScholarName: "Ayu",
		ModuleCode:  "PRJ101",
		ModuleTitle: "Capstone",
	}}, &models.Pagination{Page: 1, PageSize: 20, TotalCount: 1})

	out := buf.String()
	assert.Contains(t, out, "S-001")
	assert.Contains(t, out, "Registered")
	assert.Contains(t, out, "page 1, 1 of 1 shown")
}

func TestRenderSummaryFlagsAnomaly(t *testing.T) {
	var buf bytes.Buffer
	renderSummary(&buf, &models.MetricsSummary{
		ActiveRegistrationCount: 5,
		TotalOpenCapacity:       3,
		OccupiedOpenCapacity:    5,
		AvailableOpenCapacity:   -2,
		PeriodStart:             time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		CapacityAnomaly:         true,
	})

	out := buf.String()
	assert.Contains(t, out, "Summary since 2026-02-01")
	assert.Contains(t, out, "-2")
	assert.Contains(t, out, "Warning")
}

func TestParsePeriod(t *testing.T) {
	start, err := parsePeriod("")
	require.NoError(t, err)
	assert.Nil(t, start)

	start, err = parsePeriod("2026-04-01")
	require.NoError(t, err)
	require.NotNil(t, start)
	assert.Equal(t, time.April, start.Month())

	_, err = parsePeriod("01-04-2026")
	assert.Error(t, err)
}
