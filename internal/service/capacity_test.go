package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/sikampus-api/internal/models"
	appErrors "github.com/noah-isme/sikampus-api/pkg/errors"
)

func TestEvaluateCapacity(t *testing.T) {
	module := models.Module{Code: "PRJ101", MaxSlots: 20, Status: models.ModuleStatusOpen}

	availability := EvaluateCapacity(module, 1)
	assert.Equal(t, 1, availability.Occupied)
	assert.Equal(t, 19, availability.Available)
	assert.True(t, Eligible(availability))
	assert.NoError(t, CheckEligibility(availability))
}

func TestCheckEligibility(t *testing.T) {
	cases := []struct {
		name     string
		status   models.ModuleStatus
		occupied int
		want     *appErrors.Error
	}{
		{name: "open with room", status: models.ModuleStatusOpen, occupied: 2},
		{name: "open and full", status: models.ModuleStatusOpen, occupied: 3, want: appErrors.ErrModuleFull},
		{name: "over capacity", status: models.ModuleStatusOpen, occupied: 5, want: appErrors.ErrModuleFull},
		{name: "closed with room", status: models.ModuleStatusClosed, occupied: 0, want: appErrors.ErrModuleClosed},
		{name: "closed and full", status: models.ModuleStatusClosed, occupied: 3, want: appErrors.ErrModuleClosed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			availability := EvaluateCapacity(models.Module{Code: "X", MaxSlots: 3, Status: tc.status}, tc.occupied)
			err := CheckEligibility(availability)
			if tc.want == nil {
				assert.NoError(t, err)
				assert.True(t, Eligible(availability))
				return
			}
			assert.True(t, errors.Is(err, tc.want))
			assert.False(t, Eligible(availability))
		})
	}
}

func TestFeeCalculator(t *testing.T) {
	calc := NewFeeCalculator(0)
	assert.Equal(t, int64(200000), calc.Rate())
	assert.Equal(t, int64(800000), calc.Fee(4))

	for credits := 1; credits <= 10; credits++ {
		assert.Equal(t, 2*calc.Fee(credits), calc.Fee(2*credits))
	}

	custom := NewFeeCalculator(150000)
	assert.Equal(t, int64(450000), custom.Fee(3))
}
