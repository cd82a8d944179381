package setting

import (
	"errors"
	"testing"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeWindowConfig_EmptyStoreUsesDefaults(t *testing.T) {
	cfg, err := ParseTimeWindowConfig(nil)

	require.NoError(t, err)
	assert.Equal(t, DefaultTimeWindowConfig(), cfg)
}

func TestParseTimeWindowConfig_OverridesPresentKeys(t *testing.T) {
	rows := []Setting{
		{Key: KeyCheckInStartTime, Value: "06:00", Type: TypeString},
		{Key: KeyCheckInEndTime, Value: "08:30", Type: TypeString},
		{Key: KeyLateToleranceMinutes, Value: "20", Type: TypeNumber},
		{Key: KeyAutoCheckoutEnabled, Value: "true", Type: TypeBoolean},
		{Key: KeyAutoCheckoutTime, Value: "21:15:30", Type: TypeString},
		{Key: "unrelated_key", Value: "whatever", Type: TypeString},
	}

	cfg, err := ParseTimeWindowConfig(rows)

	require.NoError(t, err)
	assert.Equal(t, 6*60, cfg.CheckInStart.Minutes())
	assert.Equal(t, 8*60+30, cfg.CheckInEnd.Minutes())
	assert.Equal(t, 20, cfg.LateToleranceMinutes)
	assert.True(t, cfg.AutoCheckoutEnabled)
	assert.Equal(t, TimeOfDay{Hour: 21, Minute: 15, Second: 30}, cfg.AutoCheckoutTime)
	// untouched keys keep their defaults
	assert.Equal(t, DefaultTimeWindowConfig().WorkingHoursStart, cfg.WorkingHoursStart)
}

func TestParseTimeWindowConfig_CorruptValues(t *testing.T) {
	tests := []struct {
		name string
		row  Setting
	}{
		{"bad time", Setting{Key: KeyCheckInStartTime, Value: "25:99", Type: TypeString}},
		{"bad number", Setting{Key: KeyLateToleranceMinutes, Value: "fifteen", Type: TypeNumber}},
		{"negative tolerance", Setting{Key: KeyLateToleranceMinutes, Value: "-5", Type: TypeNumber}},
		{"bad boolean", Setting{Key: KeyAutoCheckoutEnabled, Value: "maybe", Type: TypeBoolean}},
		{"wrong type tag", Setting{Key: KeyLateToleranceMinutes, Value: "15", Type: TypeString}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTimeWindowConfig([]Setting{tt.row})

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidSettingValue))
		})
	}
}

func TestTimeWindowConfig_RowsRoundTrip(t *testing.T) {
	cfg := DefaultTimeWindowConfig()
	cfg.AutoCheckoutEnabled = true
	cfg.AutoCheckoutTime = TimeOfDay{Hour: 22, Minute: 45}

	parsed, err := ParseTimeWindowConfig(cfg.Rows())

	require.NoError(t, err)
	assert.Equal(t, cfg, parsed)
}

func TestSetting_DecodeJSON(t *testing.T) {
	var holidays []string
	row := Setting{Key: "holidays", Value: `["2025-08-17","2025-12-25"]`, Type: TypeJSON}

	require.NoError(t, row.DecodeJSON(&holidays))
	assert.Equal(t, []string{"2025-08-17", "2025-12-25"}, holidays)

	err := Setting{Key: "holidays", Value: "[", Type: TypeJSON}.DecodeJSON(&holidays)
	assert.ErrorIs(t, err, ErrInvalidSettingValue)
}

func TestUpdateTimeWindowRequest_ApplyTo(t *testing.T) {
	str := func(s string) *string { return &s }

	t.Run("merges partial update", func(t *testing.T) {
		req := UpdateTimeWindowRequest{CheckInEndTime: str("09:00")}

		merged, err := req.ApplyTo(DefaultTimeWindowConfig())

		require.NoError(t, err)
		assert.Equal(t, 9*60, merged.CheckInEnd.Minutes())
		assert.Equal(t, 6*60, merged.CheckInStart.Minutes())
	})

	t.Run("rejects start after stored end", func(t *testing.T) {
		req := UpdateTimeWindowRequest{CheckInStartTime: str("11:00")}

		_, err := req.ApplyTo(DefaultTimeWindowConfig())

		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Contains(t, verrs.ToMap(), KeyCheckInEndTime)
	})

	t.Run("rejects equal start and end", func(t *testing.T) {
		req := UpdateTimeWindowRequest{WorkingHoursStart: str("16:00")}

		_, err := req.ApplyTo(DefaultTimeWindowConfig())

		require.Error(t, err)
	})

	t.Run("rejects malformed time", func(t *testing.T) {
		req := UpdateTimeWindowRequest{AutoCheckoutTime: str("late evening")}

		_, err := req.ApplyTo(DefaultTimeWindowConfig())

		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Contains(t, verrs.ToMap(), KeyAutoCheckoutTime)
	})
}
