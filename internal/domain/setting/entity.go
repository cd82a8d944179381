package setting

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Value type tags stored alongside each settings row.
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeJSON    = "json"
)

// Keys of the time window settings.
const (
	KeyCheckInStartTime     = "check_in_start_time"
	KeyCheckInEndTime       = "check_in_end_time"
	KeyCheckOutStartTime    = "check_out_start_time"
	KeyCheckOutEndTime      = "check_out_end_time"
	KeyWorkingHoursStart    = "working_hours_start"
	KeyWorkingHoursEnd      = "working_hours_end"
	KeyLateToleranceMinutes = "late_tolerance_minutes"
	KeyAutoCheckoutEnabled  = "auto_checkout_enabled"
	KeyAutoCheckoutTime     = "auto_checkout_time"
)

// Setting is one raw row of the key/value settings store.
type Setting struct {
	Key         string
	Value       string
	Type        string
	Description *string
	UpdatedAt   time.Time
}

// Text returns the value of a string-tagged row.
func (s Setting) Text() (string, error) {
	if s.Type != TypeString {
		return "", fmt.Errorf("%w: %s is %q, want %q", ErrInvalidSettingValue, s.Key, s.Type, TypeString)
	}
	return s.Value, nil
}

// Number returns the value of a number-tagged row.
func (s Setting) Number() (float64, error) {
	if s.Type != TypeNumber {
		return 0, fmt.Errorf("%w: %s is %q, want %q", ErrInvalidSettingValue, s.Key, s.Type, TypeNumber)
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s.Value), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidSettingValue, s.Key, err)
	}
	return n, nil
}

// Bool returns the value of a boolean-tagged row.
func (s Setting) Bool() (bool, error) {
	if s.Type != TypeBoolean {
		return false, fmt.Errorf("%w: %s is %q, want %q", ErrInvalidSettingValue, s.Key, s.Type, TypeBoolean)
	}
	b, err := strconv.ParseBool(strings.TrimSpace(s.Value))
	if err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrInvalidSettingValue, s.Key, err)
	}
	return b, nil
}

// DecodeJSON unmarshals a json-tagged row into v.
func (s Setting) DecodeJSON(v any) error {
	if s.Type != TypeJSON {
		return fmt.Errorf("%w: %s is %q, want %q", ErrInvalidSettingValue, s.Key, s.Type, TypeJSON)
	}
	if err := json.Unmarshal([]byte(s.Value), v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidSettingValue, s.Key, err)
	}
	return nil
}

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// ParseTimeOfDay accepts HH:MM or HH:MM:SS.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}, nil
		}
	}
	return TimeOfDay{}, fmt.Errorf("%w: %q is not a time of day", ErrInvalidSettingValue, s)
}

// Minutes returns minutes since midnight, dropping seconds.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

func (t TimeOfDay) String() string {
	if t.Second != 0 {
		return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
	}
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// TimeWindowConfig is the typed view over the settings rows.
type TimeWindowConfig struct {
	CheckInStart         TimeOfDay
	CheckInEnd           TimeOfDay
	CheckOutStart        TimeOfDay
	CheckOutEnd          TimeOfDay
	WorkingHoursStart    TimeOfDay
	WorkingHoursEnd      TimeOfDay
	LateToleranceMinutes int
	AutoCheckoutEnabled  bool
	AutoCheckoutTime     TimeOfDay
}

// DefaultTimeWindowConfig is used for any key missing from the store.
func DefaultTimeWindowConfig() TimeWindowConfig {
	return TimeWindowConfig{
		CheckInStart:         TimeOfDay{Hour: 6},
		CheckInEnd:           TimeOfDay{Hour: 10},
		CheckOutStart:        TimeOfDay{Hour: 16},
		CheckOutEnd:          TimeOfDay{Hour: 23},
		WorkingHoursStart:    TimeOfDay{Hour: 8},
		WorkingHoursEnd:      TimeOfDay{Hour: 16},
		LateToleranceMinutes: 15,
		AutoCheckoutEnabled:  false,
		AutoCheckoutTime:     TimeOfDay{Hour: 23},
	}
}

// StandardWorkMinutes is the length of the configured working day.
func (c TimeWindowConfig) StandardWorkMinutes() int {
	return c.WorkingHoursEnd.Minutes() - c.WorkingHoursStart.Minutes()
}

// ParseTimeWindowConfig assembles a config from raw rows, applying defaults
// for absent keys. A present but unparsable value is an error.
func ParseTimeWindowConfig(rows []Setting) (TimeWindowConfig, error) {
	cfg := DefaultTimeWindowConfig()

	for _, row := range rows {
		var err error
		switch row.Key {
		case KeyCheckInStartTime:
			cfg.CheckInStart, err = parseTimeRow(row)
		case KeyCheckInEndTime:
			cfg.CheckInEnd, err = parseTimeRow(row)
		case KeyCheckOutStartTime:
			cfg.CheckOutStart, err = parseTimeRow(row)
		case KeyCheckOutEndTime:
			cfg.CheckOutEnd, err = parseTimeRow(row)
		case KeyWorkingHoursStart:
			cfg.WorkingHoursStart, err = parseTimeRow(row)
		case KeyWorkingHoursEnd:
			cfg.WorkingHoursEnd, err = parseTimeRow(row)
		case KeyLateToleranceMinutes:
			var n float64
			n, err = row.Number()
			if err == nil && n < 0 {
				err = fmt.Errorf("%w: %s must not be negative", ErrInvalidSettingValue, row.Key)
			}
			cfg.LateToleranceMinutes = int(n)
		case KeyAutoCheckoutEnabled:
			cfg.AutoCheckoutEnabled, err = row.Bool()
		case KeyAutoCheckoutTime:
			cfg.AutoCheckoutTime, err = parseTimeRow(row)
		}
		if err != nil {
			return TimeWindowConfig{}, err
		}
	}

	return cfg, nil
}

func parseTimeRow(row Setting) (TimeOfDay, error) {
	s, err := row.Text()
	if err != nil {
		return TimeOfDay{}, err
	}
	t, err := ParseTimeOfDay(s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%s: %w", row.Key, err)
	}
	return t, nil
}

// Rows renders the config back into tagged settings rows.
func (c TimeWindowConfig) Rows() []Setting {
	return []Setting{
		{Key: KeyCheckInStartTime, Value: c.CheckInStart.String(), Type: TypeString},
		{Key: KeyCheckInEndTime, Value: c.CheckInEnd.String(), Type: TypeString},
		{Key: KeyCheckOutStartTime, Value: c.CheckOutStart.String(), Type: TypeString},
		{Key: KeyCheckOutEndTime, Value: c.CheckOutEnd.String(), Type: TypeString},
		{Key: KeyWorkingHoursStart, Value: c.WorkingHoursStart.String(), Type: TypeString},
		{Key: KeyWorkingHoursEnd, Value: c.WorkingHoursEnd.String(), Type: TypeString},
		{Key: KeyLateToleranceMinutes, Value: strconv.Itoa(c.LateToleranceMinutes), Type: TypeNumber},
		{Key: KeyAutoCheckoutEnabled, Value: strconv.FormatBool(c.AutoCheckoutEnabled), Type: TypeBoolean},
		{Key: KeyAutoCheckoutTime, Value: c.AutoCheckoutTime.String(), Type: TypeString},
	}
}
