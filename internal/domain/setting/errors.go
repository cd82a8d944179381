package setting

import "errors"

// Setting domain errors
var (
	ErrInvalidSettingValue = errors.New("invalid setting value")
	ErrSettingNotFound     = errors.New("setting not found")
)
