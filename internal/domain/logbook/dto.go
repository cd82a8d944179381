package logbook

import (
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

type CreateLogbookRequest struct {
	Date        *string `json:"date,omitempty"` // YYYY-MM-DD, defaults to today
	Activity    string  `json:"activity"`
	Description *string `json:"description,omitempty"`
}

func (r *CreateLogbookRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Activity) {
		errs = append(errs, validator.ValidationError{
			Field:   "activity",
			Message: "activity is required",
		})
	} else if len(r.Activity) > 500 {
		errs = append(errs, validator.ValidationError{
			Field:   "activity",
			Message: "activity must not exceed 500 characters",
		})
	}

	if r.Date != nil && *r.Date != "" {
		if _, valid := validator.IsValidDate(*r.Date); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "date",
				Message: "date must be in YYYY-MM-DD format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type LogbookResponse struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	Date        string  `json:"date"`
	Activity    string  `json:"activity"`
	Description *string `json:"description,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

type LogbookFilter struct {
	StartDate *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate   *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Page      int     `json:"page"`
	Limit     int     `json:"limit"`
}

func (f *LogbookFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1
	}

	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	for field, value := range map[string]*string{"start_date": f.StartDate, "end_date": f.EndDate} {
		if value != nil && *value != "" {
			if _, valid := validator.IsValidDate(*value); !valid {
				errs = append(errs, validator.ValidationError{
					Field:   field,
					Message: field + " must be in YYYY-MM-DD format",
				})
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ListLogbookResponse struct {
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
	Entries    []LogbookResponse `json:"entries"`
}
