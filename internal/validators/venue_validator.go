package validators

type CreateVenueRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=100"`
	Description string  `json:"description" validate:"omitempty,max=1000"`
	Sport       string  `json:"sport" validate:"required,oneof=badminton tennis futsal basketball volleyball pickleball"`
	Address     string  `json:"address" validate:"required,min=5,max=255"`
	City        string  `json:"city" validate:"required,max=100"`
	HourlyRate  float64 `json:"hourly_rate" validate:"required,gt=0"`
	Currency    string  `json:"currency" validate:"omitempty,currency_code"`
	OpenHour    int     `json:"open_hour" validate:"min=0,max=23"`
	CloseHour   int     `json:"close_hour" validate:"min=0,max=24"`
	Capacity    int     `json:"capacity" validate:"required,min=1,max=500"`
}

type UpdateVenueRequest struct {
	Name        *string  `json:"name" validate:"omitempty,min=2,max=100"`
	Description *string  `json:"description" validate:"omitempty,max=1000"`
	Address     *string  `json:"address" validate:"omitempty,min=5,max=255"`
	City        *string  `json:"city" validate:"omitempty,max=100"`
	HourlyRate  *float64 `json:"hourly_rate" validate:"omitempty,gt=0"`
	OpenHour    *int     `json:"open_hour" validate:"omitempty,min=0,max=23"`
	CloseHour   *int     `json:"close_hour" validate:"omitempty,min=0,max=24"`
	Capacity    *int     `json:"capacity" validate:"omitempty,min=1,max=500"`
	IsActive    *bool    `json:"is_active"`
}

func ValidateCreateVenue(req *CreateVenueRequest) ValidationErrors {
	errors := ValidateStruct(req)

	if req.CloseHour > 0 && req.CloseHour <= req.OpenHour {
		errors = append(errors, ValidationError{
			Field:   "close_hour",
			Message: "Closing hour must be after opening hour",
		})
	}

	return errors
}
