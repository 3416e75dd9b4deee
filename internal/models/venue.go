package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SportType string

const (
	SportBadminton  SportType = "badminton"
	SportTennis     SportType = "tennis"
	SportFutsal     SportType = "futsal"
	SportBasketball SportType = "basketball"
	SportVolleyball SportType = "volleyball"
	SportPickleball SportType = "pickleball"
)

// Venue is read-mostly inside the booking core: the orchestrator only consumes
// the rate, currency, active flag and owner id. Writes go through the venue
// management surface.
type Venue struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OwnerID     primitive.ObjectID `json:"owner_id" bson:"owner_id" validate:"required"`
	Name        string             `json:"name" bson:"name" validate:"required"`
	Description string             `json:"description" bson:"description"`
	Sport       SportType          `json:"sport" bson:"sport" validate:"required"`
	Address     string             `json:"address" bson:"address"`
	City        string             `json:"city" bson:"city"`
	HourlyRate  float64            `json:"hourly_rate" bson:"hourly_rate" validate:"required,gt=0"`
	Currency    string             `json:"currency" bson:"currency" default:"USD"`
	OpenHour    int                `json:"open_hour" bson:"open_hour" default:"6"`
	CloseHour   int                `json:"close_hour" bson:"close_hour" default:"23"`
	Capacity    int                `json:"capacity" bson:"capacity"`
	IsActive    bool               `json:"is_active" bson:"is_active" default:"true"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}
