package model

// Device is a flattened inventory device row (devices joined with their
// location). Pointer fields are NULLable in the source schema.
type Device struct {
	ID           string   `json:"id" db:"id"`
	Name         string   `json:"name" db:"name"`
	Status       *string  `json:"status,omitempty" db:"status"`
	Role         *string  `json:"role,omitempty" db:"role"`
	PlatformName *string  `json:"platform_name,omitempty" db:"platform_name"`
	ModelName    *string  `json:"model_name,omitempty" db:"model_name"`
	PrimaryIP    *string  `json:"primary_ip,omitempty" db:"primary_ip"`
	LocationName *string  `json:"location_name,omitempty" db:"location_name"`
	CountryCode  *string  `json:"country_code,omitempty" db:"country_code"`
	Latitude     *float64 `json:"latitude,omitempty" db:"latitude"`
	Longitude    *float64 `json:"longitude,omitempty" db:"longitude"`
}
