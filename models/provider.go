package models

const (
	ProviderGarage  = "garage"
	ProviderWashing = "washing"
)

// Provider is a garage or washing center as listed to users.
type Provider struct {
	ID             FlexString `json:"id"`
	Kind           string     `json:"kind"` // "garage" or "washing"
	Name           string     `json:"name"`
	Address        string     `json:"address"`
	City           string     `json:"city"`
	Latitude       float64    `json:"latitude"`
	Longitude      float64    `json:"longitude"`
	Rating         float64    `json:"rating"`
	Distance       float64    `json:"distance"` // km from the searched position
	Services       []string   `json:"services,omitempty"`
	Reviews        []Review   `json:"reviews,omitempty"`
	OperatingHours string     `json:"operatingHours,omitempty"`
	ImageURL       string     `json:"imageUrl,omitempty"`
}

// ProviderSearch filters a provider listing.
type ProviderSearch struct {
	City      string  `form:"city" json:"city"`
	Latitude  float64 `form:"lat" json:"lat"`
	Longitude float64 `form:"lng" json:"lng"`
	Filter    string  `form:"filter" json:"filter"`
}

// City is a serviceable city.
type City struct {
	ID        FlexString `json:"id,omitempty"`
	Name      string     `json:"name"`
	State     string     `json:"state,omitempty"`
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
}

// Offer is a promotional banner on the landing page.
type Offer struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Code        string `json:"code,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

// LandingContent is the per-city landing page payload.
type LandingContent struct {
	City            string     `json:"city"`
	Headline        string     `json:"headline"`
	Offers          []Offer    `json:"offers"`
	PopularServices []string   `json:"popularServices"`
	FeaturedGarages []Provider `json:"featuredGarages"`
}
