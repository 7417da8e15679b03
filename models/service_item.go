package models

// ServiceItem is a bookable service or add-on line item.
type ServiceItem struct {
	ID       FlexString `json:"id"`
	Name     string     `json:"name"`
	Price    FlexString `json:"price"`              // as received; parsed leniently when totalled
	Duration string     `json:"duration,omitempty"` // free text, e.g. "2-3 hrs"
	Includes any        `json:"includes,omitempty"` // string or array depending on the upstream
}

// ServiceCatalog is what a provider offers for a given vehicle.
type ServiceCatalog struct {
	Services []ServiceItem `json:"services"`
	AddOns   []ServiceItem `json:"addons"`
}

