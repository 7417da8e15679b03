package models

// Vehicle is a subscriber's two-wheeler.
type Vehicle struct {
	ID                 FlexString `bson:"id" json:"id"`
	Brand              string     `bson:"brand" json:"brand"`
	Model              string     `bson:"model" json:"model"`
	CC                 FlexString `bson:"cc" json:"cc"` // engine-capacity class, selects applicable services
	Year               FlexString `bson:"year,omitempty" json:"year,omitempty"`
	RegistrationNumber string     `bson:"registrationNumber,omitempty" json:"registrationNumber,omitempty"`
	ImageURL           string     `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	SubscriberID       FlexString `bson:"subscriberId,omitempty" json:"subscriberId,omitempty"`
	Local              bool       `bson:"local,omitempty" json:"local,omitempty"` // synthesized id, pending upstream sync
}

// Address is a pickup/service address of a subscriber.
type Address struct {
	ID           FlexString `bson:"id" json:"id"`
	Line         string     `bson:"line" json:"line"`
	City         string     `bson:"city" json:"city"`
	Pincode      FlexString `bson:"pincode" json:"pincode"`
	Landmark     string     `bson:"landmark,omitempty" json:"landmark,omitempty"`
	IsDefault    bool       `bson:"isDefault" json:"isDefault"`
	SubscriberID FlexString `bson:"subscriberId,omitempty" json:"subscriberId,omitempty"`
	Local        bool       `bson:"local,omitempty" json:"local,omitempty"`
}

// BikeBrand is an entry of the bike catalog.
type BikeBrand struct {
	ID   FlexString `json:"id"`
	Name string     `json:"name"`
}

// BikeModel belongs to a BikeBrand.
type BikeModel struct {
	ID      FlexString `json:"id"`
	BrandID FlexString `json:"brandId"`
	Name    string     `json:"name"`
	CC      FlexString `json:"cc"`
}
