package api

import (
	"strconv"
	"strings"

	"bikeserve/config"
	"bikeserve/models"
)

// Canned data served when a fallback-enabled resource cannot be fetched.

func mockVehicles(subscriberID string) []models.Vehicle {
	return []models.Vehicle{
		{ID: "demo-1", Brand: "Honda", Model: "Activa 6G", CC: "110", Year: "2022", RegistrationNumber: "MH12AB1234", SubscriberID: models.FlexString(subscriberID)},
		{ID: "demo-2", Brand: "Royal Enfield", Model: "Classic 350", CC: "350", Year: "2021", RegistrationNumber: "MH14CD5678", SubscriberID: models.FlexString(subscriberID)},
	}
}

func mockAddresses(subscriberID, city string) []models.Address {
	if city == "" {
		city = "Pune"
	}
	return []models.Address{
		{ID: "demo-1", Line: "Flat 4, Shanti Apartments, FC Road", City: city, Pincode: "411004", Landmark: "Near Goodluck Cafe", IsDefault: true, SubscriberID: models.FlexString(subscriberID)},
	}
}

func mockGarageCatalog(cc string) models.ServiceCatalog {
	// Bigger engines cost more to service.
	factor := 1.0
	if n, err := strconv.Atoi(strings.TrimSpace(cc)); err == nil && n > 200 {
		factor = 1.5
	}
	price := func(base float64) models.FlexString {
		return models.FlexString(strconv.FormatFloat(base*factor, 'f', -1, 64))
	}
	return models.ServiceCatalog{
		Services: []models.ServiceItem{
			{ID: "1", Name: "General Service", Price: price(500), Duration: "3-4 hrs", Includes: "Engine oil change • Oil filter cleaning • Brake adjustment • Chain lubrication"},
			{ID: "2", Name: "Engine Tune-up", Price: price(800), Duration: "4-5 hrs", Includes: "Spark plug check\nCarburettor cleaning\nIdle RPM setting"},
			{ID: "3", Name: "Brake Overhaul", Price: price(650), Duration: "2 hrs", Includes: []string{"Brake pad replacement", "Brake fluid top-up", "Drum cleaning"}},
		},
		AddOns: []models.ServiceItem{
			{ID: "a1", Name: "Foam Wash", Price: "150", Duration: "30 mins", Includes: "Foam wash. Tyre polish. Dry wipe"},
			{ID: "a2", Name: "Chain Kit Check", Price: "99.5", Duration: "20 mins"},
			{ID: "a3", Name: "Pickup & Drop", Price: "50", Duration: "-"},
		},
	}
}

func mockWashingCatalog() models.ServiceCatalog {
	return models.ServiceCatalog{
		Services: []models.ServiceItem{
			{ID: "w1", Name: "Basic Wash", Price: "199", Duration: "30 mins", Includes: "Water wash · Dry wipe · Tyre shine"},
			{ID: "w2", Name: "Premium Wash", Price: "349", Duration: "45 mins", Includes: "Foam wash\nUnderbody wash\nWax polish"},
			{ID: "w3", Name: "Detailing", Price: "899", Duration: "2 hrs", Includes: []string{"Clay bar", "Ceramic spray", "Chrome polish"}},
		},
		AddOns: []models.ServiceItem{
			{ID: "wa1", Name: "Seat Cleaning", Price: "99"},
			{ID: "wa2", Name: "Anti-rust Coating", Price: "249"},
		},
	}
}

func mockBrands() []models.BikeBrand {
	return []models.BikeBrand{
		{ID: "1", Name: "Honda"},
		{ID: "2", Name: "Bajaj"},
		{ID: "3", Name: "TVS"},
		{ID: "4", Name: "Hero"},
		{ID: "5", Name: "Royal Enfield"},
		{ID: "6", Name: "Yamaha"},
	}
}

var mockModelsByBrand = map[string][]models.BikeModel{
	"1": {{ID: "11", Name: "Activa 6G", CC: "110"}, {ID: "12", Name: "Shine", CC: "125"}, {ID: "13", Name: "Unicorn", CC: "160"}},
	"2": {{ID: "21", Name: "Pulsar 150", CC: "150"}, {ID: "22", Name: "Dominar 400", CC: "373"}},
	"3": {{ID: "31", Name: "Jupiter", CC: "110"}, {ID: "32", Name: "Apache RTR 160", CC: "160"}},
	"4": {{ID: "41", Name: "Splendor Plus", CC: "97"}, {ID: "42", Name: "Xpulse 200", CC: "200"}},
	"5": {{ID: "51", Name: "Classic 350", CC: "350"}, {ID: "52", Name: "Himalayan", CC: "411"}},
	"6": {{ID: "61", Name: "FZ-S", CC: "149"}, {ID: "62", Name: "R15 V4", CC: "155"}},
}

func mockModels(brandID string) []models.BikeModel {
	list := mockModelsByBrand[brandID]
	out := make([]models.BikeModel, len(list))
	for i, m := range list {
		m.BrandID = models.FlexString(brandID)
		out[i] = m
	}
	return out
}

func mockCities() []models.City {
	out := make([]models.City, len(config.Cities))
	copy(out, config.Cities)
	return out
}

var mockProviderList = []models.Provider{
	{ID: "101", Kind: models.ProviderGarage, Name: "Speedy Bike Care", Address: "Karve Road, Kothrud", City: "Pune", Latitude: 18.5074, Longitude: 73.8077, Rating: 4.6, Distance: 2.1, Services: []string{"General Service", "Engine Tune-up"}, OperatingHours: "9:00 AM - 8:00 PM",
		Reviews: []models.Review{{Author: "Rohit", Rating: 5, Comment: "Quick and honest."}}},
	{ID: "102", Kind: models.ProviderGarage, Name: "Moto Point", Address: "Baner Road", City: "Pune", Latitude: 18.5590, Longitude: 73.7868, Rating: 4.2, Distance: 5.4, Services: []string{"General Service", "Brake Overhaul"}, OperatingHours: "10:00 AM - 7:00 PM"},
	{ID: "103", Kind: models.ProviderGarage, Name: "Andheri Two Wheelers", Address: "Link Road, Andheri West", City: "Mumbai", Latitude: 19.1364, Longitude: 72.8296, Rating: 4.4, Distance: 3.0, Services: []string{"General Service"}, OperatingHours: "9:30 AM - 8:30 PM"},
	{ID: "104", Kind: models.ProviderGarage, Name: "Indiranagar Moto Works", Address: "100 Feet Road", City: "Bengaluru", Latitude: 12.9719, Longitude: 77.6412, Rating: 4.5, Distance: 1.8, Services: []string{"General Service", "Engine Tune-up"}, OperatingHours: "9:00 AM - 9:00 PM"},
	{ID: "201", Kind: models.ProviderWashing, Name: "Sparkle Bike Spa", Address: "Aundh", City: "Pune", Latitude: 18.5580, Longitude: 73.8075, Rating: 4.7, Distance: 3.3, Services: []string{"Basic Wash", "Premium Wash"}, OperatingHours: "8:00 AM - 8:00 PM"},
	{ID: "202", Kind: models.ProviderWashing, Name: "Foam Factory", Address: "Powai", City: "Mumbai", Latitude: 19.1176, Longitude: 72.9060, Rating: 4.3, Distance: 4.2, Services: []string{"Basic Wash", "Detailing"}, OperatingHours: "9:00 AM - 7:00 PM"},
}

func mockProviders(kind string, q models.ProviderSearch) []models.Provider {
	var all, inCity []models.Provider
	for _, p := range mockProviderList {
		if p.Kind != kind {
			continue
		}
		if q.Filter != "" && !strings.Contains(strings.ToLower(p.Name+" "+strings.Join(p.Services, " ")), strings.ToLower(q.Filter)) {
			continue
		}
		all = append(all, p)
		if q.City != "" && strings.EqualFold(p.City, q.City) {
			inCity = append(inCity, p)
		}
	}
	if len(inCity) > 0 {
		return inCity
	}
	return all
}

func mockLanding(city string) models.LandingContent {
	if city == "" {
		city = "Pune"
	}
	return models.LandingContent{
		City:     city,
		Headline: "Doorstep bike service in " + city,
		Offers: []models.Offer{
			{Title: "Flat 10% off", Description: "On your first general service", Code: "FIRSTRIDE"},
			{Title: "Free pickup", Description: "On bookings above 999"},
		},
		PopularServices: []string{"General Service", "Foam Wash", "Brake Overhaul"},
		FeaturedGarages: mockProviders(models.ProviderGarage, models.ProviderSearch{City: city}),
	}
}
