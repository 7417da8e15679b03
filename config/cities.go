package config

import "bikeserve/models"

// Cities is the fixed list used when reverse geocoding is unavailable.
var Cities = []models.City{
	{Name: "Pune", State: "Maharashtra", Latitude: 18.5204, Longitude: 73.8567},
	{Name: "Mumbai", State: "Maharashtra", Latitude: 19.0760, Longitude: 72.8777},
	{Name: "Nagpur", State: "Maharashtra", Latitude: 21.1458, Longitude: 79.0882},
	{Name: "Bengaluru", State: "Karnataka", Latitude: 12.9716, Longitude: 77.5946},
	{Name: "Delhi", State: "Delhi", Latitude: 28.7041, Longitude: 77.1025},
	{Name: "Hyderabad", State: "Telangana", Latitude: 17.3850, Longitude: 78.4867},
	{Name: "Chennai", State: "Tamil Nadu", Latitude: 13.0827, Longitude: 80.2707},
	{Name: "Kolkata", State: "West Bengal", Latitude: 22.5726, Longitude: 88.3639},
	{Name: "Ahmedabad", State: "Gujarat", Latitude: 23.0225, Longitude: 72.5714},
	{Name: "Jaipur", State: "Rajasthan", Latitude: 26.9124, Longitude: 75.7873},
}
