package discovery

// Curated Bengaluru places. Distances are from the city-center reference
// point used by the demo sessions.

var places = []Place{
	{
		ID:          "1",
		Name:        "MTR",
		Kind:        CategoryFood,
		Category:    "South Indian Restaurant",
		Address:     "Lalbagh Road, Bangalore",
		Rating:      4.5,
		PriceRange:  "₹₹",
		Tags:        []string{"Breakfast", "Dosa", "Iconic"},
		DistanceKM:  2.5,
		Description: "Famous for authentic South Indian breakfast since 1924",
	},
	{
		ID:          "2",
		Name:        "Vidyarthi Bhavan",
		Kind:        CategoryFood,
		Category:    "Breakfast Joint",
		Address:     "Gandhi Bazaar, Basavanagudi",
		Rating:      4.6,
		PriceRange:  "₹",
		Tags:        []string{"Dosa", "Vegetarian", "Local Favorite"},
		DistanceKM:  3.2,
		Description: "Legendary crispy dosas loved by locals",
	},
	{
		ID:          "3",
		Name:        "The Rameshwaram Cafe",
		Kind:        CategoryFood,
		Category:    "South Indian",
		Address:     "Indiranagar",
		Rating:      4.4,
		PriceRange:  "₹₹",
		Tags:        []string{"Filter Coffee", "Idli", "Modern"},
		DistanceKM:  1.8,
		Description: "Popular chain with quality South Indian food",
	},
	{
		ID:          "4",
		Name:        "Third Wave Coffee",
		Kind:        CategoryCafe,
		Category:    "Specialty Coffee",
		Address:     "Koramangala",
		Rating:      4.5,
		PriceRange:  "₹₹₹",
		Tags:        []string{"Coffee", "Work-friendly", "WiFi"},
		DistanceKM:  0.8,
		Description: "Premium coffee roasters with great ambiance",
	},
	{
		ID:          "5",
		Name:        "Cafe Coffee Day",
		Kind:        CategoryCafe,
		Category:    "Cafe Chain",
		Address:     "MG Road",
		Rating:      4.0,
		PriceRange:  "₹₹",
		Tags:        []string{"Coffee", "Snacks", "AC"},
		DistanceKM:  2.1,
		Description: "Reliable chain cafe for casual meetings",
	},
	{
		ID:          "6",
		Name:        "Commercial Street",
		Kind:        CategoryShopping,
		Category:    "Shopping Street",
		Address:     "Shivajinagar, Bangalore",
		Rating:      4.3,
		PriceRange:  "₹-₹₹",
		Tags:        []string{"Clothes", "Accessories", "Street Shopping"},
		DistanceKM:  4.5,
		Description: "Bustling shopping street with bargain deals",
	},
	{
		ID:          "7",
		Name:        "Victoria Hospital",
		Kind:        CategoryEmergency,
		Category:    "Government Hospital",
		Address:     "Fort, Bangalore",
		Rating:      3.8,
		PriceRange:  "₹",
		Tags:        []string{"Emergency", "24/7", "Trauma Care"},
		DistanceKM:  3.5,
		Description: "Major government hospital with emergency services",
	},
	{
		ID:          "8",
		Name:        "Zolo Stays Premium PG",
		Kind:        CategoryPG,
		Category:    "Co-living",
		Address:     "HSR Layout",
		PriceRange:  "₹₹₹",
		Tags:        []string{"WiFi", "Food", "AC", "Security"},
		DistanceKM:  2.0,
		Description: "Modern PG with all amenities - ₹12,000/month",
	},
}
