package transport

// Snapshot of BMTC routes, Namma Metro lines and locality coordinates used
// for offline route search. Fares in rupees, frequencies in minutes.

var bmtcRoutes = []busRoute{
	{
		id:       "335E",
		name:     "Kengeri Bus Station to Whitefield",
		operator: "BMTC",
		stops: []string{
			"Kengeri Bus Station",
			"RV College",
			"Jayanagar 4th Block",
			"Lalbagh",
			"Shivajinagar",
			"MG Road",
			"Indiranagar",
			"Marathahalli",
			"Whitefield",
		},
		freqMin: 15,
		fare:    45,
	},
	{
		id:       "500K",
		name:     "Kempegowda Bus Station to Electronic City",
		operator: "BMTC Vayu Vajra (AC)",
		stops: []string{
			"Kempegowda Bus Station",
			"Lalbagh",
			"Jayanagar",
			"BTM Layout",
			"Silk Board",
			"HSR Layout",
			"Electronic City",
		},
		freqMin: 20,
		fare:    80,
		ac:      true,
	},
	{
		id:       "G4",
		name:     "Banashankari to KR Puram",
		operator: "BMTC",
		stops: []string{
			"Banashankari",
			"JP Nagar",
			"BTM Layout",
			"Koramangala",
			"MG Road",
			"Indiranagar",
			"Marathahalli",
			"KR Puram",
		},
		freqMin: 12,
		fare:    40,
	},
}

var metroLines = []metroLine{
	{
		id:       "purple",
		name:     "Purple Line (Challaghatta - Whitefield)",
		operator: "Namma Metro (BMRCL)",
		stations: []string{
			"Challaghatta",
			"Kengeri",
			"Mysore Road",
			"Deepanjali Nagar",
			"Attiguppe",
			"Vijayanagar",
			"Hosahalli",
			"Magadi Road",
			"Mahalakshmi",
			"Sandal Soap Factory",
			"Rajajinagar",
			"Kuvempu Road",
			"Srirampura",
			"Sampige Road",
			"Majestic",
			"MG Road",
			"Trinity",
			"Halasuru",
			"Indiranagar",
			"Baiyappanahalli",
			"Whitefield",
		},
		freqMin:  8,
		fareBase: 10,
		farePerK: 2,
	},
	{
		id:       "green",
		name:     "Green Line (Nagasandra - Silk Institute)",
		operator: "Namma Metro (BMRCL)",
		stations: []string{
			"Nagasandra",
			"Dasarahalli",
			"Jalahalli",
			"Peenya Industry",
			"Peenya",
			"Goraguntepalya",
			"Yeshwanthpur",
			"Mahalakshmi",
			"Rajajinagar",
			"Kuvempu Road",
			"Srirampura",
			"Krantiveera Sangolli Rayanna (Majestic)",
			"Chickpet",
			"Krishna Rajendra Market",
			"National College",
			"Lalbagh",
			"South End Circle",
			"Jayanagar",
			"Rashtriya Vidyalaya Road",
			"Banashankari",
			"Silk Institute",
		},
		freqMin:  10,
		fareBase: 10,
		farePerK: 2,
	},
}

var localities = map[string]locality{
	"koramangala":     {12.9352, 77.6245},
	"whitefield":      {12.9698, 77.7500},
	"indiranagar":     {12.9716, 77.6412},
	"jayanagar":       {12.9250, 77.5838},
	"marathahalli":    {12.9591, 77.6974},
	"mg_road":         {12.9716, 77.5946},
	"electronic_city": {12.8456, 77.6603},
	"kr_puram":        {13.0096, 77.6969},
	"btm_layout":      {12.9165, 77.6101},
	"hsr_layout":      {12.9121, 77.6446},
}
