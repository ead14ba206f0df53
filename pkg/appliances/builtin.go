package appliances

func init() {
	for _, c := range builtinCategories() {
		Register(c)
	}
}

// DefaultExtras are the suggested free-form appliances. Their wattage is
// editable by the user, so they live outside the catalog lookup.
var DefaultExtras = []Option{
	{Label: "Microwave", Watts: 1200},
	{Label: "Computer", Watts: 300},
	{Label: "Laptop", Watts: 65},
}

func builtinCategories() []Category {
	return []Category{
		{
			Key:  "fans",
			Name: "Fans",
			Options: []Option{
				{Label: Placeholder, Watts: 0},
				{Label: "A/C Fan", Watts: 75},
				{Label: "DC Fan", Watts: 35},
				{Label: "Pedestal Fan", Watts: 100},
				{Label: "Exhaust Fan", Watts: 40},
			},
		},
		{
			Key:  "ledBulbs",
			Name: "LED Bulbs",
			Options: []Option{
				{Label: Placeholder, Watts: 0},
				{Label: "5W", Watts: 5},
				{Label: "9W", Watts: 9},
				{Label: "12W", Watts: 12},
				{Label: "18W", Watts: 18},
				{Label: "24W", Watts: 24},
			},
		},
		{
			Key:  "tubeLights",
			Name: "Tube Lights",
			Options: []Option{
				{Label: Placeholder, Watts: 0},
				{Label: "LED Tube 20W", Watts: 20},
				{Label: "Fluorescent 40W", Watts: 40},
			},
		},
		{
			Key:  "refrigerators",
			Name: "Refrigerators",
			Options: []Option{
				{Label: Placeholder, Watts: 0},
				{Label: "Single Door", Watts: 150},
				{Label: "Double Door", Watts: 250},
				{Label: "Deep Freezer", Watts: 350},
			},
		},
		{
			Key:  "airConditioners",
			Name: "Air Conditioners",
			Options: []Option{
				{Label: Placeholder, Watts: 0},
				{Label: "1 Ton Inverter", Watts: 1000},
				{Label: "1.5 Ton Inverter", Watts: 1500},
				{Label: "2 Ton Inverter", Watts: 2000},
				{Label: "1 Ton Non-Inverter", Watts: 1300},
				{Label: "1.5 Ton Non-Inverter", Watts: 1900},
			},
		},
		{
			Key:  "waterPumps",
			Name: "Water Pumps",
			Options: []Option{
				{Label: Placeholder, Watts: 0},
				{Label: "0.5 HP", Watts: 375},
				{Label: "1 HP", Watts: 750},
				{Label: "1.5 HP", Watts: 1100},
			},
		},
		{
			Key:  "televisions",
			Name: "Televisions",
			Options: []Option{
				{Label: Placeholder, Watts: 0},
				{Label: `LED 32"`, Watts: 50},
				{Label: `LED 43"`, Watts: 80},
				{Label: `LED 55"`, Watts: 120},
			},
		},
		{
			Key:  "irons",
			Name: "Irons",
			Options: []Option{
				{Label: Placeholder, Watts: 0},
				{Label: "Dry Iron", Watts: 1000},
				{Label: "Steam Iron", Watts: 1800},
			},
		},
		{
			Key:  "washingMachines",
			Name: "Washing Machines",
			Options: []Option{
				{Label: Placeholder, Watts: 0},
				{Label: "Semi-Automatic", Watts: 400},
				{Label: "Fully Automatic", Watts: 500},
			},
		},
	}
}
