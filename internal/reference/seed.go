package reference

// DefaultCatalog is the reference data a fresh installation starts with.
func DefaultCatalog() *Catalog {
	return &Catalog{
		Jobs: []*Job{
			{Name: "DEVELOPER", Value: 40000, Order: 1},
			{Name: "DATA_SCIENTIST", Value: 50000, Order: 2},
			{Name: "HR", Value: 35000, Order: 3},
			{Name: "SUPPORT", Value: 30000, Order: 4},
		},
		Experiences: []*Experience{
			{Name: "TRAINEE", Value: 1, Order: 1},
			{Name: "JUNIOR", Value: 1.2, Order: 2},
			{Name: "MIDDLE", Value: 1.4, Order: 3},
			{Name: "SENIOR", Value: 1.6, Order: 4},
		},
		Seniorities: []*Seniority{
			{Name: "NEWBEE", Value: 0, Order: 1},
			{Name: "JUNIOR", Value: 1000, Order: 2},
			{Name: "MIDDLE", Value: 2000, Order: 3},
			{Name: "SENIOR", Value: 3000, Order: 4},
		},
	}
}
