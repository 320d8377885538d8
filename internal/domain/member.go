package domain

// Member is a single entry of the club roster.
//
// Member is comparable: two values are the same member record only when every
// field matches.
type Member struct {
	ID MemberID

	Surname    string
	GivenName  string
	Patronymic string

	// VehicleType is a free-form category label (e.g. the kind of bike ridden).
	VehicleType string
	// ExperienceYears is non-negative by convention; it is not enforced.
	ExperienceYears float64
}
