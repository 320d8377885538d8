package roster

import "github.com/Overland-East-Bay/club-roster/internal/domain"

type AddMemberInput struct {
	Surname         string
	GivenName       string
	Patronymic      string
	VehicleType     string
	ExperienceYears float64
}

// DefaultSeed is the fixed starting roster used when no seed is configured.
func DefaultSeed() []domain.Member {
	return []domain.Member{
		{ID: 1, Surname: "aaa", GivenName: "aaa", Patronymic: "aaa", VehicleType: "FEEW", ExperienceYears: 2.0},
		{ID: 2, Surname: "bbb", GivenName: "bbb", Patronymic: "bbb", VehicleType: "FEFG", ExperienceYears: 0.5},
	}
}
