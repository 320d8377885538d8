package httpapi

import (
	"encoding/json"
	"time"

	"github.com/oapi-codegen/nullable"

	"github.com/Overland-East-Bay/club-roster/internal/app/roster"
	"github.com/Overland-East-Bay/club-roster/internal/domain"
	"github.com/Overland-East-Bay/club-roster/internal/ports/out/rosterfeed"
)

type Member struct {
	ID              int64   `json:"id"`
	Surname         string  `json:"surname"`
	GivenName       string  `json:"givenName"`
	Patronymic      string  `json:"patronymic"`
	VehicleType     string  `json:"vehicleType"`
	ExperienceYears float64 `json:"experienceYears"`
}

type Snapshot struct {
	Version     uint64    `json:"version"`
	PublishedAt time.Time `json:"publishedAt"`
	Query       string    `json:"query"`
	Members     []Member  `json:"members"`
	Visible     []Member  `json:"visible"`
}

// MemberInput is the request body of add and update. experienceYears may be
// a JSON number or a string; it is parsed at this boundary.
type MemberInput struct {
	Surname         string          `json:"surname"`
	GivenName       string          `json:"givenName"`
	Patronymic      string          `json:"patronymic"`
	VehicleType     string          `json:"vehicleType"`
	ExperienceYears ExperienceValue `json:"experienceYears"`
}

// DeleteMatchInput identifies a member by its full field values.
type DeleteMatchInput struct {
	ID int64 `json:"id"`
	MemberInput
}

type UpdateResult struct {
	Updated bool                      `json:"updated"`
	Member  nullable.Nullable[Member] `json:"member,omitempty"`
}

type DeleteResult struct {
	Deleted bool `json:"deleted"`
}

type SearchResult struct {
	Query   string   `json:"query"`
	Members []Member `json:"members"`
}

// ExperienceValue keeps the raw text of a JSON number or string.
type ExperienceValue struct {
	raw string
	set bool
}

func (v *ExperienceValue) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*v = ExperienceValue{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = ExperienceValue{raw: s, set: true}
		return nil
	}
	*v = ExperienceValue{raw: string(b), set: true}
	return nil
}

func (v ExperienceValue) parse() (float64, error) {
	if !v.set {
		return 0, roster.InvalidArgument("experienceYears", "is required")
	}
	f, err := domain.ParseExperienceYears(v.raw)
	if err != nil {
		return 0, roster.InvalidArgument("experienceYears", err.Error())
	}
	return f, nil
}

func (in MemberInput) toAddInput() (roster.AddMemberInput, error) {
	exp, err := in.ExperienceYears.parse()
	if err != nil {
		return roster.AddMemberInput{}, err
	}
	return roster.AddMemberInput{
		Surname:         in.Surname,
		GivenName:       in.GivenName,
		Patronymic:      in.Patronymic,
		VehicleType:     in.VehicleType,
		ExperienceYears: exp,
	}, nil
}

func (in MemberInput) toDomain(id domain.MemberID) (domain.Member, error) {
	exp, err := in.ExperienceYears.parse()
	if err != nil {
		return domain.Member{}, err
	}
	return domain.Member{
		ID:              id,
		Surname:         in.Surname,
		GivenName:       in.GivenName,
		Patronymic:      in.Patronymic,
		VehicleType:     in.VehicleType,
		ExperienceYears: exp,
	}, nil
}

func memberFromDomain(m domain.Member) Member {
	return Member{
		ID:              int64(m.ID),
		Surname:         m.Surname,
		GivenName:       m.GivenName,
		Patronymic:      m.Patronymic,
		VehicleType:     m.VehicleType,
		ExperienceYears: m.ExperienceYears,
	}
}

func membersFromDomain(ms []domain.Member) []Member {
	out := make([]Member, 0, len(ms))
	for _, m := range ms {
		out = append(out, memberFromDomain(m))
	}
	return out
}

func snapshotFromFeed(s rosterfeed.Snapshot) Snapshot {
	return Snapshot{
		Version:     s.Version,
		PublishedAt: s.PublishedAt,
		Query:       s.Query,
		Members:     membersFromDomain(s.Members),
		Visible:     membersFromDomain(s.Visible),
	}
}
