// Package seedfile loads a starting roster from YAML.
//
// Example:
//
//	members:
//	  - id: 1
//	    surname: aaa
//	    givenName: aaa
//	    patronymic: aaa
//	    vehicleType: FEEW
//	    experienceYears: 2.0
package seedfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Overland-East-Bay/club-roster/internal/domain"
)

// File is the YAML document shape.
type File struct {
	Members []Entry `yaml:"members"`
}

type Entry struct {
	ID              int64   `yaml:"id"`
	Surname         string  `yaml:"surname"`
	GivenName       string  `yaml:"givenName"`
	Patronymic      string  `yaml:"patronymic"`
	VehicleType     string  `yaml:"vehicleType"`
	ExperienceYears float64 `yaml:"experienceYears"`
}

// Load reads and validates the seed file at path.
func Load(path string) ([]domain.Member, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	ms, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ms, nil
}

// Parse decodes and validates a seed document. Unknown keys are rejected so
// that typos do not silently drop fields.
func Parse(data []byte) ([]domain.Member, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse seed yaml: %w", err)
	}

	out := make([]domain.Member, 0, len(f.Members))
	seen := make(map[int64]int, len(f.Members))
	for i, e := range f.Members {
		if e.ID <= 0 {
			return nil, fmt.Errorf("members[%d]: id must be positive, got %d", i, e.ID)
		}
		if prev, dup := seen[e.ID]; dup {
			return nil, fmt.Errorf("members[%d]: id %d already used by members[%d]", i, e.ID, prev)
		}
		if err := domain.ValidateExperienceYears(e.ExperienceYears); err != nil {
			return nil, fmt.Errorf("members[%d]: %w", i, err)
		}
		seen[e.ID] = i
		out = append(out, domain.Member{
			ID:              domain.MemberID(e.ID),
			Surname:         e.Surname,
			GivenName:       e.GivenName,
			Patronymic:      e.Patronymic,
			VehicleType:     e.VehicleType,
			ExperienceYears: e.ExperienceYears,
		})
	}
	return out, nil
}
