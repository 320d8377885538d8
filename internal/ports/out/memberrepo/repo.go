package memberrepo

import (
	"context"

	"github.com/Overland-East-Bay/club-roster/internal/domain"
)

// Member is the persistence shape used by the member repository.
//
// It mirrors domain.Member field for field and stays comparable, so a
// structural match is plain ==.
type Member struct {
	ID domain.MemberID

	Surname    string
	GivenName  string
	Patronymic string

	VehicleType     string
	ExperienceYears float64
}

// SortKey selects the ordering applied by Repository.Sort.
type SortKey string

const (
	SortBySurname    SortKey = "surname"
	SortByExperience SortKey = "experience"
)

// Repository is an ordered collection of roster members.
//
// Ordering expectations:
//   - Create appends to the tail.
//   - Update keeps the position of replaced entries.
//   - Sort is stable: ties keep their prior relative order.
//   - List/SearchBySurname return entries in the current collection order.
type Repository interface {
	Create(ctx context.Context, m Member) error

	// Update replaces every entry with the given id by m (whose ID is forced to id).
	// Returns ErrNotFound when nothing matched.
	Update(ctx context.Context, id domain.MemberID, m Member) error

	// Delete removes the first entry structurally equal to m.
	// Returns ErrNotFound when nothing matched.
	Delete(ctx context.Context, m Member) error
	DeleteByID(ctx context.Context, id domain.MemberID) error

	GetByID(ctx context.Context, id domain.MemberID) (Member, error)
	List(ctx context.Context) ([]Member, error)

	Sort(ctx context.Context, key SortKey) error

	// SearchBySurname returns entries whose surname contains substr (case-sensitive).
	SearchBySurname(ctx context.Context, substr string) ([]Member, error)
}
