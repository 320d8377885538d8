package memberrepo

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Overland-East-Bay/club-roster/internal/domain"
	"github.com/Overland-East-Bay/club-roster/internal/ports/out/memberrepo"
)

// Repo is an in-memory implementation of memberrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu sync.RWMutex

	members []memberrepo.Member
}

func NewRepo() *Repo {
	return &Repo{}
}

func (r *Repo) Create(ctx context.Context, m memberrepo.Member) error {
	_ = ctx
	if m.ID <= 0 {
		return fmt.Errorf("create member %d: %w", m.ID, memberrepo.ErrInvalidID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(m.ID) >= 0 {
		return memberrepo.ErrAlreadyExists
	}
	r.members = append(r.members, m)
	return nil
}

func (r *Repo) Update(ctx context.Context, id domain.MemberID, m memberrepo.Member) error {
	_ = ctx
	// The id is immutable: the replacement always keeps the target id.
	m.ID = id

	r.mu.Lock()
	defer r.mu.Unlock()

	replaced := 0
	for i := range r.members {
		if r.members[i].ID == id {
			r.members[i] = m
			replaced++
		}
	}
	if replaced == 0 {
		return memberrepo.ErrNotFound
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, m memberrepo.Member) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.members {
		if r.members[i] == m {
			r.removeAt(i)
			return nil
		}
	}
	return memberrepo.ErrNotFound
}

func (r *Repo) DeleteByID(ctx context.Context, id domain.MemberID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return memberrepo.ErrNotFound
	}
	r.removeAt(i)
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.MemberID) (memberrepo.Member, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return memberrepo.Member{}, memberrepo.ErrNotFound
	}
	return r.members[i], nil
}

func (r *Repo) List(ctx context.Context) ([]memberrepo.Member, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]memberrepo.Member, len(r.members))
	copy(out, r.members)
	return out, nil
}

func (r *Repo) Sort(ctx context.Context, key memberrepo.SortKey) error {
	_ = ctx
	less, err := lessFor(key)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	ms := r.members
	sort.SliceStable(ms, func(i, j int) bool { return less(ms[i], ms[j]) })
	return nil
}

func (r *Repo) SearchBySurname(ctx context.Context, substr string) ([]memberrepo.Member, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]memberrepo.Member, 0)
	for _, m := range r.members {
		if strings.Contains(m.Surname, substr) {
			out = append(out, m)
		}
	}
	return out, nil
}

// indexOf must be called with r.mu held.
func (r *Repo) indexOf(id domain.MemberID) int {
	for i := range r.members {
		if r.members[i].ID == id {
			return i
		}
	}
	return -1
}

// removeAt must be called with r.mu held for writing.
func (r *Repo) removeAt(i int) {
	copy(r.members[i:], r.members[i+1:])
	r.members[len(r.members)-1] = memberrepo.Member{}
	r.members = r.members[:len(r.members)-1]
}

func lessFor(key memberrepo.SortKey) (func(a, b memberrepo.Member) bool, error) {
	switch key {
	case memberrepo.SortBySurname:
		return func(a, b memberrepo.Member) bool { return a.Surname < b.Surname }, nil
	case memberrepo.SortByExperience:
		return func(a, b memberrepo.Member) bool { return a.ExperienceYears < b.ExperienceYears }, nil
	default:
		return nil, fmt.Errorf("%w %q", memberrepo.ErrUnknownSortKey, key)
	}
}
