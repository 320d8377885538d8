package roster

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Overland-East-Bay/club-roster/internal/domain"
	clockport "github.com/Overland-East-Bay/club-roster/internal/ports/out/clock"
	"github.com/Overland-East-Bay/club-roster/internal/ports/out/memberrepo"
	"github.com/Overland-East-Bay/club-roster/internal/ports/out/rosterfeed"
)

// Store owns the canonical, ordered roster.
//
// All mutations go through a single gate. Each one is followed by exactly one
// snapshot publication, made while the gate is still held, so snapshot
// versions follow mutation order.
type Store struct {
	mu sync.Mutex

	repo memberrepo.Repository
	feed rosterfeed.Publisher
	clk  clockport.Clock
	log  zerolog.Logger

	nextID  domain.MemberID
	version uint64
	query   string
	latest  rosterfeed.Snapshot
}

type storeConfig struct {
	seed   []domain.Member
	logger zerolog.Logger
}

// Option configures a Store during construction.
type Option func(*storeConfig) error

// WithSeed replaces the default two-member seed. Passing no members starts
// with an empty roster.
func WithSeed(members ...domain.Member) Option {
	return func(cfg *storeConfig) error {
		seen := make(map[domain.MemberID]struct{}, len(members))
		for _, m := range members {
			if m.ID <= 0 {
				return fmt.Errorf("seed member %q: id must be positive", m.Surname)
			}
			if _, dup := seen[m.ID]; dup {
				return fmt.Errorf("seed member %q: duplicate id %d", m.Surname, m.ID)
			}
			if err := domain.ValidateExperienceYears(m.ExperienceYears); err != nil {
				return fmt.Errorf("seed member %d: %w", m.ID, err)
			}
			seen[m.ID] = struct{}{}
		}
		cfg.seed = append([]domain.Member(nil), members...)
		return nil
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(cfg *storeConfig) error {
		cfg.logger = l
		return nil
	}
}

// NewStore seeds repo and publishes the initial snapshot to feed.
// repo must be empty and owned exclusively by the returned Store.
func NewStore(ctx context.Context, repo memberrepo.Repository, feed rosterfeed.Publisher, clk clockport.Clock, opts ...Option) (*Store, error) {
	cfg := storeConfig{
		seed:   DefaultSeed(),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	s := &Store{
		repo:   repo,
		feed:   feed,
		clk:    clk,
		log:    cfg.logger.With().Str("module", "roster").Logger(),
		nextID: 1,
	}
	if err := s.initialize(ctx, cfg.seed); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) initialize(ctx context.Context, seed []domain.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range seed {
		if err := s.repo.Create(ctx, toRepo(m)); err != nil {
			return fmt.Errorf("seed member %d: %w", m.ID, err)
		}
		if m.ID >= s.nextID {
			s.nextID = m.ID + 1
		}
	}
	s.log.Info().Int("members", len(seed)).Msg("roster seeded")
	return s.publishLocked(ctx)
}

// Add appends a new member at the tail of the roster.
func (s *Store) Add(ctx context.Context, in AddMemberInput) (domain.Member, error) {
	if err := domain.ValidateExperienceYears(in.ExperienceYears); err != nil {
		return domain.Member{}, InvalidArgument("experienceYears", err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m := domain.Member{
		ID:              s.nextID,
		Surname:         in.Surname,
		GivenName:       in.GivenName,
		Patronymic:      in.Patronymic,
		VehicleType:     in.VehicleType,
		ExperienceYears: in.ExperienceYears,
	}
	if err := s.repo.Create(ctx, toRepo(m)); err != nil {
		return domain.Member{}, fmt.Errorf("create member: %w", err)
	}
	s.nextID++
	s.log.Debug().Stringer("memberId", m.ID).Msg("member added")

	if err := s.publishLocked(ctx); err != nil {
		return domain.Member{}, err
	}
	return m, nil
}

// Update replaces the member with the given id, keeping its position.
// The replacement always keeps id, whatever m.ID says. It reports false when
// no member matched; a snapshot is published either way.
func (s *Store) Update(ctx context.Context, id domain.MemberID, m domain.Member) (bool, error) {
	if err := domain.ValidateExperienceYears(m.ExperienceYears); err != nil {
		return false, InvalidArgument("experienceYears", err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	updated := true
	if err := s.repo.Update(ctx, id, toRepo(m)); err != nil {
		if !errors.Is(err, memberrepo.ErrNotFound) {
			return false, fmt.Errorf("update member: %w", err)
		}
		updated = false
	}
	s.log.Debug().Stringer("memberId", id).Bool("updated", updated).Msg("member update")

	return updated, s.publishLocked(ctx)
}

// Delete removes the first member structurally equal to m. A stale copy
// (any field changed since it was read) removes nothing and reports false.
func (s *Store) Delete(ctx context.Context, m domain.Member) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.deleteLocked(ctx, m.ID, func() error { return s.repo.Delete(ctx, toRepo(m)) })
}

// DeleteByID removes the member with the given id regardless of its
// current field values.
func (s *Store) DeleteByID(ctx context.Context, id domain.MemberID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.deleteLocked(ctx, id, func() error { return s.repo.DeleteByID(ctx, id) })
}

func (s *Store) deleteLocked(ctx context.Context, id domain.MemberID, del func() error) (bool, error) {
	deleted := true
	if err := del(); err != nil {
		if !errors.Is(err, memberrepo.ErrNotFound) {
			return false, fmt.Errorf("delete member: %w", err)
		}
		deleted = false
	}
	s.log.Debug().Stringer("memberId", id).Bool("deleted", deleted).Msg("member delete")

	return deleted, s.publishLocked(ctx)
}

// SortByExperience orders the roster by ascending experience. The sort is
// stable: members with equal experience keep their relative order. It
// returns the snapshot published for the sort.
func (s *Store) SortByExperience(ctx context.Context) (rosterfeed.Snapshot, error) {
	return s.sort(ctx, memberrepo.SortByExperience)
}

// SortBySurname orders the roster by surname (byte-wise lexicographic),
// stable on ties. It returns the snapshot published for the sort.
func (s *Store) SortBySurname(ctx context.Context) (rosterfeed.Snapshot, error) {
	return s.sort(ctx, memberrepo.SortBySurname)
}

func (s *Store) sort(ctx context.Context, key memberrepo.SortKey) (rosterfeed.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Sort(ctx, key); err != nil {
		return rosterfeed.Snapshot{}, fmt.Errorf("sort members: %w", err)
	}
	s.log.Debug().Str("by", string(key)).Msg("roster sorted")
	if err := s.publishLocked(ctx); err != nil {
		return rosterfeed.Snapshot{}, err
	}
	return s.latest, nil
}

// FindBySurname sets the active surname filter and returns the matching
// members in roster order. Matching is a case-sensitive substring test; an
// empty substring clears the filter.
//
// Published snapshots keep the full roster in Members and expose the
// filtered view in Visible. The filter stays active across later mutations.
func (s *Store) FindBySurname(ctx context.Context, substr string) ([]domain.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.query = substr
	if err := s.publishLocked(ctx); err != nil {
		return nil, err
	}
	s.log.Debug().Str("query", substr).Int("matches", len(s.latest.Visible)).Msg("surname filter")
	return append([]domain.Member(nil), s.latest.Visible...), nil
}

func (s *Store) Get(ctx context.Context, id domain.MemberID) (domain.Member, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, memberrepo.ErrNotFound) {
			return domain.Member{}, notFound(id.String())
		}
		return domain.Member{}, err
	}
	return toDomain(m), nil
}

// Snapshot returns the most recently published snapshot.
func (s *Store) Snapshot() rosterfeed.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// publishLocked materializes the current roster and hands it to the feed.
// Must be called with s.mu held. The mutation is already applied, so the
// caller's cancellation does not reach the publication.
func (s *Store) publishLocked(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)

	ms, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("list members: %w", err)
	}
	members := toDomainAll(ms)

	visible := members
	if s.query != "" {
		matches, err := s.repo.SearchBySurname(ctx, s.query)
		if err != nil {
			return fmt.Errorf("search members: %w", err)
		}
		visible = toDomainAll(matches)
	}

	s.version++
	s.latest = rosterfeed.Snapshot{
		Version:     s.version,
		PublishedAt: s.clk.Now(),
		Members:     members,
		Query:       s.query,
		Visible:     visible,
	}
	if err := s.feed.Publish(ctx, s.latest); err != nil {
		// Publication failures never fail the mutation.
		s.log.Warn().Err(err).Uint64("version", s.version).Msg("snapshot publish failed")
	}
	return nil
}

func toRepo(m domain.Member) memberrepo.Member {
	return memberrepo.Member{
		ID:              m.ID,
		Surname:         m.Surname,
		GivenName:       m.GivenName,
		Patronymic:      m.Patronymic,
		VehicleType:     m.VehicleType,
		ExperienceYears: m.ExperienceYears,
	}
}

func toDomainAll(ms []memberrepo.Member) []domain.Member {
	out := make([]domain.Member, 0, len(ms))
	for _, m := range ms {
		out = append(out, toDomain(m))
	}
	return out
}

func toDomain(m memberrepo.Member) domain.Member {
	return domain.Member{
		ID:              m.ID,
		Surname:         m.Surname,
		GivenName:       m.GivenName,
		Patronymic:      m.Patronymic,
		VehicleType:     m.VehicleType,
		ExperienceYears: m.ExperienceYears,
	}
}
