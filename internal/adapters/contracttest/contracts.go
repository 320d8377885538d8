package contracttest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Overland-East-Bay/club-roster/internal/domain"
	idempotencyport "github.com/Overland-East-Bay/club-roster/internal/ports/out/idempotency"
	memberrepoport "github.com/Overland-East-Bay/club-roster/internal/ports/out/memberrepo"
)

type CleanupFunc = func()

type MemberRepoFactory func(t *testing.T) (memberrepoport.Repository, CleanupFunc)
type IdemStoreFactory func(t *testing.T) (idempotencyport.Store, CleanupFunc)

func RunIdempotencyStore(t *testing.T, newStore IdemStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	fp := idempotencyport.Fingerprint{
		Key:    "k-1",
		Method: "POST",
		Route:  "/members",
	}
	if _, ok, err := store.Get(ctx, fp); err != nil || ok {
		t.Fatalf("Get before Put: ok=%v err=%v, want ok=false", ok, err)
	}

	rec := idempotencyport.Record{
		StatusCode:  201,
		ContentType: "application/json",
		BodyHash:    "hash-abc",
		Body:        []byte(`{"id":3}`),
		CreatedAt:   time.Unix(123, 0).UTC(),
	}
	if err := store.Put(ctx, fp, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := store.Get(ctx, fp)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatalf("expected ok=true")
	}
	if string(got.Body) != `{"id":3}` || got.BodyHash != "hash-abc" || got.StatusCode != 201 {
		t.Fatalf("unexpected record: %+v", got)
	}

	// Overwrite semantics.
	rec2 := rec
	rec2.Body = []byte(`{"id":4}`)
	if err := store.Put(ctx, fp, rec2); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	got, ok, err = store.Get(ctx, fp)
	if err != nil || !ok || string(got.Body) != `{"id":4}` {
		t.Fatalf("expected overwritten record, got ok=%v err=%v body=%q", ok, err, string(got.Body))
	}

	// Route is part of the fingerprint.
	other := fp
	other.Route = "/members/delete"
	if _, ok, err := store.Get(ctx, other); err != nil || ok {
		t.Fatalf("Get(other route): ok=%v err=%v, want ok=false", ok, err)
	}
}

func RunMemberRepo(t *testing.T, newRepo MemberRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	a := memberrepoport.Member{ID: 1, Surname: "bbb", GivenName: "b", VehicleType: "X", ExperienceYears: 2}
	b := memberrepoport.Member{ID: 2, Surname: "aaa", GivenName: "a", VehicleType: "Y", ExperienceYears: 0.5}
	c := memberrepoport.Member{ID: 3, Surname: "abc", GivenName: "c", VehicleType: "Z", ExperienceYears: 2}
	for _, m := range []memberrepoport.Member{a, b, c} {
		if err := repo.Create(ctx, m); err != nil {
			t.Fatalf("Create(%d): %v", m.ID, err)
		}
	}

	// ID uniqueness.
	if err := repo.Create(ctx, memberrepoport.Member{ID: 1, Surname: "dup"}); !errors.Is(err, memberrepoport.ErrAlreadyExists) {
		t.Fatalf("Create(dup) err=%v, want %v", err, memberrepoport.ErrAlreadyExists)
	}

	// Insertion order.
	assertOrder(t, repo, 1, 2, 3)

	// Stable sort by experience: a and c tie at 2 and keep their order.
	if err := repo.Sort(ctx, memberrepoport.SortByExperience); err != nil {
		t.Fatalf("Sort(experience): %v", err)
	}
	assertOrder(t, repo, 2, 1, 3)

	if err := repo.Sort(ctx, memberrepoport.SortBySurname); err != nil {
		t.Fatalf("Sort(surname): %v", err)
	}
	assertOrder(t, repo, 2, 3, 1)

	if err := repo.Sort(ctx, memberrepoport.SortKey("age")); !errors.Is(err, memberrepoport.ErrUnknownSortKey) {
		t.Fatalf("Sort(age) err=%v, want %v", err, memberrepoport.ErrUnknownSortKey)
	}

	// Case-sensitive substring search in collection order.
	res, err := repo.SearchBySurname(ctx, "a")
	if err != nil {
		t.Fatalf("SearchBySurname: %v", err)
	}
	if len(res) != 2 || res[0].ID != 2 || res[1].ID != 3 {
		t.Fatalf("SearchBySurname(a)=%v, want [2 3]", res)
	}
	res, err = repo.SearchBySurname(ctx, "A")
	if err != nil || len(res) != 0 {
		t.Fatalf("SearchBySurname(A)=%v err=%v, want empty", res, err)
	}

	// Update keeps position and id.
	repl := memberrepoport.Member{ID: 99, Surname: "zzz", ExperienceYears: 7}
	if err := repo.Update(ctx, 3, repl); err != nil {
		t.Fatalf("Update: %v", err)
	}
	assertOrder(t, repo, 2, 3, 1)
	got, err := repo.GetByID(ctx, 3)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Surname != "zzz" || got.ID != 3 {
		t.Fatalf("GetByID(3)=%+v, want surname zzz id 3", got)
	}
	if err := repo.Update(ctx, 42, repl); !errors.Is(err, memberrepoport.ErrNotFound) {
		t.Fatalf("Update(missing) err=%v, want %v", err, memberrepoport.ErrNotFound)
	}

	// Structural delete: a stale copy removes nothing.
	stale := c
	if err := repo.Delete(ctx, stale); !errors.Is(err, memberrepoport.ErrNotFound) {
		t.Fatalf("Delete(stale) err=%v, want %v", err, memberrepoport.ErrNotFound)
	}
	if err := repo.Delete(ctx, a); err != nil {
		t.Fatalf("Delete(a): %v", err)
	}
	assertOrder(t, repo, 2, 3)

	if err := repo.DeleteByID(ctx, 2); err != nil {
		t.Fatalf("DeleteByID: %v", err)
	}
	if err := repo.DeleteByID(ctx, 2); !errors.Is(err, memberrepoport.ErrNotFound) {
		t.Fatalf("DeleteByID(again) err=%v, want %v", err, memberrepoport.ErrNotFound)
	}
	if _, err := repo.GetByID(ctx, 2); !errors.Is(err, memberrepoport.ErrNotFound) {
		t.Fatalf("GetByID(deleted) err=%v, want %v", err, memberrepoport.ErrNotFound)
	}
	assertOrder(t, repo, 3)
}

func assertOrder(t *testing.T, repo memberrepoport.Repository, want ...domain.MemberID) {
	t.Helper()
	ms, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	got := make([]domain.MemberID, 0, len(ms))
	for _, m := range ms {
		got = append(got, m.ID)
	}
	if len(got) != len(want) {
		t.Fatalf("order=%v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order=%v, want %v", got, want)
		}
	}
}
