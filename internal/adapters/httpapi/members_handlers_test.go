package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	memclock "github.com/Overland-East-Bay/club-roster/internal/adapters/memory/clock"
	memidempotency "github.com/Overland-East-Bay/club-roster/internal/adapters/memory/idempotency"
	memmemberrepo "github.com/Overland-East-Bay/club-roster/internal/adapters/memory/memberrepo"
	memrosterfeed "github.com/Overland-East-Bay/club-roster/internal/adapters/memory/rosterfeed"
	"github.com/Overland-East-Bay/club-roster/internal/app/roster"
)

func newTestRouter(t *testing.T) (http.Handler, *Server) {
	t.Helper()

	clk := memclock.NewManualClock(time.Unix(100, 0).UTC())
	feed := memrosterfeed.NewFeed()
	store, err := roster.NewStore(context.Background(), memmemberrepo.NewRepo(), feed, clk)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	api := NewServer(store, feed, memidempotency.NewStore(clk, time.Hour), clk)
	t.Cleanup(api.CloseStreams)
	return NewRouter(api, RouterOptions{Logger: zerolog.Nop()}), api
}

func do(t *testing.T, h http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %T: %v (body=%s)", v, err, rr.Body.String())
	}
	return v
}

func listIDs(t *testing.T, h http.Handler) []int64 {
	t.Helper()
	rr := do(t, h, http.MethodGet, "/members", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("GET /members status=%d body=%s", rr.Code, rr.Body.String())
	}
	snap := decode[Snapshot](t, rr)
	out := make([]int64, 0, len(snap.Members))
	for _, m := range snap.Members {
		out = append(out, m.ID)
	}
	return out
}

func assertErrorCode(t *testing.T, rr *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("status=%d, want %d (body=%s)", rr.Code, status, rr.Body.String())
	}
	er := decode[ErrorResponse](t, rr)
	if er.Error.Code != code {
		t.Fatalf("code=%q, want %q", er.Error.Code, code)
	}
}

func equalIDs(got []int64, want ...int64) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	h, _ := newTestRouter(t)
	rr := do(t, h, http.MethodGet, "/healthz", "", nil)
	if rr.Code != http.StatusOK || rr.Body.String() != "ok" {
		t.Fatalf("healthz status=%d body=%q", rr.Code, rr.Body.String())
	}
}

func TestMembers_ListReturnsSeedSnapshot(t *testing.T) {
	t.Parallel()

	h, _ := newTestRouter(t)
	rr := do(t, h, http.MethodGet, "/members", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	snap := decode[Snapshot](t, rr)
	if snap.Version != 1 || len(snap.Members) != 2 || len(snap.Visible) != 2 {
		t.Fatalf("snapshot=%+v", snap)
	}
	if snap.Members[0].Surname != "aaa" || snap.Members[1].ExperienceYears != 0.5 {
		t.Fatalf("members=%+v", snap.Members)
	}
}

func TestMembers_AddAcceptsNumberOrString(t *testing.T) {
	t.Parallel()

	h, _ := newTestRouter(t)

	rr := do(t, h, http.MethodPost, "/members", `{"surname":"ccc","givenName":"c","patronymic":"c","vehicleType":"X","experienceYears":1.5}`, nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	m := decode[Member](t, rr)
	if m.ID != 3 || m.ExperienceYears != 1.5 {
		t.Fatalf("member=%+v", m)
	}

	rr = do(t, h, http.MethodPost, "/members", `{"surname":"ddd","experienceYears":" 4 "}`, nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	m = decode[Member](t, rr)
	if m.ID != 4 || m.ExperienceYears != 4 {
		t.Fatalf("member=%+v", m)
	}

	if got := listIDs(t, h); !equalIDs(got, 1, 2, 3, 4) {
		t.Fatalf("ids=%v, want [1 2 3 4]", got)
	}
}

func TestMembers_AddRejectsUnparsableExperience(t *testing.T) {
	t.Parallel()

	h, _ := newTestRouter(t)

	for _, body := range []string{
		`{"surname":"x","experienceYears":"abc"}`,
		`{"surname":"x","experienceYears":true}`,
		`{"surname":"x"}`,
		`{"surname":`,
		``,
	} {
		rr := do(t, h, http.MethodPost, "/members", body, nil)
		assertErrorCode(t, rr, http.StatusUnprocessableEntity, roster.CodeInvalidArgument)
		er := decode[ErrorResponse](t, rr)
		if !er.Error.RequestId.IsSpecified() {
			t.Fatalf("body %q: requestId missing from error envelope", body)
		}
	}
	if got := listIDs(t, h); !equalIDs(got, 1, 2) {
		t.Fatalf("ids=%v after rejected adds, want [1 2]", got)
	}
}

func TestMembers_AddIdempotencyKeyReplays(t *testing.T) {
	t.Parallel()

	h, _ := newTestRouter(t)
	body := `{"surname":"ccc","experienceYears":1}`
	hdr := map[string]string{"Idempotency-Key": "k-1"}

	first := do(t, h, http.MethodPost, "/members", body, hdr)
	if first.Code != http.StatusCreated {
		t.Fatalf("first status=%d body=%s", first.Code, first.Body.String())
	}
	second := do(t, h, http.MethodPost, "/members", body, hdr)
	if second.Code != http.StatusCreated {
		t.Fatalf("replay status=%d", second.Code)
	}
	if second.Header().Get("Idempotency-Replayed") != "true" {
		t.Fatalf("replay header missing")
	}
	if first.Body.String() != second.Body.String() {
		t.Fatalf("replay body=%s, want %s", second.Body.String(), first.Body.String())
	}
	if got := listIDs(t, h); !equalIDs(got, 1, 2, 3) {
		t.Fatalf("ids=%v, want [1 2 3]", got)
	}

	conflict := do(t, h, http.MethodPost, "/members", `{"surname":"other","experienceYears":1}`, hdr)
	assertErrorCode(t, conflict, http.StatusConflict, "IDEMPOTENCY_KEY_REUSED")
}

func TestMembers_Get(t *testing.T) {
	t.Parallel()

	h, _ := newTestRouter(t)

	rr := do(t, h, http.MethodGet, "/members/2", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if m := decode[Member](t, rr); m.Surname != "bbb" {
		t.Fatalf("member=%+v", m)
	}

	assertErrorCode(t, do(t, h, http.MethodGet, "/members/9", "", nil), http.StatusNotFound, roster.CodeMemberNotFound)
	assertErrorCode(t, do(t, h, http.MethodGet, "/members/abc", "", nil), http.StatusUnprocessableEntity, roster.CodeInvalidArgument)
}

func TestMembers_Update(t *testing.T) {
	t.Parallel()

	h, _ := newTestRouter(t)

	rr := do(t, h, http.MethodPut, "/members/1", `{"surname":"zzz","givenName":"z","experienceYears":"7"}`, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	res := decode[UpdateResult](t, rr)
	if !res.Updated {
		t.Fatalf("updated=false, want true")
	}
	m, err := res.Member.Get()
	if err != nil || m.ID != 1 || m.Surname != "zzz" || m.ExperienceYears != 7 {
		t.Fatalf("member=%+v err=%v", m, err)
	}
	if got := listIDs(t, h); !equalIDs(got, 1, 2) {
		t.Fatalf("ids=%v, want position preserved", got)
	}

	rr = do(t, h, http.MethodPut, "/members/42", `{"surname":"ghost","experienceYears":1}`, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), `"member"`) {
		t.Fatalf("no-op update returned a member: %s", rr.Body.String())
	}
	if res := decode[UpdateResult](t, rr); res.Updated {
		t.Fatalf("updated=true for unknown id")
	}

	assertErrorCode(t, do(t, h, http.MethodPut, "/members/1", `{"surname":"x","experienceYears":"x"}`, nil), http.StatusUnprocessableEntity, roster.CodeInvalidArgument)
}

func TestMembers_DeleteByID(t *testing.T) {
	t.Parallel()

	h, _ := newTestRouter(t)

	rr := do(t, h, http.MethodDelete, "/members/1", "", nil)
	if res := decode[DeleteResult](t, rr); rr.Code != http.StatusOK || !res.Deleted {
		t.Fatalf("status=%d deleted=%v", rr.Code, res.Deleted)
	}
	rr = do(t, h, http.MethodDelete, "/members/1", "", nil)
	if res := decode[DeleteResult](t, rr); rr.Code != http.StatusOK || res.Deleted {
		t.Fatalf("second delete status=%d deleted=%v", rr.Code, res.Deleted)
	}
	if got := listIDs(t, h); !equalIDs(got, 2) {
		t.Fatalf("ids=%v, want [2]", got)
	}
}

func TestMembers_DeleteMatchRequiresExactFields(t *testing.T) {
	t.Parallel()

	h, _ := newTestRouter(t)

	stale := `{"id":2,"surname":"bbb","givenName":"bbb","patronymic":"bbb","vehicleType":"FEFG","experienceYears":0.6}`
	rr := do(t, h, http.MethodPost, "/members/delete", stale, nil)
	if res := decode[DeleteResult](t, rr); rr.Code != http.StatusOK || res.Deleted {
		t.Fatalf("stale delete status=%d deleted=%v", rr.Code, res.Deleted)
	}

	exact := `{"id":2,"surname":"bbb","givenName":"bbb","patronymic":"bbb","vehicleType":"FEFG","experienceYears":0.5}`
	rr = do(t, h, http.MethodPost, "/members/delete", exact, nil)
	if res := decode[DeleteResult](t, rr); rr.Code != http.StatusOK || !res.Deleted {
		t.Fatalf("exact delete status=%d deleted=%v", rr.Code, res.Deleted)
	}
	if got := listIDs(t, h); !equalIDs(got, 1) {
		t.Fatalf("ids=%v, want [1]", got)
	}
}

func TestMembers_Sort(t *testing.T) {
	t.Parallel()

	h, _ := newTestRouter(t)

	rr := do(t, h, http.MethodPost, "/members/sort?by=experience", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	snap := decode[Snapshot](t, rr)
	if len(snap.Members) != 2 || snap.Members[0].ID != 2 || snap.Members[1].ID != 1 {
		t.Fatalf("members=%+v, want [2 1]", snap.Members)
	}

	if rr := do(t, h, http.MethodPost, "/members/sort?by=surname", "", nil); rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if got := listIDs(t, h); !equalIDs(got, 1, 2) {
		t.Fatalf("ids=%v, want [1 2]", got)
	}

	assertErrorCode(t, do(t, h, http.MethodPost, "/members/sort?by=age", "", nil), http.StatusUnprocessableEntity, roster.CodeInvalidArgument)
	assertErrorCode(t, do(t, h, http.MethodPost, "/members/sort", "", nil), http.StatusUnprocessableEntity, roster.CodeInvalidArgument)
}

func TestMembers_SearchSetsVisibleFilter(t *testing.T) {
	t.Parallel()

	h, _ := newTestRouter(t)

	rr := do(t, h, http.MethodPost, "/members/search?q=bb", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	res := decode[SearchResult](t, rr)
	if res.Query != "bb" || len(res.Members) != 1 || res.Members[0].ID != 2 {
		t.Fatalf("search=%+v", res)
	}

	snap := decode[Snapshot](t, do(t, h, http.MethodGet, "/members", "", nil))
	if snap.Query != "bb" || len(snap.Members) != 2 || len(snap.Visible) != 1 {
		t.Fatalf("snapshot=%+v, want full members and one visible", snap)
	}

	rr = do(t, h, http.MethodPost, "/members/search", "", nil)
	if res := decode[SearchResult](t, rr); res.Query != "" || len(res.Members) != 2 {
		t.Fatalf("clear search=%+v", res)
	}
}

func TestMembers_OversizedBodyIs413Everywhere(t *testing.T) {
	t.Parallel()

	h, _ := newTestRouter(t)
	big := `{"surname":"` + strings.Repeat("x", maxBodyBytes) + `","experienceYears":1}`

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/members"},
		{http.MethodPut, "/members/1"},
		{http.MethodPost, "/members/delete"},
	} {
		rr := do(t, h, tc.method, tc.path, big, nil)
		if rr.Code != http.StatusRequestEntityTooLarge {
			t.Fatalf("%s %s status=%d, want 413", tc.method, tc.path, rr.Code)
		}
		if er := decode[ErrorResponse](t, rr); er.Error.Code != roster.CodeInvalidArgument {
			t.Fatalf("%s %s code=%q", tc.method, tc.path, er.Error.Code)
		}
	}
	if got := listIDs(t, h); !equalIDs(got, 1, 2) {
		t.Fatalf("ids=%v after oversized requests, want [1 2]", got)
	}
}
