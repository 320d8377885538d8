package httpapi

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/oapi-codegen/nullable"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/Overland-East-Bay/club-roster/internal/app/roster"
	"github.com/Overland-East-Bay/club-roster/internal/domain"
	clockport "github.com/Overland-East-Bay/club-roster/internal/ports/out/clock"
	"github.com/Overland-East-Bay/club-roster/internal/ports/out/idempotency"
	"github.com/Overland-East-Bay/club-roster/internal/ports/out/rosterfeed"
)

const maxBodyBytes = 1 << 20

// Server adapts roster.Store to HTTP. It holds no roster state of its own.
type Server struct {
	Roster *roster.Store
	Feed   rosterfeed.Source
	Idem   idempotency.Store
	Clock  clockport.Clock

	// StreamWriteTimeout bounds each snapshot write on /members/stream.
	StreamWriteTimeout time.Duration

	// idemMu serializes keyed adds so concurrent retries cannot both miss the store.
	idemMu sync.Mutex

	closeOnce sync.Once
	closed    chan struct{}
}

func NewServer(store *roster.Store, feed rosterfeed.Source, idem idempotency.Store, clk clockport.Clock) *Server {
	return &Server{
		Roster:             store,
		Feed:               feed,
		Idem:               idem,
		Clock:              clk,
		StreamWriteTimeout: 5 * time.Second,
		closed:             make(chan struct{}),
	}
}

func (s *Server) ListMembers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, snapshotFromFeed(s.Roster.Snapshot()))
}

func (s *Server) GetMember(w http.ResponseWriter, r *http.Request) {
	id, err := bindMemberID(r)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	m, err := s.Roster.Get(r.Context(), id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, memberFromDomain(m))
}

// AddMember handles POST /members.
//
// With an Idempotency-Key header, the first successful response is stored
// and replayed for retries carrying the same body. Reusing the key with a
// different body is rejected with 409.
func (s *Server) AddMember(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeAppError(w, r, bodyTooLarge())
		return
	}

	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if key == "" || s.Idem == nil {
		status, resp, err := s.addMember(r, body)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, status, resp)
		return
	}

	s.idemMu.Lock()
	defer s.idemMu.Unlock()

	fp := idempotency.Fingerprint{
		Key:    idempotency.Key(key),
		Method: http.MethodPost,
		Route:  "/members",
	}
	bodyHash := hashBody(body)
	rec, ok, err := s.Idem.Get(r.Context(), fp)
	if err != nil {
		writeAppError(w, r, fmt.Errorf("idempotency lookup: %w", err))
		return
	}
	if ok {
		if rec.BodyHash != bodyHash {
			writeError(w, r, http.StatusConflict, "IDEMPOTENCY_KEY_REUSED", "Idempotency-Key was already used with a different request body", nil)
			return
		}
		w.Header().Set("Content-Type", rec.ContentType)
		w.Header().Set("Idempotency-Replayed", "true")
		w.WriteHeader(rec.StatusCode)
		_, _ = w.Write(rec.Body)
		return
	}

	status, resp, err := s.addMember(r, body)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(resp); err != nil {
		writeAppError(w, r, err)
		return
	}
	if err := s.Idem.Put(r.Context(), fp, idempotency.Record{
		StatusCode:  status,
		ContentType: "application/json",
		BodyHash:    bodyHash,
		Body:        buf.Bytes(),
		CreatedAt:   s.Clock.Now(),
	}); err != nil {
		loggerFrom(r).Warn().Err(err).Msg("idempotency record not stored")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) addMember(r *http.Request, body []byte) (int, Member, error) {
	var req MemberInput
	if err := decodeBody(body, &req); err != nil {
		return 0, Member{}, err
	}
	in, err := req.toAddInput()
	if err != nil {
		return 0, Member{}, err
	}
	m, err := s.Roster.Add(r.Context(), in)
	if err != nil {
		return 0, Member{}, err
	}
	return http.StatusCreated, memberFromDomain(m), nil
}

func (s *Server) UpdateMember(w http.ResponseWriter, r *http.Request) {
	id, err := bindMemberID(r)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	var req MemberInput
	if err := readBody(w, r, &req); err != nil {
		writeAppError(w, r, err)
		return
	}
	m, err := req.toDomain(id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	updated, err := s.Roster.Update(r.Context(), id, m)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	out := UpdateResult{Updated: updated}
	if updated {
		out.Member = nullable.NewNullableWithValue(memberFromDomain(m))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) DeleteMember(w http.ResponseWriter, r *http.Request) {
	id, err := bindMemberID(r)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	deleted, err := s.Roster.DeleteByID(r.Context(), id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DeleteResult{Deleted: deleted})
}

// DeleteMatchingMember removes the member whose fields all equal the body.
func (s *Server) DeleteMatchingMember(w http.ResponseWriter, r *http.Request) {
	var req DeleteMatchInput
	if err := readBody(w, r, &req); err != nil {
		writeAppError(w, r, err)
		return
	}
	m, err := req.MemberInput.toDomain(domain.MemberID(req.ID))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	deleted, err := s.Roster.Delete(r.Context(), m)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DeleteResult{Deleted: deleted})
}

func (s *Server) SortMembers(w http.ResponseWriter, r *http.Request) {
	var by string
	if err := bindQuery(r, "by", true, &by); err != nil {
		writeAppError(w, r, err)
		return
	}
	var (
		snap rosterfeed.Snapshot
		err  error
	)
	switch by {
	case "surname":
		snap, err = s.Roster.SortBySurname(r.Context())
	case "experience":
		snap, err = s.Roster.SortByExperience(r.Context())
	default:
		err = roster.InvalidArgument("by", "must be surname or experience")
	}
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshotFromFeed(snap))
}

func (s *Server) SearchMembers(w http.ResponseWriter, r *http.Request) {
	var q string
	if err := bindQuery(r, "q", false, &q); err != nil {
		writeAppError(w, r, err)
		return
	}
	ms, err := s.Roster.FindBySurname(r.Context(), q)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResult{Query: q, Members: membersFromDomain(ms)})
}

func readBody(w http.ResponseWriter, r *http.Request, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return bodyTooLarge()
	}
	return decodeBody(body, dst)
}

func bodyTooLarge() *roster.Error {
	return &roster.Error{
		Status:  http.StatusRequestEntityTooLarge,
		Code:    roster.CodeInvalidArgument,
		Message: "request body too large",
		Details: map[string]any{"limitBytes": maxBodyBytes},
	}
}

func decodeBody(body []byte, dst any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return roster.InvalidArgument("body", "missing request body")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return roster.InvalidArgument("body", err.Error())
	}
	return nil
}

func hashBody(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

func loggerFrom(r *http.Request) *zerolog.Logger {
	return hlog.FromRequest(r)
}
