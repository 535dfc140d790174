package api

import (
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v5"
	"gorgonia.org/tensor"

	"github.com/samcharles93/wordrnn/internal/model"
	"github.com/samcharles93/wordrnn/internal/vocab"
)

// cycleModel always predicts the next vocabulary entry.
type cycleModel struct{}

func (cycleModel) ResetState() {}

func (cycleModel) Step(input *tensor.Dense) (*tensor.Dense, error) {
	n, v, steps, err := model.Dims(input)
	if err != nil {
		return nil, err
	}
	in, err := model.Float32s(input)
	if err != nil {
		return nil, err
	}
	out, data := model.Zeros(n, v, steps)
	for s := range n {
		for t := range steps {
			for j := range v {
				if in[(s*v+j)*steps+t] == 1 {
					data[(s*v+(j+1)%v)*steps+t] = 1
				}
			}
		}
	}
	return out, nil
}

func (cycleModel) Train(_, _ *tensor.Dense) (float64, error) { return 0, nil }
func (cycleModel) NumParameters() int                        { return 42 }

func newTestEcho(t *testing.T) (*echo.Echo, *Server) {
	t.Helper()
	v, err := vocab.New([]string{"猫", "が", "好き", "。"})
	if err != nil {
		t.Fatalf("vocab.New: %v", err)
	}
	server := NewServer(Config{
		Model:      cycleModel{},
		Vocabulary: v,
		Rand:       rand.New(rand.NewSource(1)),
		Limits:     Limits{DefaultSamples: 2, DefaultLength: 3, MaxSamples: 4, MaxLength: 10},
	})
	e := echo.New()
	server.Register(e)
	return e, server
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestHealth(t *testing.T) {
	t.Parallel()

	e, _ := newTestEcho(t)
	rec := doJSON(t, e, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	got := decode[HealthResponse](t, rec)
	if got.Status != "ok" || got.Vocabulary != 4 || got.Parameters != 42 {
		t.Fatalf("unexpected health response %+v", got)
	}
}

func TestCreateGetDeleteSamplesLifecycle(t *testing.T) {
	t.Parallel()

	e, server := newTestEcho(t)
	rec := doJSON(t, e, http.MethodPost, "/v1/samples", `{"samples":3,"length":4,"prime":"猫"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("create status: got %d body=%s", rec.Code, rec.Body.String())
	}
	created := decode[SamplesResponse](t, rec)
	if !strings.HasPrefix(created.ID, "smp_") || created.Object != "samples" {
		t.Fatalf("unexpected id/object: %+v", created)
	}
	if created.Seed != "猫" || created.Length != 4 || len(created.Samples) != 3 {
		t.Fatalf("unexpected response %+v", created)
	}
	for _, s := range created.Samples {
		if s != "猫:\nが好き。猫" {
			t.Fatalf("unexpected sample %q", s)
		}
	}
	if server.store.Len() != 1 {
		t.Fatalf("expected stored response, have %d", server.store.Len())
	}

	getRec := doJSON(t, e, http.MethodGet, "/v1/samples/"+created.ID, "")
	if getRec.Code != http.StatusOK {
		t.Fatalf("get status: got %d", getRec.Code)
	}
	if got := decode[SamplesResponse](t, getRec); got.ID != created.ID || len(got.Samples) != 3 {
		t.Fatalf("unexpected stored response %+v", got)
	}

	delRec := doJSON(t, e, http.MethodDelete, "/v1/samples/"+created.ID, "")
	if delRec.Code != http.StatusOK {
		t.Fatalf("delete status: got %d", delRec.Code)
	}
	if rec := doJSON(t, e, http.MethodGet, "/v1/samples/"+created.ID, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete: got %d", rec.Code)
	}
	if rec := doJSON(t, e, http.MethodDelete, "/v1/samples/"+created.ID, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("second delete: got %d", rec.Code)
	}
}

func TestCreateSamplesDefaults(t *testing.T) {
	t.Parallel()

	e, _ := newTestEcho(t)
	rec := doJSON(t, e, http.MethodPost, "/v1/samples", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
	got := decode[SamplesResponse](t, rec)
	if len(got.Samples) != 2 || got.Length != 3 {
		t.Fatalf("expected defaults, got %+v", got)
	}
}

func TestCreateSamplesSeedIsReproducible(t *testing.T) {
	t.Parallel()

	e, _ := newTestEcho(t)
	body := `{"samples":1,"length":2,"seed":7}`
	a := decode[SamplesResponse](t, doJSON(t, e, http.MethodPost, "/v1/samples", body))
	b := decode[SamplesResponse](t, doJSON(t, e, http.MethodPost, "/v1/samples", body))
	if a.Seed != b.Seed || a.Samples[0] != b.Samples[0] {
		t.Fatalf("seeded requests differ: %+v vs %+v", a, b)
	}
	if a.ID == b.ID {
		t.Fatal("expected distinct ids")
	}
}

func TestCreateSamplesRejectsInvalidRequests(t *testing.T) {
	t.Parallel()

	e, _ := newTestEcho(t)
	tests := []struct {
		name string
		body string
	}{
		{"wrong type", `{"samples":"x"}`},
		{"unknown field", `{"model":"x"}`},
		{"too many samples", `{"samples":5}`},
		{"zero samples", `{"samples":0}`},
		{"negative length", `{"length":-1}`},
		{"too long", `{"length":11}`},
		{"bad temperature", `{"temperature":0}`},
		{"unknown prime", `{"prime":"犬"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, e, http.MethodPost, "/v1/samples", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
			}
			body := decode[map[string]ResponseError](t, rec)
			if body["error"].Type != "invalid_request_error" || body["error"].Message == "" {
				t.Fatalf("unexpected error body %+v", body)
			}
		})
	}
}

func TestVocabulary(t *testing.T) {
	t.Parallel()

	e, _ := newTestEcho(t)
	rec := doJSON(t, e, http.MethodGet, "/v1/vocabulary", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	snap := decode[vocab.Snapshot](t, rec)
	if snap.Size != 4 || strings.Join(snap.Tokens, "|") != "猫|が|好き|。" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}

	for i, tok := range snap.Tokens {
		rec := doJSON(t, e, http.MethodGet, "/v1/vocabulary/"+url.PathEscape(tok), "")
		if rec.Code != http.StatusOK {
			t.Fatalf("token %q: status %d", tok, rec.Code)
		}
		if got := decode[TokenResponse](t, rec); got.Token != tok || got.Index != i {
			t.Fatalf("token %q: got %+v want index %d", tok, got, i)
		}
	}

	rec = doJSON(t, e, http.MethodGet, "/v1/vocabulary/"+url.PathEscape("犬"), "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown token: got %d", rec.Code)
	}
}

func TestSampleStoreEvictsOldest(t *testing.T) {
	t.Parallel()

	store := NewSampleStore(2)
	for i := range 3 {
		store.Save(SamplesResponse{ID: fmt.Sprintf("id%d", i)})
	}
	if store.Len() != 2 {
		t.Fatalf("Len: got %d want 2", store.Len())
	}
	if _, ok := store.Get("id0"); ok {
		t.Fatal("expected oldest entry to be evicted")
	}
	if _, ok := store.Get("id2"); !ok {
		t.Fatal("expected newest entry to be kept")
	}
	if NewSampleStore(0).limit != DefaultStoreLimit {
		t.Fatal("expected default limit")
	}
}
