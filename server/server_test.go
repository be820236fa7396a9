package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/revelaction/syncomp/infer"
	"github.com/revelaction/syncomp/logger"
	sent "github.com/revelaction/syncomp/sentence"
	"github.com/revelaction/syncomp/stat"
	"github.com/revelaction/syncomp/storage/filesystem"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := filesystem.NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	var records []sent.Record
	for i := 1; i <= 5; i++ {
		typ := sent.Native
		if i > 3 {
			typ = sent.Translation
		}
		records = append(records, sent.Record{DocId: i, Type: typ, TUnits: i, WordLen: 2 * i, Text: "s"})
	}
	if err := store.WriteRecords(records); err != nil {
		t.Fatal(err)
	}
	if err := store.WriteFit(&infer.Result{RunId: "r1", CreatedAt: time.Now(), Null: []float64{1, 2, 3}}); err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(NewRouter(NewHandler(store, logger.NewDiscard()), []string{"*"}))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, srv *httptest.Server, path string, v any) *http.Response {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if v != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("%s: decode: %v", path, err)
		}
	}
	return resp
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	var body map[string]string
	resp := get(t, srv, "/health", &body)
	if resp.StatusCode != http.StatusOK || body["status"] != "ok" {
		t.Errorf("unexpected health %d %v", resp.StatusCode, body)
	}
}

func TestRecordsPaging(t *testing.T) {
	srv := newTestServer(t)

	var page RecordPage
	resp := get(t, srv, "/v1/records?limit=2&offset=1", &page)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	if page.Total != 5 || len(page.Records) != 2 || page.Records[0].DocId != 2 {
		t.Errorf("unexpected page %+v", page)
	}

	page = RecordPage{}
	get(t, srv, "/v1/records?type=translation", &page)
	if page.Total != 2 || page.Records[0].DocId != 4 {
		t.Errorf("unexpected filtered page %+v", page)
	}

	page = RecordPage{}
	get(t, srv, "/v1/records?offset=10", &page)
	if page.Total != 5 || page.Records == nil || len(page.Records) != 0 {
		t.Errorf("expected empty page past the end, got %+v", page)
	}
}

func TestRecordsBadRequest(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/v1/records?limit=0", "/v1/records?offset=-1", "/v1/records?type=latin"} {
		if resp := get(t, srv, path, nil); resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", path, resp.StatusCode)
		}
	}
}

func TestRecord(t *testing.T) {
	srv := newTestServer(t)

	var rec sent.Record
	resp := get(t, srv, "/v1/records/3", &rec)
	if resp.StatusCode != http.StatusOK || rec.TUnits != 3 {
		t.Errorf("unexpected record %d %+v", resp.StatusCode, rec)
	}

	if resp := get(t, srv, "/v1/records/42", nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestSummary(t *testing.T) {
	srv := newTestServer(t)

	var st stat.Stats
	get(t, srv, "/v1/summary?type=native", &st)
	if st.NumSentences != 3 || st.TypeCounts[sent.Native] != 3 {
		t.Errorf("unexpected summary %+v", st)
	}
}

func TestFits(t *testing.T) {
	srv := newTestServer(t)

	var list []infer.Result
	get(t, srv, "/v1/fits", &list)
	if len(list) != 1 || list[0].RunId != "r1" || list[0].Null != nil {
		t.Errorf("unexpected fits %+v", list)
	}

	var res infer.Result
	get(t, srv, "/v1/fits/r1", &res)
	if len(res.Null) != 3 {
		t.Errorf("expected full null distribution, got %+v", res)
	}

	if resp := get(t, srv, "/v1/fits/nope", nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestCORS(t *testing.T) {
	srv := newTestServer(t)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/health", nil)
	req.Header.Set("Origin", "http://example.com")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected wildcard origin, got %q", got)
	}
}
