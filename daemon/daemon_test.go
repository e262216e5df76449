package daemon

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path"
	"strings"
	"testing"

	"pairdist/common"
	"pairdist/db"
)

const exampleInput = "3   4\n4   3\n2   5\n1   3\n3   9\n3   3\n"

// Ignore any ~/.pairdist so that tests never reach real stores.
func TestMain(m *testing.M) {
	common.LoadConfig(strings.NewReader(""))
	os.Exit(m.Run())
}

func startServer(t *testing.T, history *db.History) (*httptest.Server, *service) {
	t.Helper()
	var sinks db.Sinks
	if history != nil {
		sinks = append(sinks, history)
	}
	svc, err := newService(4, history, sinks)
	if err != nil {
		t.Fatal(err)
	}
	mux := http.NewServeMux()
	newAPI(mux, svc, "0.0.0-test")
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		srv.Close()
		svc.close()
	})
	return srv, svc
}

func postReport(t *testing.T, url, body string) *db.Result {
	t.Helper()
	resp, err := http.Post(url, "text/plain", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	buf, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Status %d: %s", resp.StatusCode, buf)
	}
	r := new(db.Result)
	if err := json.Unmarshal(buf, r); err != nil {
		t.Fatalf("%v: %s", err, buf)
	}
	return r
}

func TestPostReport(t *testing.T) {
	srv, svc := startServer(t, nil)

	r := postReport(t, srv.URL+"/report", exampleInput)
	if r.Distance != 11 || r.Similarity == nil || *r.Similarity != 31 || r.Pairs != 6 {
		t.Fatalf("Result: %+v", r)
	}
	if r.Source != defaultSource {
		t.Fatalf("Source: %s", r.Source)
	}

	r2 := postReport(t, srv.URL+"/report?source=mine", exampleInput)
	if r2.RunId == r.RunId || r2.Checksum != r.Checksum || r2.Source != "mine" {
		t.Fatalf("Second result: %+v", r2)
	}
	if svc.cache.Len() != 1 {
		t.Fatalf("Cache size %d after identical inputs", svc.cache.Len())
	}

	r3 := postReport(t, srv.URL+"/report?similarity=false", exampleInput)
	if r3.Distance != 11 || r3.Similarity != nil {
		t.Fatalf("Distance only: %+v", r3)
	}
	if svc.cache.Len() != 2 {
		t.Fatalf("Cache size %d", svc.cache.Len())
	}
}

// The second input has the same CRC-64 as the first but different contents, and must be analyzed on
// its own.
func TestPostReportChecksumCollision(t *testing.T) {
	a := "1   1\n"
	b := "5   5\n" + "cZ\r\r\xb0\x90z\x1e"
	if common.Checksum([]byte(a)) != common.Checksum([]byte(b)) {
		t.Fatalf("Inputs do not collide")
	}
	srv, svc := startServer(t, nil)

	ra := postReport(t, srv.URL+"/report", a)
	if ra.Pairs != 1 || ra.Distance != 0 || *ra.Similarity != 1 {
		t.Fatalf("Result A: %+v", ra)
	}
	rb := postReport(t, srv.URL+"/report", b)
	if rb.Checksum != ra.Checksum {
		t.Fatalf("Checksums differ: %x %x", ra.Checksum, rb.Checksum)
	}
	if rb.Pairs != 1 || rb.Distance != 0 || *rb.Similarity != 25 || rb.BadLines != 1 {
		t.Fatalf("Result B: %+v", rb)
	}
	if svc.cache.Len() != 2 {
		t.Fatalf("Cache size %d", svc.cache.Len())
	}
}

func TestPostReportTolerant(t *testing.T) {
	srv, _ := startServer(t, nil)
	r := postReport(t, srv.URL+"/report", "1 2\nbad 3\n\n")
	if r.Pairs != 2 || len(r.Diagnostics) != 1 {
		t.Fatalf("Result: %+v", r)
	}
	// left [1,0] right [2,3]: sorted |0-2| + |1-3| = 4, no common values
	if r.Distance != 4 || *r.Similarity != 0 {
		t.Fatalf("Result: %+v", r)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	srv, _ := startServer(t, nil)
	resp, err := http.Get(srv.URL + "/history")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("Status without history: %d", resp.StatusCode)
	}

	h, err := db.OpenHistory(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	srv, _ = startServer(t, h)
	first := postReport(t, srv.URL+"/report", exampleInput)
	second := postReport(t, srv.URL+"/report", "1 1\n")

	resp, err = http.Get(srv.URL + "/history?n=1")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var rs []db.Result
	if err := json.NewDecoder(resp.Body).Decode(&rs); err != nil {
		t.Fatal(err)
	}
	if len(rs) != 1 || rs[0].RunId != second.RunId {
		t.Fatalf("History: %+v (first %s second %s)", rs, first.RunId, second.RunId)
	}
}

func TestVersionEndpoint(t *testing.T) {
	srv, _ := startServer(t, nil)
	resp, err := http.Get(srv.URL + "/version")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var v struct {
		Version string `json:"version"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatal(err)
	}
	if v.Version != "0.0.0-test" {
		t.Fatalf("Version: %q", v.Version)
	}
}

func TestValidate(t *testing.T) {
	dc := New("x")
	dc.port = 70000
	dc.cacheSize = 1
	if dc.Validate() == nil {
		t.Fatalf("Bad port accepted")
	}
	dc = New("x")
	dc.port = 9000
	dc.cacheSize = 0
	if dc.Validate() == nil {
		t.Fatalf("Zero cache accepted")
	}
}

func TestReloadPasswords(t *testing.T) {
	fn := path.Join(t.TempDir(), "passwords")
	if err := os.WriteFile(fn, []byte("a:b\n"), 0600); err != nil {
		t.Fatal(err)
	}
	dc := New("x")
	dc.port = 9000
	dc.cacheSize = 1
	dc.authFile = fn
	if err := dc.Validate(); err != nil {
		t.Fatal(err)
	}
	if !dc.authenticator.Authenticate("a", "b") {
		t.Fatalf("Initial password rejected")
	}
	if err := os.WriteFile(fn, []byte("a:c\n"), 0600); err != nil {
		t.Fatal(err)
	}
	dc.reload()
	if dc.authenticator.Authenticate("a", "b") || !dc.authenticator.Authenticate("a", "c") {
		t.Fatalf("Passwords not reloaded")
	}
}
