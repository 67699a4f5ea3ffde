package api

import (
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/banshee-data/spectrum.report/internal/db"
	"github.com/banshee-data/spectrum.report/internal/fsutil"
	"github.com/banshee-data/spectrum.report/internal/monitoring"
	"github.com/banshee-data/spectrum.report/internal/serialport"
	"github.com/banshee-data/spectrum.report/internal/spectro"
	"github.com/banshee-data/spectrum.report/internal/testutil"
	"github.com/banshee-data/spectrum.report/internal/timeutil"
)

type serverFixture struct {
	port     *serialport.TestablePort
	factory  *serialport.MockFactory
	store    *spectro.Store
	bus      *spectro.Bus
	database *db.DB
	server   *Server
}

func newServerFixture(t *testing.T) *serverFixture {
	t.Helper()

	prev := monitoring.Logf
	monitoring.SetLogger(nil)
	t.Cleanup(func() { monitoring.SetLogger(prev) })

	port := serialport.NewTestablePort()
	factory := serialport.NewMockFactory(port)
	factory.Ports = []string{"/dev/ttyUSB0"}

	bus := spectro.NewBus()
	store := spectro.NewStore(bus)
	clock := timeutil.NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	controller := spectro.NewController(serialport.NewTransport(factory), store, bus, clock)

	database, err := db.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewDB() error: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	return &serverFixture{
		port:     port,
		factory:  factory,
		store:    store,
		bus:      bus,
		database: database,
		server:   NewServer(controller, store, bus, database),
	}
}

func TestHandlePorts(t *testing.T) {
	f := newServerFixture(t)

	rec := testutil.NewTestRecorder()
	f.server.ServeMux().ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/api/ports"))

	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var body map[string][]string
	testutil.DecodeJSON(t, rec, &body)
	if len(body["ports"]) != 1 || body["ports"][0] != "/dev/ttyUSB0" {
		t.Errorf("ports = %v", body["ports"])
	}
}

func TestHandleStatus_Disconnected(t *testing.T) {
	f := newServerFixture(t)

	rec := testutil.NewTestRecorder()
	f.server.ServeMux().ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/api/status"))

	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var status StatusResponse
	testutil.DecodeJSON(t, rec, &status)
	if status.Connected || status.Scanning || status.Samples != 0 {
		t.Errorf("status = %+v, want disconnected and empty", status)
	}
}

func TestHandleConnect(t *testing.T) {
	f := newServerFixture(t)
	mux := f.server.ServeMux()

	rec := testutil.NewTestRecorder()
	req := testutil.NewJSONRequest(t, http.MethodPost, "/api/connect",
		ConnectRequest{Port: "/dev/ttyUSB0", Baud: 115200})
	mux.ServeHTTP(rec, req)

	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	rec = testutil.NewTestRecorder()
	mux.ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/api/status"))
	var status StatusResponse
	testutil.DecodeJSON(t, rec, &status)
	if !status.Connected || status.Port != "/dev/ttyUSB0" || status.Baud != 115200 {
		t.Errorf("status after connect = %+v", status)
	}
}

func TestHandleConnect_Validation(t *testing.T) {
	f := newServerFixture(t)
	mux := f.server.ServeMux()

	rec := testutil.NewTestRecorder()
	mux.ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/api/connect"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusMethodNotAllowed)

	rec = testutil.NewTestRecorder()
	mux.ServeHTTP(rec, testutil.NewJSONRequest(t, http.MethodPost, "/api/connect", ConnectRequest{}))
	testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)

	rec = testutil.NewTestRecorder()
	mux.ServeHTTP(rec, testutil.NewJSONRequest(t, http.MethodPost, "/api/connect",
		ConnectRequest{Port: "/dev/ttyUSB0", Baud: 4800}))
	testutil.AssertStatusCode(t, rec.Code, http.StatusBadGateway)
}

func TestHandleScanStart_NotConnected(t *testing.T) {
	f := newServerFixture(t)

	rec := testutil.NewTestRecorder()
	f.server.ServeMux().ServeHTTP(rec, testutil.NewTestRequest(http.MethodPost, "/api/scan/start"))

	testutil.AssertStatusCode(t, rec.Code, http.StatusConflict)
}

func TestHandleScanStartStop(t *testing.T) {
	f := newServerFixture(t)
	mux := f.server.ServeMux()

	rec := testutil.NewTestRecorder()
	mux.ServeHTTP(rec, testutil.NewJSONRequest(t, http.MethodPost, "/api/connect",
		ConnectRequest{Port: "/dev/ttyUSB0", Baud: 9600}))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	rec = testutil.NewTestRecorder()
	mux.ServeHTTP(rec, testutil.NewTestRequest(http.MethodPost, "/api/scan/start"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	rec = testutil.NewTestRecorder()
	mux.ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/api/status"))
	var status StatusResponse
	testutil.DecodeJSON(t, rec, &status)
	if !status.Scanning {
		t.Errorf("status after scan start = %+v, want scanning", status)
	}

	rec = testutil.NewTestRecorder()
	mux.ServeHTTP(rec, testutil.NewTestRequest(http.MethodPost, "/api/scan/stop"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	if got := string(f.port.WrittenData()); got != "d#101#1002\nSTOP\n" {
		t.Errorf("instrument saw %q, want start then stop frame", got)
	}
}

func TestHandleSpectrumAndClear(t *testing.T) {
	f := newServerFixture(t)
	mux := f.server.ServeMux()

	f.store.Append(spectro.Sample{Wavelength: 500, Intensity: 800})

	rec := testutil.NewTestRecorder()
	mux.ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/api/spectrum"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var body struct {
		Samples []spectro.Sample `json:"samples"`
	}
	testutil.DecodeJSON(t, rec, &body)
	if len(body.Samples) != 1 || body.Samples[0].Wavelength != 500 {
		t.Errorf("samples = %+v", body.Samples)
	}

	rec = testutil.NewTestRecorder()
	mux.ServeHTTP(rec, testutil.NewTestRequest(http.MethodPost, "/api/spectrum/clear"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	if f.store.Len() != 0 {
		t.Errorf("store has %d samples after clear", f.store.Len())
	}
}

func TestHandleMetrics(t *testing.T) {
	f := newServerFixture(t)

	f.store.Append(spectro.Sample{Wavelength: 500, Intensity: 800})

	rec := testutil.NewTestRecorder()
	f.server.ServeMux().ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/api/metrics"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var body MetricsResponse
	testutil.DecodeJSON(t, rec, &body)
	if body.Metrics.PeakValue != 500 || body.Metrics.MaxIntensity != 800 {
		t.Errorf("metrics = %+v", body.Metrics)
	}
	if body.Text["peak_value"] != "PV is 500.00 nm" {
		t.Errorf("peak text = %q", body.Text["peak_value"])
	}
}

func TestHandleExportCSV(t *testing.T) {
	f := newServerFixture(t)
	mux := f.server.ServeMux()

	rec := testutil.NewTestRecorder()
	mux.ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/api/export.csv"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusNotFound)

	f.store.Append(spectro.Sample{Wavelength: 400, Intensity: 10})
	f.store.Append(spectro.Sample{Wavelength: 410, Intensity: 20})

	rec = testutil.NewTestRecorder()
	mux.ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/api/export.csv"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Content-Type = %q, want text/csv", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "spectrum-") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	want := "Wavelength,Intensity\n400,10\n410,20\n"
	if rec.Body.String() != want {
		t.Errorf("export body = %q, want %q", rec.Body.String(), want)
	}
}

func TestHandleExportSave(t *testing.T) {
	f := newServerFixture(t)
	mux := f.server.ServeMux()

	// Disabled until EnableFileExport is called.
	rec := testutil.NewTestRecorder()
	mux.ServeHTTP(rec, testutil.NewTestRequest(http.MethodPost, "/api/export/save"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusNotImplemented)

	fsys := fsutil.NewMemoryFileSystem()
	dir := t.TempDir()
	f.server.EnableFileExport(fsys, dir)

	rec = testutil.NewTestRecorder()
	mux.ServeHTTP(rec, testutil.NewTestRequest(http.MethodPost, "/api/export/save"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusNotFound)

	f.store.Append(spectro.Sample{Wavelength: 500, Intensity: 800})

	rec = testutil.NewTestRecorder()
	mux.ServeHTTP(rec, testutil.NewJSONRequest(t, http.MethodPost, "/api/export/save",
		ExportSaveRequest{Filename: "bench-run"}))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var body map[string]string
	testutil.DecodeJSON(t, rec, &body)
	if !strings.HasSuffix(body["path"], "bench-run.csv") {
		t.Errorf("path = %q", body["path"])
	}
	data, err := fsys.ReadFile(body["path"])
	testutil.AssertNoError(t, err)
	if !strings.HasPrefix(string(data), "Wavelength,Intensity\n") {
		t.Errorf("saved file = %q", data)
	}
}
