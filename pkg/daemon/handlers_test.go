package daemon

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/beltcalc/beltcalc/pkg/capacity"
	"github.com/beltcalc/beltcalc/pkg/config"
	"github.com/beltcalc/beltcalc/pkg/events"
	"github.com/beltcalc/beltcalc/pkg/types"
)

func setupTestDaemon(t *testing.T) *gin.Engine {
	t.Helper()
	conf = config.NewFileFromConfig(&config.RawFileConfig{}, filepath.Join(t.TempDir(), "beltcalc.json"))
	swapEngine("test")
	return setupRoutes()
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestPostAngle(t *testing.T) {
	router := setupTestDaemon(t)

	tests := []struct {
		name           string
		body           string
		wantStatus     int
		wantDegrees    float64
		wantRecognised bool
	}{
		{name: "label", body: `{"label":"20° (xx)"}`, wantStatus: http.StatusOK, wantDegrees: 20, wantRecognised: true},
		{name: "flat", body: `{"label":"0° (flat)"}`, wantStatus: http.StatusOK, wantDegrees: 0, wantRecognised: true},
		{name: "number", body: `{"label":35}`, wantStatus: http.StatusOK, wantDegrees: 35, wantRecognised: true},
		{name: "empty falls back", body: `{"label":""}`, wantStatus: http.StatusOK, wantDegrees: capacity.DefaultAngle},
		{name: "bad json", body: `{"label":`, wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, "/angle", tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var resp types.AngleResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if resp.Degrees != tt.wantDegrees || resp.Recognised != tt.wantRecognised {
				t.Errorf("got %+v, want %v/%v", resp, tt.wantDegrees, tt.wantRecognised)
			}
		})
	}
}

func TestPostKFactor(t *testing.T) {
	router := setupTestDaemon(t)

	w := doJSON(t, router, http.MethodPost, "/k-factor", `{"trough":"20°","surcharge":20}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", w.Code, w.Body.String())
	}
	var resp types.KFactorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.K != 0.1245 || resp.Flat {
		t.Errorf("got %+v, want k=0.1245 troughed", resp)
	}
}

func TestPostCapacity(t *testing.T) {
	router := setupTestDaemon(t)

	body := `{"widthMm":600,"trough":"20° (xx)","surcharge":"20°","speedMps":2.0,"densityTpm3":1.6}`
	w := doJSON(t, router, http.MethodPost, "/capacity", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", w.Code, w.Body.String())
	}

	var resp types.CapacityResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	want := capacity.Capacity(600, 20, 20, 2.0, 1.6)
	if resp.Result != want {
		t.Errorf("Result = %+v, want %+v", resp.Result, want)
	}
	if math.Abs(resp.Result.MassFlowTPH-344.33) > 0.05 {
		t.Errorf("MassFlowTPH = %v, want ~344.33", resp.Result.MassFlowTPH)
	}
	if resp.CrossSection.K != 0.1245 || resp.Geometry.TroughDeg != 20 {
		t.Errorf("unexpected diagnostics: %+v %+v", resp.CrossSection, resp.Geometry)
	}
}

func TestPostCrossSectionFlat(t *testing.T) {
	router := setupTestDaemon(t)

	w := doJSON(t, router, http.MethodPost, "/cross-section", `{"widthMm":1000,"trough":"Flat","surcharge":20}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", w.Code, w.Body.String())
	}
	var resp types.CrossSectionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.CrossSection.Flat || resp.CrossSection.AreaM2 != capacity.Area(1000, 0, 20) {
		t.Errorf("unexpected cross section: %+v", resp.CrossSection)
	}
}

func TestPostSize(t *testing.T) {
	router := setupTestDaemon(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantWidth  float64
	}{
		{name: "standard series", body: `{"trough":"35°","surcharge":"20°","speedMps":2.5,"densityTpm3":1.2,"targetTph":300}`, wantStatus: http.StatusOK, wantWidth: 650},
		{name: "custom widths", body: `{"trough":35,"surcharge":20,"speedMps":2.5,"densityTpm3":1.2,"targetTph":300,"widths":[900,1100]}`, wantStatus: http.StatusOK, wantWidth: 900},
		{name: "zero target", body: `{"trough":35,"surcharge":20,"targetTph":0}`, wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, "/size", tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var resp types.SizeResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if resp.Selection.WidthMM != tt.wantWidth || !resp.Selection.Sufficient {
				t.Errorf("Selection = %+v, want width %v", resp.Selection, tt.wantWidth)
			}
		})
	}
}

func TestSetDefaultAngle(t *testing.T) {
	router := setupTestDaemon(t)

	if w := doJSON(t, router, http.MethodPut, "/default-angle", `120`); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if w := doJSON(t, router, http.MethodPut, "/default-angle", `30`); w.Code != http.StatusCreated {
		t.Fatalf("status = %d (%s)", w.Code, w.Body.String())
	}
	if engine().DefaultAngle() != 30 {
		t.Errorf("engine default angle = %v, want 30", engine().DefaultAngle())
	}

	w := doJSON(t, router, http.MethodPost, "/angle", `{"label":"?"}`)
	var resp types.AngleResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Degrees != 30 || resp.Recognised {
		t.Errorf("got %+v, want the new default", resp)
	}

	w = doJSON(t, router, http.MethodGet, "/config", "")
	var raw config.RawFileConfig
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatal(err)
	}
	if raw.DefaultAngle == nil || *raw.DefaultAngle != 30 {
		t.Errorf("config defaultAngle = %v", raw.DefaultAngle)
	}
}

func TestSetTrace(t *testing.T) {
	router := setupTestDaemon(t)

	if w := doJSON(t, router, http.MethodPut, "/trace", `true`); w.Code != http.StatusCreated {
		t.Fatalf("status = %d (%s)", w.Code, w.Body.String())
	}
	if !engine().Traced() {
		t.Errorf("engine should be traced")
	}
	if w := doJSON(t, router, http.MethodPut, "/trace", `"yes"`); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGetTableAndMetrics(t *testing.T) {
	router := setupTestDaemon(t)

	w := doJSON(t, router, http.MethodGet, "/table", "")
	var table capacity.Table
	if err := json.Unmarshal(w.Body.Bytes(), &table); err != nil {
		t.Fatal(err)
	}
	if table.Troughed[20][20] != 0.1245 {
		t.Errorf("table[20][20] = %v", table.Troughed[20][20])
	}

	doJSON(t, router, http.MethodPost, "/capacity", `{"widthMm":800,"trough":"0°","surcharge":10}`)
	w = doJSON(t, router, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	for _, s := range []string{"beltcalc_calculations_total", `beltcalc_fallbacks_total{kind="flat_belt"}`} {
		if !strings.Contains(w.Body.String(), s) {
			t.Errorf("metrics output is missing %s", s)
		}
	}
}

func TestWebsocketSession(t *testing.T) {
	router := setupTestDaemon(t)
	srv := httptest.NewServer(router)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	req := `{"id":"slider-1","widthMm":600,"trough":"20°","surcharge":20,"speedMps":2,"densityTpm3":1.6}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(req)); err != nil {
		t.Fatal(err)
	}
	var reply wsReply
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatal(err)
	}
	if reply.ID != "slider-1" || reply.Capacity == nil {
		t.Fatalf("unexpected reply: %+v", reply)
	}
	if reply.Capacity.Result != capacity.Capacity(600, 20, 20, 2, 1.6) {
		t.Errorf("Result = %+v", reply.Capacity.Result)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"widthMm":`)); err != nil {
		t.Fatal(err)
	}
	reply = wsReply{}
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatal(err)
	}
	if reply.Error == "" {
		t.Errorf("expected an error reply for malformed JSON")
	}

	// Wait for the session to subscribe before triggering an event.
	for i := 0; i < 100 && hub.Subscribers() == 0; i++ {
		time.Sleep(10 * time.Millisecond)
	}
	swapEngine("reload")

	var ev events.Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatal(err)
	}
	if ev.Name != events.EngineChanged {
		t.Errorf("event = %q", ev.Name)
	}
	payload, err := events.DecodeAs[events.EngineChangedEvent](ev)
	if err != nil || payload.Reason != "reload" {
		t.Errorf("payload = %+v, %v", payload, err)
	}
}

func TestOutOfRangeInputsAreRejected(t *testing.T) {
	router := setupTestDaemon(t)

	tests := []struct {
		name string
		path string
		body string
	}{
		{name: "capacity width", path: "/capacity", body: `{"widthMm":1e300,"trough":20,"surcharge":20,"speedMps":2,"densityTpm3":1.6}`},
		{name: "capacity speed", path: "/capacity", body: `{"widthMm":600,"trough":20,"surcharge":20,"speedMps":1e306,"densityTpm3":1e6}`},
		{name: "cross section", path: "/cross-section", body: `{"widthMm":1e300,"trough":20,"surcharge":20}`},
		{name: "size", path: "/size", body: `{"trough":20,"surcharge":20,"speedMps":2,"densityTpm3":1.6,"targetTph":100,"widths":[1e300]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, tt.path, tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (%s)", w.Code, w.Body.String())
			}
			if !strings.Contains(w.Body.String(), "out of range") {
				t.Errorf("body = %q, want an out of range message", w.Body.String())
			}
		})
	}
}

func TestWebsocketSurvivesOutOfRangeRequest(t *testing.T) {
	router := setupTestDaemon(t)
	srv := httptest.NewServer(router)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	requests := []struct {
		body      string
		wantID    string
		wantError bool
	}{
		{body: `{"id":"huge","widthMm":1e300,"trough":20,"surcharge":20,"speedMps":2,"densityTpm3":1.6}`, wantID: "huge", wantError: true},
		{body: `{"id":"normal","widthMm":600,"trough":20,"surcharge":20,"speedMps":2,"densityTpm3":1.6}`, wantID: "normal"},
	}
	for _, r := range requests {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(r.body)); err != nil {
			t.Fatal(err)
		}
		var reply wsReply
		if err := conn.ReadJSON(&reply); err != nil {
			t.Fatalf("reply to %s: %v", r.wantID, err)
		}
		if reply.ID != r.wantID {
			t.Errorf("ID = %q, want %q", reply.ID, r.wantID)
		}
		if r.wantError {
			if reply.Error == "" || reply.Capacity != nil {
				t.Errorf("reply to %s = %+v, want an error", r.wantID, reply)
			}
			continue
		}
		if reply.Capacity == nil || reply.Capacity.Result != capacity.Capacity(600, 20, 20, 2, 1.6) {
			t.Errorf("reply to %s = %+v", r.wantID, reply)
		}
	}
}
