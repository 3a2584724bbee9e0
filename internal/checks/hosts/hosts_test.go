package hosts

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/probekit/check-vcenter/internal/plugin"
	"github.com/probekit/check-vcenter/internal/vcenter"
)

// A NOT_RESPONDING host raises WARNING and never contributes to any power
// state counter.
func TestClassifyNotRespondingShortCircuits(t *testing.T) {
	items := []Host{
		{Name: "h1", ConnectionState: NotResponding, PowerState: PoweredOn},
	}

	res := Classify(items, false)
	if res.Status != plugin.StatusWarning {
		t.Errorf("status = %v, want WARNING", res.Status)
	}
	if !strings.Contains(res.Summary, "Not responding: 1 (h1)") {
		t.Errorf("summary missing not-responding host: %q", res.Summary)
	}
	wantPerf := "'power_on'=0;;;0;1 'power_off'=0;;;0;1 'power_standby'=0;;;0;1" +
		" 'conn_connected'=0;;;0;1 'conn_disconnected'=0;;;0;1 'conn_notresp'=1;;;0;1"
	if got := plugin.FormatPerfData(res.PerfData); got != wantPerf {
		t.Errorf("perfdata = %q, want %q", got, wantPerf)
	}
}

// A powered-off host is reported by name but never raises the severity.
func TestClassifyPoweredOffIsOK(t *testing.T) {
	items := []Host{
		{Name: "h2", ConnectionState: Connected, PowerState: PoweredOff},
	}

	res := Classify(items, false)
	if res.Status != plugin.StatusOK {
		t.Errorf("status = %v, want OK", res.Status)
	}
	if !strings.Contains(res.Summary, "Off: 1 (h2)") {
		t.Errorf("summary missing powered-off host: %q", res.Summary)
	}
}

func TestClassifySummaryFormat(t *testing.T) {
	items := []Host{
		{Name: "esx01", ConnectionState: Connected, PowerState: PoweredOn},
		{Name: "esx02", ConnectionState: Connected, PowerState: PoweredOn},
		{Name: "esx03", ConnectionState: Connected, PowerState: PoweredOff},
		{Name: "esx04", ConnectionState: Disconnected, PowerState: Standby},
		{Name: "esx05", ConnectionState: NotResponding},
	}

	res := Classify(items, false)
	want := " 5 Hosts total - Power On: 2, Off: 1 (esx03), Standby: 1 (esx04)" +
		" - Connected: 3, Disconnected: 1 (esx04), Not responding: 1 (esx05)"
	if res.Summary != want {
		t.Errorf("summary = %q, want %q", res.Summary, want)
	}
	if res.Status != plugin.StatusWarning {
		t.Errorf("status = %v, want WARNING", res.Status)
	}
}

func TestClassifyEmptyListing(t *testing.T) {
	res := Classify(nil, false)
	if res.Status != plugin.StatusOK {
		t.Errorf("status = %v, want OK", res.Status)
	}
	want := " 0 Hosts total - Power On: 0, Off: 0, Standby: 0" +
		" - Connected: 0, Disconnected: 0, Not responding: 0"
	if res.Summary != want {
		t.Errorf("summary = %q, want %q", res.Summary, want)
	}
}

func TestClassifyUnrecognizedStates(t *testing.T) {
	items := []Host{
		{Name: "h1", ConnectionState: "MAINTENANCE", PowerState: PoweredOn},
	}

	// Default: the connection state is silently uncounted, power state still
	// evaluated.
	res := Classify(items, false)
	if res.Status != plugin.StatusOK {
		t.Errorf("status = %v, want OK", res.Status)
	}
	if !strings.Contains(res.Summary, "Power On: 1") {
		t.Errorf("power state should still be counted: %q", res.Summary)
	}

	// Strict: raises UNKNOWN.
	res = Classify(items, true)
	if res.Status != plugin.StatusUnknown {
		t.Errorf("strict status = %v, want UNKNOWN", res.Status)
	}
}

// UNKNOWN from strict mode never downgrades a WARNING raised earlier in the
// same pass.
func TestClassifyStrictKeepsWarning(t *testing.T) {
	items := []Host{
		{Name: "h1", ConnectionState: NotResponding},
		{Name: "h2", ConnectionState: "MAINTENANCE", PowerState: PoweredOn},
	}
	res := Classify(items, true)
	if res.Status != plugin.StatusWarning {
		t.Errorf("status = %v, want WARNING", res.Status)
	}
}

func TestRun(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/session" && r.Method == http.MethodPost:
			w.Write([]byte(`"tok"`))
		case r.URL.Path == "/api/session" && r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		case r.URL.Path == "/api/vcenter/host":
			w.Write([]byte(`[
				{"name":"esx01","power_state":"POWERED_ON","connection_state":"CONNECTED"},
				{"name":"esx02","power_state":"POWERED_ON","connection_state":"NOT_RESPONDING"}
			]`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	session, err := vcenter.NewSession(vcenter.Config{
		BaseURL: srv.URL,
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	res, err := Run(session, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Status != plugin.StatusWarning {
		t.Errorf("status = %v, want WARNING", res.Status)
	}
	if !strings.Contains(res.Summary, "Not responding: 1 (esx02)") {
		t.Errorf("unexpected summary: %q", res.Summary)
	}
	// The not-responding host must not appear in power counters.
	if !strings.Contains(res.Summary, "Power On: 1,") {
		t.Errorf("unexpected power count: %q", res.Summary)
	}
}
