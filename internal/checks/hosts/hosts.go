// Package hosts provides the hypervisor host inventory check.
package hosts

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/probekit/check-vcenter/internal/plugin"
	"github.com/probekit/check-vcenter/internal/vcenter"
)

// Name is the check mode name.
const Name = "hosts"

// Host power states reported by the vSphere Automation API.
const (
	PoweredOn  = "POWERED_ON"
	PoweredOff = "POWERED_OFF"
	Standby    = "STANDBY"
)

// Host connection states reported by the vSphere Automation API.
const (
	Connected     = "CONNECTED"
	Disconnected  = "DISCONNECTED"
	NotResponding = "NOT_RESPONDING"
)

// Host is one entry of the /api/vcenter/host listing.
type Host struct {
	Name            string `json:"name"`
	PowerState      string `json:"power_state"`
	ConnectionState string `json:"connection_state"`
}

// tally accumulates counts and affected host names across one listing pass.
type tally struct {
	on, off, standby int
	offNames         []string
	standbyNames     []string

	connected, disconnected, notResponding int
	disconNames                            []string
	notrespNames                           []string
}

// GetDescription returns the check description.
func GetDescription() plugin.Description {
	return plugin.Description{
		Name:        Name,
		Description: "Check power and connection state of all ESXi hosts in vCenter",
		Version:     "1.0.0",
	}
}

// Run fetches the host listing, invalidates the session and classifies the
// result.
func Run(session *vcenter.Session, strict bool) (*plugin.Result, error) {
	var items []Host
	if err := session.Query(http.MethodGet, "/api/vcenter/host", nil, &items); err != nil {
		return nil, err
	}
	if err := session.Destroy(); err != nil {
		return nil, err
	}
	return Classify(items, strict), nil
}

// Classify evaluates connection state before power state. A NOT_RESPONDING
// host raises WARNING and skips power state entirely: an unreachable host
// cannot report a trustworthy power reading.
func Classify(items []Host, strict bool) *plugin.Result {
	total := len(items)
	var t tally

	status := plugin.StatusOK
	for _, h := range items {
		switch h.ConnectionState {
		case Connected:
			t.connected++
		case Disconnected:
			t.disconnected++
			t.disconNames = append(t.disconNames, h.Name)
		case NotResponding:
			t.notResponding++
			t.notrespNames = append(t.notrespNames, h.Name)
			status = plugin.Combine(plugin.StatusWarning, status)
			continue
		default:
			if strict {
				status = plugin.Combine(plugin.StatusUnknown, status)
			}
		}

		switch h.PowerState {
		case PoweredOn:
			t.on++
		case PoweredOff:
			t.off++
			t.offNames = append(t.offNames, h.Name)
		case Standby:
			t.standby++
			t.standbyNames = append(t.standbyNames, h.Name)
		default:
			if strict {
				status = plugin.Combine(plugin.StatusUnknown, status)
			}
		}
	}

	summary := fmt.Sprintf(" %d Hosts total - Power On: %d, Off: %d%s, Standby: %d%s"+
		" - Connected: %d, Disconnected: %d%s, Not responding: %d%s",
		total,
		t.on, t.off, nameList(t.offNames), t.standby, nameList(t.standbyNames),
		t.connected, t.disconnected, nameList(t.disconNames), t.notResponding, nameList(t.notrespNames))

	totalStr := strconv.Itoa(total)
	return &plugin.Result{
		Status:  status,
		Summary: summary,
		PerfData: []plugin.PerfDatum{
			{Label: "power_on", Value: strconv.Itoa(t.on), Min: "0", Max: totalStr},
			{Label: "power_off", Value: strconv.Itoa(t.off), Min: "0", Max: totalStr},
			{Label: "power_standby", Value: strconv.Itoa(t.standby), Min: "0", Max: totalStr},
			{Label: "conn_connected", Value: strconv.Itoa(t.connected), Min: "0", Max: totalStr},
			{Label: "conn_disconnected", Value: strconv.Itoa(t.disconnected), Min: "0", Max: totalStr},
			{Label: "conn_notresp", Value: strconv.Itoa(t.notResponding), Min: "0", Max: totalStr},
		},
	}
}

// nameList renders " (h1, h2)" for a non-empty list and "" otherwise.
func nameList(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return " (" + strings.Join(names, ", ") + ")"
}
