// Package vms provides the virtual machine inventory check.
package vms

import (
	"net/http"
	"strconv"

	"github.com/probekit/check-vcenter/internal/plugin"
	"github.com/probekit/check-vcenter/internal/vcenter"
)

// Name is the check mode name.
const Name = "vms"

// VM power states reported by the vSphere Automation API.
const (
	PoweredOn  = "POWERED_ON"
	PoweredOff = "POWERED_OFF"
	Suspended  = "SUSPENDED"
)

// VM is one entry of the /api/vcenter/vm listing.
type VM struct {
	Name       string `json:"name"`
	PowerState string `json:"power_state"`
}

// GetDescription returns the check description.
func GetDescription() plugin.Description {
	return plugin.Description{
		Name:        Name,
		Description: "Check power state of all virtual machines in vCenter",
		Version:     "1.0.0",
	}
}

// Run fetches the VM listing, invalidates the session and classifies the
// result.
func Run(session *vcenter.Session, strict bool) (*plugin.Result, error) {
	var items []VM
	if err := session.Query(http.MethodGet, "/api/vcenter/vm", nil, &items); err != nil {
		return nil, err
	}
	if err := session.Destroy(); err != nil {
		return nil, err
	}
	return Classify(items, strict), nil
}

// Classify counts VMs per power state. Power state alone never raises the
// severity: the result is OK unless strict mode hits an unrecognized state.
func Classify(items []VM, strict bool) *plugin.Result {
	total := len(items)
	var on, off, suspended int

	status := plugin.StatusOK
	for _, vm := range items {
		switch vm.PowerState {
		case PoweredOn:
			on++
		case PoweredOff:
			off++
		case Suspended:
			suspended++
		default:
			if strict {
				status = plugin.Combine(plugin.StatusUnknown, status)
			}
		}
	}

	totalStr := strconv.Itoa(total)
	return &plugin.Result{
		Status: status,
		Summary: "Total VMs: " + totalStr + ", On: " + strconv.Itoa(on) +
			", Off: " + strconv.Itoa(off) + ", Suspended: " + strconv.Itoa(suspended),
		PerfData: []plugin.PerfDatum{
			{Label: "vm_on", Value: strconv.Itoa(on), Min: "0", Max: totalStr},
			{Label: "vm_off", Value: strconv.Itoa(off), Min: "0", Max: totalStr},
			{Label: "vm_suspended", Value: strconv.Itoa(suspended), Min: "0", Max: totalStr},
			{Label: "vm_total", Value: totalStr},
		},
	}
}
