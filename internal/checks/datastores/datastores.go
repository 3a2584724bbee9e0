// Package datastores provides the datastore usage check.
package datastores

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	units "github.com/docker/go-units"
	"github.com/probekit/check-vcenter/internal/plugin"
	"github.com/probekit/check-vcenter/internal/vcenter"
)

// Name is the check mode name.
const Name = "datastores"

// Datastores above this usage percentage raise WARNING.
const usageWarnPct = 97

// Datastore is one entry of the /api/vcenter/datastore listing.
type Datastore struct {
	Name      string `json:"name"`
	Capacity  int64  `json:"capacity"`
	FreeSpace int64  `json:"free_space"`
}

// GetDescription returns the check description.
func GetDescription() plugin.Description {
	return plugin.Description{
		Name:        Name,
		Description: "Check usage of all datastores in vCenter",
		Version:     "1.0.0",
	}
}

// Run fetches the datastore listing, invalidates the session and classifies
// the result.
func Run(session *vcenter.Session) (*plugin.Result, error) {
	var items []Datastore
	if err := session.Query(http.MethodGet, "/api/vcenter/datastore", nil, &items); err != nil {
		return nil, err
	}
	if err := session.Destroy(); err != nil {
		return nil, err
	}
	return Classify(items)
}

// Classify computes the usage percentage of every datastore. Usage at or
// above the warning threshold raises WARNING and adds the datastore to the
// summary; every datastore emits a perfdata token regardless.
func Classify(items []Datastore) (*plugin.Result, error) {
	status := plugin.StatusOK

	var summary strings.Builder
	fmt.Fprintf(&summary, "Total datastores: %d", len(items))

	perfData := make([]plugin.PerfDatum, 0, len(items))
	for _, ds := range items {
		if ds.Capacity == 0 {
			return nil, &vcenter.DataError{
				Msg: fmt.Sprintf("datastore '%s' reports zero capacity", ds.Name),
			}
		}

		usedPct := roundPct(float64(ds.Capacity-ds.FreeSpace) / float64(ds.Capacity) * 100)
		pctStr := formatPct(usedPct)

		slog.Debug("datastore usage",
			"name", ds.Name,
			"capacity", units.BytesSize(float64(ds.Capacity)),
			"free", units.BytesSize(float64(ds.FreeSpace)),
			"used_pct", pctStr)

		if usedPct >= usageWarnPct {
			status = plugin.Combine(plugin.StatusWarning, status)
			fmt.Fprintf(&summary, ", %s: %s%%", ds.Name, pctStr)
		}

		perfData = append(perfData, plugin.PerfDatum{
			Label: ds.Name,
			Value: pctStr,
			UOM:   "%",
			Min:   "0",
			Max:   "100",
		})
	}

	return &plugin.Result{
		Status:   status,
		Summary:  summary.String(),
		PerfData: perfData,
	}, nil
}

// roundPct rounds to two decimal places with round-half-to-even.
func roundPct(pct float64) float64 {
	return math.RoundToEven(pct*100) / 100
}

// formatPct renders the shortest decimal representation but always keeps at
// least one fractional digit, so a full 97% prints as "97.0".
func formatPct(pct float64) string {
	s := strconv.FormatFloat(pct, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
