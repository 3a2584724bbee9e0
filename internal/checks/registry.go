// Package checks provides the built-in check mode registry.
package checks

import (
	"github.com/probekit/check-vcenter/internal/checks/datastores"
	"github.com/probekit/check-vcenter/internal/checks/hosts"
	"github.com/probekit/check-vcenter/internal/checks/vms"
	"github.com/probekit/check-vcenter/internal/plugin"
)

// GetAllDescriptions returns descriptions of all built-in check modes.
func GetAllDescriptions() []plugin.Description {
	return []plugin.Description{
		vms.GetDescription(),
		hosts.GetDescription(),
		datastores.GetDescription(),
	}
}
