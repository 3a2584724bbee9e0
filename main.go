package main

import (
	"os"

	"github.com/probekit/check-vcenter/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		// Usage and flag errors follow the monitoring-plugin convention: UNKNOWN.
		os.Exit(3)
	}
}
