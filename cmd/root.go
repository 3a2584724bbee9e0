package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/probekit/check-vcenter/internal/checks"
	"github.com/probekit/check-vcenter/internal/checks/datastores"
	"github.com/probekit/check-vcenter/internal/checks/hosts"
	"github.com/probekit/check-vcenter/internal/checks/vms"
	"github.com/probekit/check-vcenter/internal/history"
	"github.com/probekit/check-vcenter/internal/plugin"
	"github.com/probekit/check-vcenter/internal/vcenter"
)

// Version is set at build time via -ldflags "-X github.com/probekit/check-vcenter/cmd.Version=..."
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:          "check-vcenter",
	Short:        "Icinga/Nagios plugin that checks a VMware vCenter",
	Long:         `check-vcenter checks a VMware vCenter via the vSphere Automation API.`,
	SilenceUsage: true,
	RunE:         run,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Flags().StringP("mode", "m", "", "Query mode (vms, hosts, datastores)")
	rootCmd.Flags().StringP("user", "u", "", "Username for vCenter")
	rootCmd.Flags().StringP("pass", "p", "", "Password for vCenter")
	rootCmd.Flags().String("url", "", "Base URL of vCenter")
	rootCmd.Flags().IntP("timeout", "t", 10, "API timeout in seconds")
	rootCmd.Flags().String("cacert", "/etc/ssl/certs/ca-bundle.crt", "Path to CA certificate file")
	rootCmd.Flags().Bool("debug", false, "Print debug information")
	rootCmd.Flags().Bool("strict", false, "Treat unrecognized inventory states as UNKNOWN")
	rootCmd.Flags().String("history", "", "Append check results to a SQLite database at this path")
	rootCmd.Flags().Bool("describe", false, "Output check mode descriptions as JSON array")
	rootCmd.Flags().BoolP("version", "v", false, "Print version and exit")
}

func run(cmd *cobra.Command, args []string) error {
	if v, _ := cmd.Flags().GetBool("version"); v {
		fmt.Printf("check-vcenter version %s\n", Version)
		return nil
	}
	if describe, _ := cmd.Flags().GetBool("describe"); describe {
		return json.NewEncoder(os.Stdout).Encode(checks.GetAllDescriptions())
	}

	mode, _ := cmd.Flags().GetString("mode")
	user, _ := cmd.Flags().GetString("user")
	pass, _ := cmd.Flags().GetString("pass")
	baseURL, _ := cmd.Flags().GetString("url")
	timeout, _ := cmd.Flags().GetInt("timeout")
	cacert, _ := cmd.Flags().GetString("cacert")
	debug, _ := cmd.Flags().GetBool("debug")
	strict, _ := cmd.Flags().GetBool("strict")
	historyPath, _ := cmd.Flags().GetString("history")

	switch mode {
	case vms.Name, hosts.Name, datastores.Name:
	case "":
		return fmt.Errorf("required flag \"mode\" not set")
	default:
		return fmt.Errorf("invalid mode %q (choose from vms, hosts, datastores)", mode)
	}
	if baseURL == "" {
		return fmt.Errorf("required flag \"url\" not set")
	}
	if user == "" {
		return fmt.Errorf("required flag \"user\" not set")
	}
	if pass == "" {
		return fmt.Errorf("required flag \"pass\" not set")
	}

	setupLogging(debug)

	cfg := vcenter.Config{
		BaseURL:  baseURL,
		User:     user,
		Password: pass,
		CACert:   cacert,
		Timeout:  time.Duration(timeout) * time.Second,
		Debug:    debug,
	}

	start := time.Now()

	session, err := vcenter.NewSession(cfg)
	if err != nil {
		exit(plugin.Fatal(err))
	}

	var result *plugin.Result
	switch mode {
	case vms.Name:
		result, err = vms.Run(session, strict)
	case hosts.Name:
		result, err = hosts.Run(session, strict)
	case datastores.Name:
		result, err = datastores.Run(session)
	}
	if err != nil {
		exit(plugin.Fatal(err))
	}

	recordHistory(historyPath, mode, result, time.Since(start))

	exit(result)
	return nil
}

// exit is the single place that writes the plugin line and terminates.
func exit(res *plugin.Result) {
	os.Exit(plugin.Exit(os.Stdout, res))
}

// setupLogging routes slog to stderr; stdout carries only the plugin line.
func setupLogging(debug bool) {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// recordHistory appends the result to the history database. Best effort: a
// failure is logged and never alters the plugin output or exit code.
func recordHistory(path, mode string, res *plugin.Result, duration time.Duration) {
	if path == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store, err := history.Open(ctx, path)
	if err != nil {
		slog.Warn("history database unavailable", "path", path, "error", err)
		return
	}
	defer store.Close()

	if err := store.Append(ctx, mode, res, duration); err != nil {
		slog.Warn("failed to record check result", "path", path, "error", err)
	}
}
