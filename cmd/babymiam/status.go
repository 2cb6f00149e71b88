// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BabyMiam Contributors

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/PourroyJean/babymiam-sub000/internal/config"
	"github.com/PourroyJean/babymiam-sub000/internal/store"
)

// ServiceStatus holds the health information reported by the status command.
type ServiceStatus struct {
	Live             bool   `json:"live"`
	Ready            bool   `json:"ready"`
	MigrationVersion uint   `json:"migration_version"`
	MigrationDirty   bool   `json:"migration_dirty"`
	Error            string `json:"error,omitempty"`
}

// statusConfig holds configuration for the status command.
type statusConfig struct {
	jsonOutput bool
	timeout    time.Duration
}

// NewStatusCmd creates the status subcommand.
func NewStatusCmd() *cobra.Command {
	cfg := &statusConfig{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show health of a running BabyMiam server",
		Long: `Query the observability listener's health probes and the database
migration version of a running BabyMiam server.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, cfg)
		},
	}

	cmd.Flags().BoolVar(&cfg.jsonOutput, "json", false, "output status as JSON")
	cmd.Flags().DurationVar(&cfg.timeout, "timeout", 5*time.Second, "probe timeout")

	return cmd
}

func runStatus(cmd *cobra.Command, statusCfg *statusConfig) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return oops.Code("CONFIG_LOAD_FAILED").Wrap(err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), statusCfg.timeout)
	defer cancel()

	status := ServiceStatus{
		Live:  probe(ctx, probeURL(cfg.Observability.Addr, "/healthz/liveness")),
		Ready: probe(ctx, probeURL(cfg.Observability.Addr, "/healthz/readiness")),
	}

	if migrator, migErr := store.NewMigrator(cfg.Database.URL); migErr == nil {
		version, dirty, versionErr := migrator.Version()
		if versionErr != nil {
			status.Error = versionErr.Error()
		} else {
			status.MigrationVersion = version
			status.MigrationDirty = dirty
		}
		//nolint:errcheck // status probe, nothing to do about a close failure
		migrator.Close()
	} else {
		status.Error = migErr.Error()
	}

	if statusCfg.jsonOutput {
		out, marshalErr := json.MarshalIndent(status, "", "  ")
		if marshalErr != nil {
			return oops.Code("STATUS_MARSHAL_FAILED").Wrap(marshalErr)
		}
		cmd.Println(string(out))
		return nil
	}

	cmd.Printf("liveness:  %s\n", yesNo(status.Live))
	cmd.Printf("readiness: %s\n", yesNo(status.Ready))
	if status.Error != "" {
		cmd.Printf("migrations: error (%s)\n", status.Error)
	} else if status.MigrationDirty {
		cmd.Printf("migrations: version %d (dirty)\n", status.MigrationVersion)
	} else {
		cmd.Printf("migrations: version %d\n", status.MigrationVersion)
	}
	return nil
}

// probeURL builds a probe URL from a listen address, substituting localhost
// for wildcard hosts.
func probeURL(addr, path string) string {
	host := addr
	if strings.HasPrefix(addr, ":") {
		host = "localhost" + addr
	}
	return fmt.Sprintf("http://%s%s", host, path)
}

func probe(ctx context.Context, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	//nolint:errcheck // probe body is discarded
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func yesNo(ok bool) string {
	if ok {
		return "ok"
	}
	return "unreachable"
}
