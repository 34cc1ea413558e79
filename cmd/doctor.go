package cmd

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/autoreply/internal/config"
)

func doctorCmd() *cobra.Command {
	var online bool
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check system environment and configuration health",
		Run: func(cmd *cobra.Command, args []string) {
			runDoctor(online)
		},
	}
	cmd.Flags().BoolVar(&online, "online", false, "contact each enabled channel to verify its credentials")
	return cmd
}

func runDoctor(online bool) {
	fmt.Println("autoreply doctor")
	fmt.Printf("  Version:  %s\n", Version)
	fmt.Printf("  OS:       %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Printf("  Go:       %s\n", runtime.Version())
	fmt.Println()

	// Config
	cfgPath := resolveConfigPath()
	fmt.Printf("  Config:   %s", cfgPath)
	if _, err := os.Stat(cfgPath); err != nil {
		fmt.Println(" (NOT FOUND, using defaults)")
	} else {
		fmt.Println(" (OK)")
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("  Config load error: %s\n", err)
		return
	}

	// Store
	fmt.Println()
	fmt.Println("  Keyword store:")
	fmt.Printf("    %-12s %s\n", "Backend:", cfg.Storage.Backend)
	fmt.Printf("    %-12s %s\n", "Location:", storeLocation(cfg))
	checkStore(cfg)

	// Channels
	fmt.Println()
	fmt.Println("  Channels:")
	for _, e := range channelEntries(cfg) {
		checkChannel(e.Name, e.Enabled, e.HasCredentials)
	}
	if online {
		fmt.Println()
		fmt.Println("  Channel credentials:")
		verifyEnabledChannels(context.Background(), cfg)
	}

	// Permissions
	fmt.Println()
	fmt.Println("  Permissions:")
	fmt.Printf("    %-12s %d\n", "Admins:", len(cfg.Permissions.Admins))
	fmt.Printf("    %-12s %v\n", "Trusted:", cfg.Permissions.TrustedChannels)

	// Observability
	fmt.Println()
	metricsAddr := cfg.Metrics.Listen
	if metricsAddr == "" {
		metricsAddr = "(disabled)"
	}
	fmt.Printf("  Metrics:   %s\n", metricsAddr)
	if cfg.Telemetry.Enabled {
		fmt.Printf("  Tracing:   %s via %s\n", cfg.Telemetry.Endpoint, cfg.Telemetry.Protocol)
	} else {
		fmt.Println("  Tracing:   (disabled)")
	}

	fmt.Println()
	fmt.Println("Doctor check complete.")
}

func checkStore(cfg *config.Config) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ks, err := openKeywordStore(ctx, cfg)
	if err != nil {
		fmt.Printf("    %-12s FAILED: %s\n", "Open:", err)
		return
	}
	defer ks.Close()

	entries, err := ks.LoadKeywords(ctx)
	if err != nil {
		fmt.Printf("    %-12s FAILED: %s\n", "Load:", err)
		return
	}
	fmt.Printf("    %-12s %d keywords\n", "Load:", len(entries))
}

func checkChannel(name string, enabled, hasCredentials bool) {
	status := "disabled"
	if enabled && hasCredentials {
		status = "enabled"
	} else if enabled {
		status = "enabled (missing credentials)"
	}
	fmt.Printf("    %-12s %s\n", name+":", status)
}
