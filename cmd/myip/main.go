// Command `myip` prints the caller's public-facing IP address.
//
// The address is discovered by asking remote services that echo back the
// address they saw the request come from: DNS servers with special query
// names (OpenDNS, Google) and plain HTTP origins (ipify, icanhazip).
// Strategies are tried strictly in the configured order and a failing one
// simply hands over to the next.
//
// Usage:
//
//	myip              - Print the first public address found
//	myip -4           - Restrict the lookup to IPv4
//	myip -6           - Restrict the lookup to IPv6
//	myip -4 -6        - Resolve both families, concurrently
//	myip --details    - Also print which service produced the address
//	myip --all        - Show every attempt, successes and failures
//	myip version      - Show version information
//
// Examples:
//
//	myip                              - 203.0.113.5
//	myip -6                           - 2001:db8::1
//	myip --all                        - table of every strategy's outcome
//
// The timeout covers one whole attempt per address family and can be set
// with --timeout or in ~/.myip/config.yaml.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/lc/myip/internal/buildinfo"
	"github.com/lc/myip/internal/config"
	ilog "github.com/lc/myip/internal/log"
	"github.com/lc/myip/pkg/pubip"
	"github.com/lc/myip/pkg/pubip/dnsip"
	"github.com/lc/myip/pkg/pubip/httpip"
)

func main() {
	cfg, err := config.New().Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	var (
		useV4   bool
		useV6   bool
		timeout time.Duration
		details bool
		all     bool
	)

	root := &cobra.Command{
		Use:   "myip",
		Short: "Discover your public IP address",
		Long: `myip discovers the public IP address of the machine it runs on by asking
remote services that echo back the address your request came from. It tries
DNS-based services first and falls back to HTTP origins, in the order set in
~/.myip/config.yaml.`,
		Example:       "myip -4 --details",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			resolver, err := buildResolver(cfg)
			if err != nil {
				return err
			}
			if timeout == 0 {
				timeout = cfg.Resolution.Timeout
			}
			versions := requestedVersions(useV4, useV6)

			if all {
				return printAll(resolver, versions, timeout)
			}
			return printFirst(resolver, versions, timeout, details)
		},
	}
	root.Flags().BoolVarP(&useV4, "ipv4", "4", false, "resolve an IPv4 address")
	root.Flags().BoolVarP(&useV6, "ipv6", "6", false, "resolve an IPv6 address")
	root.Flags().DurationVar(&timeout, "timeout", 0, "budget per address family (default from config)")
	root.Flags().BoolVar(&details, "details", false, "print which service produced the address")
	root.Flags().BoolVar(&all, "all", false, "show every attempt instead of the first success")

	// ---- version command ----
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("version: %s\n", buildinfo.Version)
			fmt.Printf("commit: %s\n", buildinfo.Commit)
		},
	}

	root.AddCommand(versionCmd)
	if err := root.Execute(); err != nil {
		color.New(color.FgHiRed).Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// requestedVersions maps the -4/-6 flags onto the address families to
// resolve. Asking for both runs two independent attempts.
func requestedVersions(useV4, useV6 bool) []pubip.Version {
	switch {
	case useV4 && useV6:
		return []pubip.Version{pubip.V4, pubip.V6}
	case useV4:
		return []pubip.Version{pubip.V4}
	case useV6:
		return []pubip.Version{pubip.V6}
	default:
		return []pubip.Version{pubip.Any}
	}
}

// printFirst resolves each requested family, concurrently when there is more
// than one, and prints the first address found per family.
func printFirst(resolver pubip.Resolver, versions []pubip.Version, timeout time.Duration, details bool) error {
	var stats pubip.Stats
	counted := pubip.WithStats(resolver, &stats)

	results := make([]pubip.Resolution, len(versions))
	found := make([]bool, len(versions))

	grp, ctx := errgroup.WithContext(context.Background())
	for i, version := range versions {
		i, version := i, version
		grp.Go(func() error {
			attemptCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			results[i], found[i] = pubip.FirstResolution(attemptCtx, counted, version)
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return err
	}

	ilog.Debugf("resolution finished: %d attempts, %d failed",
		stats.Attempts.Load(), stats.Failures.Load())

	var missing []string
	for i, version := range versions {
		if !found[i] {
			missing = append(missing, familyName(version))
			continue
		}
		fmt.Println(results[i].Addr)
		if details {
			printDetails(results[i].Details)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("no %s address found", strings.Join(missing, " or "))
	}
	return nil
}

// familyName renders a version for error messages; the unrestricted case
// reads better as "public" than as "any".
func familyName(version pubip.Version) string {
	if version == pubip.Any {
		return "public"
	}
	return version.String()
}

func printDetails(details pubip.Details) {
	faint := color.New(color.Faint)
	switch d := details.(type) {
	case dnsip.Details:
		faint.Printf("  via %s query for %s @ %s\n", d.Method, d.Name, d.Server)
	case httpip.Details:
		faint.Printf("  via %s response from %s\n", d.Method, d.URL)
	default:
		faint.Printf("  via %s\n", details.Strategy())
	}
}

// printAll drains the full stream for each family and renders every item,
// failures included.
func printAll(resolver pubip.Resolver, versions []pubip.Version, timeout time.Duration) error {
	var failed []string
	for _, version := range versions {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		resolutions := pubip.Drain(ctx, pubip.Resolve(resolver, version))
		cancel()

		color.New(color.Bold).Printf("ATTEMPTS (%s):\n", version)
		if len(resolutions) == 0 {
			color.Yellow("No services available for this address family.")
			failed = append(failed, familyName(version))
			continue
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Strategy", "Endpoint", "Result"})
		table.SetHeaderColor(
			tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiCyanColor},
			tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiCyanColor},
			tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiCyanColor},
		)
		table.SetBorder(false)

		succeeded := false
		for _, res := range resolutions {
			table.Append(row(res))
			succeeded = succeeded || res.OK()
		}
		table.Render()

		if !succeeded {
			failed = append(failed, familyName(version))
			if err := pubip.Errors(resolutions); err != nil {
				ilog.Debugf("all strategies failed for %s: %v", version, err)
			}
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("no %s address found", strings.Join(failed, " or "))
	}
	return nil
}

func row(res pubip.Resolution) []string {
	strategy, endpoint := provenance(res)
	if res.OK() {
		return []string{strategy, endpoint, color.GreenString(res.Addr.String())}
	}
	return []string{strategy, endpoint, color.RedString(res.Err.Error())}
}

// provenance names the strategy and endpoint an item came from, from its
// Details when present or from a wrapped StrategyError otherwise.
func provenance(res pubip.Resolution) (strategy, endpoint string) {
	strategy, endpoint = "-", "-"
	switch d := res.Details.(type) {
	case dnsip.Details:
		return d.Strategy(), d.Server
	case httpip.Details:
		return d.Strategy(), d.URL
	case nil:
	default:
		strategy = d.Strategy()
	}
	var strategyErr *pubip.StrategyError
	if errors.As(res.Err, &strategyErr) {
		return strategyErr.Strategy, strategyErr.Endpoint
	}
	return strategy, endpoint
}

// buildResolver assembles the strategy chain from the configured order.
func buildResolver(cfg *config.Config) (pubip.Resolver, error) {
	var resolvers pubip.Resolvers
	for _, name := range cfg.Resolution.Order {
		switch name {
		case config.StrategyDNS:
			resolvers = append(resolvers, dnsip.All())
		case config.StrategyHTTP:
			resolvers = append(resolvers, httpResolver(cfg.HTTP))
		default:
			return nil, fmt.Errorf("unknown strategy %q in resolution order", name)
		}
	}
	return resolvers, nil
}

func httpResolver(cfg config.HTTPConfig) pubip.Resolver {
	if len(cfg.Endpoints) == 0 {
		return httpip.All()
	}
	endpoints := make([]httpip.Endpoint, 0, len(cfg.Endpoints))
	for _, e := range cfg.Endpoints {
		endpoints = append(endpoints, httpip.Endpoint{
			URL:     e.URL,
			Method:  extractMethod(e.Extract),
			Version: endpointVersion(e.Version),
		})
	}
	return httpip.New(endpoints)
}

// Config validation guarantees the names below; unset values fall back to
// the least surprising choice.
func extractMethod(name string) httpip.ExtractMethod {
	switch name {
	case "quoted":
		return httpip.StripQuotes
	case "json":
		return httpip.JSONIPField
	default:
		return httpip.PlainText
	}
}

func endpointVersion(name string) pubip.Version {
	switch name {
	case "4":
		return pubip.V4
	case "6":
		return pubip.V6
	default:
		return pubip.Any
	}
}
