// NewsVani — Company News Analysis & Spoken Digest
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/newsvani/newsvani/api"
	"github.com/newsvani/newsvani/internal/config"
	"github.com/newsvani/newsvani/internal/retrieval"
	"github.com/newsvani/newsvani/internal/service"
	"github.com/newsvani/newsvani/internal/textutil"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "newsvani",
	Short: "NewsVani — Company News Analysis & Spoken Digest",
	Long: `NewsVani (News + Vani, "voice")
Fetches recent news coverage for a company through tiered retrieval,
scores each article's sentiment, aggregates a comparative summary,
and renders a spoken Hindi digest of the result.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(digestCmd)
	rootCmd.AddCommand(sourcesCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("NewsVani %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Analyze Command ---

var analyzeCmd = &cobra.Command{
	Use:   "analyze [company]",
	Short: "Fetch and analyze news coverage for a company",
	Long:  "Runs the full retrieval and analysis flow and prints the report as JSON.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		company := textutil.SanitizeCompanyName(args[0])
		if company == "" {
			return fmt.Errorf("company name is empty after sanitization")
		}

		svc := service.New(cfg)
		report, err := svc.Analyze(cmd.Context(), company)
		if err != nil {
			return fmt.Errorf("analyze %s: %w", company, err)
		}

		out := json.NewEncoder(os.Stdout)
		out.SetIndent("", "  ")
		return out.Encode(report)
	},
}

// --- Digest Command ---

var digestCmd = &cobra.Command{
	Use:   "digest [company]",
	Short: "Generate the spoken audio digest for a company",
	Long:  "Runs the analysis flow, renders the spoken digest, and writes MP3 bytes to a file.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		company := textutil.SanitizeCompanyName(args[0])
		if company == "" {
			return fmt.Errorf("company name is empty after sanitization")
		}

		output, _ := cmd.Flags().GetString("output")
		textOnly, _ := cmd.Flags().GetBool("text")

		svc := service.New(cfg)

		if textOnly {
			report, err := svc.Analyze(cmd.Context(), company)
			if err != nil {
				return fmt.Errorf("analyze %s: %w", company, err)
			}
			fmt.Println(service.DigestText(report))
			return nil
		}

		audio, err := svc.Audio(cmd.Context(), company)
		if err != nil {
			return fmt.Errorf("digest %s: %w", company, err)
		}

		if err := os.WriteFile(output, audio, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", output, err)
		}
		fmt.Printf("🔊 Wrote %d bytes to %s\n", len(audio), output)
		return nil
	},
}

func init() {
	digestCmd.Flags().StringP("output", "o", "digest.mp3", "output MP3 file path")
	digestCmd.Flags().Bool("text", false, "print the digest script instead of rendering audio")
}

// --- Sources Command ---

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the configured news sources",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Primary sites:")
		for _, site := range retrieval.PrimarySites {
			fmt.Printf("  %-32s %s\n", site.Host, site.SearchURL)
		}
		fmt.Println("\nAlternative sites:")
		for _, site := range retrieval.AlternativeSites {
			fmt.Printf("  %-32s %s\n", site.Host, site.SearchURL)
		}
		fmt.Println("\nRSS feeds:")
		for _, feed := range retrieval.AlternativeFeeds {
			fmt.Printf("  %-32s %s\n", feed.Name, feed.URL)
		}
	},
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		fmt.Printf("🌐 Starting NewsVani API server on %s\n", addr)
		return api.NewServer(cfg).ListenAndServe(addr)
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and credential status",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  NewsVani — System Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:      %s (%s)\n", version, commit)
		fmt.Println()

		fmt.Println("  Configuration:")
		fmt.Printf("    Target articles:   %d (low threshold %d)\n", cfg.Retrieval.TargetCount, cfg.Retrieval.LowThreshold)
		fmt.Printf("    Retrieval deadline: %ds\n", cfg.Retrieval.DeadlineSec)
		fmt.Printf("    Digest language:   %s\n", cfg.TTS.Language)
		fmt.Printf("    API Server:        %s:%d\n", cfg.API.Host, cfg.API.Port)
		fmt.Println()

		fmt.Println("  API Keys:")
		for _, k := range config.CheckAPIKeys(cfg) {
			status := "❌ not set (search tier skipped)"
			if k.IsSet {
				status = fmt.Sprintf("✅ set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Printf("    %-20s %s\n", k.Name+":", status)
		}

		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}
