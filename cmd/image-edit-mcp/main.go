package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/image-edit-mcp/internal/config"
	"github.com/ironsheep/image-edit-mcp/internal/logger"
	"github.com/ironsheep/image-edit-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("image-edit-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printHelp()
			return
		}
	}

	var configPath, logLevel string
	flag.StringVar(&configPath, "config", "", fmt.Sprintf("Path to TOML configuration file (default %s)", config.DefaultPath()))
	flag.StringVar(&logLevel, "loglevel", "", "Log level (debug, info, warn, error) - Overrides config file")
	flag.Parse()

	cfg, warnings, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	if logLevel != "" {
		cfg.Logger.Level = logLevel
	}

	// Logs go to stderr; stdout is for MCP protocol
	level, ok := logger.ParseLevel(cfg.Logger.Level)
	logger.Init(level, os.Stderr)
	if !ok {
		logger.Warnf("Invalid log level %q, using %s", cfg.Logger.Level, level)
	}
	for _, w := range warnings {
		logger.Warnf("Config: %s", w)
	}
	logger.Infof("Image Edit MCP Server %s (built %s, commit %s)", Version, BuildTime, GitCommit)

	session, err := server.NewSession(cfg)
	if err != nil {
		logger.Errorf("Failed to create session: %v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(session)
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Errorf("Server error: %v", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("image-edit-mcp - MCP server for non-destructive image editing")
	fmt.Println()
	fmt.Println("Usage: image-edit-mcp [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v       Print version information")
	fmt.Println("  --help, -h          Print this help message")
	fmt.Println("  -config <path>      TOML configuration file")
	fmt.Println("  -loglevel <level>   debug, info, warn or error")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Printf("  %s=debug    Enable debug logging\n", config.EnvLogLevel)
	fmt.Println()
	fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
	fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
}
