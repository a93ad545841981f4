// Package main provides the entrypoint for the emissions API server.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/shaardie/emissions-api/internal/config"
)

const serviceName = "emissions-api"

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

var (
	configPath string
	cfg        *config.Config
	logger     zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   serviceName,
	Short: "Serve satellite emission measurements over HTTP",
	Long: "Answers filtered queries for carbon monoxide samples as GeoJSON points " +
		"or daily averages, backed by a PostGIS database.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		c, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c
		logger = newLogger(cmd.ErrOrStderr(), c)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"path to a YAML config file (default: $"+config.PathEnvVar+" or ./config.yaml)")
}

// newLogger builds the root logger from the log section of c.
func newLogger(out io.Writer, c *config.Config) zerolog.Logger {
	if c.Log.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out}
	}
	return zerolog.New(out).
		Level(c.LogLevel()).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
