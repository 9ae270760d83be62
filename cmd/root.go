/*
Copyright © 2025 Dmitry Mozzherin <dmozzherin@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/gnames/gitmo/internal/iofs"
	"github.com/gnames/gitmo/internal/iologger"
	app "github.com/gnames/gitmo/pkg"
	"github.com/gnames/gitmo/pkg/config"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var (
	homeDir string
	opts    []config.Option
	cfg     *config.Config
)

// getRootCmd returns the root command with all subcommands attached.
func getRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Version: fmt.Sprintf("version: %s\nbuild:   %s", app.Version, app.Build),
		Use:     "gitmo",
		Short:   "gitmo loads and browses the Guantanamo detainees dataset",
		Long: `gitmo keeps a small relational database of Guantanamo Bay
detainees and the countries they come from.

Features:
  - Schema Management: create tables in SQLite (default) or PostgreSQL
  - Data Import: load headerless CSV files of detainees and countries
  - Web Views: browse countries, detainees, the longest held and stats

Running gitmo without a subcommand prints the effective configuration.

Configuration file: ~/.config/gitmo/config.yaml
Environment variables use the GITMO_ prefix, for example
GITMO_DATABASE_PATH or GITMO_SERVER_PORT.`,
		PersistentPreRunE: bootstrap,
		RunE:              runRoot,
		SilenceErrors:     true,
		SilenceUsage:      true,
	}

	// Remove the automatic "gitmo version" prefix
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	// Override version flag to use -V (consistent with other gn projects)
	rootCmd.Flags().BoolP("version", "V", false, "version for gitmo")

	rootCmd.AddCommand(
		getCreateCmd(),
		getImportCmd(),
		getServeCmd(),
	)

	return rootCmd
}

func bootstrap(cmd *cobra.Command, args []string) error {
	var err error
	homeDir, err = os.UserHomeDir()
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsureDirs(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	// Initialize logging with hardcoded defaults
	// Will be reconfigured later with user's config settings
	defaultLog := config.LogConfig{
		Format:      "json",
		Level:       "info",
		Destination: "file",
	}
	if err = iologger.Init(config.LogDir(homeDir), defaultLog, false); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsureConfigFile(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	var cfgViper *config.Config
	if cfgViper, err = initConfig(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	cfg = config.New()
	opts = cfgViper.ToOptions()
	cfg.Update(opts)

	// Set HomeDir after config is loaded
	cfg.Update([]config.Option{config.OptHomeDir(homeDir)})

	// Reconfigure logging with user's settings and proper log file location
	if err = reconfigureLogging(cfg); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	slog.Info("Configuration loaded",
		"config_file", config.ConfigFilePath(homeDir))

	return nil
}

// reconfigureLogging reinitializes the logger with the loaded configuration.
func reconfigureLogging(cfg *config.Config) error {
	logDir := config.LogDir(cfg.HomeDir)
	return iologger.Init(logDir, cfg.Log, true)
}

func runRoot(cmd *cobra.Command, _ []string) error {
	gn.Info(
		"Configuration files are available at <em>%s</em>",
		config.ConfigDir(homeDir),
	)
	return printConfig(cmd.OutOrStdout(), cfg)
}

// printConfig writes the configuration as YAML with the password hidden.
func printConfig(w io.Writer, c *config.Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(c.Redacted())
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	err := getRootCmd().Execute()
	if err != nil {
		os.Exit(1)
	}
}

func initConfig(home string) (*config.Config, error) {
	var err error
	cfgPath := config.ConfigFilePath(home)
	v := viper.New()
	v.SetConfigFile(cfgPath)

	initEnvVars(v)

	if err = v.ReadInConfig(); err != nil {
		return nil, iofs.ReadFileError(cfgPath, err)
	}

	var res config.Config
	if err = v.Unmarshal(&res); err != nil {
		return nil, iofs.ReadFileError(cfgPath, err)
	}

	return &res, nil
}

// envVars lists the environment variables that override config.yaml.
// They match the fields included in config.ToOptions().
var envVars = map[string]string{
	"database.driver":        "GITMO_DATABASE_DRIVER",
	"database.path":          "GITMO_DATABASE_PATH",
	"database.host":          "GITMO_DATABASE_HOST",
	"database.port":          "GITMO_DATABASE_PORT",
	"database.user":          "GITMO_DATABASE_USER",
	"database.password":      "GITMO_DATABASE_PASSWORD",
	"database.database":      "GITMO_DATABASE_DATABASE",
	"database.ssl_mode":      "GITMO_DATABASE_SSL_MODE",
	"import.encoding":        "GITMO_IMPORT_ENCODING",
	"import.on_decode_error": "GITMO_IMPORT_ON_DECODE_ERROR",
	"import.atomic":          "GITMO_IMPORT_ATOMIC",
	"server.host":            "GITMO_SERVER_HOST",
	"server.port":            "GITMO_SERVER_PORT",
	"log.level":              "GITMO_LOG_LEVEL",
	"log.format":             "GITMO_LOG_FORMAT",
	"log.destination":        "GITMO_LOG_DESTINATION",
}

func initEnvVars(v *viper.Viper) {
	// Variables are bound by full name, so only the listed ones
	// are allowed.
	v.SetEnvPrefix("GITMO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for key, env := range envVars {
		_ = v.BindEnv(key, env)
	}

	v.AutomaticEnv()
}
