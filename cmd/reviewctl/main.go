// Package main is the reviewctl command line client. It drives the same
// upload, results and export flows as the web frontend against the
// extraction backend.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Jovackbud/Research-assisant/internal/services"
)

// version is set at build time via ldflags.
var version = "dev"

const (
	defaultBackendURL = "http://localhost:8000"
	defaultTimeout    = 10 * time.Minute
)

var rootCmd = &cobra.Command{
	Use:   "reviewctl",
	Short: "Upload research papers for review and export the results",
	Long: `reviewctl sends PDF and DOCX papers to the review backend, keeps the
returned analysis in a local JSON file, and renders or exports it as a
table (PDF, Excel, or the backend's CSV).`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./reviewctl.yaml or ~/.config/reviewctl/config.yaml)")
	rootCmd.PersistentFlags().String("backend-url", defaultBackendURL, "base URL of the review backend")
	rootCmd.PersistentFlags().Duration("timeout", defaultTimeout, "backend request timeout")

	_ = viper.BindPFlag("backend_url", rootCmd.PersistentFlags().Lookup("backend-url"))
	_ = viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("reviewctl")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "reviewctl"))
		}
	}

	viper.SetEnvPrefix("REVIEWCTL")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func backendURL() string {
	return viper.GetString("backend_url")
}

func backendClient() *services.BackendClient {
	return services.NewBackendClient(backendURL(), viper.GetDuration("timeout"))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
