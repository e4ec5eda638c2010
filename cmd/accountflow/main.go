// @title        accountflow API
// @version      1.0
// @description  Account signup, login, email verification and password reset.
// @BasePath     /
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"accountflow/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "accountflow",
	Short:         "Account signup, login and recovery service",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "path to the YAML config file")
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "accountflow: %v\n", err)
		os.Exit(1)
	}
}
