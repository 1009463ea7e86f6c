/*
Copyright © 2022 CFC4N <cfc4n.cs@gmail.com>

*/
package cmd

import (
	"github.com/spf13/cobra"
)

const (
	cliName        = "zeeklogd"
	cliDescription = "run and control Zeek-style log writer filters outside of Zeek."
)

var (
	GitVersion = "v0.0.0_unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:        cliName,
	Short:      cliDescription,
	SuggestFor: []string{"zeeklog"},

	Long: `zeeklogd runs the typed-record logging pipeline Zeek's scripting
layer drives internally - writer frontends, rotation, batching, and
plugin backends - as a standalone service instead of inside a running
Zeek process. Its admin API reports health, per-filter stats and
metrics; no route accepts records.
`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to the rootCmd.
func Execute() error {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	return rootCmd.Execute()
}

func init() {
	cobra.EnablePrefixMatching = true
	var globalFlags = GlobalFlags{}

	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Debug, "debug", "d", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&globalFlags.ConfigFile, "config", "c", "", "process config file (YAML)")
	rootCmd.PersistentFlags().StringVar(&globalFlags.PidFile, "pid-file", "", "path to write/read the running filter's pid")
}
