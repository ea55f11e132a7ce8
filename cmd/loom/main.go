// Command loom is the CLI entry point, grounded on cayley's cmd/cayley
// cobra/viper wiring (cmd/cayley/command/*.go): each subcommand is a
// *cobra.Command built by its own constructor and attached to a root
// command in main, with flags bound into viper under dot-separated keys.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/graphwalk/loom/internal/config"
)

// Version is filled in by `go build -ldflags "-X main.Version=..."`, same
// as cayley's BuildDate/Version main.go vars.
var Version string

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string
	root := &cobra.Command{
		Use:   "loom",
		Short: "loom is an in-memory property-graph traversal engine.",
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "path to a loom config file (YAML/JSON/TOML)")
	root.AddCommand(newDemoCmd(&configFile))
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if Version != "" {
				fmt.Println("loom", Version)
			} else {
				fmt.Println("loom snapshot")
			}
			return nil
		},
	}
}

func loadConfig(configFile string) (*config.Config, error) {
	return config.Load(configFile)
}
