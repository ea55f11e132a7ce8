// Package config loads the graph-store and traversal-source configuration
// bundles described in spec §6.4, grounded on cayley's internal/config.Config
// (a flat struct loaded from a file) but using spf13/viper for the actual
// load, matching the dot-separated key convention
// (store.backend/store.path/...) cayley's cmd/cayley/command package binds
// its cobra flags to.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/graphwalk/loom/step"
	"github.com/graphwalk/loom/store"
)

// Keys mirrors cayley's command.Key* constants: the dot-separated viper keys
// this package reads, exported so a cmd package can bind cobra flags to them
// with viper.BindPFlag the same way cayley's command package does.
const (
	KeyNameField        = "store.name_field"
	KeyLabelField       = "store.label_field"
	KeyEdgeLabelField   = "store.edge_label_field"
	KeyDefaultNodeLabel = "store.default_node_label"
	KeyDefaultEdgeLabel = "store.default_edge_label"
	KeyIndexProfile     = "store.index_profile"
	KeySingleLabel      = "store.single_label"

	KeyEager             = "source.eager"
	KeyOptimize          = "source.optimize"
	KeyQueryVerify       = "source.query_verify"
	KeyUseMP             = "source.use_mp"
	KeyMaxIterationDepth = "source.max_iteration_depth"
	KeyTraversalTimeout  = "source.traversal_timeout"
)

func setDefaults(v *viper.Viper) {
	def := store.DefaultConfig()
	v.SetDefault(KeyNameField, def.NameField)
	v.SetDefault(KeyLabelField, def.LabelField)
	v.SetDefault(KeyEdgeLabelField, def.EdgeLabelField)
	v.SetDefault(KeyDefaultNodeLabel, def.DefaultNodeLabel)
	v.SetDefault(KeyDefaultEdgeLabel, def.DefaultEdgeLabel)
	v.SetDefault(KeyIndexProfile, def.IndexProfile.String())
	v.SetDefault(KeySingleLabel, def.SingleLabel)

	opts := step.DefaultOptions()
	v.SetDefault(KeyEager, opts.Eager)
	v.SetDefault(KeyOptimize, opts.Optimize)
	v.SetDefault(KeyQueryVerify, opts.QueryVerify)
	v.SetDefault(KeyUseMP, opts.UseMP)
	v.SetDefault(KeyMaxIterationDepth, opts.MaxIterationDepth)
	v.SetDefault(KeyTraversalTimeout, 30*time.Second)
}

// Config bundles everything needed to stand up a graph.Graph and run
// traversals against it: the reserved-key/index knobs of store.Config and
// the per-source execution knobs of step.Options, plus a query timeout the
// step/traversal packages don't themselves enforce (left to callers, per
// spec §7's "no built-in query cancellation" non-goal).
type Config struct {
	Store            *store.Config
	Source           step.Options
	TraversalTimeout time.Duration
}

// Load reads configuration from file (if non-empty; YAML, JSON or TOML by
// extension, same as viper.SetConfigFile's auto-detection), then from any
// LOOM_-prefixed environment variables, falling back to store.DefaultConfig
// and step.DefaultOptions for anything unset. A file that does not exist is
// not an error: like cayley's ParseConfigFromFlagsAndFile, callers are meant
// to run by defaults alone when no file is present.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("LOOM")
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			// SetConfigFile makes viper read the path directly, so a missing
			// file surfaces as an os not-exist error rather than
			// ConfigFileNotFoundError (which only its search-path lookup returns).
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("loom: could not read config file %q: %w", file, err)
			}
		}
	}

	profile, err := parseIndexProfile(v.GetString(KeyIndexProfile))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Store: &store.Config{
			NameField:        v.GetString(KeyNameField),
			LabelField:       v.GetString(KeyLabelField),
			EdgeLabelField:   v.GetString(KeyEdgeLabelField),
			DefaultNodeLabel: v.GetString(KeyDefaultNodeLabel),
			DefaultEdgeLabel: v.GetString(KeyDefaultEdgeLabel),
			IndexProfile:     profile,
			SingleLabel:      v.GetBool(KeySingleLabel),
		},
		Source: step.Options{
			Eager:             v.GetBool(KeyEager),
			Optimize:          v.GetBool(KeyOptimize),
			QueryVerify:       v.GetBool(KeyQueryVerify),
			UseMP:             v.GetBool(KeyUseMP),
			MaxIterationDepth: v.GetInt(KeyMaxIterationDepth),
		},
		TraversalTimeout: v.GetDuration(KeyTraversalTimeout),
	}
	return cfg, nil
}

func parseIndexProfile(s string) (store.IndexProfile, error) {
	switch s {
	case "off":
		return store.IndexOff, nil
	case "minimal", "":
		return store.IndexMinimal, nil
	case "all":
		return store.IndexAll, nil
	default:
		return 0, fmt.Errorf("loom: unknown index profile %q (want off, minimal, or all)", s)
	}
}
