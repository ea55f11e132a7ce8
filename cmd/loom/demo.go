package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/graphwalk/loom/anon"
	"github.com/graphwalk/loom/internal/fixture"
	"github.com/graphwalk/loom/predicate"
	"github.com/graphwalk/loom/source"
	"github.com/graphwalk/loom/step"
	"github.com/graphwalk/loom/store"
	"github.com/graphwalk/loom/traverser"
)

// newDemoCmd builds the "demo" subcommand, grounded on cayley's repl
// command in spirit (it opens a store and runs queries against it) but
// non-interactive: it runs the worked scenarios and prints their results,
// a quick way to sanity-check the engine end to end without a query
// language front-end.
func newDemoCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run the canonical worked traversal scenarios against the modern fixture.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configFile)
			if err != nil {
				return err
			}
			return runDemo(cfg.Source)
		},
	}
}

func runDemo(opts step.Options) error {
	g, ids := fixture.Modern(nil)
	src := source.New(g, opts)

	fmt.Println("1. persons aged 30+, by name:")
	out, err := src.V().HasLabel("Person").
		Filter(anon.New(step.Values("age"), step.Is(predicate.Gte(30)))).
		Values("name").
		ToList()
	if err != nil {
		return err
	}
	fmt.Println("  ", out)

	fmt.Println("2. marko's created software names:")
	out, err = src.V().HasLabel("Person").HasName("marko").Out("created").Values("name").ToList()
	if err != nil {
		return err
	}
	fmt.Println("  ", out)

	fmt.Println("3. software created by peter, selecting the tagged software's id:")
	out, err = src.V().HasLabel("Software").As("a").In("created").HasName("peter").
		Select("a").
		ToList()
	if err != nil {
		return err
	}
	fmt.Println("  ", out)

	fmt.Println("4. every simple chain walk from 1 to 5 with path+length:")
	chainG, chainIDs := fixture.Chain(nil)
	chainSrc := source.New(chainG, opts)
	out, err = chainSrc.V(chainIDs["1"]).
		Repeat(anon.New(step.Out(""), step.SimplePath())).
		Until(anon.New(step.HasID(predicate.Eq(chainIDs["5"])))).
		Path().By("name").As("p").
		CountLocal().As("length").
		Select("p", "length").
		ToList()
	if err != nil {
		return err
	}
	fmt.Println("  ", out)

	fmt.Println("5. branch on name: marko's age, everyone else's name:")
	out, err = src.V().HasLabel("Person").
		Branch(anon.New(step.Name())).
		Option("marko", anon.New(step.Values("age"))).
		Option(nil, anon.New(step.Name())).
		ToList()
	if err != nil {
		return err
	}
	fmt.Println("  ", out)

	fmt.Println("6. addV/addE round trip:")
	before, err := src.E().Count().Next()
	if err != nil {
		return err
	}
	johnVal, err := src.AddV("Person", "john", map[string]interface{}{"age": 30}).Next()
	if err != nil {
		return err
	}
	after, err := src.E().Count().Next()
	if err != nil {
		return err
	}
	johnID, ok := johnVal.(store.NodeID)
	if !ok {
		return fmt.Errorf("loom: addV did not return a node id")
	}
	vadasID := ids["vadas"]

	likes, err := src.AddE(johnID, vadasID, "knows", nil).
		Property("likes", true, traverser.CardinalitySingle).
		Properties("likes").
		Next()
	if err != nil {
		return err
	}
	fmt.Println("   edge count before:", before, "after addV:", after)
	fmt.Println("   new edge properties:", likes)
	return nil
}
