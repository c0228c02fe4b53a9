package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pbaille/grocer/internal/api"
	"github.com/pbaille/grocer/internal/catalog"
	"github.com/pbaille/grocer/internal/command"
	"github.com/pbaille/grocer/internal/config"
	"github.com/pbaille/grocer/internal/history"
	"github.com/pbaille/grocer/internal/list"
	"github.com/pbaille/grocer/internal/parser"
	"github.com/pbaille/grocer/internal/pkg/logger"
	"github.com/pbaille/grocer/internal/suggest"
)

var (
	configPath string
	verbose    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "grocer",
		Short: "Voice-driven shopping list service",
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(parseCmd())
	rootCmd.AddCommand(searchCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	var addr string
	var parserURL string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("parser-url") {
				cfg.ParserURL = parserURL
			}

			log := logger.New(verbose)

			cat, err := catalog.Load(cfg.CatalogPath)
			if err != nil {
				return err
			}
			// Note: don't defer cat.Close() as server runs indefinitely

			subs, err := suggest.LoadSubstitutesFile(cfg.SubstitutesPath)
			if err != nil {
				return err
			}

			tracker := history.New()
			state := list.New(tracker)

			engine := &suggest.Engine{
				History:     tracker,
				Catalog:     cat,
				List:        state,
				Substitutes: subs,
				Log:         log,
			}

			resolver := parser.NewResolver(parser.NewClient(cfg.ParserURL, cfg.ParseTimeout()), log)

			dispatcher := &command.Dispatcher{
				List:    state,
				Catalog: cat,
				Suggest: engine,
				Log:     log,
			}

			server := api.New(api.Deps{
				List:       state,
				Suggest:    engine,
				Resolver:   resolver,
				Dispatcher: dispatcher,
				Logger:     log,
			}, cfg.Addr)

			return server.Run()
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":5000", "server address")
	cmd.Flags().StringVar(&parserURL, "parser-url", "", "external parse service URL")
	return cmd
}

func parseCmd() *cobra.Command {
	var remote bool
	var language string

	cmd := &cobra.Command{
		Use:   "parse [utterance]",
		Short: "Resolve an utterance into an intent",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			log := logger.New(verbose)

			var client *parser.Client
			if remote {
				cfg, err := config.Load(configPath)
				if err != nil {
					return err
				}
				client = parser.NewClient(cfg.ParserURL, cfg.ParseTimeout())
			}

			intent := parser.NewResolver(client, log).Resolve(cmd.Context(), text, language)

			fmt.Printf("Intent:   %s\n", intent.Kind)
			fmt.Printf("Item:     %s\n", intent.Item)
			fmt.Printf("Quantity: %d\n", intent.Quantity)
			if intent.Filters != nil {
				if intent.Filters.Brand != "" {
					fmt.Printf("Brand:    %s\n", intent.Filters.Brand)
				}
				if intent.Filters.MaxPrice != nil {
					fmt.Printf("MaxPrice: %.2f\n", *intent.Filters.MaxPrice)
				}
			}
			fmt.Printf("Speech:   %s\n", intent.Speech)

			return nil
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "use the external parse service (falls back locally)")
	cmd.Flags().StringVar(&language, "language", "en-US", "utterance language tag")
	return cmd
}

func searchCmd() *cobra.Command {
	var brand string
	var maxPrice float64

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search the product catalog",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) > 0 {
				query = args[0]
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			cat, err := catalog.Load(cfg.CatalogPath)
			if err != nil {
				return err
			}
			defer cat.Close()

			var price *float64
			if cmd.Flags().Changed("max-price") {
				price = &maxPrice
			}

			entries, err := cat.Search(query, brand, price)
			if err != nil {
				return err
			}

			if len(entries) == 0 {
				fmt.Println("No matching products found.")
				return nil
			}

			for _, e := range entries {
				marker := " "
				if e.Seasonal {
					marker = "*"
				}
				fmt.Printf("%s %-24s %-14s $%.2f  %s\n", marker, e.Name, e.Brand, e.Price, e.Category)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&brand, "brand", "", "filter by brand substring")
	cmd.Flags().Float64Var(&maxPrice, "max-price", 0, "filter by maximum price")
	return cmd
}
