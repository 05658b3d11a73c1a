package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/filmforum/filmapi"
	"github.com/s0up4200/filmforum/filter"
)

var (
	// Command flags
	filterExpr  string
	preset      string
	jsonOutput  bool
	concurrency int
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search QUERY...",
	Short: "Search the catalog by title",
	Long: `Search the film catalog. Several queries run concurrently and results are
printed in argument order. Results can be narrowed with a filter expression:

  filmforum search matrix --filter 'IsMovie and Year >= 2000'
  filmforum search dark chernobyl --preset series`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	addFilterFlags(searchCmd)
	searchCmd.Flags().IntVar(&concurrency, "concurrency", 4, "maximum number of concurrent searches")
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression")
	cmd.Flags().StringVarP(&preset, "preset", "p", "", "use a preset filter from config")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
}

type searchResult struct {
	Query string         `json:"query"`
	Films []filmapi.Film `json:"films"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	f, err := resolveFilter()
	if err != nil {
		return err
	}

	results, err := searchAll(cmd.Context(), client, args, concurrency)
	if err != nil {
		return err
	}

	for i := range results {
		results[i].Films, err = filterManager.Apply(cmd.Context(), f, results[i].Films)
		if err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return writeJSON(out, results)
	}

	for _, r := range results {
		fmt.Fprintf(out, "\nResults for %q:\n", r.Query)
		printFilmTable(out, r.Films)
	}
	return nil
}

// searchAll runs one search per query and returns results in query order
func searchAll(ctx context.Context, api filmapi.API, queries []string, limit int) ([]searchResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	results := make([]searchResult, len(queries))

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, q := range queries {
		q = strings.TrimSpace(q)
		g.Go(func() error {
			films, err := api.Search(ctx, q)
			if err != nil {
				return fmt.Errorf("search %q: %w", q, err)
			}
			results[i] = searchResult{Query: q, Films: films}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// resolveFilter returns the filter selected by flags, or nil for none
func resolveFilter() (filter.CompiledFilter, error) {
	f, err := filterManager.Resolve(filterExpr, preset)
	if err != nil {
		return nil, fmt.Errorf("invalid filter: %w", err)
	}
	return f, nil
}
