package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// filmsCmd represents the films command
var filmsCmd = &cobra.Command{
	Use:   "films",
	Short: "List the film catalog",
	Long:  `List every film in the catalog, optionally narrowed with a filter expression or preset.`,
	Args:  cobra.NoArgs,
	RunE:  runFilms,
}

// filmCmd represents the film command
var filmCmd = &cobra.Command{
	Use:   "film ID",
	Short: "Show a film with its episodes",
	Args:  cobra.ExactArgs(1),
	RunE:  runFilm,
}

func init() {
	rootCmd.AddCommand(filmsCmd)
	rootCmd.AddCommand(filmCmd)

	addFilterFlags(filmsCmd)
	filmCmd.Flags().BoolVar(&jsonOutput, "json", false, "print the film as JSON")
}

func runFilms(cmd *cobra.Command, args []string) error {
	f, err := resolveFilter()
	if err != nil {
		return err
	}

	films, err := client.ListFilms(cmd.Context())
	if err != nil {
		return err
	}

	films, err = filterManager.Apply(cmd.Context(), f, films)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return writeJSON(out, films)
	}

	fmt.Fprintf(out, "Found %d films:\n", len(films))
	printFilmTable(out, films)
	return nil
}

func runFilm(cmd *cobra.Command, args []string) error {
	film, err := client.GetFilm(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if film == nil {
		return fmt.Errorf("film '%s' not found", args[0])
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return writeJSON(out, film)
	}

	printFilmDetails(out, *film)
	return nil
}
