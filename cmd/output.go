package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/s0up4200/filmforum/filmapi"
)

var (
	success = color.New(color.FgGreen).SprintFunc()
	failure = color.New(color.FgRed).SprintFunc()
	muted   = color.New(color.Faint).SprintFunc()
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func kind(film filmapi.Film) string {
	if film.IsMovie {
		return "movie"
	}
	return "series"
}

func yearString(film filmapi.Film) string {
	if y := film.Year(); y > 0 {
		return fmt.Sprintf("%d", y)
	}
	return "-"
}

// printFilmTable prints one line per film
func printFilmTable(w io.Writer, films []filmapi.Film) {
	if len(films) == 0 {
		fmt.Fprintln(w, muted("No films found."))
		return
	}

	fmt.Fprintln(w, strings.Repeat("━", 85))
	fmt.Fprintf(w, "%-10s %-50s %-8s %-6s %s\n", "ID", "TITLE", "TYPE", "YEAR", "LENGTH")
	fmt.Fprintln(w, strings.Repeat("━", 85))

	for _, film := range films {
		// Truncate title if too long
		title := film.Title
		if len([]rune(title)) > 48 {
			title = string([]rune(title)[:45]) + "..."
		}

		fmt.Fprintf(w, "%-10s %-50s %-8s %-6s %dm\n", film.ID, title, kind(film), yearString(film), film.Length())
	}
	fmt.Fprintln(w, strings.Repeat("━", 85))
}

// printFilmDetails prints a film with its episodes grouped by season
func printFilmDetails(w io.Writer, film filmapi.Film) {
	fmt.Fprintf(w, "%s (%s, %s)\n", film.Title, kind(film), yearString(film))
	fmt.Fprintf(w, "ID: %s\n", film.ID)
	if film.Description != "" {
		fmt.Fprintf(w, "\n%s\n", film.Description)
	}

	if film.IsMovie {
		fmt.Fprintf(w, "\nRuntime: %dm\n", film.Length())
		return
	}

	for _, season := range film.Seasons() {
		fmt.Fprintf(w, "\nSeason %d\n", season)
		for _, ep := range film.Episodes {
			if ep.SeasonNumber != season {
				continue
			}
			fmt.Fprintf(w, "  %2d. %-40s %3dm\n", ep.EpisodeNumber, ep.Title, ep.Length)
		}
	}
}

// printAuthResult prints the account and token summary after login or register
func printAuthResult(w io.Writer, action string, result *filmapi.AuthResult, showToken bool) {
	fmt.Fprintf(w, "%s %s as %s (id %d)\n", success("✓"), action, result.Username, result.ID)
	if result.Email != "" {
		fmt.Fprintf(w, "  Email: %s\n", result.Email)
	}

	if claims, err := result.Claims(); err == nil {
		if claims.Role != "" {
			fmt.Fprintf(w, "  Role: %s\n", claims.Role)
		}
		if !claims.ExpiresAt.IsZero() {
			fmt.Fprintf(w, "  Token expires: %s\n", claims.ExpiresAt.Local().Format("2006-01-02 15:04"))
		}
	}

	if showToken {
		fmt.Fprintf(w, "  Token: %s\n", result.Token)
	}
}
