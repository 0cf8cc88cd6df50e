package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/welcometomycity/citycore/internal/itinerary"
	"github.com/welcometomycity/citycore/internal/models"
	"github.com/welcometomycity/citycore/internal/places"
)

func placesCmd(s *state) *cobra.Command {
	var category, search string

	cmd := &cobra.Command{
		Use:   "places",
		Short: "List curated attractions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			category = strings.ToLower(strings.TrimSpace(category))
			if category != "" && category != places.CategoryAll && !models.Category(category).Valid() {
				return fmt.Errorf("unknown category %q", category)
			}

			rt, city, err := s.city(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Places to visit in %s", city.Name)))
			printPlaces(out, places.Filter(rt.Store.CuratedPlaces(city.ID), category, search))
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "historical, cultural, religious, food-markets or nature")
	cmd.Flags().StringVar(&search, "search", "", "filter by name or description")
	return cmd
}

func printPlaces(out io.Writer, list []models.Place) {
	if len(list) == 0 {
		fmt.Fprintln(out, "No places found.")
		return
	}
	for _, p := range list {
		fmt.Fprintf(out, "• %s %s\n", p.Name, mutedStyle.Render(title(string(p.Category))))
		if p.Description != "" {
			fmt.Fprintf(out, "  %s\n", p.Description)
		}
		if p.EntryFee != "" || p.BestTime != "" {
			fmt.Fprintf(out, "  %s | %s\n", priceStyle.Render(p.EntryFee), p.BestTime)
		}
	}
}

func itineraryCmd(s *state) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "itinerary",
		Short: "Build a sightseeing plan for 1 to 3 days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, city, err := s.city(cmd.Context())
			if err != nil {
				return err
			}

			plan, err := itinerary.Generate(rt.Store.CuratedPlaces(city.ID), days)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("%d-day itinerary for %s", days, city.Name)))
			for _, day := range plan {
				fmt.Fprintf(out, "\n%s %s\n", accentStyle.Render(fmt.Sprintf("Day %d", day.Day)),
					mutedStyle.Render(fmt.Sprintf("%.1f km, ~%d min", day.TotalDistance, day.TotalDuration)))
				if len(day.Places) == 0 {
					fmt.Fprintln(out, "  Free day.")
				}
				for i, p := range day.Places {
					fmt.Fprintf(out, "  %d. %s %s\n", i+1, p.Name, mutedStyle.Render(title(string(p.Category))))
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", itinerary.MinDays, "trip length in days (1-3)")
	return cmd
}

func generateCmd(s *state) *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Generate a fresh list of attractions with the AI model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, city, err := s.city(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			result := rt.Places.Generate(cmd.Context(), city.ID)
			if result.Error != "" {
				fmt.Fprintln(out, warnStyle.Render(result.Error))
				if result.SetupRequired {
					fmt.Fprintln(out, mutedStyle.Render("Set GEMINI_API_KEY or places.api_key in the config file."))
				}
				return nil
			}

			heading := fmt.Sprintf("Generated places in %s", city.Name)
			switch {
			case result.IsFallback:
				heading = fmt.Sprintf("Curated places in %s (AI unavailable)", city.Name)
			case result.Cached:
				heading += " (cached)"
			}
			fmt.Fprintln(out, titleStyle.Render(heading))
			printPlaces(out, result.Places)
			return nil
		},
	}
}
