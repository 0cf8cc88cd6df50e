package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/welcometomycity/citycore/internal/busmatch"
	"github.com/welcometomycity/citycore/internal/models"
	"github.com/welcometomycity/citycore/internal/routing"
)

func citiesCmd(s *state) *cobra.Command {
	return &cobra.Command{
		Use:   "cities",
		Short: "List supported cities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := s.open(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render("Cities"))
			for _, c := range rt.Store.Cities() {
				transit := mutedStyle.Render("transport coming soon")
				if rt.Store.HasTransit(c.ID) {
					transit = accentStyle.Render("transport available")
				}
				fmt.Fprintf(out, "• %s (%s) %s\n", c.Name, c.ID, mutedStyle.Render(c.State))
				fmt.Fprintf(out, "  %s | %d metro lines, %d stations | %s\n", c.Tagline, c.MetroLines, c.MetroStations, transit)
			}
			return nil
		},
	}
}

func stationsCmd(s *state) *cobra.Command {
	return &cobra.Command{
		Use:   "stations [query]",
		Short: "List or search metro stations",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, city, err := s.transitCity(cmd.Context())
			if err != nil {
				return err
			}

			query := ""
			if len(args) == 1 {
				query = args[0]
			}

			out := cmd.OutOrStdout()
			stations := rt.Store.SearchStations(city.ID, query)
			fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Metro stations in %s", city.Name)))
			if len(stations) == 0 {
				fmt.Fprintln(out, "No stations found.")
				return nil
			}
			for _, st := range stations {
				fmt.Fprintf(out, "• %s %s\n", st.Name, mutedStyle.Render(title(strings.Join(st.Lines, ", "))+" line"))
			}
			return nil
		},
	}
}

func routesCmd(s *state) *cobra.Command {
	return &cobra.Command{
		Use:   "routes <from> <to>",
		Short: "Compare metro, bus, taxi and walking options between two stations",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, city, err := s.transitCity(cmd.Context())
			if err != nil {
				return err
			}

			from, ok := rt.Store.FindStation(city.ID, args[0])
			if !ok {
				return fmt.Errorf("station %q not found", args[0])
			}
			to, ok := rt.Store.FindStation(city.ID, args[1])
			if !ok {
				return fmt.Errorf("station %q not found", args[1])
			}
			if from.ID == to.ID {
				return fmt.Errorf("from and to must be different stations")
			}

			routes := routing.NewPlanner().FindRoutes(from, to)
			printRoutes(cmd.OutOrStdout(), from, to, routes)
			return nil
		},
	}
}

func printRoutes(out io.Writer, from, to models.Station, routes []models.RouteOption) {
	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("%s -> %s", from.Name, to.Name)))

	fastest, _ := routing.Fastest(routes)
	cheapest, _ := routing.Cheapest(routes)

	for _, r := range routes {
		tags := ""
		if r.ID == fastest.ID {
			tags += tagStyle.Render(" [Fastest]")
		}
		if r.ID == cheapest.ID {
			tags += tagStyle.Render(" [Cheapest]")
		}

		fmt.Fprintf(out, "\n%s%s\n", accentStyle.Render(title(string(r.Type))), tags)
		fmt.Fprintf(out, "  %d min | %s | %.1f km | %d interchange(s)\n",
			r.Duration, priceStyle.Render(fmt.Sprintf("₹%d", r.Cost)), r.Distance, r.Interchanges)
		for _, step := range r.Steps {
			fmt.Fprintf(out, "  • %s %s\n", step.Instruction, mutedStyle.Render(fmt.Sprintf("(%d min)", step.Duration)))
		}
	}
}

func busCmd(s *state) *cobra.Command {
	return &cobra.Command{
		Use:   "bus <from> <to>",
		Short: "Find bus routes serving one stop before another",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, city, err := s.transitCity(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			matches := busmatch.NewMatcher(rt.Store.BusRoutes(city.ID)).FindRoutes(args[0], args[1])
			fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Buses from %s to %s", args[0], args[1])))
			if len(matches) == 0 {
				fmt.Fprintln(out, "No direct bus found. Try nearby stops or the metro.")
				return nil
			}

			for _, m := range matches {
				kind := "Regular"
				if m.Route.IsAC() {
					kind = "AC"
				}
				fmt.Fprintf(out, "\n%s %s\n", accentStyle.Render(m.Route.BusNumber), mutedStyle.Render(fmt.Sprintf("%s -> %s, %s", m.Route.StartPoint, m.Route.EndPoint, kind)))
				fmt.Fprintf(out, "  ~%d min | %s | %d stops\n", m.EstimatedDuration, priceStyle.Render(fmt.Sprintf("₹%d", m.EstimatedFare)), len(m.StopsInBetween))
				fmt.Fprintf(out, "  %s\n", strings.Join(m.StopsInBetween, " > "))
			}
			return nil
		},
	}
}

func stopsCmd(s *state) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "stops <query>",
		Short: "Search bus stop names",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, city, err := s.transitCity(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			stops := busmatch.NewMatcher(rt.Store.BusRoutes(city.ID)).SearchStops(args[0], limit)
			if len(stops) == 0 {
				fmt.Fprintln(out, "No stops found.")
				return nil
			}
			for _, stop := range stops {
				fmt.Fprintf(out, "• %s\n", stop)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", busmatch.DefaultSearchLimit, "maximum number of stops")
	return cmd
}
