package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/anirank/anirank/internal/catalog"
	"github.com/anirank/anirank/internal/config"
	"github.com/anirank/anirank/internal/models"
	"github.com/anirank/anirank/internal/services/anilist"
	"github.com/anirank/anirank/internal/services/jikan"
	"github.com/anirank/anirank/internal/utils"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func newTopCommand() *cobra.Command {
	var (
		limit    int
		seasonal bool
	)
	cmd := &cobra.Command{
		Use:   "top",
		Short: "Print the top ranked anime",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTop(cmd.Context(), limit, seasonal)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "Number of entries to print")
	cmd.Flags().BoolVar(&seasonal, "seasonal", false, "Show the current season instead of all-time top")
	return cmd
}

func runTop(ctx context.Context, limit int, seasonal bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := utils.NewLogger("error")

	jikanClient, err := jikan.NewClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize Jikan client: %w", err)
	}
	anilistClient, err := anilist.NewClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize AniList client: %w", err)
	}
	gateway := catalog.NewGateway(jikanClient, anilistClient, logger)

	if ctx == nil {
		ctx = context.Background()
	}

	var list *models.AnimeList
	if seasonal {
		list, err = gateway.Seasonal(ctx, 0, "", limit, 1)
	} else {
		list, err = gateway.Top(ctx, limit, 1)
	}
	if err != nil {
		return err
	}

	title := cases.Title(language.English)
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tTITLE\tSCORE\tSEASON\tEPISODES")
	for i, anime := range list.Items {
		score := "-"
		if anime.Score != nil {
			score = fmt.Sprintf("%.1f", *anime.Score)
		}
		episodes := "ongoing"
		if anime.Episodes != nil && *anime.Episodes > 0 {
			episodes = fmt.Sprintf("%d", *anime.Episodes)
		}
		season := "-"
		if anime.Season != "" {
			season = fmt.Sprintf("%s %d", title.String(string(anime.Season)), anime.Year)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", i+1, anime.Title, score, season, episodes)
	}
	return w.Flush()
}
