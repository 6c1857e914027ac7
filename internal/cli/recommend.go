package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/justestif/moodmuse/internal/app"
	"github.com/justestif/moodmuse/internal/feed"
	"github.com/justestif/moodmuse/internal/model"
	"github.com/justestif/moodmuse/internal/spotify"
)

func newRecommendCmd(o *options) *cobra.Command {
	var (
		moodName    string
		contentType string
		language    string
		text        string
		pages       int
		groups      int
		enrich      bool
	)

	cmd := &cobra.Command{
		Use:   "recommend [text...]",
		Short: "Get recommendations for a mood or a description of one",
		Example: `  moodmuse recommend --mood Happy --type movies --lang en
  moodmuse recommend --type songs --pages 2 --group 3 "rainy evening, feeling a bit down"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if text == "" && len(args) > 0 {
				text = strings.Join(args, " ")
			}
			if pages < 1 {
				return errors.New("--pages must be at least 1")
			}

			var extra []app.Option
			if groups > 0 {
				extra = append(extra, app.WithGrouping(groups))
			}
			if enrich {
				if !o.cfg.Spotify.Enabled() {
					return errors.New("--enrich needs spotify.client_id and spotify.client_secret")
				}
				api := spotify.NewAPI(cmd.Context(), o.cfg.Spotify.ClientID, o.cfg.Spotify.ClientSecret)
				extra = append(extra, app.WithEnricher(spotify.NewEnricher(api)))
			}

			return o.withApp(cmd.Context(), extra, func(ctx context.Context, a *app.App) error {
				if _, err := requireSignedIn(ctx, cmd, a); err != nil {
					return err
				}

				a.Dispatch(app.SubmitMood{
					Mood:        moodName,
					ContentType: model.ContentType(contentType),
					Language:    language,
					Text:        text,
				})
				st, err := settle(ctx, cmd, a)
				if err != nil {
					return err
				}

				for page := 1; page < pages && st.HasMore; page++ {
					a.Dispatch(app.LoadMore{})
					if st, err = settle(ctx, cmd, a); err != nil {
						return err
					}
				}

				return printRecommendations(cmd.OutOrStdout(), o.format, st)
			})
		},
	}

	cmd.Flags().StringVarP(&moodName, "mood", "m", "", "Mood, e.g. Happy, Sad, Romantic, Energetic, Calm")
	cmd.Flags().StringVarP(&contentType, "type", "t", string(model.Movies), "Content type: movies, series or songs")
	cmd.Flags().StringVarP(&language, "lang", "l", feed.DefaultLanguage, "Language code")
	cmd.Flags().StringVar(&text, "text", "", "Describe your mood instead of naming it")
	cmd.Flags().IntVar(&pages, "pages", 1, "Number of pages to fetch")
	cmd.Flags().IntVar(&groups, "group", 0, "Group songs into this many vibes (0 disables)")
	cmd.Flags().BoolVar(&enrich, "enrich", false, "Add Spotify links and audio features to songs")
	return cmd
}

func newActivityCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "activity",
		Short: "Show your recent activity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withApp(cmd.Context(), nil, func(ctx context.Context, a *app.App) error {
				if _, err := requireSignedIn(ctx, cmd, a); err != nil {
					return err
				}
				a.Dispatch(app.OpenProfile{})
				st, err := settle(ctx, cmd, a)
				if err != nil {
					return err
				}
				return printActivity(cmd.OutOrStdout(), o.format, st.Activity)
			})
		},
	}
}

func newMoodsCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "moods",
		Short: "List moods, content types and languages",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printCatalog(cmd.OutOrStdout(), o.format)
		},
	}
}
