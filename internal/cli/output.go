package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/goccy/go-json"

	"github.com/justestif/moodmuse/internal/activity"
	"github.com/justestif/moodmuse/internal/app"
	"github.com/justestif/moodmuse/internal/model"
	"github.com/justestif/moodmuse/internal/mood"
	"github.com/justestif/moodmuse/internal/session"
)

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

type groupOutput struct {
	Name  string       `json:"name"`
	Items []model.Item `json:"items"`
}

type recommendationsOutput struct {
	Mood        string            `json:"mood,omitempty"`
	Text        string            `json:"text,omitempty"`
	ContentType model.ContentType `json:"content_type"`
	Language    string            `json:"language"`
	Page        int               `json:"page"`
	HasMore     bool              `json:"has_more"`
	Items       []model.Item      `json:"items"`
	Groups      []groupOutput     `json:"groups,omitempty"`
	Ungrouped   []model.Item      `json:"ungrouped,omitempty"`
}

func printRecommendations(w io.Writer, format string, st app.State) error {
	if format == "json" {
		out := recommendationsOutput{
			Mood:        st.Query.Mood,
			Text:        st.Query.Text,
			ContentType: st.Query.ContentType,
			Language:    st.Query.Language,
			Page:        st.Query.Page,
			HasMore:     st.HasMore,
			Items:       st.Items,
			Ungrouped:   st.Ungrouped,
		}
		for _, g := range st.Groups {
			out.Groups = append(out.Groups, groupOutput{Name: g.Name, Items: g.Items})
		}
		return printJSON(w, out)
	}

	if len(st.Items) == 0 {
		_, err := fmt.Fprintln(w, "No recommendations.")
		return err
	}

	if len(st.Groups) == 0 {
		return printItems(w, st.Items)
	}
	for _, g := range st.Groups {
		fmt.Fprintf(w, "== %s (%d) ==\n", g.Name, len(g.Items))
		if err := printItems(w, g.Items); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}
	if len(st.Ungrouped) > 0 {
		fmt.Fprintf(w, "== Other (%d) ==\n", len(st.Ungrouped))
		return printItems(w, st.Ungrouped)
	}
	return nil
}

// printItems writes one numbered row per item. An item whose display key
// was already listed is marked with the number of its first row.
func printItems(w io.Writer, items []model.Item) error {
	seen := make(map[string]int, len(items))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, it := range items {
		title := it.Title
		if key := it.Key(); key != "" {
			if first, ok := seen[key]; ok {
				title += fmt.Sprintf(" (same as %d)", first)
			} else {
				seen[key] = i + 1
			}
		}

		year := ""
		if it.Year > 0 {
			year = strconv.Itoa(it.Year)
		}
		details := it.Genre
		if v, ok := mood.Vibe(it.AudioFeatures); ok {
			details = v
		}
		fmt.Fprintf(tw, "%d.\t%s\t%s\t%s\t%s\t%s\n", i+1, title, it.Contributor, year, details, it.MediaURL)
	}
	return tw.Flush()
}

func printActivity(w io.Writer, format string, records []activity.Record) error {
	if format == "json" {
		type recordOutput struct {
			model.Activity
			Status string `json:"status"`
		}
		out := make([]recordOutput, len(records))
		for i, r := range records {
			out[i] = recordOutput{Activity: r.Activity, Status: r.Status.String()}
		}
		return printJSON(w, out)
	}

	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No recent activity.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, r := range records {
		when := "-"
		if !r.CreatedAt.IsZero() {
			when = r.CreatedAt.Local().Format(time.DateTime)
		}
		status := ""
		if r.Status != activity.Confirmed {
			status = "(" + r.Status.String() + ")"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", when, r.Action, r.Mood, status)
	}
	return tw.Flush()
}

func printSession(w io.Writer, format string, s session.Session) error {
	if format == "json" {
		s.Token = nil
		return printJSON(w, s)
	}
	_, err := fmt.Fprintf(w, "%s <%s> (user id %s)\n", s.Name, s.Email, s.UserID)
	return err
}

func printCatalog(w io.Writer, format string) error {
	type moodOutput struct {
		Name  string `json:"name"`
		Label string `json:"label"`
	}
	type catalogOutput struct {
		Moods        []moodOutput        `json:"moods"`
		ContentTypes []model.ContentType `json:"content_types"`
		Languages    []mood.Language     `json:"languages"`
	}

	out := catalogOutput{ContentTypes: model.ContentTypes, Languages: mood.Languages}
	for _, m := range mood.Catalog {
		out.Moods = append(out.Moods, moodOutput{Name: m.Name, Label: m.Label})
	}
	if format == "json" {
		return printJSON(w, out)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MOOD\tMATCHES")
	for _, m := range out.Moods {
		fmt.Fprintf(tw, "%s\t%s\n", m.Name, m.Label)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	types := make([]string, len(out.ContentTypes))
	for i, c := range out.ContentTypes {
		types[i] = string(c)
	}
	fmt.Fprintf(w, "\nContent types: %s\n", strings.Join(types, ", "))

	langs := make([]string, len(out.Languages))
	for i, l := range out.Languages {
		langs[i] = l.Code + " " + l.Name
	}
	_, err := fmt.Fprintf(w, "Languages: %s\n", strings.Join(langs, ", "))
	return err
}
