// Package printer renders search results for the terminal.
package printer

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/kailas-cloud/clubsearch/internal/domain/club"
)

// ruleWidth is the width of the separator lines around the result list.
const ruleWidth = 80

// Options controls terminal decorations.
type Options struct {
	Emoji bool
	Color bool
}

// Printer writes human-readable reports to a writer (normally stdout).
type Printer struct {
	w     io.Writer
	emoji bool
	title lipgloss.Style
	score lipgloss.Style
	muted lipgloss.Style
}

// New creates a Printer. Colors are only emitted when w is a terminal and opts.Color is set.
func New(w io.Writer, opts Options) *Printer {
	r := lipgloss.NewRenderer(w)
	if !opts.Color {
		r.SetColorProfile(termenv.Ascii)
	}
	return &Printer{
		w:     w,
		emoji: opts.Emoji,
		title: r.NewStyle().Bold(true),
		score: r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#047857", Dark: "#34D399"}),
		muted: r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}),
	}
}

// Banner announces the collection and model about to be searched.
func (p *Printer) Banner(collection, model string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s Recherche de clubs dans Qdrant...\n", icon("rocket", p.emoji))
	fmt.Fprintf(&b, "   Collection: %s\n", collection)
	fmt.Fprintf(&b, "   Modèle: %s\n", model)
	return p.flush(&b)
}

// Results writes the report: optional query echo, a count summary, then one
// block per club. Detail lines are omitted when their field is empty.
func (p *Printer) Results(results []club.Club, query string) error {
	var b strings.Builder

	if query != "" {
		fmt.Fprintf(&b, "\n%s Recherche: '%s'\n", icon("search", p.emoji), query)
	}
	fmt.Fprintf(&b, "\n%s %d résultat(s) trouvé(s)\n\n", icon("statistics", p.emoji), len(results))
	b.WriteString(p.rule())

	for i := range results {
		p.writeClub(&b, i+1, &results[i])
	}

	b.WriteString(p.rule())
	return p.flush(&b)
}

// JSON writes the results as an indented JSON array.
func (p *Printer) JSON(results []club.Club) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	return nil
}

func (p *Printer) writeClub(b *strings.Builder, idx int, c *club.Club) {
	header := fmt.Sprintf("%d. %s (%s, %s)", idx, c.ClubName, c.City, c.Country)
	fmt.Fprintf(b, "\n%s\n", p.title.Render(header))
	fmt.Fprintf(b, "   %s Division: %s\n", icon("division", p.emoji), c.Division)
	fmt.Fprintf(b, "   %s Score: %s\n", icon("score", p.emoji), p.score.Render(fmt.Sprintf("%.4f", c.Score)))

	details := []struct {
		icon, label, value string
	}{
		{"description", "", c.Description},
		{"style", "Style", c.PlayingStyle},
		{"culture", "Culture", c.TeamCulture},
		{"facilities", "Installations", c.Facilities},
		{"recruitment", "Recrutement", c.RecruitmentNeeds},
		{"budget", "Budget", c.Budget},
	}
	for _, d := range details {
		if d.value == "" {
			continue
		}
		if d.label == "" {
			fmt.Fprintf(b, "   %s %s\n", icon(d.icon, p.emoji), d.value)
			continue
		}
		fmt.Fprintf(b, "   %s %s: %s\n", icon(d.icon, p.emoji), d.label, d.value)
	}

	b.WriteString("\n")
}

func (p *Printer) rule() string {
	return p.muted.Render(strings.Repeat("=", ruleWidth)) + "\n"
}

func (p *Printer) flush(b *strings.Builder) error {
	if _, err := io.WriteString(p.w, b.String()); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
