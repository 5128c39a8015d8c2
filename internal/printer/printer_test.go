package printer

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/clubsearch/internal/domain/club"
)

func fullClub() club.Club {
	return club.Club{
		ID:               "1",
		Score:            0.87654,
		ClubName:         "FC Nord",
		City:             "Lille",
		Country:          "France",
		Division:         "D3",
		Description:      "Club formateur",
		PlayingStyle:     "Offensif",
		TeamCulture:      "Familiale",
		Facilities:       "Stade 5000 places",
		RecruitmentNeeds: "Milieu défensif",
		Budget:           "2M€",
	}
}

func TestResults_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, Options{Emoji: true})

	if err := p.Results(nil, ""); err != nil {
		t.Fatalf("Results: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "📊 0 résultat(s) trouvé(s)") {
		t.Errorf("missing zero summary:\n%s", out)
	}
	if strings.Contains(out, "Recherche:") {
		t.Errorf("query echo printed for empty query:\n%s", out)
	}
	if strings.Contains(out, "Division:") {
		t.Errorf("result block printed for empty input:\n%s", out)
	}
	if got := strings.Count(out, strings.Repeat("=", ruleWidth)); got != 2 {
		t.Errorf("expected 2 rules, got %d", got)
	}
}

func TestResults_FullBlock(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, Options{Emoji: true})

	if err := p.Results([]club.Club{fullClub()}, "attaque rapide"); err != nil {
		t.Fatalf("Results: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"🔍 Recherche: 'attaque rapide'",
		"📊 1 résultat(s) trouvé(s)",
		"1. FC Nord (Lille, France)",
		"   📍 Division: D3",
		"   ⭐ Score: 0.8765",
		"   📝 Club formateur",
		"   🎮 Style: Offensif",
		"   🏆 Culture: Familiale",
		"Installations: Stade 5000 places",
		"   👥 Recrutement: Milieu défensif",
		"   💰 Budget: 2M€",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestResults_OmitsEmptyDetails(t *testing.T) {
	c := club.Club{
		Score:    0.5,
		ClubName: club.NotAvailable,
		City:     club.NotAvailable,
		Country:  club.NotAvailable,
		Division: club.NotAvailable,
		Budget:   "1M€",
	}

	var buf bytes.Buffer
	p := New(&buf, Options{Emoji: true})
	if err := p.Results([]club.Club{c}, "q"); err != nil {
		t.Fatalf("Results: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "1. N/A (N/A, N/A)") {
		t.Errorf("missing header:\n%s", out)
	}
	if !strings.Contains(out, "   📍 Division: N/A") {
		t.Errorf("division line must always be printed:\n%s", out)
	}
	for _, absent := range []string{"📝", "Style:", "Culture:", "Installations:", "Recrutement:"} {
		if strings.Contains(out, absent) {
			t.Errorf("empty field %q should be omitted:\n%s", absent, out)
		}
	}
	if !strings.Contains(out, "Budget: 1M€") {
		t.Errorf("budget line missing:\n%s", out)
	}
}

func TestResults_Numbering(t *testing.T) {
	a, b := fullClub(), fullClub()
	b.ClubName = "AS Sud"

	var buf bytes.Buffer
	p := New(&buf, Options{})
	if err := p.Results([]club.Club{a, b}, ""); err != nil {
		t.Fatalf("Results: %v", err)
	}

	out := buf.String()
	first := strings.Index(out, "1. FC Nord")
	second := strings.Index(out, "2. AS Sud")
	if first < 0 || second < 0 || first > second {
		t.Errorf("results not numbered in order:\n%s", out)
	}
}

func TestResults_NoEmoji(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, Options{Emoji: false})
	if err := p.Results([]club.Club{fullClub()}, "q"); err != nil {
		t.Fatalf("Results: %v", err)
	}

	out := buf.String()
	for _, emoji := range []string{"🔍", "📊", "📍", "⭐", "💰"} {
		if strings.Contains(out, emoji) {
			t.Errorf("emoji %q printed with emoji disabled", emoji)
		}
	}
	if !strings.Contains(out, "[DIV] Division: D3") {
		t.Errorf("missing ASCII fallback:\n%s", out)
	}
}

func TestBanner(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, Options{Emoji: true})
	if err := p.Banner("clubs", "BAAI/bge-small-en"); err != nil {
		t.Fatalf("Banner: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"🚀 Recherche de clubs dans Qdrant...",
		"   Collection: clubs",
		"   Modèle: BAAI/bge-small-en",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("banner missing %q:\n%s", want, out)
		}
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, Options{})
	if err := p.JSON([]club.Club{fullClub()}); err != nil {
		t.Fatalf("JSON: %v", err)
	}

	var decoded []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if len(decoded) != 1 {
		t.Fatalf("expected 1 item, got %d", len(decoded))
	}
	if decoded[0]["club_name"] != "FC Nord" {
		t.Errorf("club_name = %v", decoded[0]["club_name"])
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestResults_WriteError(t *testing.T) {
	p := New(failingWriter{}, Options{})
	if err := p.Results(nil, ""); err == nil {
		t.Fatal("expected write error")
	}
}

func TestIcon_Unknown(t *testing.T) {
	if got := icon("nope", true); got != "[?]" {
		t.Errorf("icon(unknown) = %q", got)
	}
}
