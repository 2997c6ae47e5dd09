package prompt

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/runnerr0/wochenfazit/internal/aggregate"
	"github.com/runnerr0/wochenfazit/internal/config"
	"github.com/runnerr0/wochenfazit/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPrompter(input string) (*Prompter, *bytes.Buffer) {
	var out bytes.Buffer
	return New(strings.NewReader(input), &out), &out
}

func TestChoose_RetriesUntilValid(t *testing.T) {
	p, out := newPrompter("0\nzwei\n3\n2\n")
	candidates := []storage.ContractKeyword{
		{Keyword: "wartung", ContractID: "#4020", Task: "Projekt"},
		{Keyword: "keycloak", ContractID: "#4016", Task: "Projekt"},
	}

	idx, err := p.Choose("wartung keycloak", candidates)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.Contains(t, out.String(), "2) keycloak Projekt #4016")
	assert.Equal(t, 3, strings.Count(out.String(), "Ungültige Auswahl"))
}

func TestChoose_EOF(t *testing.T) {
	p, _ := newPrompter("")
	_, err := p.Choose("x", []storage.ContractKeyword{{}, {}})
	assert.True(t, errors.Is(err, ErrNoInput))
}

func TestConfirm(t *testing.T) {
	p, _ := newPrompter("\nj\nnein\n")

	ok, err := p.Confirm("Speichern?", true)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.Confirm("Speichern?", false)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.Confirm("Speichern?", true)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConfirmText(t *testing.T) {
	p, _ := newPrompter("DELETE\ndelete\n")
	assert.NoError(t, p.ConfirmText("Keyword löschen?", "DELETE"))
	assert.True(t, errors.Is(p.ConfirmText("Keyword löschen?", "DELETE"), ErrMismatch))
}

func TestCorrect(t *testing.T) {
	p, out := newPrompter("Ticketpflege #4012\n\n")
	c := aggregate.Correction{Description: "Ticketpflege", Category: "Auftrag#"}

	got, err := p.Correct(c)
	require.NoError(t, err)
	assert.Equal(t, "Ticketpflege #4012", got)
	assert.Contains(t, out.String(), "Auftrag#")

	got, err = p.Correct(c)
	require.NoError(t, err)
	assert.Equal(t, "Ticketpflege", got)
}

func TestFillConfig(t *testing.T) {
	p, _ := newPrompter("abc\n38,5\n2025-13-01\n2025-05-27\n")
	cfg := config.DefaultConfig()
	cfg.General.WeekHours = 0

	changed, err := p.FillConfig(cfg)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 38.5, cfg.General.WeekHours)
	assert.Equal(t, "2025-05-27", cfg.Onboarding.FirstDay)

	changed, err = p.FillConfig(cfg)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestDate(t *testing.T) {
	p, _ := newPrompter("2025-06-02\n")
	d, err := p.Date("Datum: ")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), d)
}

func TestText(t *testing.T) {
	p, out := newPrompter("  Erika Muster \n")
	name, err := p.Text("Name: ")
	require.NoError(t, err)
	assert.Equal(t, "Erika Muster", name)
	assert.Equal(t, "Name: ", out.String())
}
