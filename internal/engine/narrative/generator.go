// Package narrative generates the templated events offered at day boundaries
package narrative

import (
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strings"

	"github.com/KirkDiggler/deadgrid/internal/entities/survival"
	"github.com/KirkDiggler/deadgrid/internal/errors"
	"github.com/KirkDiggler/deadgrid/internal/pkg/rng"
)

// FallbackTemplateID marks the canonical default event
const FallbackTemplateID = "fallback"

var placeholder = regexp.MustCompile(`\{([a-z_]+)\}`)

// Config holds the dependencies for the generator
type Config struct {
	Random *rng.Source
	// Packs are merged after the builtin pack; later token lists win
	Packs []*Pack
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Random == nil {
		vb.RequiredField("Random")
	}
	for i, p := range c.Packs {
		if p == nil {
			vb.Field(fmt.Sprintf("Packs[%d]", i), "pack is nil")
		}
	}
	return vb.Build()
}

// Generator produces events from weighted templates
type Generator struct {
	src       *rng.Source
	templates []Template
	weights   []int
	tokens    map[string][]string
	seq       int
}

// New creates a generator over the builtin pack plus any extra packs
func New(cfg *Config) (*Generator, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid narrative config")
	}

	g := &Generator{
		src:    cfg.Random,
		tokens: make(map[string][]string),
	}
	for _, p := range append([]*Pack{BuiltinPack()}, cfg.Packs...) {
		for name, options := range p.Tokens {
			g.tokens[name] = options
		}
		for _, t := range p.Templates {
			g.templates = append(g.templates, t)
			g.weights = append(g.weights, int(math.Round(t.Rarity*1000)))
		}
	}
	return g, nil
}

// Templates returns the ids of every loaded template in selection order
func (g *Generator) Templates() []string {
	ids := make([]string, len(g.templates))
	for i, t := range g.templates {
		ids[i] = t.ID
	}
	return ids
}

// Generate picks a template whose triggers allow day and weather, then
// fills it. Draws: one for the template, then one per placeholder in title,
// description and choice text order. A malformed result is replaced by the
// fallback event.
func (g *Generator) Generate(day int, weather survival.Weather) *survival.GameEvent {
	g.seq++

	weights := make([]int, len(g.weights))
	for i, t := range g.templates {
		if t.Triggers.Allows(day, weather) {
			weights[i] = g.weights[i]
		}
	}

	idx := g.src.Weighted(weights)
	if idx < 0 {
		slog.Warn("no event templates available, using fallback")
		return g.fallback(day)
	}
	t := g.templates[idx]

	ev := &survival.GameEvent{
		ID:          fmt.Sprintf("%s_%d_%d", t.ID, day, g.seq),
		TemplateID:  t.ID,
		Title:       g.fill(t.Title),
		Description: g.fill(t.Description),
	}
	for i, c := range t.Choices {
		ev.Choices = append(ev.Choices, survival.Choice{
			ID:          choiceID(i),
			Text:        g.fill(c.Text),
			SuccessRate: c.SuccessRate,
			Outcome:     c.Outcome,
			Failure:     c.Failure,
		})
	}

	if err := Validate(ev); err != nil {
		slog.Warn("discarding malformed event",
			"template", t.ID,
			"error", err)
		return g.fallback(day)
	}
	return ev
}

// fill replaces each known placeholder left to right with one draw apiece.
// Unknown placeholders are left in place for Validate to reject.
func (g *Generator) fill(text string) string {
	return placeholder.ReplaceAllStringFunc(text, func(token string) string {
		options, ok := g.tokens[token[1:len(token)-1]]
		if !ok || len(options) == 0 {
			return token
		}
		return options[g.src.Index(len(options))]
	})
}

func (g *Generator) fallback(day int) *survival.GameEvent {
	ev := Fallback()
	ev.ID = fmt.Sprintf("%s_%d_%d", FallbackTemplateID, day, g.seq)
	return ev
}

// Resolve decides which outcome of a choice applies. A success rate strictly
// between zero and one costs one draw; anything else always succeeds.
func (g *Generator) Resolve(c *survival.Choice) (survival.Outcome, bool) {
	if c.SuccessRate <= 0 || c.SuccessRate >= 1 {
		return c.Outcome, true
	}
	if g.src.Chance(c.SuccessRate) {
		return c.Outcome, true
	}
	if c.Failure != nil {
		return *c.Failure, false
	}
	return survival.Outcome{Description: "Nothing goes to plan."}, false
}

// Validate checks that an event can be offered to the player
func Validate(ev *survival.GameEvent) error {
	if ev == nil {
		return errors.InvalidArgument("event is nil")
	}
	vb := errors.NewValidationBuilder()
	if ev.ID == "" {
		vb.RequiredField("id")
	}
	if ev.Title == "" {
		vb.RequiredField("title")
	}
	if ev.Description == "" {
		vb.RequiredField("description")
	}
	if len(ev.Choices) == 0 {
		vb.Field("choices", "at least one choice is required")
	}
	if strings.ContainsAny(ev.Title+ev.Description, "{}") {
		vb.Field("description", "unresolved placeholder")
	}
	seen := make(map[string]bool, len(ev.Choices))
	for i, c := range ev.Choices {
		if c.ID == "" || seen[c.ID] {
			vb.Fieldf(fmt.Sprintf("choices[%d].id", i), "missing or duplicate id %q", c.ID)
		}
		seen[c.ID] = true
		if c.Text == "" {
			vb.RequiredField(fmt.Sprintf("choices[%d].text", i))
		}
	}
	return vb.Build()
}

func choiceID(i int) string {
	return fmt.Sprintf("choice_%d", i)
}

// Fallback returns the canonical default event with an empty id
func Fallback() *survival.GameEvent {
	return &survival.GameEvent{
		TemplateID:  FallbackTemplateID,
		Title:       "Abandoned Supply Cache",
		Description: "You found an old supply cache hidden in a collapsed building.",
		Choices: []survival.Choice{
			{
				ID:   choiceID(0),
				Text: "Take everything",
				Outcome: survival.Outcome{
					Description:  "You haul it all out, but the noise attracts the dead.",
					Effects:      survival.Effects{Food: 5, Water: 5, Ammo: 10},
					SpawnThreats: 3,
				},
			},
			{
				ID:   choiceID(1),
				Text: "Take only essentials",
				Outcome: survival.Outcome{
					Description: "You take what you need and leave quietly.",
					Effects:     survival.Effects{Food: 3, Water: 3},
				},
			},
		},
	}
}
