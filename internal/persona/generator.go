// Package persona generates the scenario, participant names and personas of
// a new game from an embedded vocabulary.
package persona

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"

	"github.com/aaronzipp/among-llms/internal/models"
)

//go:embed data.json
var rawData []byte

type vocabulary struct {
	Names   []string `json:"names"`
	Persona struct {
		Species      []string `json:"species"`
		Gender       []string `json:"gender"`
		Intelligence []string `json:"intelligence"`
		Jobs         []string `json:"jobs"`
		Likes        []string `json:"likes"`
		Dislikes     []string `json:"dislikes"`
		Traits       []string `json:"traits"`
		Personality  []string `json:"personality"`
		Hobbies      []string `json:"hobbies"`
		Languages    []string `json:"languages"`
	} `json:"persona"`
	Scenario struct {
		Settings    []string `json:"settings"`
		Backgrounds []string `json:"backgrounds"`
		Actions     []string `json:"actions"`
		Twists      []string `json:"twists"`
	} `json:"scenario"`
}

var (
	vocab     vocabulary
	vocabOnce sync.Once
)

func loadVocabulary() vocabulary {
	vocabOnce.Do(func() {
		if err := json.Unmarshal(rawData, &vocab); err != nil {
			panic(fmt.Sprintf("persona: embedded vocabulary: %v", err))
		}
	})
	return vocab
}

// Generator draws scenarios and participants. Safe for concurrent use.
type Generator struct {
	mu    sync.Mutex
	rng   *rand.Rand
	vocab vocabulary
	// MaxChoices bounds the number of items drawn for list attributes
	MaxChoices int
}

// New creates a generator with a deterministic seed
func New(seed uint64) *Generator {
	return &Generator{
		rng:        rand.New(rand.NewPCG(seed, seed+1)),
		vocab:      loadVocabulary(),
		MaxChoices: 3,
	}
}

// Scenario returns a two-sentence scenario
func (g *Generator) Scenario() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	s := g.vocab.Scenario
	first := g.pick(s.Settings) + ", " + g.pick(s.Backgrounds)
	second := g.pick(s.Actions) + ", " + g.pick(s.Twists)
	return capitalize(first) + ". " + capitalize(second) + "."
}

// Persona returns a one-paragraph persona description
func (g *Generator) Persona() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	p := g.vocab.Persona
	age := 18 + g.rng.IntN(83)
	languages := append([]string{"English"}, g.sample(p.Languages)...)

	var b strings.Builder
	fmt.Fprintf(&b, "A %s (%d years old) who identifies as %s and is %s. ",
		g.pick(p.Species), age, g.pick(p.Gender), g.pick(p.Intelligence))
	fmt.Fprintf(&b, "Currently employed as %s. ", g.pick(p.Jobs))
	fmt.Fprintf(&b, "Likes %s. Dislikes %s. ", joinItems(g.sample(p.Likes)), joinItems(g.sample(p.Dislikes)))
	fmt.Fprintf(&b, "Has the following traits -- %s and is %s. ",
		joinItems(g.sample(p.Traits)), joinItems(g.sample(p.Personality)))
	fmt.Fprintf(&b, "Hobbies are %s. Knows to read and write %s.",
		joinItems(g.sample(p.Hobbies)), joinItems(languages))
	return b.String()
}

// Names returns n distinct participant names. When the vocabulary runs out,
// names get a numeric suffix.
func (g *Generator) Names(n int) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	pool := g.vocab.Names
	order := g.rng.Perm(len(pool))
	names := make([]string, 0, n)
	for i := range n {
		name := pool[order[i%len(pool)]]
		if round := i / len(pool); round > 0 {
			name += "-" + strconv.Itoa(round+1)
		}
		names = append(names, name)
	}
	return names
}

// Profiles returns n participants with distinct names and fresh personas
func (g *Generator) Profiles(n int) []models.Profile {
	names := g.Names(n)
	profiles := make([]models.Profile, 0, n)
	for _, name := range names {
		profiles = append(profiles, models.Profile{ID: name, Persona: g.Persona()})
	}
	return profiles
}

// Intn returns a random int in [0, n), for callers that share the seed
func (g *Generator) Intn(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.IntN(n)
}

// must be called with mu held
func (g *Generator) pick(choices []string) string {
	return choices[g.rng.IntN(len(choices))]
}

// must be called with mu held
func (g *Generator) sample(choices []string) []string {
	count := 1 + g.rng.IntN(min(g.MaxChoices, len(choices)))
	out := make([]string, 0, count)
	for _, i := range g.rng.Perm(len(choices))[:count] {
		out = append(out, choices[i])
	}
	return out
}

func joinItems(items []string) string {
	if len(items) == 1 {
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
