// Package questboard turns recognized quest board text into runnable
// chains. Board lines are matched against a small set of objective
// patterns (defeat, collect, deliver, talk) and each objective becomes
// a single-step chain the orchestrator can run as-is.
//
// Import rules:
//   - CAN import: internal/constants, internal/domain, internal/errors, internal/game, std lib
//   - MUST NOT import: internal/quest, internal/schedule, internal/cli
package questboard

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/averlon/questline/internal/constants"
	"github.com/averlon/questline/internal/domain"
	questerrors "github.com/averlon/questline/internal/errors"
	"github.com/averlon/questline/internal/game"
)

// Objective is one actionable quest board entry.
type Objective struct {
	// Type is the step kind the objective maps to.
	Type domain.StepType

	// Target is the normalized subject of the objective, usable as a
	// perception template id.
	Target string

	// Count is the defeat/collect quantity. Zero for interactions.
	Count int

	// Raw is the board line the objective was parsed from.
	Raw string
}

// Objective patterns. Counts are optional and default to one; the
// subject runs to end of line after trimming punctuation.
var (
	defeatPattern  = regexp.MustCompile(`(?i)^(?:defeat|kill|slay)\s+(?:(\d+)\s+)?(.+)$`)
	collectPattern = regexp.MustCompile(`(?i)^(?:collect|gather|harvest|mine)\s+(?:(\d+)\s+)?(.+)$`)
	deliverPattern = regexp.MustCompile(`(?i)^(?:deliver\s+.+\s+to|talk\s+to|speak\s+(?:to|with)|visit)\s+(.+)$`)
)

// Parser converts board text into objectives and chains.
type Parser struct {
	logger zerolog.Logger
}

// NewParser creates a board parser.
func NewParser(logger zerolog.Logger) *Parser {
	return &Parser{logger: logger.With().Str("component", "questboard").Logger()}
}

// Parse extracts objectives from board text, one line at a time.
// Unrecognized lines are logged and dropped; an entirely unrecognizable
// board is an error.
func (p *Parser) Parse(text string) ([]Objective, error) {
	var objectives []Objective
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		objective, ok := p.parseLine(line)
		if !ok {
			p.logger.Debug().Str("line", line).Msg("board line not recognized")
			continue
		}
		objectives = append(objectives, objective)
	}
	if len(objectives) == 0 {
		return nil, questerrors.ErrBoardUnreadable
	}
	return objectives, nil
}

// ReadBoard recognizes text in the given screen region and parses it.
// A nil region reads the whole screen.
func (p *Parser) ReadBoard(ctx context.Context, perception game.Perception, region *game.Region) ([]Objective, error) {
	match, found, err := perception.RecognizeText(ctx, game.TextOptions{Region: region})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", questerrors.ErrBoardUnreadable, err)
	}
	if !found || strings.TrimSpace(match.Text) == "" {
		return nil, questerrors.Wrap(questerrors.ErrBoardUnreadable, "board region is blank")
	}
	return p.Parse(match.Text)
}

// parseLine matches one board line against the objective patterns.
// Defeat wins over collect so "kill 5 quarry rats" never reads as a
// gather of "5 quarry rats".
func (p *Parser) parseLine(line string) (Objective, bool) {
	if m := defeatPattern.FindStringSubmatch(line); m != nil {
		return Objective{
			Type:   domain.StepTypeCombat,
			Target: normalizeTarget(m[2]),
			Count:  parseCount(m[1]),
			Raw:    line,
		}, true
	}
	if m := collectPattern.FindStringSubmatch(line); m != nil {
		return Objective{
			Type:   domain.StepTypeGather,
			Target: normalizeTarget(m[2]),
			Count:  parseCount(m[1]),
			Raw:    line,
		}, true
	}
	if m := deliverPattern.FindStringSubmatch(line); m != nil {
		return Objective{
			Type:   domain.StepTypeInteract,
			Target: normalizeTarget(m[1]),
			Raw:    line,
		}, true
	}
	return Objective{}, false
}

// Chain builds a runnable single-step chain for the objective. The
// objective's target doubles as the perception template id; a board
// catalog can remap it at load time if the ids differ.
func (p *Parser) Chain(objective Objective) *domain.Chain {
	config := map[string]any{"target": objective.Target}
	switch objective.Type {
	case domain.StepTypeCombat:
		config["kills"] = objective.Count
	case domain.StepTypeGather:
		config["count"] = objective.Count
	case domain.StepTypeInteract, domain.StepTypeMoveTo, domain.StepTypeWait, domain.StepTypeCustom:
	}

	id := fmt.Sprintf("board-%s-%s", objective.Type, objective.Target)
	return &domain.Chain{
		ID:          id,
		Name:        objective.Raw,
		Description: "generated from quest board",
		Enabled:     true,
		Steps: []*domain.Step{{
			ID:       id,
			Name:     objective.Raw,
			Type:     objective.Type,
			MaxRetry: constants.DefaultMaxRetry,
			Config:   config,
		}},
	}
}

// Chains builds one chain per objective.
func (p *Parser) Chains(objectives []Objective) []*domain.Chain {
	chains := make([]*domain.Chain, 0, len(objectives))
	for _, objective := range objectives {
		chains = append(chains, p.Chain(objective))
	}
	return chains
}

// parseCount reads an optional quantity capture, defaulting to one.
func parseCount(s string) int {
	if s == "" {
		return 1
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// normalizeTarget turns a board subject into a template-id style token:
// lowercase, punctuation trimmed, spaces collapsed to underscores.
func normalizeTarget(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Trim(s, ".!,:;")
	return strings.Join(strings.Fields(s), "_")
}
