// Package vitals reads character vital signs through the perception
// ports and guards schedules against running while the character is
// dead or critically low on health. Death is the fatal condition that
// may abort a whole schedule; low vitals trigger recovery key presses
// between chains.
package vitals

import (
	"context"
	"regexp"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/averlon/questline/internal/clock"
	"github.com/averlon/questline/internal/errors"
	"github.com/averlon/questline/internal/game"
)

// Config locates the vital displays on screen and sets recovery
// behavior. Zero-valued fields fall back to the defaults below.
type Config struct {
	// HPRegion and MPRegion are the screen areas holding the
	// "current/max" bar text.
	HPRegion game.Region `json:"hp_region" mapstructure:"hp_region"`
	MPRegion game.Region `json:"mp_region" mapstructure:"mp_region"`

	// BarPattern extracts current and max values from bar text.
	// Must contain two capture groups.
	BarPattern string `json:"bar_pattern" mapstructure:"bar_pattern"`

	// ReviveMarker is the template visible only when the character is
	// dead (e.g. the revive button).
	ReviveMarker string `json:"revive_marker" mapstructure:"revive_marker"`

	// CombatMarker is the template visible only during combat.
	CombatMarker string `json:"combat_marker" mapstructure:"combat_marker"`

	// HPPotionKey and MPPotionKey are pressed when the matching vital
	// drops below its threshold.
	HPPotionKey string `json:"hp_potion_key" mapstructure:"hp_potion_key"`
	MPPotionKey string `json:"mp_potion_key" mapstructure:"mp_potion_key"`

	// HPThreshold and MPThreshold are ratios in (0,1]; a readable vital
	// below its threshold triggers one recovery press per gate check.
	HPThreshold float64 `json:"hp_threshold" mapstructure:"hp_threshold"`
	MPThreshold float64 `json:"mp_threshold" mapstructure:"mp_threshold"`

	// PotionSettle is the pause after a recovery press before the gate
	// check returns.
	PotionSettle time.Duration `json:"potion_settle" mapstructure:"potion_settle"`
}

// DefaultConfig returns the standard 1080p layout and recovery keys.
func DefaultConfig() Config {
	return Config{
		HPRegion:     game.Region{Left: 70, Top: 40, Right: 260, Bottom: 62},
		MPRegion:     game.Region{Left: 70, Top: 64, Right: 260, Bottom: 86},
		BarPattern:   `(\d+)\s*/\s*(\d+)`,
		ReviveMarker: "revive_button",
		CombatMarker: "combat_hp_bar",
		HPPotionKey:  "8",
		MPPotionKey:  "9",
		HPThreshold:  0.5,
		MPThreshold:  0.3,
		PotionSettle: 1 * time.Second,
	}
}

// withDefaults fills zero-valued fields from DefaultConfig.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.HPRegion == (game.Region{}) {
		c.HPRegion = def.HPRegion
	}
	if c.MPRegion == (game.Region{}) {
		c.MPRegion = def.MPRegion
	}
	if c.BarPattern == "" {
		c.BarPattern = def.BarPattern
	}
	if c.ReviveMarker == "" {
		c.ReviveMarker = def.ReviveMarker
	}
	if c.CombatMarker == "" {
		c.CombatMarker = def.CombatMarker
	}
	if c.HPPotionKey == "" {
		c.HPPotionKey = def.HPPotionKey
	}
	if c.MPPotionKey == "" {
		c.MPPotionKey = def.MPPotionKey
	}
	if c.HPThreshold == 0 {
		c.HPThreshold = def.HPThreshold
	}
	if c.MPThreshold == 0 {
		c.MPThreshold = def.MPThreshold
	}
	if c.PotionSettle == 0 {
		c.PotionSettle = def.PotionSettle
	}
	return c
}

// Reader answers vital-sign questions by reading the screen.
type Reader struct {
	perception game.Perception
	cfg        Config
	barRe      *regexp.Regexp
	logger     zerolog.Logger
}

// NewReader creates a Reader over the given perception port.
func NewReader(perception game.Perception, cfg Config, logger zerolog.Logger) *Reader {
	cfg = cfg.withDefaults()
	return &Reader{
		perception: perception,
		cfg:        cfg,
		barRe:      regexp.MustCompile(cfg.BarPattern),
		logger:     logger.With().Str("component", "vitals").Logger(),
	}
}

// HP returns the health ratio in [0,1]. ok is false when the bar could
// not be read; callers must not act on the ratio in that case.
func (r *Reader) HP(ctx context.Context) (float64, bool) {
	return r.readBar(ctx, r.cfg.HPRegion)
}

// MP returns the mana ratio in [0,1]. ok is false when unreadable.
func (r *Reader) MP(ctx context.Context) (float64, bool) {
	return r.readBar(ctx, r.cfg.MPRegion)
}

// Dead reports whether the revive marker is on screen.
func (r *Reader) Dead(ctx context.Context) bool {
	_, found, err := r.perception.Locate(ctx, r.cfg.ReviveMarker, game.LocateOptions{})
	if err != nil {
		r.logger.Debug().Err(err).Msg("revive marker lookup failed")
		return false
	}
	return found
}

// InCombat reports whether the combat marker is on screen.
func (r *Reader) InCombat(ctx context.Context) bool {
	_, found, err := r.perception.Locate(ctx, r.cfg.CombatMarker, game.LocateOptions{})
	if err != nil {
		r.logger.Debug().Err(err).Msg("combat marker lookup failed")
		return false
	}
	return found
}

// readBar recognizes "current/max" text in the region and returns the
// ratio.
func (r *Reader) readBar(ctx context.Context, region game.Region) (float64, bool) {
	match, found, err := r.perception.RecognizeText(ctx, game.TextOptions{Region: &region, Pattern: r.cfg.BarPattern})
	if err != nil || !found {
		if err != nil {
			r.logger.Debug().Err(err).Msg("vital bar read failed")
		}
		return 0, false
	}
	return parseRatio(r.barRe, match.Text)
}

// parseRatio extracts current/max from bar text using re's two capture
// groups.
func parseRatio(re *regexp.Regexp, text string) (float64, bool) {
	groups := re.FindStringSubmatch(text)
	if len(groups) < 3 {
		return 0, false
	}
	cur, err := strconv.Atoi(groups[1])
	if err != nil {
		return 0, false
	}
	maxVal, err := strconv.Atoi(groups[2])
	if err != nil || maxVal <= 0 {
		return 0, false
	}
	ratio := float64(cur) / float64(maxVal)
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	return ratio, true
}

// Guard is the standard schedule gate: it aborts on death and tops up
// low vitals with recovery key presses before a chain starts.
type Guard struct {
	reader    *Reader
	actuation game.Actuation
	clk       clock.Clock
	cfg       Config
	logger    zerolog.Logger
}

// NewGuard creates a Guard over the given ports.
func NewGuard(ports game.Ports, clk clock.Clock, cfg Config, logger zerolog.Logger) *Guard {
	cfg = cfg.withDefaults()
	return &Guard{
		reader:    NewReader(ports, cfg, logger),
		actuation: ports,
		clk:       clk,
		cfg:       cfg,
		logger:    logger.With().Str("component", "vitals").Logger(),
	}
}

// Reader exposes the guard's vital reader for reuse (conditions, CLI
// status output).
func (g *Guard) Reader() *Reader {
	return g.reader
}

// Check implements the schedule gate contract. Death returns a fatal
// condition error; low readable vitals trigger one recovery press each
// and do not fail the check.
func (g *Guard) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if g.reader.Dead(ctx) {
		g.logger.Warn().Msg("character is dead")
		return errors.Wrap(errors.ErrFatalCondition, "character is dead")
	}
	if hp, ok := g.reader.HP(ctx); ok && hp < g.cfg.HPThreshold {
		g.logger.Info().Float64("hp", hp).Str("key", g.cfg.HPPotionKey).Msg("hp low, using recovery")
		if err := g.recover(ctx, g.cfg.HPPotionKey); err != nil {
			return err
		}
	}
	if mp, ok := g.reader.MP(ctx); ok && mp < g.cfg.MPThreshold {
		g.logger.Info().Float64("mp", mp).Str("key", g.cfg.MPPotionKey).Msg("mp low, using recovery")
		if err := g.recover(ctx, g.cfg.MPPotionKey); err != nil {
			return err
		}
	}
	return nil
}

// recover presses a recovery key and waits for the settle pause.
// Actuation faults are logged, not escalated; the gate only aborts on
// fatal conditions.
func (g *Guard) recover(ctx context.Context, key string) error {
	if err := g.actuation.PressKey(ctx, key); err != nil {
		g.logger.Debug().Err(err).Msg("recovery press failed")
		return nil
	}
	return g.clk.Sleep(ctx, g.cfg.PotionSettle)
}
