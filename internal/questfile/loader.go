// Package questfile loads chain definitions from YAML files.
//
// A quest file carries a list of chains plus an optional target catalog
// shared by their steps. Conditions are written either as a builtin
// predicate name or as an expression; both resolve at load time, so a
// bad condition fails the load rather than a run.
//
// Import rules:
//   - CAN import: internal/conditions, internal/constants, internal/domain, internal/errors, std lib
//   - MUST NOT import: internal/quest, internal/schedule, internal/cli
package questfile

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/averlon/questline/internal/conditions"
	"github.com/averlon/questline/internal/constants"
	"github.com/averlon/questline/internal/domain"
	questerrors "github.com/averlon/questline/internal/errors"
)

// File is the YAML structure of a quest file.
type File struct {
	// Targets is the catalog of named perception targets steps can
	// reference via their config's target key.
	Targets map[string]FileTarget `yaml:"targets,omitempty"`

	// Chains is the list of chain definitions.
	Chains []FileChain `yaml:"chains"`
}

// FileTarget is one catalog entry. Template is the perception template
// id; when empty, the catalog key itself is used.
type FileTarget struct {
	Template  string         `yaml:"template,omitempty"`
	Region    map[string]any `yaml:"region,omitempty"`
	Threshold float64        `yaml:"threshold,omitempty"`
	Marker    string         `yaml:"marker,omitempty"`
}

// FileChain is one chain definition in the YAML file.
type FileChain struct {
	ID          string     `yaml:"id"`
	Name        string     `yaml:"name"`
	Description string     `yaml:"description,omitempty"`
	Enabled     *bool      `yaml:"enabled,omitempty"`
	Loop        bool       `yaml:"loop,omitempty"`
	LoopDelay   any        `yaml:"loop_delay,omitempty"`
	LoopReset   string     `yaml:"loop_reset,omitempty"`
	Priority    int        `yaml:"priority,omitempty"`
	Steps       []FileStep `yaml:"steps"`
}

// FileStep is one step definition in the YAML file.
type FileStep struct {
	ID            string         `yaml:"id"`
	Name          string         `yaml:"name,omitempty"`
	Type          string         `yaml:"type"`
	MaxRetry      *int           `yaml:"max_retry,omitempty"`
	Timeout       any            `yaml:"timeout,omitempty"`
	Precondition  string         `yaml:"precondition,omitempty"`
	Postcondition string         `yaml:"postcondition,omitempty"`
	Config        map[string]any `yaml:"config,omitempty"`
}

// Loader converts quest files into validated chains.
type Loader struct {
	world    *conditions.World
	compiler *conditions.Compiler
}

// NewLoader creates a loader resolving conditions against the given
// world.
func NewLoader(world *conditions.World, compiler *conditions.Compiler) *Loader {
	return &Loader{world: world, compiler: compiler}
}

// LoadFile reads and parses the quest file at path.
func (l *Loader) LoadFile(path string) ([]*domain.Chain, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path comes from user config or flags
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", questerrors.ErrChainFileMissing, path)
		}
		return nil, fmt.Errorf("%w: %s: %w", questerrors.ErrChainFileMissing, path, err)
	}
	chains, err := l.Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return chains, nil
}

// Load parses quest file content into validated chains.
func (l *Loader) Load(data []byte) ([]*domain.Chain, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %w", questerrors.ErrChainFileParse, err)
	}
	if len(file.Chains) == 0 {
		return nil, questerrors.Wrap(questerrors.ErrNoChains, "quest file defines no chains")
	}

	chains := make([]*domain.Chain, 0, len(file.Chains))
	seen := make(map[string]struct{}, len(file.Chains))
	for i, fc := range file.Chains {
		chain, err := l.toChain(&fc, file.Targets)
		if err != nil {
			return nil, fmt.Errorf("chain %d (%s): %w", i, fc.ID, err)
		}
		if _, dup := seen[chain.ID]; dup {
			return nil, questerrors.Wrapf(questerrors.ErrChainInvalid, "duplicate chain id %q", chain.ID)
		}
		seen[chain.ID] = struct{}{}
		chains = append(chains, chain)
	}
	return chains, nil
}

// toChain converts a file chain to a validated domain chain.
func (l *Loader) toChain(fc *FileChain, targets map[string]FileTarget) (*domain.Chain, error) {
	loopDelay, err := parseDuration(fc.LoopDelay)
	if err != nil {
		return nil, questerrors.Wrapf(questerrors.ErrChainInvalid, "loop_delay: %v", err)
	}
	if fc.Loop && loopDelay == 0 {
		loopDelay = constants.DefaultLoopDelay
	}

	// Chains are enabled unless the file says otherwise.
	enabled := true
	if fc.Enabled != nil {
		enabled = *fc.Enabled
	}

	chain := &domain.Chain{
		ID:          fc.ID,
		Name:        fc.Name,
		Description: fc.Description,
		Enabled:     enabled,
		Loop:        fc.Loop,
		LoopDelay:   loopDelay,
		LoopReset:   domain.LoopResetPolicy(fc.LoopReset),
		Priority:    fc.Priority,
	}
	if chain.Name == "" {
		chain.Name = chain.ID
	}

	chain.Steps = make([]*domain.Step, 0, len(fc.Steps))
	for i, fs := range fc.Steps {
		step, err := l.toStep(&fs, targets)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, fs.ID, err)
		}
		chain.Steps = append(chain.Steps, step)
	}

	if err := chain.Validate(); err != nil {
		return nil, err
	}
	return chain, nil
}

// toStep converts a file step to a domain step, merging catalog data
// and resolving conditions.
func (l *Loader) toStep(fs *FileStep, targets map[string]FileTarget) (*domain.Step, error) {
	timeout, err := parseDuration(fs.Timeout)
	if err != nil {
		return nil, questerrors.Wrapf(questerrors.ErrStepInvalid, "timeout: %v", err)
	}

	maxRetry := constants.DefaultMaxRetry
	if fs.MaxRetry != nil {
		maxRetry = *fs.MaxRetry
	}

	step := &domain.Step{
		ID:       fs.ID,
		Name:     fs.Name,
		Type:     domain.StepType(fs.Type),
		MaxRetry: maxRetry,
		Timeout:  timeout,
		Config:   fs.Config,
	}
	if step.Name == "" {
		step.Name = step.ID
	}

	if err := mergeTarget(step, targets); err != nil {
		return nil, err
	}

	if step.Precondition, err = l.resolveCondition(fs.Precondition); err != nil {
		return nil, fmt.Errorf("precondition: %w", err)
	}
	if step.Postcondition, err = l.resolveCondition(fs.Postcondition); err != nil {
		return nil, fmt.Errorf("postcondition: %w", err)
	}
	return step, nil
}

// resolveCondition turns a condition string into a predicate. Builtin
// names win; anything else compiles as an expression. Empty means nil
// (always pass).
func (l *Loader) resolveCondition(src string) (domain.Condition, error) {
	if src == "" {
		return nil, nil
	}
	if cond, err := conditions.Builtin(l.world, src); err == nil {
		return cond, nil
	}
	return l.compiler.Compile(src)
}

// mergeTarget resolves the step's target reference against the catalog
// and fills in catalog values the step does not override. When the file
// declares a catalog, every referenced target must resolve; without a
// catalog, targets pass through as raw template ids.
func mergeTarget(step *domain.Step, targets map[string]FileTarget) error {
	if len(targets) == 0 || step.Config == nil {
		return nil
	}
	ref, ok := step.Config["target"].(string)
	if !ok || ref == "" {
		return nil
	}
	entry, found := targets[ref]
	if !found {
		return questerrors.Wrapf(questerrors.ErrTargetUnknown, "step %q references %q", step.ID, ref)
	}

	if entry.Template != "" {
		step.Config["target"] = entry.Template
	}
	setAbsent(step.Config, "region", entry.Region, len(entry.Region) > 0)
	setAbsent(step.Config, "threshold", entry.Threshold, entry.Threshold > 0)
	setAbsent(step.Config, "marker", entry.Marker, entry.Marker != "")
	return nil
}

// setAbsent writes key into config unless the step already set it or
// the catalog entry carries no value.
func setAbsent(config map[string]any, key string, value any, present bool) {
	if !present {
		return
	}
	if _, exists := config[key]; exists {
		return
	}
	config[key] = value
}

// parseDuration accepts "90s"-style strings and bare numbers, which
// read as seconds. Nil reads as zero.
func parseDuration(v any) (time.Duration, error) {
	switch value := v.(type) {
	case nil:
		return 0, nil
	case string:
		if value == "" {
			return 0, nil
		}
		return time.ParseDuration(value)
	case int:
		return time.Duration(value) * time.Second, nil
	case float64:
		return time.Duration(value * float64(time.Second)), nil
	default:
		return 0, fmt.Errorf("unsupported duration value %v (%T)", v, v)
	}
}
