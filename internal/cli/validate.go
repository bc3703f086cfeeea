package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/averlon/questline/internal/clock"
	"github.com/averlon/questline/internal/conditions"
	"github.com/averlon/questline/internal/domain"
	questerrors "github.com/averlon/questline/internal/errors"
	"github.com/averlon/questline/internal/game/sim"
	"github.com/averlon/questline/internal/questfile"
)

// chainSummary is the validate command's per-chain report.
type chainSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Enabled  bool   `json:"enabled"`
	Loop     bool   `json:"loop"`
	Priority int    `json:"priority"`
	Steps    int    `json:"steps"`
}

// AddValidateCommand adds the validate command to the parent command.
func AddValidateCommand(parent *cobra.Command, global *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a quest file without running it",
		Long: `Validate parses a quest file, resolves its target catalog, and
compiles every condition expression. Errors that would otherwise
surface at run time (bad YAML, unknown targets, expressions that do not
yield a boolean) are reported here instead.`,
		Example: `  questline validate mining.yaml
  questline validate mining.yaml --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateFile(cmd, global, args[0])
		},
	}

	parent.AddCommand(cmd)
}

// validateFile loads the quest file and reports what it defines.
// Conditions compile against the scripted world; compilation only needs
// the environment shape, so no backend is touched.
func validateFile(cmd *cobra.Command, global *GlobalFlags, path string) error {
	logger := GetLogger()

	world := &conditions.World{Perception: sim.NewWorld(clock.RealClock{})}
	compiler := conditions.NewCompiler(world, logger)
	loader := questfile.NewLoader(world, compiler)

	chains, err := loader.LoadFile(path)
	if err != nil {
		return questerrors.NewExitCode2Error(err)
	}

	summaries := summarize(chains)
	if global.Output == OutputJSON {
		out, err := json.MarshalIndent(summaries, "", "  ")
		if err != nil {
			return questerrors.Wrap(err, "encoding validation report")
		}
		cmd.Println(string(out))
		return nil
	}

	cmd.Printf("%s: %d chain(s) valid\n", path, len(chains))
	for _, s := range summaries {
		state := "enabled"
		if !s.Enabled {
			state = "disabled"
		}
		loop := ""
		if s.Loop {
			loop = ", looping"
		}
		cmd.Printf("  %s (%s): %d step(s), priority %d, %s%s\n",
			s.ID, s.Name, s.Steps, s.Priority, state, loop)
	}
	return nil
}

// summarize converts chains into the validate report rows.
func summarize(chains []*domain.Chain) []chainSummary {
	out := make([]chainSummary, 0, len(chains))
	for _, chain := range chains {
		out = append(out, chainSummary{
			ID:       chain.ID,
			Name:     chain.Name,
			Enabled:  chain.Enabled,
			Loop:     chain.Loop,
			Priority: chain.Priority,
			Steps:    len(chain.Steps),
		})
	}
	return out
}
