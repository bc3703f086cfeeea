package cli

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/spf13/cobra"

	questerrors "github.com/averlon/questline/internal/errors"
	"github.com/averlon/questline/internal/questboard"
)

// boardFlags holds flags specific to the board command.
type boardFlags struct {
	text string
}

// AddBoardCommand adds the board command to the parent command.
func AddBoardCommand(parent *cobra.Command, global *GlobalFlags) {
	flags := &boardFlags{}

	cmd := &cobra.Command{
		Use:   "board",
		Short: "Parse quest board text into objectives and chains",
		Long: `Board parses quest board text into structured objectives and shows
the single-step chains questline would generate for them. Text comes
from --text or stdin; in a live run the same parser reads the board
through the perception port.`,
		Example: `  questline board --text "Defeat 10 quarry rats"
  cat board.txt | questline board
  questline board --text "Collect 5 iron ore" --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return parseBoard(cmd, global, flags)
		},
	}

	cmd.Flags().StringVar(&flags.text, "text", "", "board text to parse (reads stdin when empty)")

	parent.AddCommand(cmd)
}

// boardReport pairs an objective with the chain generated for it.
type boardReport struct {
	Objective questboard.Objective `json:"objective"`
	ChainID   string               `json:"chain_id"`
	Steps     int                  `json:"steps"`
}

// parseBoard reads board text, parses objectives, and prints the chains
// that would run for them.
func parseBoard(cmd *cobra.Command, global *GlobalFlags, flags *boardFlags) error {
	text := flags.text
	if text == "" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return questerrors.Wrap(err, "reading board text from stdin")
		}
		text = string(data)
	}
	if strings.TrimSpace(text) == "" {
		return questerrors.NewExitCode2Error(
			questerrors.Wrap(questerrors.ErrEmptyValue, "no board text given"))
	}

	parser := questboard.NewParser(GetLogger())
	objectives, err := parser.Parse(text)
	if err != nil {
		return questerrors.NewExitCode2Error(err)
	}

	reports := make([]boardReport, 0, len(objectives))
	for _, objective := range objectives {
		chain := parser.Chain(objective)
		reports = append(reports, boardReport{
			Objective: objective,
			ChainID:   chain.ID,
			Steps:     len(chain.Steps),
		})
	}

	if global.Output == OutputJSON {
		out, err := json.MarshalIndent(reports, "", "  ")
		if err != nil {
			return questerrors.Wrap(err, "encoding board report")
		}
		cmd.Println(string(out))
		return nil
	}

	cmd.Printf("%d objective(s) recognized\n", len(reports))
	for _, r := range reports {
		cmd.Printf("  %-8s %-20s x%d  -> chain %s\n",
			r.Objective.Type, r.Objective.Target, r.Objective.Count, r.ChainID)
	}
	return nil
}
