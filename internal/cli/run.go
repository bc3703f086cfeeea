package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/averlon/questline/internal/clock"
	"github.com/averlon/questline/internal/conditions"
	"github.com/averlon/questline/internal/config"
	"github.com/averlon/questline/internal/constants"
	"github.com/averlon/questline/internal/domain"
	questerrors "github.com/averlon/questline/internal/errors"
	"github.com/averlon/questline/internal/flock"
	"github.com/averlon/questline/internal/game"
	"github.com/averlon/questline/internal/game/sim"
	"github.com/averlon/questline/internal/quest"
	"github.com/averlon/questline/internal/questfile"
	"github.com/averlon/questline/internal/schedule"
	"github.com/averlon/questline/internal/signal"
	"github.com/averlon/questline/internal/steps"
	"github.com/averlon/questline/internal/vitals"
)

// progressInterval is how often the run command reports the chain and
// step currently executing.
const progressInterval = 5 * time.Second

// runFlags holds flags specific to the run command.
type runFlags struct {
	file      string
	chain     string
	policy    string
	onFatal   string
	dryRun    bool
	maxPasses int
}

// AddRunCommand adds the run command to the parent command.
func AddRunCommand(parent *cobra.Command, global *GlobalFlags) {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the chains defined in a quest file",
		Long: `Run loads a quest file, registers its chains, and executes them
under the configured schedule policy. The vitals gate (when enabled)
checks the character before each chain and aborts on death.

With --dry-run the chains execute against the built-in scripted backend
on a fake clock: every referenced target is pre-placed, so the whole
schedule completes instantly. Use it to exercise a quest file end to
end without a game client.`,
		Example: `  questline run
  questline run --file mining.yaml
  questline run --file mining.yaml --chain copper-loop
  questline run --policy rounds --on-fatal skip
  questline run --file mining.yaml --dry-run`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runChains(cmd, global, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.file, "file", "f", "questline.yaml", "quest file to load")
	cmd.Flags().StringVar(&flags.chain, "chain", "", "run only the chain with this id")
	cmd.Flags().StringVar(&flags.policy, "policy", "", "schedule policy override (sequential|priority|rounds)")
	cmd.Flags().StringVar(&flags.onFatal, "on-fatal", "", "gate reaction override (stop|skip)")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "execute against the scripted backend on a fake clock")
	cmd.Flags().IntVar(&flags.maxPasses, "max-passes", 0, "bound looping chains to this many passes (0 = unbounded)")

	parent.AddCommand(cmd)
}

// runChains is the run command body: build the capability stack, load
// the quest file, and drive the scheduler until it finishes or the user
// interrupts.
func runChains(cmd *cobra.Command, global *GlobalFlags, flags *runFlags) error {
	logger := GetLogger()

	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return err
	}

	// One questline per home directory: concurrent instances would
	// fight over the same input devices. Dry runs never actuate, so
	// they skip the lock.
	if !flags.dryRun {
		lock, lockErr := acquireRunLock()
		if lockErr != nil {
			return lockErr
		}
		defer func() { _ = lock.Release() }()
	}

	handler := signal.NewHandler(cmd.Context())
	defer handler.Stop()
	ctx := handler.Context()

	var clk clock.Clock = clock.RealClock{}
	if flags.dryRun {
		clk = clock.NewFake(time.Now())
	}

	world := sim.NewWorld(clk)
	var ports game.Ports = world

	// The vitals guard doubles as the condition environment's vital
	// reader, so expressions like hp() and the gate read the same bars.
	var guard *vitals.Guard
	if cfg.Schedule.VitalsGate {
		guard = vitals.NewGuard(ports, clk, vitalsConfig(cfg.Vitals), logger)
	}

	condWorld := &conditions.World{Perception: ports}
	if guard != nil {
		condWorld.Vitals = guard.Reader()
	}
	compiler := conditions.NewCompiler(condWorld, logger)

	loader := questfile.NewLoader(condWorld, compiler)
	chains, err := loader.LoadFile(flags.file)
	if err != nil {
		return questerrors.NewExitCode2Error(err)
	}
	if flags.chain != "" {
		chains, err = selectChain(chains, flags.chain)
		if err != nil {
			return questerrors.NewExitCode2Error(err)
		}
	}

	if flags.dryRun {
		seedWorld(world, chains, cfg.Vitals)
	}

	deps := steps.ExecutorDeps{
		Ports:     ports,
		Clock:     clk,
		Logger:    logger,
		Callables: conditions.Builtins(condWorld),
	}
	if guard != nil {
		deps.InCombat = guard.Reader().InCombat
	}
	registry := steps.NewDefaultRegistry(deps)

	orch := quest.NewOrchestrator(registry, clk, logger,
		quest.WithHistoryCapacity(cfg.Quest.HistoryCapacity))
	for _, chain := range chains {
		if err := orch.Register(chain); err != nil {
			return questerrors.NewExitCode2Error(err)
		}
	}

	policyName := cfg.Schedule.Policy
	if flags.policy != "" {
		policyName = flags.policy
	}
	policy, err := schedule.ParsePolicy(policyName)
	if err != nil {
		return questerrors.NewExitCode2Error(err)
	}

	// A dry run must terminate: cap looping chains to one pass unless
	// the user asked for more.
	maxPasses := flags.maxPasses
	if flags.dryRun && maxPasses == 0 {
		maxPasses = 1
	}

	opts := []schedule.Option{
		schedule.WithRoundDelay(cfg.Schedule.RoundDelay),
		schedule.WithMaxRounds(cfg.Schedule.MaxRounds),
	}
	if maxPasses > 0 {
		opts = append(opts, schedule.WithChainRunOptions(quest.WithMaxPasses(maxPasses)))
	}
	if guard != nil {
		gatePolicy, gpErr := resolveGatePolicy(cfg.Schedule.GatePolicy, flags.onFatal)
		if gpErr != nil {
			return questerrors.NewExitCode2Error(gpErr)
		}
		opts = append(opts, schedule.WithGate(guard, gatePolicy))
	}
	sched := schedule.NewScheduler(orch, policy, clk, logger, opts...)

	logger.Info().
		Str("file", flags.file).
		Str("policy", policy.String()).
		Int("chains", len(chains)).
		Bool("dry_run", flags.dryRun).
		Msg("starting schedule")

	ok, runErr := executeSchedule(ctx, sched, orch)

	select {
	case <-handler.Interrupted():
		logger.Warn().Msg("interrupted, stopping")
	default:
	}

	if err := reportRun(cmd, global, orch); err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}
	if !ok {
		return fmt.Errorf("schedule finished with failures")
	}
	return nil
}

// executeSchedule runs the scheduler alongside a periodic progress
// reporter, returning once the schedule finishes.
func executeSchedule(ctx context.Context, sched *schedule.Scheduler, orch *quest.Orchestrator) (bool, error) {
	g, gctx := errgroup.WithContext(ctx)
	progressCtx, stopProgress := context.WithCancel(gctx)

	var ok bool
	g.Go(func() error {
		defer stopProgress()
		var err error
		ok, err = sched.Run(gctx)
		return err
	})
	g.Go(func() error {
		reportProgress(progressCtx, orch)
		return nil
	})

	return ok, g.Wait()
}

// reportProgress logs the chain and step currently executing on a wall
// clock interval. It reports nothing between chains.
func reportProgress(ctx context.Context, orch *quest.Orchestrator) {
	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			chainID, running := orch.CurrentChain()
			if !running {
				continue
			}
			logger := GetLogger()
			event := logger.Info().Str("chain_id", chainID)
			if stepID, ok := orch.CurrentStep(); ok {
				event = event.Str("step_id", stepID)
			}
			event.Msg("still running")
		}
	}
}

// reportRun prints the run history in the requested output format.
func reportRun(cmd *cobra.Command, global *GlobalFlags, orch *quest.Orchestrator) error {
	records := orch.History()
	if global.Output == OutputJSON {
		out, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return questerrors.Wrap(err, "encoding run history")
		}
		cmd.Println(string(out))
		return nil
	}
	for _, record := range records {
		cmd.Println(quest.RunSummary(record))
	}
	return nil
}

// selectChain narrows the loaded chains to the one with the given id.
func selectChain(chains []*domain.Chain, id string) ([]*domain.Chain, error) {
	for _, chain := range chains {
		if chain.ID == id {
			return []*domain.Chain{chain}, nil
		}
	}
	return nil, questerrors.Wrapf(questerrors.ErrChainNotFound, "%q", id)
}

// resolveGatePolicy maps the configured gate policy, with the --on-fatal
// flag taking precedence.
func resolveGatePolicy(configured, flag string) (schedule.GatePolicy, error) {
	name := configured
	switch flag {
	case "":
	case "stop":
		name = "stop_all"
	case "skip":
		name = "skip_chain"
	default:
		return "", questerrors.Wrapf(questerrors.ErrInvalidArgument, "--on-fatal must be stop or skip, got %q", flag)
	}
	switch name {
	case "skip_chain":
		return schedule.GateSkipChain, nil
	default:
		return schedule.GateStopAll, nil
	}
}

// acquireRunLock takes the single-instance lock under the questline
// home directory.
func acquireRunLock() (*flock.Lock, error) {
	dir, err := config.GlobalConfigDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, questerrors.Wrap(err, "creating questline home")
	}
	lock, err := flock.Acquire(filepath.Join(dir, constants.RunLockFileName))
	if err != nil {
		return nil, questerrors.Wrap(err, "another questline instance appears to be running")
	}
	return lock, nil
}

// vitalsConfig converts the configuration section into the vitals
// package's config, leaving zero values to its own defaulting.
func vitalsConfig(cfg config.VitalsConfig) vitals.Config {
	return vitals.Config{
		HPRegion:     region(cfg.HPRegion),
		MPRegion:     region(cfg.MPRegion),
		ReviveMarker: cfg.ReviveMarker,
		CombatMarker: cfg.CombatMarker,
		HPPotionKey:  cfg.HPPotionKey,
		MPPotionKey:  cfg.MPPotionKey,
		HPThreshold:  cfg.HPThreshold,
		MPThreshold:  cfg.MPThreshold,
		PotionSettle: cfg.PotionSettle,
	}
}

// region converts a config region into a game region.
func region(r config.RegionConfig) game.Region {
	return game.Region{Left: r.Left, Top: r.Top, Right: r.Right, Bottom: r.Bottom}
}

// seedWorld pre-places everything the chains reference into the
// scripted world so a dry run exercises the full success path: targets
// and markers appear, combat targets die to key presses, and the vital
// bars read healthy.
func seedWorld(world *sim.World, chains []*domain.Chain, vcfg config.VitalsConfig) {
	vd := vitals.DefaultConfig()
	hpRegion, mpRegion := region(vcfg.HPRegion), region(vcfg.MPRegion)
	if hpRegion == (game.Region{}) {
		hpRegion = vd.HPRegion
	}
	if mpRegion == (game.Region{}) {
		mpRegion = vd.MPRegion
	}
	world.SetText(hpRegion, "200/200")
	world.SetText(mpRegion, "200/200")

	for _, chain := range chains {
		for _, step := range chain.Steps {
			seedStep(world, step)
		}
	}
}

// seedStep places one step's target into the scripted world.
func seedStep(world *sim.World, step *domain.Step) {
	target, _ := step.Config["target"].(string)
	if marker, ok := step.Config["marker"].(string); ok && marker != "" {
		world.PlaceTarget(marker)
	}
	if target == "" {
		return
	}

	if step.Type != domain.StepTypeCombat {
		world.PlaceTarget(target)
		return
	}

	marker := "combat_hp_bar"
	if m, ok := step.Config["combat_marker"].(string); ok && m != "" {
		marker = m
	}
	opts := []sim.TargetOption{sim.Hits(1), sim.EngageMarker(marker)}
	if kills := configInt(step.Config["kills"]); kills > 1 {
		opts = append(opts, sim.Respawn(5*time.Second))
	}
	world.PlaceTarget(target, opts...)
}

// configInt reads a numeric config value across the types YAML produces.
func configInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
