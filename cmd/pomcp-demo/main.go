/*
pomcp-demo runs one or more online POMDP planning loops (tiger or
battleship, POUCT or POMCP) against a simulated environment, visualizing
the root's action-value table and belief histogram in a browser.

Grounded on tabular/main.go's runApp/exportStates structure: load a yaml
config, start the background workers, run the server, all against a
single cancellable context.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"runtime"
	"sort"
	"time"

	"pomcp/atomic_float"
	"pomcp/dashboard"
	"pomcp/dashboard/planviews"
	"pomcp/pomdp"
	"pomcp/pomdp/config"
	"pomcp/pomdp/envs/battleship"
	"pomcp/pomdp/envs/tiger"
	"pomcp/pomdp/particles"
	"pomcp/pomdp/pomcp"
	"pomcp/pomdp/pouct"

	channerics "github.com/niceyeti/channerics/channels"
	"golang.org/x/sync/errgroup"
)

var (
	domain       *string
	algorithm    *string
	nworkers     *int
	host         *string
	port         *string
	configPath   *string
	numDoors     *int
	numParticles *int
	addr         string
)

func init() {
	domain = flag.String("domain", "tiger", "planning domain: tiger|battleship")
	algorithm = flag.String("algorithm", "pomcp", "planning algorithm: pouct|pomcp")
	nworkers = flag.Int("nworkers", runtime.NumCPU(), "number of concurrent planning workers")
	host = flag.String("host", "", "the host ip")
	port = flag.String("port", "8080", "the host port")
	configPath = flag.String("config", "./config.yaml", "path to planner config yaml")
	numDoors = flag.Int("numDoors", 3, "tiger domain: number of doors")
	numParticles = flag.Int("numParticles", 200, "initial particle belief size")
	flag.Parse()
	addr = *host + ":" + *port
}

// episode bundles the pieces runEpisodes needs from a domain/algorithm
// pairing, so the planning loop below is written once and reused across
// all four (domain, algorithm) combinations.
type episode[S pomdp.State, A pomdp.Action, O pomdp.Observation] struct {
	agent       *pomdp.Agent[S, A, O]
	env         *pomdp.Environment[S, A, O]
	plan        func(context.Context) (A, error)
	update      func(context.Context, A, O) error
	rootStats   func() []pouct.ActionStat[A]
	rootBelief  func() map[string]float64
	actionLabel func(A) string
}

// runEpisodes drives one worker's plan/observe/update loop indefinitely,
// publishing a Snapshot of the root's statistics after every step.
func runEpisodes[S pomdp.State, A pomdp.Action, O pomdp.Observation](
	ctx context.Context,
	ep episode[S, A, O],
	cumulativeReward *atomic_float.AtomicFloat64,
	out chan<- planviews.Snapshot,
) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		action, err := ep.plan(ctx)
		if err != nil {
			return err
		}

		reward, err := ep.env.Step(ctx, action, ep.agent.History())
		if err != nil {
			return err
		}
		cumulativeReward.AtomicAdd(reward)

		obs, err := ep.agent.Models.Observation.Sample(ctx, ep.env.State(), action)
		if err != nil {
			return err
		}

		snap := buildSnapshot(ep.rootStats(), ep.rootBelief(), ep.actionLabel)

		ep.agent.UpdateHistory(action, obs)
		if err := ep.update(ctx, action, obs); err != nil {
			return err
		}

		select {
		case out <- snap:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// buildSnapshot converts raw planner introspection into the view-model
// planviews.ActionTable/BeliefHistogram render, the way
// tabular/server/cell_views/cell_model.go's Convert projects grid_world
// state down to CellViewModel.
func buildSnapshot[A pomdp.Action](
	stats []pouct.ActionStat[A],
	belief map[string]float64,
	actionLabel func(A) string,
) planviews.Snapshot {
	rows := make([]planviews.ActionRow, len(stats))
	for i, st := range stats {
		rows[i] = planviews.NewActionRow(
			actionLabel(st.Action),
			st.NumVisits,
			st.Value,
			planviews.FormatUCB(st.UCB, st.NumVisits),
		)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].NumVisits > rows[j].NumVisits })

	counts := make(map[string]int, len(belief))
	total := 0
	for label, p := range belief {
		n := int(p * 1000)
		counts[label] = n
		total += n
	}
	bars := planviews.Histogram(counts, total)
	sort.Slice(bars, func(i, j int) bool { return bars[i].Pct > bars[j].Pct })

	return planviews.Snapshot{Actions: rows, Beliefs: bars}
}

func tigerEpisode(cfg *config.PlannerConfig, rng *rand.Rand) (episode[tiger.State, tiger.Action, tiger.Observation], error) {
	noise := cfg.GetHyperParamOrDefault("observation_noise", 0.15)
	models, policy := tiger.Models(*numDoors, noise)
	belief := particles.New(tiger.UniformBelief(*numDoors), particles.ApproxNone, nil)
	agent := pomdp.NewAgent[tiger.State, tiger.Action, tiger.Observation](models, policy, belief)
	env := pomdp.NewEnvironment[tiger.State, tiger.Action, tiger.Observation](
		tiger.DoorState(rng.Intn(*numDoors)), models.Transition, models.Reward)

	actionLabel := func(a tiger.Action) string { return string(a) }

	switch *algorithm {
	case "pouct":
		opts := pouctOptions[tiger.State, tiger.Action, tiger.Observation](cfg, tiger.RolloutPolicy{Policy: policy})
		planner, err := pouct.New(agent, opts)
		if err != nil {
			return episode[tiger.State, tiger.Action, tiger.Observation]{}, err
		}
		return episode[tiger.State, tiger.Action, tiger.Observation]{
			agent: agent, env: env,
			plan: planner.Plan,
			update: func(_ context.Context, a tiger.Action, o tiger.Observation) error {
				return planner.Update(a, o)
			},
			rootStats:   planner.RootStats,
			rootBelief:  func() map[string]float64 { return nil },
			actionLabel: actionLabel,
		}, nil
	default:
		opts := pomcpOptions[tiger.State, tiger.Action, tiger.Observation](cfg, tiger.RolloutPolicy{Policy: policy})
		planner, err := pomcp.New(agent, opts)
		if err != nil {
			return episode[tiger.State, tiger.Action, tiger.Observation]{}, err
		}
		transform := pomdp.StateTransformFunc[tiger.State](func(_ context.Context, s tiger.State) (tiger.State, error) {
			return tiger.DoorState(rng.Intn(*numDoors)), nil
		})
		return episode[tiger.State, tiger.Action, tiger.Observation]{
			agent: agent, env: env,
			plan: planner.Plan,
			update: func(ctx context.Context, a tiger.Action, o tiger.Observation) error {
				return planner.Update(ctx, a, o, transform)
			},
			rootStats: planner.RootStats,
			rootBelief: func() map[string]float64 {
				if b := planner.RootBelief(); b != nil {
					out := make(map[string]float64, len(b.Histogram()))
					for s, p := range b.Histogram() {
						out[string(s)] = p
					}
					return out
				}
				return nil
			},
			actionLabel: actionLabel,
		}, nil
	}
}

func battleshipEpisode(cfg *config.PlannerConfig, rng *rand.Rand) (episode[battleship.State, battleship.Action, battleship.Observation], error) {
	agent, env := battleship.NewProblem(rng, *numParticles)
	actionLabel := func(a battleship.Action) string { return fmt.Sprintf("(%d,%d)", a.X, a.Y) }

	switch *algorithm {
	case "pouct":
		opts := pouctOptions[battleship.State, battleship.Action, battleship.Observation](cfg, battleship.RolloutPolicy{})
		planner, err := pouct.New(agent, opts)
		if err != nil {
			return episode[battleship.State, battleship.Action, battleship.Observation]{}, err
		}
		return episode[battleship.State, battleship.Action, battleship.Observation]{
			agent: agent, env: env,
			plan: planner.Plan,
			update: func(_ context.Context, a battleship.Action, o battleship.Observation) error {
				return planner.Update(a, o)
			},
			rootStats:   planner.RootStats,
			rootBelief:  func() map[string]float64 { return nil },
			actionLabel: actionLabel,
		}, nil
	default:
		opts := pomcpOptions[battleship.State, battleship.Action, battleship.Observation](cfg, battleship.RolloutPolicy{})
		planner, err := pomcp.New(agent, opts)
		if err != nil {
			return episode[battleship.State, battleship.Action, battleship.Observation]{}, err
		}
		baseTransform := battleship.Transform{Rand: rng}
		return episode[battleship.State, battleship.Action, battleship.Observation]{
			agent: agent, env: env,
			plan: planner.Plan,
			update: func(ctx context.Context, a battleship.Action, o battleship.Observation) error {
				transform := battleship.CoherentTransform(baseTransform, agent.History(), 20)
				return planner.Update(ctx, a, o, transform)
			},
			rootStats: planner.RootStats,
			rootBelief: func() map[string]float64 {
				if b := planner.RootBelief(); b == nil {
					return nil
				} else {
					out := make(map[string]float64, b.Len())
					for s, p := range b.Histogram() {
						out[fmt.Sprintf("%v", s)] = p
					}
					return out
				}
			},
			actionLabel: actionLabel,
		}, nil
	}
}

func pouctOptions[S pomdp.State, A pomdp.Action, O pomdp.Observation](
	cfg *config.PlannerConfig,
	rollout pomdp.RolloutPolicy[S, A, O],
) pouct.Options[S, A, O] {
	return pouct.Options[S, A, O]{
		MaxDepth:       cfg.MaxDepth,
		NumSims:        int(cfg.GetHyperParamOrDefault("num_sims", 0)),
		PlanningTime:   planningTime(cfg),
		DiscountFactor: cfg.GetHyperParamOrDefault("discount_factor", 0),
		C:              cfg.GetHyperParamOrDefault("c_ucb", 0),
		NumVisitsInit:  int(cfg.GetHyperParamOrDefault("num_visits_init", 0)),
		ValueInit:      cfg.GetHyperParamOrDefault("value_init", 0),
		RolloutPolicy:  rollout,
	}
}

func pomcpOptions[S pomdp.State, A pomdp.Action, O pomdp.Observation](
	cfg *config.PlannerConfig,
	rollout pomdp.RolloutPolicy[S, A, O],
) pomcp.Options[S, A, O] {
	return pomcp.Options[S, A, O]{
		Options:             pouctOptions[S, A, O](cfg, rollout),
		TargetParticleCount: *numParticles,
	}
}

func planningTime(cfg *config.PlannerConfig) time.Duration {
	seconds := cfg.GetHyperParamOrDefault("planning_time_seconds", 0)
	if seconds <= 0 {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}

func runApp() error {
	cfg, err := config.FromYaml(*configPath)
	if err != nil {
		return err
	}

	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	workerCtx, workerCancel, err := cfg.WithPlanningDeadline(appCtx)
	if err != nil {
		return err
	}
	defer workerCancel()

	snapshotChans := make([]<-chan planviews.Snapshot, *nworkers)
	group, groupCtx := errgroup.WithContext(workerCtx)
	cumulative := atomic_float.NewAtomicFloat64(0)

	for i := 0; i < *nworkers; i++ {
		out := make(chan planviews.Snapshot)
		snapshotChans[i] = out
		rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(i)))

		var ep interface {
			run(context.Context, chan<- planviews.Snapshot) error
		}
		switch *domain {
		case "battleship":
			e, err := battleshipEpisode(cfg, rng)
			if err != nil {
				return err
			}
			ep = runnable(e, cumulative)
		default:
			e, err := tigerEpisode(cfg, rng)
			if err != nil {
				return err
			}
			ep = runnable(e, cumulative)
		}

		group.Go(func() error {
			defer close(out)
			return ep.run(groupCtx, out)
		})
	}

	merged := channerics.Merge(groupCtx.Done(), snapshotChans...)

	group.Go(func() error {
		srv := dashboard.NewServer(appCtx, addr, planviews.Snapshot{}, merged)
		return srv.Serve()
	})

	return group.Wait()
}

// runnableEpisode adapts runEpisodes' generic signature to a
// non-generic interface, since a slice of episode[S,A,O] workers can't
// mix distinct S/A/O across domains within one loop.
type runnableEpisode[S pomdp.State, A pomdp.Action, O pomdp.Observation] struct {
	ep         episode[S, A, O]
	cumulative *atomic_float.AtomicFloat64
}

func (r runnableEpisode[S, A, O]) run(ctx context.Context, out chan<- planviews.Snapshot) error {
	return runEpisodes(ctx, r.ep, r.cumulative, out)
}

func runnable[S pomdp.State, A pomdp.Action, O pomdp.Observation](
	ep episode[S, A, O],
	cumulative *atomic_float.AtomicFloat64,
) runnableEpisode[S, A, O] {
	return runnableEpisode[S, A, O]{ep: ep, cumulative: cumulative}
}

func main() {
	if err := runApp(); err != nil {
		fmt.Println(err)
	}
}
