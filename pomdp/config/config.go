// Package config loads planner hyperparameters from YAML, the way
// tabular/reinforcement.go's TrainingConfig does for its training runs.
package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// OuterConfig is viper's envelope: a kind selector plus an opaque payload,
// re-marshaled into PlannerConfig below. Same shape as
// tabular/reinforcement.go's OuterConfig.
type OuterConfig struct {
	Kind string      `mapstructure:"kind"`
	Def  interface{} `mapstructure:"def"`
}

// PlannerConfig holds the planning hyperparameters and algorithm/domain
// selectors outside of code. Not complete or fully factored — it holds what
// the demo CLI and tests need, the way TrainingConfig did for tabular.
type PlannerConfig struct {
	// HyperParams is a key-val pair of param names and their value:
	// discount_factor, c_ucb, num_visits_init, value_init,
	// target_particle_count, planning_time_seconds, num_sims.
	HyperParams []HyperParameter `mapstructure:"hyperParams"`
	// Algorithm selects the planner ("pouct" or "pomcp") and the domain
	// ("tiger" or "battleship").
	Algorithm map[string]string `mapstructure:"algorithm"`
	// MaxDepth is the search/rollout horizon. Kept as a plain int rather
	// than a HyperParameter since it's structural (array/slice sizing,
	// tree depth), not a tunable float.
	MaxDepth int `mapstructure:"maxDepth"`
	// PlanningDeadline bounds a planning run: its "duration" key (a
	// time.ParseDuration string) becomes the timeout of the context
	// WithPlanningDeadline returns. No other key, such as a fixed deadline
	// time, is read.
	PlanningDeadline map[string]string `mapstructure:"planningDeadline"`
}

type HyperParameter struct {
	Key string  `yaml:"key"`
	Val float64 `yaml:"val"`
}

// GetHyperParamOrDefault returns the named hyperparameter's value, or
// defaultVal if it isn't present.
func (cfg *PlannerConfig) GetHyperParamOrDefault(param string, defaultVal float64) float64 {
	for _, kvp := range cfg.HyperParams {
		if kvp.Key == param {
			return kvp.Val
		}
	}
	return defaultVal
}

// WithPlanningDeadline returns a context extended by the configured planning
// deadline, if one is specified, else a plain cancellable context.
func (cfg *PlannerConfig) WithPlanningDeadline(
	ctx context.Context,
) (context.Context, context.CancelFunc, error) {
	if val, ok := cfg.PlanningDeadline["duration"]; ok {
		duration, err := time.ParseDuration(val)
		if err != nil {
			return nil, nil, err
		}
		innerCtx, cancel := context.WithTimeout(ctx, duration)
		return innerCtx, cancel, nil
	}
	defaultCtx, cancel := context.WithCancel(ctx)
	return defaultCtx, cancel, nil
}

// FromYaml reads path via viper (for its multi-format/path-search
// conveniences), then re-marshals the "def" envelope through yaml.v3 into a
// strongly-typed PlannerConfig — the same two-stage decode
// tabular/reinforcement.go's FromYaml uses, for the same reason: viper's
// Unmarshal targets a loosely-typed map well, but a second strongly-typed
// pass catches shape mistakes viper's mapstructure tags would otherwise
// silently drop.
func FromYaml(path string) (*PlannerConfig, error) {
	vp := viper.New()
	vp.SetConfigFile(filepath.Base(path))
	vp.SetConfigType("yaml")
	vp.AddConfigPath(filepath.Dir(path))

	if err := vp.ReadInConfig(); err != nil {
		return nil, err
	}

	outerConfig := &OuterConfig{}
	if err := vp.Unmarshal(outerConfig); err != nil {
		return nil, err
	}

	spec, err := yaml.Marshal(outerConfig.Def)
	if err != nil {
		return nil, err
	}

	innerConfig := &PlannerConfig{}
	if err := yaml.Unmarshal(spec, innerConfig); err != nil {
		return nil, err
	}

	return innerConfig, nil
}
