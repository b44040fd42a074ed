package server

import (
	"context"
	"log/slog"

	"github.com/enetx/g"
	"github.com/enetx/wizard"
	"github.com/enetx/wizard/advisor"
	"github.com/enetx/wizard/intake"
)

// Flow names served under /api/{flow}.
const (
	FlowAdvisor    = "advisor"
	FlowOnboarding = "onboarding"
)

// factory creates a fresh wizard whose processor calls derive from ctx.
type factory func(ctx context.Context, log *slog.Logger) (wizard.Flow, error)

func flows(rec *advisor.Recommender, client *intake.Client) g.Map[g.String, factory] {
	m := g.NewMap[g.String, factory]()

	m[FlowAdvisor] = func(ctx context.Context, log *slog.Logger) (wizard.Flow, error) {
		return advisor.NewEngine(rec, wizard.WithContext(ctx), wizard.WithLogger(log))
	}

	m[FlowOnboarding] = func(ctx context.Context, log *slog.Logger) (wizard.Flow, error) {
		return intake.NewEngine(client, wizard.WithContext(ctx), wizard.WithLogger(log))
	}

	return m
}
