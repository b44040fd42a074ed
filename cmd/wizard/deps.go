package main

import (
	"fmt"
	"os"

	"github.com/enetx/wizard/advisor"
	"github.com/enetx/wizard/intake"
	"github.com/enetx/wizard/nav"
)

// pages returns the configured route table, or the built-in one.
func (a *app) pages() (*nav.Table, error) {
	if a.cfg.Routes == "" {
		return nav.DefaultTable(), nil
	}

	f, err := os.Open(a.cfg.Routes)
	if err != nil {
		return nil, fmt.Errorf("open route table: %w", err)
	}
	defer f.Close()

	return nav.LoadTable(f)
}

// recommender returns an advisor over the configured catalog.
func (a *app) recommender() (*advisor.Recommender, error) {
	rec := advisor.NewRecommender()
	rec.Limit = a.cfg.Advisor.Limit
	rec.Delay = a.cfg.Advisor.Delay

	if a.cfg.Advisor.Catalog == "" {
		return rec, nil
	}

	f, err := os.Open(a.cfg.Advisor.Catalog)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	if rec.Catalog, err = advisor.LoadCatalog(f); err != nil {
		return nil, err
	}

	return rec, nil
}

func (a *app) intake() *intake.Client {
	c := intake.NewClient(a.cfg.Intake.Endpoint)
	c.Timeout = a.cfg.Intake.Timeout

	return c
}
