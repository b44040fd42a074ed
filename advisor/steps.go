// Package advisor implements the appliance advisor questionnaire: four choice
// steps whose answers are ranked against a product catalog.
package advisor

import (
	"github.com/enetx/g"
	"github.com/enetx/wizard"
)

// Step IDs of the questionnaire.
const (
	StepApplianceType g.String = "appliance_type"
	StepKitchenSize   g.String = "kitchen_size"
	StepBudget        g.String = "budget"
	StepFeatures      g.String = "features"
)

var steps = wizard.MustSteps(
	wizard.Step{
		ID:     StepApplianceType,
		Prompt: "What type of appliance are you looking to install?",
		Options: g.SliceOf[g.String](
			"Oven",
			"Cooktop",
			"Dishwasher",
			"Washing Machine",
			"Dryer",
			"Air Conditioner",
			"Hot Water System",
		),
	},
	wizard.Step{
		ID:      StepKitchenSize,
		Prompt:  "What is the size of your installation area?",
		Options: g.SliceOf(sizeSmall, sizeMedium, sizeLarge, sizeXL),
	},
	wizard.Step{
		ID:      StepBudget,
		Prompt:  "What is your budget range?",
		Options: g.SliceOf(budgetLow, budgetMid, budgetHigh, budgetPremium),
	},
	wizard.Step{
		ID:     StepFeatures,
		Prompt: "Which features are most important to you?",
		Options: g.SliceOf[g.String](
			"Energy Efficiency",
			"Smart Technology",
			"Premium Design",
			"Basic Functionality",
			"Easy Maintenance",
		),
	},
)

const (
	sizeSmall  g.String = "Small (Under 10m²)"
	sizeMedium g.String = "Medium (10-20m²)"
	sizeLarge  g.String = "Large (20-30m²)"
	sizeXL     g.String = "Extra Large (30m²+)"

	budgetLow     g.String = "Under $1,000"
	budgetMid     g.String = "$1,000 - $2,500"
	budgetHigh    g.String = "$2,500 - $5,000"
	budgetPremium g.String = "Above $5,000"
)

// Installation area labels mapped to the size codes used by the catalog.
var sizeCodes = map[g.String]g.String{
	sizeSmall:  "small",
	sizeMedium: "medium",
	sizeLarge:  "large",
	sizeXL:     "xl",
}

// Budget labels mapped to their dollar range. A zero upper bound is open.
var budgets = map[g.String][2]int{
	budgetLow:     {0, 1000},
	budgetMid:     {1000, 2500},
	budgetHigh:    {2500, 5000},
	budgetPremium: {5000, 0},
}

// Steps returns the questionnaire.
func Steps() wizard.Steps { return steps }

// NewEngine creates a wizard driving the questionnaire into r.
func NewEngine(r *Recommender, opts ...wizard.Option) (*wizard.Engine[[]Recommendation], error) {
	return wizard.New[[]Recommendation](steps, r, opts...)
}
