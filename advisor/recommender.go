package advisor

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/enetx/g"
	"github.com/enetx/wizard"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultLimit is the number of recommendations returned when Limit is unset.
const DefaultLimit = 3

const (
	scoreBudget  = 3
	scoreFeature = 2
	scoreSize    = 1
)

// Recommendation is a ranked product.
type Recommendation struct {
	Category     g.String          `json:"type"`
	Brand        g.String          `json:"brand"`
	Model        g.String          `json:"model"`
	Features     g.Slice[g.String] `json:"features"`
	Price        g.String          `json:"price"`
	Installation g.String          `json:"installation"`
	Score        int               `json:"score"`
}

// Recommender ranks catalog products against questionnaire answers.
//
// Only products of the chosen appliance type are eligible. Fitting the budget,
// matching the preferred feature and suiting the installation area add to the
// score; equal scores keep catalog order.
type Recommender struct {
	Catalog Catalog
	// Limit caps the number of recommendations. Zero means DefaultLimit.
	Limit int
	// Delay simulates analysis latency before ranking.
	Delay  time.Duration
	Logger *slog.Logger
}

// NewRecommender returns a recommender over the built-in catalog.
func NewRecommender() *Recommender {
	return &Recommender{Catalog: DefaultCatalog(), Limit: DefaultLimit}
}

// Process implements wizard.Processor.
func (r *Recommender) Process(ctx context.Context, answers wizard.Answers) ([]Recommendation, error) {
	log := r.Logger
	if log == nil {
		log = slog.Default()
	}

	log = log.With("component", "advisor")

	if r.Delay > 0 {
		timer := time.NewTimer(r.Delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	category := answers.Label(StepApplianceType)
	if category == "" {
		return nil, fmt.Errorf("advisor: no appliance type answered")
	}

	candidates := r.Catalog.Category(category)
	if candidates.Empty() {
		return nil, fmt.Errorf("advisor: no products for appliance type %q", category)
	}

	budget, hasBudget := budgets[answers.Label(StepBudget)]
	feature := answers.Label(StepFeatures)
	size := sizeCodes[answers.Label(StepKitchenSize)]

	ranked := make([]Recommendation, 0, candidates.Len())

	for _, p := range candidates {
		score := 0

		if hasBudget && fits(p, budget) {
			score += scoreBudget
		}

		if feature != "" && p.Tags.Contains(feature) {
			score += scoreFeature
		}

		if size != "" && (p.Sizes.Empty() || p.Sizes.Contains(size)) {
			score += scoreSize
		}

		ranked = append(ranked, Recommendation{
			Category:     p.Category,
			Brand:        p.Brand,
			Model:        p.Model,
			Features:     p.Features.Clone(),
			Price:        priceRange(p.PriceMin, p.PriceMax),
			Installation: p.Installation,
			Score:        score,
		})
	}

	slices.SortStableFunc(ranked, func(a, b Recommendation) int { return cmp.Compare(b.Score, a.Score) })

	limit := r.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	log.Debug("ranked recommendations", "type", category, "count", len(ranked), "top", ranked[0].Model)

	return ranked, nil
}

// fits reports whether the product's price range overlaps the budget range.
func fits(p Product, budget [2]int) bool {
	low, high := budget[0], budget[1]
	if high > 0 && p.PriceMin > high {
		return false
	}

	return p.PriceMax >= low
}

var printer = message.NewPrinter(language.English)

func priceRange(low, high int) g.String {
	if low == high {
		return g.String(printer.Sprintf("$%d", low))
	}

	return g.String(printer.Sprintf("$%d - $%d", low, high))
}
