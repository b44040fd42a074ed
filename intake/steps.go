// Package intake implements the customer onboarding wizard and submits the
// completed record to the CRM intake endpoint.
package intake

import (
	"github.com/enetx/g"
	"github.com/enetx/wizard"
)

// Step IDs of the onboarding wizard.
const (
	StepCustomerType g.String = "customer_type"
	StepContact      g.String = "contact"
	StepService      g.String = "service"
	StepDetails      g.String = "details"
)

// Record fields of the free-form steps.
const (
	FieldName           g.String = "name"
	FieldEmail          g.String = "email"
	FieldPhone          g.String = "phone"
	FieldAddress        g.String = "address"
	FieldServiceType    g.String = "service_type"
	FieldUrgency        g.String = "urgency"
	FieldAdditionalInfo g.String = "additional_info"
)

var (
	// ServiceTypes lists the accepted service_type values.
	ServiceTypes = g.SliceOf[g.String](
		"oven",
		"cooktop",
		"dishwasher",
		"washing-machine",
		"dryer",
		"air-conditioning",
		"hot-water",
		"multiple",
	)

	// Urgencies lists the accepted urgency values.
	Urgencies = g.SliceOf[g.String]("flexible", "standard", "urgent", "emergency")
)

var steps = wizard.MustSteps(
	wizard.Step{
		ID:      StepCustomerType,
		Prompt:  "What type of customer are you?",
		Options: g.SliceOf[g.String]("residential", "commercial"),
	},
	wizard.Step{
		ID:     StepContact,
		Prompt: "Contact information",
		Fields: g.SliceOf(FieldName, FieldEmail, FieldPhone, FieldAddress),
	},
	wizard.Step{
		ID:     StepService,
		Prompt: "Service requirements",
		Fields: g.SliceOf(FieldServiceType, FieldUrgency),
	},
	wizard.Step{
		ID:     StepDetails,
		Prompt: "Additional details (optional)",
	},
)

// Steps returns the onboarding wizard.
func Steps() wizard.Steps { return steps }

// NewEngine creates a wizard submitting through c.
func NewEngine(c *Client, opts ...wizard.Option) (*wizard.Engine[Receipt], error) {
	return wizard.New[Receipt](steps, c, opts...)
}
