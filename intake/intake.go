package intake

import (
	"fmt"

	"github.com/enetx/g"
	"github.com/enetx/wizard"
)

// Intake is the onboarding record posted to the CRM.
type Intake struct {
	CustomerType   g.String `json:"customerType"`
	Name           g.String `json:"name"`
	Email          g.String `json:"email"`
	Phone          g.String `json:"phone"`
	Address        g.String `json:"address"`
	ServiceType    g.String `json:"serviceType"`
	Urgency        g.String `json:"urgency"`
	AdditionalInfo g.String `json:"additionalInfo"`
}

// ErrIncomplete is returned when answers lack required intake data.
type ErrIncomplete struct {
	Step   g.String
	Fields g.Slice[g.String]
}

func (e *ErrIncomplete) Error() string {
	if e.Fields.Empty() {
		return fmt.Sprintf("intake: step %q is unanswered", e.Step)
	}

	return fmt.Sprintf("intake: step %q is missing %s", e.Step, e.Fields.Join(", "))
}

// FromAnswers builds an intake record from completed wizard answers.
func FromAnswers(answers wizard.Answers) (Intake, error) {
	var in Intake

	in.CustomerType = answers.Label(StepCustomerType)
	if in.CustomerType == "" {
		return Intake{}, &ErrIncomplete{Step: StepCustomerType}
	}

	contact, err := record(answers, StepContact)
	if err != nil {
		return Intake{}, err
	}

	service, err := record(answers, StepService)
	if err != nil {
		return Intake{}, err
	}

	in.Name = contact[FieldName].Trim()
	in.Email = contact[FieldEmail].Trim()
	in.Phone = contact[FieldPhone].Trim()
	in.Address = contact[FieldAddress].Trim()
	in.ServiceType = service[FieldServiceType].Trim()
	in.Urgency = service[FieldUrgency].Trim()

	if !ServiceTypes.Contains(in.ServiceType) {
		return Intake{}, fmt.Errorf("intake: unknown service type %q", in.ServiceType)
	}

	if !Urgencies.Contains(in.Urgency) {
		return Intake{}, fmt.Errorf("intake: unknown urgency %q", in.Urgency)
	}

	if details := answers.Record(StepDetails); details.IsSome() {
		in.AdditionalInfo = details.Some()[FieldAdditionalInfo].Trim()
	}

	return in, nil
}

func record(answers wizard.Answers, id g.String) (wizard.Record, error) {
	rec := answers.Record(id)
	if rec.IsNone() {
		return nil, &ErrIncomplete{Step: id}
	}

	if missing := steps.Lookup(id).Some().Missing(rec.Some()); !missing.Empty() {
		return nil, &ErrIncomplete{Step: id, Fields: missing}
	}

	return rec.Some(), nil
}
