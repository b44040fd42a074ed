package intake_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/enetx/g"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enetx/wizard"
	"github.com/enetx/wizard/intake"
)

func complete(t *testing.T, e *wizard.Engine[intake.Receipt]) {
	t.Helper()

	require.NoError(t, e.RecordAnswer(intake.StepCustomerType, "residential"))
	require.NoError(t, e.RecordAnswer(intake.StepContact, wizard.Record{
		intake.FieldName:    "Ada Lovelace",
		intake.FieldEmail:   "ada@example.com",
		intake.FieldPhone:   "0400 000 000",
		intake.FieldAddress: "1 Analytical Way",
	}))
	require.NoError(t, e.RecordAnswer(intake.StepService, wizard.Record{
		intake.FieldServiceType: "dishwasher",
		intake.FieldUrgency:     "standard",
	}))
	require.NoError(t, e.RecordAnswer(intake.StepDetails, wizard.Record{
		intake.FieldAdditionalInfo: "Side gate access",
	}))
}

func TestClient_Submit(t *testing.T) {
	type request struct {
		key  string
		body intake.Intake
	}

	var calls atomic.Int32
	requests := make(chan request, 4)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req request
		req.key = r.Header.Get(intake.HeaderIdempotencyKey)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req.body))
		requests <- req

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"reference":"CRM-42"}`))
	}))
	defer srv.Close()

	e, err := intake.NewEngine(intake.NewClient(srv.URL))
	require.NoError(t, err)

	complete(t, e)

	phase, err := e.Wait(context.Background())
	require.NoError(t, err)
	require.Equal(t, wizard.PhaseComplete, phase)

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, intake.Receipt{OK: true, Reference: "CRM-42"}, e.Result().Some())

	got := <-requests

	_, err = uuid.Parse(got.key)
	assert.NoError(t, err)

	assert.Equal(t, intake.Intake{
		CustomerType:   "residential",
		Name:           "Ada Lovelace",
		Email:          "ada@example.com",
		Phone:          "0400 000 000",
		Address:        "1 Analytical Way",
		ServiceType:    "dishwasher",
		Urgency:        "standard",
		AdditionalInfo: "Side gate access",
	}, got.body)
}

func TestClient_DerivedReference(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	receipt, err := intake.NewClient(srv.URL).Submit(context.Background(), intake.Intake{})
	require.NoError(t, err)
	assert.True(t, receipt.OK)
	assert.Len(t, receipt.Reference, 9)
	assert.Equal(t, strings.ToUpper(string(receipt.Reference)), string(receipt.Reference))
}

func TestClient_FailureAndRetry(t *testing.T) {
	var calls atomic.Int32
	keys := make(chan string, 2)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keys <- r.Header.Get(intake.HeaderIdempotencyKey)

		if calls.Add(1) == 1 {
			http.Error(w, "crm unavailable", http.StatusServiceUnavailable)
			return
		}

		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	e, err := intake.NewEngine(intake.NewClient(srv.URL))
	require.NoError(t, err)

	complete(t, e)

	phase, err := e.Wait(context.Background())
	require.NoError(t, err)
	require.Equal(t, wizard.PhaseFailed, phase)

	var failed *wizard.ErrSubmissionFailed
	require.ErrorAs(t, e.Err(), &failed)
	assert.Contains(t, failed.Error(), "503")
	assert.True(t, wizard.Recoverable(e.Err()))
	assert.Equal(t, 4, e.Index())

	require.NoError(t, e.Retry())

	phase, err = e.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, wizard.PhaseComplete, phase)
	assert.Equal(t, int32(2), calls.Load())
	assert.NoError(t, e.Err())

	first, second := <-keys, <-keys
	assert.NotEmpty(t, first)
	assert.Equal(t, first, second, "a retry must reuse the idempotency key")
}

func TestIdempotencyKey(t *testing.T) {
	a := intake.IdempotencyKey("http://crm/api/onboarding", []byte(`{"name":"a"}`))
	assert.Equal(t, a, intake.IdempotencyKey("http://crm/api/onboarding", []byte(`{"name":"a"}`)))
	assert.NotEqual(t, a, intake.IdempotencyKey("http://crm/api/onboarding", []byte(`{"name":"b"}`)))
	assert.NotEqual(t, a, intake.IdempotencyKey("http://other/api/onboarding", []byte(`{"name":"a"}`)))

	_, err := uuid.Parse(a)
	assert.NoError(t, err)
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	c := intake.NewClient(srv.URL)
	c.Timeout = 50 * time.Millisecond

	e, err := intake.NewEngine(c)
	require.NoError(t, err)

	complete(t, e)

	phase, err := e.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, wizard.PhaseFailed, phase)
	assert.True(t, wizard.Recoverable(e.Err()))
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := intake.NewClient(url).Process(context.Background(), wizard.Answers{
		intake.StepCustomerType: "commercial",
		intake.StepContact:      map[string]string{"name": "a", "email": "b", "phone": "c", "address": "d"},
		intake.StepService:      map[string]any{"service_type": "oven", "urgency": "urgent"},
	})

	var failed *wizard.ErrSubmissionFailed
	assert.ErrorAs(t, err, &failed)
}

func TestFromAnswers(t *testing.T) {
	_, err := intake.FromAnswers(wizard.Answers{})
	var incomplete *intake.ErrIncomplete
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, intake.StepCustomerType, incomplete.Step)

	_, err = intake.FromAnswers(wizard.Answers{
		intake.StepCustomerType: "residential",
		intake.StepContact:      wizard.Record{intake.FieldName: "Ada", intake.FieldEmail: " "},
	})
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, intake.StepContact, incomplete.Step)
	assert.Equal(t, g.SliceOf(intake.FieldEmail, intake.FieldPhone, intake.FieldAddress), incomplete.Fields)

	_, err = intake.FromAnswers(wizard.Answers{
		intake.StepCustomerType: "residential",
		intake.StepContact:      wizard.Record{intake.FieldName: "a", intake.FieldEmail: "b", intake.FieldPhone: "c", intake.FieldAddress: "d"},
		intake.StepService:      wizard.Record{intake.FieldServiceType: "toaster", intake.FieldUrgency: "urgent"},
	})
	assert.ErrorContains(t, err, "toaster")

	in, err := intake.FromAnswers(wizard.Answers{
		intake.StepCustomerType: "commercial",
		intake.StepContact:      wizard.Record{intake.FieldName: "a", intake.FieldEmail: "b", intake.FieldPhone: "c", intake.FieldAddress: "d"},
		intake.StepService:      wizard.Record{intake.FieldServiceType: "multiple", intake.FieldUrgency: "emergency"},
	})
	require.NoError(t, err)
	assert.Empty(t, in.AdditionalInfo)
}

func TestMissingFieldsGateAdvancement(t *testing.T) {
	step := intake.Steps().Lookup(intake.StepService).Some()
	assert.Equal(t, g.SliceOf(intake.FieldUrgency), step.Missing(wizard.Record{intake.FieldServiceType: "oven"}))
	assert.True(t, intake.Steps().Lookup(intake.StepDetails).Some().Missing(nil).Empty())
}
