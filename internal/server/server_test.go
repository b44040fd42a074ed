package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enetx/wizard"
	"github.com/enetx/wizard/advisor"
	"github.com/enetx/wizard/intake"
	"github.com/enetx/wizard/nav"
)

type client struct {
	t    *testing.T
	h    http.Handler
	user string
	role string
}

func (c client) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Accept", "application/json")
	if c.user != "" {
		req.Header.Set(nav.HeaderUser, c.user)
		req.Header.Set(nav.HeaderRole, c.role)
	}

	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)

	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) sessionView {
	t.Helper()

	var v sessionView
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))

	return v
}

func newTestServer(t *testing.T, crm http.HandlerFunc) http.Handler {
	t.Helper()

	endpoint := "http://127.0.0.1:1/unused"
	if crm != nil {
		srv := httptest.NewServer(crm)
		t.Cleanup(srv.Close)
		endpoint = srv.URL
	}

	return New(Options{Intake: intake.NewClient(endpoint)}).Handler()
}

func TestAdvisorFlow(t *testing.T) {
	c := client{t: t, h: newTestServer(t, nil)}

	rec := c.do(http.MethodPost, "/api/advisor/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	sess := decode(t, rec)
	require.NotEmpty(t, sess.ID)
	assert.Equal(t, wizard.PhaseCollecting, sess.Phase)
	assert.Equal(t, advisor.StepApplianceType, sess.Step.ID)

	base := "/api/advisor/sessions/" + string(sess.ID)

	rec = c.do(http.MethodPost, base+"/back", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = c.do(http.MethodPost, base+"/answer", answerRequest{Step: advisor.StepBudget, Value: "Under $1,000"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = c.do(http.MethodPost, base+"/answer", answerRequest{Step: advisor.StepApplianceType, Value: "Toaster"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	for _, a := range []answerRequest{
		{advisor.StepApplianceType, "Oven"},
		{advisor.StepKitchenSize, "Medium (10-20m²)"},
		{advisor.StepBudget, "$2,500 - $5,000"},
		{advisor.StepFeatures, "Premium Design"},
	} {
		rec = c.do(http.MethodPost, base+"/answer", a)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec = c.do(http.MethodGet, base+"?wait=5s", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	sess = decode(t, rec)
	assert.Equal(t, wizard.PhaseComplete, sess.Phase)
	assert.Equal(t, 4, sess.Index)
	assert.Nil(t, sess.Step)
	assert.NotNil(t, sess.Result)

	rec = c.do(http.MethodPost, base+"/answer", answerRequest{Step: advisor.StepFeatures, Value: "Premium Design"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = c.do(http.MethodPost, base+"/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sess = decode(t, rec)
	assert.Equal(t, wizard.PhaseCollecting, sess.Phase)
	assert.Equal(t, 1, sess.Index)
	assert.Empty(t, sess.Answers)

	rec = c.do(http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = c.do(http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOnboardingFailureAndRetry(t *testing.T) {
	fail := make(chan bool, 2)
	fail <- true
	fail <- false

	c := client{t: t, user: "u-1", role: "customer", h: newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if <-fail {
			http.Error(w, "down", http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"reference":"REF-1"}`))
	})}

	rec := c.do(http.MethodPost, "/api/onboarding/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	base := "/api/onboarding/sessions/" + string(decode(t, rec).ID)

	for _, a := range []answerRequest{
		{intake.StepCustomerType, "commercial"},
		{intake.StepContact, map[string]string{"name": "Grace", "email": "g@example.com", "phone": "1", "address": "Navy Yard"}},
		{intake.StepService, map[string]string{"service_type": "hot-water", "urgency": "urgent"}},
		{intake.StepDetails, map[string]string{}},
	} {
		rec = c.do(http.MethodPost, base+"/answer", a)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec = c.do(http.MethodGet, base+"?wait=5s", nil)
	sess := decode(t, rec)
	require.Equal(t, wizard.PhaseFailed, sess.Phase)
	assert.Contains(t, sess.Error, "502")

	rec = c.do(http.MethodPost, base+"/retry", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = c.do(http.MethodGet, base+"?wait=5s", nil)
	sess = decode(t, rec)
	assert.Equal(t, wizard.PhaseComplete, sess.Phase)
	assert.Empty(t, sess.Error)

	rec = c.do(http.MethodPost, base+"/retry", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	other := c
	other.user = "u-2"
	rec = other.do(http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "sessions are private to their owner")
}

func TestUnknownFlowAndSession(t *testing.T) {
	c := client{t: t, h: newTestServer(t, nil)}

	assert.Equal(t, http.StatusNotFound, c.do(http.MethodPost, "/api/payroll/sessions", nil).Code)
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/api/advisor/sessions/nope", nil).Code)
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodGet, "/api/nav", nil).Code)
}

func TestAdminSessionsRequiresAdministrator(t *testing.T) {
	h := newTestServer(t, nil)

	anonymous := client{t: t, h: h}
	customer := client{t: t, h: h, user: "c", role: "customer"}
	admin := client{t: t, h: h, user: "a", role: "administrator"}

	require.Equal(t, http.StatusCreated, anonymous.do(http.MethodPost, "/api/advisor/sessions", nil).Code)

	rec := anonymous.do(http.MethodGet, "/api/admin/sessions", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "/auth?next=%2Fapi%2Fadmin%2Fsessions", rec.Header().Get("Location"))

	assert.Equal(t, http.StatusForbidden, customer.do(http.MethodGet, "/api/admin/sessions", nil).Code)

	rec = admin.do(http.MethodGet, "/api/admin/sessions", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Sessions []struct {
			Flow  string       `json:"flow"`
			Phase wizard.Phase `json:"phase"`
		} `json:"sessions"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Sessions, 1)
	assert.Equal(t, FlowAdvisor, body.Sessions[0].Flow)
	assert.Equal(t, wizard.PhaseCollecting, body.Sessions[0].Phase)
}

func TestNavEndpoint(t *testing.T) {
	c := client{t: t, h: newTestServer(t, nil), user: "c", role: "customer"}

	rec := c.do(http.MethodGet, "/api/nav?path=/admin/kpi", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "redirect-to-unauthorized", body["outcome"])
	assert.Equal(t, "/admin/kpi", body["path"])
	assert.Equal(t, "/unauthorized?next=%2Fadmin%2Fkpi", body["location"])

	rec = c.do(http.MethodGet, "/api/nav?path=/installations/3", nil)
	body = nil
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "allow", body["outcome"])
	assert.Nil(t, body["location"])
}

func TestFlowsAndGraph(t *testing.T) {
	c := client{t: t, h: newTestServer(t, nil)}

	rec := c.do(http.MethodGet, "/api/flows", nil)
	assert.JSONEq(t, `{"flows":["advisor","onboarding"]}`, rec.Body.String())

	rec = c.do(http.MethodGet, "/api/onboarding/graph", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "digraph"))
	assert.Contains(t, rec.Body.String(), string(intake.StepContact))
}

func TestServeShutsDown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- New(Options{}).Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/api/flows")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
