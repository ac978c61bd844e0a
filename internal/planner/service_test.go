package planner

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Amitava-Data-Science-lab/deposit-saver/internal/domain"
	"github.com/Amitava-Data-Science-lab/deposit-saver/internal/finance"
	"github.com/Amitava-Data-Science-lab/deposit-saver/internal/lookup"
	"github.com/Amitava-Data-Science-lab/deposit-saver/internal/pricecache"
	"github.com/Amitava-Data-Science-lab/deposit-saver/internal/store"
	"github.com/Amitava-Data-Science-lab/deposit-saver/internal/workflow"
)

type fakeRepo struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{sessions: make(map[string]*domain.Session)}
}

func (f *fakeRepo) GetSession(_ context.Context, sessionID string) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sess, ok := f.sessions[sessionID]
	if !ok {
		return nil, store.ErrNotFound
	}
	copy := *sess
	return &copy, nil
}

func (f *fakeRepo) UpsertSession(_ context.Context, sess *domain.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy := *sess
	f.sessions[sess.ID] = &copy
	return nil
}

func (f *fakeRepo) DeleteSession(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, sessionID)
	return nil
}

func (f *fakeRepo) ListExpiredSessions(_ context.Context, cutoff time.Time) ([]*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var expired []*domain.Session
	for _, sess := range f.sessions {
		if sess.UpdatedAt.Before(cutoff) {
			copy := *sess
			expired = append(expired, &copy)
		}
	}
	return expired, nil
}

func (f *fakeRepo) Ping(_ context.Context) error { return nil }
func (f *fakeRepo) Close() error                 { return nil }

type stubPrices struct {
	mu      sync.Mutex
	calls   int
	options []domain.PriceOption
	err     error
}

func (s *stubPrices) Lookup(_ context.Context, _, _ string) ([]domain.PriceOption, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.options, nil
}

func (s *stubPrices) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type stubChecker struct {
	result lookup.CheckResult
	err    error
}

func (s *stubChecker) Check(_ context.Context, _ string) (lookup.CheckResult, error) {
	return s.result, s.err
}

type captureNotifier struct {
	mu      sync.Mutex
	updates []workflow.State
	closed  []string
}

func (n *captureNotifier) SessionUpdated(_ string, state workflow.State) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.updates = append(n.updates, state)
}

func (n *captureNotifier) SessionClosed(sessionID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = append(n.closed, sessionID)
}

func (n *captureNotifier) lastUpdate() (workflow.State, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.updates) == 0 {
		return workflow.State{}, false
	}
	return n.updates[len(n.updates)-1], true
}

func (n *captureNotifier) closedSessions() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.closed...)
}

func validChecker() *stubChecker {
	return &stubChecker{result: lookup.CheckResult{Valid: true}}
}

func newTestService(prices lookup.PriceSource, checker lookup.PostcodeChecker) (*Service, *fakeRepo) {
	repo := newFakeRepo()
	cache := pricecache.New(pricecache.NewMemoryStore(), 100*time.Millisecond, 0)
	engine := finance.NewEngine(finance.DefaultPolicy())
	svc := NewService(repo, cache, prices, checker, engine, time.Second)
	return svc, repo
}

// statementMonths builds n months of transactions with a 500 surplus each.
func statementMonths(n int) []domain.Transaction {
	txs := make([]domain.Transaction, 0, n*2)
	for i := 0; i < n; i++ {
		date := domain.NewDate(2025, time.Month(i+1), 15)
		txs = append(txs,
			domain.Transaction{Date: date, Credit: 3000},
			domain.Transaction{Date: date, Debit: 2500},
		)
	}
	return txs
}

func TestCreateSessionStartsAtHousing(t *testing.T) {
	svc, _ := newTestService(lookup.NewStaticSource(), validChecker())

	summary, err := svc.Create(context.Background(), "anon-1")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if summary.SessionID == "" {
		t.Error("Expected a session ID, got empty string")
	}
	if summary.Workflow.CurrentStage != domain.StageHousing {
		t.Errorf("Expected current stage %s, got %s", domain.StageHousing, summary.Workflow.CurrentStage)
	}
	if len(summary.Workflow.MissingData) == 0 {
		t.Error("Expected missing data for a fresh session, got none")
	}
}

func TestProposeGoalReturnsOptions(t *testing.T) {
	svc, repo := newTestService(lookup.NewStaticSource(), validChecker())
	summary, _ := svc.Create(context.Background(), "anon-1")

	out, err := svc.ProposeGoal(context.Background(), "anon-1", summary.SessionID, ProposeGoalRequest{Postcode: "HP12 3RL"})
	if err != nil {
		t.Fatalf("ProposeGoal failed: %v", err)
	}
	if out.Status != domain.StatusSuccess {
		t.Fatalf("Expected success, got %s (%s)", out.Status, out.ErrorMessage)
	}
	if len(out.PriceOptions) != 4 {
		t.Errorf("Expected 4 price options, got %d", len(out.PriceOptions))
	}
	if out.Postcode != "hp123rl" {
		t.Errorf("Expected normalized postcode hp123rl, got %q", out.Postcode)
	}

	sess, err := repo.GetSession(context.Background(), summary.SessionID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if sess.PendingGoal == nil {
		t.Fatal("Expected pending proposal on the session")
	}
	if sess.HousingGoal != nil {
		t.Error("Expected no confirmed goal before confirmation")
	}

	state, _ := svc.State(context.Background(), "anon-1", summary.SessionID)
	if state.CurrentStage != domain.StageHousing {
		t.Errorf("Expected housing stage until confirmation, got %s", state.CurrentStage)
	}
}

func TestConfirmGoalComputesDeposit(t *testing.T) {
	svc, _ := newTestService(lookup.NewStaticSource(), validChecker())
	notifier := &captureNotifier{}
	svc.SetNotifier(notifier)
	summary, _ := svc.Create(context.Background(), "anon-1")

	if _, err := svc.ProposeGoal(context.Background(), "anon-1", summary.SessionID, ProposeGoalRequest{Postcode: "HP12 3RL"}); err != nil {
		t.Fatalf("ProposeGoal failed: %v", err)
	}

	out, err := svc.ConfirmGoal(context.Background(), "anon-1", summary.SessionID, ConfirmGoalRequest{PropertyType: "2-bed-house"})
	if err != nil {
		t.Fatalf("ConfirmGoal failed: %v", err)
	}
	if out.Status != domain.StatusSuccess {
		t.Fatalf("Expected success, got %s (%s)", out.Status, out.ErrorMessage)
	}
	if out.DepositTarget != 30000 {
		t.Errorf("Expected deposit target 30000, got %d", out.DepositTarget)
	}
	if out.PropertyType != "2-bed-house" {
		t.Errorf("Expected property type 2-bed-house, got %q", out.PropertyType)
	}

	state, ok := notifier.lastUpdate()
	if !ok {
		t.Fatal("Expected a workflow update notification")
	}
	if state.CurrentStage != domain.StageCapacity {
		t.Errorf("Expected capacity stage after confirmation, got %s", state.CurrentStage)
	}
}

func TestProposeGoalCachesLookup(t *testing.T) {
	prices := &stubPrices{options: []domain.PriceOption{
		{PropertyType: "2-bed-house", MinPrice: 300000, MaxPrice: 300000, Source: "stub"},
	}}
	svc, _ := newTestService(prices, validChecker())
	summary, _ := svc.Create(context.Background(), "anon-1")

	for i := 0; i < 2; i++ {
		out, err := svc.ProposeGoal(context.Background(), "anon-1", summary.SessionID, ProposeGoalRequest{Postcode: "HP12 3RL", PropertyType: "2-bed-house"})
		if err != nil {
			t.Fatalf("ProposeGoal %d failed: %v", i, err)
		}
		if out.Status != domain.StatusSuccess {
			t.Fatalf("ProposeGoal %d: expected success, got %s (%s)", i, out.Status, out.ErrorMessage)
		}
	}

	if prices.callCount() != 1 {
		t.Errorf("Expected 1 upstream lookup, got %d", prices.callCount())
	}
}

func TestProposeGoalMissingPostcode(t *testing.T) {
	svc, repo := newTestService(lookup.NewStaticSource(), validChecker())
	summary, _ := svc.Create(context.Background(), "anon-1")

	out, err := svc.ProposeGoal(context.Background(), "anon-1", summary.SessionID, ProposeGoalRequest{PropertyType: "2-bed-house"})
	if err != nil {
		t.Fatalf("ProposeGoal failed: %v", err)
	}
	if out.Status != domain.StatusError {
		t.Fatalf("Expected error status, got %s", out.Status)
	}
	if out.ErrorCode != domain.CodeMissingInput {
		t.Errorf("Expected error code %s, got %s", domain.CodeMissingInput, out.ErrorCode)
	}

	sess, _ := repo.GetSession(context.Background(), summary.SessionID)
	if sess.PendingGoal != nil {
		t.Error("Expected a failed proposal to leave the session untouched")
	}
}

func TestProposeGoalUnknownPostcode(t *testing.T) {
	checker := &stubChecker{result: lookup.CheckResult{Valid: false, Suggestions: []string{"HP13", "HP14"}}}
	svc, _ := newTestService(lookup.NewStaticSource(), checker)
	summary, _ := svc.Create(context.Background(), "anon-1")

	out, err := svc.ProposeGoal(context.Background(), "anon-1", summary.SessionID, ProposeGoalRequest{Postcode: "HP99 1AA"})
	if err != nil {
		t.Fatalf("ProposeGoal failed: %v", err)
	}
	if out.ErrorCode != domain.CodeInvalidPostcode {
		t.Errorf("Expected error code %s, got %s", domain.CodeInvalidPostcode, out.ErrorCode)
	}
	if !strings.Contains(out.ErrorMessage, "HP13") {
		t.Errorf("Expected suggestions in the message, got %q", out.ErrorMessage)
	}
}

func TestProposeGoalCheckerUnavailable(t *testing.T) {
	checker := &stubChecker{err: lookup.ErrUnavailable}
	svc, _ := newTestService(lookup.NewStaticSource(), checker)
	summary, _ := svc.Create(context.Background(), "anon-1")

	out, err := svc.ProposeGoal(context.Background(), "anon-1", summary.SessionID, ProposeGoalRequest{Postcode: "HP12 3RL"})
	if err != nil {
		t.Fatalf("ProposeGoal failed: %v", err)
	}
	if out.ErrorCode != domain.CodeLookupUnavailable {
		t.Errorf("Expected error code %s, got %s", domain.CodeLookupUnavailable, out.ErrorCode)
	}
}

func TestProposeGoalLookupUnavailable(t *testing.T) {
	prices := &stubPrices{err: lookup.ErrUnavailable}
	svc, _ := newTestService(prices, validChecker())
	summary, _ := svc.Create(context.Background(), "anon-1")

	out, err := svc.ProposeGoal(context.Background(), "anon-1", summary.SessionID, ProposeGoalRequest{Postcode: "HP12 3RL"})
	if err != nil {
		t.Fatalf("ProposeGoal failed: %v", err)
	}
	if out.ErrorCode != domain.CodeLookupUnavailable {
		t.Errorf("Expected error code %s, got %s", domain.CodeLookupUnavailable, out.ErrorCode)
	}
}

func TestProposeGoalNoPrices(t *testing.T) {
	prices := &stubPrices{}
	svc, _ := newTestService(prices, validChecker())
	summary, _ := svc.Create(context.Background(), "anon-1")

	out, err := svc.ProposeGoal(context.Background(), "anon-1", summary.SessionID, ProposeGoalRequest{Postcode: "HP12 3RL", PropertyType: "7-bed-castle"})
	if err != nil {
		t.Fatalf("ProposeGoal failed: %v", err)
	}
	if out.ErrorCode != domain.CodeNoPricesFound {
		t.Errorf("Expected error code %s, got %s", domain.CodeNoPricesFound, out.ErrorCode)
	}
}

func TestConfirmGoalWithoutProposal(t *testing.T) {
	svc, _ := newTestService(lookup.NewStaticSource(), validChecker())
	summary, _ := svc.Create(context.Background(), "anon-1")

	out, err := svc.ConfirmGoal(context.Background(), "anon-1", summary.SessionID, ConfirmGoalRequest{})
	if err != nil {
		t.Fatalf("ConfirmGoal failed: %v", err)
	}
	if out.ErrorCode != domain.CodeMissingInput {
		t.Errorf("Expected error code %s, got %s", domain.CodeMissingInput, out.ErrorCode)
	}
}

func TestConfirmGoalUnknownOption(t *testing.T) {
	svc, _ := newTestService(lookup.NewStaticSource(), validChecker())
	summary, _ := svc.Create(context.Background(), "anon-1")

	if _, err := svc.ProposeGoal(context.Background(), "anon-1", summary.SessionID, ProposeGoalRequest{Postcode: "HP12 3RL"}); err != nil {
		t.Fatalf("ProposeGoal failed: %v", err)
	}

	out, err := svc.ConfirmGoal(context.Background(), "anon-1", summary.SessionID, ConfirmGoalRequest{PropertyType: "7-bed-castle"})
	if err != nil {
		t.Fatalf("ConfirmGoal failed: %v", err)
	}
	if out.ErrorCode != domain.CodeInvalidInput {
		t.Errorf("Expected error code %s, got %s", domain.CodeInvalidInput, out.ErrorCode)
	}
}

func TestAssessCapacitySuggestsBufferedSurplus(t *testing.T) {
	svc, _ := newTestService(lookup.NewStaticSource(), validChecker())
	summary, _ := svc.Create(context.Background(), "anon-1")

	out, err := svc.AssessCapacity(context.Background(), "anon-1", summary.SessionID, CapacityRequest{Transactions: statementMonths(3)})
	if err != nil {
		t.Fatalf("AssessCapacity failed: %v", err)
	}
	if out.Status != domain.StatusSuccess {
		t.Fatalf("Expected success, got %s (%s)", out.Status, out.ErrorMessage)
	}
	if out.AvgSurplus != 500 {
		t.Errorf("Expected average surplus 500, got %g", out.AvgSurplus)
	}
	if out.MedianSurplus != 500 {
		t.Errorf("Expected median surplus 500, got %g", out.MedianSurplus)
	}
	if out.SuggestedInvestment != 400 {
		t.Errorf("Expected suggested investment 400, got %d", out.SuggestedInvestment)
	}

	// Capacity is done out of stage order; housing stays the current gap.
	state, _ := svc.State(context.Background(), "anon-1", summary.SessionID)
	if state.CurrentStage != domain.StageHousing {
		t.Errorf("Expected housing stage, got %s", state.CurrentStage)
	}
	found := false
	for _, stage := range state.CompletedStages {
		if stage == domain.StageCapacity {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected capacity in completed stages, got %v", state.CompletedStages)
	}
}

func TestAssessCapacityInsufficientMonths(t *testing.T) {
	svc, repo := newTestService(lookup.NewStaticSource(), validChecker())
	summary, _ := svc.Create(context.Background(), "anon-1")

	out, err := svc.AssessCapacity(context.Background(), "anon-1", summary.SessionID, CapacityRequest{Transactions: statementMonths(2)})
	if err != nil {
		t.Fatalf("AssessCapacity failed: %v", err)
	}
	if out.ErrorCode != domain.CodeInsufficientData {
		t.Errorf("Expected error code %s, got %s", domain.CodeInsufficientData, out.ErrorCode)
	}

	sess, _ := repo.GetSession(context.Background(), summary.SessionID)
	if sess.Capacity != nil {
		t.Error("Expected a failed assessment to leave the session untouched")
	}
}

func TestAssessRiskClassifiesBand(t *testing.T) {
	svc, _ := newTestService(lookup.NewStaticSource(), validChecker())
	summary, _ := svc.Create(context.Background(), "anon-1")

	out, err := svc.AssessRisk(context.Background(), "anon-1", summary.SessionID, RiskRequest{
		IncomeStability:  3,
		TimeHorizonYears: 5,
		LossReaction:     0.5,
	})
	if err != nil {
		t.Fatalf("AssessRisk failed: %v", err)
	}
	if out.Status != domain.StatusSuccess {
		t.Fatalf("Expected success, got %s (%s)", out.Status, out.ErrorMessage)
	}
	if out.RiskBand != 3 {
		t.Errorf("Expected risk band 3, got %d", out.RiskBand)
	}
	if out.RiskBandText != domain.BandModerate {
		t.Errorf("Expected band text %q, got %q", domain.BandModerate, out.RiskBandText)
	}
	if out.MaxEquityShare != 0.50 {
		t.Errorf("Expected max equity share 0.50, got %g", out.MaxEquityShare)
	}
}

func TestAssessRiskRejectsBadAnswers(t *testing.T) {
	svc, _ := newTestService(lookup.NewStaticSource(), validChecker())
	summary, _ := svc.Create(context.Background(), "anon-1")

	out, err := svc.AssessRisk(context.Background(), "anon-1", summary.SessionID, RiskRequest{
		IncomeStability:  7,
		TimeHorizonYears: 5,
		LossReaction:     0.5,
	})
	if err != nil {
		t.Fatalf("AssessRisk failed: %v", err)
	}
	if out.ErrorCode != domain.CodeInvalidInput {
		t.Errorf("Expected error code %s, got %s", domain.CodeInvalidInput, out.ErrorCode)
	}
}

func TestComposePlanRequiresCompletedStages(t *testing.T) {
	svc, _ := newTestService(lookup.NewStaticSource(), validChecker())
	summary, _ := svc.Create(context.Background(), "anon-1")

	out, err := svc.ComposePlan(context.Background(), "anon-1", summary.SessionID, PlanRequest{})
	if err != nil {
		t.Fatalf("ComposePlan failed: %v", err)
	}
	if out.ErrorCode != domain.CodeMissingInput {
		t.Errorf("Expected error code %s, got %s", domain.CodeMissingInput, out.ErrorCode)
	}
	if !strings.Contains(out.ErrorMessage, "housing_goal") {
		t.Errorf("Expected missing stages in the message, got %q", out.ErrorMessage)
	}
}

// runPipeline drives a session through goal, capacity and risk so plan
// composition has everything it needs.
func runPipeline(t *testing.T, svc *Service, userID, sessionID string, horizonYears float64) {
	t.Helper()

	if _, err := svc.ProposeGoal(context.Background(), userID, sessionID, ProposeGoalRequest{Postcode: "HP12 3RL"}); err != nil {
		t.Fatalf("ProposeGoal failed: %v", err)
	}
	confirm, err := svc.ConfirmGoal(context.Background(), userID, sessionID, ConfirmGoalRequest{PropertyType: "2-bed-house"})
	if err != nil || confirm.Status != domain.StatusSuccess {
		t.Fatalf("ConfirmGoal failed: %v (%s)", err, confirm.ErrorMessage)
	}
	capacity, err := svc.AssessCapacity(context.Background(), userID, sessionID, CapacityRequest{Transactions: statementMonths(3)})
	if err != nil || capacity.Status != domain.StatusSuccess {
		t.Fatalf("AssessCapacity failed: %v (%s)", err, capacity.ErrorMessage)
	}
	risk, err := svc.AssessRisk(context.Background(), userID, sessionID, RiskRequest{
		IncomeStability:  3,
		TimeHorizonYears: horizonYears,
		LossReaction:     0.5,
	})
	if err != nil || risk.Status != domain.StatusSuccess {
		t.Fatalf("AssessRisk failed: %v (%s)", err, risk.ErrorMessage)
	}
}

func TestComposePlanFeasible(t *testing.T) {
	svc, _ := newTestService(lookup.NewStaticSource(), validChecker())
	summary, _ := svc.Create(context.Background(), "anon-1")
	runPipeline(t, svc, "anon-1", summary.SessionID, 10)

	out, err := svc.ComposePlan(context.Background(), "anon-1", summary.SessionID, PlanRequest{})
	if err != nil {
		t.Fatalf("ComposePlan failed: %v", err)
	}
	if out.Status != domain.StatusSuccess {
		t.Fatalf("Expected success, got %s (%s)", out.Status, out.ErrorMessage)
	}
	// 30000 over 120 months needs 250/month against 400 capacity.
	if out.Feasibility.Verdict != domain.VerdictFeasible {
		t.Errorf("Expected verdict %s, got %s", domain.VerdictFeasible, out.Feasibility.Verdict)
	}
	if out.Feasibility.RequiredMonthly != 250 {
		t.Errorf("Expected required monthly 250, got %g", out.Feasibility.RequiredMonthly)
	}
	if out.MonthlyInvestment != 125 {
		t.Errorf("Expected monthly investment 125, got %d", out.MonthlyInvestment)
	}
	if out.TotalMonthly != 400 {
		t.Errorf("Expected total monthly 400, got %g", out.TotalMonthly)
	}

	state, _ := svc.State(context.Background(), "anon-1", summary.SessionID)
	if state.CurrentStage != domain.StageDone {
		t.Errorf("Expected done stage after planning, got %s", state.CurrentStage)
	}
}

func TestComposePlanInfeasibleCarriesAlternatives(t *testing.T) {
	svc, _ := newTestService(lookup.NewStaticSource(), validChecker())
	summary, _ := svc.Create(context.Background(), "anon-1")
	runPipeline(t, svc, "anon-1", summary.SessionID, 5)

	out, err := svc.ComposePlan(context.Background(), "anon-1", summary.SessionID, PlanRequest{})
	if err != nil {
		t.Fatalf("ComposePlan failed: %v", err)
	}
	if out.Status != domain.StatusSuccess {
		t.Fatalf("Expected success status for an infeasible plan, got %s (%s)", out.Status, out.ErrorMessage)
	}
	// 30000 over 60 months needs 500/month against 400 capacity.
	if out.Feasibility.Verdict != domain.VerdictInfeasible {
		t.Errorf("Expected verdict %s, got %s", domain.VerdictInfeasible, out.Feasibility.Verdict)
	}
	if out.Feasibility.Shortfall != 100 {
		t.Errorf("Expected shortfall 100, got %g", out.Feasibility.Shortfall)
	}
	if len(out.Alternatives) == 0 {
		t.Fatal("Expected alternatives on an infeasible plan")
	}
}

func TestComposePlanSavingsOverrideClosesGap(t *testing.T) {
	svc, _ := newTestService(lookup.NewStaticSource(), validChecker())
	summary, _ := svc.Create(context.Background(), "anon-1")
	runPipeline(t, svc, "anon-1", summary.SessionID, 5)

	savings := 30000.0
	out, err := svc.ComposePlan(context.Background(), "anon-1", summary.SessionID, PlanRequest{CurrentSavings: &savings})
	if err != nil {
		t.Fatalf("ComposePlan failed: %v", err)
	}
	if out.Feasibility.Verdict != domain.VerdictFeasible {
		t.Errorf("Expected verdict %s, got %s", domain.VerdictFeasible, out.Feasibility.Verdict)
	}
	if out.Feasibility.RequiredMonthly != 0 {
		t.Errorf("Expected nothing required, got %g", out.Feasibility.RequiredMonthly)
	}
}

func TestSessionOwnershipHidden(t *testing.T) {
	svc, _ := newTestService(lookup.NewStaticSource(), validChecker())
	summary, _ := svc.Create(context.Background(), "anon-1")

	if _, err := svc.Get(context.Background(), "anon-2", summary.SessionID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for another user's session, got %v", err)
	}
	if _, err := svc.AssessRisk(context.Background(), "anon-2", summary.SessionID, RiskRequest{IncomeStability: 3, TimeHorizonYears: 5}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on mutation by another user, got %v", err)
	}
}

func TestArchiveNotifiesClosed(t *testing.T) {
	svc, repo := newTestService(lookup.NewStaticSource(), validChecker())
	notifier := &captureNotifier{}
	svc.SetNotifier(notifier)
	summary, _ := svc.Create(context.Background(), "anon-1")

	if err := svc.Archive(context.Background(), "anon-1", summary.SessionID); err != nil {
		t.Fatalf("Archive failed: %v", err)
	}

	if _, err := repo.GetSession(context.Background(), summary.SessionID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected session to be deleted, got %v", err)
	}
	closed := notifier.closedSessions()
	if len(closed) != 1 || closed[0] != summary.SessionID {
		t.Errorf("Expected closed notification for %s, got %v", summary.SessionID, closed)
	}
}

func TestConcurrentUpdatesSerialize(t *testing.T) {
	svc, repo := newTestService(lookup.NewStaticSource(), validChecker())
	summary, _ := svc.Create(context.Background(), "anon-1")

	go func() {
		for i := 0; i < 50; i++ {
			_, _ = svc.AssessRisk(context.Background(), "anon-1", summary.SessionID, RiskRequest{
				IncomeStability:  3,
				TimeHorizonYears: 5,
				LossReaction:     0.5,
			})
		}
	}()

	go func() {
		for i := 0; i < 50; i++ {
			_, _ = svc.AssessCapacity(context.Background(), "anon-1", summary.SessionID, CapacityRequest{Transactions: statementMonths(3)})
		}
	}()

	time.Sleep(100 * time.Millisecond)

	sess, err := repo.GetSession(context.Background(), summary.SessionID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if !sess.RiskProfile.Complete() {
		t.Error("Expected a complete risk profile after concurrent updates")
	}
	if !sess.Capacity.Complete() {
		t.Error("Expected a complete capacity record after concurrent updates")
	}
}
