package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/Amitava-Data-Science-lab/deposit-saver/internal/domain"
	"github.com/Amitava-Data-Science-lab/deposit-saver/internal/finance"
	"github.com/Amitava-Data-Science-lab/deposit-saver/internal/lookup"
	"github.com/Amitava-Data-Science-lab/deposit-saver/internal/pricecache"
	"github.com/Amitava-Data-Science-lab/deposit-saver/internal/store"
	"github.com/Amitava-Data-Science-lab/deposit-saver/internal/workflow"
)

// Notifier receives workflow state pushes after session mutations.
// Implementations must not block.
type Notifier interface {
	SessionUpdated(sessionID string, state workflow.State)
	SessionClosed(sessionID string)
}

// Service owns all session mutations. Writers serialize on a per-session
// mutex; different sessions proceed in parallel. Every successful mutation
// persists the snapshot, re-evaluates the workflow and notifies listeners.
type Service struct {
	repo          store.Repository
	cache         *pricecache.Cache
	prices        lookup.PriceSource
	postcodes     lookup.PostcodeChecker
	engine        finance.Engine
	lookupTimeout time.Duration

	notifier Notifier
	auditLog *AuditLog

	sessionLocks sync.Map
	lookupGroup  singleflight.Group
}

// NewService creates the session orchestrator. lookupTimeout bounds each
// upstream price lookup.
func NewService(repo store.Repository, cache *pricecache.Cache, prices lookup.PriceSource, postcodes lookup.PostcodeChecker, engine finance.Engine, lookupTimeout time.Duration) *Service {
	return &Service{
		repo:          repo,
		cache:         cache,
		prices:        prices,
		postcodes:     postcodes,
		engine:        engine,
		lookupTimeout: lookupTimeout,
	}
}

// SetNotifier wires the event stream hub. Call before serving traffic.
func (s *Service) SetNotifier(n Notifier) { s.notifier = n }

// SetAuditLog wires the optional NDJSON audit trail.
func (s *Service) SetAuditLog(a *AuditLog) { s.auditLog = a }

// lockSession serializes mutations for one session. Lock entries persist
// until the session is removed so every writer contends on the same mutex.
func (s *Service) lockSession(sessionID string) func() {
	lock, _ := s.sessionLocks.LoadOrStore(sessionID, &sync.Mutex{})
	mu := lock.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// loadOwned fetches a session and verifies ownership. A session owned by a
// different user is reported as absent so existence does not leak.
func (s *Service) loadOwned(ctx context.Context, userID, sessionID string) (*domain.Session, error) {
	sess, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.UserID != userID {
		return nil, store.ErrNotFound
	}
	return sess, nil
}

// commit persists the session and pushes the fresh workflow state.
func (s *Service) commit(ctx context.Context, sess *domain.Session) error {
	sess.Touch()
	if err := s.repo.UpsertSession(ctx, sess); err != nil {
		return fmt.Errorf("persist session %s: %w", sess.ID, err)
	}
	if s.notifier != nil {
		s.notifier.SessionUpdated(sess.ID, workflow.Evaluate(sess))
	}
	return nil
}

func (s *Service) audit(sess *domain.Session, event string, status domain.Status, code domain.ErrorCode) {
	if s.auditLog == nil {
		return
	}
	s.auditLog.Log(AuditEvent{
		UserID:    sess.UserID,
		SessionID: sess.ID,
		Event:     event,
		Status:    string(status),
		ErrorCode: string(code),
	})
}

// Create starts a fresh session for the user.
func (s *Service) Create(ctx context.Context, userID string) (SessionSummary, error) {
	now := time.Now().UTC()
	sess := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.UpsertSession(ctx, sess); err != nil {
		return SessionSummary{}, fmt.Errorf("persist session %s: %w", sess.ID, err)
	}
	s.audit(sess, "session_created", domain.StatusSuccess, "")
	slog.Info("Session created", "session_id", sess.ID, "user_id", userID)
	return summarize(sess), nil
}

// Get returns the full session view. Reads take no lock.
func (s *Service) Get(ctx context.Context, userID, sessionID string) (SessionSummary, error) {
	sess, err := s.loadOwned(ctx, userID, sessionID)
	if err != nil {
		return SessionSummary{}, err
	}
	return summarize(sess), nil
}

// State returns the derived workflow state.
func (s *Service) State(ctx context.Context, userID, sessionID string) (workflow.State, error) {
	sess, err := s.loadOwned(ctx, userID, sessionID)
	if err != nil {
		return workflow.State{}, err
	}
	return workflow.Evaluate(sess), nil
}

// Archive deletes the session and closes its event stream.
func (s *Service) Archive(ctx context.Context, userID, sessionID string) error {
	unlock := s.lockSession(sessionID)
	defer unlock()

	sess, err := s.loadOwned(ctx, userID, sessionID)
	if err != nil {
		return err
	}
	return s.remove(ctx, sess, "session_archived")
}

func (s *Service) remove(ctx context.Context, sess *domain.Session, event string) error {
	if err := s.repo.DeleteSession(ctx, sess.ID); err != nil {
		return fmt.Errorf("delete session %s: %w", sess.ID, err)
	}
	s.sessionLocks.Delete(sess.ID)
	if s.notifier != nil {
		s.notifier.SessionClosed(sess.ID)
	}
	s.audit(sess, event, domain.StatusSuccess, "")
	slog.Info("Session removed", "session_id", sess.ID, "reason", event)
	return nil
}

// ProposeGoal looks up price options for a location and holds them on the
// session pending confirmation. The housing stage stays incomplete until the
// user confirms a choice. Failed proposals are returned as error records and
// leave the session untouched.
func (s *Service) ProposeGoal(ctx context.Context, userID, sessionID string, req ProposeGoalRequest) (HousingGoalState, error) {
	unlock := s.lockSession(sessionID)
	defer unlock()

	sess, err := s.loadOwned(ctx, userID, sessionID)
	if err != nil {
		return HousingGoalState{}, err
	}

	postcode := pricecache.NormalizePostcode(req.Postcode)
	propertyType := pricecache.NormalizePropertyType(req.PropertyType)
	if postcode == "" {
		out := housingError(domain.CodeMissingInput, "postcode is required")
		s.audit(sess, "housing_goal_proposed", out.Status, out.ErrorCode)
		return out, nil
	}

	outcode := outwardCode(req.Postcode)
	check, err := s.postcodes.Check(ctx, outcode)
	if err != nil {
		slog.Warn("Postcode check unavailable", "session_id", sessionID, "outcode", outcode, "error", err)
		out := housingError(domain.CodeLookupUnavailable, "postcode service unavailable, try again shortly")
		s.audit(sess, "housing_goal_proposed", out.Status, out.ErrorCode)
		return out, nil
	}
	if !check.Valid {
		msg := fmt.Sprintf("unknown postcode area %q", outcode)
		if len(check.Suggestions) > 0 {
			msg += ", nearby areas: " + strings.Join(check.Suggestions, ", ")
		}
		out := housingError(domain.CodeInvalidPostcode, msg)
		s.audit(sess, "housing_goal_proposed", out.Status, out.ErrorCode)
		return out, nil
	}

	key := pricecache.Key(req.Postcode, req.PropertyType)
	options, hit := s.cachedOptions(ctx, key)
	if !hit {
		options, err = s.fetchPrices(postcode, propertyType, key)
		if err != nil {
			slog.Warn("Price lookup failed", "key", key, "error", err)
			out := housingError(domain.CodeLookupUnavailable, "price lookup unavailable, try again shortly")
			s.audit(sess, "housing_goal_proposed", out.Status, out.ErrorCode)
			return out, nil
		}
		if len(options) == 0 {
			out := housingError(domain.CodeNoPricesFound, noPricesMessage(postcode, propertyType))
			s.audit(sess, "housing_goal_proposed", out.Status, out.ErrorCode)
			return out, nil
		}
		// A failed cache write only costs the next caller a lookup.
		if err := s.cache.Put(ctx, key, pricecache.Entry{Options: options}); err != nil {
			slog.Warn("Cache write failed", "key", key, "error", err)
		}
	}

	sess.PendingGoal = &domain.Proposal{
		Postcode:     postcode,
		PropertyType: propertyType,
		Options:      options,
		ProposedAt:   time.Now().UTC(),
	}
	if err := s.commit(ctx, sess); err != nil {
		return HousingGoalState{}, err
	}
	s.audit(sess, "housing_goal_proposed", domain.StatusSuccess, "")

	return HousingGoalState{
		Status:       domain.StatusSuccess,
		Postcode:     postcode,
		PropertyType: propertyType,
		PriceOptions: options,
	}, nil
}

// ConfirmGoal locks in one proposed option as the immutable housing goal and
// completes the housing stage.
func (s *Service) ConfirmGoal(ctx context.Context, userID, sessionID string, req ConfirmGoalRequest) (HousingGoalState, error) {
	unlock := s.lockSession(sessionID)
	defer unlock()

	sess, err := s.loadOwned(ctx, userID, sessionID)
	if err != nil {
		return HousingGoalState{}, err
	}

	proposal := sess.PendingGoal
	if proposal == nil || len(proposal.Options) == 0 {
		out := housingError(domain.CodeMissingInput, "no pending price proposal, propose a goal first")
		s.audit(sess, "housing_goal_confirmed", out.Status, out.ErrorCode)
		return out, nil
	}

	option, ok := chooseOption(proposal.Options, req.PropertyType)
	if !ok {
		out := housingError(domain.CodeInvalidInput, fmt.Sprintf("property type %q is not among the proposed options", req.PropertyType))
		s.audit(sess, "housing_goal_confirmed", out.Status, out.ErrorCode)
		return out, nil
	}

	price := req.Price
	if price == 0 {
		price, err = s.engine.SelectPrice(option.MinPrice, option.MaxPrice)
		if err != nil {
			out := housingError(domain.CodeInvalidInput, err.Error())
			s.audit(sess, "housing_goal_confirmed", out.Status, out.ErrorCode)
			return out, nil
		}
	}

	percent := req.DepositPercent
	if percent == 0 {
		percent = s.engine.Policy().DepositPercent
	}

	deposit, err := s.engine.Deposit(price, percent)
	if err != nil {
		out := housingError(domain.CodeInvalidInput, err.Error())
		s.audit(sess, "housing_goal_confirmed", out.Status, out.ErrorCode)
		return out, nil
	}

	goal := &domain.HousingGoal{
		Status:         domain.StatusSuccess,
		Postcode:       proposal.Postcode,
		PropertyType:   option.PropertyType,
		MinPrice:       option.MinPrice,
		MaxPrice:       option.MaxPrice,
		Price:          price,
		DepositPercent: percent,
		DepositTarget:  deposit,
		ConfirmedAt:    time.Now().UTC(),
	}
	sess.HousingGoal = goal
	sess.PendingGoal = nil
	sess.RecordCompletion(domain.StageHousing)
	if err := s.commit(ctx, sess); err != nil {
		return HousingGoalState{}, err
	}
	s.audit(sess, "housing_goal_confirmed", domain.StatusSuccess, "")

	return housingStateFromGoal(goal), nil
}

// AssessCapacity derives the saving capacity from the provided transactions
// and completes the capacity stage.
func (s *Service) AssessCapacity(ctx context.Context, userID, sessionID string, req CapacityRequest) (CapacityState, error) {
	unlock := s.lockSession(sessionID)
	defer unlock()

	sess, err := s.loadOwned(ctx, userID, sessionID)
	if err != nil {
		return CapacityState{}, err
	}

	profile, err := s.engine.Affordability(req.Transactions)
	if err != nil {
		out := capacityError(codeForEngineErr(err), err.Error())
		s.audit(sess, "capacity_assessed", out.Status, out.ErrorCode)
		return out, nil
	}

	avgIncome, medianIncome, err := s.engine.IncomeStats(req.Transactions)
	if err != nil {
		out := capacityError(codeForEngineErr(err), err.Error())
		s.audit(sess, "capacity_assessed", out.Status, out.ErrorCode)
		return out, nil
	}

	capacity := &domain.Capacity{
		Status:           domain.StatusSuccess,
		FinancialProfile: profile,
		AvgIncome:        avgIncome,
		MedianIncome:     medianIncome,
		MaxAffordability: s.engine.AffordabilityCeiling(medianIncome),
		AssessedAt:       time.Now().UTC(),
	}
	sess.Capacity = capacity
	if req.CurrentSavings != nil {
		sess.CurrentSavings = *req.CurrentSavings
	}
	sess.RecordCompletion(domain.StageCapacity)
	if err := s.commit(ctx, sess); err != nil {
		return CapacityState{}, err
	}
	s.audit(sess, "capacity_assessed", domain.StatusSuccess, "")

	return capacityStateFrom(capacity), nil
}

// AssessRisk classifies the risk questionnaire answers and completes the
// risk stage.
func (s *Service) AssessRisk(ctx context.Context, userID, sessionID string, req RiskRequest) (RiskProfileOutput, error) {
	unlock := s.lockSession(sessionID)
	defer unlock()

	sess, err := s.loadOwned(ctx, userID, sessionID)
	if err != nil {
		return RiskProfileOutput{}, err
	}

	assessment, err := s.engine.ClassifyRisk(req.IncomeStability, req.TimeHorizonYears, req.LossReaction)
	if err != nil {
		out := riskError(codeForEngineErr(err), err.Error())
		s.audit(sess, "risk_assessed", out.Status, out.ErrorCode)
		return out, nil
	}

	assessment.AssessedAt = time.Now().UTC()
	sess.RiskProfile = &assessment
	sess.RecordCompletion(domain.StageRisk)
	if err := s.commit(ctx, sess); err != nil {
		return RiskProfileOutput{}, err
	}
	s.audit(sess, "risk_assessed", domain.StatusSuccess, "")

	return riskOutputFrom(&assessment), nil
}

// ComposePlan combines the confirmed goal, capacity and risk profile into the
// final monthly plan. The horizon comes from the risk answers.
func (s *Service) ComposePlan(ctx context.Context, userID, sessionID string, req PlanRequest) (PlanOutput, error) {
	unlock := s.lockSession(sessionID)
	defer unlock()

	sess, err := s.loadOwned(ctx, userID, sessionID)
	if err != nil {
		return PlanOutput{}, err
	}

	var missing []string
	if !sess.HousingGoal.Complete() {
		missing = append(missing, "housing_goal")
	}
	if !sess.Capacity.Complete() {
		missing = append(missing, "capacity")
	}
	if !sess.RiskProfile.Complete() {
		missing = append(missing, "risk_profile")
	}
	if len(missing) > 0 {
		out := planError(domain.CodeMissingInput, "complete these stages first: "+strings.Join(missing, ", "))
		s.audit(sess, "plan_composed", out.Status, out.ErrorCode)
		return out, nil
	}

	if req.CurrentSavings != nil {
		sess.CurrentSavings = *req.CurrentSavings
	}
	horizon := sess.RiskProfile.TimeHorizon

	plan, err := s.engine.ComposePlan(
		sess.HousingGoal.DepositTarget,
		sess.CurrentSavings,
		horizon,
		sess.Capacity.SuggestedInvestment,
		sess.RiskProfile.MaxEquityShare,
	)
	if err != nil {
		out := planError(codeForEngineErr(err), err.Error())
		s.audit(sess, "plan_composed", out.Status, out.ErrorCode)
		return out, nil
	}

	projection := s.engine.ProjectGrowth(float64(plan.MonthlyInvestment), horizon, sess.RiskProfile.Band, sess.HousingGoal.DepositTarget)
	if projection != (domain.GrowthProjection{}) {
		plan.Projection = &projection
	}
	plan.ComposedAt = time.Now().UTC()
	sess.Plan = &plan
	sess.RecordCompletion(domain.StagePlanning)
	if err := s.commit(ctx, sess); err != nil {
		return PlanOutput{}, err
	}
	s.audit(sess, "plan_composed", domain.StatusSuccess, "")

	return planOutputFrom(&plan), nil
}

// cachedOptions consults the price cache; degradation inside the cache layer
// already surfaces as a miss.
func (s *Service) cachedOptions(ctx context.Context, key string) ([]domain.PriceOption, bool) {
	entry, ok := s.cache.Get(ctx, key)
	if !ok {
		return nil, false
	}
	slog.Debug("Price cache hit", "key", key)
	return entry.Options, true
}

// fetchPrices runs at most one upstream lookup per key; concurrent proposes
// for the same key share the result. The flight carries its own timeout so
// one caller's cancellation cannot fail the other waiters.
func (s *Service) fetchPrices(postcode, propertyType, key string) ([]domain.PriceOption, error) {
	v, err, _ := s.lookupGroup.Do(key, func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(context.Background(), s.lookupTimeout)
		defer cancel()
		return s.prices.Lookup(ctx, postcode, propertyType)
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.PriceOption), nil
}

func codeForEngineErr(err error) domain.ErrorCode {
	if errors.Is(err, finance.ErrInsufficientData) {
		return domain.CodeInsufficientData
	}
	return domain.CodeInvalidInput
}

func chooseOption(options []domain.PriceOption, propertyType string) (domain.PriceOption, bool) {
	if propertyType == "" {
		return options[0], true
	}
	want := pricecache.NormalizePropertyType(propertyType)
	for _, opt := range options {
		if opt.PropertyType == want {
			return opt, true
		}
	}
	return domain.PriceOption{}, false
}

func noPricesMessage(postcode, propertyType string) string {
	if propertyType == "" {
		return fmt.Sprintf("no prices found for postcode %s", postcode)
	}
	return fmt.Sprintf("no prices found for %s in %s", propertyType, postcode)
}

// outwardCode extracts the outward half of a UK postcode ("HP12 3RL" → "HP12")
// for the existence check. A spaceless input is used as given.
func outwardCode(postcode string) string {
	fields := strings.Fields(strings.ToUpper(postcode))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
