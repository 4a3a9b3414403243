// Package orchestrator routes inbound messages and drives the address
// update workflow across turns.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ashford-hq/hr-assistant/internal/domain"
	"github.com/ashford-hq/hr-assistant/internal/intent"
	"github.com/ashford-hq/hr-assistant/internal/promotion"
	"github.com/ashford-hq/hr-assistant/internal/session"
	"github.com/ashford-hq/hr-assistant/internal/store"
	"github.com/ashford-hq/hr-assistant/internal/workflow"
)

// Answerer is the policy-answer collaborator. The returned text may
// embed bracketed citation markers like [1], [2].
type Answerer interface {
	Answer(ctx context.Context, question string, uc domain.UserContext) (string, error)
}

// ChatResponse is the terminal output of one turn.
type ChatResponse struct {
	Text  string         `json:"text"`
	Route intent.Route   `json:"route"`
	Debug map[string]any `json:"debug,omitempty"`
}

// Fixed user-facing messages for locally recovered conditions.
const (
	msgCancelled       = "Address update cancelled. How can I help you next?"
	msgAddressUpdated  = "Done — I updated your address."
	msgProfileNotFound = "I couldn't find your profile to update."
	msgNoEmployee      = "I couldn't find your employee profile. Please check your user ID."
	msgNoPromotionData = "I couldn't find promotion criteria or your progress data. Please ask HR to add your promotion rule or progress record."
)

// Orchestrator holds the collaborators for one deployment and the
// per-user draft sessions.
type Orchestrator struct {
	repo     store.Repository
	sessions session.Store
	answerer Answerer
	locks    *session.KeyedMutex
	logger   *slog.Logger
}

// New creates an orchestrator. The session store is injected so tests
// and deployments choose the backend.
func New(repo store.Repository, sessions session.Store, answerer Answerer, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		repo:     repo,
		sessions: sessions,
		answerer: answerer,
		locks:    session.NewKeyedMutex(),
		logger:   logger,
	}
}

// Handle processes one (user, text) turn and returns the response. The
// user's session lock is held for the whole turn so concurrent requests
// for the same user cannot interleave; distinct users proceed in
// parallel.
func (o *Orchestrator) Handle(ctx context.Context, userID, text string, uc domain.UserContext) (*ChatResponse, error) {
	unlock := o.locks.Lock(userID)
	defer unlock()

	draft, err := o.sessions.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	// A user mid-workflow stays in the address flow regardless of what
	// they typed, until they confirm or cancel.
	var r intent.Result
	if draft != nil {
		r = intent.Result{Route: intent.RouteUpdateAddress, Confidence: 1.0}
	} else {
		r = intent.Classify(text, uc)
	}

	o.logger.Debug("routed message", "user_id", userID, "route", r.Route, "confidence", r.Confidence)

	switch r.Route {
	case intent.RouteUpdateAddress:
		return o.handleAddress(ctx, userID, text, draft)
	case intent.RoutePromotion:
		return o.handlePromotion(ctx, userID)
	default:
		return o.handlePolicy(ctx, text, uc)
	}
}

func (o *Orchestrator) handleAddress(ctx context.Context, userID, text string, draft *domain.AddressDraft) (*ChatResponse, error) {
	if draft == nil {
		draft = &domain.AddressDraft{}
	}

	// Cancel wins over everything, including field parsing.
	if workflow.IsCancel(text) {
		if err := o.sessions.Delete(ctx, userID); err != nil {
			return nil, fmt.Errorf("clear session: %w", err)
		}
		return &ChatResponse{Text: msgCancelled, Route: intent.RouteUpdateAddress}, nil
	}

	if workflow.IsConfirm(text) {
		if !draft.Complete() {
			// Session is kept so the user can supply the rest.
			prompt, _ := workflow.NextPrompt(draft)
			return &ChatResponse{Text: prompt, Route: intent.RouteUpdateAddress}, nil
		}

		updated, err := o.repo.UpdateAddress(ctx, userID, draft.Address())
		if err != nil {
			return nil, fmt.Errorf("update address: %w", err)
		}
		if err := o.sessions.Delete(ctx, userID); err != nil {
			return nil, fmt.Errorf("clear session: %w", err)
		}

		if !updated {
			return &ChatResponse{Text: msgProfileNotFound, Route: intent.RouteUpdateAddress}, nil
		}
		o.logger.Info("address updated", "user_id", userID)
		return &ChatResponse{Text: msgAddressUpdated, Route: intent.RouteUpdateAddress}, nil
	}

	workflow.ParseFields(text, draft)
	prompt, kind := workflow.NextPrompt(draft)
	if kind == workflow.PromptConfirmSummary {
		draft.AwaitingConfirmation = true
	}
	if err := o.sessions.Put(ctx, userID, draft); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	return &ChatResponse{Text: prompt, Route: intent.RouteUpdateAddress}, nil
}

func (o *Orchestrator) handlePromotion(ctx context.Context, userID string) (*ChatResponse, error) {
	employee, err := o.repo.GetEmployee(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get employee: %w", err)
	}
	if employee == nil {
		return &ChatResponse{Text: msgNoEmployee, Route: intent.RoutePromotion}, nil
	}

	targetLevel := promotion.InferTargetLevel(employee)

	rule, err := o.repo.GetPromotionRule(ctx, employee.Role, targetLevel)
	if err != nil {
		return nil, fmt.Errorf("get promotion rule: %w", err)
	}
	progress, err := o.repo.GetPromotionProgress(ctx, userID, targetLevel)
	if err != nil {
		return nil, fmt.Errorf("get promotion progress: %w", err)
	}
	if rule == nil || progress == nil {
		return &ChatResponse{Text: msgNoPromotionData, Route: intent.RoutePromotion}, nil
	}

	return &ChatResponse{
		Text:  promotion.Evaluate(rule, progress),
		Route: intent.RoutePromotion,
		Debug: map[string]any{"target_level": targetLevel},
	}, nil
}

func (o *Orchestrator) handlePolicy(ctx context.Context, text string, uc domain.UserContext) (*ChatResponse, error) {
	answer, err := o.answerer.Answer(ctx, text, uc)
	if err != nil {
		return nil, fmt.Errorf("answer policy question: %w", err)
	}
	return &ChatResponse{Text: answer, Route: intent.RoutePolicy}, nil
}
