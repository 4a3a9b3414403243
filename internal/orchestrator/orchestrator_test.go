package orchestrator

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/ashford-hq/hr-assistant/internal/domain"
	"github.com/ashford-hq/hr-assistant/internal/intent"
	"github.com/ashford-hq/hr-assistant/internal/session"
)

type fakeRepo struct {
	mu             sync.Mutex
	employees      map[string]*domain.Employee
	rules          map[string]*domain.PromotionRule
	progress       map[string]*domain.PromotionProgress
	updateCalls    int
	lastAddress    domain.Address
	updateSucceeds bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		employees:      make(map[string]*domain.Employee),
		rules:          make(map[string]*domain.PromotionRule),
		progress:       make(map[string]*domain.PromotionProgress),
		updateSucceeds: true,
	}
}

func (f *fakeRepo) GetEmployee(_ context.Context, userID string) (*domain.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.employees[userID], nil
}

func (f *fakeRepo) UpsertEmployee(_ context.Context, e *domain.Employee) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.employees[e.UserID] = e
	return nil
}

func (f *fakeRepo) UpdateAddress(_ context.Context, _ string, addr domain.Address) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	f.lastAddress = addr
	return f.updateSucceeds, nil
}

func (f *fakeRepo) GetPromotionRule(_ context.Context, role, targetLevel string) (*domain.PromotionRule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rules[role+"/"+targetLevel], nil
}

func (f *fakeRepo) UpsertPromotionRule(_ context.Context, r *domain.PromotionRule) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules[r.Role+"/"+r.TargetLevel] = r
	return nil
}

func (f *fakeRepo) GetPromotionProgress(_ context.Context, userID, targetLevel string) (*domain.PromotionProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.progress[userID+"/"+targetLevel], nil
}

func (f *fakeRepo) UpsertPromotionProgress(_ context.Context, p *domain.PromotionProgress) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.progress[p.UserID+"/"+p.TargetLevel] = p
	return nil
}

func (f *fakeRepo) Ping(_ context.Context) error { return nil }
func (f *fakeRepo) Close() error                 { return nil }

type fakeAnswerer struct {
	answer string
	calls  int
}

func (f *fakeAnswerer) Answer(_ context.Context, _ string, _ domain.UserContext) (string, error) {
	f.calls++
	return f.answer, nil
}

func newTestOrchestrator(repo *fakeRepo, answer string) (*Orchestrator, *fakeAnswerer) {
	a := &fakeAnswerer{answer: answer}
	return New(repo, session.NewMemoryStore(), a, nil), a
}

func TestHandlePolicyFallback(t *testing.T) {
	repo := newFakeRepo()
	o, a := newTestOrchestrator(repo, "You get 20 days of PTO. [1]")

	resp, err := o.Handle(context.Background(), "u1", "How much PTO do I get?", domain.UserContext{})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if resp.Route != intent.RoutePolicy {
		t.Errorf("Route = %q, want policyRag", resp.Route)
	}
	if resp.Text != "You get 20 days of PTO. [1]" {
		t.Errorf("Answer text not returned verbatim: %q", resp.Text)
	}
	if a.calls != 1 {
		t.Errorf("Answerer called %d times, want 1", a.calls)
	}
}

func TestAddressFlowEndToEnd(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	o, _ := newTestOrchestrator(repo, "")

	// Scenario A: address intent with no prior session.
	resp, err := o.Handle(ctx, "u1", "I want to update my address", domain.UserContext{})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if resp.Route != intent.RouteUpdateAddress {
		t.Errorf("Route = %q, want updateAddress", resp.Route)
	}
	if !strings.Contains(resp.Text, "please provide: address_line1, city, state, postal_code, country") {
		t.Errorf("Expected missing-fields prompt, got %q", resp.Text)
	}

	// Scenario B: all five fields at once.
	resp, err = o.Handle(ctx, "u1", "address_line1: 12 Main St\ncity: Boston\nstate: MA\npostal_code: 02110\ncountry: US", domain.UserContext{})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !strings.Contains(resp.Text, "Please confirm I should update your address to:") {
		t.Errorf("Expected confirmation summary, got %q", resp.Text)
	}
	for _, want := range []string{"12 Main St", "Boston", "MA", "02110", "US"} {
		if !strings.Contains(resp.Text, want) {
			t.Errorf("Summary missing %q: %q", want, resp.Text)
		}
	}

	// Scenario C: confirm submits once and clears the session.
	resp, err = o.Handle(ctx, "u1", "confirm", domain.UserContext{})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if resp.Text != "Done — I updated your address." {
		t.Errorf("Text = %q", resp.Text)
	}
	if repo.updateCalls != 1 {
		t.Errorf("UpdateAddress called %d times, want 1", repo.updateCalls)
	}
	want := domain.Address{Line1: "12 Main St", City: "Boston", State: "MA", PostalCode: "02110", Country: "US"}
	if repo.lastAddress != want {
		t.Errorf("Submitted address = %+v, want %+v", repo.lastAddress, want)
	}

	// Session cleared: next message routes normally again.
	resp, err = o.Handle(ctx, "u1", "what is the wfh policy", domain.UserContext{})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if resp.Route != intent.RoutePolicy {
		t.Errorf("Route after confirm = %q, want policyRag", resp.Route)
	}
}

func TestAddressFlowForceRouting(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	o, a := newTestOrchestrator(repo, "an answer")

	if _, err := o.Handle(ctx, "u1", "change my address", domain.UserContext{}); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	// Mid-workflow, a message with no address keywords stays in the flow.
	resp, err := o.Handle(ctx, "u1", "city: Boston", domain.UserContext{})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if resp.Route != intent.RouteUpdateAddress {
		t.Errorf("Route = %q, want updateAddress", resp.Route)
	}
	resp, err = o.Handle(ctx, "u1", "what is the parental leave policy", domain.UserContext{})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if resp.Route != intent.RouteUpdateAddress {
		t.Errorf("Route = %q, want updateAddress while session active", resp.Route)
	}
	if a.calls != 0 {
		t.Errorf("Answerer should not be called while session active, got %d calls", a.calls)
	}
}

func TestAddressConfirmBeforeComplete(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	o, _ := newTestOrchestrator(repo, "")

	if _, err := o.Handle(ctx, "u1", "update my address", domain.UserContext{}); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if _, err := o.Handle(ctx, "u1", "city: Boston", domain.UserContext{}); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	resp, err := o.Handle(ctx, "u1", "confirm", domain.UserContext{})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !strings.Contains(resp.Text, "please provide:") {
		t.Errorf("Expected re-prompt for missing fields, got %q", resp.Text)
	}
	if repo.updateCalls != 0 {
		t.Errorf("UpdateAddress called %d times, want 0", repo.updateCalls)
	}

	// Session preserved: still force-routed into the flow.
	resp, err = o.Handle(ctx, "u1", "state: MA", domain.UserContext{})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if resp.Route != intent.RouteUpdateAddress {
		t.Errorf("Session should survive an early confirm, route = %q", resp.Route)
	}
}

func TestAddressCancel(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	o, _ := newTestOrchestrator(repo, "")

	if _, err := o.Handle(ctx, "u1", "update my address", domain.UserContext{}); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if _, err := o.Handle(ctx, "u1", "city: Boston", domain.UserContext{}); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	for _, word := range []string{"cancel", "STOP", " Exit "} {
		if _, err := o.Handle(ctx, "u1", "update my address", domain.UserContext{}); err != nil {
			t.Fatalf("Handle: %v", err)
		}
		resp, err := o.Handle(ctx, "u1", word, domain.UserContext{})
		if err != nil {
			t.Fatalf("Handle: %v", err)
		}
		if resp.Text != "Address update cancelled. How can I help you next?" {
			t.Errorf("Cancel message = %q", resp.Text)
		}
		// Session cleared.
		after, err := o.Handle(ctx, "u1", "something unrelated", domain.UserContext{})
		if err != nil {
			t.Fatalf("Handle: %v", err)
		}
		if after.Route != intent.RoutePolicy {
			t.Errorf("Route after cancel = %q, want policyRag", after.Route)
		}
	}
	if repo.updateCalls != 0 {
		t.Errorf("UpdateAddress called %d times, want 0", repo.updateCalls)
	}
}

func TestAddressConfirmProfileNotFound(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	repo.updateSucceeds = false
	o, _ := newTestOrchestrator(repo, "")

	if _, err := o.Handle(ctx, "u1", "update my address", domain.UserContext{}); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if _, err := o.Handle(ctx, "u1", "address_line1: 12 Main St\ncity: Boston\nstate: MA\npostal_code: 02110\ncountry: US", domain.UserContext{}); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	resp, err := o.Handle(ctx, "u1", "confirm", domain.UserContext{})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if resp.Text != "I couldn't find your profile to update." {
		t.Errorf("Text = %q", resp.Text)
	}

	// Session cleared even on failed submit.
	after, err := o.Handle(ctx, "u1", "hello", domain.UserContext{})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if after.Route != intent.RoutePolicy {
		t.Errorf("Route after failed confirm = %q, want policyRag", after.Route)
	}
}

func TestPromotionFlow(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	o, _ := newTestOrchestrator(repo, "")

	// No employee profile.
	resp, err := o.Handle(ctx, "u1", "am I eligible for promotion", domain.UserContext{})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if resp.Text != "I couldn't find your employee profile. Please check your user ID." {
		t.Errorf("Text = %q", resp.Text)
	}

	repo.employees["u1"] = &domain.Employee{UserID: "u1", Role: "engineer", Level: "L2"}

	// Employee exists but no rule/progress.
	resp, err = o.Handle(ctx, "u1", "am I eligible for promotion", domain.UserContext{})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !strings.Contains(resp.Text, "couldn't find promotion criteria or your progress data") {
		t.Errorf("Text = %q", resp.Text)
	}

	// Scenario D: target inferred as L3, one gap.
	repo.rules["engineer/L3"] = &domain.PromotionRule{
		Role: "engineer", TargetLevel: "L3",
		MinMonthsInLevel: 12, RequiredPerformanceRating: "Meets",
		RequiredProjects: 3, RequiredCompetencyScore: 70,
	}
	repo.progress["u1/L3"] = &domain.PromotionProgress{
		UserID: "u1", TargetLevel: "L3",
		MonthsInLevel: 6, LastRating: "Meets",
		ProjectsDone: 3, CompetencyScore: 80,
	}

	resp, err = o.Handle(ctx, "u1", "am I eligible for promotion", domain.UserContext{})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if resp.Route != intent.RoutePromotion {
		t.Errorf("Route = %q, want promotion", resp.Route)
	}
	gaps := strings.SplitN(resp.Text, "Still needed:\n", 2)
	if len(gaps) != 2 || gaps[1] != "- Months in level: 6/12" {
		t.Errorf("Gap list = %q, want only the months line", resp.Text)
	}
	if resp.Debug["target_level"] != "L3" {
		t.Errorf("Debug target_level = %v, want L3", resp.Debug["target_level"])
	}
}

func TestConcurrentSameUserTurns(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	sessions := session.NewMemoryStore()
	o := New(repo, sessions, &fakeAnswerer{answer: "ok"}, nil)

	if _, err := o.Handle(ctx, "u1", "update my address", domain.UserContext{}); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	// Concurrent field turns for the same user must all land in the draft.
	fields := []string{
		"address_line1: 12 Main St",
		"city: Boston",
		"state: MA",
		"postal_code: 02110",
		"country: US",
	}
	var wg sync.WaitGroup
	for _, f := range fields {
		wg.Add(1)
		go func(text string) {
			defer wg.Done()
			if _, err := o.Handle(ctx, "u1", text, domain.UserContext{}); err != nil {
				t.Errorf("Handle(%q): %v", text, err)
			}
		}(f)
	}
	wg.Wait()

	draft, err := sessions.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if draft == nil || !draft.Complete() {
		t.Fatalf("Draft not complete after concurrent turns: %+v", draft)
	}
	if draft.Line1 != "12 Main St" || draft.City != "Boston" || draft.State != "MA" ||
		draft.PostalCode != "02110" || draft.Country != "US" {
		t.Errorf("Draft fields lost under concurrency: %+v", draft)
	}
	// Whichever turn ran last completed the draft and rendered the
	// confirmation summary, so the draft is already awaiting confirmation
	// and the next turn gets the short reminder.
	if !draft.AwaitingConfirmation {
		t.Error("Draft not awaiting confirmation after completing turn")
	}

	resp, err := o.Handle(ctx, "u1", "anything", domain.UserContext{})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if resp.Text != "Reply `confirm` to submit, `cancel` to stop, or reply with corrections." {
		t.Errorf("Expected confirm reminder, got %q", resp.Text)
	}
}
