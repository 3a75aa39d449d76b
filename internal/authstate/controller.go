// Package authstate owns the auth state of a running client: the signed-in
// user, their active membership and the loading flag. The state is rebuilt
// from scratch on every session change and exposes the entitlement
// operations gated actions call.
package authstate

import (
	"context"
	"slices"
	"sync"

	"codeberg.org/mediagate/server/internal/logger"
	"codeberg.org/mediagate/server/internal/metrics"
	"codeberg.org/mediagate/server/mediagate/accounts"
	"codeberg.org/mediagate/server/mediagate/entitlements"
	"codeberg.org/mediagate/server/mediagate/limits"
	"codeberg.org/mediagate/server/mediagate/usage"
	"golang.org/x/sync/singleflight"
)

// controller dependencies
type Options struct {
	Sessions SessionSource
	Auth     Authenticator
	Loader   ProfileLoader
	Ledger   *usage.Ledger
	Limits   *limits.Table
}

// process-wide auth state, explicitly constructed and passed to consumers
type Controller struct {
	sessions SessionSource
	auth     Authenticator
	loader   ProfileLoader
	ledger   *usage.Ledger
	table    *limits.Table

	mu         sync.RWMutex
	state      State
	generation uint64
	alive      bool
	listeners  []func(State)

	ready     chan struct{}
	readyOnce sync.Once
	closeOnce sync.Once

	counts singleflight.Group

	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()
	wg          sync.WaitGroup
}

// creates a controller in the loading state; call Start to resolve the session
func New(opts Options) *Controller {
	table := opts.Limits
	if table == nil {
		table = limits.Default()
	}

	return &Controller{
		sessions: opts.Sessions,
		auth:     opts.Auth,
		loader:   opts.Loader,
		ledger:   opts.Ledger,
		table:    table,
		state:    State{Loading: true},
		ready:    make(chan struct{}),
	}
}

// resolves the existing session and follows session changes until Close
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.alive = true
	c.mu.Unlock()

	// subscribe first so no change between the read and the subscription is lost
	events, unsubscribe := c.sessions.Subscribe()
	c.unsubscribe = unsubscribe

	session, err := c.sessions.GetSession(c.ctx)
	if err != nil {
		logger.WarnErr(err, "failed to read existing session")
		session = nil
	}

	c.apply(Event{Kind: EventInitialSession, Session: session})

	c.wg.Add(1)
	go c.run(events)
}

// stops following session changes, abandons in-flight loads and ignores late results
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.alive = false
		cancel := c.cancel
		c.mu.Unlock()

		if cancel != nil {
			cancel()
		}

		if c.unsubscribe != nil {
			c.unsubscribe()
		}

		c.wg.Wait()
	})
}

// returns a snapshot of the current state
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.state
}

// closed once loading clears for the first time
func (c *Controller) Ready() <-chan struct{} {
	return c.ready
}

// registers fn to be called with every applied state. fn may run on any goroutine.
func (c *Controller) OnChange(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.listeners = append(c.listeners, fn)
}

// tier of the loaded membership, free when none is loaded
func (c *Controller) Tier() limits.Tier {
	state := c.State()
	if state.Membership == nil {
		return limits.TierFree
	}

	return state.Membership.Tier
}

// waits for the first resolution and returns the signed-in user's state
func (c *Controller) RequireUser(ctx context.Context) (State, error) {
	select {
	case <-c.ready:
	case <-ctx.Done():
		return State{}, ctx.Err()
	}

	state := c.State()
	if !state.SignedIn() {
		return state, usage.ErrAuthRequired
	}

	return state, nil
}

func (c *Controller) run(events <-chan Event) {
	defer c.wg.Done()

	for {
		select {
		case <-c.ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}

			logger.Debug("session changed", "event", ev.Kind, "signed_in", ev.Session != nil)
			c.apply(ev)
		}
	}
}

// starts a new generation for ev; signed-out events apply immediately
func (c *Controller) apply(ev Event) {
	c.mu.Lock()
	if !c.alive {
		c.mu.Unlock()
		return
	}

	c.generation++
	gen := c.generation
	c.mu.Unlock()

	if ev.Session == nil {
		c.commit(gen, State{})
		return
	}

	session := *ev.Session

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		result := c.loader.Load(c.ctx, session.UserID)
		c.commit(gen, State{
			Session:    &session,
			User:       result.Profile,
			Membership: result.Membership,
		})
	}()
}

// writes next if gen is still the latest generation and the controller is alive
func (c *Controller) commit(gen uint64, next State) {
	c.mu.Lock()
	if !c.alive || gen != c.generation {
		c.mu.Unlock()
		logger.Debug("discarding stale auth state", "generation", gen)
		return
	}

	next.Loading = false
	c.state = next
	listeners := slices.Clone(c.listeners)
	c.mu.Unlock()

	c.readyOnce.Do(func() { close(c.ready) })

	for _, fn := range listeners {
		fn(next)
	}
}

// reports whether the loaded user may use feature now. Anonymous and
// unresolved users are never allowed; count failures are returned.
func (c *Controller) CheckFeatureAccess(ctx context.Context, feature limits.FeatureKey) (bool, error) {
	result, err := c.Entitlement(ctx, feature)
	if err != nil {
		return false, err
	}

	return result.Allowed, nil
}

// returns the full entitlement view for feature
func (c *Controller) Entitlement(ctx context.Context, feature limits.FeatureKey) (entitlements.Result, error) {
	state := c.State()
	if state.User == nil || state.Membership == nil {
		return entitlements.Result{Feature: feature, Reason: entitlements.ReasonNoEntitlement}, nil
	}

	count, err := c.ledger.Count(ctx, state.User.ID, feature)
	if err != nil {
		return entitlements.Result{}, err
	}

	result := entitlements.Check(c.table, state.Membership.Tier, feature, count)

	outcome := "allowed"
	if !result.Allowed {
		outcome = "denied"
	}
	metrics.EntitlementDecisions.WithLabelValues(string(feature), string(state.Membership.Tier), outcome).Inc()

	return result, nil
}

// records one use of feature for the loaded user
func (c *Controller) LogFeatureUsage(ctx context.Context, feature limits.FeatureKey, label string) error {
	state := c.State()
	if state.User == nil {
		return usage.ErrAuthRequired
	}

	_, err := c.ledger.Log(ctx, state.User.ID, feature, label)
	return err
}

// returns prior uses of feature by the loaded user; 0 when signed out or on failure
func (c *Controller) GetUsageCount(ctx context.Context, feature limits.FeatureKey) int {
	state := c.State()
	if state.User == nil {
		return 0
	}

	userID := state.User.ID

	v, err, _ := c.counts.Do(userID+"/"+string(feature), func() (any, error) {
		return c.ledger.Count(ctx, userID, feature)
	})

	if err != nil {
		logger.WarnErr(err, "failed to refresh usage count", "user_id", userID, "feature", feature)
		return 0
	}

	return v.(int)
}

// state changes arrive through the session source, never from these calls

func (c *Controller) SignUp(ctx context.Context, req accounts.SignUpRequest) error {
	if err := accounts.ValidateSignUp(&req); err != nil {
		return userError("sign_up", msgSignUp, err)
	}

	return userError("sign_up", msgSignUp, c.auth.SignUp(ctx, req))
}

func (c *Controller) SignIn(ctx context.Context, req accounts.SignInRequest) error {
	return userError("sign_in", msgSignIn, c.auth.SignIn(ctx, req))
}

func (c *Controller) SignOut(ctx context.Context) error {
	return userError("sign_out", msgSignOut, c.auth.SignOut(ctx))
}

func (c *Controller) SignInWithOAuth(ctx context.Context, provider string) error {
	return userError("oauth", msgOAuth, c.auth.SignInWithOAuth(ctx, provider))
}
