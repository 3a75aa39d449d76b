package authstate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"codeberg.org/mediagate/server/mediagate/accounts"
	"codeberg.org/mediagate/server/mediagate/limits"
	"codeberg.org/mediagate/server/mediagate/profiles"
	"codeberg.org/mediagate/server/mediagate/usage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu           sync.Mutex
	session      *Session
	events       chan Event
	unsubscribed bool
}

func newFakeSource(session *Session) *fakeSource {
	return &fakeSource{session: session, events: make(chan Event, 8)}
}

func (f *fakeSource) GetSession(_ context.Context) (*Session, error) {
	return f.session, nil
}

func (f *fakeSource) Subscribe() (<-chan Event, func()) {
	return f.events, func() {
		f.mu.Lock()
		f.unsubscribed = true
		f.mu.Unlock()
	}
}

// holds loads for gated users until released
type gatedLoader struct {
	inner *profiles.Loader
	mu    sync.Mutex
	gates map[string]chan struct{}
	done  chan string
}

func newGatedLoader(store profiles.Store) *gatedLoader {
	return &gatedLoader{
		inner: profiles.NewLoader(store, time.Second),
		gates: make(map[string]chan struct{}),
		done:  make(chan string, 8),
	}
}

func (g *gatedLoader) hold(userID string) func() {
	gate := make(chan struct{})

	g.mu.Lock()
	g.gates[userID] = gate
	g.mu.Unlock()

	return func() { close(gate) }
}

func (g *gatedLoader) Load(ctx context.Context, userID string) profiles.Result {
	g.mu.Lock()
	gate := g.gates[userID]
	g.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
		}
	}

	result := g.inner.Load(ctx, userID)

	select {
	case g.done <- userID:
	default:
	}

	return result
}

type fakeAuth struct {
	err   error
	calls []string
}

func (f *fakeAuth) SignUp(_ context.Context, _ accounts.SignUpRequest) error {
	f.calls = append(f.calls, "sign_up")
	return f.err
}

func (f *fakeAuth) SignIn(_ context.Context, _ accounts.SignInRequest) error {
	f.calls = append(f.calls, "sign_in")
	return f.err
}

func (f *fakeAuth) SignOut(_ context.Context) error {
	f.calls = append(f.calls, "sign_out")
	return f.err
}

func (f *fakeAuth) SignInWithOAuth(_ context.Context, _ string) error {
	f.calls = append(f.calls, "oauth")
	return f.err
}

type harness struct {
	ctrl   *Controller
	source *fakeSource
	loader *gatedLoader
	rows   *profiles.MemoryStore
	auth   *fakeAuth
}

func seedUser(rows *profiles.MemoryStore, id string, tier limits.Tier) {
	rows.PutProfile(&profiles.Profile{ID: id, Email: id + "@example.com", Username: id})
	rows.AddMembership(&profiles.Membership{UserID: id, Tier: tier, IsActive: true, CreatedAt: time.Now()})
}

func newHarness(t *testing.T, session *Session) *harness {
	t.Helper()

	h := &harness{
		source: newFakeSource(session),
		rows:   profiles.NewMemoryStore(),
		auth:   &fakeAuth{},
	}
	h.loader = newGatedLoader(h.rows)
	h.ctrl = New(Options{
		Sessions: h.source,
		Auth:     h.auth,
		Loader:   h.loader,
		Ledger:   usage.NewLedger(usage.NewMemoryStore()),
		Limits:   limits.Default(),
	})

	t.Cleanup(h.ctrl.Close)
	return h
}

func (h *harness) start(t *testing.T) {
	t.Helper()
	h.ctrl.Start(context.Background())

	select {
	case <-h.ctrl.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("controller never became ready")
	}
}

func (h *harness) waitForUser(t *testing.T, userID string) {
	t.Helper()
	require.Eventually(t, func() bool {
		st := h.ctrl.State()
		return st.User != nil && st.User.ID == userID
	}, 2*time.Second, 5*time.Millisecond)
}

func TestController_InitialState(t *testing.T) {
	h := newHarness(t, nil)

	st := h.ctrl.State()
	assert.True(t, st.Loading)
	assert.Nil(t, st.User)
}

func TestController_ResolvesExistingSession(t *testing.T) {
	h := newHarness(t, &Session{UserID: "alice", Email: "alice@example.com"})
	seedUser(h.rows, "alice", limits.TierFree)

	h.start(t)

	st := h.ctrl.State()
	assert.False(t, st.Loading)
	require.NotNil(t, st.User)
	require.NotNil(t, st.Membership)
	assert.Equal(t, "alice", st.User.ID)
	assert.Equal(t, limits.TierFree, st.Membership.Tier)
}

func TestController_NoSessionClearsLoading(t *testing.T) {
	h := newHarness(t, nil)
	h.start(t)

	st := h.ctrl.State()
	assert.False(t, st.Loading)
	assert.False(t, st.SignedIn())
	assert.Nil(t, st.Membership)
}

func TestController_MissingProfileKeepsSession(t *testing.T) {
	h := newHarness(t, &Session{UserID: "pending"})
	h.start(t)

	st := h.ctrl.State()
	assert.Nil(t, st.User)
	require.NotNil(t, st.Session)
	assert.Equal(t, "pending", st.Session.UserID)

	allowed, err := h.ctrl.CheckFeatureAccess(context.Background(), limits.FeatureAudioConvert)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestController_UsageCountWithoutUser(t *testing.T) {
	h := newHarness(t, nil)

	// before and after resolution
	assert.Equal(t, 0, h.ctrl.GetUsageCount(context.Background(), limits.FeatureAudioConvert))

	h.start(t)
	assert.Equal(t, 0, h.ctrl.GetUsageCount(context.Background(), limits.FeatureAudioConvert))

	err := h.ctrl.LogFeatureUsage(context.Background(), limits.FeatureAudioConvert, "song.mp3")
	assert.ErrorIs(t, err, usage.ErrAuthRequired)
}

func TestController_FreeUserQuotaScenario(t *testing.T) {
	h := newHarness(t, &Session{UserID: "free-user"})
	seedUser(h.rows, "free-user", limits.TierFree)
	h.start(t)

	ctx := context.Background()
	feature := limits.FeatureAudioConvert

	assert.Equal(t, 0, h.ctrl.GetUsageCount(ctx, feature))

	allowed, err := h.ctrl.CheckFeatureAccess(ctx, feature)
	require.NoError(t, err)
	assert.True(t, allowed)

	require.NoError(t, h.ctrl.LogFeatureUsage(ctx, feature, "song.mp3"))
	assert.Equal(t, 1, h.ctrl.GetUsageCount(ctx, feature))

	allowed, err = h.ctrl.CheckFeatureAccess(ctx, feature)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestController_PremiumUnlimited(t *testing.T) {
	h := newHarness(t, &Session{UserID: "premium-user"})
	seedUser(h.rows, "premium-user", limits.TierPremium)
	h.start(t)

	ctx := context.Background()

	for _, feature := range limits.Features {
		logged := 0
		for _, target := range []int{0, 1, 50} {
			for ; logged < target; logged++ {
				require.NoError(t, h.ctrl.LogFeatureUsage(ctx, feature, "file"))
			}

			allowed, err := h.ctrl.CheckFeatureAccess(ctx, feature)
			require.NoError(t, err)
			assert.True(t, allowed, "feature %s after %d uses", feature, target)
		}
	}
}

func TestController_UsageCountIdempotent(t *testing.T) {
	h := newHarness(t, &Session{UserID: "alice"})
	seedUser(h.rows, "alice", limits.TierFree)
	h.start(t)

	ctx := context.Background()
	require.NoError(t, h.ctrl.LogFeatureUsage(ctx, limits.FeatureImageStamp, "scan.png"))

	first := h.ctrl.GetUsageCount(ctx, limits.FeatureImageStamp)
	second := h.ctrl.GetUsageCount(ctx, limits.FeatureImageStamp)
	assert.Equal(t, 1, first)
	assert.Equal(t, first, second)
}

func TestController_NoMembershipDenies(t *testing.T) {
	h := newHarness(t, &Session{UserID: "bare"})
	h.rows.PutProfile(&profiles.Profile{ID: "bare", Email: "bare@example.com"})
	h.start(t)

	require.NotNil(t, h.ctrl.State().User)

	allowed, err := h.ctrl.CheckFeatureAccess(context.Background(), limits.FeatureVideoConvert)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestController_StaleLoadDiscarded(t *testing.T) {
	h := newHarness(t, &Session{UserID: "alice"})
	seedUser(h.rows, "alice", limits.TierFree)
	seedUser(h.rows, "bob", limits.TierPremium)

	release := h.loader.hold("alice")
	h.ctrl.Start(context.Background())

	h.source.events <- Event{Kind: EventSignedOut}
	h.source.events <- Event{Kind: EventSignedIn, Session: &Session{UserID: "bob"}}

	h.waitForUser(t, "bob")
	<-h.ctrl.Ready()

	release()

	// wait for alice's load to finish, then make sure it never lands
	require.Eventually(t, func() bool {
		for {
			select {
			case id := <-h.loader.done:
				if id == "alice" {
					return true
				}
			default:
				return false
			}
		}
	}, 2*time.Second, 5*time.Millisecond)

	assert.Never(t, func() bool {
		st := h.ctrl.State()
		return st.User == nil || st.User.ID != "bob"
	}, 50*time.Millisecond, 5*time.Millisecond)

	st := h.ctrl.State()
	require.NotNil(t, st.Membership)
	assert.Equal(t, "bob", st.Membership.UserID)
	assert.Equal(t, limits.TierPremium, st.Membership.Tier)
}

func TestController_SignOutEventClearsState(t *testing.T) {
	h := newHarness(t, &Session{UserID: "alice"})
	seedUser(h.rows, "alice", limits.TierFree)
	h.start(t)

	changes := make(chan State, 4)
	h.ctrl.OnChange(func(st State) { changes <- st })

	h.source.events <- Event{Kind: EventSignedOut}

	select {
	case st := <-changes:
		assert.Nil(t, st.User)
		assert.Nil(t, st.Membership)
		assert.False(t, st.Loading)
	case <-time.After(2 * time.Second):
		t.Fatal("no state change after sign-out")
	}
}

func TestController_CloseIgnoresLaterEvents(t *testing.T) {
	h := newHarness(t, nil)
	h.start(t)

	h.ctrl.Close()

	h.source.mu.Lock()
	assert.True(t, h.source.unsubscribed)
	h.source.mu.Unlock()

	seedUser(h.rows, "late", limits.TierFree)
	h.ctrl.apply(Event{Kind: EventSignedIn, Session: &Session{UserID: "late"}})

	assert.Nil(t, h.ctrl.State().User)
}

func TestController_CloseAbandonsInflightLoad(t *testing.T) {
	h := newHarness(t, &Session{UserID: "slow"})
	seedUser(h.rows, "slow", limits.TierFree)
	h.loader.hold("slow")

	h.ctrl.Start(context.Background())
	h.ctrl.Close()

	st := h.ctrl.State()
	assert.True(t, st.Loading)
	assert.Nil(t, st.User)
}

func TestController_RequireUser(t *testing.T) {
	h := newHarness(t, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := h.ctrl.RequireUser(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	h.start(t)
	_, err = h.ctrl.RequireUser(context.Background())
	assert.ErrorIs(t, err, usage.ErrAuthRequired)
}

func TestController_PassThroughsDoNotWriteState(t *testing.T) {
	h := newHarness(t, nil)
	h.start(t)
	ctx := context.Background()

	require.NoError(t, h.ctrl.SignIn(ctx, accounts.SignInRequest{Email: "a@b.co", Password: "secret1"}))
	require.NoError(t, h.ctrl.SignInWithOAuth(ctx, "github"))
	require.NoError(t, h.ctrl.SignOut(ctx))

	assert.Equal(t, []string{"sign_in", "oauth", "sign_out"}, h.auth.calls)
	assert.Nil(t, h.ctrl.State().User)
}

func TestController_UserFacingErrors(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	err := h.ctrl.SignUp(ctx, accounts.SignUpRequest{
		Email: "a@b.co", Password: "secret1", ConfirmPassword: "secret2", Username: "a",
	})

	var uerr *UserError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "passwords do not match", uerr.Message)
	assert.Empty(t, h.auth.calls)

	h.auth.err = errors.New("pq: connection refused on 10.0.0.3")

	err = h.ctrl.SignIn(ctx, accounts.SignInRequest{Email: "a@b.co", Password: "secret1"})
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, msgSignIn, uerr.Error())
	assert.NotContains(t, uerr.Error(), "10.0.0.3")

	h.auth.err = &accounts.ValidationError{Field: "email", Message: "please enter a valid email address"}
	err = h.ctrl.SignInWithOAuth(ctx, "github")
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "please enter a valid email address", uerr.Message)
}
