package progression

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/studify/backend/core"
)

var (
	// ErrNotFound is returned by a Store when no progression record exists
	// for a user; the service reacts by initializing a default one.
	ErrNotFound = errors.New("progression not found")

	// ErrNoSession is returned when an operation targets an identity whose
	// session has not been started (or was ended on logout).
	ErrNoSession = errors.New("progression session not started")
)

// saveTimeout bounds the background persistence of a snapshot.
var saveTimeout = 10 * time.Second

type (
	// Store is the profile-store boundary: a stateless read/write conduit
	// for progression snapshots keyed by user ID.
	Store interface {
		GetProgress(ctx context.Context, userID string) (State, error)
		SaveProgress(ctx context.Context, userID string, state State) error
	}

	// Service owns one live State per authenticated identity. The in-memory
	// state is the source of truth for the session; persistence is
	// best-effort and asynchronous, and store failures never reach callers.
	Service struct {
		store  Store
		logger core.Logger

		mu       sync.Mutex
		sessions map[string]*session
		saves    sync.WaitGroup
	}

	session struct {
		mu           sync.Mutex
		state        State
		pendingSaves int // reloads are suppressed while > 0
	}
)

func NewService(store Store, logger core.Logger) *Service {
	return &Service{
		store:    store,
		logger:   logger,
		sessions: make(map[string]*session),
	}
}

func (svc *Service) session(userID string) (*session, bool) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	sess, ok := svc.sessions[userID]
	return sess, ok
}

// Start loads the user's persisted progression, initializing and persisting a
// default snapshot on first access. A store failure falls back to the default
// snapshot in memory; the error is logged, never surfaced.
func (svc *Service) Start(ctx context.Context, userID string) State {
	if sess, ok := svc.session(userID); ok {
		sess.mu.Lock()
		defer sess.mu.Unlock()
		return sess.state
	}

	state, err := svc.store.GetProgress(ctx, userID)
	persistFresh := false
	if err != nil {
		state = DefaultState()
		if errors.Is(err, ErrNotFound) {
			persistFresh = true
		} else {
			svc.logger.Error("loading progression for user "+userID, err)
		}
	}

	svc.mu.Lock()
	sess, ok := svc.sessions[userID]
	if !ok {
		sess = &session{state: state}
		svc.sessions[userID] = sess
	}
	svc.mu.Unlock()

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if persistFresh {
		svc.persist(userID, sess)
	}
	return sess.state
}

// Current returns the in-memory snapshot without touching the store.
func (svc *Service) Current(userID string) (State, error) {
	sess, ok := svc.session(userID)
	if !ok {
		return State{}, ErrNoSession
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.state, nil
}

// GrantSessionReward applies a completed focus session's reward. coinsGain
// defaults to exp (1 coin per XP point). It returns the new snapshot and the
// number of levels gained.
func (svc *Service) GrantSessionReward(ctx context.Context, userID string, exp int, coinsGain ...int) (State, int, error) {
	coins := exp
	if len(coinsGain) > 0 {
		coins = coinsGain[0]
	}

	sess, ok := svc.session(userID)
	if !ok {
		svc.Start(ctx, userID)
		sess, _ = svc.session(userID)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	state, gained := ApplyReward(sess.state, exp, coins)
	if gained == 0 && state == sess.state {
		return state, 0, nil // spurious zero reward; nothing to persist
	}
	sess.state = state
	svc.persist(userID, sess)
	return state, gained, nil
}

// OverrideCoins replaces the coin balance after a shop purchase or sale.
func (svc *Service) OverrideCoins(ctx context.Context, userID string, newCoins int) (State, error) {
	sess, ok := svc.session(userID)
	if !ok {
		return State{}, ErrNoSession
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	state, err := OverrideCoins(sess.state, newCoins)
	if err != nil {
		return State{}, err
	}
	sess.state = state
	svc.persist(userID, sess)
	return state, nil
}

// Refresh re-reads the persisted snapshot, superseding the in-memory one.
// The reload is skipped while a save is still in flight for this identity so
// a stale remote read cannot overwrite a newer in-memory state.
func (svc *Service) Refresh(ctx context.Context, userID string) State {
	sess, ok := svc.session(userID)
	if !ok {
		return svc.Start(ctx, userID)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.pendingSaves > 0 {
		return sess.state
	}

	state, err := svc.store.GetProgress(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			svc.logger.Error("refreshing progression for user "+userID, err)
		}
		return sess.state
	}
	sess.state = state
	return sess.state
}

// End discards the identity's session on logout; nothing further is persisted.
func (svc *Service) End(userID string) {
	svc.mu.Lock()
	delete(svc.sessions, userID)
	svc.mu.Unlock()
}

// Flush waits for all in-flight saves; called on graceful shutdown.
func (svc *Service) Flush() {
	svc.saves.Wait()
}

// persist fires a background best-effort save of the current snapshot.
// sess.mu must be held.
func (svc *Service) persist(userID string, sess *session) {
	state := sess.state
	sess.pendingSaves++
	svc.saves.Add(1)

	go func() {
		defer svc.saves.Done()
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()

		if err := svc.store.SaveProgress(ctx, userID, state); err != nil {
			svc.logger.Error("saving progression for user "+userID, err)
		}

		sess.mu.Lock()
		sess.pendingSaves--
		sess.mu.Unlock()
	}()
}
