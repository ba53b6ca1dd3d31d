package preferences

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/five82/prefsync/internal/api"
	"github.com/five82/prefsync/internal/logging"
	"github.com/five82/prefsync/internal/metrics"
	"github.com/five82/prefsync/internal/notify"
	"github.com/five82/prefsync/internal/state"
)

// DefaultPollInterval is how often the profile is re-synced while a token is set.
const DefaultPollInterval = 3 * time.Minute

// Options configure a Controller.
type Options struct {
	Backend   api.Backend
	InitState PreferenceState
	// Notifier receives user-facing messages. Nil builds one with default timings.
	Notifier *notify.Notifier
	Logger   *logrus.Logger
	// PollInterval overrides DefaultPollInterval. Negative disables polling.
	PollInterval time.Duration
	// PageOrigin is the origin of the page the wallet runs in.
	PageOrigin string
	// EmbedderOrigin is the embedding site's origin when the wallet runs in
	// an iframe. Non-empty means embedded.
	EmbedderOrigin string
	// Verifier and VerifierID identify how the user signed in. Sync uses them
	// to fill a missing verifier binding on the profile.
	Verifier   string
	VerifierID string
}

// LoginPayload describes a login to be recorded.
type LoginPayload struct {
	// Rehydrate marks a restored session; those are not recorded.
	Rehydrate bool
	Metadata  map[string]string
}

// CurrencyPayload is the argument to SetSelectedCurrency.
type CurrencyPayload struct {
	SelectedCurrency string
}

// Controller mirrors the user's preferences locally and keeps them in sync
// with the backend.
type Controller struct {
	backend  api.Backend
	store    *state.Store[PreferenceState]
	metadata *state.Store[map[string]any]
	status   *state.Store[SyncStatus]
	notifier *notify.Notifier
	log      *logrus.Entry

	pageOrigin     string
	embedderOrigin string

	identityMu sync.RWMutex
	verifier   string
	verifierID string

	ctx    context.Context
	cancel context.CancelFunc

	pollMu       sync.Mutex
	poll         *pollTask
	pollInterval time.Duration
	activePolls  atomic.Int32
	inflight     sync.WaitGroup
}

// New builds a controller and starts its poll loop.
func New(opts Options) (*Controller, error) {
	if opts.Backend == nil {
		return nil, fmt.Errorf("preferences: backend is required")
	}

	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.NewNotifier(notify.Options{Logger: opts.Logger})
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		backend:        opts.Backend,
		store:          state.New(mergeState(DefaultState(), opts.InitState), cloneState),
		metadata:       state.New(map[string]any{}, cloneMetadata),
		status:         state.New(SyncStatus{}, nil),
		notifier:       notifier,
		log:            logging.Component(opts.Logger, "preferences"),
		pageOrigin:     opts.PageOrigin,
		embedderOrigin: opts.EmbedderOrigin,
		verifier:       opts.Verifier,
		verifierID:     opts.VerifierID,
		ctx:            ctx,
		cancel:         cancel,
	}

	interval := opts.PollInterval
	if interval == 0 {
		interval = DefaultPollInterval
	}
	c.SetPollInterval(interval)
	return c, nil
}

// Store exposes the preference state for observers.
func (c *Controller) Store() *state.Store[PreferenceState] { return c.store }

// State returns a copy of the current preference state.
func (c *Controller) State() PreferenceState { return c.store.Snapshot() }

// Notifications exposes the error/success slots.
func (c *Controller) Notifications() *state.Store[notify.Notifications] { return c.notifier.Store() }

// Metadata exposes the per-origin site metadata.
func (c *Controller) Metadata() *state.Store[map[string]any] { return c.metadata }

// SyncStatus exposes bookkeeping about the latest sync.
func (c *Controller) SyncStatus() *state.Store[SyncStatus] { return c.status }

// HandleError shows notice in the error slot.
func (c *Controller) HandleError(notice notify.Notice) { c.notifier.Error(notice) }

// HandleSuccess shows notice in the success slot.
func (c *Controller) HandleSuccess(notice notify.Notice) { c.notifier.Success(notice) }

// SetAuthToken replaces the bearer token. A non-empty token refreshes the
// billboard before returning; its error is logged and returned.
func (c *Controller) SetAuthToken(ctx context.Context, token string) error {
	c.backend.SetToken(token)
	if token == "" {
		return nil
	}
	return c.GetBillboardContents(ctx)
}

// HasToken reports whether a bearer token is set.
func (c *Controller) HasToken() bool {
	return c.backend.Token() != ""
}

// Sync fetches the profile and past orders concurrently and overwrites the
// synced fields of the local state. onFailure runs when the profile fetch
// fails; onSuccess receives the profile afterwards. Errors are logged only.
func (c *Controller) Sync(ctx context.Context, onSuccess func(*api.User), onFailure func(error)) {
	c.sync(ctx, "manual", onSuccess, onFailure)
}

func (c *Controller) sync(ctx context.Context, trigger string, onSuccess func(*api.User), onFailure func(error)) {
	var (
		wg        sync.WaitGroup
		user      *api.User
		userErr   error
		orders    []api.PaymentOrder
		ordersErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		user, userErr = c.backend.FetchUser(ctx)
	}()
	go func() {
		defer wg.Done()
		orders, ordersErr = c.backend.FetchPastOrders(ctx)
	}()
	wg.Wait()

	log := c.log.WithField("trigger", trigger)
	if ordersErr != nil {
		log.WithError(ordersErr).Error("fetch past orders failed")
	}

	if userErr == nil && user == nil {
		userErr = api.ErrEmptyResponse
	}

	now := time.Now()
	if userErr != nil {
		log.WithError(userErr).Error("fetch user failed")
		metrics.RecordSync(trigger, false)
		c.status.Update(func(s *SyncStatus) {
			s.LastAttempt = now
			s.LastError = userErr.Error()
			s.ConsecutiveFailures++
		})
		if onFailure != nil {
			onFailure(userErr)
		}
		return
	}

	c.store.Update(func(s *PreferenceState) {
		s.Contacts = nonNil(user.Contacts)
		s.PastTransactions = nonNil(user.Transactions)
		s.Theme = user.Theme
		s.SelectedCurrency = user.DefaultCurrency
		s.Locale = user.Locale
		if s.Locale == "" {
			s.Locale = DefaultLocale
		}
		if ordersErr == nil {
			s.PaymentTx = nonNil(orders)
		}
		s.Permissions = nonNil(user.Permissions)
	})
	c.status.Update(func(s *SyncStatus) {
		s.LastAttempt = now
		s.LastSynced = now
		s.LastError = ""
		s.ConsecutiveFailures = 0
	})
	metrics.RecordSync(trigger, true)
	log.WithField("contacts", len(user.Contacts)).Debug("profile synced")

	if !user.HasVerifier() {
		if verifier, verifierID := c.identity(); verifier != "" && verifierID != "" {
			c.SetVerifier(ctx, verifier, verifierID)
		}
	}

	if onSuccess != nil {
		onSuccess(user)
	}
}

// CreateUser registers a new user and returns the raw backend response.
func (c *Controller) CreateUser(ctx context.Context, currency, theme, verifier, verifierID, locale string) (json.RawMessage, error) {
	c.setIdentity(verifier, verifierID)
	return c.backend.CreateUser(ctx, api.CreateUserRequest{
		DefaultCurrency: currency,
		Theme:           theme,
		Verifier:        verifier,
		VerifierID:      verifierID,
		Locale:          locale,
	})
}

// StoreUserLogin records a login with the resolved origin. Rehydrated
// sessions are skipped. Failures are logged only.
func (c *Controller) StoreUserLogin(ctx context.Context, verifier, verifierID string, payload LoginPayload) {
	c.setIdentity(verifier, verifierID)
	if payload.Rehydrate {
		return
	}

	metadata := ""
	if len(payload.Metadata) > 0 {
		encoded, err := json.Marshal(payload.Metadata)
		if err != nil {
			c.log.WithError(err).Warn("encode login metadata")
		} else {
			metadata = string(encoded)
		}
	}

	err := c.backend.RecordLogin(ctx, api.LoginRecord{
		Hostname:   c.resolveOrigin(),
		Verifier:   verifier,
		VerifierID: verifierID,
		Metadata:   metadata,
	})
	if err != nil {
		c.log.WithError(err).Error("record login failed")
	}
}

// SetUserTheme persists theme and updates local state when it changed.
func (c *Controller) SetUserTheme(ctx context.Context, theme string) {
	if theme == c.State().Theme {
		return
	}
	if err := c.backend.UpdateTheme(ctx, theme); err != nil {
		c.log.WithError(err).Error("update theme failed")
		c.notifier.Error(notify.PlainMessage(notify.FailTheme))
		return
	}
	c.store.Update(func(s *PreferenceState) { s.Theme = theme })
	c.notifier.Success(notify.PlainMessage(notify.SuccessTheme))
}

// SetPermissions persists a permission grant. Local permissions are left
// untouched; the next sync picks the change up.
func (c *Controller) SetPermissions(ctx context.Context, permission api.Permission) {
	if err := c.backend.UpdatePermissions(ctx, permission); err != nil {
		c.log.WithError(err).Error("update permissions failed")
		return
	}
	c.log.WithField("permission", permission.Name).Info("permissions updated")
}

// SetUserLocale persists locale and updates local state when it changed.
func (c *Controller) SetUserLocale(ctx context.Context, locale string) {
	if locale == c.State().Locale {
		return
	}
	if err := c.backend.UpdateLocale(ctx, locale); err != nil {
		c.log.WithError(err).Error("update locale failed")
		c.notifier.Error(notify.PlainMessage(notify.FailLocale))
		return
	}
	c.store.Update(func(s *PreferenceState) { s.Locale = locale })
	c.notifier.Success(notify.PlainMessage(notify.SuccessLocale))
}

// SetSelectedCurrency persists the default currency and updates local state
// when it changed.
func (c *Controller) SetSelectedCurrency(ctx context.Context, payload CurrencyPayload) {
	if payload.SelectedCurrency == c.State().SelectedCurrency {
		return
	}
	if err := c.backend.UpdateCurrency(ctx, payload.SelectedCurrency); err != nil {
		c.log.WithError(err).Error("update currency failed")
		c.notifier.Error(notify.PlainMessage(notify.FailCurrency))
		return
	}
	c.store.Update(func(s *PreferenceState) { s.SelectedCurrency = payload.SelectedCurrency })
	c.notifier.Success(notify.PlainMessage(notify.SuccessCurrency))
}

// SetVerifier persists the verifier binding. Outcome is logged only.
func (c *Controller) SetVerifier(ctx context.Context, verifier, verifierID string) {
	err := c.backend.UpdateVerifier(ctx, api.VerifierRequest{Verifier: verifier, VerifierID: verifierID})
	if err != nil {
		c.log.WithError(err).Error("update verifier failed")
		return
	}
	c.log.WithField("verifier", verifier).Info("verifier updated")
}

// GetEtherScanTokenBalances returns the backend's token balance payload as is.
func (c *Controller) GetEtherScanTokenBalances(ctx context.Context) (json.RawMessage, error) {
	return c.backend.FetchTokenBalances(ctx)
}

// AddContact persists a contact and appends the stored record.
func (c *Controller) AddContact(ctx context.Context, req api.ContactRequest) {
	contact, err := c.backend.AddContact(ctx, req)
	if err != nil {
		c.log.WithError(err).Error("add contact failed")
		c.notifier.Error(notify.PlainMessage(notify.FailContact))
		return
	}
	c.store.Update(func(s *PreferenceState) { s.Contacts = append(s.Contacts, contact) })
	c.notifier.Success(notify.PlainMessage(notify.SuccessContact))
}

// DeleteContact removes a contact remotely, then drops the entry whose id
// the backend reports as deleted.
func (c *Controller) DeleteContact(ctx context.Context, id int64) {
	deleted, err := c.backend.DeleteContact(ctx, id)
	if err != nil {
		c.log.WithError(err).Error("delete contact failed")
		c.notifier.Error(notify.PlainMessage(notify.FailContactDelete))
		return
	}
	c.store.Update(func(s *PreferenceState) {
		s.Contacts = slices.DeleteFunc(s.Contacts, func(ct api.Contact) bool { return ct.ID == deleted.ID })
	})
	c.notifier.Success(notify.PlainMessage(notify.SuccessContactDelete))
}

// RevokeDiscord revokes a Discord id token. Outcome is logged only.
func (c *Controller) RevokeDiscord(ctx context.Context, idToken string) {
	if err := c.backend.RevokeDiscord(ctx, idToken); err != nil {
		c.log.WithError(err).Error("revoke discord failed")
		return
	}
	c.log.Info("discord token revoked")
}

// SetSiteMetadata stores metadata for origin.
func (c *Controller) SetSiteMetadata(origin string, metadata any) {
	c.metadata.Update(func(m *map[string]any) {
		if *m == nil {
			*m = map[string]any{}
		}
		(*m)[origin] = metadata
	})
}

// SetSelectedAddress switches the selected address and re-syncs before
// returning.
func (c *Controller) SetSelectedAddress(ctx context.Context, address string) {
	c.store.Update(func(s *PreferenceState) { s.SelectedAddress = address })
	c.sync(ctx, "address", nil, nil)
}

func (c *Controller) resolveOrigin() string {
	if c.embedderOrigin != "" {
		return c.embedderOrigin
	}
	return c.pageOrigin
}

func (c *Controller) identity() (string, string) {
	c.identityMu.RLock()
	defer c.identityMu.RUnlock()
	return c.verifier, c.verifierID
}

func (c *Controller) setIdentity(verifier, verifierID string) {
	if verifier == "" || verifierID == "" {
		return
	}
	c.identityMu.Lock()
	defer c.identityMu.Unlock()
	c.verifier = verifier
	c.verifierID = verifierID
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
