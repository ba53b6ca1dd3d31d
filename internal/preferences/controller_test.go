package preferences

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/prefsync/internal/api"
	"github.com/five82/prefsync/internal/notify"
)

// walletServer is a minimal wallet backend that records every request.
type walletServer struct {
	t *testing.T

	mu        sync.Mutex
	calls     map[string]int
	bodies    map[string][]map[string]any
	user      api.User
	orders    []api.PaymentOrder
	billboard []api.BillboardEvent
	failing   map[string]int
	raw       map[string]string
	nextID    int64
}

func newWalletServer(t *testing.T) (*walletServer, *httptest.Server) {
	t.Helper()
	ws := &walletServer{
		t:       t,
		calls:   map[string]int{},
		bodies:  map[string][]map[string]any{},
		failing: map[string]int{},
		raw:     map[string]string{},
		nextID:  100,
	}
	srv := httptest.NewServer(http.HandlerFunc(ws.serve))
	t.Cleanup(srv.Close)
	return ws, srv
}

func (ws *walletServer) serve(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	if strings.HasPrefix(r.URL.Path, "/contact/") {
		key = r.Method + " /contact/{id}"
	}

	var body map[string]any
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	ws.mu.Lock()
	ws.calls[key]++
	ws.bodies[key] = append(ws.bodies[key], body)
	status := ws.failing[key]
	raw, hasRaw := ws.raw[key]
	user := ws.user
	orders := ws.orders
	billboard := ws.billboard
	ws.nextID++
	id := ws.nextID
	ws.mu.Unlock()

	if status != 0 {
		http.Error(w, `{"message":"nope"}`, status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if hasRaw {
		_, _ = w.Write([]byte(raw))
		return
	}
	switch key {
	case "GET /user":
		writeData(w, user)
	case "GET /transaction":
		writeData(w, orders)
	case "GET /billboard":
		writeData(w, billboard)
	case "GET /tokenbalances":
		_, _ = w.Write([]byte(`{"data":[{"symbol":"DAI","balance":"12"}]}`))
	case "POST /user":
		_, _ = w.Write([]byte(`{"data":{"created":true}}`))
	case "POST /contact":
		writeData(w, api.Contact{
			ID:       id,
			Contact:  asString(body["contact"]),
			Name:     asString(body["name"]),
			Verifier: asString(body["verifier"]),
		})
	case "DELETE /contact/{id}":
		deleted, _ := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/contact/"), 10, 64)
		writeData(w, api.DeletedContact{ID: deleted})
	default:
		_, _ = w.Write([]byte(`{"data":{}}`))
	}
}

func (ws *walletServer) count(key string) int {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.calls[key]
}

func (ws *walletServer) total() int {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	n := 0
	for _, c := range ws.calls {
		n += c
	}
	return n
}

func (ws *walletServer) lastBody(key string) map[string]any {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	bodies := ws.bodies[key]
	if len(bodies) == 0 {
		return nil
	}
	return bodies[len(bodies)-1]
}

func (ws *walletServer) fail(key string, status int) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.failing[key] = status
}

func (ws *walletServer) respond(key, body string) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.raw[key] = body
}

func (ws *walletServer) setUser(u api.User) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.user = u
}

func writeData(w http.ResponseWriter, v any) {
	_ = json.NewEncoder(w).Encode(map[string]any{"data": v})
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func newTestController(t *testing.T, srv *httptest.Server, mutate func(*Options)) *Controller {
	t.Helper()
	client, err := api.NewClient(api.Options{BaseURL: srv.URL, RateLimit: -1})
	require.NoError(t, err)

	opts := Options{
		Backend:      client,
		Notifier:     notify.NewNotifier(notify.Options{ErrorTime: time.Hour, SuccessTime: time.Hour}),
		PollInterval: -1,
	}
	if mutate != nil {
		mutate(&opts)
	}
	c, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestNew_RequiresBackend(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestNew_DefaultState(t *testing.T) {
	_, srv := newWalletServer(t)
	c := newTestController(t, srv, nil)

	s := c.State()
	assert.Equal(t, "USD", s.SelectedCurrency)
	assert.Equal(t, "light-blue", s.Theme)
	assert.Equal(t, "en", s.Locale)
	assert.Empty(t, s.SelectedAddress)
	assert.NotNil(t, s.Contacts)
	assert.NotNil(t, s.Billboard)
	assert.NotNil(t, s.PaymentTx)
}

func TestNew_MergesInitState(t *testing.T) {
	_, srv := newWalletServer(t)
	c := newTestController(t, srv, func(o *Options) {
		o.InitState = PreferenceState{Theme: "dark-black"}
	})

	s := c.State()
	assert.Equal(t, "dark-black", s.Theme)
	assert.Equal(t, "USD", s.SelectedCurrency)
	assert.Equal(t, "en", s.Locale)
}

func TestNew_DefaultPollInterval(t *testing.T) {
	_, srv := newWalletServer(t)
	c := newTestController(t, srv, func(o *Options) { o.PollInterval = 0 })

	assert.Equal(t, DefaultPollInterval, c.PollInterval())
	assert.Equal(t, 1, c.ActivePolls())
}

func TestSetAuthToken_FetchesBillboardOnce(t *testing.T) {
	ws, srv := newWalletServer(t)
	ws.billboard = []api.BillboardEvent{
		{CallToActionLink: "https://a", Locale: "en", EventName: "x"},
	}
	c := newTestController(t, srv, nil)

	require.NoError(t, c.SetAuthToken(context.Background(), "abc"))
	assert.Equal(t, 1, ws.count("GET /billboard"))
	assert.Equal(t, "x", c.State().Billboard["https://a"]["en"].EventName)
	assert.True(t, c.HasToken())
}

func TestSetAuthToken_EmptyTokenSkipsBillboard(t *testing.T) {
	ws, srv := newWalletServer(t)
	c := newTestController(t, srv, nil)

	require.NoError(t, c.SetAuthToken(context.Background(), ""))
	assert.Zero(t, ws.total())
	assert.False(t, c.HasToken())
}

func TestSetAuthToken_ReturnsBillboardError(t *testing.T) {
	ws, srv := newWalletServer(t)
	ws.fail("GET /billboard", http.StatusBadGateway)
	c := newTestController(t, srv, func(o *Options) {
		o.InitState = PreferenceState{Billboard: Billboard{"keep": {"en": {EventName: "old"}}}}
	})

	err := c.SetAuthToken(context.Background(), "abc")
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "old", c.State().Billboard["keep"]["en"].EventName)
}

func TestSync_OverwritesSyncedFields(t *testing.T) {
	ws, srv := newWalletServer(t)
	ws.setUser(api.User{
		Contacts:        []api.Contact{{ID: 1, Contact: "0xabc", Name: "alice"}},
		Transactions:    []api.Transaction{{ID: 9, Status: "confirmed"}},
		Theme:           "dark-black",
		DefaultCurrency: "EUR",
		Locale:          "de",
		Verifier:        "google",
		VerifierID:      "a@b.c",
		Permissions:     []api.Permission{{Name: "sign"}},
	})
	ws.orders = []api.PaymentOrder{{ID: "o1", Status: "SUCCESS"}}
	c := newTestController(t, srv, nil)

	var got *api.User
	c.Sync(context.Background(), func(u *api.User) { got = u }, func(err error) {
		t.Fatalf("unexpected failure: %v", err)
	})

	require.NotNil(t, got)
	s := c.State()
	assert.Equal(t, "dark-black", s.Theme)
	assert.Equal(t, "EUR", s.SelectedCurrency)
	assert.Equal(t, "de", s.Locale)
	assert.Len(t, s.Contacts, 1)
	assert.Len(t, s.PastTransactions, 1)
	assert.Len(t, s.Permissions, 1)
	assert.Equal(t, []api.PaymentOrder{{ID: "o1", Status: "SUCCESS"}}, s.PaymentTx)
	assert.Zero(t, ws.count("PATCH /user/verifier"))

	status := c.SyncStatus().Snapshot()
	assert.False(t, status.LastSynced.IsZero())
	assert.Zero(t, status.ConsecutiveFailures)
}

func TestSync_DefaultsLocale(t *testing.T) {
	ws, srv := newWalletServer(t)
	ws.setUser(api.User{Theme: "light-blue", DefaultCurrency: "USD"})
	c := newTestController(t, srv, func(o *Options) {
		o.InitState = PreferenceState{Locale: "ja"}
	})

	c.Sync(context.Background(), nil, nil)
	assert.Equal(t, "en", c.State().Locale)
}

func TestSync_ProfileFailureLeavesStateAndCallsOnFailure(t *testing.T) {
	ws, srv := newWalletServer(t)
	ws.fail("GET /user", http.StatusUnauthorized)
	c := newTestController(t, srv, func(o *Options) {
		o.InitState = PreferenceState{Theme: "dark-black"}
	})

	var failure error
	c.Sync(context.Background(), func(*api.User) { t.Fatal("onSuccess called") }, func(err error) { failure = err })
	c.Sync(context.Background(), nil, nil)

	var apiErr *api.Error
	require.ErrorAs(t, failure, &apiErr)
	assert.True(t, apiErr.Unauthorized())
	assert.Equal(t, "dark-black", c.State().Theme)

	status := c.SyncStatus().Snapshot()
	assert.Equal(t, 2, status.ConsecutiveFailures)
	assert.True(t, status.Stale())
	assert.NotEmpty(t, status.LastError)
}

func TestSync_EmptyProfileKeepsState(t *testing.T) {
	for _, body := range []string{`{"data":null}`, `{}`} {
		t.Run(body, func(t *testing.T) {
			ws, srv := newWalletServer(t)
			ws.respond("GET /user", body)
			contacts := []api.Contact{{ID: 1, Contact: "0xabc", Name: "alice", Verifier: "ethereum"}}
			c := newTestController(t, srv, func(o *Options) {
				o.InitState = PreferenceState{Theme: "dark-black", SelectedCurrency: "EUR", Contacts: contacts}
			})

			var failure error
			c.Sync(context.Background(), func(*api.User) { t.Fatal("onSuccess called") }, func(err error) { failure = err })

			require.ErrorIs(t, failure, api.ErrEmptyResponse)
			state := c.State()
			assert.Equal(t, "dark-black", state.Theme)
			assert.Equal(t, "EUR", state.SelectedCurrency)
			assert.Equal(t, contacts, state.Contacts)
			assert.Equal(t, 1, c.SyncStatus().Snapshot().ConsecutiveFailures)
		})
	}
}

func TestSync_OrdersFailureKeepsPreviousPaymentTx(t *testing.T) {
	ws, srv := newWalletServer(t)
	ws.setUser(api.User{Theme: "dark-black"})
	ws.fail("GET /transaction", http.StatusInternalServerError)
	prior := []api.PaymentOrder{{ID: "old"}}
	c := newTestController(t, srv, func(o *Options) {
		o.InitState = PreferenceState{PaymentTx: prior}
	})

	c.Sync(context.Background(), nil, nil)
	assert.Equal(t, prior, c.State().PaymentTx)
	assert.Equal(t, "dark-black", c.State().Theme)
}

func TestSync_HealsMissingVerifier(t *testing.T) {
	ws, srv := newWalletServer(t)
	ws.setUser(api.User{Theme: "light-blue"})
	c := newTestController(t, srv, func(o *Options) {
		o.Verifier = "google"
		o.VerifierID = "a@b.c"
	})

	c.Sync(context.Background(), nil, nil)
	require.Equal(t, 1, ws.count("PATCH /user/verifier"))
	body := ws.lastBody("PATCH /user/verifier")
	assert.Equal(t, "google", body["verifier"])
	assert.Equal(t, "a@b.c", body["verifierId"])
}

func TestSetUserTheme_NoopWhenUnchanged(t *testing.T) {
	ws, srv := newWalletServer(t)
	c := newTestController(t, srv, func(o *Options) {
		o.InitState = PreferenceState{Theme: "dark-black"}
	})

	c.SetUserTheme(context.Background(), "dark-black")
	assert.Zero(t, ws.total())
	assert.Empty(t, c.Notifications().Snapshot().Success)
}

func TestSetUserTheme_UpdatesAndNotifies(t *testing.T) {
	ws, srv := newWalletServer(t)
	c := newTestController(t, srv, nil)

	c.SetUserTheme(context.Background(), "dark-black")
	assert.Equal(t, 1, ws.count("PATCH /user/theme"))
	assert.Equal(t, "dark-black", ws.lastBody("PATCH /user/theme")["theme"])
	assert.Equal(t, "dark-black", c.State().Theme)
	assert.Equal(t, notify.SuccessTheme, c.Notifications().Snapshot().Success)
}

func TestSetUserTheme_FailureNotifies(t *testing.T) {
	ws, srv := newWalletServer(t)
	ws.fail("PATCH /user/theme", http.StatusBadRequest)
	c := newTestController(t, srv, nil)

	c.SetUserTheme(context.Background(), "dark-black")
	assert.Equal(t, "light-blue", c.State().Theme)
	assert.Equal(t, notify.FailTheme, c.Notifications().Snapshot().Error)
}

func TestSetUserLocale(t *testing.T) {
	ws, srv := newWalletServer(t)
	c := newTestController(t, srv, nil)

	c.SetUserLocale(context.Background(), "en")
	assert.Zero(t, ws.total())

	c.SetUserLocale(context.Background(), "ja")
	assert.Equal(t, "ja", ws.lastBody("PATCH /user/locale")["locale"])
	assert.Equal(t, "ja", c.State().Locale)
	assert.Equal(t, notify.SuccessLocale, c.Notifications().Snapshot().Success)
}

func TestSetSelectedCurrency(t *testing.T) {
	ws, srv := newWalletServer(t)
	c := newTestController(t, srv, nil)

	c.SetSelectedCurrency(context.Background(), CurrencyPayload{SelectedCurrency: "USD"})
	assert.Zero(t, ws.total())

	ws.fail("PATCH /user", http.StatusInternalServerError)
	c.SetSelectedCurrency(context.Background(), CurrencyPayload{SelectedCurrency: "EUR"})
	assert.Equal(t, "USD", c.State().SelectedCurrency)
	assert.Equal(t, notify.FailCurrency, c.Notifications().Snapshot().Error)

	ws.fail("PATCH /user", 0)
	c.SetSelectedCurrency(context.Background(), CurrencyPayload{SelectedCurrency: "EUR"})
	assert.Equal(t, "EUR", ws.lastBody("PATCH /user")["default_currency"])
	assert.Equal(t, "EUR", c.State().SelectedCurrency)
}

func TestSetPermissions_DoesNotTouchLocalState(t *testing.T) {
	ws, srv := newWalletServer(t)
	c := newTestController(t, srv, nil)

	c.SetPermissions(context.Background(), api.Permission{Name: "sign", Description: "Sign txs"})
	assert.Equal(t, 1, ws.count("POST /permissions"))
	assert.Empty(t, c.State().Permissions)
}

func TestAddContact_Appends(t *testing.T) {
	ws, srv := newWalletServer(t)
	c := newTestController(t, srv, func(o *Options) {
		o.InitState = PreferenceState{Contacts: []api.Contact{{ID: 1, Name: "alice"}}}
	})

	c.AddContact(context.Background(), api.ContactRequest{Contact: "0xbeef", Name: "bob", Verifier: "eth"})
	require.Equal(t, 1, ws.count("POST /contact"))

	contacts := c.State().Contacts
	require.Len(t, contacts, 2)
	assert.Equal(t, "alice", contacts[0].Name)
	assert.Equal(t, "bob", contacts[1].Name)
	assert.Equal(t, "0xbeef", contacts[1].Contact)
	assert.Equal(t, notify.SuccessContact, c.Notifications().Snapshot().Success)
}

func TestAddContact_FailureLeavesContacts(t *testing.T) {
	ws, srv := newWalletServer(t)
	ws.fail("POST /contact", http.StatusConflict)
	c := newTestController(t, srv, nil)

	c.AddContact(context.Background(), api.ContactRequest{Contact: "0xbeef", Name: "bob"})
	assert.Empty(t, c.State().Contacts)
	assert.Equal(t, notify.FailContact, c.Notifications().Snapshot().Error)
}

func TestDeleteContact_FiltersById(t *testing.T) {
	ws, srv := newWalletServer(t)
	c := newTestController(t, srv, func(o *Options) {
		o.InitState = PreferenceState{Contacts: []api.Contact{
			{ID: 1, Name: "alice"},
			{ID: 2, Name: "bob"},
			{ID: 3, Name: "carol"},
		}}
	})

	c.DeleteContact(context.Background(), 2)
	assert.Equal(t, 1, ws.count("DELETE /contact/{id}"))

	var names []string
	for _, ct := range c.State().Contacts {
		names = append(names, ct.Name)
	}
	assert.Equal(t, []string{"alice", "carol"}, names)
	assert.Equal(t, notify.SuccessContactDelete, c.Notifications().Snapshot().Success)
}

func TestDeleteContact_FailureNotifies(t *testing.T) {
	ws, srv := newWalletServer(t)
	ws.fail("DELETE /contact/{id}", http.StatusNotFound)
	c := newTestController(t, srv, func(o *Options) {
		o.InitState = PreferenceState{Contacts: []api.Contact{{ID: 1}}}
	})

	c.DeleteContact(context.Background(), 1)
	assert.Len(t, c.State().Contacts, 1)
	assert.Equal(t, notify.FailContactDelete, c.Notifications().Snapshot().Error)
}

func TestStoreUserLogin(t *testing.T) {
	ws, srv := newWalletServer(t)
	c := newTestController(t, srv, func(o *Options) {
		o.PageOrigin = "https://wallet.example"
		o.EmbedderOrigin = "https://dapp.example"
	})

	c.StoreUserLogin(context.Background(), "google", "a@b.c", LoginPayload{Rehydrate: true})
	assert.Zero(t, ws.total())

	c.StoreUserLogin(context.Background(), "google", "a@b.c", LoginPayload{Metadata: map[string]string{"browser": "firefox"}})
	require.Equal(t, 1, ws.count("POST /user/recordLogin"))
	body := ws.lastBody("POST /user/recordLogin")
	assert.Equal(t, "https://dapp.example", body["hostname"])
	assert.Equal(t, "a@b.c", body["verifierId"])
	assert.JSONEq(t, `{"browser":"firefox"}`, asString(body["metadata"]))
}

func TestStoreUserLogin_PageOriginWhenNotEmbedded(t *testing.T) {
	ws, srv := newWalletServer(t)
	c := newTestController(t, srv, func(o *Options) { o.PageOrigin = "https://wallet.example" })

	c.StoreUserLogin(context.Background(), "google", "a@b.c", LoginPayload{})
	assert.Equal(t, "https://wallet.example", ws.lastBody("POST /user/recordLogin")["hostname"])
}

func TestCreateUserAndBalances(t *testing.T) {
	ws, srv := newWalletServer(t)
	c := newTestController(t, srv, nil)

	raw, err := c.CreateUser(context.Background(), "USD", "light-blue", "google", "a@b.c", "en")
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":{"created":true}}`, string(raw))
	assert.Equal(t, "a@b.c", ws.lastBody("POST /user")["verifier_id"])

	balances, err := c.GetEtherScanTokenBalances(context.Background())
	require.NoError(t, err)
	assert.Contains(t, string(balances), "DAI")
}

func TestRevokeDiscordAndVerifier(t *testing.T) {
	ws, srv := newWalletServer(t)
	c := newTestController(t, srv, nil)

	c.RevokeDiscord(context.Background(), "discord-token")
	assert.Equal(t, "discord-token", ws.lastBody("POST /revoke/discord")["token"])

	c.SetVerifier(context.Background(), "discord", "123")
	assert.Equal(t, "discord", ws.lastBody("PATCH /user/verifier")["verifier"])
}

func TestSetSiteMetadata(t *testing.T) {
	_, srv := newWalletServer(t)
	c := newTestController(t, srv, nil)

	c.SetSiteMetadata("https://dapp.example", map[string]string{"name": "Dapp"})
	c.SetSiteMetadata("https://other.example", "icon")

	m := c.Metadata().Snapshot()
	assert.Len(t, m, 2)
	assert.Equal(t, "icon", m["https://other.example"])
}

func TestSetSelectedAddress_SyncsBeforeReturning(t *testing.T) {
	ws, srv := newWalletServer(t)
	ws.setUser(api.User{Theme: "dark-black"})
	c := newTestController(t, srv, nil)

	c.SetSelectedAddress(context.Background(), "0xabc")
	assert.Equal(t, "0xabc", c.State().SelectedAddress)
	assert.Equal(t, 1, ws.count("GET /user"))
	assert.Equal(t, "dark-black", c.State().Theme)
}

func TestHandleErrorAndSuccess(t *testing.T) {
	_, srv := newWalletServer(t)
	c := newTestController(t, srv, nil)

	c.HandleError(notify.StructuredError{Err: errors.New("boom")})
	c.HandleSuccess(notify.PlainMessage("done"))

	n := c.Notifications().Snapshot()
	assert.Contains(t, n.Error, "boom")
	assert.Equal(t, "done", n.Success)
}

func TestHandleNotices_ClearAfterTimeout(t *testing.T) {
	_, srv := newWalletServer(t)
	c := newTestController(t, srv, func(o *Options) {
		o.Notifier = notify.NewNotifier(notify.Options{ErrorTime: 40 * time.Millisecond, SuccessTime: 20 * time.Millisecond})
	})

	c.HandleError(notify.GenericPayload{"code": 1})
	c.HandleSuccess(notify.PlainMessage("saved"))
	assert.Equal(t, "Error: code: 1", c.Notifications().Snapshot().Error)
	assert.Equal(t, "saved", c.Notifications().Snapshot().Success)

	assert.Eventually(t, func() bool {
		n := c.Notifications().Snapshot()
		return n.Error == "" && n.Success == ""
	}, time.Second, 5*time.Millisecond)
}
