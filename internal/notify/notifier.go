package notify

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/five82/prefsync/internal/logging"
	"github.com/five82/prefsync/internal/metrics"
	"github.com/five82/prefsync/internal/state"
)

const (
	// ErrorTime is how long an error message stays visible.
	ErrorTime = 7 * time.Second
	// SuccessTime is how long a success message stays visible.
	SuccessTime = 5 * time.Second
)

// Fixed, pre-translated keys shown after preference mutations.
const (
	SuccessTheme         = "navBar.snackSuccessTheme"
	FailTheme            = "navBar.snackFailTheme"
	SuccessLocale        = "navBar.snackSuccessLocale"
	FailLocale           = "navBar.snackFailLocale"
	SuccessCurrency      = "navBar.snackSuccessCurrency"
	FailCurrency         = "navBar.snackFailCurrency"
	SuccessContact       = "navBar.snackSuccessContact"
	FailContact          = "navBar.snackFailContact"
	SuccessContactDelete = "navBar.snackSuccessContactDelete"
	FailContactDelete    = "navBar.snackFailContactDelete"
)

// Notifications holds the two independent message slots.
type Notifications struct {
	Error   string
	Success string
}

// Options configure a Notifier.
type Options struct {
	ErrorTime   time.Duration
	SuccessTime time.Duration
	Logger      *logrus.Logger
}

// Notifier writes formatted notices into a store and clears each write after
// a fixed delay. Clears are independent: a clear scheduled for an older
// message still fires after a newer message replaced it.
type Notifier struct {
	store       *state.Store[Notifications]
	errorTime   time.Duration
	successTime time.Duration
	log         *logrus.Entry

	mu     sync.Mutex
	timers map[*time.Timer]struct{}
	closed bool
}

// NewNotifier returns a notifier with empty slots.
func NewNotifier(opts Options) *Notifier {
	errorTime := opts.ErrorTime
	if errorTime <= 0 {
		errorTime = ErrorTime
	}
	successTime := opts.SuccessTime
	if successTime <= 0 {
		successTime = SuccessTime
	}
	return &Notifier{
		store:       state.New(Notifications{}, nil),
		errorTime:   errorTime,
		successTime: successTime,
		log:         logging.Component(opts.Logger, "notify"),
		timers:      make(map[*time.Timer]struct{}),
	}
}

// Store exposes the notification slots for observers.
func (n *Notifier) Store() *state.Store[Notifications] {
	return n.store
}

// Error formats notice into the error slot and schedules its clear.
func (n *Notifier) Error(notice Notice) {
	msg := Format(notice)
	n.store.Update(func(v *Notifications) { v.Error = msg })
	if msg != "" {
		metrics.RecordNotification("error")
		n.log.WithField("message", msg).Debug("error notification")
	}
	n.schedule(n.errorTime, func(v *Notifications) { v.Error = "" })
}

// Success formats notice into the success slot and schedules its clear.
func (n *Notifier) Success(notice Notice) {
	msg := Format(notice)
	n.store.Update(func(v *Notifications) { v.Success = msg })
	if msg != "" {
		metrics.RecordNotification("success")
	}
	n.schedule(n.successTime, func(v *Notifications) { v.Success = "" })
}

// Close stops pending clears. Later writes are not cleared.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
	for t := range n.timers {
		t.Stop()
	}
	n.timers = make(map[*time.Timer]struct{})
}

func (n *Notifier) schedule(after time.Duration, clear func(*Notifications)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}

	var timer *time.Timer
	timer = time.AfterFunc(after, func() {
		n.mu.Lock()
		delete(n.timers, timer)
		n.mu.Unlock()
		n.store.Update(clear)
	})
	n.timers[timer] = struct{}{}
}
