package funnel

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	SessionCookie = "booking_session"
	sessionKey    = "funnel.session"
)

// Guard redirects visitors who open a stage of the booking flow they have
// not reached yet. It is a navigation aid, not an access control.
type Guard struct {
	store        SessionStore
	catalogPath  string
	secureCookie bool
	now          func() time.Time
	log          *logger.Logger
	onRedirect   func(Requirement)
}

type GuardOption func(*Guard)

func WithSecureCookie(secure bool) GuardOption {
	return func(g *Guard) {
		g.secureCookie = secure
	}
}

func WithLogger(log *logger.Logger) GuardOption {
	return func(g *Guard) {
		g.log = log
	}
}

func WithClock(now func() time.Time) GuardOption {
	return func(g *Guard) {
		g.now = now
	}
}

// WithRedirectHook is called with the unmet requirement on every redirect.
func WithRedirectHook(fn func(Requirement)) GuardOption {
	return func(g *Guard) {
		g.onRedirect = fn
	}
}

func NewGuard(store SessionStore, catalogPath string, opts ...GuardOption) *Guard {
	g := &Guard{
		store:       store,
		catalogPath: catalogPath,
		now:         time.Now,
		log:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Guard) CatalogPath() string {
	return g.catalogPath
}

// Sessions attaches the visitor's funnel session to the request. A missing
// or malformed cookie starts a new session. A store failure yields an empty
// session that cannot be saved, so guarded stages redirect instead of opening
// and the stored progress is left untouched.
func (g *Guard) Sessions() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(SessionCookie)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.NewString()
			g.setCookie(c, id)
		}

		session, err := g.store.Load(c.Request.Context(), id)
		if err != nil {
			session = NewSession(id)
			if !errors.Is(err, ErrSessionNotFound) {
				g.log.Warn("funnel session load failed", "session_id", id, "error", err)
				session.unloaded = true
			}
		}

		c.Set(sessionKey, session)
		c.Next()
	}
}

// Require aborts with 303 See Other to the catalog when the session has not
// reached the stage. The protected handler is not invoked.
func (g *Guard) Require(r Requirement) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := SessionFrom(c)
		if session == nil || !session.Progress.Satisfies(r) {
			if g.onRedirect != nil {
				g.onRedirect(r)
			}
			c.Redirect(http.StatusSeeOther, g.catalogPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

func (g *Guard) Save(c *gin.Context, session *Session) error {
	if !session.Loaded() {
		return fmt.Errorf("%w: %s", ErrSessionUnavailable, session.ID)
	}
	session.UpdatedAt = g.now().UTC()
	return g.store.Save(c.Request.Context(), session)
}

func (g *Guard) setCookie(c *gin.Context, id string) {
	c.SetSameSite(http.SameSiteLaxMode)
	// maxAge 0 leaves Max-Age unset: the cookie ends with the browser session.
	c.SetCookie(SessionCookie, id, 0, "/", "", g.secureCookie, true)
}

// SessionFrom returns the session attached by Sessions, or nil.
func SessionFrom(c *gin.Context) *Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	session, _ := v.(*Session)
	return session
}
