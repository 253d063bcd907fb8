package http

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Jovackbud/Research-assisant/internal/services"
	"github.com/Jovackbud/Research-assisant/internal/storage"
)

const (
	sessionCookieName = "review_session"
	sessionContextKey = "sessionID"
	flashKey          = "flash"
)

// Sessions attaches a session id to every request. The id travels in a signed
// cookie; an unsigned, tampered or missing cookie starts a new session.
func Sessions(signer *services.Signer, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := ""
		if token, err := c.Cookie(sessionCookieName); err == nil {
			if value, ok := signer.Verify(token); ok {
				id = value
			}
		}
		if id == "" {
			id = uuid.NewString()
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(sessionCookieName, signer.Sign(id), int(ttl.Seconds()), "/", "", false, true)
		c.Set(sessionContextKey, id)
		c.Next()
	}
}

func sessionID(c *gin.Context) string {
	return c.GetString(sessionContextKey)
}

func (a *API) setFlash(c *gin.Context, message string) {
	if err := a.sessions.Set(c.Request.Context(), sessionID(c), flashKey, []byte(message)); err != nil {
		log.Printf("store flash message: %v", err)
	}
}

// popFlash returns and clears the pending flash message.
func (a *API) popFlash(c *gin.Context) string {
	ctx := c.Request.Context()
	id := sessionID(c)

	value, err := a.sessions.Get(ctx, id, flashKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("read flash message: %v", err)
		}
		return ""
	}
	if err := a.sessions.Delete(ctx, id, flashKey); err != nil {
		log.Printf("clear flash message: %v", err)
	}
	return string(value)
}

// purgeExpired drops idle sessions together with their export files.
func (a *API) purgeExpired(ctx context.Context, now time.Time) {
	ids, err := a.sessions.PurgeExpired(ctx, now)
	if err != nil {
		log.Printf("purge expired sessions: %v", err)
		return
	}
	for _, id := range ids {
		if err := a.files.ClearExports(id); err != nil {
			log.Printf("clear exports for %s: %v", id, err)
		}
	}
	if len(ids) > 0 {
		log.Printf("purged %d expired sessions", len(ids))
	}
}
