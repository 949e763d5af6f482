// Package httpapi exposes the HTTP side of the server: health, room status,
// share-link QR codes and the Socket.IO endpoint.
package httpapi

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/oregamc-byte/yuruito/internal/config"
	"github.com/oregamc-byte/yuruito/internal/game"
	"github.com/rs/zerolog/log"
	"github.com/skip2/go-qrcode"
)

const qrSize = 320

type RoomLookup interface {
	Summary(id string) (game.Summary, error)
	Len() int
}

// NewRouter builds the gin engine. socket may be nil when only the HTTP API
// is wanted.
func NewRouter(cfg config.Config, rooms RoomLookup, socket http.Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger())
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "rooms": rooms.Len(), "time": time.Now().UTC()})
	})

	r.GET("/api/rooms/:roomId", func(c *gin.Context) {
		s, err := rooms.Summary(c.Param("roomId"))
		if errors.Is(err, game.ErrUnknownRoom) {
			c.JSON(http.StatusNotFound, gin.H{"error": "room_not_found"})
			return
		}
		c.JSON(http.StatusOK, s)
	})

	r.GET("/api/rooms/:roomId/qr", func(c *gin.Context) {
		link := shareLink(cfg.PublicURL, c.Request, c.Param("roomId"))
		png, err := qrcode.Encode(link, qrcode.Medium, qrSize)
		if err != nil {
			log.Error().Err(err).Str("room", c.Param("roomId")).Msg("qr generation failed")
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Data(http.StatusOK, "image/png", png)
	})

	if socket != nil {
		r.GET("/socket.io/*any", gin.WrapH(socket))
		r.POST("/socket.io/*any", gin.WrapH(socket))
	}
	return r
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	c.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	c.AllowHeaders = []string{"Content-Type"}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c
}

// requestLogger logs every request except the Socket.IO polling noise.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/socket.io") {
			return
		}
		log.Info().Str("path", path).Int("status", c.Writer.Status()).Dur("dur", time.Since(start)).Msg("http")
	}
}

// shareLink points at the client page for a room. Without a configured
// public URL the request's own host is used.
func shareLink(publicURL string, req *http.Request, roomID string) string {
	base := publicURL
	if base == "" {
		scheme := "http"
		if req.TLS != nil {
			scheme = "https"
		}
		if proto := req.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}
		base = scheme + "://" + req.Host
	}
	return base + "/?room=" + url.QueryEscape(roomID)
}
