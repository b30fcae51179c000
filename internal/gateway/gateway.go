// Package gateway is the single access path to the remote user-data store.
// A Configured gateway persists through GORM; an Unconfigured one answers
// every call deterministically without persisting anything, which keeps
// the portal usable in preview deployments.
package gateway

import (
	"context"
	"errors"
	"time"
	"zappygames/config"
	"zappygames/internal/database"
	"zappygames/internal/models"

	logger "github.com/Bparsons0904/goLogger"
)

type Kind string

const (
	KindLikes       Kind = "likes"
	KindRecentPlays Kind = "recent_plays"
	KindComments    Kind = "comments"
	KindUsers       Kind = "users"
)

var (
	ErrRemoteUnavailable = errors.New("remote store unavailable")
	ErrRemoteRejected    = errors.New("remote store rejected the request")
	ErrAuth              = errors.New("authentication failed")
)

const PreviewAuthMessage = "Authentication not available in preview mode"

// Table is the record-level surface of one kind.
type Table[T any] interface {
	Select(ctx context.Context, query Query) ([]T, error)
	Insert(ctx context.Context, record *T) error
	Update(ctx context.Context, filters []Filter, patch map[string]any) error
	Delete(ctx context.Context, filters []Filter) error
	Upsert(ctx context.Context, record *T, conflictKey ...string) error
}

type Gateway interface {
	IsConfigured() bool
	Likes() Table[models.Like]
	RecentPlays() Table[models.RecentPlay]
	Comments() Table[models.Comment]
	Users() Table[models.User]
	PushSubscriptions() Table[models.PushSubscription]
	Auth() Auth
}

// New selects the variant once, from whether a relational store is
// available.
func New(db database.DB, cfg config.Config) Gateway {
	log := logger.New("gateway").Function("New")

	if !db.HasSQL() {
		log.Warn("No relational store configured, gateway running in preview mode")
		return NewUnconfigured()
	}

	var sessions SessionStore
	if db.HasCache() {
		sessions = NewValkeySessionStore(db.Cache.Session)
	} else {
		sessions = NewMemorySessionStore(MemorySessionStoreSize)
	}

	log.Info("Gateway configured", "sessionStore", sessions.Name())
	return NewConfigured(db.SQL, sessions, AuthOptions{
		Secret:   []byte(cfg.AuthJWTSecret),
		TokenTTL: time.Duration(cfg.AuthTokenTTLHours) * time.Hour,
	})
}
