package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"zappygames/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type tableSpec struct {
	kind    Kind
	columns map[string]bool
	mutable []string
}

func columns(names ...string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	return set
}

var (
	likesSpec = tableSpec{
		kind:    KindLikes,
		columns: columns("id", "user_id", "game_slug", "created_at"),
	}
	recentPlaysSpec = tableSpec{
		kind:    KindRecentPlays,
		columns: columns("id", "user_id", "game_slug", "played_at", "created_at"),
		mutable: []string{"played_at"},
	}
	commentsSpec = tableSpec{
		kind: KindComments,
		columns: columns(
			"id", "game_slug", "user_id", "username", "content", "parent_id", "created_at",
		),
		mutable: []string{"content"},
	}
	usersSpec = tableSpec{
		kind: KindUsers,
		columns: columns(
			"id", "email", "username", "avatar_url", "notifications_enabled", "created_at",
		),
		mutable: []string{"email", "username", "avatar_url", "notifications_enabled"},
	}
	pushSubscriptionsSpec = tableSpec{
		kind:    "push_subscriptions",
		columns: columns("id", "user_id", "endpoint", "keys", "created_at"),
		mutable: []string{"user_id", "keys"},
	}
)

type configuredGateway struct {
	likes             *gormTable[models.Like]
	recentPlays       *gormTable[models.RecentPlay]
	comments          *gormTable[models.Comment]
	users             *gormTable[models.User]
	pushSubscriptions *gormTable[models.PushSubscription]
	auth              Auth
}

func NewConfigured(db *gorm.DB, sessions SessionStore, options AuthOptions) Gateway {
	return &configuredGateway{
		likes:             newGormTable[models.Like](db, likesSpec),
		recentPlays:       newGormTable[models.RecentPlay](db, recentPlaysSpec),
		comments:          newGormTable[models.Comment](db, commentsSpec),
		users:             newGormTable[models.User](db, usersSpec),
		pushSubscriptions: newGormTable[models.PushSubscription](db, pushSubscriptionsSpec),
		auth:              newConfiguredAuth(db, sessions, options),
	}
}

func (g *configuredGateway) IsConfigured() bool                    { return true }
func (g *configuredGateway) Likes() Table[models.Like]             { return g.likes }
func (g *configuredGateway) RecentPlays() Table[models.RecentPlay] { return g.recentPlays }
func (g *configuredGateway) Comments() Table[models.Comment]       { return g.comments }
func (g *configuredGateway) Users() Table[models.User]             { return g.users }
func (g *configuredGateway) Auth() Auth                            { return g.auth }

func (g *configuredGateway) PushSubscriptions() Table[models.PushSubscription] {
	return g.pushSubscriptions
}

type gormTable[T any] struct {
	db     *gorm.DB
	schema tableSpec
	log    logger.Logger
}

func newGormTable[T any](db *gorm.DB, schema tableSpec) *gormTable[T] {
	return &gormTable[T]{
		db:     db,
		schema: schema,
		log:    logger.New("gateway").With("kind", string(schema.kind)),
	}
}

func (t *gormTable[T]) Select(ctx context.Context, query Query) ([]T, error) {
	log := t.log.TraceFromContext(ctx).Function("Select")

	if query.Limit < 0 {
		return nil, fmt.Errorf("%w: negative limit", ErrRemoteRejected)
	}

	tx, err := t.scoped(ctx, query.Filters)
	if err != nil {
		return nil, err
	}

	if query.Order != nil {
		if !t.schema.columns[query.Order.Column] {
			return nil, t.unknownColumn(query.Order.Column)
		}
		tx = tx.Order(clause.OrderByColumn{
			Column: clause.Column{Name: query.Order.Column},
			Desc:   query.Order.Descending,
		})
	}

	if query.Limit > 0 {
		tx = tx.Limit(query.Limit)
	}

	rows := make([]T, 0)
	if err := tx.Find(&rows).Error; err != nil {
		return nil, t.fail(log, "select failed", err)
	}

	return rows, nil
}

func (t *gormTable[T]) Insert(ctx context.Context, record *T) error {
	log := t.log.TraceFromContext(ctx).Function("Insert")

	if err := t.db.WithContext(ctx).Create(record).Error; err != nil {
		return t.fail(log, "insert failed", err)
	}
	return nil
}

func (t *gormTable[T]) Update(ctx context.Context, filters []Filter, patch map[string]any) error {
	log := t.log.TraceFromContext(ctx).Function("Update")

	if len(filters) == 0 {
		return fmt.Errorf("%w: update requires at least one filter", ErrRemoteRejected)
	}
	for column := range patch {
		if !t.schema.columns[column] {
			return t.unknownColumn(column)
		}
	}

	tx, err := t.scoped(ctx, filters)
	if err != nil {
		return err
	}

	if err := tx.Updates(patch).Error; err != nil {
		return t.fail(log, "update failed", err)
	}
	return nil
}

func (t *gormTable[T]) Delete(ctx context.Context, filters []Filter) error {
	log := t.log.TraceFromContext(ctx).Function("Delete")

	if len(filters) == 0 {
		return fmt.Errorf("%w: delete requires at least one filter", ErrRemoteRejected)
	}

	tx, err := t.scoped(ctx, filters)
	if err != nil {
		return err
	}

	if err := tx.Delete(new(T)).Error; err != nil {
		return t.fail(log, "delete failed", err)
	}
	return nil
}

// Upsert inserts record, or on a conflict over conflictKey updates the
// kind's mutable columns. Kinds without mutable columns keep the existing row.
func (t *gormTable[T]) Upsert(ctx context.Context, record *T, conflictKey ...string) error {
	log := t.log.TraceFromContext(ctx).Function("Upsert")

	if len(conflictKey) == 0 {
		conflictKey = []string{"id"}
	}

	onConflict := clause.OnConflict{}
	for _, column := range conflictKey {
		if !t.schema.columns[column] {
			return t.unknownColumn(column)
		}
		onConflict.Columns = append(onConflict.Columns, clause.Column{Name: column})
	}

	if len(t.schema.mutable) == 0 {
		onConflict.DoNothing = true
	} else {
		onConflict.DoUpdates = clause.AssignmentColumns(t.schema.mutable)
	}

	if err := t.db.WithContext(ctx).Clauses(onConflict).Create(record).Error; err != nil {
		return t.fail(log, "upsert failed", err)
	}
	return nil
}

func (t *gormTable[T]) scoped(ctx context.Context, filters []Filter) (*gorm.DB, error) {
	tx := t.db.WithContext(ctx).Model(new(T))

	for _, filter := range filters {
		if !t.schema.columns[filter.Column] {
			return nil, t.unknownColumn(filter.Column)
		}
		tx = tx.Where(clause.Eq{Column: clause.Column{Name: filter.Column}, Value: filter.Value})
	}

	return tx, nil
}

func (t *gormTable[T]) unknownColumn(column string) error {
	return fmt.Errorf("%w: unknown column %q on %s", ErrRemoteRejected, column, t.schema.kind)
}

func (t *gormTable[T]) fail(log logger.Logger, msg string, err error) error {
	translated := translateError(err)
	log.Er(msg, err, "kind", t.schema.kind)
	return translated
}

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) ||
		errors.Is(err, gorm.ErrForeignKeyViolated) ||
		isConstraintMessage(err.Error()) {
		return fmt.Errorf("%w: %v", ErrRemoteRejected, err)
	}

	return fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
}

func isConstraintMessage(message string) bool {
	message = strings.ToLower(message)
	return strings.Contains(message, "unique constraint") ||
		strings.Contains(message, "duplicate key") ||
		strings.Contains(message, "constraint failed") ||
		strings.Contains(message, "violates")
}
