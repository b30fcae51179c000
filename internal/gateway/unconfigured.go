package gateway

import (
	"context"
	"fmt"
	"zappygames/internal/models"
)

type unconfiguredGateway struct{}

func NewUnconfigured() Gateway {
	return unconfiguredGateway{}
}

func (unconfiguredGateway) IsConfigured() bool              { return false }
func (unconfiguredGateway) Likes() Table[models.Like]       { return noopTable[models.Like]{} }
func (unconfiguredGateway) Comments() Table[models.Comment] { return noopTable[models.Comment]{} }
func (unconfiguredGateway) Users() Table[models.User]       { return noopTable[models.User]{} }
func (unconfiguredGateway) Auth() Auth                      { return unconfiguredAuth{} }

func (unconfiguredGateway) RecentPlays() Table[models.RecentPlay] {
	return noopTable[models.RecentPlay]{}
}

func (unconfiguredGateway) PushSubscriptions() Table[models.PushSubscription] {
	return noopTable[models.PushSubscription]{}
}

// noopTable reads as empty and accepts every write without storing it.
type noopTable[T any] struct{}

func (noopTable[T]) Select(context.Context, Query) ([]T, error)             { return []T{}, nil }
func (noopTable[T]) Insert(context.Context, *T) error                       { return nil }
func (noopTable[T]) Update(context.Context, []Filter, map[string]any) error { return nil }
func (noopTable[T]) Delete(context.Context, []Filter) error                 { return nil }
func (noopTable[T]) Upsert(context.Context, *T, ...string) error            { return nil }

type unconfiguredAuth struct{}

func (unconfiguredAuth) SignUp(context.Context, string, string) (Session, error) {
	return Session{}, fmt.Errorf("%w: %s", ErrAuth, PreviewAuthMessage)
}

func (unconfiguredAuth) SignIn(context.Context, string, string) (Session, error) {
	return Session{}, fmt.Errorf("%w: %s", ErrAuth, PreviewAuthMessage)
}

func (unconfiguredAuth) SignOut(context.Context, string) error {
	return nil
}

func (unconfiguredAuth) GetSession(context.Context, string) (*Session, error) {
	return nil, nil
}
