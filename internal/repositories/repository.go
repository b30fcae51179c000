package repositories

import (
	"zappygames/internal/database"
	"zappygames/internal/gateway"
)

type Repository struct {
	User             UserRepository
	Like             LikeRepository
	RecentPlay       RecentPlayRepository
	Comment          CommentRepository
	PushSubscription PushSubscriptionRepository
}

func New(db database.DB, gw gateway.Gateway) Repository {
	return Repository{
		User:             NewUserRepository(db, gw),
		Like:             NewLikeRepository(db, gw),
		RecentPlay:       NewRecentPlayRepository(gw),
		Comment:          NewCommentRepository(gw),
		PushSubscription: NewPushSubscriptionRepository(gw),
	}
}
