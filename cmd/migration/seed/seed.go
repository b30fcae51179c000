package seed

import (
	"context"
	"errors"
	"time"
	"zappygames/config"
	"zappygames/internal/catalog"
	"zappygames/internal/database"
	"zappygames/internal/gateway"
	. "zappygames/internal/models"
	"zappygames/internal/repositories"
	"zappygames/internal/session"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
)

const SEED_PASSWORD = "password"

type seedUser struct {
	email       string
	displayName string
	category    string
	comment     string
}

var seedUsers = []seedUser{
	{email: "admin@example.com", displayName: "Administrator", category: "racing", comment: "Best racing game on the site"},
	{email: "test@example.com", displayName: "Test User", category: "puzzle", comment: "Took me an hour to clear level ten"},
	{email: "ada.lovelace@example.com", displayName: "Ada Lovelace", category: "strategy", comment: "Surprisingly deep"},
}

// Seed creates demo accounts, each with likes, recent plays and a comment
// on games from one category.
func Seed(db database.DB, config config.Config, games *catalog.Catalog, log logger.Logger) error {
	log = log.Function("seed")
	log.Info("Seeding development data")

	ctx := context.Background()
	gw := gateway.New(db, config)
	sessions := session.NewService(gw)
	repos := repositories.New(db, gw)

	for _, user := range seedUsers {
		userID, err := signIn(ctx, sessions, user)
		if err != nil {
			return log.Err("failed to create seed user", err, "email", user.email)
		}

		picks := games.FilterByCategory(user.category)
		if len(picks) > 3 {
			picks = picks[:3]
		}

		for i, game := range picks {
			if err := repos.Like.Like(ctx, userID, game.Slug); err != nil {
				return log.Err("failed to seed like", err, "slug", game.Slug)
			}
			playedAt := time.Now().Add(-time.Duration(i) * time.Hour)
			if err := repos.RecentPlay.Track(ctx, userID, game.Slug, playedAt); err != nil {
				return log.Err("failed to seed recent play", err, "slug", game.Slug)
			}
		}

		if len(picks) == 0 {
			continue
		}

		comment := Comment{
			GameSlug: picks[0].Slug,
			UserID:   userID,
			Username: user.displayName,
			Content:  user.comment,
		}
		if err := repos.Comment.Create(ctx, &comment); err != nil {
			return log.Err("failed to seed comment", err, "slug", comment.GameSlug)
		}

		log.Info("Seeded user", "email", user.email, "games", len(picks))
	}

	return nil
}

// signIn signs the seed user up, or in when the account already exists.
func signIn(ctx context.Context, sessions *session.Service, user seedUser) (uuid.UUID, error) {
	state := sessions.Open(ctx, "")
	defer state.Close()

	err := state.SignUp(ctx, user.email, SEED_PASSWORD, user.displayName)
	if errors.Is(err, gateway.ErrAuth) {
		err = state.SignIn(ctx, user.email, SEED_PASSWORD)
	}
	if err != nil {
		return uuid.Nil, err
	}

	return state.Current().UserID(), nil
}
