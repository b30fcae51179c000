package controllers

import (
	"zappygames/config"
	"zappygames/internal/catalog"
	"zappygames/internal/clientstate"
	"zappygames/internal/gateway"
	"zappygames/internal/repositories"
	"zappygames/internal/services"
	"zappygames/internal/session"

	authController "zappygames/internal/controllers/auth"
	clientStateController "zappygames/internal/controllers/clientState"
	commentsController "zappygames/internal/controllers/comments"
	gamesController "zappygames/internal/controllers/games"
	pushController "zappygames/internal/controllers/push"
	userController "zappygames/internal/controllers/users"
	workerController "zappygames/internal/controllers/worker"
)

type Controllers struct {
	Games       gamesController.GamesControllerInterface
	Comments    commentsController.CommentsControllerInterface
	Auth        authController.AuthControllerInterface
	User        userController.UserControllerInterface
	Push        pushController.PushControllerInterface
	Worker      workerController.WorkerControllerInterface
	ClientState clientStateController.ClientStateControllerInterface
}

func New(
	services services.Service,
	repos repositories.Repository,
	gw gateway.Gateway,
	sessions *session.Service,
	games *catalog.Catalog,
	store *clientstate.Store,
	config config.Config,
) Controllers {
	return Controllers{
		Games:       gamesController.New(games, repos, gw),
		Comments:    commentsController.New(games, repos, gw),
		Auth:        authController.New(sessions),
		User:        userController.New(repos),
		Push:        pushController.New(repos, services, gw),
		Worker:      workerController.New(services, config.OfflineCacheVersion),
		ClientState: clientStateController.New(store, games),
	}
}
