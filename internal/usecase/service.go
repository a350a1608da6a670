package usecase

import (
	"pizzeria-backend/internal/data/repository"
	"pizzeria-backend/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth   AuthService
	OAuth2 OAuth2Service
	User   UserService
	Pizza  PizzaService
	Basket BasketService
	Order  OrderService
	Review ReviewService
}

func NewService(repo *repository.Repository, deps Dependencies, config *utils.Config, log *zap.Logger) *Service {
	sessions := newSessionIssuer(deps.Tokens, config.JWT)
	mail := newMailDispatcher(deps.Mailer, config.Email.Timeout, log)

	return &Service{
		Auth:   NewAuthService(repo, deps.Hasher, sessions, mail, log),
		OAuth2: NewOAuth2Service(repo, deps.OAuth, deps.Hasher, sessions, log),
		User:   NewUserService(repo.User, log),
		Pizza:  NewPizzaService(repo.Pizza, log),
		Basket: NewBasketService(repo, log),
		Order:  NewOrderService(repo, log),
		Review: NewReviewService(repo, log),
	}
}
