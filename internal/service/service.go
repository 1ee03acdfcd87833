// Package service реализует бизнес-логику сервиса заказов.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmeshcher/filmshop-orders/internal/model"
	"github.com/mmeshcher/filmshop-orders/internal/paypal"
	"github.com/mmeshcher/filmshop-orders/internal/repository"
)

const defaultCurrency = "USD"

var (
	// ErrInvalidCredentials возвращается при неверном логине или пароле.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNoPayPalClientID возвращается, если идентификатор клиента PayPal не настроен.
	ErrNoPayPalClientID = errors.New("paypal client id is not configured")
)

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	Close() error
	CreateUser(ctx context.Context, login string, passwordHash []byte) (int64, error)
	GetUserByLogin(ctx context.Context, login string) (*model.User, error)
	CreateOrder(ctx context.Context, o *model.Order) (*model.Order, error)
	GetOrderByID(ctx context.Context, id string) (*model.Order, error)
	GetOrdersByUser(ctx context.Context, userID int64) ([]model.Order, error)
	MarkOrderPaid(ctx context.Context, id string, paidAt time.Time, result model.PaymentResult) (*model.Order, error)
}

// PaymentProvider описывает обращения к платёжной системе.
type PaymentProvider interface {
	ClientID() string
	AccessToken(ctx context.Context) (string, error)
	GetOrder(ctx context.Context, accessToken, orderID string) (*paypal.Order, error)
}

// EventPublisher публикует события жизненного цикла заказа.
type EventPublisher interface {
	OrderCreated(ctx context.Context, o *model.Order) error
	OrderPaid(ctx context.Context, o *model.Order) error
}

type nopPublisher struct{}

func (nopPublisher) OrderCreated(context.Context, *model.Order) error { return nil }
func (nopPublisher) OrderPaid(context.Context, *model.Order) error    { return nil }

// Service содержит бизнес-логику сервиса заказов.
type Service struct {
	repo      Repository
	provider  PaymentProvider
	publisher EventPublisher
	logger    *zap.Logger
	currency  string
	now       func() time.Time
}

// Option настраивает Service.
type Option func(*Service)

// WithPublisher задаёт публикатор событий заказов.
func WithPublisher(p EventPublisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithCurrency задаёт ожидаемую валюту платежей.
func WithCurrency(currency string) Option {
	return func(s *Service) {
		if currency != "" {
			s.currency = currency
		}
	}
}

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService создаёт новый сервис с указанным репозиторием и клиентом платёжной системы.
func NewService(repo Repository, provider PaymentProvider, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Service{
		repo:      repo,
		provider:  provider,
		publisher: nopPublisher{},
		logger:    logger,
		currency:  defaultCurrency,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

// RegisterUser регистрирует нового пользователя.
func (s *Service) RegisterUser(ctx context.Context, login, password string) (int64, error) {
	hashed, err := hashPassword(password)
	if err != nil {
		return 0, err
	}

	id, err := s.repo.CreateUser(ctx, login, hashed)
	if err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return 0, repository.ErrUserExists
		}
		return 0, err
	}
	return id, nil
}

// AuthenticateUser проверяет логин и пароль пользователя и возвращает его идентификатор.
func (s *Service) AuthenticateUser(ctx context.Context, login, password string) (int64, error) {
	u, err := s.repo.GetUserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return 0, ErrInvalidCredentials
		}
		return 0, err
	}

	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return 0, ErrInvalidCredentials
	}

	return u.ID, nil
}

func hashPassword(password string) ([]byte, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return hashed, nil
}

// PayPalClientID возвращает публичный идентификатор клиента PayPal для SDK на фронтенде.
func (s *Service) PayPalClientID() (string, error) {
	if s.provider == nil || s.provider.ClientID() == "" {
		return "", ErrNoPayPalClientID
	}
	return s.provider.ClientID(), nil
}
