// Package catalog manages the services a salon offers for booking.
package catalog

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors returned by the usecase and repository.
var (
	ErrNotFound   = errors.New("service not found")
	ErrInvalidID  = errors.New("invalid service id")
	ErrValidation = errors.New("invalid service")
)

// Service is a bookable offering with a display name and a price.
type Service struct {
	ID    string  `json:"_id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Repository persists services.
type Repository interface {
	Insert(ctx context.Context, svc *Service) error
	List(ctx context.Context) ([]Service, error)
	Get(ctx context.Context, id string) (*Service, error)
	Update(ctx context.Context, svc *Service) error
	Delete(ctx context.Context, id string) error
}

// Usecase applies the catalog rules in front of a Repository.
type Usecase struct {
	repo Repository
}

// NewUsecase wires a Usecase to its repository.
func NewUsecase(repo Repository) *Usecase {
	return &Usecase{repo: repo}
}

func validate(name string, price float64) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if price <= 0 {
		return fmt.Errorf("%w: price must be greater than zero", ErrValidation)
	}
	return nil
}

// Create validates and stores a new service, returning it with its
// assigned ID.
func (u *Usecase) Create(ctx context.Context, name string, price float64) (*Service, error) {
	if err := validate(name, price); err != nil {
		return nil, err
	}

	svc := &Service{Name: name, Price: price}
	if err := u.repo.Insert(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

// List returns every service in the catalog.
func (u *Usecase) List(ctx context.Context) ([]Service, error) {
	return u.repo.List(ctx)
}

// Get returns one service by ID.
func (u *Usecase) Get(ctx context.Context, id string) (*Service, error) {
	return u.repo.Get(ctx, id)
}

// Update replaces the name and price of an existing service.
func (u *Usecase) Update(ctx context.Context, id, name string, price float64) (*Service, error) {
	if err := validate(name, price); err != nil {
		return nil, err
	}

	svc := &Service{ID: id, Name: name, Price: price}
	if err := u.repo.Update(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

// Delete removes a service by ID.
func (u *Usecase) Delete(ctx context.Context, id string) error {
	return u.repo.Delete(ctx, id)
}
