package services

import (
	"context"
	"fmt"

	"catalog/internal/models"
	"catalog/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// EventPublisher delivers product lifecycle events to interested consumers.
type EventPublisher interface {
	PublishProductEvent(ctx context.Context, event models.ProductEvent) error
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	publisher EventPublisher
	validate  *validator.Validate
	logger    zerolog.Logger
}

// NewProductService creates a new ProductService. publisher may be nil,
// in which case no events are published.
func NewProductService(repo repositories.ProductRepository, publisher EventPublisher, logger zerolog.Logger) *ProductService {
	return &ProductService{
		repo:      repo,
		publisher: publisher,
		validate:  newValidator(),
		logger:    logger.With().Str("component", "product_service").Logger(),
	}
}

// GetAllProducts retrieves the products matching filter.
func (s *ProductService) GetAllProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	return s.repo.GetAll(ctx, filter)
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id uint) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateProduct validates and persists a new product built from payload.
func (s *ProductService) CreateProduct(ctx context.Context, payload models.ProductPayload) (*models.Product, error) {
	product := payload.NewProduct()
	if err := s.validateProduct(&product); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, &product); err != nil {
		return nil, err
	}

	s.publish(ctx, models.NewProductEvent(models.ProductCreated, product))
	return &product, nil
}

// UpdateProduct merges payload into the stored product and persists the result.
func (s *ProductService) UpdateProduct(ctx context.Context, id uint, payload models.ProductPayload) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	payload.ApplyTo(product)
	if err := s.validateProduct(product); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}

	s.publish(ctx, models.NewProductEvent(models.ProductUpdated, *product))
	return product, nil
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, models.NewProductEvent(models.ProductDeleted, models.Product{ID: id}))
	return nil
}

// publish sends event if a publisher is configured. Failures are logged and
// never fail the request that produced the event.
func (s *ProductService) publish(ctx context.Context, event models.ProductEvent) {
	if s.publisher == nil {
		return
	}

	if err := s.publisher.PublishProductEvent(ctx, event); err != nil {
		s.logger.Warn().
			Err(fmt.Errorf("publish %s: %w", event.Type, err)).
			Uint("product_id", event.ProductID).
			Msg("failed to publish product event")
		return
	}

	s.logger.Debug().
		Str("event_id", event.ID).
		Str("type", string(event.Type)).
		Uint("product_id", event.ProductID).
		Msg("published product event")
}
