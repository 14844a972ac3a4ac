package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"creme-store/apperrors"
	"creme-store/cache"
	"creme-store/models"
	"creme-store/repository"
	"creme-store/validators"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"golang.org/x/sync/singleflight"
)

type CreateProductInput struct {
	Name          string   `json:"name" validate:"required,max=200"`
	Description   string   `json:"description" validate:"max=5000"`
	OfferPrice    float64  `json:"offerPrice" validate:"gte=0"`
	OriginalPrice *float64 `json:"originalPrice" validate:"omitempty,gte=0"`
	Category      string   `json:"category" validate:"required"`
	SubCategory   string   `json:"subCategory"`
	Brand         string   `json:"brand"`
	ImageURL      string   `json:"imageUrl" validate:"omitempty,url"`
	Stock         int      `json:"stock" validate:"gte=0"`
	IsFeatured    bool     `json:"isFeatured"`
	IsWeeklyDeal  bool     `json:"isWeeklyDeal"`
}

const sharedLoadTimeout = 5 * time.Second

type CatalogService struct {
	repo  repository.ProductRepository
	cache cache.ProductCache
	sfg   singleflight.Group
}

func NewCatalogService(repo repository.ProductRepository, cache cache.ProductCache) *CatalogService {
	return &CatalogService{
		repo:  repo,
		cache: cache,
	}
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.NewValidationError(map[string]string{"id": "is required"})
	}

	v, err := s.shared(ctx, "product:"+id, func(ctx context.Context) (interface{}, error) {
		product, err := s.cache.GetProduct(ctx, id)
		if err == nil {
			return product, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("cache get error: %v", err)
		}

		product, err = s.repo.GetProduct(ctx, id)
		if err != nil {
			return nil, err
		}

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := s.cache.SetProduct(ctx, product); err != nil {
				log.Printf("cache set error: %v", err)
			}
		}()
		return product, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Product), nil
}

func (s *CatalogService) ListProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, error) {
	key := fmt.Sprintf("products:%s|%s|%t|%t", filter.CategorySlug, filter.SubCategory, filter.Featured, filter.WeeklyDeal)

	v, err := s.shared(ctx, key, func(ctx context.Context) (interface{}, error) {
		products, err := s.cache.GetProducts(ctx, filter)
		if err == nil {
			return products, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("cache get error: %v", err)
		}

		products, err = s.repo.ListProducts(ctx, filter)
		if err != nil {
			return nil, err
		}

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := s.cache.SetProducts(ctx, filter, products); err != nil {
				log.Printf("cache set error: %v", err)
			}
		}()
		return products, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]*models.Product), nil
}

// shared runs load once for all concurrent callers of key. load does not see the
// cancellation of whichever caller started it; every caller still stops waiting when
// its own ctx ends.
func (s *CatalogService) shared(ctx context.Context, key string, load func(context.Context) (interface{}, error)) (interface{}, error) {
	detached := context.WithoutCancel(ctx)
	ch := s.sfg.DoChan(key, func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(detached, sharedLoadTimeout)
		defer cancel()
		return load(ctx)
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *CatalogService) CreateProduct(ctx context.Context, in CreateProductInput) (*models.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	if violations := validators.Struct(in); violations != nil {
		return nil, apperrors.NewValidationError(violations)
	}

	availability := "in_stock"
	if in.Stock == 0 {
		availability = "out_of_stock"
	}

	product := &models.Product{
		ID:            uuid.NewString(),
		Name:          in.Name,
		Description:   in.Description,
		OfferPrice:    in.OfferPrice,
		OriginalPrice: in.OriginalPrice,
		Category:      in.Category,
		CategorySlug:  slug.Make(in.Category),
		SubCategory:   in.SubCategory,
		Brand:         in.Brand,
		ImageURL:      in.ImageURL,
		Stock:         in.Stock,
		IsFeatured:    in.IsFeatured,
		IsWeeklyDeal:  in.IsWeeklyDeal,
		Availability:  availability,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, err
	}

	if err := s.cache.InvalidateLists(ctx); err != nil {
		log.Printf("cache invalidate error: %v", err)
	}
	return product, nil
}
