package product

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"storekeep/internal/api"
	"storekeep/internal/imagehost"
	"storekeep/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxDescriptionLen = 2000

// ValidationError carries per-field messages for input rejected before
// any network call.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid product input: %d field(s)", len(e.Fields))
}

// Input is the owner-entered product form.
type Input struct {
	Name        string
	Price       string
	Description string
	Category    string
	ImageRef    string // current or local image reference
	ImageData   []byte // raw bytes when a new image was picked
}

// SaveResult is the outcome of a create or update. ImageFallback is
// true when the hosted upload failed and the local reference was kept.
type SaveResult struct {
	Product       *api.Product
	ImageFallback bool
}

// Backend is the slice of the REST API the catalog consumes.
type Backend interface {
	ProductsByStore(ctx context.Context, storeID string) ([]api.Product, error)
	AddProduct(ctx context.Context, storeID string, input api.ProductInput) (*api.Product, error)
	UpdateProduct(ctx context.Context, productID string, input api.ProductInput) (*api.Product, error)
	DeleteProduct(ctx context.Context, productID string) error
}

type Service struct {
	backend  Backend
	uploader imagehost.Uploader
}

func NewService(backend Backend, uploader imagehost.Uploader) *Service {
	return &Service{backend: backend, uploader: uploader}
}

// Validate checks the form before any network call. A nil return means
// the input is acceptable.
func Validate(in Input) *ValidationError {
	fields := make(map[string]string)

	if strings.TrimSpace(in.Name) == "" {
		fields["name"] = "Product name is required"
	}

	price := strings.TrimSpace(in.Price)
	if price == "" {
		fields["price"] = "Price is required"
	} else if f, err := strconv.ParseFloat(price, 64); err != nil {
		fields["price"] = "Price must be a number"
	} else if f <= 0 {
		fields["price"] = "Price must be greater than zero"
	}

	if len(in.Description) > maxDescriptionLen {
		fields["description"] = "Description is too long"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func (s *Service) List(ctx context.Context, storeID string) ([]api.Product, error) {
	return s.backend.ProductsByStore(ctx, storeID)
}

// Create validates, resolves the image (hosted upload with local
// fallback), and posts the new product.
func (s *Service) Create(ctx context.Context, storeID string, in Input) (*SaveResult, error) {
	if verr := Validate(in); verr != nil {
		return nil, verr
	}

	image, fallback := s.resolveImage(ctx, in)

	created, err := s.backend.AddProduct(ctx, storeID, api.ProductInput{
		Name:        strings.TrimSpace(in.Name),
		Price:       strings.TrimSpace(in.Price),
		Image:       image,
		Description: in.Description,
		Category:    in.Category,
		Store:       storeID,
	})
	if err != nil {
		logger.FromCtx(ctx).Error("failed to add product",
			zap.String("store_id", storeID),
			zap.Error(err),
		)
		return nil, err
	}

	return &SaveResult{Product: created, ImageFallback: fallback}, nil
}

// Update validates and puts the edited product.
func (s *Service) Update(ctx context.Context, storeID, productID string, in Input) (*SaveResult, error) {
	if verr := Validate(in); verr != nil {
		return nil, verr
	}

	image, fallback := s.resolveImage(ctx, in)

	updated, err := s.backend.UpdateProduct(ctx, productID, api.ProductInput{
		Name:        strings.TrimSpace(in.Name),
		Price:       strings.TrimSpace(in.Price),
		Image:       image,
		Description: in.Description,
		Category:    in.Category,
		Store:       storeID,
	})
	if err != nil {
		logger.FromCtx(ctx).Error("failed to update product",
			zap.String("product_id", productID),
			zap.Error(err),
		)
		return nil, err
	}

	return &SaveResult{Product: updated, ImageFallback: fallback}, nil
}

func (s *Service) Delete(ctx context.Context, productID string) error {
	if err := s.backend.DeleteProduct(ctx, productID); err != nil {
		logger.FromCtx(ctx).Error("failed to delete product",
			zap.String("product_id", productID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// resolveImage uploads freshly picked image bytes to the host, falling
// back to the local reference when the upload fails. Without new bytes
// the existing reference is kept as-is.
func (s *Service) resolveImage(ctx context.Context, in Input) (string, bool) {
	if len(in.ImageData) == 0 {
		return in.ImageRef, false
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = "product"
	}
	name = fmt.Sprintf("%s-%s", name, uuid.NewString())

	res := imagehost.UploadOrFallback(ctx, s.uploader, name, in.ImageRef, in.ImageData)
	return res.URL, res.Fallback
}
