package register

import (
	"context"
	"fmt"
	"strings"

	"storekeep/internal/api"
	"storekeep/internal/imagehost"
	"storekeep/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const minPasswordLen = 6

// ValidationError carries per-field messages for input rejected before
// any network call.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid registration input: %d field(s)", len(e.Fields))
}

// Input is the prospective owner's registration form.
type Input struct {
	Name        string
	Description string
	Owner       string
	Category    string
	Username    string
	Password    string
	ImageRef    string // local image reference
	ImageData   []byte // raw bytes when an image was picked
}

// Result is the outcome of a successful registration. ImageFallback is
// true when the hosted upload failed and the local reference was kept.
type Result struct {
	Store         *api.Store
	ImageFallback bool
}

// Backend is the slice of the REST API registration consumes.
type Backend interface {
	RegisterStore(ctx context.Context, input api.RegisterStoreInput) (*api.Store, error)
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

	required := map[string]string{
		"name":        in.Name,
		"description": in.Description,
		"owner":       in.Owner,
		"category":    in.Category,
		"username":    in.Username,
		"password":    in.Password,
	}
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			fields[field] = "Please enter " + field
		}
	}

	if _, ok := fields["password"]; !ok && len(in.Password) < minPasswordLen {
		fields["password"] = fmt.Sprintf("Password must be at least %d characters long", minPasswordLen)
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Register validates, resolves the image (hosted upload with local
// fallback), and posts the new store account.
func (s *Service) Register(ctx context.Context, in Input) (*Result, error) {
	if verr := Validate(in); verr != nil {
		return nil, verr
	}

	image, fallback := s.resolveImage(ctx, in)

	store, err := s.backend.RegisterStore(ctx, api.RegisterStoreInput{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Owner:       strings.TrimSpace(in.Owner),
		Category:    strings.TrimSpace(in.Category),
		Image:       image,
		Username:    strings.TrimSpace(in.Username),
		Password:    in.Password,
	})
	if err != nil {
		logger.FromCtx(ctx).Error("failed to register store",
			zap.String("username", in.Username),
			zap.Error(err),
		)
		return nil, err
	}

	return &Result{Store: store, ImageFallback: fallback}, nil
}

// resolveImage uploads freshly picked image bytes to the host, falling
// back to the local reference when the upload fails. Without new bytes
// the existing reference is kept as-is.
func (s *Service) resolveImage(ctx context.Context, in Input) (string, bool) {
	if len(in.ImageData) == 0 {
		return in.ImageRef, false
	}

	name := fmt.Sprintf("store-%s", uuid.NewString())
	res := imagehost.UploadOrFallback(ctx, s.uploader, name, in.ImageRef, in.ImageData)
	return res.URL, res.Fallback
}
