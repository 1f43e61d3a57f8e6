package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"storekeep/internal/api"
	"storekeep/internal/logger"
	"storekeep/internal/utils"

	"go.uber.org/zap"
)

var (
	ErrNotLoaded       = errors.New("store profile not loaded")
	ErrWrongPassword   = errors.New("current password is incorrect")
	ErrInvalidLocation = errors.New("coordinates out of range")

	emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// ValidationError carries per-field messages for input rejected before
// any network call.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid store input: %d field(s)", len(e.Fields))
}

// Form is the owner-edited profile.
type Form struct {
	Name        string
	Description string
	Address     string
	Phone       string
	Email       string
	Owner       string
	Username    string
	Category    string
	IsActive    bool
}

// Backend is the slice of the REST API the editor consumes.
type Backend interface {
	GetStore(ctx context.Context, storeID string) (*api.Store, error)
	UpdateStore(ctx context.Context, storeID string, patch api.StorePatch) (*api.Store, error)
	SaveStoreLocation(ctx context.Context, storeID string, lat, lng float64) (*api.Store, error)
	VerifyPassword(ctx context.Context, username, password string) (*api.VerifyPasswordResponse, error)
}

// Editor loads a store profile and saves edits as a changed-fields-only
// patch computed against the loaded snapshot.
type Editor struct {
	backend Backend

	mu       sync.Mutex
	original *api.Store
}

func NewEditor(backend Backend) *Editor {
	return &Editor{backend: backend}
}

// Load fetches the profile and snapshots it as the diff baseline.
func (e *Editor) Load(ctx context.Context, storeID string) (*api.Store, error) {
	store, err := e.backend.GetStore(ctx, storeID)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to load store profile",
			zap.String("store_id", storeID),
			zap.Error(err),
		)
		return nil, err
	}

	e.mu.Lock()
	e.original = store
	e.mu.Unlock()

	return store, nil
}

// Validate checks the form before any network call. A nil return means
// the form is acceptable.
func Validate(f Form) *ValidationError {
	fields := make(map[string]string)

	if strings.TrimSpace(f.Name) == "" {
		fields["name"] = "Store name is required"
	}
	if strings.TrimSpace(f.Owner) == "" {
		fields["owner"] = "Owner name is required"
	}
	if email := strings.TrimSpace(f.Email); email != "" && !emailRegex.MatchString(email) {
		fields["email"] = "Enter a valid email address"
	}
	if phone := strings.TrimSpace(f.Phone); phone != "" && utils.NormalizePhone(phone) == "" {
		fields["phone"] = "Enter a valid phone number"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Save validates the form, diffs it against the loaded snapshot, and
// sends only the changed fields. An unchanged form is a no-op.
func (e *Editor) Save(ctx context.Context, storeID string, f Form) (*api.Store, error) {
	if verr := Validate(f); verr != nil {
		return nil, verr
	}

	e.mu.Lock()
	original := e.original
	e.mu.Unlock()
	if original == nil {
		return nil, ErrNotLoaded
	}

	patch := diff(original, f)
	if patch.IsEmpty() {
		logger.FromCtx(ctx).Debug("store profile unchanged, skipping save",
			zap.String("store_id", storeID),
		)
		return original, nil
	}

	updated, err := e.backend.UpdateStore(ctx, storeID, patch)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to save store profile",
			zap.String("store_id", storeID),
			zap.Error(err),
		)
		return nil, err
	}

	e.mu.Lock()
	e.original = updated
	e.mu.Unlock()

	return updated, nil
}

// SaveLocation persists the geolocation pin.
func (e *Editor) SaveLocation(ctx context.Context, storeID string, lat, lng float64) (*api.Store, error) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, ErrInvalidLocation
	}

	updated, err := e.backend.SaveStoreLocation(ctx, storeID, lat, lng)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to save store location",
			zap.String("store_id", storeID),
			zap.Error(err),
		)
		return nil, err
	}

	e.mu.Lock()
	if e.original != nil {
		e.original = updated
	}
	e.mu.Unlock()

	return updated, nil
}

// ChangePassword re-verifies the current password with the backend and
// only then sends the new one.
func (e *Editor) ChangePassword(ctx context.Context, storeID, current, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" {
		return &ValidationError{Fields: map[string]string{"password": "New password is required"}}
	}

	e.mu.Lock()
	original := e.original
	e.mu.Unlock()
	if original == nil {
		return ErrNotLoaded
	}

	res, err := e.backend.VerifyPassword(ctx, original.Username, current)
	if err != nil {
		logger.FromCtx(ctx).Error("password re-verification failed", zap.Error(err))
		return err
	}
	if !res.PasswordMatches {
		return ErrWrongPassword
	}

	if _, err := e.backend.UpdateStore(ctx, storeID, api.StorePatch{Password: &newPassword}); err != nil {
		logger.FromCtx(ctx).Error("failed to change password", zap.Error(err))
		return err
	}

	return nil
}

func diff(original *api.Store, f Form) api.StorePatch {
	var patch api.StorePatch

	if v := strings.TrimSpace(f.Name); v != original.Name {
		patch.Name = &v
	}
	if v := f.Description; v != original.Description {
		patch.Description = &v
	}
	if v := strings.TrimSpace(f.Address); v != original.Address {
		patch.Address = &v
	}
	if v := strings.TrimSpace(f.Phone); v != original.Phone {
		patch.Phone = &v
	}
	if v := strings.TrimSpace(f.Email); v != original.Email {
		patch.Email = &v
	}
	if v := strings.TrimSpace(f.Owner); v != original.Owner {
		patch.Owner = &v
	}
	if v := strings.TrimSpace(f.Username); v != original.Username {
		patch.Username = &v
	}
	if v := strings.TrimSpace(f.Category); v != original.Category {
		patch.Category = &v
	}
	if f.IsActive != original.IsActive {
		v := f.IsActive
		patch.IsActive = &v
	}

	return patch
}
