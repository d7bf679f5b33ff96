package users

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/user/microblog-go/apperror"
	"github.com/user/microblog-go/auth"
	"github.com/user/microblog-go/pagination"
)

// Service implements the user directory on top of a Repository. Create and
// Update validate attributes before any persistence; callers are expected to
// have consulted the authorization policy already.
type Service struct {
	repo     Repository
	validate *validator.Validate
}

// NewService creates a new user directory Service.
func NewService(repo Repository) *Service {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report field errors under the json names the client sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Service{repo: repo, validate: v}
}

// List returns one page of the directory ordered by id ascending, with the
// total count.
func (s *Service) List(ctx context.Context, page, perPage int) (*ListResponse, error) {
	page, perPage = pagination.Normalize(page, perPage)

	records, err := s.repo.List(ctx, perPage, pagination.Offset(page, perPage))
	if err != nil {
		return nil, err
	}
	count, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]UserResponse, 0, len(records))
	for i := range records {
		views = append(views, NewUserResponse(&records[i]))
	}
	return &ListResponse{
		Users:      views,
		Pagination: pagination.New(page, perPage, count),
	}, nil
}

// Get returns the user or a NotFound error.
func (s *Service) Get(ctx context.Context, id int) (*auth.User, error) {
	return s.repo.FindByID(ctx, id)
}

// Create registers a new user. Validation failures leave the store untouched
// and carry per-field errors so the form can be redisplayed with the
// attempted input.
func (s *Service) Create(ctx context.Context, req NewUserRequest) (*auth.User, error) {
	if err := s.validateStruct(req); err != nil {
		return nil, err
	}

	digest, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperror.NewInternalError("failed to hash password", err)
	}

	user := &auth.User{
		Name:           req.Name,
		Email:          strings.ToLower(req.Email),
		PasswordDigest: digest,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, asFieldError(err)
	}
	return user, nil
}

// Update mutates name, email and (when provided) the password of an existing
// user. Invalid attributes leave the stored record unchanged.
func (s *Service) Update(ctx context.Context, id int, req UpdateUserRequest) (*auth.User, error) {
	if err := s.validateStruct(req); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Name = req.Name
	user.Email = strings.ToLower(req.Email)
	if req.Password != "" {
		digest, err := auth.HashPassword(req.Password)
		if err != nil {
			return nil, apperror.NewInternalError("failed to hash password", err)
		}
		user.PasswordDigest = digest
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, asFieldError(err)
	}
	return user, nil
}

// Destroy removes a user and, in the same transaction, their posts and every
// follow edge referencing them.
func (s *Service) Destroy(ctx context.Context, id int) error {
	return s.repo.Destroy(ctx, id)
}

// validateStruct runs the validator and translates failures into a
// ValidationError with one message per field.
func (s *Service) validateStruct(v interface{}) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperror.NewInternalError("validation failed", err)
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return apperror.NewFieldValidationError("validation failed", fields)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "can't be blank"
	case "email":
		return "is invalid"
	case "max":
		return fmt.Sprintf("is too long (maximum is %s characters)", fe.Param())
	case "min":
		return fmt.Sprintf("is too short (minimum is %s characters)", fe.Param())
	case "eqfield":
		return "doesn't match password"
	default:
		return "is invalid"
	}
}

// asFieldError converts a duplicate-email conflict into a field-level
// validation error so the form redisplay path is uniform.
func asFieldError(err error) error {
	if apperror.IsConflict(err) {
		return apperror.NewFieldValidationError("validation failed", map[string]string{
			"email": "has already been taken",
		})
	}
	return err
}
