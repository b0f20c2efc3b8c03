package chat

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/CUknot/messenger_backend/errors"
	"github.com/CUknot/messenger_backend/models"
	"github.com/CUknot/messenger_backend/utils"
)

// Directory looks up rooms and users. store.GormDirectory implements it.
type Directory interface {
	FindRoomBySlug(ctx context.Context, slug string) (models.Room, error)
	FindUserByCode(ctx context.Context, code string) (models.User, error)
}

// Resolver turns client supplied names into rooms, users and channels.
type Resolver struct {
	dir Directory
}

func NewResolver(dir Directory) *Resolver {
	return &Resolver{dir: dir}
}

func (r *Resolver) ResolveRoom(ctx context.Context, slug string) (models.Room, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return models.Room{}, fmt.Errorf("room %q: %w", slug, apperrors.ErrNotFound)
	}
	return r.dir.FindRoomBySlug(ctx, slug)
}

func (r *Resolver) ResolveUserByCode(ctx context.Context, code string) (models.User, error) {
	code = strings.TrimSpace(code)
	if !utils.IsValidCode(code) {
		return models.User{}, fmt.Errorf("user code %q: %w", code, apperrors.ErrNotFound)
	}
	return r.dir.FindUserByCode(ctx, code)
}
