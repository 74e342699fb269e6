package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"messpos/internal/dto"
	"messpos/internal/model"
	"messpos/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	menuCacheKey = "menu:all"
	menuCacheTTL = 10 * time.Minute
)

type MenuService interface {
	List(ctx context.Context, q dto.MenuQuery) ([]dto.MenuItemResponse, error)
	Get(ctx context.Context, id int) (*dto.MenuItemResponse, error)
	Import(ctx context.Context, req dto.ImportMenuRequest) (*dto.ImportMenuResponse, error)
	SetActive(ctx context.Context, id int, active bool) error
}

type menuService struct {
	repo repository.MenuRepository
	rdb  *redis.Client
}

// NewMenuService caches the full menu in Redis when rdb is non-nil.
func NewMenuService(repo repository.MenuRepository, rdb *redis.Client) MenuService {
	return &menuService{repo: repo, rdb: rdb}
}

func (s *menuService) List(ctx context.Context, q dto.MenuQuery) ([]dto.MenuItemResponse, error) {
	items, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	var session *model.Session
	if q.Session != "" {
		sess := model.Session(q.Session)
		session = &sess
	}
	filtered := FilterMenu(items, session, q.Q, q.Category)
	resp := make([]dto.MenuItemResponse, len(filtered))
	for i := range filtered {
		resp[i] = toMenuItemResponse(&filtered[i])
	}
	return resp, nil
}

func (s *menuService) Get(ctx context.Context, id int) (*dto.MenuItemResponse, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrMenuItemNotFound
	}
	resp := toMenuItemResponse(item)
	return &resp, nil
}

func (s *menuService) Import(ctx context.Context, req dto.ImportMenuRequest) (*dto.ImportMenuResponse, error) {
	items := make([]model.MenuItem, len(req.Items))
	for i, r := range req.Items {
		items[i] = menuItemFromRequest(r)
	}
	if err := s.repo.Upsert(ctx, items); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	log.Info().Int("count", len(items)).Msg("menu imported")
	return &dto.ImportMenuResponse{Imported: len(items)}, nil
}

func (s *menuService) SetActive(ctx context.Context, id int, active bool) error {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return ErrMenuItemNotFound
	}
	s.invalidate(ctx)
	return nil
}

// all returns every menu item, active or not, through the Redis cache.
func (s *menuService) all(ctx context.Context) ([]model.MenuItem, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, menuCacheKey).Bytes(); err == nil {
			var items []model.MenuItem
			if jsonErr := json.Unmarshal(cached, &items); jsonErr == nil {
				return items, nil
			}
		}
	}

	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	// Populate cache, best effort, ignore errors
	if s.rdb != nil {
		if b, jsonErr := json.Marshal(items); jsonErr == nil {
			_ = s.rdb.Set(context.WithoutCancel(ctx), menuCacheKey, b, menuCacheTTL).Err()
		}
	}
	return items, nil
}

func (s *menuService) invalidate(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, menuCacheKey).Err(); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate menu cache")
	}
}

// FilterMenu keeps the active items matching the query. With a session the
// item must be served in it and the query matches the start of the name,
// category or description; without one it matches anywhere in them.
// Matching is case-insensitive; input order is preserved.
func FilterMenu(items []model.MenuItem, session *model.Session, query, category string) []model.MenuItem {
	query = strings.ToLower(strings.TrimSpace(query))
	category = strings.TrimSpace(category)

	out := make([]model.MenuItem, 0, len(items))
	for _, it := range items {
		if !it.Active {
			continue
		}
		if session != nil && !it.AvailableIn(*session) {
			continue
		}
		if category != "" && !strings.EqualFold(it.Category, category) {
			continue
		}
		if query != "" && !matchesQuery(&it, query, session != nil) {
			continue
		}
		out = append(out, it)
	}
	return out
}

func matchesQuery(it *model.MenuItem, query string, prefix bool) bool {
	for _, field := range []string{it.Name, it.Category, it.Description} {
		f := strings.ToLower(field)
		if prefix && strings.HasPrefix(f, query) {
			return true
		}
		if !prefix && strings.Contains(f, query) {
			return true
		}
	}
	return false
}

func menuItemFromRequest(r dto.MenuItemRequest) model.MenuItem {
	sessions := make([]model.Session, len(r.Sessions))
	for i, s := range r.Sessions {
		sessions[i] = model.Session(s)
	}
	var customs []model.CustomizationOption
	for _, o := range r.CustomizationOptions {
		opt := model.CustomizationOption{Name: o.Name, Type: o.Type, Price: o.Price}
		for _, ch := range o.Options {
			opt.Options = append(opt.Options, model.RadioChoice{Label: ch.Label, Price: ch.Price})
		}
		customs = append(customs, opt)
	}
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return model.MenuItem{
		ID:             r.ID,
		Name:           r.Name,
		Price:          r.Price,
		Category:       r.Category,
		Description:    r.Description,
		Sessions:       sessions,
		ImageURL:       r.ImageURL,
		Customizations: customs,
		Active:         active,
	}
}

func toMenuItemResponse(m *model.MenuItem) dto.MenuItemResponse {
	customs := m.Customizations
	if customs == nil {
		customs = []model.CustomizationOption{}
	}
	return dto.MenuItemResponse{
		ID:                   m.ID,
		Name:                 m.Name,
		Price:                m.Price,
		Category:             m.Category,
		Description:          m.Description,
		Sessions:             m.Sessions,
		ImageURL:             m.ImageURL,
		CustomizationOptions: customs,
		Active:               m.Active,
	}
}
