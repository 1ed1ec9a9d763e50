package service

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/thenextevent/eventdesk/internal/models"
)

type Content struct {
	api API
}

func NewContent(api API) *Content { return &Content{api: api} }

func (s *Content) List(ctx context.Context, params models.ContentListParams) (models.PagedItems[models.ContentItem], error) {
	var out models.PagedItems[models.ContentItem]
	err := s.api.Get(ctx, "/content", params, &out)
	return out, err
}

func (s *Content) ByKey(ctx context.Context, key string) (*models.ContentItem, error) {
	var out models.ContentItem
	if err := s.api.Get(ctx, "/content/by-key/"+url.PathEscape(key), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Content) ByLanguage(ctx context.Context, lang string) ([]models.ContentItem, error) {
	var out []models.ContentItem
	err := s.api.Get(ctx, "/content/by-language/"+url.PathEscape(lang), nil, &out)
	return out, err
}

func (s *Content) BySection(ctx context.Context, section string) ([]models.ContentItem, error) {
	var out []models.ContentItem
	err := s.api.Get(ctx, "/content/section/"+url.PathEscape(section), nil, &out)
	return out, err
}

func (s *Content) Create(ctx context.Context, in models.ContentInput) (*models.ContentItem, error) {
	var out models.ContentItem
	if err := s.api.Post(ctx, "/content", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Content) Update(ctx context.Context, id int64, in models.ContentInput) (*models.ContentItem, error) {
	var out models.ContentItem
	if err := s.api.Put(ctx, fmt.Sprintf("/content/%d", id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Content) Delete(ctx context.Context, id int64) error {
	return s.api.Delete(ctx, fmt.Sprintf("/content/%d", id), nil)
}

func (s *Content) UpdateSortOrder(ctx context.Context, id int64, order int) error {
	return s.api.Put(ctx, fmt.Sprintf("/content/%d/sort-order", id), map[string]int{"sortOrder": order}, nil)
}

func (s *Content) ToggleActive(ctx context.Context, id int64) (*models.ContentItem, error) {
	var out models.ContentItem
	if err := s.api.Put(ctx, fmt.Sprintf("/content/%d/toggle-active", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Content) BulkUpdate(ctx context.Context, items []models.ContentInput) ([]models.ContentItem, error) {
	var out []models.ContentItem
	err := s.api.Put(ctx, "/content/bulk-update", items, &out)
	return out, err
}

// ToMap indexes active items by content key.
func ToMap(items []models.ContentItem) map[string]string {
	out := make(map[string]string, len(items))
	for _, it := range items {
		if it.IsActive {
			out[it.ContentKey] = it.ContentValue
		}
	}
	return out
}

// GroupBySection groups active items by section, each group ordered by
// sort order.
func GroupBySection(items []models.ContentItem) map[string][]models.ContentItem {
	out := make(map[string][]models.ContentItem)
	for _, it := range items {
		if it.IsActive {
			out[it.SectionKey] = append(out[it.SectionKey], it)
		}
	}
	for _, group := range out {
		sort.SliceStable(group, func(i, j int) bool { return group[i].SortOrder < group[j].SortOrder })
	}
	return out
}

// SearchContent matches term case-insensitively against key, value and
// section.
func SearchContent(items []models.ContentItem, term string) []models.ContentItem {
	term = strings.ToLower(term)
	var out []models.ContentItem
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.ContentKey), term) ||
			strings.Contains(strings.ToLower(it.ContentValue), term) ||
			strings.Contains(strings.ToLower(it.SectionKey), term) {
			out = append(out, it)
		}
	}
	return out
}
