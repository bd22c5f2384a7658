package blog

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/dalemusser/stratablog/internal/app/store/storeutil"
	"github.com/dalemusser/stratablog/internal/domain/models"
)

// ListQuery selects one page of posts. Non-positive Page or Limit fall back
// to the defaults; Limit is capped at the manager's maximum.
type ListQuery struct {
	Page          int64
	Limit         int64
	IncludeHidden bool
}

// Pagination describes where a page sits in the full result.
type Pagination struct {
	Page  int64 `json:"page"`
	Limit int64 `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

// ListResult is one page of posts, newest first.
type ListResult struct {
	Items      []models.Post
	Pagination Pagination
}

// List returns a page of posts ordered by creation time, newest first.
// Hidden posts are excluded unless q.IncludeHidden is set.
func (m *Manager) List(ctx context.Context, q ListQuery) (ListResult, error) {
	page, limit := q.Page, q.Limit
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = m.defaultLimit
	}
	if limit > m.maxLimit {
		limit = m.maxLimit
	}

	total, err := m.repo.Count(ctx, q.IncludeHidden)
	if err != nil {
		return ListResult{}, storeErr("count", err)
	}

	pages := pageCount(total, limit)
	items := []models.Post{}
	if page <= pages {
		found, err := m.repo.Find(ctx, q.IncludeHidden, storeutil.Skip(page, limit), limit)
		if err != nil {
			return ListResult{}, storeErr("list", err)
		}
		if found != nil {
			items = found
		}
	}

	return ListResult{
		Items: items,
		Pagination: Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: pages,
		},
	}, nil
}

func pageCount(total, limit int64) int64 {
	if total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// TimelineEntry is one post in the archive timeline.
type TimelineEntry struct {
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	Day       int       `json:"day"`
	Hidden    bool      `json:"hidden"`
}

// TimelineMonth groups the posts of one calendar month.
type TimelineMonth struct {
	Key   string          `json:"key"` // YYYY-MM
	Name  string          `json:"name"`
	Posts []TimelineEntry `json:"posts"`
}

// TimelineYear groups the months of one calendar year.
type TimelineYear struct {
	Year   int             `json:"year"`
	Months []TimelineMonth `json:"months"`
}

// Timeline groups posts by year and month (UTC), newest first at every level.
func (m *Manager) Timeline(ctx context.Context, includeHidden bool) ([]TimelineYear, error) {
	posts, err := m.repo.Find(ctx, includeHidden, 0, 0)
	if err != nil {
		return nil, storeErr("timeline", err)
	}
	return BuildTimeline(posts), nil
}

// BuildTimeline groups posts into years and months. The input order does
// not matter.
func BuildTimeline(posts []models.Post) []TimelineYear {
	sorted := make([]models.Post, len(posts))
	copy(sorted, posts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	years := []TimelineYear{}
	for _, p := range sorted {
		t := p.CreatedAt.UTC()

		if len(years) == 0 || years[len(years)-1].Year != t.Year() {
			years = append(years, TimelineYear{Year: t.Year()})
		}
		y := &years[len(years)-1]

		key := strconv.Itoa(t.Year()) + "-" + twoDigits(int(t.Month()))
		if len(y.Months) == 0 || y.Months[len(y.Months)-1].Key != key {
			y.Months = append(y.Months, TimelineMonth{Key: key, Name: t.Month().String()})
		}
		mo := &y.Months[len(y.Months)-1]

		mo.Posts = append(mo.Posts, TimelineEntry{
			Slug:      p.Slug,
			Title:     p.Title,
			CreatedAt: p.CreatedAt,
			Day:       t.Day(),
			Hidden:    p.Hidden,
		})
	}
	return years
}

func twoDigits(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
