// Package view projects store state into render-ready rows.
package view

import (
	"time"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/i18n"
)

// DateLayout is how review timestamps are shown.
const DateLayout = "2006. 01. 02. 15:04:05"

// ReviewRow is one review as the list renders it.
type ReviewRow struct {
	ID          string `json:"id"`
	AuthorName  string `json:"author"`
	ProductID   string `json:"productId"`
	ProductName string `json:"product"`
	Size        string `json:"size"`
	Rate        int    `json:"rate"`
	Stars       string `json:"stars"`
	Content     string `json:"content"`
	Image       string `json:"image,omitempty"`
	Date        string `json:"date"`
	CanEdit     bool   `json:"canEdit"`
	CanDelete   bool   `json:"canDelete"`
}

// ReviewList is the rendered list, with the empty-state text when there
// are no rows.
type ReviewList struct {
	Rows  []ReviewRow `json:"rows"`
	Empty string      `json:"empty,omitempty"`
}

// Rows renders reviews in the given order. Edit and delete are offered only
// on reviews written by currentUserID; an empty id means nobody is signed in.
func Rows(reviews []domain.Review, currentUserID string, loc *time.Location) []ReviewRow {
	if loc == nil {
		loc = time.Local
	}
	rows := make([]ReviewRow, len(reviews))
	for i, r := range reviews {
		owner := r.OwnedBy(currentUserID)
		rows[i] = ReviewRow{
			ID:          r.ID,
			AuthorName:  r.Author.Name,
			ProductID:   r.Item.Product.ID,
			ProductName: r.Item.Product.Name,
			Size:        domain.DisplaySize(r.Item.Size),
			Rate:        r.Rate,
			Stars:       Stars(r.Rate),
			Content:     r.Content,
			Image:       r.Image,
			Date:        formatDate(r.UpdatedAt, loc),
			CanEdit:     owner,
			CanDelete:   owner,
		}
	}
	return rows
}

// List renders reviews and fills the localized empty-state text.
func List(reviews []domain.Review, currentUserID, locale string, loc *time.Location) ReviewList {
	l := ReviewList{Rows: Rows(reviews, currentUserID, loc)}
	if len(l.Rows) == 0 {
		l.Empty = i18n.T(locale, i18n.ReviewsEmpty)
	}
	return l
}

// Stars renders a rating as five filled or empty stars.
func Stars(rate int) string {
	if rate < domain.MinRate {
		rate = domain.MinRate
	}
	if rate > domain.MaxRate {
		rate = domain.MaxRate
	}
	out := make([]rune, 0, domain.MaxRate)
	for i := 0; i < domain.MaxRate; i++ {
		if i < rate {
			out = append(out, '★')
		} else {
			out = append(out, '☆')
		}
	}
	return string(out)
}

func formatDate(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return t.In(loc).Format(DateLayout)
}
