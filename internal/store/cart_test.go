package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/notify"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

func TestAddToCart_Success(t *testing.T) {
	api := new(mockCartAPI)
	rec := &recorder{}
	s := NewCartStore(api, rec, staticSession{userID: "u1"}, newTestLogger(), WithLocale("ko"))

	api.On("AddToCart", mock.Anything, domain.CartItemRequest{ProductID: "p1", Size: "m", Qty: 1}).Return(nil)

	require.NoError(t, s.AddToCart(context.Background(), "p1", "M"))

	toasts := rec.Toasts()
	require.Len(t, toasts, 1)
	assert.Equal(t, "카트에 아이템이 추가됐습니다!", toasts[0].Text)
	assert.Equal(t, notify.StatusSuccess, toasts[0].Status)
	api.AssertExpectations(t)
}

func TestAddToCart_RequiresUser(t *testing.T) {
	api := new(mockCartAPI)
	rec := &recorder{}
	s := NewCartStore(api, rec, staticSession{}, newTestLogger())

	err := s.AddToCart(context.Background(), "p1", "m")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrLoginRequired))
	assert.Equal(t, 401, apperrors.HTTPStatus(err))
	assert.Empty(t, rec.Toasts())
	api.AssertNotCalled(t, "AddToCart", mock.Anything, mock.Anything)
}

func TestAddToCart_RequiresSize(t *testing.T) {
	api := new(mockCartAPI)
	s := NewCartStore(api, &recorder{}, staticSession{userID: "u1"}, newTestLogger())

	err := s.AddToCart(context.Background(), "p1", " ")
	assert.True(t, errors.Is(err, domain.ErrSizeRequired))
	assert.Equal(t, Status{}, s.Status())
}

func TestAddToCart_Rejected(t *testing.T) {
	api := new(mockCartAPI)
	rec := &recorder{}
	s := NewCartStore(api, rec, staticSession{userID: "u1"}, newTestLogger())

	api.On("AddToCart", mock.Anything, mock.Anything).Return(apperrors.Remote(409, "out of stock"))

	err := s.AddToCart(context.Background(), "p1", "m")
	require.Error(t, err)
	assert.Equal(t, notify.StatusError, rec.Toasts()[0].Status)
	assert.Equal(t, "out of stock", rec.Toasts()[0].Text)
	assert.Equal(t, "out of stock", s.Status().Error)
}
