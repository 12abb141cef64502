// Package i18n holds the fixed shopper-facing messages the client pushes to
// the notification channel.
package i18n

import "strings"

// Message keys.
const (
	ReviewCreateSuccess = "review.create.success"
	ReviewCreateFailed  = "review.create.failed"
	ReviewUpdateSuccess = "review.update.success"
	ReviewUpdateFailed  = "review.update.failed"
	ReviewDeleteSuccess = "review.delete.success"
	ReviewDeleteFailed  = "review.delete.failed"
	ReviewListFailed    = "review.list.failed"
	EligibilityFailed   = "eligibility.failed"
	ProductListFailed   = "product.list.failed"
	ProductGetFailed    = "product.get.failed"
	ProductCreated      = "product.create.success"
	ProductCreateFailed = "product.create.failed"
	ProductCreateError  = "product.create.error"
	CartAddSuccess      = "cart.add.success"
	CartAddFailed       = "cart.add.failed"
	RateOutOfRange      = "review.rate.range"
	NoEligibleSize      = "review.size.none"
	SizeRequired        = "review.size.required"
	ContentRequired     = "review.content.required"
	LoginRequired       = "login.required"
	ReviewsEmpty        = "reviews.empty"
)

// Default is the locale used when none is configured.
const Default = "en"

var translations = map[string]map[string]string{
	"en": {
		ReviewCreateSuccess: "Review posted!",
		ReviewCreateFailed:  "Something went wrong while posting your review.",
		ReviewUpdateSuccess: "Review updated!",
		ReviewUpdateFailed:  "Something went wrong while updating your review.",
		ReviewDeleteSuccess: "Review deleted!",
		ReviewDeleteFailed:  "Something went wrong while deleting your review.",
		ReviewListFailed:    "Could not load reviews.",
		EligibilityFailed:   "Could not load your purchased sizes.",
		ProductListFailed:   "Could not load products.",
		ProductGetFailed:    "Could not load the product.",
		ProductCreated:      "Product created!",
		ProductCreateFailed: "Product creation failed!",
		ProductCreateError:  "Something went wrong while creating the product.",
		CartAddSuccess:      "Added to cart!",
		CartAddFailed:       "Could not add the item to your cart.",
		RateOutOfRange:      "Rating must be between 0 and 5.",
		NoEligibleSize:      "No purchased size to review",
		SizeRequired:        "Please select a size.",
		ContentRequired:     "Please write a review.",
		LoginRequired:       "Please sign in first.",
		ReviewsEmpty:        "No reviews yet!",
	},
	"ko": {
		ReviewCreateSuccess: "리뷰 생성 완료!",
		ReviewCreateFailed:  "리뷰 생성 중 오류가 발생했습니다.",
		ReviewUpdateSuccess: "리뷰 수정 완료!",
		ReviewUpdateFailed:  "리뷰 수정 중 오류가 발생했습니다.",
		ReviewDeleteSuccess: "리뷰 삭제 완료!",
		ReviewDeleteFailed:  "리뷰 삭제 중 오류가 발생했습니다.",
		ReviewListFailed:    "리뷰를 불러오지 못했습니다.",
		EligibilityFailed:   "구매한 사이즈를 불러오지 못했습니다.",
		ProductListFailed:   "상품을 불러오지 못했습니다.",
		ProductGetFailed:    "상품 정보를 불러오지 못했습니다.",
		ProductCreated:      "상품 생성 완료!",
		ProductCreateFailed: "상품 생성 실패!",
		ProductCreateError:  "상품 생성 중 오류가 발생했습니다.",
		CartAddSuccess:      "카트에 아이템이 추가됐습니다!",
		CartAddFailed:       "카트에 아이템을 추가하지 못했습니다.",
		RateOutOfRange:      "평점은 0~5 사이여야 합니다.",
		NoEligibleSize:      "구매한 사이즈가 없습니다",
		SizeRequired:        "사이즈를 선택해주세요.",
		ContentRequired:     "리뷰 내용을 입력해주세요.",
		LoginRequired:       "먼저 로그인 해주세요.",
		ReviewsEmpty:        "등록된 리뷰가 없습니다!",
	},
}

// T returns the translated string for key in locale; falls back to English,
// then to the key itself.
func T(locale, key string) string {
	if m, ok := translations[Resolve(locale)]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if v, ok := translations[Default][key]; ok {
		return v
	}
	return key
}

// Resolve maps a locale tag to a supported locale, preferring the base
// language (ko-KR -> ko). Unknown locales resolve to Default.
func Resolve(locale string) string {
	l := strings.ToLower(strings.TrimSpace(locale))
	if _, ok := translations[l]; ok {
		return l
	}
	if i := strings.IndexAny(l, "-_"); i > 0 {
		if _, ok := translations[l[:i]]; ok {
			return l[:i]
		}
	}
	return Default
}

// Supported lists the locales with translations.
func Supported() []string {
	return []string{"en", "ko"}
}
