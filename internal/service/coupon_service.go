package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/repository"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	base36Alphabet  = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	maxCodeAttempts = 5
)

var errCodeSpaceExhausted = errors.New("could not generate an unused coupon code")

type CouponService struct {
	coupons repository.CouponRepository
	newCode func() (string, error)
	now     func() time.Time
	log     zerolog.Logger
}

func NewCouponService(coupons repository.CouponRepository, log zerolog.Logger) *CouponService {
	return &CouponService{
		coupons: coupons,
		newCode: generateRewardCode,
		now:     time.Now,
		log:     log.With().Str("component", "coupons").Logger(),
	}
}

// GetCoupon returns the user's active coupon, or nil when there is none.
func (s *CouponService) GetCoupon(ctx context.Context, userID primitive.ObjectID) (*domain.Coupon, error) {
	coupon, err := s.coupons.FindActiveForUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrCouponNotFound) {
			return nil, nil
		}
		return nil, upstream("get coupon", err)
	}
	return coupon, nil
}

// ValidateCoupon checks that code is an active, unexpired coupon of the user.
// An expired coupon is deactivated as a side effect.
func (s *CouponService) ValidateCoupon(ctx context.Context, userID primitive.ObjectID, code string) (*domain.Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, invalidInput("code is required")
	}

	coupon, err := s.coupons.FindActive(ctx, userID, code)
	if err != nil {
		if errors.Is(err, repository.ErrCouponNotFound) {
			return nil, notFound("coupon not found")
		}
		return nil, upstream("find coupon", err)
	}

	if coupon.IsExpired(s.now()) {
		if _, err := s.coupons.Deactivate(ctx, userID, code); err != nil {
			return nil, upstream("deactivate expired coupon", err)
		}
		return nil, notFound("coupon expired")
	}
	return coupon, nil
}

// MintRewardCoupon creates a GIFT coupon worth 10% that expires in 30 days.
func (s *CouponService) MintRewardCoupon(ctx context.Context, userID primitive.ObjectID) (*domain.Coupon, error) {
	code, err := s.unusedCode(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	coupon := &domain.Coupon{
		Code:               code,
		DiscountPercentage: domain.RewardCouponDiscount,
		ExpirationDate:     now.Add(domain.RewardCouponLifetime),
		IsActive:           true,
		UserID:             userID,
	}
	if err := s.coupons.Create(ctx, coupon); err != nil {
		return nil, upstream("create reward coupon", err)
	}

	s.log.Info().Str("user_id", userID.Hex()).Str("code", code).Msg("reward coupon minted")
	return coupon, nil
}

func (s *CouponService) unusedCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return "", fmt.Errorf("failed to generate coupon code: %w", err)
		}
		exists, err := s.coupons.CodeExists(ctx, code)
		if err != nil {
			return "", upstream("check coupon code", err)
		}
		if !exists {
			return code, nil
		}
		s.log.Warn().Str("code", code).Int("attempt", attempt+1).Msg("coupon code collision")
	}
	return "", errCodeSpaceExhausted
}

func generateRewardCode() (string, error) {
	var b strings.Builder
	b.WriteString(domain.RewardCouponPrefix)
	size := big.NewInt(int64(len(base36Alphabet)))
	for i := 0; i < domain.RewardCouponCodeLength; i++ {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", err
		}
		b.WriteByte(base36Alphabet[n.Int64()])
	}
	return b.String(), nil
}
