package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/you/authsvc/domain"
)

// Login codes are four digits, inclusive.
const (
	otpMin = 1000
	otpMax = 9999

	otpSpan = otpMax - otpMin + 1

	// maxRandomDraws bounds the collision-retry loop before falling back to a
	// deterministic sweep of the code space.
	maxRandomDraws = 32
)

// OTPGeneratorImpl implements domain.OTPGenerator. A candidate is rejected if
// the exact value appears anywhere in the code history, used or not.
type OTPGeneratorImpl struct {
	codes domain.OTPRepository
}

// NewOTPGenerator creates a new OTP generator
func NewOTPGenerator(codes domain.OTPRepository) domain.OTPGenerator {
	return &OTPGeneratorImpl{codes: codes}
}

// Generate implements domain.OTPGenerator. Random draws are retried a bounded
// number of times; when the table is dense enough that draws keep colliding,
// the whole space is swept from a random offset so the remaining free values
// are still found. Only a fully exhausted space fails.
func (g *OTPGeneratorImpl) Generate(ctx context.Context) (int, error) {
	for i := 0; i < maxRandomDraws; i++ {
		candidate, err := randomCode()
		if err != nil {
			return 0, err
		}
		exists, err := g.codes.ExistsByCode(ctx, candidate)
		if err != nil {
			return 0, fmt.Errorf("otp collision check: %w", err)
		}
		if !exists {
			return candidate, nil
		}
	}

	start, err := randomCode()
	if err != nil {
		return 0, err
	}
	for i := 0; i < otpSpan; i++ {
		candidate := otpMin + (start-otpMin+i)%otpSpan
		exists, err := g.codes.ExistsByCode(ctx, candidate)
		if err != nil {
			return 0, fmt.Errorf("otp collision check: %w", err)
		}
		if !exists {
			return candidate, nil
		}
	}

	return 0, domain.ErrOTPSpaceExhausted
}

func randomCode() (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpSpan))
	if err != nil {
		return 0, fmt.Errorf("failed to draw random code: %w", err)
	}
	return otpMin + int(n.Int64()), nil
}
