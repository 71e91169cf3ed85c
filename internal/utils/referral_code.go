package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// ReferralCodePrefix is prepended to every generated referral code.
const ReferralCodePrefix = "REF-"

// GenerateReferralCode produces a random code of the form REF-XXXXXXXX.
func GenerateReferralCode() (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate referral code: %w", err)
	}
	return ReferralCodePrefix + strings.ToUpper(hex.EncodeToString(buf)), nil
}
