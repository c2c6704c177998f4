package policy

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flmanager/flmanager/internal/domain/model"
)

// ComputeEndDate derives a subscription end date from its start: test
// subscriptions run for test_hours, everything else for year_days.
func ComputeEndDate(startAt int64, status model.SubscriptionStatus, settings *model.AppSettings) int64 {
	start := time.UnixMilli(startAt)
	if status == model.SubscriptionStatusTest {
		hours := settings.TestHours
		if hours <= 0 {
			hours = 6
		}
		return start.Add(time.Duration(hours) * time.Hour).UnixMilli()
	}
	days := settings.YearDays
	if days <= 0 {
		days = 365
	}
	return start.AddDate(0, 0, days).UnixMilli()
}

// ComputeRenewalDate extends a still-active subscription from its current
// expiry and an already-expired one from today. Dead time never stacks.
func ComputeRenewalDate(currentEndAt int64, now time.Time, settings *model.AppSettings) int64 {
	days := settings.YearDays
	if days <= 0 {
		days = 365
	}
	base := now
	if currentEndAt > now.UnixMilli() {
		base = time.UnixMilli(currentEndAt)
	}
	return base.AddDate(0, 0, days).UnixMilli()
}

// SubscriptionPrice calculates the renewal price: vrienden rate or standard
// rate, plus the erotiek addon when that tier is enabled.
func SubscriptionPrice(sub *model.Subscription, settings *model.AppSettings) decimal.Decimal {
	base := settings.PriceStandard
	if sub.PaymentMethod == model.PaymentMethodVrienden {
		base = settings.PriceVrienden
	}
	if sub.Erotiek {
		return base.Add(settings.PriceErotiekAddon)
	}
	return base
}

const giftCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateGiftCode produces a code like "FLM-XXXX-XXXX-XXXX".
func GenerateGiftCode() string {
	part := func() string {
		var b strings.Builder
		for i := 0; i < 4; i++ {
			n, err := rand.Int(rand.Reader, big.NewInt(int64(len(giftCodeAlphabet))))
			if err != nil {
				// crypto/rand only fails when the platform source is broken
				b.WriteByte(giftCodeAlphabet[0])
				continue
			}
			b.WriteByte(giftCodeAlphabet[n.Int64()])
		}
		return b.String()
	}
	return fmt.Sprintf("FLM-%s-%s-%s", part(), part(), part())
}

// M3UCredentials are the parts extracted from an M3U playlist URL.
type M3UCredentials struct {
	Username string
	Password string
	Host     string
}

// ParseM3UURL extracts username, password and host from an M3U URL.
// Returns nil when no host can be determined.
func ParseM3UURL(raw string) *M3UCredentials {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil
	}
	q := u.Query()
	return &M3UCredentials{
		Username: q.Get("username"),
		Password: q.Get("password"),
		Host:     u.Host,
	}
}

// ConstructM3UURL builds a playlist URL from its parts.
func ConstructM3UURL(host, username, password string) string {
	if host == "" || username == "" || password == "" {
		return ""
	}
	host = strings.TrimPrefix(strings.TrimPrefix(host, "https://"), "http://")
	return fmt.Sprintf("http://%s/get.php?username=%s&password=%s&type=m3u_plus&output=m3u8", host, username, password)
}
