package policy

import (
	"fmt"
	"strings"
	"time"

	"github.com/flmanager/flmanager/internal/domain/model"
)

const expiringSoonWindow = 14 * 24 * time.Hour

// FormatNL renders an epoch-millisecond timestamp as dd-MM-yyyy HH:mm, the
// format used throughout the customer-facing messages.
func FormatNL(millis int64) string {
	if millis == 0 {
		return "N/A"
	}
	return time.UnixMilli(millis).Format("02-01-2006 15:04")
}

// CountriesToFlags converts ISO country codes to emoji flags. Kurdistan has
// no official emoji flag and maps to the white flag.
func CountriesToFlags(codes []string) string {
	if len(codes) == 0 {
		return "N/A"
	}
	flags := make([]string, 0, len(codes))
	for _, code := range codes {
		switch {
		case code == "KU":
			flags = append(flags, "\U0001F3F3️")
		case len(code) != 2:
			flags = append(flags, "❓")
		default:
			code = strings.ToUpper(code)
			flags = append(flags, string(127397+rune(code[0]))+string(127397+rune(code[1])))
		}
	}
	return strings.Join(flags, " ")
}

// PickTemplateNameForStream chooses the onboarding or reminder template that
// fits the subscription's status and remaining lifetime.
func PickTemplateNameForStream(sub *model.Subscription) string {
	if sub.Status == model.SubscriptionStatusTest {
		if sub.Erotiek {
			return "A2. Test 6u (met erotiek)"
		}
		return "A1. Test 6u (geen erotiek)"
	}
	if sub.Status == model.SubscriptionStatusExpired {
		return "A6. Jaar verlopen (EXPIRED)"
	}

	now := time.Now()
	if sub.EndAt < now.UnixMilli() {
		return "A6. Jaar verlopen (EXPIRED)"
	}
	if sub.Status == model.SubscriptionStatusActive {
		if sub.EndAt <= now.Add(expiringSoonWindow).UnixMilli() {
			return "A5. Jaar bijna verlopen (reminder)"
		}
		if sub.Erotiek {
			return "A4. Jaarabonnement (met erotiek)"
		}
	}
	return "A3. Jaarabonnement (geen erotiek)"
}

func statusLine(sub *model.Subscription, settings *model.AppSettings) string {
	now := time.Now()
	expiringSoon := sub.EndAt > now.UnixMilli() && sub.EndAt < now.Add(expiringSoonWindow).UnixMilli()

	switch sub.Status {
	case model.SubscriptionStatusTest:
		return fmt.Sprintf("❗ TEST %d uur", settings.TestHours)
	case model.SubscriptionStatusActive:
		if expiringSoon {
			return "\U0001F7E2 1 jaar abonnement (bijna verlopen)"
		}
		return "\U0001F7E2 1 jaar abonnement"
	case model.SubscriptionStatusExpired:
		return "⛔ VERLOPEN"
	case model.SubscriptionStatusBlocked:
		return "\U0001F6AB GEBLOKKEERD"
	default:
		return "Onbekend"
	}
}

func subscriptionDetailsBlock(sub *model.Subscription, index int, settings *model.AppSettings) string {
	mac := sub.MAC
	if mac == "" {
		mac = "N/A"
	}
	paid := "❌ NEE"
	if sub.Paid || sub.Free {
		paid = "✅ JA"
	}
	erotiek := "➖ Nee"
	if sub.Erotiek {
		erotiek = "\U0001F51E Ja"
	}
	lines := []string{
		fmt.Sprintf("Tv Flamingo Stream %d — MAC: %s", index+1, mac),
		fmt.Sprintf("Status abonnement: %s", statusLine(sub, settings)),
		fmt.Sprintf("Geactiveerd: %s", FormatNL(sub.StartAt)),
		fmt.Sprintf("Loopt tot: %s", FormatNL(sub.EndAt)),
		fmt.Sprintf("Erotiek: %s", erotiek),
		fmt.Sprintf("Betaald: %s", paid),
		fmt.Sprintf("Landen: %s", CountriesToFlags(sub.Countries)),
	}
	return strings.Join(lines, "\n")
}

func xtreamBlock(sub *model.Subscription) string {
	creds := ParseM3UURL(sub.M3UURL)
	if creds == nil || creds.Host == "" || creds.Username == "" || creds.Password == "" {
		return "— Xtream/M3U —\nKon M3U link niet verwerken of link is incompleet."
	}
	lines := []string{
		"— Xtream/M3U —",
		fmt.Sprintf("Username: %s", creds.Username),
		fmt.Sprintf("Password: %s", creds.Password),
		fmt.Sprintf("Host/URL: %s", creds.Host),
		"",
		"M3U LINK:",
		ConstructM3UURL(creds.Host, creds.Username, creds.Password),
		"",
		"EPG LINK:",
		fmt.Sprintf("http://%s/xmltv.php?username=%s&password=%s", creds.Host, creds.Username, creds.Password),
		"",
		fmt.Sprintf("EXPIRED: %s !!!", strings.ToUpper(FormatNL(sub.EndAt))),
	}
	return strings.Join(lines, "\n")
}

// RenderWhatsappTemplate fills a template's placeholders with customer,
// subscription and extra values. Multi-stream templates use the
// {MULTI_STREAM_BLOCK} placeholder; single-stream ones use
// {SUBSCRIPTION_DETAILS} and {XTREAM_BLOCK}.
func RenderWhatsappTemplate(template string, customer *model.Customer, settings *model.AppSettings, subs []model.Subscription, extra map[string]string) string {
	rendered := template

	name := "klant"
	if customer != nil && customer.Name != "" {
		name = customer.Name
	}
	rendered = strings.ReplaceAll(rendered, "{customer_name}", name)

	if expiresAt, ok := extra["expires_at"]; ok && expiresAt != "" {
		var millis int64
		fmt.Sscanf(expiresAt, "%d", &millis)
		rendered = strings.ReplaceAll(rendered, "{expiry_line}",
			fmt.Sprintf("de code verloopt op %s", FormatNL(millis)))
	} else {
		rendered = strings.ReplaceAll(rendered, "{expiry_line}", "deze code verloopt niet automatisch")
	}

	for key, value := range extra {
		if key == "expires_at" {
			continue
		}
		rendered = strings.ReplaceAll(rendered, "{"+key+"}", value)
	}

	switch len(subs) {
	case 0:
	case 1:
		rendered = strings.ReplaceAll(rendered, "{SUBSCRIPTION_DETAILS}", subscriptionDetailsBlock(&subs[0], 0, settings))
		rendered = strings.ReplaceAll(rendered, "{XTREAM_BLOCK}", xtreamBlock(&subs[0]))
	default:
		blocks := make([]string, len(subs))
		for i := range subs {
			blocks[i] = subscriptionDetailsBlock(&subs[i], i, settings) + "\n\n" + xtreamBlock(&subs[i])
		}
		rendered = strings.ReplaceAll(rendered, "{MULTI_STREAM_BLOCK}", strings.Join(blocks, "\n\n---\n\n"))
	}

	return rendered
}
