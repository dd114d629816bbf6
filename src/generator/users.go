package generator

import (
	"strings"
	"time"

	"dataSynth/src/metadata"
	"dataSynth/src/table"

	"github.com/pingcap/errors"
)

type userGenerator struct {
	base
}

func newUserGenerator(alloc *metadata.Allocator) *userGenerator {
	return &userGenerator{base: newBase(alloc)}
}

func (g *userGenerator) Table() string {
	return "users"
}

// Generate produces user rows with demographics, account state and
// preference fields. IDs come from the shared allocator so later runs keep
// extending the same sequence.
func (g *userGenerator) Generate(rows int) (*table.Table, error) {
	idRange, err := g.alloc.AllocateRange(g.Table(), rows)
	if err != nil {
		return nil, errors.Trace(err)
	}
	ids := idRange.IDs()

	now := time.Now().UTC()
	// Adults only: birth dates land in the 18..80 year window.
	maxBirth := now.AddDate(-18, 0, 0)
	minBirth := now.AddDate(-80, 0, 0)

	var (
		emails        = make([]string, rows)
		usernames     = make([]string, rows)
		firstNames    = make([]string, rows)
		lastNames     = make([]string, rows)
		birthDates    = make([]time.Time, rows)
		genders       = make([]string, rows)
		phones        = make([]string, rows)
		addr1         = make([]string, rows)
		addr2         = make([]string, rows)
		addr2Null     = make([]bool, rows)
		cities        = make([]string, rows)
		states        = make([]string, rows)
		postalCodes   = make([]string, rows)
		countries     = make([]string, rows)
		registeredAt  = make([]time.Time, rows)
		lastLoginAt   = make([]time.Time, rows)
		statuses      = make([]string, rows)
		emailVerified = make([]bool, rows)
		marketingOpt  = make([]bool, rows)
		languages     = make([]string, rows)
		loyaltyTiers  = make([]string, rows)
		referrals     = make([]string, rows)
		channels      = make([]string, rows)
		segments      = make([]string, rows)
		creditRanges  = make([]string, rows)
	)

	for i := range rows {
		f := g.faker
		emails[i] = f.Email()
		usernames[i] = f.Username()
		firstNames[i] = f.FirstName()
		lastNames[i] = f.LastName()
		birthDates[i] = g.timeBetween(minBirth, maxBirth)
		genders[i] = g.choose(
			[]string{"M", "F", "Other", "prefer not to say"},
			[]float32{45, 45, 5, 5})
		phones[i] = f.Phone()
		addr1[i] = f.Street()
		if g.chance(0.3) {
			addr2[i] = "Apt. " + f.DigitN(3)
		} else {
			addr2Null[i] = true
		}
		cities[i] = f.City()
		states[i] = f.State()
		postalCodes[i] = f.Zip()
		countries[i] = f.CountryAbr()

		registeredAt[i] = g.timeBetween(now.AddDate(-5, 0, 0), now)
		lastLoginAt[i] = g.timeBetween(registeredAt[i], now)

		statuses[i] = g.choose(
			[]string{"active", "inactive", "suspended", "pending"},
			[]float32{85, 10, 3, 2})
		emailVerified[i] = g.chance(0.9)
		marketingOpt[i] = g.chance(0.6)
		languages[i] = g.choose(
			[]string{"en", "es", "fr", "de", "it"},
			[]float32{70, 15, 8, 4, 3})
		loyaltyTiers[i] = g.choose(
			[]string{"bronze", "silver", "gold", "platinum"},
			[]float32{50, 30, 15, 5})
		referrals[i] = strings.ToUpper(f.LetterN(4))
		channels[i] = g.choose(
			[]string{"organic", "paid_search", "social_media", "referral", "email"},
			[]float32{40, 25, 20, 10, 5})
		segments[i] = g.choose(
			[]string{"high_value", "regular", "occasional", "new"},
			[]float32{15, 45, 25, 15})
		creditRanges[i] = g.choose(
			[]string{"excellent", "good", "fair", "poor"},
			[]float32{20, 40, 30, 10})
	}

	tbl, err := table.New(g.Table(), []*table.Column{
		table.Int64Column("user_id", ids, nil),
		table.StringColumn("email", emails, nil),
		table.StringColumn("username", usernames, nil),
		table.StringColumn("first_name", firstNames, nil),
		table.StringColumn("last_name", lastNames, nil),
		table.DateColumn("date_of_birth", birthDates, nil),
		table.StringColumn("gender", genders, nil),
		table.StringColumn("phone_number", phones, nil),
		table.StringColumn("address_line_1", addr1, nil),
		table.StringColumn("address_line_2", addr2, addr2Null),
		table.StringColumn("city", cities, nil),
		table.StringColumn("state_province", states, nil),
		table.StringColumn("postal_code", postalCodes, nil),
		table.StringColumn("country", countries, nil),
		table.TimestampColumn("registration_date", registeredAt, nil),
		table.TimestampColumn("last_login_date", lastLoginAt, nil),
		table.StringColumn("account_status", statuses, nil),
		table.BoolColumn("email_verified", emailVerified, nil),
		table.BoolColumn("marketing_opt_in", marketingOpt, nil),
		table.StringColumn("preferred_language", languages, nil),
		table.StringColumn("loyalty_tier", loyaltyTiers, nil),
		table.StringColumn("referral_code", referrals, nil),
		table.StringColumn("source_channel", channels, nil),
		table.StringColumn("customer_segment", segments, nil),
		table.StringColumn("credit_score_range", creditRanges, nil),
	})
	if err != nil {
		return nil, errors.Trace(err)
	}

	if err := g.alloc.Commit(g.Table(), ids); err != nil {
		return nil, errors.Trace(err)
	}
	return tbl, nil
}
