// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package reballiquidity normalizes liquidity tags and groups exposures into
// redemption bands.
//
// A liquidity tag describes how many days until an asset can be redeemed,
// in the canonical form "D+N", optionally followed by a qualifier such as
// "D+0 (à mercado)". Two sentinels are also recognized: NoMaturityDate and
// AtMaturity.
package reballiquidity

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// NoMaturityDate is the sentinel for assets without a maturity date.
	NoMaturityDate = "no maturity date"
	// AtMaturity is the sentinel for assets redeemable only at maturity.
	AtMaturity = "at maturity"
)

var (
	digitsRegexp = regexp.MustCompile(`^\d+$`)
	tagRegexp    = regexp.MustCompile(`^[dD]\s*\+\s*(\d+)\s*(.*)$`)
	daysRegexp   = regexp.MustCompile(`D\+(\d+)`)
)

// Resolver resolves the liquidity tag of an asset by name.
//
// An empty result means the liquidity is unknown.
type Resolver interface {
	ResolveLiquidity(assetName string) string
}

// TableResolver is a Resolver backed by a fixed asset name to tag table.
//
// Lookups are exact first, then case-insensitive. Tags are normalized.
type TableResolver map[string]string

// ResolveLiquidity implements Resolver.
func (t TableResolver) ResolveLiquidity(assetName string) string {
	if tag, ok := t[assetName]; ok {
		return Normalize(tag)
	}
	for name, tag := range t {
		if strings.EqualFold(name, assetName) {
			return Normalize(tag)
		}
	}
	return ""
}

// Normalize normalizes free-text liquidity input into a canonical tag.
//
// Plain day counts ("30") become "D+30", loosely written tags ("d + 30")
// become "D+30" keeping any qualifier, and the two sentinels are preserved.
// Anything else normalizes to the empty tag. Normalize never fails.
func Normalize(input string) string {
	value := strings.TrimSpace(input)
	switch {
	case value == "":
		return ""
	case strings.EqualFold(value, NoMaturityDate):
		return NoMaturityDate
	case strings.EqualFold(value, AtMaturity):
		return AtMaturity
	case digitsRegexp.MatchString(value):
		return "D+" + trimLeadingZeros(value)
	}
	matches := tagRegexp.FindStringSubmatch(value)
	if matches == nil {
		return ""
	}
	tag := "D+" + trimLeadingZeros(matches[1])
	if suffix := strings.TrimSpace(matches[2]); suffix != "" {
		tag += " " + suffix
	}
	return tag
}

// ExportTag prepares a tag for export.
//
// Bare numeric tags are re-prefixed with "D+". Everything else, including
// the sentinels and the empty tag, is passed through unchanged.
func ExportTag(tag string) string {
	if trimmed := strings.TrimSpace(tag); digitsRegexp.MatchString(trimmed) {
		return "D+" + trimLeadingZeros(trimmed)
	}
	return tag
}

// Days returns the number of days in a "D+N" tag.
//
// Returns false if the tag does not carry a day count. Day counts that
// overflow an int are clamped to math.MaxInt.
func Days(tag string) (int, bool) {
	matches := daysRegexp.FindStringSubmatch(tag)
	if matches == nil {
		return 0, false
	}
	days, err := strconv.Atoi(matches[1])
	if err != nil {
		// The match is all digits, so the only possible error is a range error.
		return math.MaxInt, true
	}
	return days, true
}

func trimLeadingZeros(digits string) string {
	trimmed := strings.TrimLeft(digits, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}

// *** BANDS ***

// Band is a redemption band used by the liquidity profile.
type Band string

const (
	// BandAbove180 holds tags of more than 180 days.
	BandAbove180 Band = "Acima de D+180"
	// BandUpTo180 holds tags of 61 to 180 days.
	BandUpTo180 Band = "Até D+180"
	// BandUpTo60 holds tags of 16 to 60 days.
	BandUpTo60 Band = "Até D+60"
	// BandUpTo15 holds tags of 6 to 15 days.
	BandUpTo15 Band = "Até D+15"
	// BandUpTo5 holds tags of 1 to 5 days.
	BandUpTo5 Band = "Até D+5"
	// BandD0 holds D+0 tags and tags without a day count.
	BandD0 Band = "D+0"
	// BandD0Market holds D+0 tags redeemed at market price.
	BandD0Market Band = "D+0 (à mercado)"
)

// Bands returns all bands from the least to the most liquid.
func Bands() []Band {
	return []Band{
		BandAbove180,
		BandUpTo180,
		BandUpTo60,
		BandUpTo15,
		BandUpTo5,
		BandD0,
		BandD0Market,
	}
}

// BandFor returns the band for a tag. Tags without a day count fall into BandD0.
func BandFor(tag string) Band {
	days, ok := Days(tag)
	switch {
	case !ok:
		return BandD0
	case days > 180:
		return BandAbove180
	case days > 60:
		return BandUpTo180
	case days > 15:
		return BandUpTo60
	case days > 5:
		return BandUpTo15
	case days > 0:
		return BandUpTo5
	case strings.Contains(strings.ToLower(tag), "à mercado"):
		return BandD0Market
	default:
		return BandD0
	}
}

// Exposure is an amount held under a liquidity tag.
type Exposure struct {
	Tag   string
	Value decimal.Decimal
}

// BandTotal is the total value held in a band.
type BandTotal struct {
	Band  Band            `json:"band"`
	Value decimal.Decimal `json:"value"`
}

// Profile sums exposures per band. Every band is present, in Bands order.
func Profile(exposures []Exposure) []BandTotal {
	totals := make(map[Band]decimal.Decimal)
	for _, exposure := range exposures {
		band := BandFor(exposure.Tag)
		totals[band] = totals[band].Add(exposure.Value)
	}
	bands := Bands()
	result := make([]BandTotal, len(bands))
	for i, band := range bands {
		result[i] = BandTotal{Band: band, Value: totals[band]}
	}
	return result
}
