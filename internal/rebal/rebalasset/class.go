// Copyright 2026 Peter Edge
//
// All rights reserved.

package rebalasset

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Class is an asset class.
//
// The zero value is ClassUnspecified, which marks a record that has not
// been classified yet.
type Class int

const (
	// ClassUnspecified is a record that has not been classified.
	ClassUnspecified Class = iota
	// ClassPostFixed is post-fixed income indexed to the overnight rate.
	ClassPostFixed
	// ClassInflation is inflation-linked fixed income.
	ClassInflation
	// ClassPreFixed is fixed income with a nominal rate set at purchase.
	ClassPreFixed
	// ClassMultiStrategy is multi-strategy funds.
	ClassMultiStrategy
	// ClassDomesticEquity is Brazilian equity.
	ClassDomesticEquity
	// ClassAlternatives is alternative investments.
	ClassAlternatives
	// ClassGlobalEquity is equity outside Brazil.
	ClassGlobalEquity
	// ClassGlobalFixedIncome is fixed income outside Brazil.
	ClassGlobalFixedIncome
	// ClassListedFunds is exchange-listed funds such as real estate funds.
	ClassListedFunds
	// ClassCash is cash and cash equivalents.
	ClassCash
)

type classInfo struct {
	key     string
	label   string
	aliases []string
}

var classInfos = map[Class]classInfo{
	ClassPostFixed:         {key: "post_fixed", label: "Pós Fixado", aliases: []string{"Post-Fixed", "Pós-Fixado"}},
	ClassInflation:         {key: "inflation", label: "Inflação", aliases: []string{"Inflation-Linked"}},
	ClassPreFixed:          {key: "pre_fixed", label: "Pré Fixado", aliases: []string{"Pre-Fixed", "Pré-Fixado"}},
	ClassMultiStrategy:     {key: "multi_strategy", label: "Multimercado", aliases: []string{"Multi-Strategy"}},
	ClassDomesticEquity:    {key: "domestic_equity", label: "Renda Variável Brasil", aliases: []string{"Domestic Equity"}},
	ClassAlternatives:      {key: "alternatives", label: "Alternativos", aliases: []string{"Alternativo"}},
	ClassGlobalEquity:      {key: "global_equity", label: "Renda Variável Global", aliases: []string{"Global Equity"}},
	ClassGlobalFixedIncome: {key: "global_fixed_income", label: "Renda Fixa Global", aliases: []string{"Global Fixed Income"}},
	ClassListedFunds:       {key: "listed_funds", label: "Fundos Listados", aliases: []string{"Listed Funds"}},
	ClassCash:              {key: "cash", label: "Caixa", aliases: nil},
}

// foldedClasses maps the folded form of every key, label and alias to its class.
var foldedClasses = newFoldedClasses()

// Classes returns all specified classes in canonical order.
func Classes() []Class {
	return []Class{
		ClassPostFixed,
		ClassInflation,
		ClassPreFixed,
		ClassMultiStrategy,
		ClassDomesticEquity,
		ClassAlternatives,
		ClassGlobalEquity,
		ClassGlobalFixedIncome,
		ClassListedFunds,
		ClassCash,
	}
}

// ParseClass parses a class from its key, label, or a known alias.
//
// Matching ignores case, accents, typographic ligatures, and the difference
// between spaces, hyphens and underscores, so "Inflacao", "INFLAÇÃO" and
// "inflation" all parse. The empty string parses to ClassUnspecified.
func ParseClass(s string) (Class, error) {
	if strings.TrimSpace(s) == "" {
		return ClassUnspecified, nil
	}
	if class, ok := foldedClasses[foldClassName(s)]; ok {
		return class, nil
	}
	return ClassUnspecified, &UnknownClassError{Name: s}
}

// Key returns the stable key of the class, e.g. "post_fixed".
func (c Class) Key() string {
	if info, ok := classInfos[c]; ok {
		return info.key
	}
	return ""
}

// String returns the display label of the class, e.g. "Pós Fixado".
func (c Class) String() string {
	if info, ok := classInfos[c]; ok {
		return info.label
	}
	if c == ClassUnspecified {
		return ""
	}
	return fmt.Sprintf("Class(%d)", int(c))
}

// IsValid returns true if c is one of the specified classes.
func (c Class) IsValid() bool {
	_, ok := classInfos[c]
	return ok
}

// MarshalText implements encoding.TextMarshaler using the class key.
func (c Class) MarshalText() ([]byte, error) {
	return []byte(c.Key()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler using ParseClass.
func (c *Class) UnmarshalText(data []byte) error {
	class, err := ParseClass(string(data))
	if err != nil {
		return err
	}
	*c = class
	return nil
}

// UnknownClassError is returned when a class name does not match any class.
type UnknownClassError struct {
	Name string
}

// Error implements error.
func (e *UnknownClassError) Error() string {
	return fmt.Sprintf("unknown asset class %q", e.Name)
}

func newFoldedClasses() map[string]Class {
	folded := make(map[string]Class)
	for class, info := range classInfos {
		folded[foldClassName(info.key)] = class
		folded[foldClassName(info.label)] = class
		for _, alias := range info.aliases {
			folded[foldClassName(alias)] = class
		}
	}
	return folded
}

// foldClassName lowercases, strips accents, decomposes ligatures and
// collapses separators to single spaces.
func foldClassName(s string) string {
	// A transform.Transformer chain is stateful, build one per call.
	stripAccents := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(stripAccents, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)
	folded = strings.Map(
		func(r rune) rune {
			if r == '_' || r == '-' {
				return ' '
			}
			return r
		},
		folded,
	)
	return strings.Join(strings.Fields(folded), " ")
}
