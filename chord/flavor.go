package chord

import (
	"strconv"
	"strings"
)

type flavor struct {
	offsets []int
	// first name is the canonical one
	names []string
}

var flavors = []flavor{
	{[]int{0, 4, 7}, []string{"", "M"}},
	{[]int{0, 3, 7}, []string{"m"}},
	{[]int{0, 3, 6}, []string{"o"}},
	{[]int{0, 4, 8}, []string{"+"}},
	{[]int{0, 2, 7}, []string{"sus2"}},
	{[]int{0, 5, 7}, []string{"sus4", "sus"}},
	{[]int{0, 4, 7, 10}, []string{"7"}},
	{[]int{0, 4, 7, 11}, []string{"M7", "Δ", "Δ7"}},
	{[]int{0, 3, 7, 10}, []string{"m7"}},
	{[]int{0, 3, 6, 10}, []string{"0", "07", "m7b5"}},
	{[]int{0, 3, 6, 9}, []string{"o7"}},
	{[]int{0, 4, 7, 9}, []string{"6", "M6"}},
	{[]int{0, 3, 7, 9}, []string{"m6", "mM6"}},
	{[]int{0, 4, 8, 10}, []string{"+7"}},
	{[]int{0, 4, 8, 11}, []string{"M7#5", "+M7"}},
	{[]int{0, 3, 8, 10}, []string{"m+7"}},
	{[]int{0, 3, 7, 11}, []string{"mM7"}},
	{[]int{0, 3, 6, 11}, []string{"mM7b5", "oM7"}},
	{[]int{0, 4, 6, 10}, []string{"7b5"}},
}

var (
	offsetsByName = make(map[string][]int)
	nameByOffsets = make(map[string]string)
)

func init() {
	for _, f := range flavors {
		for _, name := range f.names {
			offsetsByName[name] = f.offsets
		}
		nameByOffsets[offsetsKey(f.offsets)] = f.names[0]
	}
}

func offsetsKey(offsets []int) string {
	parts := make([]string, len(offsets))
	for i, o := range offsets {
		parts[i] = strconv.Itoa(o)
	}
	return strings.Join(parts, ",")
}

var scripts = strings.NewReplacer(
	"⁰", "0", "¹", "1", "²", "2", "³", "3", "⁴", "4",
	"⁵", "5", "⁶", "6", "⁷", "7", "⁸", "8", "⁹", "9",
	"₀", "0", "₁", "1", "₂", "2", "₃", "3", "₄", "4",
	"₅", "5", "₆", "6", "₇", "7", "₈", "8", "₉", "9",
	"⁺", "+", "₊", "+", "⁻", "-", "₋", "-",
	"⁽", "(", "⁾", ")", "₍", "(", "₎", ")",
	"°", "o", "ᵒ", "o", "ø", "0",
	"♭", "b", "♯", "#", "△", "Δ",
	"ᴹ", "M", "ᵐ", "m",
)

var parens = strings.NewReplacer("(", "", ")", "")

// case-sensitive: "Maj" is not a quality word
var qualityWords = strings.NewReplacer("maj", "M", "min", "m", "dim", "o", "aug", "+")

// NormalizeFlavor rewrites a flavor suffix into the spelling used by the
// flavor table. Normalizing twice changes nothing.
func NormalizeFlavor(s string) string {
	s = parens.Replace(scripts.Replace(s))
	for {
		next := qualityWords.Replace(s)
		if next == s {
			return s
		}
		s = next
	}
}

// LookupFlavor returns the semitone offsets of a flavor suffix.
func LookupFlavor(suffix string) ([]int, bool) {
	offsets, ok := offsetsByName[NormalizeFlavor(suffix)]
	if !ok {
		return nil, false
	}
	return append([]int(nil), offsets...), true
}

// FlavorName returns the canonical name of an offset pattern.
func FlavorName(offsets []int) (string, bool) {
	name, ok := nameByOffsets[offsetsKey(offsets)]
	return name, ok
}

// Flavors lists every canonical flavor name in table order.
func Flavors() []string {
	res := make([]string, 0, len(flavors))
	for _, f := range flavors {
		res = append(res, f.names[0])
	}
	return res
}
