package inspect

import (
	"fmt"
	"hash/fnv"
	"math/bits"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// fingerprintRows is how many rows feed the structure fingerprint.
const fingerprintRows = 10

// DriftThreshold is the Hamming distance above which two captures are
// considered to have different row markup.
const DriftThreshold = 12

// Fingerprint is a 64-bit SimHash of row markup. Text is ignored, so two
// captures of the same layout with different fixtures hash close together.
type Fingerprint uint64

// String formats f as 16 hex digits.
func (f Fingerprint) String() string { return fmt.Sprintf("%016x", uint64(f)) }

// ParseFingerprint reads a fingerprint printed by String.
func ParseFingerprint(s string) (Fingerprint, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 16, 64)
	if err != nil {
		return 0, fmt.Errorf("parse fingerprint %q: %w", s, err)
	}
	return Fingerprint(v), nil
}

// Distance returns the Hamming distance between two fingerprints.
func (f Fingerprint) Distance(other Fingerprint) int {
	return bits.OnesCount64(uint64(f ^ other))
}

// Drifted reports whether other looks like a different row layout.
func (f Fingerprint) Drifted(other Fingerprint) bool {
	return f.Distance(other) > DriftThreshold
}

// RowFingerprint hashes the element structure of the first rows: tag names
// with sorted class lists, in document order, as 3-token shingles.
func RowFingerprint(rows *goquery.Selection) Fingerprint {
	var tokens []string
	head(rows, fingerprintRows).Each(func(_ int, row *goquery.Selection) {
		for _, n := range row.Nodes {
			tokens = appendStructure(tokens, n)
		}
	})
	return simhash(shingles(tokens, 3))
}

func appendStructure(tokens []string, n *html.Node) []string {
	if n.Type == html.ElementNode {
		tok := n.Data
		for _, a := range n.Attr {
			if a.Key == "class" {
				classes := strings.Fields(a.Val)
				sort.Strings(classes)
				tok += "." + strings.Join(classes, ".")
			}
		}
		tokens = append(tokens, tok)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		tokens = appendStructure(tokens, c)
	}
	return tokens
}

func shingles(tokens []string, n int) []string {
	if len(tokens) < n {
		return tokens
	}
	out := make([]string, 0, len(tokens)-n+1)
	for i := 0; i+n <= len(tokens); i++ {
		out = append(out, strings.Join(tokens[i:i+n], "_"))
	}
	return out
}

// simhash accumulates FNV-64a hashes of the features bit by bit.
func simhash(features []string) Fingerprint {
	if len(features) == 0 {
		return 0
	}
	var vector [64]int
	for _, f := range features {
		h := fnv.New64a()
		h.Write([]byte(f))
		sum := h.Sum64()
		for i := 0; i < 64; i++ {
			if sum&(1<<uint(i)) != 0 {
				vector[i]++
			} else {
				vector[i]--
			}
		}
	}
	var fp uint64
	for i := 0; i < 64; i++ {
		if vector[i] > 0 {
			fp |= 1 << uint(i)
		}
	}
	return Fingerprint(fp)
}
