// pairwise.go - in-memory pairwise containment (no index database)

package jam

import "fmt"

// CompareResult is one containment result, shared by both the in-memory
// pairwise comparator and the on-disk index comparator.
type CompareResult struct {
	FromName    string
	ToName      string
	NumCommon   uint64
	NumKmers    uint64
	Containment float64

	// Reverse records that the query was the smaller side of a pairwise
	// comparison; String() swaps from/to for display only.
	Reverse bool
}

// String renders r as a tab-separated dist output line: from_name,
// to_name, num_common, num_kmers, containment_pct (two decimals), with
// from/to swapped when Reverse is set.
func (r CompareResult) String() string {
	from, to := r.FromName, r.ToName
	if r.Reverse {
		from, to = to, from
	}
	return fmt.Sprintf("%s\t%s\t%d\t%d\t%.2f", from, to, r.NumCommon, r.NumKmers, r.Containment)
}

// Comparator computes pairwise containment entirely in memory -- the
// code path used when the "database" side of a dist query is a list of
// sourmash JSON files rather than a single on-disk index.
type Comparator struct {
	// Cutoff filters results: a result is kept only if its containment
	// percentage is strictly greater than Cutoff.
	Cutoff float64
}

// Compare estimates containment of query against every sketch in
// targets. It fails with ErrKSizeMismatch as soon as it finds a target
// whose k-mer size disagrees with query's, rather than returning a
// meaningless containment number.
func (c *Comparator) Compare(query *Sketch, targets []*Sketch) ([]CompareResult, error) {
	out := make([]CompareResult, 0, len(targets))
	for _, t := range targets {
		r, err := comparePair(query, t)
		if err != nil {
			return nil, err
		}
		if r.Containment > c.Cutoff {
			out = append(out, r)
		}
	}
	return out, nil
}

// comparePair runs the O(|A|+|B|) linear merge over sorted hash lists
// and applies a density-corrected containment formula.
func comparePair(query, target *Sketch) (CompareResult, error) {
	if query.KmerSize != target.KmerSize {
		return CompareResult{}, fmt.Errorf("jam: compare %s (k=%d) against %s (k=%d): %w",
			query.Name, query.KmerSize, target.Name, target.KmerSize, ErrKSizeMismatch)
	}

	a := query.SortedHashes()
	b := target.SortedHashes()

	larger, smaller := query, target
	largerHashes, smallerHashes := a, b
	reverse := false
	if len(b) > len(a) {
		larger, smaller = target, query
		largerHashes, smallerHashes = b, a
		reverse = true
	}

	numCommon := mergeCount(largerHashes, smallerHashes)
	numKmers := uint64(len(smallerHashes))

	var containment float64
	if numKmers > 0 && len(larger.Hashes) > 0 && len(smaller.Hashes) > 0 {
		largerFrac := float64(larger.NumKmers) / float64(len(larger.Hashes))
		smallerFrac := float64(smaller.NumKmers) / float64(len(smaller.Hashes))

		var fraction float64
		if largerFrac >= smallerFrac {
			fraction = largerFrac / smallerFrac
		} else {
			fraction = smallerFrac / largerFrac
		}
		containment = (float64(numCommon) / float64(numKmers)) * fraction * 100
	}

	return CompareResult{
		FromName:    query.Name,
		ToName:      target.Name,
		NumCommon:   numCommon,
		NumKmers:    numKmers,
		Containment: containment,
		Reverse:     reverse,
	}, nil
}

// mergeCount walks two ascending hash lists and counts the elements they
// share, in O(|larger|+|smaller|) time.
func mergeCount(larger, smaller []uint64) uint64 {
	var common uint64
	i, j := 0, 0
	for i < len(larger) && j < len(smaller) {
		switch {
		case larger[i] == smaller[j]:
			common++
			i++
			j++
		case larger[i] < smaller[j]:
			i++
		default:
			j++
		}
	}
	return common
}
