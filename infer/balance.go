package infer

import (
	"math/rand/v2"
	"sort"

	sent "github.com/revelaction/syncomp/sentence"
)

// Select keeps the records of the reference and treatment levels, in input
// order. Records without tokens carry no complexity and are dropped.
func Select(records []sent.Record, reference, treatment sent.DocType) []sent.Record {
	var out []sent.Record
	for _, r := range records {
		if r.WordLen < 1 {
			continue
		}
		if r.Type == reference || r.Type == treatment {
			out = append(out, r)
		}
	}
	return out
}

// Counts returns the number of records per document type.
func Counts(records []sent.Record) map[sent.DocType]int {
	c := map[sent.DocType]int{}
	for _, r := range records {
		c[r.Type]++
	}
	return c
}

// Balance downsamples the majority of the two levels to the size of the
// minority by uniform sampling without replacement. Input order is kept.
func Balance(records []sent.Record, reference, treatment sent.DocType, rng *rand.Rand) []sent.Record {
	var ref, trt []int
	for i, r := range records {
		switch r.Type {
		case reference:
			ref = append(ref, i)
		case treatment:
			trt = append(trt, i)
		}
	}

	major, minor := ref, trt
	if len(trt) > len(ref) {
		major, minor = trt, ref
	}
	if len(major) == len(minor) {
		return records
	}

	keep := map[int]bool{}
	for _, i := range minor {
		keep[i] = true
	}
	perm := rng.Perm(len(major))[:len(minor)]
	sort.Ints(perm)
	for _, p := range perm {
		keep[major[p]] = true
	}

	out := make([]sent.Record, 0, 2*len(minor))
	for i, r := range records {
		if keep[i] {
			out = append(out, r)
		}
	}
	return out
}
