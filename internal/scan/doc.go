// Package scan implements the read-only repository scan: it fetches the
// remote protection state, diffs it against the desired policy, probes the
// governance files, and reports the findings without modifying anything.
package scan
