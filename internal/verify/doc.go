// Package verify restricts a closed-vocabulary detector's output to the
// entities the semantic analyzer claims are present. Matching is keyword
// containment in both directions, with a deterministic keyword order so
// repeated runs over identical input verify identically.
package verify
