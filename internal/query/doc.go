// Package query turns list-request parameters into a validated Spec and
// applies it to goqu datasets. The same Spec drives the filtered count and
// the page query, so pagination metadata always reflects the filter.
package query
