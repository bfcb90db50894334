// Package rating holds the rating-event record, the per-control widget state
// derived from host markup, and the selector's candidate values.
package rating
