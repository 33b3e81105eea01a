// Package query derives the visible page from a record set.
//
// A view is computed in three steps, always over a fresh copy of the records:
//
//  1. Filter: keep records whose name or email contains the search text.
//     Matching is case-insensitive under Unicode full case folding with NFC
//     normalisation, and the search text is trimmed first. An optional Where
//     predicate (an expr-lang expression) must also hold.
//  2. Order: Local records come first, newest CreatedAt first. Remote records
//     follow, ordered by the selected field. The sort is stable, so records
//     that compare equal keep their stored order.
//  3. Paginate: fixed-size pages numbered from 1. TotalPages is never below 1.
//     The view does not clamp the page number; callers do.
//
// Nothing in this package mutates its input.
package query
