// Package equal implements the structural equality used by pulse cells to
// decide whether a value actually changed.
//
// Equal compares two arbitrary values by a closed set of kinds, checked in
// this order:
//
//  1. identical values (same dynamic type and ==, or the same slice or map)
//  2. absent values (nil interface, pointer, func or chan) never equal a
//     present one
//  3. dates: time.Time by instant, date.Date by day
//  4. patterns: *regexp.Regexp or Pattern, by source and flags
//  5. sequences: slices and arrays, index by index
//  6. maps: same size, every key of a present in b with an equal value
//  7. collections: same size, every element of a matched by some element
//     of b
//  8. records: structs with the same field names and equal field values
//  9. anything else is unequal
//
// Pointers and interfaces are looked through before classification. Nil
// slices and nil maps compare as empty. There is no float tolerance.
//
// The collection rule is not a bijection: a = {x, x'} and b = {x, y} compare
// equal when x and x' are structurally equal, because both elements of a
// find x in b. Cyclic values are not detected and recurse without bound.
package equal
