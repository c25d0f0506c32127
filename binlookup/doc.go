// Package binlookup answers bin collection questions from a schedule file.
//
// A Directory maps BD postcode districts and area names to the collections
// that run there. Messages are matched on an explicit district first and on
// a loose area name second.
package binlookup
