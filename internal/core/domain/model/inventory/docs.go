// Package inventory implements the stock ledger of catalog items.
//
// Each item owns one Inventory row holding available and reserved counters.
// Orders move units through the reservation protocol:
//
//	available --Reserve--> reserved --Consume--> shipped
//	available <--Release-- reserved
//
// Persistence adapters must apply Reserve, Release and Consume as single
// conditional updates so that concurrent orders cannot over-reserve an item.
package inventory
