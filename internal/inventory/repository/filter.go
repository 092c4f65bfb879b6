package repository

import (
	mongotx "parkbook/pkg/db/mongo"

	"go.mongodb.org/mongo-driver/bson"
)

const (
	SortNameAsc   = "name_asc"
	SortNameDesc  = "name_desc"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
)

const (
	DefaultPriceFrom int64 = 0
	DefaultPriceTo   int64 = 999999
)

// Filter narrows the public room and attraction listings.
type Filter struct {
	Search    string
	PriceFrom int64
	PriceTo   int64
	Sort      string
}

// ValidSort reports whether s is a known sort order. Empty means name_asc.
func ValidSort(s string) bool {
	switch s {
	case "", SortNameAsc, SortNameDesc, SortPriceAsc, SortPriceDesc:
		return true
	default:
		return false
	}
}

func buildFilter(f Filter, priceField string) bson.M {
	filter := bson.M{
		priceField: bson.M{"$gte": f.PriceFrom, "$lte": f.PriceTo},
	}
	if f.Search != "" {
		filter["name"] = mongotx.Contains(f.Search)
	}
	return filter
}

// buildSort always ends on _id so paging is stable across equal keys.
func buildSort(sort, priceField string) bson.D {
	switch sort {
	case SortNameDesc:
		return bson.D{{Key: "name", Value: -1}, {Key: "_id", Value: 1}}
	case SortPriceAsc:
		return bson.D{{Key: priceField, Value: 1}, {Key: "_id", Value: 1}}
	case SortPriceDesc:
		return bson.D{{Key: priceField, Value: -1}, {Key: "_id", Value: 1}}
	default:
		return bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}
	}
}
