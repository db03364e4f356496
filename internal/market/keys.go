package market

import (
	"fmt"
	"strings"
)

// Cache keys. Identical parameters must always produce identical keys.

func listKey(p ListParams) string {
	return fmt.Sprintf("cryptos-%d-%d-%s", p.Limit, p.Page, p.VsCurrency)
}

func quoteKey(id string) string {
	return "crypto-" + id
}

const (
	globalKey = "global-market-data"
	ratesKey  = "exchange-rates"
)

func historyKey(id string, days int, vsCurrency string) string {
	return fmt.Sprintf("price-history-%s-%d-%s", id, days, vsCurrency)
}

func searchKey(query string) string {
	return "search-" + strings.ToLower(query)
}
