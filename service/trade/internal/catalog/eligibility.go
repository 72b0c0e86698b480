package catalog

// Rarita' scambiabili: Common, Uncommon, Rare, Double Rare, Art Rare.
var tradeableRarities = map[string]struct{}{
	"C":  {},
	"U":  {},
	"R":  {},
	"RR": {},
	"AR": {},
}

// IsTradeable dice se una carta con questo codice rarita' puo' stare in una trade list.
// Le wishlist non hanno restrizioni.
func IsTradeable(rarityCode string) bool {
	_, ok := tradeableRarities[rarityCode]
	return ok
}

// TradeableRarities ritorna i codici scambiabili in ordine crescente di rarita'.
func TradeableRarities() []string {
	return []string{"C", "U", "R", "RR", "AR"}
}
