package metadata

// Option is one entry of a controlled vocabulary.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Asset classes.
const (
	ClassRWA        = "rwa"
	ClassStablecoin = "stablecoin"
	ClassGaming     = "gaming"
	ClassDeFi       = "defi"
	ClassUtility    = "utility"
	ClassGovernance = "governance"
	ClassNFT        = "nft"
	ClassOther      = "other"
)

// AssetClasses lists the known asset classes in display order.
var AssetClasses = []Option{
	{ClassRWA, "Real World Asset (RWA)"},
	{ClassStablecoin, "Stablecoin"},
	{ClassGaming, "Gaming"},
	{ClassDeFi, "DeFi"},
	{ClassUtility, "Utility"},
	{ClassGovernance, "Governance"},
	{ClassNFT, "NFT/Collectible"},
	{ClassOther, "Other"},
}

// RWASubclasses lists the subclasses of ClassRWA.
var RWASubclasses = []string{
	"private_credit",
	"real_estate",
	"equity",
	"treasury",
	"commodity",
	"art",
	"intellectual_property",
	"carbon_credit",
	"other",
}

// StablecoinSubclasses lists the subclasses of ClassStablecoin.
var StablecoinSubclasses = []string{
	"fiat_backed",
	"crypto_backed",
	"algorithmic",
	"commodity_backed",
}

// WeblinkCategories lists the known link categories.
var WeblinkCategories = []Option{
	{"website", "Official Website"},
	{"docs", "Documentation"},
	{"whitepaper", "Whitepaper"},
	{"github", "GitHub"},
	{"twitter", "Twitter/X"},
	{"discord", "Discord"},
	{"telegram", "Telegram"},
	{"medium", "Medium/Blog"},
}

// Subclasses returns the subclasses defined for class, or nil if the class
// has none.
func Subclasses(class string) []string {
	switch class {
	case ClassRWA:
		return RWASubclasses
	case ClassStablecoin:
		return StablecoinSubclasses
	default:
		return nil
	}
}

// KnownClass reports whether class is in AssetClasses.
func KnownClass(class string) bool {
	for _, o := range AssetClasses {
		if o.Value == class {
			return true
		}
	}
	return false
}

// KnownSubclass reports whether subclass belongs to class.
func KnownSubclass(class, subclass string) bool {
	for _, s := range Subclasses(class) {
		if s == subclass {
			return true
		}
	}
	return false
}

// KnownCategory reports whether category is in WeblinkCategories.
func KnownCategory(category string) bool {
	for _, o := range WeblinkCategories {
		if o.Value == category {
			return true
		}
	}
	return false
}
