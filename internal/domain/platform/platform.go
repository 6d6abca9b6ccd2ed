package platform

// Type identifies a marketplace platform
type Type string

const (
	TypeShopee   Type = "shopee"
	TypeMomo     Type = "momo"
	TypeShopline Type = "shopline"
	TypeRuten    Type = "ruten"
	TypePchome   Type = "pchome"
	TypeYahoo    Type = "yahoo"
)

// AllTypes lists every supported platform
func AllTypes() []Type {
	return []Type{TypeShopee, TypeMomo, TypeShopline, TypeRuten, TypePchome, TypeYahoo}
}

// IsValid checks if the platform type is supported
func (t Type) IsValid() bool {
	switch t {
	case TypeShopee, TypeMomo, TypeShopline, TypeRuten, TypePchome, TypeYahoo:
		return true
	}
	return false
}

// String returns the string representation
func (t Type) String() string {
	return string(t)
}

// DisplayName returns a human-readable platform name
func (t Type) DisplayName() string {
	switch t {
	case TypeShopee:
		return "Shopee"
	case TypeMomo:
		return "momo"
	case TypeShopline:
		return "SHOPLINE"
	case TypeRuten:
		return "Ruten"
	case TypePchome:
		return "PChome"
	case TypeYahoo:
		return "Yahoo Shopping"
	default:
		return string(t)
	}
}
