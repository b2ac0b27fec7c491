package model

// ProductQuery is one catalog entry: the EAN searched on every site and
// the keyword a result's name must contain.
type ProductQuery struct {
	EAN     string `yaml:"ean" json:"ean"`
	Keyword string `yaml:"keyword" json:"keyword"`
}

type Availability int

const (
	Unavailable Availability = iota
	Available
)

// String renders the label written to the output table.
func (a Availability) String() string {
	if a == Available {
		return "Disponible"
	}
	return "No Disponible"
}

func (a Availability) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// AvailableIf classifies a sale price: only a positive price is available.
func AvailableIf(salePrice int64) Availability {
	if salePrice > 0 {
		return Available
	}
	return Unavailable
}

const (
	PlaceholderBrand    = "N/A"
	PlaceholderNotFound = "No disponible"
	PlaceholderMismatch = "No disponible (Nombre no coincide)"
	DateLayout          = "02/01/2006"
)

// OutputRecord is one row of the price table. Exactly one is produced per
// (product, site) pair.
type OutputRecord struct {
	Site         string       `json:"site"`
	EAN          string       `json:"ean"`
	ProductName  string       `json:"product_name"`
	Brand        string       `json:"brand"`
	SalePrice    int64        `json:"sale_price"`
	ListPrice    int64        `json:"list_price"`
	Availability Availability `json:"availability"`
	Date         string       `json:"date"`
}

// Header is the fixed column order of the delimited output.
var Header = []string{"Site", "EAN", "Product Name", "Brand", "Sale Price", "List Price", "Availability", "Date"}
