package shopify

import "time"

// Wire shapes for Admin GraphQL data payloads. Only the fields the
// adapter consumes are declared; everything else is ignored on decode.

// pageInfoData is the relay-style pagination block on every connection
type pageInfoData struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

// moneyBagData carries an amount in the shop's currency
type moneyBagData struct {
	ShopMoney struct {
		Amount string `json:"amount"`
	} `json:"shopMoney"`
}

type selectedOptionData struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// productRefData is the product block embedded in line items and variants
type productRefData struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Vendor    string    `json:"vendor"`
	CreatedAt time.Time `json:"createdAt"`
}

// variantRefData is the variant block embedded in line items
type variantRefData struct {
	ID              string               `json:"id"`
	Title           string               `json:"title"`
	SKU             string               `json:"sku"`
	SelectedOptions []selectedOptionData `json:"selectedOptions"`
}

type lineItemNode struct {
	ID                 string          `json:"id"`
	Title              string          `json:"title"`
	Quantity           int             `json:"quantity"`
	DiscountedTotalSet moneyBagData    `json:"discountedTotalSet"`
	Product            *productRefData `json:"product"`
	Variant            *variantRefData `json:"variant"`
}

type lineItemConnection struct {
	PageInfo pageInfoData   `json:"pageInfo"`
	Nodes    []lineItemNode `json:"nodes"`
}

type orderNode struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	CreatedAt    time.Time          `json:"createdAt"`
	CurrencyCode string             `json:"currencyCode"`
	LineItems    lineItemConnection `json:"lineItems"`
}

type ordersData struct {
	Orders struct {
		PageInfo pageInfoData `json:"pageInfo"`
		Nodes    []orderNode  `json:"nodes"`
	} `json:"orders"`
}

type orderLinesData struct {
	Order *struct {
		LineItems lineItemConnection `json:"lineItems"`
	} `json:"order"`
}

type collectionNode struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Handle        string `json:"handle"`
	ProductsCount struct {
		Count int `json:"count"`
	} `json:"productsCount"`
}

type collectionsData struct {
	Collections struct {
		PageInfo pageInfoData     `json:"pageInfo"`
		Nodes    []collectionNode `json:"nodes"`
	} `json:"collections"`
}

type collectionProductNode struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Variants struct {
		Nodes []struct {
			AvailableForSale bool `json:"availableForSale"`
		} `json:"nodes"`
	} `json:"variants"`
}

type collectionProductsData struct {
	Collection *struct {
		Products struct {
			PageInfo pageInfoData            `json:"pageInfo"`
			Nodes    []collectionProductNode `json:"nodes"`
		} `json:"products"`
	} `json:"collection"`
}

type variantStockNode struct {
	ID                string               `json:"id"`
	Title             string               `json:"title"`
	SKU               string               `json:"sku"`
	Price             string               `json:"price"`
	InventoryQuantity int                  `json:"inventoryQuantity"`
	SelectedOptions   []selectedOptionData `json:"selectedOptions"`
	InventoryItem     struct {
		UnitCost *struct {
			Amount string `json:"amount"`
		} `json:"unitCost"`
	} `json:"inventoryItem"`
	Product productRefData `json:"product"`
}

type productVariantsData struct {
	ProductVariants struct {
		PageInfo pageInfoData       `json:"pageInfo"`
		Nodes    []variantStockNode `json:"nodes"`
	} `json:"productVariants"`
}

// availabilityNode decodes both availability query shapes. The quantity
// shape fills InventoryItem, the legacy shape fills InventoryQuantity.
type availabilityNode struct {
	ID            string `json:"id"`
	InventoryItem *struct {
		InventoryLevels struct {
			Nodes []struct {
				Quantities []struct {
					Name     string `json:"name"`
					Quantity int    `json:"quantity"`
				} `json:"quantities"`
			} `json:"nodes"`
		} `json:"inventoryLevels"`
	} `json:"inventoryItem"`
	InventoryQuantity *int `json:"inventoryQuantity"`
}

type variantAvailabilityData struct {
	Nodes []*availabilityNode `json:"nodes"`
}

type jobData struct {
	ID   string `json:"id"`
	Done bool   `json:"done"`
}

type userErrorData struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

type reorderData struct {
	CollectionReorderProducts *struct {
		Job        *jobData        `json:"job"`
		UserErrors []userErrorData `json:"userErrors"`
	} `json:"collectionReorderProducts"`
}

type jobPollData struct {
	Job *jobData `json:"job"`
}
