package domain

import "time"

// Customization is one selected option/choice pair on a configured product,
// e.g. ribbon color or ribbon text. PriceModifier is added to the product's
// base price when computing the unit price.
type Customization struct {
	OptionID      string `json:"option_id" bson:"option_id"`
	ChoiceID      string `json:"choice_id" bson:"choice_id"`
	CustomValue   string `json:"custom_value,omitempty" bson:"custom_value,omitempty"`
	PriceModifier int64  `json:"price_modifier" bson:"price_modifier"`
}

// CartItem is one configured product in a cart. ID may be a client-generated
// temporary id until the server confirms the item. Prices are whole CZK.
type CartItem struct {
	ID             string          `json:"id" bson:"item_id"`
	ProductID      string          `json:"product_id" bson:"product_id"`
	Quantity       int             `json:"quantity" bson:"quantity"`
	Customizations []Customization `json:"customizations,omitempty" bson:"customizations,omitempty"`
	UnitPrice      int64           `json:"unit_price" bson:"unit_price"`
	TotalPrice     int64           `json:"total_price" bson:"total_price"`
	CreatedAt      time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" bson:"updated_at"`
}

type Cart struct {
	ID        string     `json:"id,omitempty" bson:"_id,omitempty"`
	Identity  string     `json:"identity" bson:"identity"`
	Items     []CartItem `json:"items" bson:"items"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" bson:"updated_at"`
}

// UnitPrice is the base product price plus all customization modifiers.
func UnitPrice(basePrice int64, customizations []Customization) int64 {
	price := basePrice
	for _, c := range customizations {
		price += c.PriceModifier
	}
	return price
}

// ItemTotal recomputes the line total for a quantity.
func ItemTotal(unitPrice int64, quantity int) int64 {
	return unitPrice * int64(quantity)
}

func (c *Cart) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

func (c *Cart) Subtotal() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.TotalPrice
	}
	return total
}
