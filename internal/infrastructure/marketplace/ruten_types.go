package marketplace

// rutenResponse is the common Ruten partner API envelope
type rutenResponse struct {
	Status    string `json:"status"`
	ErrorCode string `json:"error_code,omitempty"`
	ErrorMsg  string `json:"error_msg,omitempty"`
}

// IsSuccess reports whether the API call succeeded
func (r rutenResponse) IsSuccess() bool {
	return r.Status == "success"
}

// rutenShopInfoResponse is the response of GET /shop/info
type rutenShopInfoResponse struct {
	rutenResponse
	Data struct {
		ShopID   string `json:"shop_id"`
		ShopName string `json:"shop_name"`
	} `json:"data"`
}

// rutenStockUpdateResponse is the response of PUT /items/{id}/stock
type rutenStockUpdateResponse struct {
	rutenResponse
}

// rutenBuyer is the buyer block of an order
type rutenBuyer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// rutenReceiver is the shipping recipient block of an order
type rutenReceiver struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	Zipcode string `json:"zipcode"`
}

// rutenItem is one line item of an order
type rutenItem struct {
	GoodsID   string `json:"goods_id"`
	GoodsNo   string `json:"goods_no"`
	GoodsName string `json:"goods_name"`
	SpecName  string `json:"spec_name"`
	Quantity  int64  `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

// rutenOrder is one order in the Ruten order feed
type rutenOrder struct {
	OrderID     string        `json:"order_id"`
	OrderNumber string        `json:"order_number"`
	Status      string        `json:"status"`
	PayStatus   string        `json:"pay_status"`
	Currency    string        `json:"currency"`
	Subtotal    string        `json:"subtotal"`
	ShippingFee string        `json:"shipping_fee"`
	Discount    string        `json:"discount"`
	Total       string        `json:"total"`
	OrderedAt   int64         `json:"ordered_at"`
	Buyer       rutenBuyer    `json:"buyer"`
	Receiver    rutenReceiver `json:"receiver"`
	Items       []rutenItem   `json:"items"`
}

// rutenOrderListResponse is the response of GET /orders
type rutenOrderListResponse struct {
	rutenResponse
	Data struct {
		TotalPages int          `json:"total_pages"`
		Orders     []rutenOrder `json:"orders"`
	} `json:"data"`
}

// rutenOrderResponse is the response of GET /orders/{id}
type rutenOrderResponse struct {
	rutenResponse
	Data rutenOrder `json:"data"`
}

// rutenItemResponse is the response of POST /items
type rutenItemResponse struct {
	rutenResponse
	Data struct {
		GoodsID string `json:"goods_id"`
	} `json:"data"`
}
