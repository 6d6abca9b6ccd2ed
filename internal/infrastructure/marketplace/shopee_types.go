package marketplace

// shopeeResponse is the common Shopee Open API v2 envelope
type shopeeResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// IsSuccess reports whether the API call succeeded
func (r shopeeResponse) IsSuccess() bool {
	return r.Error == ""
}

// shopeeShopInfoResponse is the response of /api/v2/shop/get_shop_info
type shopeeShopInfoResponse struct {
	shopeeResponse
	ShopName string `json:"shop_name"`
	Region   string `json:"region"`
	Status   string `json:"status"`
}

// shopeeTokenResponse is the response of /api/v2/auth/access_token/get
type shopeeTokenResponse struct {
	shopeeResponse
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpireIn     int64  `json:"expire_in"`
}

// shopeeStockFailure is one rejected item in a stock update
type shopeeStockFailure struct {
	ItemID       int64  `json:"item_id"`
	FailedReason string `json:"failed_reason"`
}

// shopeeStockUpdateResponse is the response of /api/v2/product/update_stock
type shopeeStockUpdateResponse struct {
	shopeeResponse
	Response struct {
		FailureList []shopeeStockFailure `json:"failure_list"`
	} `json:"response"`
}

// shopeeOrderRef is one order reference in the order list feed
type shopeeOrderRef struct {
	OrderSN string `json:"order_sn"`
}

// shopeeOrderListResponse is the response of /api/v2/order/get_order_list
type shopeeOrderListResponse struct {
	shopeeResponse
	Response struct {
		More       bool             `json:"more"`
		NextCursor string           `json:"next_cursor"`
		OrderList  []shopeeOrderRef `json:"order_list"`
	} `json:"response"`
}

// shopeeRecipient is the recipient address block of an order detail
type shopeeRecipient struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	FullAddress string `json:"full_address"`
	City        string `json:"city"`
	State       string `json:"state"`
	Zipcode     string `json:"zipcode"`
	Region      string `json:"region"`
}

// shopeeOrderItem is one line item of an order detail
type shopeeOrderItem struct {
	ItemID                 int64  `json:"item_id"`
	ItemName               string `json:"item_name"`
	ItemSKU                string `json:"item_sku"`
	ModelName              string `json:"model_name"`
	ModelSKU               string `json:"model_sku"`
	ModelQuantityPurchased int64  `json:"model_quantity_purchased"`
	ModelDiscountedPrice   string `json:"model_discounted_price"`
}

// shopeeOrderDetail is one order in /api/v2/order/get_order_detail
type shopeeOrderDetail struct {
	OrderSN           string            `json:"order_sn"`
	OrderStatus       string            `json:"order_status"`
	Currency          string            `json:"currency"`
	CreateTime        int64             `json:"create_time"`
	TotalAmount       string            `json:"total_amount"`
	ActualShippingFee string            `json:"actual_shipping_fee"`
	PaymentMethod     string            `json:"payment_method"`
	RecipientAddress  shopeeRecipient   `json:"recipient_address"`
	ItemList          []shopeeOrderItem `json:"item_list"`
}

// shopeeOrderDetailResponse is the response of /api/v2/order/get_order_detail
type shopeeOrderDetailResponse struct {
	shopeeResponse
	Response struct {
		OrderList []shopeeOrderDetail `json:"order_list"`
	} `json:"response"`
}

// shopeeShipOrderResponse is the response of /api/v2/logistics/ship_order
type shopeeShipOrderResponse struct {
	shopeeResponse
}

// shopeeAddItemResponse is the response of /api/v2/product/add_item
type shopeeAddItemResponse struct {
	shopeeResponse
	Response struct {
		ItemID int64 `json:"item_id"`
	} `json:"response"`
}
