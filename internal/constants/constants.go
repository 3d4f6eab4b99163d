package constants

const (
	APP_STOREFRONT = "lojinha-storefront"

	AUDIENCE_AUTHENTICATED = "authenticated"

	KEY_APP_NAME       = "app"
	KEY_BODY           = "body"
	KEY_CART           = "cart"
	KEY_CART_ITEMS     = "cartItems"
	KEY_CART_KEY       = "cartKey"
	KEY_CEP            = "cep"
	KEY_CONFIG         = "config"
	KEY_EMAIL          = "email"
	KEY_HEADER         = "header"
	KEY_ORDER          = "order"
	KEY_ORDERS         = "orders"
	KEY_ORDER_ID       = "orderId"
	KEY_ORDER_ITEMS    = "orderItems"
	KEY_ORDER_STATUS   = "orderStatus"
	KEY_PROCESS        = "process"
	KEY_PRODUCT        = "product"
	KEY_PRODUCTS       = "products"
	KEY_PRODUCT_ID     = "productId"
	KEY_QUANTITY       = "quantity"
	KEY_REQUEST        = "request"
	KEY_REQUEST_HOST   = "host"
	KEY_REQUEST_ID     = "requestId"
	KEY_REQUEST_IP     = "requesterIP"
	KEY_REQUEST_METHOD = "requestMethod"
	KEY_REQUEST_URI    = "requestURI"
	KEY_REQUEST_URL    = "requestURL"
	KEY_SHIPPING_COST  = "shippingCost"
	KEY_SPAN_ID        = "spanId"
	KEY_SUBTOTAL       = "subtotal"
	KEY_TAG            = "tag"
	KEY_TOKEN          = "token"
	KEY_TOTAL          = "total"
	KEY_TRACE_ID       = "traceId"
	KEY_USER_ID        = "userId"
)
