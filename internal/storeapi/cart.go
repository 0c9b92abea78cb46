package storeapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/phytolab/orderport/internal/webserver"
)

func registerCartRoutes() {
	webserver.PubGET("/cart", getCart)
	webserver.PubPOST("/cart", addToCart)
	webserver.PubPUT("/cart/:productId", updateCartLine)
	webserver.PubDELETE("/cart/:productId", removeCartLine)
	webserver.PubDELETE("/cart", clearCart)
}

type cartView struct {
	Items interface{} `json:"items"`
	Total float64     `json:"total"`
}

func cartResponse(c echo.Context, sid string) error {
	st := getStore(c)
	return ok(c, cartView{Items: st.Cart(sid), Total: st.CartTotal(sid)})
}

func getCart(c echo.Context) error {
	return cartResponse(c, webserver.SessionID(c))
}

type addToCartPayload struct {
	ProductID int64 `json:"productId,string"`
	Quantity  int   `json:"quantity"`
}

// addToCart appends a line or increments the existing one. A non-positive
// quantity means "one more".
func addToCart(c echo.Context) error {
	var payload addToCartPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse cart item")
	}
	if payload.Quantity < 1 {
		payload.Quantity = 1
	}

	st := getStore(c)
	var found bool
	for _, p := range st.Products() {
		if p.ID == payload.ProductID {
			if !p.InStock {
				return fail(c, http.StatusConflict, "OUT_OF_STOCK", "Product is out of stock")
			}
			st.AddToCart(webserver.SessionID(c), p, payload.Quantity)
			found = true
			break
		}
	}
	if !found {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found")
	}
	return cartResponse(c, webserver.SessionID(c))
}

type updateCartPayload struct {
	Quantity int `json:"quantity"`
}

// updateCartLine sets the line quantity. The store clamps values below one;
// removal is its own endpoint.
func updateCartLine(c echo.Context) error {
	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID")
	}
	var payload updateCartPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse quantity")
	}

	sid := webserver.SessionID(c)
	getStore(c).UpdateCartQuantity(sid, productID, payload.Quantity)
	return cartResponse(c, sid)
}

func removeCartLine(c echo.Context) error {
	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID")
	}
	sid := webserver.SessionID(c)
	getStore(c).RemoveFromCart(sid, productID)
	return cartResponse(c, sid)
}

func clearCart(c echo.Context) error {
	sid := webserver.SessionID(c)
	getStore(c).ClearCart(sid)
	return cartResponse(c, sid)
}
