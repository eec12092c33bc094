package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/marketplace-api/internal/handler"
)

// RegisterShopping mounts the checkout flow: cart, orders and payments.
// These routes are addressed by buyer and order ids in the request.
func RegisterShopping(e *echo.Echo, cart *handler.CartHandler, orders *handler.OrderHandler, payments *handler.PaymentHandler) {
	c := e.Group("/api/cart")
	c.GET("/:buyer_id", cart.Get)
	c.POST("/add", cart.Add)
	c.DELETE("/remove", cart.Remove)

	o := e.Group("/api/orders")
	o.POST("/place", orders.Place)
	o.GET("/view/:id", orders.View)
	o.GET("", orders.List)
	o.PUT("/update-status/:id", orders.UpdateStatus)

	p := e.Group("/api/payments")
	p.POST("/make", payments.Make)
	p.GET("/order/:order_id", payments.ListByOrder)
}

// RegisterFeedback mounts reviews, inquiries and the dashboards.
func RegisterFeedback(e *echo.Echo, f *handler.FeedbackHandler, d *handler.DashboardHandler) {
	e.POST("/api/reviews/leave", f.LeaveReview)
	e.GET("/api/reviews/product/:id", f.ProductReviews)
	e.POST("/api/inquiries/message", f.SendInquiry)
	e.GET("/api/inquiries/seller/:id", f.SellerInquiries)

	e.GET("/api/dashboard/seller/:id", d.Seller)
	e.GET("/api/dashboard/buyer/:id", d.Buyer)
}
