// This file defines the catalogue handlers: public listing, lookup and
// search, plus the seller-only product mutations and image uploads.  The
// acting seller is always taken from the verified token; a seller_id in the
// body is only accepted when it agrees with it.

package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"unicode"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/marketplace-api/internal/middleware"
	"github.com/iliyamo/marketplace-api/internal/model"
	"github.com/iliyamo/marketplace-api/internal/repository"
)

// maxImageBytes caps a single uploaded product image.
const maxImageBytes = 5 << 20

// ProductHandler serves /api/products and /api/search.
type ProductHandler struct {
	Products    *repository.ProductRepo
	Images      ImageStore    // nil disables uploads
	Cache       *redis.Client // nil disables invalidation
	CachePrefix string
}

func NewProductHandler(p *repository.ProductRepo, images ImageStore, cache *redis.Client, cachePrefix string) *ProductHandler {
	return &ProductHandler{Products: p, Images: images, Cache: cache, CachePrefix: cachePrefix}
}

// productReq is the body of add and edit.  Price is a pointer so a missing
// price can be told apart from zero.
type productReq struct {
	SellerID    string   `json:"seller_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
	Category    string   `json:"category"`
}

func (r *productReq) validate() string {
	r.Name = strings.TrimSpace(r.Name)
	r.Category = strings.TrimSpace(r.Category)
	switch {
	case r.Name == "":
		return "name is required"
	case hasControl(r.Name) || hasControl(r.Category):
		return "name and category must not contain control characters"
	case r.Price == nil:
		return "price is required"
	case *r.Price < 0:
		return "price must not be negative"
	}
	return ""
}

// hasControl reports whether s contains a control character.  Order
// listings aggregate names with a control-character separator.
func hasControl(s string) bool {
	return strings.IndexFunc(s, unicode.IsControl) >= 0
}

// actingSeller resolves the seller performing a mutation.  bodySeller may be
// empty; when present it must equal the token's seller id.
func actingSeller(c echo.Context, bodySeller string) (string, error) {
	p, ok := principal(c)
	if !ok || p.SellerID == "" {
		return "", repository.ErrForbidden
	}
	if s := strings.TrimSpace(bodySeller); s != "" && s != p.SellerID {
		return "", repository.ErrForbidden
	}
	return p.SellerID, nil
}

func (h *ProductHandler) invalidate() {
	if h.Cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()
	middleware.InvalidateCache(ctx, h.Cache, h.CachePrefix)
}

// removeObjects drops stored images whose rows are gone.  Failures leave an
// orphaned object and are only logged.
func (h *ProductHandler) removeObjects(ctx context.Context, keys []string) {
	if h.Images == nil {
		return
	}
	for _, key := range keys {
		if err := h.Images.Delete(ctx, key); err != nil {
			logrus.WithError(err).WithField("key", key).Warn("orphaned image object")
		}
	}
}

// List returns products whose name contains ?query, optionally scoped to
// ?seller_id.
func (h *ProductHandler) List(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	items, err := h.Products.Search(ctx, repository.ProductSearch{
		Query:    c.QueryParam("query"),
		SellerID: strings.TrimSpace(c.QueryParam("seller_id")),
	})
	if err != nil {
		return serverError(c, err, "Error fetching products")
	}
	return c.JSON(http.StatusOK, items)
}

func parsePrice(c echo.Context, name string) (*float64, bool) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, false
	}
	return &v, true
}

// Search adds category and price range filters to the name filter.
func (h *ProductHandler) Search(c echo.Context) error {
	minPrice, ok := parsePrice(c, "minPrice")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "minPrice must be a number"})
	}
	maxPrice, ok := parsePrice(c, "maxPrice")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "maxPrice must be a number"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	items, err := h.Products.Search(ctx, repository.ProductSearch{
		Query:    c.QueryParam("query"),
		Category: strings.TrimSpace(c.QueryParam("category")),
		MinPrice: minPrice,
		MaxPrice: maxPrice,
	})
	if err != nil {
		return serverError(c, err, "search failed")
	}
	return c.JSON(http.StatusOK, items)
}

// Get returns one product with its images.  Image URLs are presigned when
// an image store is configured; otherwise the stored object keys are shown.
func (h *ProductHandler) Get(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	p, err := h.Products.GetByID(ctx, c.Param("id"))
	if errors.Is(err, repository.ErrProductNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
	}
	if err != nil {
		return serverError(c, err, "Error fetching product")
	}
	if h.Images != nil {
		for i := range p.Images {
			if u, err := h.Images.URL(ctx, p.Images[i].URL); err == nil {
				p.Images[i].URL = u
			} else {
				logrus.WithError(err).WithField("image_id", p.Images[i].ID).Warn("presign failed")
			}
		}
	}
	return c.JSON(http.StatusOK, p)
}

// Add creates a product owned by the calling seller.
func (h *ProductHandler) Add(c echo.Context) error {
	var req productReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	sellerID, err := actingSeller(c, req.SellerID)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Permission denied: seller_id does not match the signed-in seller"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	p := model.Product{
		SellerID:    sellerID,
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		Category:    req.Category,
	}
	if err := h.Products.Create(ctx, &p); err != nil {
		if errors.Is(err, repository.ErrSellerNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Seller not found"})
		}
		return serverError(c, err, "Error adding product")
	}
	h.invalidate()
	return c.JSON(http.StatusCreated, p)
}

// Edit overwrites a product the calling seller owns.
func (h *ProductHandler) Edit(c echo.Context) error {
	var req productReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	sellerID, err := actingSeller(c, req.SellerID)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Permission denied: You can only edit your own products"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	err = h.Products.UpdateOwned(ctx, model.Product{
		ID:          c.Param("id"),
		SellerID:    sellerID,
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		Category:    req.Category,
	})
	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Permission denied: You can only edit your own products"})
	case err != nil:
		return serverError(c, err, "Error updating product")
	}
	h.invalidate()
	return c.JSON(http.StatusOK, echo.Map{"message": "Product updated"})
}

// Delete removes a product the calling seller owns.
func (h *ProductHandler) Delete(c echo.Context) error {
	var req struct {
		SellerID string `json:"seller_id"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	sellerID, err := actingSeller(c, req.SellerID)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Permission denied: You can only delete your own products"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	keys, err := h.Products.DeleteOwned(ctx, c.Param("id"), sellerID)
	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Permission denied: You can only delete your own products"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "Product is referenced by orders or reviews"})
	case err != nil:
		return serverError(c, err, "Error deleting product")
	}
	h.removeObjects(context.WithoutCancel(ctx), keys)
	h.invalidate()
	return c.JSON(http.StatusOK, echo.Map{"message": "Product deleted"})
}

// UploadImage stores the multipart "image" file for a product the calling
// seller owns.
func (h *ProductHandler) UploadImage(c echo.Context) error {
	if h.Images == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "image storage disabled"})
	}
	sellerID, err := actingSeller(c, "")
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	productID := c.Param("id")

	fh, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "image file is required"})
	}
	if fh.Size > maxImageBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "image too large"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	switch err := h.Products.CheckOwner(ctx, productID, sellerID); {
	case errors.Is(err, repository.ErrProductNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Permission denied: You can only edit your own products"})
	case err != nil:
		return serverError(c, err, "Error uploading image")
	}

	f, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unreadable image"})
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxImageBytes+1))
	if err != nil || len(data) > maxImageBytes {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unreadable image"})
	}

	key, err := h.Images.Upload(ctx, productID, data, fh.Filename)
	if err != nil {
		return serverError(c, err, "Error uploading image")
	}
	img, err := h.Products.AddImage(ctx, productID, key)
	if err != nil {
		h.removeObjects(context.WithoutCancel(ctx), []string{key})
		if errors.Is(err, repository.ErrProductNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
		}
		return serverError(c, err, "Error uploading image")
	}
	if u, err := h.Images.URL(ctx, key); err == nil {
		img.URL = u
	}
	return c.JSON(http.StatusCreated, img)
}
