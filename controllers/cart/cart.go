package cartControllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/controllers/params"
	"github.com/junaidrashid-git/storefront-api/middleware"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type AddItemInput struct {
	ProductID uint `json:"productId" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

type UpdateItemInput struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// View is the cart as clients see it, with live totals.
type View struct {
	ID         uint              `json:"id"`
	Items      []models.CartItem `json:"items"`
	ItemCount  int               `json:"itemCount"`
	TotalPrice decimal.Decimal   `json:"totalPrice"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

func NewView(cart *models.Cart) View {
	items := cart.Items
	if items == nil {
		items = []models.CartItem{}
	}
	return View{
		ID:         cart.ID,
		Items:      items,
		ItemCount:  cart.ItemCount(),
		TotalPrice: cart.TotalPrice(),
		UpdatedAt:  cart.UpdatedAt,
	}
}

// LoadProduct returns an active product or NotFound.
func LoadProduct(db *gorm.DB, productID uint) (models.Product, error) {
	var p models.Product
	err := db.Where("id = ? AND active = ?", productID, true).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return p, apperr.NotFound("product %d not found", productID)
	}
	return p, err
}

func checkStock(p models.Product, qty int) error {
	if qty > p.Stock {
		return apperr.InsufficientStock(apperr.StockShortage{
			ProductID: p.ID, Name: p.Name, Requested: qty, Available: p.Stock,
		})
	}
	return nil
}

// AddItem merges quantity of the product into the user's cart.
func AddItem(ctx context.Context, db *gorm.DB, userID string, productID uint, qty int) (*models.Cart, error) {
	var cart *models.Cart
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := LoadProduct(tx, productID)
		if err != nil {
			return err
		}
		if cart, err = models.LoadCart(tx, userID); err != nil {
			return err
		}
		if err := cart.AddItem(p, qty); err != nil {
			return err
		}
		for _, it := range cart.Items {
			if it.ProductID == p.ID {
				if err := checkStock(p, it.Quantity); err != nil {
					return err
				}
			}
		}
		return models.SaveCart(tx, cart)
	})
	return cart, err
}

// SetQuantity overwrites a line's quantity; zero or less removes it.
func SetQuantity(ctx context.Context, db *gorm.DB, userID string, productID uint, qty int) (*models.Cart, error) {
	var cart *models.Cart
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if cart, err = models.LoadCart(tx, userID); err != nil {
			return err
		}
		if err := cart.UpdateQuantity(productID, qty); err != nil {
			return err
		}
		if qty > 0 {
			for _, it := range cart.Items {
				if it.ProductID == productID {
					if err := checkStock(it.Product, qty); err != nil {
						return err
					}
				}
			}
		}
		return models.SaveCart(tx, cart)
	})
	return cart, err
}

func RemoveItem(ctx context.Context, db *gorm.DB, userID string, productID uint) (*models.Cart, error) {
	var cart *models.Cart
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if cart, err = models.LoadCart(tx, userID); err != nil {
			return err
		}
		cart.RemoveItem(productID)
		if cart.ID == 0 {
			return nil
		}
		return models.SaveCart(tx, cart)
	})
	return cart, err
}

func Clear(ctx context.Context, db *gorm.DB, userID string) (*models.Cart, error) {
	var cart *models.Cart
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if cart, err = models.LoadCart(tx, userID); err != nil {
			return err
		}
		cart.Clear()
		if cart.ID == 0 {
			return nil
		}
		return models.SaveCart(tx, cart)
	})
	return cart, err
}

// respond re-reads the cart so new lines carry their products.
func respond(c *gin.Context, db *gorm.DB, userID string, status int) {
	cart, err := models.LoadCart(db.WithContext(c.Request.Context()), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(status, NewView(cart))
}

// GET /user/cart
func GetCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		respond(c, db, middleware.UserID(c), http.StatusOK)
	}
}

// POST /user/cart
func AddToCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input AddItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			_ = c.Error(err)
			return
		}
		userID := middleware.UserID(c)
		if _, err := AddItem(c.Request.Context(), db, userID, input.ProductID, input.Quantity); err != nil {
			_ = c.Error(err)
			return
		}
		respond(c, db, userID, http.StatusOK)
	}
}

// PUT /user/cart/:product_id
func UpdateCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, err := params.ID(c, "product_id")
		if err != nil {
			_ = c.Error(err)
			return
		}
		var input UpdateItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			_ = c.Error(err)
			return
		}
		userID := middleware.UserID(c)
		if _, err := SetQuantity(c.Request.Context(), db, userID, productID, *input.Quantity); err != nil {
			_ = c.Error(err)
			return
		}
		respond(c, db, userID, http.StatusOK)
	}
}

// DELETE /user/cart/:product_id
func RemoveCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, err := params.ID(c, "product_id")
		if err != nil {
			_ = c.Error(err)
			return
		}
		userID := middleware.UserID(c)
		if _, err := RemoveItem(c.Request.Context(), db, userID, productID); err != nil {
			_ = c.Error(err)
			return
		}
		respond(c, db, userID, http.StatusOK)
	}
}

// DELETE /user/cart
func ClearCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.UserID(c)
		if _, err := Clear(c.Request.Context(), db, userID); err != nil {
			_ = c.Error(err)
			return
		}
		respond(c, db, userID, http.StatusOK)
	}
}
