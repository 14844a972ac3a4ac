package cart

import (
	"fmt"
	"time"

	"creme-store/apperrors"
	"creme-store/models"

	"github.com/google/uuid"
)

type CartItem struct {
	ProductID string   `json:"productId"`
	Name      string   `json:"name"`
	UnitPrice *float64 `json:"unitPrice,omitempty"`
	Quantity  int      `json:"quantity"`
	ImageRef  string   `json:"imageRef,omitempty"`
}

// Session is the cart of one browser session. It has a single owner: whoever loaded it
// from the Store mutates it and hands it back.
//
// AttemptID names the current contents of the cart. It changes on every mutation, so two
// submissions of an unchanged cart share it while a refilled cart never does.
type Session struct {
	ID        string     `json:"id"`
	AttemptID string     `json:"attemptId"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Notification is the toast the storefront shows after a cart action.
type Notification struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

func NewSession(id string) *Session {
	return &Session{ID: id, AttemptID: uuid.NewString(), Items: []CartItem{}}
}

func (s *Session) AddToCart(product models.Product, quantity int) (Notification, error) {
	if quantity <= 0 {
		return Notification{}, fmt.Errorf("%w: quantity must be positive", apperrors.ErrValidation)
	}

	if i := s.indexOf(product.ID); i >= 0 {
		s.Items[i].Quantity += quantity
	} else {
		price := product.OfferPrice
		s.Items = append(s.Items, CartItem{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: &price,
			Quantity:  quantity,
			ImageRef:  product.ImageURL,
		})
	}
	s.touch()

	return Notification{
		Title:   "Added to cart",
		Message: fmt.Sprintf("%d x %s added to your cart.", quantity, product.Name),
	}, nil
}

// UpdateItemQuantity sets the quantity; anything at or below zero drops the line.
func (s *Session) UpdateItemQuantity(productID string, quantity int) {
	i := s.indexOf(productID)
	if i < 0 {
		return
	}
	if quantity <= 0 {
		s.removeAt(i)
	} else {
		s.Items[i].Quantity = quantity
	}
	s.touch()
}

func (s *Session) RemoveItemFromCart(productID string) Notification {
	name := productID
	if i := s.indexOf(productID); i >= 0 {
		name = s.Items[i].Name
		s.removeAt(i)
		s.touch()
	}
	return Notification{
		Title:   "Removed from cart",
		Message: fmt.Sprintf("%s was removed from your cart.", name),
	}
}

func (s *Session) ClearCart() {
	s.Items = []CartItem{}
	s.touch()
}

// Total treats a line without a price as free.
func (s *Session) Total() float64 {
	var total float64
	for _, item := range s.Items {
		if item.UnitPrice == nil {
			continue
		}
		total += *item.UnitPrice * float64(item.Quantity)
	}
	return total
}

func (s *Session) ItemCount() int {
	count := 0
	for _, item := range s.Items {
		count += item.Quantity
	}
	return count
}

func (s *Session) IsEmpty() bool {
	return len(s.Items) == 0
}

// Snapshot freezes the cart into order lines; the unit price becomes the price at purchase.
func (s *Session) Snapshot() []models.OrderItem {
	items := make([]models.OrderItem, 0, len(s.Items))
	for _, item := range s.Items {
		var price float64
		if item.UnitPrice != nil {
			price = *item.UnitPrice
		}
		items = append(items, models.OrderItem{
			ProductID:       item.ProductID,
			Name:            item.Name,
			Quantity:        item.Quantity,
			PriceAtPurchase: price,
			Image:           item.ImageRef,
		})
	}
	return items
}

func (s *Session) indexOf(productID string) int {
	for i, item := range s.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

func (s *Session) removeAt(i int) {
	s.Items = append(s.Items[:i], s.Items[i+1:]...)
}

func (s *Session) touch() {
	s.AttemptID = uuid.NewString()
	s.UpdatedAt = time.Now()
}
