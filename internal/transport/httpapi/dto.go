package httpapi

import (
	"time"

	"github.com/vladislavdragonenkov/kitchen-oms/internal/domain"
	"github.com/vladislavdragonenkov/kitchen-oms/internal/service/orders"
)

type createOrderRequest struct {
	CustomerID string `json:"customerId"`
	Source     string `json:"source"`
}

type ingredientSelectionRequest struct {
	IngredientID string `json:"ingredientId" binding:"required"`
	Quantity     int    `json:"quantity"`
}

type addProductRequest struct {
	ProductID   string                       `json:"productId" binding:"required"`
	Quantity    int                          `json:"quantity"`
	Observation string                       `json:"observation"`
	Ingredients []ingredientSelectionRequest `json:"ingredients"`
}

func (r addProductRequest) input() orders.AddProductInput {
	input := orders.AddProductInput{
		ProductID:   r.ProductID,
		Quantity:    r.Quantity,
		Observation: r.Observation,
		Ingredients: make([]orders.IngredientSelection, 0, len(r.Ingredients)),
	}
	for _, ing := range r.Ingredients {
		input.Ingredients = append(input.Ingredients, orders.IngredientSelection{IngredientID: ing.IngredientID, Quantity: ing.Quantity})
	}
	return input
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

type observationRequest struct {
	Observation string `json:"observation"`
}

type ingredientResponse struct {
	ID           string `json:"id"`
	IngredientID string `json:"ingredientId,omitempty"`
	Name         string `json:"name"`
	Price        string `json:"price"`
	Quantity     int    `json:"quantity"`
}

type itemResponse struct {
	ID          string               `json:"id"`
	ProductID   string               `json:"productId"`
	ProductName string               `json:"productName"`
	Category    string               `json:"category,omitempty"`
	BasePrice   string               `json:"basePrice"`
	Quantity    int                  `json:"quantity"`
	FinalPrice  string               `json:"finalPrice"`
	Observation string               `json:"observation,omitempty"`
	Ingredients []ingredientResponse `json:"ingredients"`
}

type orderResponse struct {
	ID            string         `json:"id"`
	Code          string         `json:"code"`
	CustomerID    string         `json:"customerId,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	Status        string         `json:"status"`
	PaymentStatus string         `json:"paymentStatus"`
	TotalPrice    string         `json:"totalPrice"`
	Source        string         `json:"source,omitempty"`
	Items         []itemResponse `json:"items"`
}

type orderPageResponse struct {
	Items       []orderResponse `json:"items"`
	Page        int             `json:"page"`
	PageSize    int             `json:"pageSize"`
	HasNextPage bool            `json:"hasNextPage"`
}

type confirmResponse struct {
	Order          orderResponse `json:"order"`
	PaymentID      string        `json:"paymentId,omitempty"`
	PaymentSkipped bool          `json:"paymentSkipped"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toOrderResponse(order domain.Order) orderResponse {
	out := orderResponse{
		ID:            order.ID,
		Code:          order.Code,
		CustomerID:    order.CustomerID,
		CreatedAt:     order.CreatedAt,
		Status:        order.Status.String(),
		PaymentStatus: order.PaymentStatus.String(),
		TotalPrice:    order.TotalPrice.StringFixed(2),
		Source:        order.Source,
		Items:         make([]itemResponse, 0, len(order.Items)),
	}
	for _, item := range order.Items {
		ir := itemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Category:    string(item.Category),
			BasePrice:   item.BasePrice.StringFixed(2),
			Quantity:    item.Quantity,
			FinalPrice:  item.FinalPrice.StringFixed(2),
			Observation: item.Observation,
			Ingredients: make([]ingredientResponse, 0, len(item.Ingredients)),
		}
		for _, ing := range item.Ingredients {
			ir.Ingredients = append(ir.Ingredients, ingredientResponse{
				ID:           ing.ID,
				IngredientID: ing.IngredientID,
				Name:         ing.Name,
				Price:        ing.Price.StringFixed(2),
				Quantity:     ing.Quantity,
			})
		}
		out.Items = append(out.Items, ir)
	}
	return out
}
