package gateway

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/kitchen-oms/internal/domain"
)

// createPaymentRequest: тело POST /payment/create. Снимок заказа передаётся
// строкой с JSON внутри, а не вложенным объектом.
type createPaymentRequest struct {
	OrderID       string      `json:"orderId"`
	TotalAmount   json.Number `json:"totalAmount"`
	OrderSnapshot string      `json:"orderSnapshot"`
}

type snapshotDocument struct {
	Order   snapshotOrder   `json:"order"`
	Pricing snapshotPricing `json:"pricing"`
	Items   []snapshotItem  `json:"items"`
	Version int             `json:"version"`
}

type snapshotOrder struct {
	OrderID   string `json:"orderId"`
	Code      string `json:"code"`
	CreatedAt string `json:"createdAt"`
}

type snapshotPricing struct {
	TotalPrice json.Number `json:"totalPrice"`
	Currency   string      `json:"currency"`
}

type snapshotItem struct {
	ProductID         string               `json:"productId"`
	ProductName       string               `json:"productName"`
	Quantity          int                  `json:"quantity"`
	FinalPrice        json.Number          `json:"finalPrice"`
	Observation       string               `json:"observation"`
	CustomIngredients []snapshotIngredient `json:"customIngredients"`
}

type snapshotIngredient struct {
	Name     string      `json:"name"`
	Price    json.Number `json:"price"`
	Quantity int         `json:"quantity"`
}

type createPaymentResponse struct {
	PaymentID string    `json:"paymentId"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// encodeRequest собирает тело запроса к шлюзу.
func encodeRequest(snapshot domain.PaymentSnapshot) ([]byte, error) {
	doc := snapshotDocument{
		Order: snapshotOrder{
			OrderID:   snapshot.OrderID,
			Code:      snapshot.Code,
			CreatedAt: snapshot.CreatedAt.UTC().Format(time.RFC3339Nano),
		},
		Pricing: snapshotPricing{
			TotalPrice: json.Number(snapshot.TotalPrice.String()),
			Currency:   snapshot.Currency,
		},
		Items:   make([]snapshotItem, 0, len(snapshot.Items)),
		Version: snapshot.Version,
	}
	for _, item := range snapshot.Items {
		entry := snapshotItem{
			ProductID:         item.ProductID,
			ProductName:       item.ProductName,
			Quantity:          item.Quantity,
			FinalPrice:        json.Number(item.FinalPrice.String()),
			Observation:       item.Observation,
			CustomIngredients: make([]snapshotIngredient, 0, len(item.Ingredients)),
		}
		for _, ingredient := range item.Ingredients {
			entry.CustomIngredients = append(entry.CustomIngredients, snapshotIngredient{
				Name:     ingredient.Name,
				Price:    json.Number(ingredient.Price.String()),
				Quantity: ingredient.Quantity,
			})
		}
		doc.Items = append(doc.Items, entry)
	}

	inner, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode order snapshot: %w", err)
	}
	body, err := json.Marshal(createPaymentRequest{
		OrderID:       snapshot.OrderID,
		TotalAmount:   json.Number(snapshot.TotalPrice.String()),
		OrderSnapshot: string(inner),
	})
	if err != nil {
		return nil, fmt.Errorf("encode payment request: %w", err)
	}
	return body, nil
}
