package qr

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

// Generator encodes table ordering links as QR PNGs for printed table cards.
type Generator struct {
	BaseURL string
}

func NewGenerator(baseURL string) Generator {
	return Generator{BaseURL: baseURL}
}

func (g Generator) TableLink(restaurantID, tableID string) ([]byte, error) {
	link := fmt.Sprintf("%s/order?restaurantId=%s&tableId=%s", g.BaseURL, restaurantID, tableID)
	return qrcode.Encode(link, qrcode.Medium, 256)
}
