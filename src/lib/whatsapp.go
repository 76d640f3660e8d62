package lib

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

// WhatsApp Cloud API template send. Single-endpoint POST against the
// Graph API, same pattern the booking-confirmation flow has always used.

var whatsappHTTPClient = &http.Client{Timeout: 30 * time.Second}

// NewWhatsAppHTTPClient replaces the ambient HTTP client; used by tests.
func NewWhatsAppHTTPClient(c *http.Client) {
	whatsappHTTPClient = c
}

func SendWhatsAppTemplate(ctx context.Context, to string, template string, params []string) error {
	phoneNumberId := os.Getenv("WHATSAPP_PHONE_NUMBER_ID")
	accessToken := os.Getenv("WHATSAPP_ACCESS_TOKEN")
	url := fmt.Sprintf("https://graph.facebook.com/v17.0/%s/messages", phoneNumberId)

	parameters := make([]map[string]string, 0, len(params))
	for _, p := range params {
		parameters = append(parameters, map[string]string{"type": "text", "text": p})
	}
	payload := map[string]any{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "template",
		"template": map[string]any{
			"name":     template,
			"language": map[string]string{"code": "en"},
			"components": []map[string]any{
				{"type": "body", "parameters": parameters},
			},
		},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	res, err := whatsappHTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		body, _ := io.ReadAll(res.Body)
		log.Printf("[WhatsApp] Send failed (%d): %s\n", res.StatusCode, string(body))
		return fmt.Errorf("whatsapp send failed with status %d", res.StatusCode)
	}
	return nil
}
