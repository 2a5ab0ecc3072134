package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// GatewayNotifier отправляет ссылку выбора сборов через внешний шлюз
// доставки (email/sms). Шлюз сам решает, как доставить сообщение;
// подтверждение доставки здесь не обрабатывается.
type GatewayNotifier struct {
	gatewayURL string
	client     *http.Client
}

type linkMessage struct {
	Destination string `json:"destination"`
	Channel     string `json:"channel"`
	Message     string `json:"message"`
	Link        string `json:"link"`
}

func NewGatewayNotifier(gatewayURL string) *GatewayNotifier {
	return &GatewayNotifier{
		gatewayURL: gatewayURL,
		client:     &http.Client{Timeout: 5 * time.Second},
	}
}

// SendSelectionLink публикует запрос на отправку ссылки стороне контракта
func (n *GatewayNotifier) SendSelectionLink(ctx context.Context, destination, channel, link string) error {
	payload := linkMessage{
		Destination: destination,
		Channel:     channel,
		Message:     "Выберите сборы по вашему контракту по ссылке",
		Link:        link,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.gatewayURL, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notify gateway responded %d", resp.StatusCode)
	}

	logrus.Infof("selection link handed to gateway: channel=%s", channel)
	return nil
}
