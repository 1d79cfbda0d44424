package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/go-redis/redis/v8"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"compaward_backend/internals/configs"
	"compaward_backend/internals/features/notifications/notifications/model"
)

// ========== REDIS ==========

// RedisPublisher pushes each notification to channel notifications:<recipient>.
type RedisPublisher struct {
	Client *redis.Client
}

// NewRedisPublisherFromEnv returns nil when REDIS_URL is not set.
func NewRedisPublisherFromEnv() *RedisPublisher {
	addr := configs.GetEnv("REDIS_URL")
	if addr == "" {
		return nil
	}
	return &RedisPublisher{Client: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: configs.GetEnv("REDIS_PASSWORD"),
		DB:       configs.GetEnvInt("REDIS_DB", 0),
	})}
}

func ChannelFor(n model.NotificationModel) string {
	return "notifications:" + n.RecipientID.String()
}

func (p *RedisPublisher) Publish(ctx context.Context, n model.NotificationModel) error {
	payload, err := sonic.Marshal(n)
	if err != nil {
		return err
	}
	return p.Client.Publish(ctx, ChannelFor(n), payload).Err()
}

func (p *RedisPublisher) Close() error {
	return p.Client.Close()
}

// ========== SENDGRID ==========

var (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

type SendgridMailer struct {
	key        string
	from       *sgmail.Email
	subjPrefix string
}

// NewSendgridMailerFromEnv returns nil when SENDGRID_API_KEY is not set.
func NewSendgridMailerFromEnv(appName string) *SendgridMailer {
	key := configs.GetEnv("SENDGRID_API_KEY")
	if key == "" {
		return nil
	}
	return &SendgridMailer{
		key:        key,
		from:       sgmail.NewEmail(appName, configs.GetEnv("MAIL_FROM", "no-reply@compaward.local")),
		subjPrefix: "[" + appName + "] ",
	}
}

func (m *SendgridMailer) Send(ctx context.Context, to, subject, body string) error {
	p := sgmail.NewPersonalization()
	p.Subject = m.subjPrefix + subject
	p.AddTos(sgmail.NewEmail("", to))

	msg := sgmail.NewV3Mail()
	msg.SetFrom(m.from)
	msg.AddPersonalizations(p)
	msg.AddContent(sgmail.NewContent("text/plain", body))

	req := sendgrid.GetRequest(m.key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(msg)

	res, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return err
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}
