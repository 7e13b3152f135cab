package mailservice

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sushihentaime/bloghub/internal/common"
	"golang.org/x/exp/rand"
)

const (
	maxRetries       = 5
	defaultBaseDelay = 500 * time.Millisecond
)

func NewMailService(mb common.MessageConsumer, host, username, password, sender string, port int, logger *slog.Logger) *MailService {
	ctx, cancel := context.WithCancel(context.Background())
	return &MailService{
		mb:        mb,
		m:         NewMailer(host, port, username, password, sender, NewTemplate()),
		logger:    logger,
		baseDelay: defaultBaseDelay,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// SendWelcomeEmail mails every newly registered user.
func (s *MailService) SendWelcomeEmail() {
	s.consume(common.UserCreatedKey, common.UserCreatedQueue, func(body []byte) (*mailJob, error) {
		var data struct {
			Email string
		}

		err := json.Unmarshal(body, &data)
		if err != nil {
			return nil, err
		}

		return &mailJob{
			recipient: data.Email,
			template:  "welcome_email.html",
			data:      data,
		}, nil
	})
}

// SendCommentNotification tells a blog owner that someone commented on their blog.
func (s *MailService) SendCommentNotification() {
	s.consume(common.CommentCreatedKey, common.CommentCreatedQueue, func(body []byte) (*mailJob, error) {
		var data struct {
			OwnerEmail     string `json:"owner_email"`
			BlogTitle      string `json:"blog_title"`
			CommenterEmail string `json:"commenter_email"`
			Content        string `json:"content"`
		}

		err := json.Unmarshal(body, &data)
		if err != nil {
			return nil, err
		}

		return &mailJob{
			recipient: data.OwnerEmail,
			template:  "comment_notification.html",
			data:      data,
		}, nil
	})
}

type mailJob struct {
	recipient string
	template  string
	data      any
}

func (s *MailService) consume(key common.BindingKey, queue common.Queue, decode func(body []byte) (*mailJob, error)) {
	msgs, err := s.mb.Consume(key, common.BlogExchange, queue)
	if err != nil {
		s.logger.Error("could not consume message", slog.String("queue", string(queue)), slog.String("error", err.Error()))
		return
	}

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}

				job, err := decode(msg.Body)
				if err != nil {
					s.logger.Error("could not unmarshal message", slog.String("queue", string(queue)), slog.String("error", err.Error()))
					msg.Nack(false, false)
					continue
				}

				s.deliver(msg, job)

			case <-s.ctx.Done():
				s.logger.Info("stopping mail consumer due to context cancellation", slog.String("queue", string(queue)))
				return
			}
		}
	}()
}

// deliver sends the mail using exponential backoff with jitter. The message is acked either way.
func (s *MailService) deliver(msg amqp.Delivery, job *mailJob) {
	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		err = s.m.send(job.recipient, job.data, job.template)
		if err == nil {
			s.logger.Info("email sent", slog.String("email", job.recipient), slog.String("template", job.template))
			msg.Ack(false)
			return
		}

		delay := time.Duration(rand.Int63n(int64(s.baseDelay) << uint(attempt)))
		s.logger.Info("delaying email", slog.String("email", job.recipient), slog.Int("attempt", attempt), slog.Duration("delay", delay))

		select {
		case <-time.After(delay):
		case <-s.ctx.Done():
			return
		}
	}

	s.logger.Error("could not send email", slog.String("email", job.recipient), slog.String("template", job.template), slog.String("error", err.Error()))
	msg.Ack(false)
}

func (s *MailService) Close() {
	s.cancel()
}
