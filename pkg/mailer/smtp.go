package mailer

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/krunal16-c/saskhack/config"
)

const senderName = "SafetyFirst"

// sendFunc 与 smtp.SendMail 同签名，测试中替换
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer 纯文本邮件发送（服务端支持时 smtp.SendMail 自动升级 STARTTLS）
type SMTPMailer struct {
	addr   string
	host   string
	from   string
	auth   smtp.Auth
	send   sendFunc
	now    func() time.Time
	logger *zap.Logger
}

// NewSMTPMailer 创建 SMTP 邮件发送器；未配置 smtp_host 时返回 nil
func NewSMTPMailer(cfg *config.MailConfig, logger *zap.Logger) *SMTPMailer {
	if cfg.SMTPHost == "" {
		return nil
	}

	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.SMTPHost)
	}

	from := cfg.From
	if from == "" {
		from = cfg.Username
	}

	return &SMTPMailer{
		addr:   net.JoinHostPort(cfg.SMTPHost, strconv.Itoa(cfg.SMTPPort)),
		host:   cfg.SMTPHost,
		from:   from,
		auth:   auth,
		send:   smtp.SendMail,
		now:    time.Now,
		logger: logger,
	}
}

// Send 发送一封纯文本邮件
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rcpt, err := mail.ParseAddress(to)
	if err != nil {
		return fmt.Errorf("收件人地址无效: %w", err)
	}

	msg := m.buildMessage(rcpt.Address, subject, body)
	if err := m.send(m.addr, m.auth, m.from, []string{rcpt.Address}, msg); err != nil {
		return fmt.Errorf("SMTP 发送失败: %w", err)
	}

	m.logger.Debug("邮件已发送", zap.String("to", rcpt.Address), zap.String("subject", subject))
	return nil
}

func (m *SMTPMailer) buildMessage(to, subject, body string) []byte {
	from := mail.Address{Name: senderName, Address: m.from}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", from.String())
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", m.now().Format(time.RFC1123Z))
	fmt.Fprintf(&buf, "Message-ID: <%s@%s>\r\n", uuid.NewString(), m.host)
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	buf.WriteString("Content-Transfer-Encoding: 8bit\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(body)
	buf.WriteString("\r\n")
	return buf.Bytes()
}
