package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/krunal16-c/saskhack/config"
)

// Client NATS 连接封装，仅负责发布风险事件
type Client struct {
	conn       *nats.Conn
	logger     *zap.Logger
	reconnects atomic.Int64
}

// NewClient 连接 NATS
func NewClient(cfg *config.NATSConfig, logger *zap.Logger) (*Client, error) {
	client := &Client{logger: logger}

	opts := []nats.Option{
		nats.Name(cfg.Name),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.Timeout(cfg.ConnectTimeout),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			client.reconnects.Add(1)
			logger.Info("NATS 已重连", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS 连接断开", zap.Error(err))
			}
		}),
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("连接 NATS 失败: %w", err)
	}
	client.conn = conn

	logger.Info("NATS 连接成功", zap.String("url", cfg.URL))
	return client, nil
}

// Publish 以 JSON 编码发布消息
func (c *Client) Publish(ctx context.Context, subject string, data interface{}) error {
	if c.conn == nil || c.conn.IsClosed() {
		return fmt.Errorf("NATS 未连接")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("序列化消息失败: %w", err)
	}

	return c.conn.Publish(subject, payload)
}

// Reconnects 返回累计重连次数
func (c *Client) Reconnects() int64 {
	return c.reconnects.Load()
}

// Close 刷新缓冲并关闭连接
func (c *Client) Close() {
	if c.conn == nil {
		return
	}
	if err := c.conn.Drain(); err != nil {
		c.logger.Warn("NATS drain 失败", zap.Error(err))
		c.conn.Close()
	}
}
